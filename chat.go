package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"plan_advisor/src/model"
	"plan_advisor/src/session"
)

// advisor is the part of session.Service the terminal workflow drives
type advisor interface {
	Create(ctx context.Context) (string, error)
	Discover(ctx context.Context, id, message string) (session.DiscoveryResult, error)
	Recommend(ctx context.Context, id string) (model.Recommendation, error)
	Delete(ctx context.Context, id string) error
}

var errCancelled = errors.New("workflow cancelled")

// runChat collects the business profile turn by turn, then prints the recommendation.
// Typing exit or quit ends the workflow without a recommendation.
func runChat(ctx context.Context, adv advisor, in io.Reader, out io.Writer) error {
	id, err := adv.Create(ctx)
	if err != nil {
		return err
	}
	defer adv.Delete(context.Background(), id)

	fmt.Fprintln(out, "=== Plan Discovery ===")
	fmt.Fprintln(out, "Tell me about your business: how many employees, where you are located,")
	fmt.Fprintln(out, "and whether you need a national or local network. Type 'exit' to quit.")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nYou: ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			return errCancelled
		}
		msg := strings.TrimSpace(scanner.Text())
		if msg == "" {
			continue
		}
		if isQuit(msg) {
			fmt.Fprintln(out, "Goodbye.")
			return nil
		}

		res, err := adv.Discover(ctx, id, msg)
		if err != nil {
			if errors.Is(err, model.ErrCollaboratorUnavailable) {
				fmt.Fprintln(out, "Assistant: Sorry, I could not process that. Please try again.")
				continue
			}
			return err
		}
		fmt.Fprintf(out, "Assistant: %s\n", res.Reply)

		if res.IsComplete {
			break
		}
	}

	fmt.Fprintln(out, "\n=== Plan Analysis ===")
	rec, err := adv.Recommend(ctx, id)
	if err != nil {
		return err
	}
	printRecommendation(out, rec)
	return nil
}

func printRecommendation(out io.Writer, rec model.Recommendation) {
	if rec.NoEligiblePlans {
		fmt.Fprintln(out, rec.Analysis)
		return
	}
	fmt.Fprintf(out, "Eligible plans (%d): %s\n\n", len(rec.Plans), strings.Join(rec.Plans.Names(), ", "))
	fmt.Fprintln(out, rec.Analysis)
}

func isQuit(msg string) bool {
	switch strings.ToLower(msg) {
	case "exit", "quit":
		return true
	}
	return false
}
