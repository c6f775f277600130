package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"plan_advisor/src/logger"
	"plan_advisor/src/model"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/sony/gobreaker"
)

// ErrCircuitOpen is returned while the breaker rejects calls to a failing model
var ErrCircuitOpen = errors.New("circuit breaker is open")

// GuardedModel wraps a chat model with a circuit breaker and a per-call timeout.
// After BreakerMaxFailures consecutive failures calls fail fast for BreakerTimeout.
type GuardedModel struct {
	inner   einomodel.BaseChatModel
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
}

func NewGuardedModel(inner einomodel.BaseChatModel, name string, cfg model.LLMConfig) *GuardedModel {
	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 3
	}
	log := logger.With("llm")

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn().
				Str("model", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("LLM circuit breaker changed state")
		},
	}

	return &GuardedModel{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker(settings),
		timeout: cfg.Timeout,
	}
}

func (g *GuardedModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	out, err := g.breaker.Execute(func() (interface{}, error) {
		return g.inner.Generate(ctx, input, opts...)
	})
	if err != nil {
		return nil, breakerError(err)
	}
	return out.(*schema.Message), nil
}

// Stream only guards opening the stream; reading it is the caller's concern
func (g *GuardedModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	out, err := g.breaker.Execute(func() (interface{}, error) {
		return g.inner.Stream(ctx, input, opts...)
	})
	if err != nil {
		return nil, breakerError(err)
	}
	return out.(*schema.StreamReader[*schema.Message]), nil
}

// State reports "closed", "open" or "half-open"
func (g *GuardedModel) State() string {
	return g.breaker.State().String()
}

func breakerError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrCircuitOpen, err)
	}
	return err
}
