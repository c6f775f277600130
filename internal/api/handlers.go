package api

import (
	"net/http"
	"strings"

	"plan_advisor/src/model"
	"plan_advisor/src/session"

	"github.com/go-chi/chi/v5"
)

type handler struct {
	advisor Advisor
}

// ----------------------------------------------------
// ================ Request / Response ================

type messageRequest struct {
	Message string `json:"message"`
}

type createResponse struct {
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
}

type analysisResponse struct {
	SessionID          string            `json:"session_id"`
	Analysis           string            `json:"analysis"`
	EligiblePlansCount int               `json:"eligible_plans_count"`
	Plans              model.EligibleSet `json:"plans"`
	NoEligiblePlans    bool              `json:"no_eligible_plans"`
	Degraded           bool              `json:"degraded"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ----------------------------------------------------
// ================ Handlers ================

// create handles POST /sessions
func (h *handler) create(w http.ResponseWriter, r *http.Request) {
	id, err := h.advisor.Create(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createResponse{SessionID: id})
}

// status handles GET /sessions/{id}
func (h *handler) status(w http.ResponseWriter, r *http.Request) {
	status, err := h.advisor.Status(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// delete handles DELETE /sessions/{id}
func (h *handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.advisor.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// discovery handles POST /sessions/{id}/discovery
func (h *handler) discovery(w http.ResponseWriter, r *http.Request) {
	msg, ok := readMessage(w, r)
	if !ok {
		return
	}
	res, err := h.advisor.Discover(r.Context(), chi.URLParam(r, "id"), msg)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// chat handles POST /sessions/{id}/chat
func (h *handler) chat(w http.ResponseWriter, r *http.Request) {
	msg, ok := readMessage(w, r)
	if !ok {
		return
	}
	res, err := h.advisor.Ask(r.Context(), chi.URLParam(r, "id"), msg)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{SessionID: res.SessionID, Response: res.Answer})
}

// analysis handles POST /sessions/{id}/analysis
func (h *handler) analysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := h.advisor.Recommend(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	plans := rec.Plans
	if plans == nil {
		plans = model.EligibleSet{}
	}
	writeJSON(w, http.StatusOK, analysisResponse{
		SessionID:          id,
		Analysis:           rec.Analysis,
		EligiblePlansCount: len(plans),
		Plans:              plans,
		NoEligiblePlans:    rec.NoEligiblePlans,
		Degraded:           rec.Degraded,
	})
}

// readMessage decodes a {message} body and rejects a blank message
func readMessage(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req messageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return "", false
	}
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return "", false
	}
	return msg, true
}

var _ Advisor = (*session.Service)(nil)
