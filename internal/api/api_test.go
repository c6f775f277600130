package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"plan_advisor/src/model"
	"plan_advisor/src/session"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdvisor struct {
	err       error
	rec       model.Recommendation
	lastMsg   string
	deletedID string
}

func (f *fakeAdvisor) Create(context.Context) (string, error) {
	return "s-1", f.err
}

func (f *fakeAdvisor) Discover(_ context.Context, id, message string) (session.DiscoveryResult, error) {
	f.lastMsg = message
	if f.err != nil {
		return session.DiscoveryResult{}, f.err
	}
	loc := "TX"
	return session.DiscoveryResult{SessionID: id, Reply: "How many employees?", Slots: model.ProfileSlots{Location: &loc}}, nil
}

func (f *fakeAdvisor) Ask(_ context.Context, id, question string) (session.AskResult, error) {
	f.lastMsg = question
	if f.err != nil {
		return session.AskResult{}, f.err
	}
	return session.AskResult{SessionID: id, Answer: "PPOs have no referrals."}, nil
}

func (f *fakeAdvisor) Status(_ context.Context, id string) (session.Status, error) {
	if f.err != nil {
		return session.Status{}, f.err
	}
	return session.Status{SessionID: id, TurnCount: 4}, nil
}

func (f *fakeAdvisor) Recommend(context.Context, string) (model.Recommendation, error) {
	return f.rec, f.err
}

func (f *fakeAdvisor) Delete(_ context.Context, id string) error {
	f.deletedID = id
	return f.err
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestCreateSession(t *testing.T) {
	r := NewRouter(&fakeAdvisor{}, nil)
	rec := do(t, r, http.MethodPost, "/sessions", "")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "s-1", decodeBody(t, rec)["session_id"])
}

func TestDiscovery(t *testing.T) {
	advisor := &fakeAdvisor{}
	r := NewRouter(advisor, nil)

	rec := do(t, r, http.MethodPost, "/sessions/s-1/discovery", `{"message":"  We are in Texas "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "We are in Texas", advisor.lastMsg)

	body := decodeBody(t, rec)
	assert.Equal(t, "How many employees?", body["response"])
	assert.Equal(t, false, body["is_complete"])
	answers := body["plan_discovery_answers"].(map[string]any)
	assert.Equal(t, "TX", answers["location"])
	assert.Nil(t, answers["business_size"])
}

func TestBadBodies(t *testing.T) {
	r := NewRouter(&fakeAdvisor{}, nil)
	for _, body := range []string{"", "{", `{"message":"   "}`} {
		rec := do(t, r, http.MethodPost, "/sessions/s-1/chat", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
	}
}

func TestChat(t *testing.T) {
	r := NewRouter(&fakeAdvisor{}, nil)
	rec := do(t, r, http.MethodPost, "/sessions/s-1/chat", `{"message":"Do PPOs need referrals?"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "PPOs have no referrals.", body["response"])
	assert.Equal(t, "s-1", body["session_id"])
}

func TestAnalysis(t *testing.T) {
	advisor := &fakeAdvisor{rec: model.Recommendation{
		Plans:    model.EligibleSet{"HMO": "a", "PPO": "b"},
		Analysis: "Pick the PPO.",
	}}
	r := NewRouter(advisor, nil)

	rec := do(t, r, http.MethodPost, "/sessions/s-1/analysis", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Pick the PPO.", body["analysis"])
	assert.EqualValues(t, 2, body["eligible_plans_count"])
	assert.Equal(t, false, body["no_eligible_plans"])
}

func TestAnalysisNoPlans(t *testing.T) {
	advisor := &fakeAdvisor{rec: model.Recommendation{
		Analysis:        model.NoEligiblePlansMessage,
		NoEligiblePlans: true,
		Degraded:        true,
	}}
	r := NewRouter(advisor, nil)

	rec := do(t, r, http.MethodPost, "/sessions/s-1/analysis", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["no_eligible_plans"])
	assert.Equal(t, true, body["degraded"])
	assert.EqualValues(t, 0, body["eligible_plans_count"])
	assert.Equal(t, map[string]any{}, body["plans"])
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", model.ErrSessionNotFound, http.StatusNotFound},
		{"incomplete", model.ErrIncompleteProfile, http.StatusConflict},
		{"unavailable", model.Unavailable("ranker", errors.New("timeout")), http.StatusBadGateway},
		{"other", errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRouter(&fakeAdvisor{err: tc.err}, nil)
			rec := do(t, r, http.MethodPost, "/sessions/s-1/analysis", "")
			assert.Equal(t, tc.want, rec.Code)
			assert.NotEmpty(t, decodeBody(t, rec)["error"])
		})
	}
}

func TestStatusAndDelete(t *testing.T) {
	advisor := &fakeAdvisor{}
	r := NewRouter(advisor, nil)

	rec := do(t, r, http.MethodGet, "/sessions/s-9", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 4, decodeBody(t, rec)["turn_count"])

	rec = do(t, r, http.MethodDelete, "/sessions/s-9", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "s-9", advisor.deletedID)
}

func TestHealthz(t *testing.T) {
	ok := NewRouter(&fakeAdvisor{}, map[string]HealthCheck{
		"store": func(context.Context) error { return nil },
	})
	rec := do(t, ok, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])

	down := NewRouter(&fakeAdvisor{}, map[string]HealthCheck{
		"store": func(context.Context) error { return errors.New("connection refused") },
	})
	rec = do(t, down, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "connection refused", body["checks"].(map[string]any)["store"])
}

func TestMetricsEndpoint(t *testing.T) {
	r := NewRouter(&fakeAdvisor{}, nil)
	rec := do(t, r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
