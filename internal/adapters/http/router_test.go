package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/athenus-project/rag-engine/internal/core/domain"
)

type stubChat struct {
	answer *domain.Answer
	err    error
}

func (s *stubChat) Ask(context.Context, string, string, string) (*domain.Answer, error) {
	return s.answer, s.err
}

type stubFeedback struct {
	recorded []domain.Feedback
	err      error
}

func (s *stubFeedback) Record(_ context.Context, query, answer string, rating int) error {
	if s.err != nil {
		return s.err
	}
	s.recorded = append(s.recorded, domain.Feedback{Query: query, Answer: answer, Rating: rating})
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(chat *stubChat, feedback *stubFeedback) http.Handler {
	return NewRouter(chat, feedback, nil, testLogger()).Handler()
}

func TestHealthz(t *testing.T) {
	handler := newTestRouter(&stubChat{}, &stubFeedback{})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestQueryReturnsAnswerAndContext(t *testing.T) {
	chat := &stubChat{answer: &domain.Answer{Text: "blue light scatters", Context: "The sky is blue."}}
	handler := newTestRouter(chat, &stubFeedback{})

	body := `{"question":"why is the sky blue","role":"user","user_id":"u1"}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/rag/query", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Answer  string `json:"answer"`
		Context string `json:"context"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Answer != "blue light scatters" || resp.Context != "The sky is blue." {
		t.Fatalf("response = %+v", resp)
	}
}

func TestQueryValidatesRequest(t *testing.T) {
	handler := newTestRouter(&stubChat{}, &stubFeedback{})

	cases := []struct {
		name string
		body string
	}{
		{"missing question", `{"role":"user","user_id":"u1"}`},
		{"missing user", `{"question":"q","role":"user"}`},
		{"bad json", `{`},
		{"feedback out of range", `{"question":"q","role":"user","user_id":"u1","feedback":9}`},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/rag/query", strings.NewReader(tc.body)))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d", tc.name, rec.Code)
		}
	}
}

func TestQueryRecordsInlineFeedback(t *testing.T) {
	chat := &stubChat{answer: &domain.Answer{Text: "answer", Context: "ctx"}}
	feedback := &stubFeedback{}
	handler := newTestRouter(chat, feedback)

	body := `{"question":"q","role":"user","user_id":"u1","feedback":5}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/rag/query", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(feedback.recorded) != 1 || feedback.recorded[0].Rating != 5 {
		t.Fatalf("recorded = %+v", feedback.recorded)
	}
	if feedback.recorded[0].Answer != "answer" {
		t.Fatalf("inline feedback must carry the fresh answer, got %q", feedback.recorded[0].Answer)
	}
}

func TestQueryMapsRoleUnavailableTo503(t *testing.T) {
	chat := &stubChat{err: domain.WrapError(domain.ErrRoleUnavailable, "resolve role", errors.New("no corpus"))}
	handler := newTestRouter(chat, &stubFeedback{})

	body := `{"question":"q","role":"guest","user_id":"u1"}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/rag/query", strings.NewReader(body)))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestQueryMapsUnknownErrorTo500(t *testing.T) {
	chat := &stubChat{err: errors.New("generation blew up")}
	handler := newTestRouter(chat, &stubFeedback{})

	body := `{"question":"q","role":"user","user_id":"u1"}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/rag/query", strings.NewReader(body)))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSubmitFeedbackAccepted(t *testing.T) {
	feedback := &stubFeedback{}
	handler := newTestRouter(&stubChat{}, feedback)

	body := `{"query":"q","answer":"a","feedback":3}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/feedback", strings.NewReader(body)))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(feedback.recorded) != 1 || feedback.recorded[0].Rating != 3 {
		t.Fatalf("recorded = %+v", feedback.recorded)
	}
}

func TestSubmitFeedbackInvalidRating(t *testing.T) {
	feedback := &stubFeedback{err: domain.WrapError(domain.ErrInvalidInput, "record feedback", errors.New("rating out of range"))}
	handler := newTestRouter(&stubChat{}, feedback)

	body := `{"query":"q","answer":"a","feedback":11}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/feedback", strings.NewReader(body)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	handler := newTestRouter(&stubChat{}, &stubFeedback{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/rag/query", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRateLimiterRejectsBurst(t *testing.T) {
	chat := &stubChat{answer: &domain.Answer{Text: "a", Context: "c"}}
	handler := NewRouter(chat, &stubFeedback{}, NewClientLimiter(1, 1), testLogger()).Handler()

	body := `{"question":"q","role":"user","user_id":"u1"}`
	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/rag/query", strings.NewReader(body))
	req.RemoteAddr = "10.0.0.1:1234"
	handler.ServeHTTP(first, req)
	if first.Code != http.StatusOK {
		t.Fatalf("first request status = %d", first.Code)
	}

	second := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/v1/rag/query", strings.NewReader(body))
	req.RemoteAddr = "10.0.0.1:5678"
	handler.ServeHTTP(second, req)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d", second.Code)
	}
}
