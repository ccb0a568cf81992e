package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/athenus-project/rag-engine/internal/core/domain"
	"github.com/athenus-project/rag-engine/internal/core/ports"
)

type Router struct {
	chatUC     ports.ChatService
	feedbackUC ports.FeedbackRecorder
	limiter    *ClientLimiter
	logger     *slog.Logger
}

func NewRouter(
	chatUC ports.ChatService,
	feedbackUC ports.FeedbackRecorder,
	limiter *ClientLimiter,
	logger *slog.Logger,
) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		chatUC:     chatUC,
		feedbackUC: feedbackUC,
		limiter:    limiter,
		logger:     logger,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/rag/query", rt.queryRAG)
	mux.HandleFunc("/v1/feedback", rt.submitFeedback)

	var handler http.Handler = mux
	if rt.limiter != nil {
		handler = rt.limiter.middleware(handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) queryRAG(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Question string `json:"question"`
		Role     string `json:"role"`
		UserID   string `json:"user_id"`
		Feedback *int   `json:"feedback"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user_id is required"})
		return
	}
	if req.Feedback != nil && (*req.Feedback < 1 || *req.Feedback > 5) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "feedback must be between 1 and 5"})
		return
	}

	answer, err := rt.chatUC.Ask(r.Context(), req.Role, req.UserID, req.Question)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if req.Feedback != nil {
		if err := rt.feedbackUC.Record(r.Context(), req.Question, answer.Text, *req.Feedback); err != nil {
			rt.logger.Error("inline_feedback_failed", "request_id", requestIDFromContext(r.Context()), "error", err)
		}
	}

	writeJSON(w, http.StatusOK, answer)
}

func (rt *Router) submitFeedback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req domain.Feedback
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	if err := rt.feedbackUC.Record(r.Context(), req.Query, req.Answer, req.Rating); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case domain.IsKind(err, domain.ErrRoleUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
