package tei

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/athenus-project/rag-engine/internal/infrastructure/resilience"
)

// Client scores (query, text) pairs against a text-embeddings-inference
// reranker endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	exec       *resilience.Executor
}

func New(baseURL string, exec *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		exec:       exec,
	}
}

// Predict returns one relevance score per input text, aligned with the input
// order regardless of the order the endpoint ranks them in.
func (c *Client) Predict(ctx context.Context, query string, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(map[string]any{
		"query": query,
		"texts": texts,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal rerank request: %w", err)
	}

	var ranked []struct {
		Index int     `json:"index"`
		Score float64 `json:"score"`
	}

	doRequest := func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rerank", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create rerank request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("rerank request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			return &statusError{status: resp.Status, code: resp.StatusCode, body: strings.TrimSpace(string(respBody))}
		}
		if err := json.NewDecoder(resp.Body).Decode(&ranked); err != nil {
			return fmt.Errorf("decode rerank response: %w", err)
		}
		return nil
	}

	if c.exec != nil {
		err = c.exec.Execute(ctx, "rerank", doRequest, classifyRerankError)
	} else {
		err = doRequest(ctx)
	}
	if err != nil {
		return nil, err
	}

	scores := make([]float64, len(texts))
	for _, r := range ranked {
		if r.Index < 0 || r.Index >= len(scores) {
			return nil, fmt.Errorf("rerank response index %d out of range", r.Index)
		}
		scores[r.Index] = r.Score
	}
	return scores, nil
}

type statusError struct {
	status string
	code   int
	body   string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("rerank status: %s", e.status)
	}
	return fmt.Sprintf("rerank status: %s: %s", e.status, e.body)
}

func classifyRerankError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{}
	}

	var statusErr *statusError
	if errors.As(err, &statusErr) {
		switch statusErr.code {
		case http.StatusRequestTimeout, http.StatusTooManyRequests,
			http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
		default:
			return resilience.ErrorClassification{}
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClassification{RecordFailure: true}
}
