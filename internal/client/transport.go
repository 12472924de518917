package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ashureev/draft-studio/internal/drafting"
)

// AnalyzePath is the single route every draft operation is posted to.
const AnalyzePath = "/api/analyze"

// Transport delivers an analyze request and returns the response envelope.
// Failures reported by the service arrive as an envelope with Success=false;
// a returned error means the request never completed.
type Transport interface {
	Analyze(ctx context.Context, req drafting.AnalyzeRequest) (*drafting.AnalyzeResponse, error)
}

// HTTPTransport posts requests to a running server.
type HTTPTransport struct {
	baseURL    string
	httpClient *http.Client
	header     http.Header
}

// NewHTTPTransport creates a transport for the server at baseURL.
func NewHTTPTransport(baseURL string, timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		header:     make(http.Header),
	}
}

// SetHeader adds a header to every request, e.g. the tab session ID.
func (t *HTTPTransport) SetHeader(key, value string) {
	t.header.Set(key, value)
}

// Analyze implements Transport.
func (t *HTTPTransport) Analyze(ctx context.Context, req drafting.AnalyzeRequest) (*drafting.AnalyzeResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+AnalyzePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, vs := range t.header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Debug("failed to close analyze response body", "error", closeErr)
		}
	}()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var out drafting.AnalyzeResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("unexpected response (status %d): %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	if resp.StatusCode != http.StatusOK && out.Success {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if !out.Success && out.Error == "" {
		out.Error = http.StatusText(resp.StatusCode)
	}
	return &out, nil
}

// LocalTransport calls a drafting service in-process.
type LocalTransport struct {
	svc *drafting.Service
}

// NewLocalTransport wraps svc.
func NewLocalTransport(svc *drafting.Service) *LocalTransport {
	return &LocalTransport{svc: svc}
}

// Analyze implements Transport.
func (t *LocalTransport) Analyze(ctx context.Context, req drafting.AnalyzeRequest) (*drafting.AnalyzeResponse, error) {
	resp, err := t.svc.Analyze(ctx, req)
	if err != nil {
		return &drafting.AnalyzeResponse{Success: false, Error: err.Error()}, nil
	}
	return resp, nil
}
