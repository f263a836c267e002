// HTTP client for the upstream grading service.
//
// The upstream is the AI collaborator that actually understands food names,
// exercise descriptions, and affirmations. This client is transport-thin:
// one JSON POST, caller-supplied context for timeout/cancellation, and a
// distinguishable ErrUnavailable wrapper so the engine can surface grading
// failures without mutating any state.
package grading

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"context"
)

// ErrUnavailable indicates the grading collaborator could not produce a
// result (network failure, non-2xx status, malformed body). The engine maps
// it to a retryable "grading_failed" error; nothing is persisted.
var ErrUnavailable = errors.New("grading collaborator unavailable")

// HTTPGrader grades submissions by POSTing to a configured upstream URL.
type HTTPGrader struct {
	// URL is the upstream grading endpoint.
	URL string
	// Client is the HTTP client used for requests. Defaults to
	// http.DefaultClient; callers normally install one with a timeout.
	Client *http.Client
}

// NewHTTPGrader constructs an HTTPGrader for the given endpoint.
func NewHTTPGrader(url string, client *http.Client) *HTTPGrader {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPGrader{URL: url, Client: client}
}

// gradeRequest is the upstream request payload.
type gradeRequest struct {
	Description string `json:"description"`
}

// Grade submits the description and decodes the graded result. All failure
// modes are wrapped in ErrUnavailable; the response body is capped to guard
// against a misbehaving upstream.
func (g *HTTPGrader) Grade(ctx context.Context, description string) (*Result, error) {
	body, err := json.Marshal(gradeRequest{Description: description})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: upstream status %d", ErrUnavailable, resp.StatusCode)
	}

	var out Result
	dec := json.NewDecoder(io.LimitReader(resp.Body, 1<<20))
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return &out, nil
}
