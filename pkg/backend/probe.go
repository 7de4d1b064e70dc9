package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// ProbeResult is the response seen by a probing machine client.
type ProbeResult struct {
	Status      int
	ContentType string
	Body        string
}

// Plain reports whether the response is a plain-text report.
func (p *ProbeResult) Plain() bool {
	return p.ContentType == "text/plain; charset=utf-8"
}

// Probe requests target the way a machine client would: with Accept:
// text/plain and the given trigger header set to "1". headers are added on
// top and may override both. A nil client means SharedClient.
func Probe(ctx context.Context, client *http.Client, target, triggerHeader string, headers http.Header) (*ProbeResult, error) {
	if client == nil {
		client = SharedClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build probe request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")
	if triggerHeader != "" {
		req.Header.Set(triggerHeader, "1")
	}
	for k, v := range headers {
		req.Header[http.CanonicalHeaderKey(k)] = v
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read probe response: %w", err)
	}

	return &ProbeResult{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        string(body),
	}, nil
}
