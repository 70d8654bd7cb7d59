// Package services contains outbound integrations with external providers
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kbtwatch/tracker/utils"
)

const (
	// maxResponseBody bounds how much of the upstream response is read at all
	maxResponseBody = 1 << 20
	// maxCapturedBody bounds how much of a bad response is kept for logs
	maxCapturedBody = 4096
)

// CandidateResult is one parsed item from the upstream feed, normalized to
// strings and guaranteed to carry a period. Dedup happens later, in the
// ingestion flow.
type CandidateResult struct {
	Period string
	Number string
	Color  string
}

// NetworkError reports a transport-level failure calling the upstream API:
// timeout, connection failure, or a non-2xx status.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("results api network error (%s): %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError reports an upstream body that is not a JSON array of objects.
// Body holds the (truncated) raw response for diagnostics.
type ParseError struct {
	Body []byte
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("results api parse error: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ResultsFetcher fetches the latest batch of candidate results
type ResultsFetcher interface {
	FetchLatest(ctx context.Context) ([]CandidateResult, error)
}

// ResultsClient calls the upstream results API over HTTP
type ResultsClient struct {
	APIURL     string
	HTTPClient *http.Client
	Timeout    time.Duration
}

func NewResultsClient(apiURL string, timeout time.Duration) *ResultsClient {
	if timeout <= 0 {
		timeout = utils.DefaultFetchTimeout
	}
	return &ResultsClient{
		APIURL:     strings.TrimSpace(apiURL),
		HTTPClient: &http.Client{Timeout: timeout},
		Timeout:    timeout,
	}
}

// FetchLatest performs one GET against the results API and parses the body.
// Candidates without a period are dropped here; missing number/color fields
// are substituted with the placeholder value. An empty array is a valid
// zero-candidate outcome, not an error.
func (c *ResultsClient) FetchLatest(ctx context.Context) ([]CandidateResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIURL, nil)
	if err != nil {
		return nil, &NetworkError{URL: c.APIURL, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: c.APIURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, &NetworkError{URL: c.APIURL, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &NetworkError{URL: c.APIURL, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var items []map[string]any
	if err := json.Unmarshal(body, &items); err != nil {
		captured := body
		if len(captured) > maxCapturedBody {
			captured = captured[:maxCapturedBody]
		}
		return nil, &ParseError{Body: captured, Err: err}
	}

	candidates := make([]CandidateResult, 0, len(items))
	for _, item := range items {
		period := normalizeField(item["period"], "")
		if period == "" {
			// No identifying key; drop the candidate, keep the batch
			continue
		}
		candidates = append(candidates, CandidateResult{
			Period: period,
			Number: normalizeField(item["number"], utils.MissingFieldPlaceholder),
			Color:  normalizeField(item["color"], utils.MissingFieldPlaceholder),
		})
	}

	return candidates, nil
}

// normalizeField renders an upstream value as a string. The feed is not
// consistent about types (periods arrive both quoted and bare).
func normalizeField(v any, fallback string) string {
	switch val := v.(type) {
	case nil:
		return fallback
	case string:
		if strings.TrimSpace(val) == "" {
			return fallback
		}
		return strings.TrimSpace(val)
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%v", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
