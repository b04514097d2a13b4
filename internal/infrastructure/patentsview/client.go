package patentsview

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/patentminer/patentminer/internal/config"
	"github.com/patentminer/patentminer/internal/infrastructure/monitoring/logging"
	"github.com/patentminer/patentminer/pkg/errors"
)

// Provider tags records and diagnostics originating from this client.
const Provider = "patentsview_patentsearch"

// RawPatent mirrors the PatentSearch response shape for one patent.
type RawPatent struct {
	PatentID       string `json:"patent_id"`
	PatentTitle    string `json:"patent_title"`
	PatentAbstract string `json:"patent_abstract"`
	PatentDate     string `json:"patent_date"`
	PatentType     string `json:"patent_type"`

	Applications []struct {
		FilingDate string `json:"filing_date"`
	} `json:"application"`

	Assignees []struct {
		AssigneeType         string `json:"assignee_type"`
		AssigneeOrganization string `json:"assignee_organization"`
	} `json:"assignees"`
}

type searchResponse struct {
	Error     bool        `json:"error"`
	Count     int         `json:"count"`
	TotalHits int         `json:"total_hits"`
	Patents   []RawPatent `json:"patents"`
}

// Client is an authenticated PatentSearch API client with flat-delay,
// fixed-count retries.  Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	maxRetries int
	retryDelay time.Duration
	logger     logging.Logger
}

// NewClient constructs a Client from discovery configuration.  The API key
// is checked at call time, not here, so a server can boot without one and
// fail only the discovery operations that need it.
func NewClient(cfg config.DiscoveryConfig, logger logging.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     logger.Named("patentsview"),
	}
}

// Search executes the query and pages through results until limit records
// are collected or the result set is exhausted.
func (c *Client) Search(ctx context.Context, q Query, limit int) ([]RawPatent, error) {
	if c.apiKey == "" {
		return nil, errors.New(errors.ErrCodeDiscoveryMissingAPIKey,
			"patentsview api key is not configured").
			WithDetail("set PATMINER_DISCOVERY_API_KEY before running discovery")
	}
	if limit <= 0 {
		limit = defaultPerPage
	}

	var all []RawPatent
	totalHits := -1

	for page := 1; len(all) < limit; page++ {
		q.Page = page
		body, err := c.fetchPage(ctx, BuildPayload(q))
		if err != nil {
			return nil, err
		}

		if totalHits < 0 {
			totalHits = body.TotalHits
		}
		if len(body.Patents) == 0 {
			break
		}
		all = append(all, body.Patents...)

		if totalHits >= 0 && len(all) >= totalHits {
			break
		}
	}

	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// fetchPage posts one payload, retrying transport failures maxRetries times
// with a flat delay.  HTTP-level rejections are not retried: a bad key or a
// bad payload will not improve on a second attempt.
func (c *Client) fetchPage(ctx context.Context, payload map[string]any) (*searchResponse, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "marshaling patentsview payload")
	}

	var resp *http.Response
	var lastErr error

	attempts := c.maxRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(encoded))
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "building patentsview request")
		}
		req.Header.Set("X-Api-Key", c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, lastErr = c.httpClient.Do(req)
		if lastErr == nil {
			break
		}

		c.logger.Warn("patentsview request failed",
			logging.Int("attempt", attempt),
			logging.Err(lastErr))

		if attempt == attempts {
			return nil, errors.Wrap(lastErr, errors.ErrCodeDiscoveryTransport,
				fmt.Sprintf("patentsview unreachable after %d attempts", attempts))
		}

		select {
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), errors.ErrCodeDiscoveryTransport, "patentsview request canceled")
		case <-time.After(c.retryDelay):
		}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, errors.New(errors.ErrCodeDiscoveryAuthFailed,
			"patentsview rejected the api key").
			WithDetail(fmt.Sprintf("http %d; verify the X-Api-Key value and key activation", resp.StatusCode))
	case resp.StatusCode >= 400:
		reason := resp.Header.Get("X-Status-Reason")
		return nil, errors.New(errors.ErrCodeDiscoveryTransport,
			fmt.Sprintf("patentsview returned http %d", resp.StatusCode)).
			WithDetail(reason)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDiscoveryTransport, "reading patentsview response")
	}

	var body searchResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDiscoverySchema,
			"patentsview response was not valid json")
	}
	if body.Error {
		return nil, errors.New(errors.ErrCodeDiscoverySchema,
			"patentsview response signaled an api-level error").
			WithDetail("check the q/f/s/o payload against the PatentSearch docs")
	}
	return &body, nil
}
