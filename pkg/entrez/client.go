package entrez

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"entrezharvest/pkg/catalog"
	"entrezharvest/pkg/config"
	errs "entrezharvest/pkg/errors"
	"entrezharvest/pkg/logger"
	"entrezharvest/pkg/ratelimit"
	"entrezharvest/pkg/retry"
)

// Client wraps the three remote operations (list collections, search,
// fetch page) behind calls that apply the retry policy uniformly. The
// client never decides whether a failure is collection-fatal or page-local;
// that decision belongs to the harvester.
type Client struct {
	httpClient *http.Client
	baseURL    string
	params     clientParams
	limiter    ratelimit.Limiter
	retryCfg   config.RetryConfig
	logger     logger.Logger
}

// NewClient creates a new session client from the given configuration
func NewClient(cfg *config.Config, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	baseURL := cfg.Entrez.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		baseURL: baseURL,
		params: clientParams{
			Tool:   cfg.Entrez.Tool,
			Email:  cfg.Entrez.Email,
			APIKey: cfg.Entrez.APIKey,
		},
		limiter:  ratelimit.NewTokenBucket(cfg.RateLimit.RequestsPerSecond, time.Second),
		retryCfg: cfg.Retry,
		logger:   log,
	}
}

// ListDatabases returns the names of all collections the remote service exposes
func (c *Client) ListDatabases(ctx context.Context) ([]string, error) {
	var resp infoResponse
	if err := c.getJSON(ctx, infoURL(c.baseURL, c.params), &resp); err != nil {
		return nil, err
	}
	return resp.Result.DBList, nil
}

// Search submits a query against a collection and returns the result count
// plus the opaque session handles for later page fetches
func (c *Client) Search(ctx context.Context, collection, term string) (*SearchSession, error) {
	var resp searchResponse
	if err := c.getJSON(ctx, searchURL(c.baseURL, collection, term, 0, c.params), &resp); err != nil {
		return nil, err
	}

	if resp.Result.Error != "" {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeBadQuery,
			Message: fmt.Sprintf("search rejected for %s: %s", collection, resp.Result.Error),
			Code:    http.StatusBadRequest,
		}
	}

	count, err := strconv.Atoi(resp.Result.Count)
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: fmt.Sprintf("unparseable result count %q for %s", resp.Result.Count, collection),
		}
	}

	session := &SearchSession{
		Collection: collection,
		Term:       term,
		Count:      count,
		WebEnv:     resp.Result.WebEnv,
		QueryKey:   resp.Result.QueryKey,
		CreatedAt:  time.Now(),
	}

	c.logger.InfoWithFields("search completed", map[string]interface{}{
		"collection": collection,
		"term":       term,
		"count":      count,
	})

	return session, nil
}

// FetchPage retrieves the raw payload for one result page of a search
// session. start is a zero-based offset into the result set.
func (c *Client) FetchPage(ctx context.Context, session *SearchSession, format catalog.FormatPair, start, length int) (string, error) {
	url := fetchURL(c.baseURL, session.Collection, format.RetType, format.RetMode,
		start, length, session.WebEnv, session.QueryKey, c.params)

	body, err := c.getWithRetry(ctx, url)
	if err != nil {
		return "", fmt.Errorf("fetching records %d-%d: %w", start+1, start+length, err)
	}

	return string(body), nil
}

// FetchIDs returns up to max record IDs matching a query, bounded by the
// remote's per-search limit
func (c *Client) FetchIDs(ctx context.Context, collection, term string, max int) ([]string, error) {
	if max > MaxIDListSize {
		max = MaxIDListSize
	}

	var resp searchResponse
	if err := c.getJSON(ctx, searchURL(c.baseURL, collection, term, max, c.params), &resp); err != nil {
		return nil, err
	}

	return resp.Result.IDList, nil
}

// FetchSummaries retrieves brief summaries for the given record IDs
func (c *Client) FetchSummaries(ctx context.Context, collection string, ids []string) ([]RecordSummary, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	body, err := c.getWithRetry(ctx, summaryURL(c.baseURL, collection, ids, c.params))
	if err != nil {
		return nil, err
	}

	summaries, err := parseSummaries(body, collection)
	if err != nil {
		// A summary that cannot be parsed still has usable IDs
		c.logger.WarnWithFields("falling back to bare IDs for summaries", map[string]interface{}{
			"collection": collection,
			"error":      err.Error(),
		})
		fallback := make([]RecordSummary, 0, len(ids))
		for _, id := range ids {
			fallback = append(fallback, RecordSummary{
				ID:         id,
				Title:      fieldUnavailable,
				Authors:    fieldUnavailable,
				Date:       fieldUnavailable,
				Collection: collection,
			})
		}
		return fallback, nil
	}

	return summaries, nil
}

// getWithRetry performs a GET with the configured retry policy. The final
// error after exhaustion is propagated untouched.
func (c *Client) getWithRetry(ctx context.Context, url string) ([]byte, error) {
	return retry.DoWithResult(func() ([]byte, error) {
		return c.get(ctx, url)
	}, &retry.Config{
		MaxRetries: c.retryCfg.MaxRetries,
		Backoff: &retry.ExponentialBackoff{
			Base:      c.retryCfg.BackoffBase,
			JitterMax: c.retryCfg.JitterMax,
		},
		RetryIf: retry.DefaultRetryIf,
		Context: ctx,
		Logger:  c.logger,
	})
}

// get performs a single rate-limited GET request
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		// Cancellation must surface as-is so callers can unwind promptly
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"url":      url,
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
			Code:    0,
		}
	}
	defer resp.Body.Close()

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"url":      url,
		"status":   resp.StatusCode,
		"duration": duration,
	})

	if resp.StatusCode != http.StatusOK {
		return nil, &errs.Error{
			Type:    errs.TypeForStatusCode(resp.StatusCode),
			Message: fmt.Sprintf("server returned status %d", resp.StatusCode),
			Code:    resp.StatusCode,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	return body, nil
}

// getJSON performs a retried GET and decodes the JSON response
func (c *Client) getJSON(ctx context.Context, url string, target interface{}) error {
	body, err := c.getWithRetry(ctx, url)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, target); err != nil {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"error":        err.Error(),
			"body_preview": preview,
		})
		return &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
		}
	}

	return nil
}
