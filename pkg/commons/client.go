package commons

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"wcmirror/pkg/config"
	errs "wcmirror/pkg/errors"
	"wcmirror/pkg/logger"
	"wcmirror/pkg/ratelimit"
	"wcmirror/pkg/retry"
)

// Client talks to the Commons API and file endpoints. All outbound requests
// carry the configured identity headers and are paced and retried.
type Client struct {
	apiClient  *http.Client
	fileClient *http.Client
	headers    map[string]string

	apiURL      string
	filePathURL string
	pageSize    int
	maxAttempts int

	apiPacer      ratelimit.Pacer
	downloadPacer ratelimit.Pacer

	metadataBackoff retry.BackoffStrategy
	downloadBackoff retry.BackoffStrategy

	logger logger.Logger
}

// NewClient creates a new Commons client from the given configuration
func NewClient(cfg *config.Config, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		apiClient: &http.Client{
			Timeout: cfg.Commons.APITimeout,
		},
		fileClient: &http.Client{
			Timeout: cfg.Download.Timeout,
		},
		headers: map[string]string{
			"User-Agent": cfg.Commons.UserAgent,
			"Referer":    cfg.Commons.Referer,
		},
		apiURL:        cfg.Commons.APIURL,
		filePathURL:   cfg.Commons.FilePathURL,
		pageSize:      cfg.Scan.PageSize,
		maxAttempts:   cfg.Download.MaxAttempts,
		apiPacer:      ratelimit.NewFixedRate(cfg.RateLimit.APIRequestsPerSecond),
		downloadPacer: ratelimit.NewFixedRate(cfg.RateLimit.DownloadsPerSecond),
		metadataBackoff: &retry.ExponentialBackoff{
			BaseDelay:  time.Second,
			MaxDelay:   16 * time.Second,
			Multiplier: 2.0,
		},
		downloadBackoff: retry.NewErrorTypeBackoff(
			&retry.ExponentialBackoff{
				BaseDelay:  4 * time.Second,
				MaxDelay:   64 * time.Second,
				Multiplier: 2.0,
			},
			&retry.ExponentialBackoff{
				BaseDelay:  time.Second,
				MaxDelay:   8 * time.Second,
				Multiplier: 2.0,
			},
		),
		logger: log,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// get performs a single GET request with the configured headers
func (c *Client) get(ctx context.Context, httpClient *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
			Code:    0,
		}
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		// Preserve context errors so retries stop on cancellation
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
			Code:    0,
		}
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// checkResponseStatus maps the HTTP response status to a typed error
func (c *Client) checkResponseStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		c.logger.WarnWithFields("rate limit exceeded", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return &errs.Error{
			Type:    errs.ErrorTypeRateLimit,
			Message: "rate limit exceeded",
			Code:    resp.StatusCode,
		}
	case resp.StatusCode == http.StatusNotFound:
		return &errs.Error{
			Type:    errs.ErrorTypeNotFound,
			Message: "resource not found",
			Code:    resp.StatusCode,
		}
	case resp.StatusCode >= 500:
		c.logger.ErrorWithFields("server error", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return &errs.Error{
			Type:    errs.ErrorTypeServerError,
			Message: "server error",
			Code:    resp.StatusCode,
		}
	case resp.StatusCode >= 400:
		return &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
			Code:    resp.StatusCode,
		}
	default:
		return nil
	}
}

// fetchMembersPage fetches and decodes one page of a category member listing,
// retrying transient failures on the metadata backoff schedule.
func (c *Client) fetchMembersPage(ctx context.Context, category string, memberType MemberType, cont string) (*categoryMembersResponse, error) {
	url := CategoryMembersURL(c.apiURL, category, memberType, c.pageSize, cont)

	return retry.DoWithResult(func() (*categoryMembersResponse, error) {
		c.apiPacer.Take()

		resp, err := c.get(ctx, c.apiClient, url)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if err := c.checkResponseStatus(resp); err != nil {
			return nil, err
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &errs.Error{
				Type:    errs.ErrorTypeNetwork,
				Message: fmt.Sprintf("failed to read response body: %v", err),
				Code:    resp.StatusCode,
			}
		}

		var page categoryMembersResponse
		if err := json.Unmarshal(body, &page); err != nil {
			c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
				"url":    url,
				"status": resp.StatusCode,
				"error":  err.Error(),
			})
			return nil, &errs.Error{
				Type:    errs.ErrorTypeParsing,
				Message: fmt.Sprintf("failed to parse JSON: %v", err),
				Code:    resp.StatusCode,
			}
		}

		return &page, nil
	}, &retry.Config{
		MaxAttempts: c.maxAttempts,
		Backoff:     c.metadataBackoff,
		RetryIf:     retry.DefaultRetryIf,
		Context:     ctx,
		Logger:      c.logger,
	})
}

// ListCategoryMembers enumerates all members of a category of the given type,
// following continuation tokens until exhausted.
//
// Enumeration fails soft: if the retry budget runs out mid-pagination, the
// members collected so far are returned with complete=false. A non-nil error
// is returned only when the context is cancelled.
func (c *Client) ListCategoryMembers(ctx context.Context, category string, memberType MemberType) ([]CategoryMember, bool, error) {
	var members []CategoryMember
	cont := ""

	for {
		page, err := c.fetchMembersPage(ctx, category, memberType, cont)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return members, false, err
			}
			c.logger.WarnWithFields("category enumeration truncated", map[string]interface{}{
				"category":    category,
				"member_type": string(memberType),
				"collected":   len(members),
				"error":       err.Error(),
			})
			return members, false, nil
		}

		members = append(members, page.Query.CategoryMembers...)

		if page.Continue == nil || page.Continue.CmContinue == "" {
			return members, true, nil
		}
		cont = page.Continue.CmContinue
	}
}

// DownloadFile fetches the binary content for a file by its name (title
// without the File: prefix). The canonical resource URL redirects to the
// actual binary; redirect following is enabled on the underlying client.
func (c *Client) DownloadFile(ctx context.Context, fileName string) ([]byte, error) {
	url := FilePathURL(c.filePathURL, fileName)

	return retry.DoWithResult(func() ([]byte, error) {
		c.downloadPacer.Take()

		resp, err := c.get(ctx, c.fileClient, url)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if err := c.checkResponseStatus(resp); err != nil {
			return nil, err
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &errs.Error{
				Type:    errs.ErrorTypeNetwork,
				Message: fmt.Sprintf("failed to read file body: %v", err),
				Code:    resp.StatusCode,
			}
		}

		c.logger.DebugWithFields("downloaded file", map[string]interface{}{
			"file": fileName,
			"size": len(data),
		})

		return data, nil
	}, &retry.Config{
		MaxAttempts: c.maxAttempts,
		Backoff:     c.downloadBackoff,
		RetryIf:     retry.DefaultRetryIf,
		Context:     ctx,
		Logger:      c.logger,
	})
}
