// Package webhook posts talklog reports to HTTP endpoints.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ccollicutt/talklog/pkg/config"
	"github.com/ccollicutt/talklog/pkg/output"
)

const (
	// DefaultTimeout applies when a webhook has no timeout of its own.
	DefaultTimeout = 10 * time.Second

	// RunHeader carries the report's run id.
	RunHeader = "X-Talklog-Run"

	userAgent       = "talklog-webhook"
	maxResponseBody = 1 << 20
)

// Client delivers reports to webhook endpoints.
type Client struct {
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a webhook client.
func NewClient(opts ...Option) *Client {
	c := &Client{httpClient: &http.Client{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Response is the outcome of one delivery.
type Response struct {
	// Name is the webhook name, or its URL when unnamed.
	Name       string
	StatusCode int
	Body       string
	Duration   time.Duration
	Error      error
}

// Success reports a delivery that got a 2xx answer.
func (r *Response) Success() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// ShouldSend reports whether a webhook with the given trigger fires for report.
// An empty trigger behaves like on_results.
func ShouldSend(trigger config.WebhookTrigger, report *output.Report) bool {
	switch trigger {
	case config.WebhookTriggerAlways:
		return true
	case config.WebhookTriggerNever:
		return false
	default:
		return report.HasResults()
	}
}

// Send posts report to wh regardless of its trigger.
func (c *Client) Send(ctx context.Context, report *output.Report, wh config.WebhookConfig) *Response {
	payload, err := json.Marshal(report)
	if err != nil {
		return &Response{Name: displayName(wh), Error: fmt.Errorf("encoding report: %w", err)}
	}
	return c.post(ctx, payload, report.Metadata.RunID, wh)
}

// Dispatch sends report to every webhook whose trigger fires, in order. A
// failed delivery does not stop the remaining ones.
func (c *Client) Dispatch(ctx context.Context, report *output.Report, hooks []config.WebhookConfig) []*Response {
	var due []config.WebhookConfig
	for _, wh := range hooks {
		if ShouldSend(wh.Trigger, report) {
			due = append(due, wh)
		}
	}
	if len(due) == 0 {
		return nil
	}

	payload, err := json.Marshal(report)
	responses := make([]*Response, 0, len(due))
	for _, wh := range due {
		if err != nil {
			responses = append(responses, &Response{Name: displayName(wh), Error: fmt.Errorf("encoding report: %w", err)})
			continue
		}
		responses = append(responses, c.post(ctx, payload, report.Metadata.RunID, wh))
	}
	return responses
}

func (c *Client) post(ctx context.Context, payload []byte, runID string, wh config.WebhookConfig) *Response {
	start := time.Now()
	resp := &Response{Name: displayName(wh)}
	fail := func(err error) *Response {
		resp.Error = err
		resp.Duration = time.Since(start)
		return resp
	}

	timeout := wh.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wh.URL, bytes.NewReader(payload))
	if err != nil {
		return fail(fmt.Errorf("building request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if runID != "" {
		req.Header.Set(RunHeader, runID)
	}
	if wh.Token != "" {
		req.Header.Set("Authorization", "Bearer "+wh.Token)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(fmt.Errorf("posting to %s: %w", resp.Name, err))
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	resp.StatusCode = httpResp.StatusCode
	if err != nil {
		return fail(fmt.Errorf("reading response: %w", err))
	}
	resp.Body = string(body)

	if resp.StatusCode >= 400 {
		return fail(fmt.Errorf("webhook returned status %d", resp.StatusCode))
	}
	resp.Duration = time.Since(start)
	return resp
}

func displayName(wh config.WebhookConfig) string {
	if wh.Name != "" {
		return wh.Name
	}
	return wh.URL
}
