// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package httpexecutor runs each experiment by posting its configuration to
// an HTTP endpoint.
package httpexecutor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/vk/experimentor/internal/ctxlog"
	"github.com/vk/experimentor/internal/grid"
)

// DefaultTimeout bounds a single request unless configured.
const DefaultTimeout = 10 * time.Minute

// maxErrorBody is how much of a failed response is quoted in the error.
const maxErrorBody = 512

// Request is the JSON body sent for every attempt.
type Request struct {
	Title  string      `json:"title"`
	Config grid.Params `json:"config"`
}

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s responded with status %d", e.URL, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Executor posts experiments to one endpoint.
type Executor struct {
	endpoint string
	client   *http.Client
	header   http.Header
}

// Option configures an Executor.
type Option func(*Executor)

// WithClient replaces the HTTP client.
func WithClient(c *http.Client) Option {
	return func(e *Executor) { e.client = c }
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) { e.client.Timeout = d }
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(e *Executor) { e.header.Add(key, value) }
}

// New returns an Executor for endpoint, which must be an absolute http or
// https URL.
func New(endpoint string, opts ...Option) (*Executor, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to parse endpoint: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("endpoint %q must be an absolute http(s) URL", endpoint)
	}

	e := &Executor{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		header: make(http.Header),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Close releases idle connections.
func (e *Executor) Close() error {
	e.client.CloseIdleConnections()
	return nil
}

// RunExperiment posts the experiment and stores the response body in the log
// file when one is given. Any non-2xx status is a failed attempt.
func (e *Executor) RunExperiment(ctx context.Context, title string, cfg grid.Params, logTarget string) error {
	logger := ctxlog.FromContext(ctx)

	if cfg == nil {
		cfg = grid.Params{}
	}
	body, err := json.Marshal(Request{Title: title, Config: cfg})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range e.header {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/json")

	logger.Debug("Posting experiment.", "url", e.endpoint)
	resp, err := e.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()
	logger.Debug("Received HTTP response.", "status", resp.Status)

	var sink io.Writer = io.Discard
	var snippet bytes.Buffer
	if logTarget != "" {
		f, err := os.Create(logTarget)
		if err != nil {
			return fmt.Errorf("failed to open log file for %s: %w", title, err)
		}
		defer f.Close()
		sink = f
	}
	failed := resp.StatusCode < 200 || resp.StatusCode > 299
	if failed {
		sink = io.MultiWriter(sink, &limitedWriter{w: &snippet, n: maxErrorBody})
	}

	if _, err := io.Copy(sink, resp.Body); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if failed {
		return &StatusError{URL: e.endpoint, StatusCode: resp.StatusCode, Body: strings.TrimSpace(snippet.String())}
	}
	return nil
}

// limitedWriter keeps the first n bytes and discards the rest without failing.
type limitedWriter struct {
	w io.Writer
	n int
}

func (l *limitedWriter) Write(p []byte) (int, error) {
	if l.n > 0 {
		keep := p
		if len(keep) > l.n {
			keep = keep[:l.n]
		}
		l.n -= len(keep)
		if _, err := l.w.Write(keep); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}
