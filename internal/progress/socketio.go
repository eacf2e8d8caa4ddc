// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package progress

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/vk/experimentor/internal/ctxlog"
	"github.com/vk/experimentor/internal/grid"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Event names emitted by SocketIO.
const (
	EventBatchStarted  = "batch_started"
	EventAdvanced      = "advanced"
	EventSkipped       = "skipped"
	EventAttemptFailed = "attempt_failed"
	EventBatchFinished = "batch_finished"
)

// DefaultConnectTimeout bounds how long DialSocketIO waits for the server.
const DefaultConnectTimeout = 15 * time.Second

// SocketIOConfig describes the progress feed endpoint.
type SocketIOConfig struct {
	URL                string
	Namespace          string
	BatchID            string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
}

// SocketIO publishes batch events to a socket.io server. Emits are fire and
// forget: a slow or vanished listener never holds up the batch.
type SocketIO struct {
	batchID string
	logger  *slog.Logger
	emit    func(event string, payload map[string]any)
	close   func()
}

// DialSocketIO connects to the progress feed and waits for the handshake.
func DialSocketIO(ctx context.Context, cfg SocketIOConfig) (*SocketIO, error) {
	logger := ctxlog.FromContext(ctx).With("observer", "socketio", "url", cfg.URL)

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse progress socket URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("progress socket URL %q must be absolute", cfg.URL)
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)

	connected := make(chan error, 1)
	signal := func(err error) {
		select {
		case connected <- err:
		default:
		}
	}
	io.Once(types.EventName("connect"), func(...any) {
		logger.Debug("Connected to progress feed.", "sid", io.Id())
		signal(nil)
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		signal(err)
	})
	io.Connect()

	select {
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}

	return &SocketIO{
		batchID: cfg.BatchID,
		logger:  logger,
		emit: func(event string, payload map[string]any) {
			io.Emit(event, payload)
		},
		close: func() {
			io.Disconnect()
		},
	}, nil
}

// Close disconnects from the server.
func (s *SocketIO) Close() error {
	if s.close != nil {
		s.close()
	}
	return nil
}

func (s *SocketIO) send(event string, payload map[string]any) {
	payload["batch_id"] = s.batchID
	s.logger.Debug("Emitting progress event.", "event", event)
	s.emit(event, payload)
}

func (s *SocketIO) BatchStarted(total int) {
	s.send(EventBatchStarted, map[string]any{"total": total})
}

func (s *SocketIO) Advanced(done, total int, title string) {
	s.send(EventAdvanced, map[string]any{"done": done, "total": total, "title": title})
}

func (s *SocketIO) Skipped(title string) {
	s.send(EventSkipped, map[string]any{"title": title})
}

func (s *SocketIO) AttemptFailed(title string, attempt, maxTrials int, cfg grid.Params, err error) {
	s.send(EventAttemptFailed, map[string]any{
		"title":      title,
		"attempt":    attempt,
		"max_trials": maxTrials,
		"config":     cfg.Map(),
		"error":      err.Error(),
	})
}

func (s *SocketIO) BatchFinished(summary Summary, err error) {
	payload := map[string]any{
		"state":        summary.State,
		"total":        summary.Total,
		"attempted":    summary.Attempted,
		"succeeded":    summary.Succeeded,
		"retried":      summary.Retried,
		"skipped":      summary.Skipped,
		"trials":       summary.Trials,
		"elapsed_ms":   summary.Elapsed.Milliseconds(),
		"failed_title": summary.FailedTitle,
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	s.send(EventBatchFinished, payload)
}
