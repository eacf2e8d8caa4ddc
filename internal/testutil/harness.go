// Package testutil holds helpers shared by the package tests.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/experimentor/internal/ctxlog"
	"github.com/vk/experimentor/internal/grid"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Context returns a context whose logger writes debug-level text into a
// buffer, so tests can assert on log lines.
func Context(t *testing.T) (context.Context, *SafeBuffer) {
	t.Helper()
	buf := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return ctxlog.WithLogger(t.Context(), logger), buf
}

// WriteFile writes content under dir and returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// Call is one recorded executor invocation.
type Call struct {
	Title     string
	Config    grid.Params
	LogTarget string
}

// FlakyExecutor fails the first FailuresPerTitle invocations of every title
// and succeeds afterwards. A negative FailuresPerTitle fails forever. When a
// log target is given, each invocation writes a line into it.
type FlakyExecutor struct {
	FailuresPerTitle int

	mu     sync.Mutex
	calls  []Call
	counts map[string]int
}

// RunExperiment implements executor.Executor.
func (f *FlakyExecutor) RunExperiment(ctx context.Context, title string, cfg grid.Params, logTarget string) error {
	f.mu.Lock()
	if f.counts == nil {
		f.counts = make(map[string]int)
	}
	f.counts[title]++
	n := f.counts[title]
	f.calls = append(f.calls, Call{Title: title, Config: cfg, LogTarget: logTarget})
	f.mu.Unlock()

	if logTarget != "" {
		line := fmt.Sprintf("%s attempt %d %s\n", title, n, cfg)
		if err := os.WriteFile(logTarget, []byte(line), 0o644); err != nil {
			return err
		}
	}
	if f.FailuresPerTitle < 0 || n <= f.FailuresPerTitle {
		return fmt.Errorf("attempt %d of %s failed", n, title)
	}
	return nil
}

// Calls returns the recorded invocations in order.
func (f *FlakyExecutor) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Titles returns the title of every recorded invocation in order.
func (f *FlakyExecutor) Titles() []string {
	calls := f.Calls()
	titles := make([]string, 0, len(calls))
	for _, c := range calls {
		titles = append(titles, c.Title)
	}
	return titles
}
