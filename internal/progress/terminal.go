// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/gookit/color"
	"github.com/mattn/go-isatty"
	"github.com/vk/experimentor/internal/grid"
)

// TerminalWriter picks where progress lines go: stdout when it is a terminal,
// otherwise stderr when that is one. It returns nil when neither is, so that
// piped or redirected runs stay free of progress noise.
func TerminalWriter(stdout, stderr *os.File) io.Writer {
	if isTerminal(stdout) {
		return stdout
	}
	if isTerminal(stderr) {
		return stderr
	}
	return nil
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Terminal prints one line per event.
type Terminal struct {
	w     io.Writer
	now   func() time.Time
	mu    sync.Mutex
	start time.Time
}

// NewTerminal returns a Terminal writing to w.
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w, now: time.Now}
}

func (t *Terminal) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, format, args...)
}

func (t *Terminal) BatchStarted(total int) {
	t.start = t.now()
	t.printf("%s %d experiments\n", color.Cyan.Sprint("▶"), total)
}

func (t *Terminal) Advanced(done, total int, title string) {
	t.printf("[%s] %s %s\n", counter(done, total), color.Green.Sprint("✓"), title)
}

func (t *Terminal) Skipped(title string) {
	t.printf("%s %s (already logged)\n", color.Gray.Sprint("skip"), title)
}

func (t *Terminal) AttemptFailed(title string, attempt, maxTrials int, cfg grid.Params, err error) {
	t.printf("%s %s trial %d/%d %s: %v\n", color.Red.Sprint("✗"), title, attempt, maxTrials, cfg, err)
}

func (t *Terminal) BatchFinished(summary Summary, err error) {
	if err != nil {
		t.printf("%s %s: %v\n", color.Red.Sprint("■"), summary, err)
		return
	}
	t.printf("%s %s\n", color.Green.Sprint("■"), summary)
}

func counter(done, total int) string {
	width := len(fmt.Sprint(total))
	return fmt.Sprintf("%*d/%d", width, done, total)
}
