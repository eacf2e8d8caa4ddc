package progress

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/experimentor/internal/grid"
)

// recorder collects event names, for checking fan-out order.
type recorder struct {
	name   string
	events *[]string
}

func (r recorder) BatchStarted(int) { *r.events = append(*r.events, r.name+":started") }
func (r recorder) Advanced(int, int, string) { *r.events = append(*r.events, r.name+":advanced") }
func (r recorder) Skipped(string) { *r.events = append(*r.events, r.name+":skipped") }
func (r recorder) AttemptFailed(string, int, int, grid.Params, error) {
	*r.events = append(*r.events, r.name+":failed")
}
func (r recorder) BatchFinished(Summary, error) { *r.events = append(*r.events, r.name+":finished") }

func TestJoin(t *testing.T) {
	assert.Equal(t, Nop{}, Join())
	assert.Equal(t, Nop{}, Join(nil, nil))

	var events []string
	single := recorder{name: "a", events: &events}
	assert.Equal(t, single, Join(nil, single))

	o := Join(single, recorder{name: "b", events: &events})
	o.BatchStarted(1)
	o.Skipped("x")
	o.Advanced(1, 1, "x")
	o.AttemptFailed("x", 1, 1, nil, errors.New("boom"))
	o.BatchFinished(Summary{}, nil)

	assert.Equal(t, []string{
		"a:started", "b:started",
		"a:skipped", "b:skipped",
		"a:advanced", "b:advanced",
		"a:failed", "b:failed",
		"a:finished", "b:finished",
	}, events)
}

func TestSummaryString(t *testing.T) {
	s := Summary{Total: 4, Succeeded: 2, Retried: 1, Skipped: 1, Trials: 5, State: "aborted", FailedTitle: "b_d", Elapsed: 1500 * time.Millisecond}
	assert.Equal(t, "aborted: 2/4 succeeded (1 after retry), 1 skipped, 5 trials in 1.5s, stopped at b_d", s.String())
}

func TestTerminal(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)

	term.BatchStarted(12)
	term.Skipped("a_c")
	term.Advanced(1, 12, "a_c")
	term.AttemptFailed("a_d", 1, 3, grid.Params{{Key: "lr", Value: 0.1}}, errors.New("exit status 1"))
	term.Advanced(2, 12, "a_d")
	term.BatchFinished(Summary{State: "completed", Total: 12, Succeeded: 1}, nil)

	out := buf.String()
	assert.Contains(t, out, "12 experiments")
	assert.Contains(t, out, "a_c (already logged)")
	assert.Contains(t, out, " 1/12")
	assert.Contains(t, out, "a_d trial 1/3 {lr: 0.1}: exit status 1")
	assert.Contains(t, out, " 2/12")
	assert.Contains(t, out, "completed: 1/12 succeeded")
}

func TestTerminalWriter_NoTerminal(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer f.Close()

	assert.Nil(t, TerminalWriter(f, f))
	assert.Nil(t, TerminalWriter(nil, nil))
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	m := NewMetrics(reg)

	m.BatchStarted(4)
	assert.Equal(t, 4.0, testutil.ToFloat64(m.total))

	m.Skipped("a_c")
	m.Advanced(1, 4, "a_c")
	m.AttemptFailed("a_d", 1, 2, nil, errors.New("boom"))
	m.AttemptFailed("a_d", 2, 2, nil, errors.New("boom"))
	m.BatchFinished(Summary{State: "aborted", Succeeded: 0, Skipped: 1, FailedTitle: "a_d"}, errors.New("exhausted"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.done))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.failures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.experiments.WithLabelValues("skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.experiments.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.batches.WithLabelValues("aborted")))

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Positive(t, n)
}

func TestSocketIO_Payloads(t *testing.T) {
	type emitted struct {
		event   string
		payload map[string]any
	}
	var got []emitted
	closed := false
	s := &SocketIO{
		batchID: "batch-1",
		logger:  slog.New(slog.DiscardHandler),
		emit: func(event string, payload map[string]any) {
			got = append(got, emitted{event, payload})
		},
		close: func() { closed = true },
	}

	s.BatchStarted(2)
	s.AttemptFailed("a", 1, 3, grid.Params{{Key: "k", Value: int64(1)}}, errors.New("boom"))
	s.Advanced(1, 2, "a")
	s.Skipped("b")
	s.BatchFinished(Summary{State: "completed", Total: 2, Succeeded: 1, Skipped: 1}, nil)
	require.NoError(t, s.Close())

	require.Len(t, got, 5)
	assert.Equal(t, EventBatchStarted, got[0].event)
	assert.Equal(t, 2, got[0].payload["total"])
	assert.Equal(t, "batch-1", got[0].payload["batch_id"])

	assert.Equal(t, EventAttemptFailed, got[1].event)
	assert.Equal(t, "boom", got[1].payload["error"])
	assert.Equal(t, map[string]any{"k": int64(1)}, got[1].payload["config"])

	assert.Equal(t, EventAdvanced, got[2].event)
	assert.Equal(t, EventSkipped, got[3].event)

	assert.Equal(t, EventBatchFinished, got[4].event)
	assert.Equal(t, "completed", got[4].payload["state"])
	assert.NotContains(t, got[4].payload, "error")
	assert.True(t, closed)
}

func TestDialSocketIO_RejectsRelativeURL(t *testing.T) {
	_, err := DialSocketIO(t.Context(), SocketIOConfig{URL: "/progress"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be absolute")
}
