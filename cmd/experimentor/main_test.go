package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/experimentor/internal/app"
	"github.com/vk/experimentor/internal/cli"
	"github.com/vk/experimentor/internal/executor"
	"github.com/vk/experimentor/internal/grid"
)

func writeGrid(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "grid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- a: 1\n  b: 2\n- c: {lr: 0.1}\n"), 0o600))
	return path
}

func TestRun_Help(t *testing.T) {
	t.Parallel()
	out := &bytes.Buffer{}

	err := run(context.Background(), out, &bytes.Buffer{}, []string{"--help"})

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Usage:")
	assert.Contains(t, out.String(), "run")
}

func TestRun_Success(t *testing.T) {
	t.Parallel()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	err := run(context.Background(), out, errOut, []string{"run", "-c", writeGrid(t), "--script", "true", "--no-log"})

	require.NoError(t, err)
	assert.Contains(t, errOut.String(), "Batch finished")
}

func TestRun_PanicRecovery(t *testing.T) {
	t.Parallel()
	panicking := app.WithExecutor(executor.Func(func(context.Context, string, grid.Params, string) error {
		panic("boom")
	}))

	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"run", "-c", writeGrid(t), "--script", "true", "--no-log"}, panicking)

	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, cli.ExitFailure, exitErr.Code)
	assert.Contains(t, exitErr.Message, "application panicked: boom")
}

func TestRun_UsageError(t *testing.T) {
	t.Parallel()

	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"run", "--max-trial", "many"})

	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, cli.ExitUsage, exitErr.Code)
}
