package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/experimentor/internal/logdir"
	"github.com/vk/experimentor/internal/testutil"
)

const gridJSON = `[{"a": {"n": 1}, "b": {"n": 2}}, {"x": "1", "y": "2"}]`

type result struct {
	out, errOut string
	err         error
}

func execute(t *testing.T, ctx context.Context, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	err := Execute(ctx, args, &out, &errOut)
	return result{out: out.String(), errOut: errOut.String(), err: err}
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	return exitErr.Code
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	gridPath := testutil.WriteFile(t, dir, "grid.json", gridJSON)
	logDir := filepath.Join(dir, "logs")

	res := execute(t, context.Background(), "run", "--config-file", gridPath, "--script", "echo", "--log-dir", logDir)
	require.NoError(t, res.err)
	assert.Contains(t, res.errOut, "Batch finished")

	f, err := logdir.OpenLatest(logDir, "b_y")
	require.NoError(t, err)
	defer f.Close()
	content, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	assert.Equal(t, "--n 2 2\n", string(content))
}

func TestRun_ExitCodes(t *testing.T) {
	dir := t.TempDir()
	gridPath := testutil.WriteFile(t, dir, "grid.json", gridJSON)
	dupPath := testutil.WriteFile(t, dir, "dup.json", `[{"a": 1}, {"a": 2}]`)
	busyDir := filepath.Join(dir, "busy")
	testutil.WriteFile(t, busyDir, logdir.LockFileName, "pid: 1\n")

	testCases := []struct {
		name        string
		args        []string
		code        int
		errContains string
	}{
		{name: "missing grid flag", args: []string{"run", "--script", "echo"}, code: ExitUsage, errContains: "config-file is required"},
		{name: "missing executor", args: []string{"run", "-c", gridPath}, code: ExitUsage, errContains: "one of script or endpoint"},
		{name: "no-log with log-dir", args: []string{"run", "-c", gridPath, "--script", "echo", "--no-log", "--log-dir", "x"}, code: ExitUsage, errContains: "no-log"},
		{name: "script with endpoint", args: []string{"run", "-c", gridPath, "--script", "echo", "--endpoint", "http://localhost/x"}, code: ExitUsage},
		{name: "bad max trial", args: []string{"run", "-c", gridPath, "--script", "echo", "--max-trial", "0"}, code: ExitUsage, errContains: "max-trial"},
		{name: "unknown flag", args: []string{"run", "--nope"}, code: ExitUsage, errContains: "unknown flag"},
		{name: "unknown command", args: []string{"frobnicate"}, code: ExitUsage},
		{name: "missing grid file", args: []string{"run", "-c", filepath.Join(dir, "missing.json"), "--script", "echo"}, code: ExitUsage, errContains: "failed to load grid"},
		{name: "duplicate key", args: []string{"run", "-c", dupPath, "--script", "echo", "--no-log"}, code: ExitUsage, errContains: "duplicated key"},
		{name: "busy log dir", args: []string{"run", "-c", gridPath, "--script", "echo", "--log-dir", busyDir}, code: ExitFailure, errContains: "in use"},
		{name: "trials exhausted", args: []string{"run", "-c", gridPath, "--script", "exit 1;", "--no-log", "--max-trial", "2"}, code: ExitFailure, errContains: "failed all 2 trials"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := execute(t, context.Background(), tc.args...)
			assert.Equal(t, tc.code, exitCode(t, res.err))
			if tc.errContains != "" {
				assert.Contains(t, res.err.Error(), tc.errContains)
			}
		})
	}
}

func TestRun_Interrupted(t *testing.T) {
	gridPath := testutil.WriteFile(t, t.TempDir(), "grid.json", gridJSON)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := execute(t, ctx, "run", "-c", gridPath, "--script", "echo", "--no-log")
	assert.Equal(t, ExitInterrupted, exitCode(t, res.err))
}

func TestRun_EnvironmentOverrides(t *testing.T) {
	gridPath := testutil.WriteFile(t, t.TempDir(), "grid.json", gridJSON)
	t.Setenv("EXPERIMENTOR_CONFIG_FILE", gridPath)
	t.Setenv("EXPERIMENTOR_SCRIPT", "echo")
	t.Setenv("EXPERIMENTOR_NO_LOG", "true")

	res := execute(t, context.Background(), "run")
	require.NoError(t, res.err)

	t.Setenv("EXPERIMENTOR_MAX_TRIAL", "0")
	res = execute(t, context.Background(), "run")
	assert.Equal(t, ExitUsage, exitCode(t, res.err))

	res = execute(t, context.Background(), "run", "--max-trial", "1")
	assert.NoError(t, res.err, "flags win over the environment")
}

func TestRun_SettingsFile(t *testing.T) {
	dir := t.TempDir()
	gridPath := testutil.WriteFile(t, dir, "grid.json", gridJSON)
	settings := testutil.WriteFile(t, dir, "settings.yaml", "script: echo\nno-log: true\nlog-format: json\nconfig-file: "+gridPath+"\n")

	res := execute(t, context.Background(), "run", "--settings", settings)
	require.NoError(t, res.err)
	assert.Contains(t, res.errOut, `"level":"INFO"`, "log-format comes from the settings file")
	assert.Contains(t, res.errOut, "Batch finished.")

	res = execute(t, context.Background(), "run", "--settings", filepath.Join(dir, "missing.yaml"))
	assert.Equal(t, ExitUsage, exitCode(t, res.err))
}

func TestRun_DryRun(t *testing.T) {
	dir := t.TempDir()
	gridPath := testutil.WriteFile(t, dir, "grid.json", gridJSON)
	logDir := filepath.Join(dir, "logs")

	res := execute(t, context.Background(), "run", "-c", gridPath, "--script", "train", "--log-dir", logDir, "--dry-run", "--log-level", "error")
	require.NoError(t, res.err)
	assert.Contains(t, res.errOut, "a_x\ttrain --n 1 1\n")
	assert.NoDirExists(t, logDir)
}

func TestList(t *testing.T) {
	gridPath := testutil.WriteFile(t, t.TempDir(), "grid.json", gridJSON)

	res := execute(t, context.Background(), "list", "--config-file", gridPath)
	require.NoError(t, res.err)
	assert.Equal(t, "4 experiments\na_x\na_y\nb_x\nb_y\n", res.out)

	res = execute(t, context.Background(), "list")
	assert.Equal(t, ExitUsage, exitCode(t, res.err))
}

func TestLatest(t *testing.T) {
	root := t.TempDir()
	path := testutil.WriteFile(t, root, "a_x/2024_05_01_10_00_00.log", "accuracy 0.9\n")

	res := execute(t, context.Background(), "latest", "--log-dir", root, "a_x")
	require.NoError(t, res.err)
	assert.Equal(t, path+"\n", res.out)

	res = execute(t, context.Background(), "latest", "--log-dir", root, "--cat", "a_x")
	require.NoError(t, res.err)
	assert.Equal(t, "accuracy 0.9\n", res.out)

	res = execute(t, context.Background(), "latest", "--log-dir", root, "b_y")
	assert.Equal(t, ExitFailure, exitCode(t, res.err))
	assert.ErrorIs(t, res.err, logdir.ErrNoArtifact)

	res = execute(t, context.Background(), "latest")
	assert.Equal(t, ExitUsage, exitCode(t, res.err))
}

func TestVersion(t *testing.T) {
	res := execute(t, context.Background(), "version")
	require.NoError(t, res.err)
	assert.Equal(t, "experimentor dev\n", res.out)
}
