// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package cmdexecutor runs each experiment as an external command whose
// arguments are rendered from the experiment configuration.
package cmdexecutor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/vk/experimentor/internal/ctxlog"
	"github.com/vk/experimentor/internal/grid"
)

// DefaultShell interprets commands in shell mode.
const DefaultShell = "/bin/sh"

// TitleEnv is set in the child environment to the experiment title.
const TitleEnv = "EXPERIMENTOR_TITLE"

// ExitError reports a command that ran but did not exit with status zero.
type ExitError struct {
	Command string
	Code    int
	Err     error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s returns non-zero value: %d", e.Command, e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Executor runs a base command with the rendered configuration appended.
//
// In shell mode (the default) the command line is handed to the shell as one
// string, so the base command may contain pipes or variables and rendered
// values are subject to word splitting. In direct mode the base command is
// split on whitespace and executed with the rendered arguments as they are.
type Executor struct {
	base   string
	direct bool
	shell  string
	dir    string
	env    []string
	stdout io.Writer
	stderr io.Writer
}

// Option configures an Executor.
type Option func(*Executor)

// WithDirect executes the command without a shell.
func WithDirect() Option {
	return func(e *Executor) { e.direct = true }
}

// WithShell sets the shell used in shell mode.
func WithShell(path string) Option {
	return func(e *Executor) { e.shell = path }
}

// WithWorkDir sets the working directory of the child.
func WithWorkDir(dir string) Option {
	return func(e *Executor) { e.dir = dir }
}

// WithEnv adds KEY=VALUE pairs to the child environment.
func WithEnv(kv ...string) Option {
	return func(e *Executor) { e.env = append(e.env, kv...) }
}

// WithOutput sets where the child's output goes when an experiment has no log
// file. It defaults to the process's own stdout and stderr.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(e *Executor) {
		e.stdout = stdout
		e.stderr = stderr
	}
}

// New returns an Executor for the base command.
func New(base string, opts ...Option) (*Executor, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return nil, errors.New("command must not be empty")
	}
	e := &Executor{
		base:   base,
		shell:  DefaultShell,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// CommandLine returns the command as it would be run for cfg.
func (e *Executor) CommandLine(cfg grid.Params) string {
	return strings.Join(append([]string{e.base}, Args(cfg)...), " ")
}

func (e *Executor) command(ctx context.Context, cfg grid.Params) *exec.Cmd {
	if e.direct {
		fields := strings.Fields(e.base)
		return exec.CommandContext(ctx, fields[0], append(fields[1:], Args(cfg)...)...)
	}
	return exec.CommandContext(ctx, e.shell, "-c", e.CommandLine(cfg))
}

// RunExperiment runs the command for one configuration. With a log target the
// child's stdout is written to that file, replacing its content; stderr always
// goes to the configured output.
func (e *Executor) RunExperiment(ctx context.Context, title string, cfg grid.Params, logTarget string) error {
	logger := ctxlog.FromContext(ctx)
	line := e.CommandLine(cfg)

	cmd := e.command(ctx, cfg)
	cmd.Dir = e.dir
	cmd.Env = append(os.Environ(), e.env...)
	cmd.Env = append(cmd.Env, TitleEnv+"="+title)
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr

	if logTarget != "" {
		f, err := os.Create(logTarget)
		if err != nil {
			return fmt.Errorf("failed to open log file for %s: %w", title, err)
		}
		defer f.Close()
		cmd.Stdout = f
	}

	logger.Debug("Running command.", "command", line, "direct", e.direct)
	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Command: line, Code: exitErr.ExitCode(), Err: err}
	}
	return fmt.Errorf("failed to run %s: %w", line, err)
}
