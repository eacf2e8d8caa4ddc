// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package logdir

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vk/experimentor/internal/ctxlog"
	"k8s.io/utils/clock"
)

const (
	// LockFileName is the name of the advisory lock marker inside the root.
	LockFileName = "lock"
	// TimeLayout formats artifact names: UTC, second resolution, fixed width.
	TimeLayout = "2006_01_02_15_04_05"
	// Extension is appended to every artifact name.
	Extension = ".log"
)

// Allocation is the result of Allocate: either the path of a fresh log file,
// or Skipped when the experiment already has one.
type Allocation struct {
	Path    string
	Skipped bool
}

// Directory is an opened log root. It must be closed to release the lock.
type Directory struct {
	root     string
	clock    clock.PassiveClock
	useLock  bool
	owner    string
	lockPath string

	mu     sync.Mutex
	locked bool
}

// Option configures a Directory.
type Option func(*Directory)

// WithoutLock lets several processes share the root at the same time.
func WithoutLock() Option {
	return func(d *Directory) { d.useLock = false }
}

// WithClock replaces the clock used to name artifacts.
func WithClock(c clock.PassiveClock) Option {
	return func(d *Directory) { d.clock = c }
}

// WithOwner sets the identifier written into the lock marker. A random one is
// generated otherwise.
func WithOwner(id string) Option {
	return func(d *Directory) { d.owner = id }
}

// Open ensures root exists and, unless WithoutLock is given, acquires its
// lock. A held lock yields a DirectoryBusyError.
func Open(ctx context.Context, root string, opts ...Option) (*Directory, error) {
	logger := ctxlog.FromContext(ctx)

	d := &Directory{
		root:     root,
		clock:    clock.RealClock{},
		useLock:  true,
		lockPath: filepath.Join(root, LockFileName),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.owner == "" {
		d.owner = uuid.NewString()
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", root, err)
	}
	if !d.useLock {
		logger.Debug("Log directory opened without lock.", "root", root)
		return d, nil
	}

	f, err := os.OpenFile(d.lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			holder, _ := os.ReadFile(d.lockPath)
			return nil, &DirectoryBusyError{Root: root, Holder: string(holder)}
		}
		return nil, fmt.Errorf("failed to create lock file %s: %w", d.lockPath, err)
	}
	d.locked = true

	_, werr := f.WriteString(d.lockBody())
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		// The marker exists, which is all the lock needs.
		logger.Warn("Failed to record lock owner.", "path", d.lockPath, "error", werr)
	}

	logger.Debug("Log directory locked.", "root", root, "owner", d.owner)
	return d, nil
}

func (d *Directory) lockBody() string {
	host, _ := os.Hostname()
	return fmt.Sprintf("pid: %d\nhost: %s\nowner: %s\nsince: %s\n",
		os.Getpid(), host, d.owner, d.clock.Now().UTC().Format(time.RFC3339))
}

// Root returns the directory path.
func (d *Directory) Root() string {
	return d.root
}

// Locked reports whether this instance currently holds the lock.
func (d *Directory) Locked() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.locked
}

// Close releases the lock if this instance holds it. It is safe to call more
// than once, and a lock file that has already disappeared is not an error.
func (d *Directory) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.locked {
		return nil
	}
	d.locked = false

	if err := os.Remove(d.lockPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove lock file %s: %w", d.lockPath, err)
	}
	return nil
}

// Allocate creates a new, empty log file for title, named after the current
// UTC second. With skipIfExists, a title whose directory is not empty is
// reported as Skipped and nothing is created.
func (d *Directory) Allocate(title string, skipIfExists bool) (Allocation, error) {
	if err := validateTitle(title); err != nil {
		return Allocation{}, &LogAllocationError{Title: title, Op: "use title as directory name", Err: err}
	}

	subdir := filepath.Join(d.root, title)
	if err := os.MkdirAll(subdir, 0o755); err != nil {
		return Allocation{}, &LogAllocationError{Title: title, Op: "create log directory", Err: err}
	}

	if skipIfExists {
		entries, err := os.ReadDir(subdir)
		if err != nil {
			return Allocation{}, &LogAllocationError{Title: title, Op: "list log directory", Err: err}
		}
		if len(entries) > 0 {
			return Allocation{Skipped: true}, nil
		}
	}

	path := filepath.Join(subdir, ArtifactName(d.clock.Now()))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return Allocation{}, &LogAllocationError{Title: title, Op: "create log file", Err: err}
	}
	if err := f.Close(); err != nil {
		return Allocation{}, &LogAllocationError{Title: title, Op: "create log file", Err: err}
	}
	return Allocation{Path: path}, nil
}

// Latest returns the most recent log file of title in this directory.
func (d *Directory) Latest(title string) (string, bool, error) {
	return Latest(d.root, title)
}

// Has reports whether title has at least one log file in this directory.
func (d *Directory) Has(title string) (bool, error) {
	return Has(d.root, title)
}

// ArtifactName returns the file name used for a log allocated at t.
func ArtifactName(t time.Time) string {
	return t.UTC().Format(TimeLayout) + Extension
}

func validateTitle(title string) error {
	switch {
	case title == "":
		return errors.New("title is empty")
	case title == "." || title == "..":
		return fmt.Errorf("title %q is reserved", title)
	case title == LockFileName:
		return fmt.Errorf("title %q collides with the lock file", title)
	case strings.ContainsAny(title, `/\`) || strings.ContainsRune(title, os.PathSeparator):
		return fmt.Errorf("title %q contains a path separator", title)
	}
	return nil
}
