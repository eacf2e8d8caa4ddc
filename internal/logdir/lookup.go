// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package logdir

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Latest returns the lexically last entry of root/title, which is the most
// recently allocated log file. The boolean is false when the title has no
// directory or the directory is empty.
func Latest(root, title string) (string, bool, error) {
	if err := validateTitle(title); err != nil {
		return "", false, err
	}

	subdir := filepath.Join(root, title)
	entries, err := os.ReadDir(subdir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to list %s: %w", subdir, err)
	}
	if len(entries) == 0 {
		return "", false, nil
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return filepath.Join(subdir, names[len(names)-1]), true, nil
}

// Has reports whether root/title exists and is not empty.
func Has(root, title string) (bool, error) {
	_, ok, err := Latest(root, title)
	return ok, err
}

// OpenLatest opens the most recent log file of title for reading. It returns
// ErrNoArtifact when there is none.
func OpenLatest(root, title string) (*os.File, error) {
	path, ok, err := Latest(root, title)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoArtifact, title)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
