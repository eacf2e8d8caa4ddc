package app

import (
	"context"
	"fmt"
	"io"

	"github.com/vk/experimentor/internal/grid"
	"github.com/vk/experimentor/internal/gridfile"
	"github.com/vk/experimentor/internal/logdir"
	"github.com/vk/experimentor/internal/runner"
)

// ListTitles loads a grid file and writes the number of combinations followed
// by one title per line.
func ListTitles(ctx context.Context, w io.Writer, gridPath string) error {
	g, err := gridfile.Load(ctx, gridPath)
	if err != nil {
		return fmt.Errorf("failed to load grid: %w", err)
	}
	titles, err := grid.Titles(g)
	if err != nil {
		return &runner.ConfigurationError{Err: err}
	}
	fmt.Fprintf(w, "%d experiments\n", len(titles))
	for _, title := range titles {
		fmt.Fprintln(w, title)
	}
	return nil
}

// ShowLatest writes the path of the most recent log file of title, or its
// content when cat is set.
func ShowLatest(w io.Writer, root, title string, cat bool) error {
	if !cat {
		path, ok, err := logdir.Latest(root, title)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s", logdir.ErrNoArtifact, title)
		}
		fmt.Fprintln(w, path)
		return nil
	}

	f, err := logdir.OpenLatest(root, title)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read log file: %w", err)
	}
	return nil
}
