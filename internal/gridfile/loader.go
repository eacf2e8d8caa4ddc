// Package gridfile loads experiment grids from disk. JSON and YAML files hold
// a list of mappings; HCL files hold a sequence of `set` blocks. Every format
// preserves the order in which keys are written.
package gridfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/experimentor/internal/ctxlog"
	"github.com/vk/experimentor/internal/grid"
)

// ErrUnsupportedFormat is returned for files whose extension has no decoder.
var ErrUnsupportedFormat = errors.New("unsupported grid file format")

// decoder turns the raw content of a grid file into a Grid.
type decoder func(filename string, src []byte) (grid.Grid, error)

var decoders = map[string]decoder{
	".json": decodeYAML,
	".yaml": decodeYAML,
	".yml":  decodeYAML,
	".hcl":  decodeHCL,
}

// Load reads and decodes the grid file at path, choosing the decoder from the
// file extension.
func Load(ctx context.Context, path string) (grid.Grid, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading grid file.", "path", path)

	ext := strings.ToLower(filepath.Ext(path))
	decode, ok := decoders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q (expected one of .json, .yaml, .yml, .hcl)", ErrUnsupportedFormat, path)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read grid file %s: %w", path, err)
	}

	g, err := decode(path, src)
	if err != nil {
		return nil, err
	}

	logger.Debug("Grid file decoded.", "path", path, "parameter_sets", len(g), "combinations", grid.Count(g))
	return g, nil
}

// Decode decodes src as a grid file of the given format ("json", "yaml",
// "yml" or "hcl").
func Decode(format string, src []byte) (grid.Grid, error) {
	decode, ok := decoders["."+strings.ToLower(strings.TrimPrefix(format, "."))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return decode("<input>."+format, src)
}

// checkUniqueKey reports a key repeated inside one parameter set. Repeats
// across sets are detected per combination by the grid iterator instead.
func checkUniqueKey(set grid.Params, key, filename string, setIndex int, pos string) error {
	if set.Has(key) {
		return fmt.Errorf("%s:%s: duplicate key %q in parameter set %d", filename, pos, key, setIndex)
	}
	return nil
}
