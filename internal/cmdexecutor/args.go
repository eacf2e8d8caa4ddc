// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package cmdexecutor

import (
	"github.com/vk/experimentor/internal/grid"
)

// Args renders a configuration into command-line arguments, in order:
//
//   - an option group expands into one flag per entry, `-k v` for a single
//     character key and `--key v` otherwise;
//   - a scalar value is appended as a positional argument.
//
// The keys of the configuration itself are not rendered; they only name the
// experiment.
func Args(cfg grid.Params) []string {
	var args []string
	for _, p := range cfg {
		group, ok := p.Value.(grid.Params)
		if !ok {
			args = append(args, grid.FormatScalar(p.Value))
			continue
		}
		for _, opt := range group {
			args = append(args, flagName(opt.Key), grid.FormatScalar(opt.Value))
		}
	}
	return args
}

func flagName(key string) string {
	if len([]rune(key)) == 1 {
		return "-" + key
	}
	return "--" + key
}
