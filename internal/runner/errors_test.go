package runner

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/vk/experimentor/internal/grid"
)

func TestTrialsExhaustedError(t *testing.T) {
	first := errors.New("exit status 1")
	err := &TrialsExhaustedError{
		Title:    "a_c",
		Config:   grid.Params{{Key: "a", Value: int64(1)}},
		Attempts: 2,
		Err:      multierror.Append(nil, first, fs.ErrPermission),
	}

	assert.Equal(t, "experiment a_c failed all 2 trials (config {a: 1}): permission denied", err.Error())
	assert.ErrorIs(t, err, first, "every attempt's failure is reachable")
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.Equal(t, fs.ErrPermission, err.Last())

	empty := &TrialsExhaustedError{Title: "x", Attempts: 0}
	assert.Nil(t, empty.Last())
	assert.NoError(t, empty.Unwrap())
}

func TestConfigurationError(t *testing.T) {
	inner := &grid.DuplicateKeyError{Key: "a", Set: 1, Title: "a_a"}
	err := &ConfigurationError{Err: inner}

	var dupErr *grid.DuplicateKeyError
	assert.ErrorAs(t, err, &dupErr)
	assert.Contains(t, err.Error(), "invalid experiment configuration")
	assert.Contains(t, err.Error(), `"a"`)
}
