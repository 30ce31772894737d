package config

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestDecodeOverridesDefaults(t *testing.T) {
	opts, err := Decode(strings.NewReader(`
strict_null_checks = false
max_relation_depth = 12
log_level = "debug"
`))
	require.NoError(t, err)
	assert.False(t, opts.StrictNullChecks)
	assert.Equal(t, 12, opts.MaxRelationDepth)
	assert.Equal(t, DefaultMaxRelationWork, opts.MaxRelationWork)

	lvl, err := opts.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	opts := Default()
	opts.MaxRelationDepth = 0
	opts.MaxSerializationDepth = 0
	opts.LogLevel = "loud"

	err := opts.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 3)
}

func TestEncodeRoundTrip(t *testing.T) {
	opts := Default()
	opts.MaxTypeNodeLength = 100
	buf := &bytes.Buffer{}
	require.NoError(t, opts.Encode(buf))

	decoded, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, opts, decoded)
}
