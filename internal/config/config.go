// Package config holds the checker options shared by every session.
package config

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Options configure one checking session. The zero value is not valid, start from Default.
type Options struct {
	// StrictNullChecks keeps null and undefined out of every other type's domain.
	StrictNullChecks bool `toml:"strict_null_checks" mapstructure:"strict_null_checks"`
	// StrictFunctionTypes compares function parameters contravariantly instead of bivariantly.
	// Method parameters stay bivariant.
	StrictFunctionTypes bool `toml:"strict_function_types" mapstructure:"strict_function_types"`
	// StrictInference makes type parameters with no inference candidates resolve to never
	// rather than any.
	StrictInference bool `toml:"strict_inference" mapstructure:"strict_inference"`
	// AllowUnreachableCode silences the unreachable code diagnostic.
	AllowUnreachableCode bool `toml:"allow_unreachable_code" mapstructure:"allow_unreachable_code"`

	// MaxRelationDepth bounds the recursion depth of a single type comparison.
	MaxRelationDepth int `toml:"max_relation_depth" mapstructure:"max_relation_depth"`
	// MaxRelationWork bounds the number of structural comparisons a single top-level
	// relation query may perform.
	MaxRelationWork int `toml:"max_relation_work" mapstructure:"max_relation_work"`
	// MaxTypeNodeLength bounds the length, in characters, of a serialised type.
	MaxTypeNodeLength int `toml:"max_type_node_length" mapstructure:"max_type_node_length"`
	// MaxSerializationDepth bounds how deeply the node builder expands nested types.
	MaxSerializationDepth int `toml:"max_serialization_depth" mapstructure:"max_serialization_depth"`
	// NoTruncation disables MaxTypeNodeLength. MaxSerializationDepth still applies.
	NoTruncation bool `toml:"no_truncation" mapstructure:"no_truncation"`

	LogLevel    string   `toml:"log_level" mapstructure:"log_level"`
	LogSections []string `toml:"log_sections" mapstructure:"log_sections"`
}

const (
	DefaultMaxRelationDepth      = 100
	DefaultMaxRelationWork       = 1_000_000
	DefaultMaxTypeNodeLength     = 4096
	DefaultMaxSerializationDepth = 64
)

func Default() Options {
	return Options{
		StrictNullChecks:      true,
		StrictFunctionTypes:   true,
		StrictInference:       false,
		AllowUnreachableCode:  false,
		MaxRelationDepth:      DefaultMaxRelationDepth,
		MaxRelationWork:       DefaultMaxRelationWork,
		MaxTypeNodeLength:     DefaultMaxTypeNodeLength,
		MaxSerializationDepth: DefaultMaxSerializationDepth,
		LogLevel:              "error",
	}
}

// Validate reports every invalid option at once
func (o Options) Validate() error {
	var err error
	if o.MaxRelationDepth < 1 {
		err = multierr.Append(err, fmt.Errorf("max_relation_depth must be positive, got %d", o.MaxRelationDepth))
	}
	if o.MaxRelationWork < o.MaxRelationDepth {
		err = multierr.Append(err, fmt.Errorf("max_relation_work (%d) must be at least max_relation_depth (%d)", o.MaxRelationWork, o.MaxRelationDepth))
	}
	if o.MaxTypeNodeLength < 16 && !o.NoTruncation {
		err = multierr.Append(err, fmt.Errorf("max_type_node_length must be at least 16, got %d", o.MaxTypeNodeLength))
	}
	if o.MaxSerializationDepth < 1 {
		err = multierr.Append(err, fmt.Errorf("max_serialization_depth must be positive, got %d", o.MaxSerializationDepth))
	}
	if _, lerr := o.SlogLevel(); lerr != nil {
		err = multierr.Append(err, lerr)
	}
	return err
}

// SlogLevel parses LogLevel
func (o Options) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if o.LogLevel == "" {
		return slog.LevelError, nil
	}
	if err := l.UnmarshalText([]byte(o.LogLevel)); err != nil {
		return l, errors.Wrapf(err, "invalid log_level %q", o.LogLevel)
	}
	return l, nil
}

// Decode reads TOML options on top of Default
func Decode(r io.Reader) (Options, error) {
	opts := Default()
	if _, err := toml.NewDecoder(r).Decode(&opts); err != nil {
		return opts, errors.Wrap(err, "decode options")
	}
	return opts, opts.Validate()
}

// Load reads options from a TOML file
func Load(path string) (Options, error) {
	f, err := os.Open(path)
	if err != nil {
		return Default(), errors.Wrap(err, "open options file")
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}

// Encode writes the options as TOML
func (o Options) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(o)
}

func (o Options) String() string {
	buf := &bytes.Buffer{}
	_ = o.Encode(buf)
	return buf.String()
}
