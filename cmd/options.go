package cmd

import (
	"log/slog"
	"strings"

	"github.com/cottand/strux/internal/config"
	"github.com/cottand/strux/internal/log"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables that override options, as in
// STRUX_STRICT_NULL_CHECKS=false
const EnvPrefix = "STRUX"

var (
	settings   = viper.New()
	configPath string
)

// optionFlag is an option settable from a flag, the environment or the config
// file, in decreasing priority
type optionFlag struct {
	name    string
	usage   string
	boolean func(*config.Options) *bool
	integer func(*config.Options) *int
}

var optionFlags = []optionFlag{
	{name: "strict-null-checks", usage: "keep null and undefined out of other types",
		boolean: func(o *config.Options) *bool { return &o.StrictNullChecks }},
	{name: "strict-function-types", usage: "compare function parameters contravariantly",
		boolean: func(o *config.Options) *bool { return &o.StrictFunctionTypes }},
	{name: "strict-inference", usage: "infer never rather than any for type parameters without candidates",
		boolean: func(o *config.Options) *bool { return &o.StrictInference }},
	{name: "allow-unreachable-code", usage: "do not report unreachable code",
		boolean: func(o *config.Options) *bool { return &o.AllowUnreachableCode }},
	{name: "no-truncation", usage: "do not truncate long types in messages",
		boolean: func(o *config.Options) *bool { return &o.NoTruncation }},
	{name: "max-relation-depth", usage: "recursion depth limit of a type comparison",
		integer: func(o *config.Options) *int { return &o.MaxRelationDepth }},
	{name: "max-relation-work", usage: "work limit of a type comparison",
		integer: func(o *config.Options) *int { return &o.MaxRelationWork }},
	{name: "max-type-node-length", usage: "length limit of a printed type",
		integer: func(o *config.Options) *int { return &o.MaxTypeNodeLength }},
	{name: "max-serialization-depth", usage: "nesting limit of a printed type",
		integer: func(o *config.Options) *int { return &o.MaxSerializationDepth }},
}

// AddOptionFlags registers the option flags on flags and binds them, and
// their environment variables, to the settings every command reads
func AddOptionFlags(flags *pflag.FlagSet) {
	defaults := config.Default()
	flags.StringVarP(&configPath, "config", "c", "", "TOML options file")
	for _, o := range optionFlags {
		switch {
		case o.boolean != nil:
			flags.Bool(o.name, *o.boolean(&defaults), o.usage)
		case o.integer != nil:
			flags.Int(o.name, *o.integer(&defaults), o.usage)
		}
	}
	flags.String("log-level", defaults.LogLevel, "log level: debug, info, warn or error")
	flags.StringSlice("log-sections", nil, "log sections to print debug and info records of, * for all")

	settings.SetEnvPrefix(EnvPrefix)
	settings.AutomaticEnv()
	// This normalizes "-" to an underscore in env names.
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" {
			return
		}
		if err := settings.BindPFlag(f.Name, f); err != nil {
			panic(err)
		}
	})
}

// loadOptions reads the config file, if any, and layers the environment and
// the flags over it. It also applies the logging options.
func loadOptions() (config.Options, error) {
	opts := config.Default()
	if configPath != "" {
		var err error
		if opts, err = config.Load(configPath); err != nil {
			return opts, errors.Wrapf(err, "load %s", configPath)
		}
	}
	// values from the file rank below flags and environment
	for _, o := range optionFlags {
		switch {
		case o.boolean != nil:
			settings.SetDefault(o.name, *o.boolean(&opts))
			*o.boolean(&opts) = settings.GetBool(o.name)
		case o.integer != nil:
			settings.SetDefault(o.name, *o.integer(&opts))
			*o.integer(&opts) = settings.GetInt(o.name)
		}
	}
	settings.SetDefault("log-level", opts.LogLevel)
	opts.LogLevel = settings.GetString("log-level")
	if sections := settings.GetStringSlice("log-sections"); len(sections) > 0 {
		opts.LogSections = sections
	}
	if err := opts.Validate(); err != nil {
		return opts, err
	}
	applyLogging(opts)
	return opts, nil
}

func applyLogging(opts config.Options) {
	level, err := opts.SlogLevel()
	if err != nil {
		level = slog.LevelError
	}
	log.SetLevel(level)
	if len(opts.LogSections) > 0 {
		log.EnableSections(opts.LogSections...)
	}
}
