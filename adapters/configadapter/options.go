package configadapter

import "strings"

type configOptions struct {
	delimiter  string
	schemaName string
}

// Option configures configadapter parsing.
type Option func(*configOptions)

// WithDelimiter sets the key delimiter used when flattening nested maps.
func WithDelimiter(delimiter string) Option {
	return func(cfg *configOptions) {
		if cfg == nil {
			return
		}
		cfg.delimiter = delimiter
	}
}

// WithSchemaName labels schemas built by NewSchema.
func WithSchemaName(name string) Option {
	return func(cfg *configOptions) {
		if cfg == nil {
			return
		}
		cfg.schemaName = strings.TrimSpace(name)
	}
}

func buildOptions(opts []Option) configOptions {
	cfg := configOptions{delimiter: "."}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.delimiter == "" {
		cfg.delimiter = "."
	}
	return cfg
}

func joinPath(prefix, key, delim string) string {
	if prefix == "" {
		return key
	}
	return prefix + delim + key
}
