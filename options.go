package elastic

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Converter.
type Option interface {
	apply(*converterConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*converterConfig)

func (f optionFunc) apply(c *converterConfig) { f(c) }

type converterConfig struct {
	registry   *Registry
	writeNulls bool
	rules      *MappingRules

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRegistry uses an existing metadata registry instead of a fresh one.
// Registries can be shared between converters.
func WithRegistry(r *Registry) Option {
	return optionFunc(func(c *converterConfig) {
		c.registry = r
	})
}

// WithWriteNulls writes nil-valued properties as explicit document nulls
// instead of omitting them.
func WithWriteNulls() Option {
	return optionFunc(func(c *converterConfig) {
		c.writeNulls = true
	})
}

// WithMappingRules installs external mapping rules on the converter's
// registry (see LoadMappingRules). Rules override struct tags. Cannot be
// combined with WithRegistry: installing rules discards the registry's cached
// metadata, so rules for a shared registry must go through
// Registry.UseMappingRules.
func WithMappingRules(rules MappingRules) Option {
	return optionFunc(func(c *converterConfig) {
		c.rules = &rules
	})
}

// WithLogger enables structured logging for converter operations.
// Pass nil to disable (default).
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *converterConfig) {
		c.logger = l
	})
}

// WithPrometheus registers conversion metrics (operation counts and
// durations) on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *converterConfig) {
		c.metricsReg = reg
	})
}
