package elastic

import (
	"fmt"
	"time"
)

// Converter is the object-document mapper: it maps schemaless documents to
// typed instances and back, materializes search responses into typed hit
// collections, and rewrites criteria queries from domain property names to
// document field names.
//
// A Converter is safe for concurrent use. All operations are synchronous and
// never perform I/O.
type Converter struct {
	registry   *Registry
	writeNulls bool
	obs        *observer
}

// NewConverter creates a Converter.
func NewConverter(opts ...Option) (*Converter, error) {
	cfg := &converterConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	// Installing rules resets the registry's metadata cache, which would pull
	// cached metadata out from under other converters sharing the registry.
	if cfg.registry != nil && cfg.rules != nil {
		return nil, fmt.Errorf("%w: mapping rules cannot be combined with an existing registry; call Registry.UseMappingRules instead", ErrInvalidArgument)
	}

	reg := cfg.registry
	if reg == nil {
		reg = NewRegistry()
	}
	if cfg.rules != nil {
		reg.UseMappingRules(*cfg.rules)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Converter{
		registry:   reg,
		writeNulls: cfg.writeNulls,
		obs:        obs,
	}, nil
}

// Registry returns the converter's metadata registry.
func (c *Converter) Registry() *Registry { return c.registry }

// ConvertID converts an identifier value to its canonical string form, using
// a registered id conversion when one exists for the value's runtime type and
// the default textual representation otherwise. A nil value is a caller
// contract violation.
func (c *Converter) ConvertID(value any) (string, error) {
	start := time.Now()
	s, err := c.registry.convertID(value)
	c.obs.observe("convert_id", start, err)
	return s, err
}
