package elastic

import (
	"fmt"
	"reflect"
	"sync"
)

// convKey identifies a per-property converter registration.
type convKey struct {
	typ  reflect.Type
	prop string
}

// Registry holds cached entity metadata. Metadata is built at most once per
// type even under concurrent first access; cached reads are lock-free.
//
// Converters and mapping rules must be installed before a type is first
// described; Reset discards the cache so changed registrations take effect.
type Registry struct {
	mu           sync.Mutex // guards metadata construction and registration
	entities     sync.Map   // reflect.Type -> *EntityMetadata
	converters   map[convKey]PropertyConverter
	idConverters map[reflect.Type]IDConverterFunc
	rules        MappingRules
}

// NewRegistry creates an empty metadata registry.
func NewRegistry() *Registry {
	return &Registry{
		converters:   map[convKey]PropertyConverter{},
		idConverters: map[reflect.Type]IDConverterFunc{},
	}
}

// Describe returns the metadata for t, building and caching it on first use.
// Pointer types are described as their element type.
func (r *Registry) Describe(t reflect.Type) (*EntityMetadata, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: type must not be nil", ErrInvalidArgument)
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if m, ok := r.entities.Load(t); ok {
		return m.(*EntityMetadata), nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.entities.Load(t); ok {
		return m.(*EntityMetadata), nil
	}
	return r.buildEntityCached(t, map[reflect.Type]bool{})
}

// DescribeValue is Describe for a sample value of the entity type.
func (r *Registry) DescribeValue(sample any) (*EntityMetadata, error) {
	if sample == nil {
		return nil, fmt.Errorf("%w: sample must not be nil", ErrInvalidArgument)
	}
	return r.Describe(reflect.TypeOf(sample))
}

// buildEntityCached is the recursion point for nested entity types. The
// caller must hold r.mu.
func (r *Registry) buildEntityCached(t reflect.Type, seen map[reflect.Type]bool) (*EntityMetadata, error) {
	if m, ok := r.entities.Load(t); ok {
		return m.(*EntityMetadata), nil
	}
	m, err := r.buildEntity(t, seen)
	if err != nil {
		return nil, err
	}
	r.entities.Store(t, m)
	return m, nil
}

// RegisterConverter installs a custom converter for one property of the
// entity type given by sample. Fails if the type's metadata is already built.
func (r *Registry) RegisterConverter(sample any, property string, conv PropertyConverter) error {
	if sample == nil || conv == nil {
		return fmt.Errorf("%w: sample and converter must not be nil", ErrInvalidArgument)
	}
	t := baseType(reflect.TypeOf(sample))

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entities.Load(t); ok {
		return newMappingError(t, "metadata already built; Reset the registry before registering converters")
	}
	r.converters[convKey{typ: t, prop: property}] = conv
	return nil
}

// RegisterIDConverter installs a string conversion for identifier values of
// the runtime type given by sample.
func (r *Registry) RegisterIDConverter(sample any, fn IDConverterFunc) {
	if sample == nil || fn == nil {
		return
	}
	t := baseType(reflect.TypeOf(sample))
	r.mu.Lock()
	defer r.mu.Unlock()
	r.idConverters[t] = fn
}

// UseMappingRules installs external mapping rules and discards cached
// metadata so they take effect.
func (r *Registry) UseMappingRules(rules MappingRules) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = rules
	r.resetLocked()
}

// Reset discards all cached metadata. Registered converters and rules are
// kept.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resetLocked()
}

func (r *Registry) resetLocked() {
	r.entities.Range(func(k, _ any) bool {
		r.entities.Delete(k)
		return true
	})
}

// canConvertID reports whether values of t have a deterministic string form.
func (r *Registry) canConvertID(t reflect.Type) bool {
	if _, ok := r.idConverters[baseType(t)]; ok {
		return true
	}
	b := baseType(t)
	switch b.Kind() {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	if t.Implements(stringerType) || reflect.PointerTo(t).Implements(stringerType) {
		return true
	}
	return false
}

// convertID converts an identifier value to its canonical string form.
func (r *Registry) convertID(value any) (string, error) {
	if value == nil {
		return "", fmt.Errorf("%w: id value must not be nil", ErrInvalidArgument)
	}
	r.mu.Lock()
	fn, ok := r.idConverters[baseType(reflect.TypeOf(value))]
	r.mu.Unlock()
	if ok {
		return fn(value)
	}
	if s, ok := value.(fmt.Stringer); ok {
		return s.String(), nil
	}
	return fmt.Sprint(value), nil
}

func baseType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
