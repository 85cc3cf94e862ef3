package elastic

import (
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"
)

const tagKey = "es"

var timeType = reflect.TypeOf(time.Time{})

// EntityMetadata describes how one domain struct type maps onto a document.
// Built once per type by the Registry and cached for the registry's lifetime.
type EntityMetadata struct {
	typ        reflect.Type
	properties []Property
	byProperty map[string]*Property
	byField    map[string]*Property
	id         *Property
}

// Type returns the described struct type.
func (m *EntityMetadata) Type() reflect.Type { return m.typ }

// Properties returns the mapped property descriptors in struct order.
func (m *EntityMetadata) Properties() []Property { return m.properties }

// ID returns the identifier property descriptor, or nil if the type has none.
func (m *EntityMetadata) ID() *Property { return m.id }

// Property looks up a descriptor by domain property name.
func (m *EntityMetadata) Property(name string) (*Property, bool) {
	p, ok := m.byProperty[name]
	return p, ok
}

// Property binds one domain property to one document field and conversion
// rule.
type Property struct {
	propName  string // domain property name (lower-camel struct field name)
	fieldName string // document field name
	index     int    // struct field index
	typ       reflect.Type
	isID      bool
	writeNull bool
	converter PropertyConverter
	nested    *EntityMetadata // metadata of the reachable struct type, if any
}

// Name returns the domain property name.
func (p *Property) Name() string { return p.propName }

// FieldName returns the mapped document field name.
func (p *Property) FieldName() string { return p.fieldName }

// Type returns the declared Go type of the property.
func (p *Property) Type() reflect.Type { return p.typ }

// IsID reports whether this is the identifier property.
func (p *Property) IsID() bool { return p.isID }

// Converter returns the custom converter, or nil.
func (p *Property) Converter() PropertyConverter { return p.converter }

// buildEntity constructs metadata for t. seen tracks the describe path so
// cyclic type graphs fail fast instead of recursing during conversion.
func (r *Registry) buildEntity(t reflect.Type, seen map[reflect.Type]bool) (*EntityMetadata, error) {
	if t.Kind() != reflect.Struct {
		return nil, newMappingError(t, "entity type must be a struct")
	}
	if seen[t] {
		return nil, newMappingError(t, "cyclic entity type graph")
	}
	seen[t] = true
	defer delete(seen, t)

	typeRules := r.rules.Types[t.Name()]

	meta := &EntityMetadata{typ: t}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get(tagKey)
		if tag == "-" {
			continue
		}

		p := Property{
			propName:  defaultFieldName(f.Name),
			fieldName: defaultFieldName(f.Name),
			index:     i,
			typ:       f.Type,
		}
		if tag != "" {
			if err := applyTag(&p, f.Name, tag); err != nil {
				return nil, newMappingError(t, "%s", err)
			}
		}
		if rule, ok := typeRules.Properties[p.propName]; ok {
			applyRule(&p, rule)
		}
		if conv, ok := r.converters[convKey{typ: t, prop: p.propName}]; ok {
			p.converter = conv
		}
		if err := validateMapKeys(f.Type); err != nil {
			return nil, newMappingError(t, "property %s: %s", f.Name, err)
		}

		if nt := reachableStructType(f.Type); nt != nil {
			nm, err := r.buildEntityCached(nt, seen)
			if err != nil {
				return nil, err
			}
			p.nested = nm
		}

		meta.properties = append(meta.properties, p)
	}

	return validateEntity(r, meta)
}

func validateEntity(r *Registry, meta *EntityMetadata) (*EntityMetadata, error) {
	meta.byProperty = make(map[string]*Property, len(meta.properties))
	meta.byField = make(map[string]*Property, len(meta.properties))
	for i := range meta.properties {
		p := &meta.properties[i]
		if prev, ok := meta.byField[p.fieldName]; ok {
			return nil, newMappingError(meta.typ,
				"field name %q mapped by both %q and %q", p.fieldName, prev.propName, p.propName)
		}
		meta.byField[p.fieldName] = p
		meta.byProperty[p.propName] = p
		if p.isID {
			if meta.id != nil {
				return nil, newMappingError(meta.typ,
					"duplicate id property (%q and %q)", meta.id.propName, p.propName)
			}
			if !r.canConvertID(p.typ) {
				return nil, newMappingError(meta.typ,
					"identifier type %s has no string conversion", p.typ)
			}
			meta.id = p
		}
	}
	return meta, nil
}

// applyTag processes a single struct field's es tag.
func applyTag(p *Property, fieldName, tag string) error {
	parts := strings.Split(tag, ",")
	if parts[0] != "" {
		p.fieldName = parts[0]
	}
	for _, mod := range parts[1:] {
		switch mod {
		case "id":
			p.isID = true
		case "writenull":
			p.writeNull = true
		case "":
		default:
			return fmt.Errorf("unknown modifier %q on field %s", mod, fieldName)
		}
	}
	return nil
}

// applyRule applies an external mapping rule override. Rules win over tags;
// converters registered on the Registry win over rules.
func applyRule(p *Property, rule PropertyRule) {
	if rule.Field != "" {
		p.fieldName = rule.Field
	}
	if rule.WriteNull {
		p.writeNull = true
	}
	if rule.TimeLayout != "" {
		p.converter = TimeConverter{Layout: rule.TimeLayout}
	}
}

// validateMapKeys rejects maps whose keys are not strings, however deeply the
// map is wrapped in pointers, slices, arrays or other maps. Conversion relies
// on string keys, so this must fail at describe time.
func validateMapKeys(t reflect.Type) error {
	for {
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Array:
			t = t.Elem()
		case reflect.Map:
			if t.Key().Kind() != reflect.String {
				return fmt.Errorf("map keys must be strings, got %s", t.Key())
			}
			t = t.Elem()
		default:
			return nil
		}
	}
}

// reachableStructType unwraps pointers, slices, arrays and map values down to
// a mappable struct type. time.Time counts as a scalar, not a nested entity.
func reachableStructType(t reflect.Type) reflect.Type {
	for {
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Array, reflect.Map:
			t = t.Elem()
		case reflect.Struct:
			if t == timeType {
				return nil
			}
			return t
		default:
			return nil
		}
	}
}

// defaultFieldName lower-camels a Go field name: FooBar -> fooBar, ID -> id,
// URLPath -> urlPath.
func defaultFieldName(name string) string {
	runes := []rune(name)
	upper := 0
	for upper < len(runes) && unicode.IsUpper(runes[upper]) {
		upper++
	}
	switch {
	case upper == 0:
		return name
	case upper == len(runes):
		return strings.ToLower(name)
	case upper == 1:
		runes[0] = unicode.ToLower(runes[0])
	default:
		for i := 0; i < upper-1; i++ {
			runes[i] = unicode.ToLower(runes[i])
		}
	}
	return string(runes)
}
