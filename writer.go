package elastic

import (
	"fmt"
	"reflect"
	"sort"
	"time"
)

// MapObject maps a domain instance to a document, the inverse of MapDocument.
// Nil-valued properties are omitted unless the property carries the writenull
// modifier or the converter was built WithWriteNulls. The identifier value is
// additionally written in canonical string form under the reserved _id field.
func (c *Converter) MapObject(source any) (Document, error) {
	start := time.Now()
	doc, err := c.mapObject(source)
	c.obs.observe("map_object", start, err)
	return doc, err
}

func (c *Converter) mapObject(source any) (Document, error) {
	if source == nil {
		return Document{}, fmt.Errorf("%w: source must not be nil", ErrInvalidArgument)
	}
	v := reflect.ValueOf(source)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return Document{}, fmt.Errorf("%w: source must not be nil", ErrInvalidArgument)
		}
		v = v.Elem()
	}
	meta, err := c.registry.Describe(v.Type())
	if err != nil {
		return Document{}, err
	}

	doc := NewDocument()
	if err := c.writeEntity(meta, v, &doc); err != nil {
		return Document{}, err
	}
	if id := meta.id; id != nil {
		idv := v.Field(id.index)
		if !isNilValue(idv) && !idv.IsZero() {
			s, err := c.registry.convertID(idv.Interface())
			if err != nil {
				return Document{}, err
			}
			doc.Put(IDField, s)
		}
	}
	return doc, nil
}

func (c *Converter) writeEntity(meta *EntityMetadata, v reflect.Value, doc *Document) error {
	for i := range meta.properties {
		p := &meta.properties[i]
		fv := v.Field(p.index)
		if isNilValue(fv) {
			if p.writeNull || c.writeNulls {
				doc.Put(p.fieldName, nil)
			}
			continue
		}

		var out any
		var err error
		if p.converter != nil {
			out, err = p.converter.ToField(fv.Interface())
		} else {
			out, err = c.writeValue(p, fv)
		}
		if err != nil {
			if _, ok := err.(*ConversionError); !ok {
				err = newConversionError(p.propName, fv.Interface(), p.typ, "%s", err)
			}
			return err
		}
		doc.Put(p.fieldName, out)
	}
	return nil
}

// writeValue recursively converts a domain value to its document
// representation, symmetric to readValue.
func (c *Converter) writeValue(p *Property, v reflect.Value) (any, error) {
	if isNilValue(v) {
		return nil, nil
	}
	t := v.Type()
	if t == timeType {
		return v.Interface(), nil
	}

	switch t.Kind() {
	case reflect.Pointer:
		return c.writeValue(p, v.Elem())

	case reflect.Struct:
		nm := p.nested
		if nm == nil || nm.typ != t {
			var err error
			nm, err = c.registry.Describe(t)
			if err != nil {
				return nil, err
			}
		}
		sub := NewDocument()
		if err := c.writeEntity(nm, v, &sub); err != nil {
			return nil, err
		}
		return sub, nil

	case reflect.Slice, reflect.Array:
		out := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			ev, err := c.writeValue(p, v.Index(i))
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil

	case reflect.Map:
		keys := v.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		sub := NewDocument()
		for _, k := range keys {
			ev, err := c.writeValue(p, v.MapIndex(k))
			if err != nil {
				return nil, err
			}
			sub.Put(k.String(), ev)
		}
		return sub, nil

	case reflect.Interface:
		return c.writeValue(p, v.Elem())

	default:
		return writeScalar(v), nil
	}
}

func isNilValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}
