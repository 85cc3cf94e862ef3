package elastic

import (
	"reflect"
	"time"
)

// MapDocument maps a single document to an instance of T. Returns nil (and no
// error) when the document is empty; the zero Document counts as empty.
// T must be a struct type.
func MapDocument[T any](c *Converter, doc Document) (*T, error) {
	start := time.Now()
	out, err := mapDocument[T](c, doc)
	c.obs.observe("map_document", start, err)
	return out, err
}

// MapDocuments maps a list of documents element-wise, preserving order and
// length. Empty documents yield nil entries.
func MapDocuments[T any](c *Converter, docs []Document) ([]*T, error) {
	start := time.Now()
	out := make([]*T, len(docs))
	var err error
	for i, doc := range docs {
		out[i], err = mapDocument[T](c, doc)
		if err != nil {
			break
		}
	}
	c.obs.observe("map_documents", start, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func mapDocument[T any](c *Converter, doc Document) (*T, error) {
	if doc.IsEmpty() {
		return nil, nil
	}
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() != reflect.Struct {
		return nil, newMappingError(t, "type parameter must be a struct type")
	}
	meta, err := c.registry.Describe(t)
	if err != nil {
		return nil, err
	}
	v := reflect.New(meta.typ)
	if err := c.readEntity(meta, doc, v.Elem()); err != nil {
		return nil, err
	}
	return v.Interface().(*T), nil
}

// readEntity populates dst from doc. Fields missing from the document keep
// their zero value. The id property falls back to the reserved _id field when
// its own field is absent.
func (c *Converter) readEntity(meta *EntityMetadata, doc Document, dst reflect.Value) error {
	for i := range meta.properties {
		p := &meta.properties[i]
		raw, ok := doc.Get(p.fieldName)
		if !ok && p.isID {
			raw, ok = doc.Get(IDField)
		}
		if !ok {
			continue
		}
		if p.converter != nil {
			conv, err := p.converter.FromField(raw)
			if err != nil {
				return newConversionError(p.propName, raw, p.typ, "%s", err)
			}
			raw = conv
		}
		if err := c.readValue(p, raw, dst.Field(p.index)); err != nil {
			return err
		}
	}
	return nil
}

// readValue recursively converts a raw document value into fv. Recursion is
// driven by the target Go type, so arbitrarily nested collections work
// without per-shape metadata.
func (c *Converter) readValue(p *Property, raw any, fv reflect.Value) error {
	t := fv.Type()
	if raw == nil {
		fv.Set(reflect.Zero(t))
		return nil
	}
	if t.Kind() != reflect.Interface {
		if rv := reflect.ValueOf(raw); rv.Type().AssignableTo(t) {
			fv.Set(rv)
			return nil
		}
	}

	switch t.Kind() {
	case reflect.Pointer:
		elem := reflect.New(t.Elem())
		if err := c.readValue(p, raw, elem.Elem()); err != nil {
			return err
		}
		fv.Set(elem)

	case reflect.Struct:
		if t == timeType {
			v, err := readScalar(raw, t)
			if err != nil {
				return newConversionError(p.propName, raw, t, "%s", err)
			}
			fv.Set(v)
			return nil
		}
		sub, ok := raw.(Document)
		if !ok {
			return newConversionError(p.propName, raw, t, "nested document expected")
		}
		if sub.IsEmpty() {
			fv.Set(reflect.Zero(t))
			return nil
		}
		nm := p.nested
		if nm == nil || nm.typ != t {
			var err error
			nm, err = c.registry.Describe(t)
			if err != nil {
				return err
			}
		}
		return c.readEntity(nm, sub, fv)

	case reflect.Slice:
		seq, ok := raw.([]any)
		if !ok {
			return newConversionError(p.propName, raw, t, "sequence expected")
		}
		out := reflect.MakeSlice(t, len(seq), len(seq))
		for i, item := range seq {
			if err := c.readValue(p, item, out.Index(i)); err != nil {
				return err
			}
		}
		fv.Set(out)

	case reflect.Array:
		seq, ok := raw.([]any)
		if !ok {
			return newConversionError(p.propName, raw, t, "sequence expected")
		}
		if len(seq) > t.Len() {
			return newConversionError(p.propName, raw, t, "sequence longer than array (%d > %d)", len(seq), t.Len())
		}
		arr := reflect.New(t).Elem()
		for i, item := range seq {
			if err := c.readValue(p, item, arr.Index(i)); err != nil {
				return err
			}
		}
		fv.Set(arr)

	case reflect.Map:
		sub, ok := raw.(Document)
		if !ok {
			return newConversionError(p.propName, raw, t, "map-shaped value expected")
		}
		out := reflect.MakeMapWithSize(t, sub.Len())
		var err error
		sub.ForEach(func(k string, v any) bool {
			ev := reflect.New(t.Elem()).Elem()
			if e := c.readValue(p, v, ev); e != nil {
				err = e
				return false
			}
			out.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()), ev)
			return true
		})
		if err != nil {
			return err
		}
		fv.Set(out)

	case reflect.Interface:
		rv := reflect.ValueOf(raw)
		if !rv.Type().Implements(t) {
			return newConversionError(p.propName, raw, t, "value does not satisfy interface")
		}
		fv.Set(rv)

	default:
		v, err := readScalar(raw, t)
		if err != nil {
			return newConversionError(p.propName, raw, t, "%s", err)
		}
		fv.Set(v)
	}
	return nil
}
