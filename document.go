package elastic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// IDField is the reserved metadata field holding the canonical string form of
// the entity identifier. It is written alongside the regular field set and is
// never part of the mapped property fields.
const IDField = "_id"

// Document is an ordered, schemaless mapping from field name to value.
//
// Values are nil, scalars (string, bool, int64/float64, time.Time), nested
// Documents, or []any sequences. The zero value is the empty document; an
// empty document maps to a nil instance.
type Document struct {
	keys   []string
	values map[string]any
}

// NewDocument creates an empty document.
func NewDocument() Document {
	return Document{values: map[string]any{}}
}

// FromMap builds a document from a plain map. Keys are inserted in sorted
// order so the result is deterministic; nested maps become nested Documents.
func FromMap(m map[string]any) Document {
	doc := NewDocument()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		doc.Put(k, normalizeValue(m[k]))
	}
	return doc
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return FromMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeValue(e)
		}
		return out
	default:
		return v
	}
}

// Put sets a field, keeping first-insertion order for existing fields.
func (d *Document) Put(key string, value any) {
	if d.values == nil {
		d.values = map[string]any{}
	}
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

// Get returns the value for a field and whether the field is present.
func (d Document) Get(key string) (any, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Delete removes a field. Returns true if the field was present.
func (d *Document) Delete(key string) bool {
	if _, ok := d.values[key]; !ok {
		return false
	}
	delete(d.values, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of fields.
func (d Document) Len() int { return len(d.keys) }

// IsEmpty reports whether the document has no fields. The zero Document is
// empty.
func (d Document) IsEmpty() bool { return len(d.keys) == 0 }

// Keys returns the field names in insertion order.
func (d Document) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// ForEach visits fields in insertion order until fn returns false.
func (d Document) ForEach(fn func(key string, value any) bool) {
	for _, k := range d.keys {
		if !fn(k, d.values[k]) {
			return
		}
	}
}

// MarshalJSON encodes the document as a JSON object preserving field order.
func (d Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(d.values[k])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving field order. Numbers decode
// as int64 when integral, float64 otherwise.
func (d *Document) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("decode document: not a JSON object")
	}
	doc, err := decodeObject(dec)
	if err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	*d = doc
	return nil
}

func decodeObject(dec *json.Decoder) (Document, error) {
	doc := NewDocument()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Document{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Document{}, fmt.Errorf("unexpected token %v", tok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return Document{}, err
		}
		doc.Put(key, val)
	}
	if _, err := dec.Token(); err != nil { // closing brace
		return Document{}, err
	}
	return doc, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			var arr []any
			for dec.More() {
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, v)
			}
			if _, err := dec.Token(); err != nil { // closing bracket
				return nil, err
			}
			return arr, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %v", t)
		}
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		return t.Float64()
	default:
		return tok, nil // string, bool or nil
	}
}

// SearchDocument is one raw hit as delivered by the retrieval collaborator:
// the document payload plus per-hit metadata.
type SearchDocument struct {
	Document

	ID         string
	Index      string
	Version    int64
	Score      float64
	SortValues []any
	Highlights map[string][]string
	InnerHits  map[string][]SearchDocument
}

// SearchResponse is a raw search response. It is an in-memory contract with
// the retrieval collaborator, not a wire format.
type SearchResponse struct {
	TotalHits         int64
	TotalHitsRelation string
	MaxScore          float64
	ScrollID          string
	Documents         []SearchDocument
	Aggregations      map[string]any
	Suggest           map[string]any
}
