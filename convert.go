package elastic

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"time"
)

var stringerType = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()

// PropertyConverter translates one property's value between its domain and
// document representations. Converters are selected per property descriptor
// at registry-build time.
type PropertyConverter interface {
	// ToField converts a domain value to its document representation.
	ToField(value any) (any, error)
	// FromField converts a document value back to the domain representation.
	FromField(value any) (any, error)
}

// IDConverterFunc converts an identifier value to its canonical string form.
type IDConverterFunc func(value any) (string, error)

// TimeConverter maps time.Time properties to formatted strings.
// Zero Layout means time.RFC3339.
type TimeConverter struct {
	Layout string
}

func (c TimeConverter) layout() string {
	if c.Layout == "" {
		return time.RFC3339
	}
	return c.Layout
}

// ToField formats a time.Time (or *time.Time) as a string.
func (c TimeConverter) ToField(value any) (any, error) {
	switch t := value.(type) {
	case time.Time:
		return t.Format(c.layout()), nil
	case *time.Time:
		if t == nil {
			return nil, nil
		}
		return t.Format(c.layout()), nil
	default:
		return nil, fmt.Errorf("time converter: unsupported value %T", value)
	}
}

// FromField parses a formatted string back into a time.Time.
func (c TimeConverter) FromField(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("time converter: expected string, got %T", value)
	}
	t, err := time.Parse(c.layout(), s)
	if err != nil {
		return nil, fmt.Errorf("time converter: %w", err)
	}
	return t, nil
}

// readScalar coerces a raw document value into the target scalar type:
// numeric widening in both directions, enum-by-name for named string kinds,
// RFC 3339 strings for time.Time.
func readScalar(raw any, t reflect.Type) (reflect.Value, error) {
	if raw == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(raw)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}

	switch t.Kind() {
	case reflect.String:
		if rv.Kind() == reflect.String {
			return rv.Convert(t), nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if f, ok := rawNumber(raw); ok {
			if f != math.Trunc(f) {
				return reflect.Value{}, fmt.Errorf("fractional value %v for %s", raw, t)
			}
			n := int64(f)
			v := reflect.New(t).Elem()
			if float64(n) != f || v.OverflowInt(n) {
				return reflect.Value{}, fmt.Errorf("value %v overflows %s", raw, t)
			}
			v.SetInt(n)
			return v, nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if f, ok := rawNumber(raw); ok && f >= 0 {
			if f != math.Trunc(f) {
				return reflect.Value{}, fmt.Errorf("fractional value %v for %s", raw, t)
			}
			u := uint64(f)
			v := reflect.New(t).Elem()
			if float64(u) != f || v.OverflowUint(u) {
				return reflect.Value{}, fmt.Errorf("value %v overflows %s", raw, t)
			}
			v.SetUint(u)
			return v, nil
		}
	case reflect.Float32, reflect.Float64:
		if f, ok := rawNumber(raw); ok {
			v := reflect.New(t).Elem()
			if v.OverflowFloat(f) {
				return reflect.Value{}, fmt.Errorf("value %v overflows %s", raw, t)
			}
			v.SetFloat(f)
			return v, nil
		}
	case reflect.Bool:
		if b, ok := raw.(bool); ok {
			v := reflect.New(t).Elem()
			v.SetBool(b)
			return v, nil
		}
	case reflect.Struct:
		if t == timeType {
			if s, ok := raw.(string); ok {
				parsed, err := time.Parse(time.RFC3339, s)
				if err != nil {
					return reflect.Value{}, fmt.Errorf("parse time: %w", err)
				}
				return reflect.ValueOf(parsed), nil
			}
		}
	}
	return reflect.Value{}, fmt.Errorf("incompatible value %T", raw)
}

// rawNumber extracts a numeric raw value as float64.
func rawNumber(raw any) (float64, bool) {
	switch n := raw.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// writeScalar converts a domain scalar to its document value. Named types
// collapse to their base kind so enums serialize by name/value.
func writeScalar(v reflect.Value) any {
	if v.Type() == timeType {
		return v.Interface()
	}
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint()
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.Bool:
		return v.Bool()
	default:
		return v.Interface()
	}
}
