package elastic

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

type qAddress struct {
	City string `es:"city_name"`
}

type qPerson struct {
	ID       string   `es:"_doc_id,id"`
	LastName string   `es:"last_name"`
	Address  qAddress `es:"addr"`
}

func TestUpdateQuery_RewritesFieldNames(t *testing.T) {
	conv := newTestConverter(t)
	q := NewCriteriaQuery(NewCriteria("lastName").Is("Smith"))

	if err := conv.UpdateQuery(q, qPerson{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Criteria.Field() != "last_name" {
		t.Errorf("Field() = %q, want last_name", q.Criteria.Field())
	}
}

func TestUpdateQuery_RewritesNestedPaths(t *testing.T) {
	conv := newTestConverter(t)
	q := NewCriteriaQuery(NewCriteria("address.city").Is("Berlin"))

	if err := conv.UpdateQuery(q, qPerson{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Criteria.Field() != "addr.city_name" {
		t.Errorf("Field() = %q, want addr.city_name", q.Criteria.Field())
	}
}

func TestUpdateQuery_RewritesGroups(t *testing.T) {
	conv := newTestConverter(t)
	q := NewCriteriaQuery(Or(
		NewCriteria("lastName").Is("Smith"),
		And(
			NewCriteria("address.city").Is("Berlin"),
			NewCriteria("id").Is("p-1"),
		),
	))

	if err := conv.UpdateQuery(q, qPerson{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	children := q.Criteria.Children()
	if children[0].Field() != "last_name" {
		t.Errorf("first child = %q", children[0].Field())
	}
	inner := children[1].Children()
	if inner[0].Field() != "addr.city_name" || inner[1].Field() != "_doc_id" {
		t.Errorf("inner children = %q, %q", inner[0].Field(), inner[1].Field())
	}
}

func TestUpdateQuery_LenientPassThrough(t *testing.T) {
	conv := newTestConverter(t)
	q := NewCriteriaQuery(NewCriteria("_score").GreaterThan(1.0))

	if err := conv.UpdateQuery(q, qPerson{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Criteria.Field() != "_score" {
		t.Errorf("unresolvable path must pass through, got %q", q.Criteria.Field())
	}
}

func TestUpdateQuery_Idempotent(t *testing.T) {
	type clash struct {
		LastName string `es:"surname"`
		Surname  string `es:"maiden_name"`
	}

	conv := newTestConverter(t)
	q := NewCriteriaQuery(NewCriteria("lastName").Is("Smith"))

	if err := conv.UpdateQuery(q, clash{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Criteria.Field() != "surname" {
		t.Fatalf("Field() = %q", q.Criteria.Field())
	}
	// A second pass must not chain surname -> maiden_name.
	if err := conv.UpdateQuery(q, clash{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Criteria.Field() != "surname" {
		t.Errorf("second rewrite moved the field to %q", q.Criteria.Field())
	}
}

func TestUpdateQuery_ConverterAppliesToLiterals(t *testing.T) {
	type card struct {
		Number string `es:"number"`
	}

	reg := NewRegistry()
	err := reg.RegisterConverter(card{}, "number", fnConverter{
		toField:   func(v any) (any, error) { return "masked-" + v.(string), nil },
		fromField: func(v any) (any, error) { return strings.TrimPrefix(v.(string), "masked-"), nil },
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	conv := newTestConverter(t, WithRegistry(reg))

	q := NewCriteriaQuery(NewCriteria("number").In("1234", "5678"))
	if err := conv.UpdateQuery(q, card{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := q.Criteria.Entries()[0].Values()
	want := []any{"masked-1234", "masked-5678"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Values() = %v, want %v", got, want)
	}
}

func TestUpdateQuery_ConverterErrorIsConversionError(t *testing.T) {
	type card struct {
		Number string `es:"number"`
	}

	reg := NewRegistry()
	_ = reg.RegisterConverter(card{}, "number", fnConverter{
		toField:   func(v any) (any, error) { return nil, errors.New("boom") },
		fromField: func(v any) (any, error) { return v, nil },
	})
	conv := newTestConverter(t, WithRegistry(reg))

	q := NewCriteriaQuery(NewCriteria("number").Is("1234"))
	err := conv.UpdateQuery(q, card{})
	if !errors.Is(err, ErrConversion) {
		t.Fatalf("expected ErrConversion, got %v", err)
	}
	var ce *ConversionError
	if !errors.As(err, &ce) || ce.Property != "number" {
		t.Errorf("unexpected error detail: %v", err)
	}
}

func TestUpdateQuery_RetryAfterConverterFailure(t *testing.T) {
	type card struct {
		Number string `es:"card_number"`
	}

	reg := NewRegistry()
	calls := 0
	_ = reg.RegisterConverter(card{}, "number", fnConverter{
		toField: func(v any) (any, error) {
			calls++
			if calls == 2 {
				return nil, errors.New("transient")
			}
			return "masked-" + v.(string), nil
		},
		fromField: func(v any) (any, error) { return v, nil },
	})
	conv := newTestConverter(t, WithRegistry(reg))

	q := NewCriteriaQuery(NewCriteria("number").Is("1234").In("5678", "9012"))
	if err := conv.UpdateQuery(q, card{}); !errors.Is(err, ErrConversion) {
		t.Fatalf("expected ErrConversion, got %v", err)
	}
	// The failed pass must leave the node untouched: original field name and
	// unconverted literals.
	if q.Criteria.Field() != "number" {
		t.Fatalf("failed rewrite moved the field to %q", q.Criteria.Field())
	}
	if got := q.Criteria.Entries()[0].Values()[0]; got != "1234" {
		t.Fatalf("failed rewrite altered literals: %v", got)
	}

	if err := conv.UpdateQuery(q, card{}); err != nil {
		t.Fatalf("unexpected error on retry: %v", err)
	}
	if q.Criteria.Field() != "card_number" {
		t.Errorf("Field() = %q, want card_number", q.Criteria.Field())
	}
	want := [][]any{{"masked-1234"}, {"masked-5678", "masked-9012"}}
	for i, entry := range q.Criteria.Entries() {
		if !reflect.DeepEqual(entry.Values(), want[i]) {
			t.Errorf("entry %d values = %v, want %v", i, entry.Values(), want[i])
		}
	}
}

func TestUpdateQuery_NilArguments(t *testing.T) {
	conv := newTestConverter(t)
	if err := conv.UpdateQuery(nil, qPerson{}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for nil query, got %v", err)
	}
	q := NewCriteriaQuery(NewCriteria("lastName").Is("x"))
	if err := conv.UpdateQuery(q, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for nil domain, got %v", err)
	}
}

func TestUpdateQuery_NilCriteriaIsNoop(t *testing.T) {
	conv := newTestConverter(t)
	if err := conv.UpdateQuery(NewCriteriaQuery(nil), qPerson{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCriteria_BuilderAccumulatesEntries(t *testing.T) {
	cr := NewCriteria("age").GreaterThanEqual(18).LessThan(65)
	entries := cr.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Kind() != EntryGreaterThanEqual || entries[1].Kind() != EntryLessThan {
		t.Errorf("unexpected kinds: %v, %v", entries[0].Kind(), entries[1].Kind())
	}
	if !reflect.DeepEqual(entries[0].Values(), []any{18}) {
		t.Errorf("unexpected values: %v", entries[0].Values())
	}

	between := NewCriteria("age").Between(18, 65).Entries()[0]
	if between.Kind() != EntryBetween || len(between.Values()) != 2 {
		t.Errorf("unexpected between entry: %+v", between)
	}
}
