package elastic

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestDocument_PutKeepsInsertionOrder(t *testing.T) {
	doc := NewDocument()
	doc.Put("b", 1)
	doc.Put("a", 2)
	doc.Put("c", 3)
	doc.Put("b", 4) // update must not move the key

	want := []string{"b", "a", "c"}
	if got := doc.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if v, _ := doc.Get("b"); v != 4 {
		t.Errorf("Get(b) = %v, want 4", v)
	}
}

func TestDocument_Delete(t *testing.T) {
	doc := NewDocument()
	doc.Put("a", 1)
	doc.Put("b", 2)

	if !doc.Delete("a") {
		t.Error("expected Delete(a) = true")
	}
	if doc.Delete("a") {
		t.Error("expected second Delete(a) = false")
	}
	if got := doc.Keys(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("Keys() = %v", got)
	}
}

func TestDocument_ZeroValueIsEmpty(t *testing.T) {
	var doc Document
	if !doc.IsEmpty() {
		t.Error("zero Document should be empty")
	}
	if doc.Len() != 0 {
		t.Errorf("Len() = %d", doc.Len())
	}
	if _, ok := doc.Get("x"); ok {
		t.Error("Get on zero Document should report absent")
	}
}

func TestFromMap_SortedAndNested(t *testing.T) {
	doc := FromMap(map[string]any{
		"z": 1,
		"a": map[string]any{"inner": "v"},
		"m": []any{map[string]any{"k": 1}},
	})

	if got := doc.Keys(); !reflect.DeepEqual(got, []string{"a", "m", "z"}) {
		t.Fatalf("Keys() = %v", got)
	}
	nested, _ := doc.Get("a")
	if _, ok := nested.(Document); !ok {
		t.Errorf("expected nested Document, got %T", nested)
	}
	seq, _ := doc.Get("m")
	if _, ok := seq.([]any)[0].(Document); !ok {
		t.Errorf("expected Document inside sequence, got %T", seq.([]any)[0])
	}
}

func TestDocument_JSONRoundTripPreservesOrder(t *testing.T) {
	in := []byte(`{"z":1,"a":{"y":true,"b":"x"},"list":[1,2.5,"s"],"n":null}`)

	var doc Document
	if err := json.Unmarshal(in, &doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := doc.Keys(); !reflect.DeepEqual(got, []string{"z", "a", "list", "n"}) {
		t.Fatalf("Keys() = %v", got)
	}

	out, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != string(in) {
		t.Errorf("round trip changed document:\n in: %s\nout: %s", in, out)
	}
}

func TestDocument_UnmarshalNumbers(t *testing.T) {
	var doc Document
	if err := json.Unmarshal([]byte(`{"i":42,"f":1.5}`), &doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := doc.Get("i"); v != int64(42) {
		t.Errorf("integral number = %T %v, want int64 42", v, v)
	}
	if v, _ := doc.Get("f"); v != 1.5 {
		t.Errorf("fractional number = %T %v, want float64 1.5", v, v)
	}
}

func TestDocument_UnmarshalRejectsNonObject(t *testing.T) {
	var doc Document
	if err := json.Unmarshal([]byte(`[1,2]`), &doc); err == nil {
		t.Error("expected error for JSON array")
	}
}
