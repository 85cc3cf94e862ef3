package elastic

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestTimeConverter_DefaultLayout(t *testing.T) {
	c := TimeConverter{}
	in := time.Date(2021, 3, 17, 10, 30, 0, 0, time.UTC)

	out, err := c.ToField(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "2021-03-17T10:30:00Z" {
		t.Errorf("ToField() = %v", out)
	}

	back, err := c.FromField(out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !back.(time.Time).Equal(in) {
		t.Errorf("FromField() = %v, want %v", back, in)
	}
}

func TestTimeConverter_CustomLayout(t *testing.T) {
	c := TimeConverter{Layout: "02.01.2006"}

	out, err := c.ToField(time.Date(2021, 3, 17, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "17.03.2021" {
		t.Errorf("ToField() = %v", out)
	}
}

func TestTimeConverter_NilPointer(t *testing.T) {
	c := TimeConverter{}
	out, err := c.ToField((*time.Time)(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != nil {
		t.Errorf("expected nil, got %v", out)
	}
}

func TestTimeConverter_Errors(t *testing.T) {
	c := TimeConverter{}
	if _, err := c.ToField("not a time"); err == nil {
		t.Error("expected error for non-time value")
	}
	if _, err := c.FromField(42); err == nil {
		t.Error("expected error for non-string value")
	}
	if _, err := c.FromField("not a timestamp"); err == nil {
		t.Error("expected error for malformed timestamp")
	}
}

type hexID uint32

func (h hexID) String() string { return fmt.Sprintf("%08x", uint32(h)) }

func TestConvertID(t *testing.T) {
	conv, err := NewConverter()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"string", "abc", "abc"},
		{"int", 42, "42"},
		{"int64", int64(-7), "-7"},
		{"stringer wins over numeric", hexID(255), "000000ff"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := conv.ConvertID(tc.value)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("ConvertID(%v) = %q, want %q", tc.value, got, tc.want)
			}
		})
	}
}

func TestConvertID_Nil(t *testing.T) {
	conv, _ := NewConverter()
	if _, err := conv.ConvertID(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestConvertID_Registered(t *testing.T) {
	type key struct {
		Region string
		Seq    int
	}

	conv, _ := NewConverter()
	conv.Registry().RegisterIDConverter(key{}, func(v any) (string, error) {
		k := v.(key)
		return fmt.Sprintf("%s-%d", k.Region, k.Seq), nil
	})

	got, err := conv.ConvertID(key{Region: "eu", Seq: 9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "eu-9" {
		t.Errorf("ConvertID() = %q", got)
	}
}
