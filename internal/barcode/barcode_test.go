package barcode

import (
	"errors"
	"testing"
)

func TestParseStructured(t *testing.T) {
	raw := `{"type":"plant","id":"abc-123","name":"Monstera","scientific_name":"Monstera deliciosa","businessId":"biz-1","barcode":"PLT-abc-123"}`

	s, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if s.Kind != KindStructured {
		t.Errorf("Kind = %v, want KindStructured", s.Kind)
	}
	if s.ID != "abc-123" {
		t.Errorf("ID = %q, want %q", s.ID, "abc-123")
	}
	if s.Name != "Monstera" {
		t.Errorf("Name = %q, want %q", s.Name, "Monstera")
	}
	if s.BusinessID != "biz-1" {
		t.Errorf("BusinessID = %q, want %q", s.BusinessID, "biz-1")
	}
}

func TestParseStructuredRejectsNonPlant(t *testing.T) {
	cases := []string{
		`{"type":"pot","id":"x"}`,
		`{"type":"plant"}`,
		`{"type":"plant","id":""}`,
		`{"id":"x"}`,
	}
	for _, raw := range cases {
		_, err := Parse(raw)
		if !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("Parse(%q) error = %v, want ErrInvalidFormat", raw, err)
		}
	}
}

func TestParseLegacyPrefix(t *testing.T) {
	s, err := Parse("PLT-042")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if s.Kind != KindLegacy {
		t.Errorf("Kind = %v, want KindLegacy", s.Kind)
	}
	if s.ID != "042" {
		t.Errorf("ID = %q, want %q", s.ID, "042")
	}
	if s.Barcode != "PLT-042" {
		t.Errorf("Barcode = %q, want %q", s.Barcode, "PLT-042")
	}
}

func TestParseLegacySubstring(t *testing.T) {
	// The substring match is case-insensitive and deliberately
	// permissive; printed labels in the field depend on it.
	for _, raw := range []string{"my-plant-7", "HOUSEPLANT-TAG-99", "Plant42"} {
		s, err := Parse(raw)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", raw, err)
		}
		if s.Kind != KindLegacy {
			t.Errorf("Parse(%q) Kind = %v, want KindLegacy", raw, s.Kind)
		}
		if s.ID != raw {
			t.Errorf("Parse(%q) ID = %q, want whole code", raw, s.ID)
		}
	}
}

func TestParseRejectsUnknownCodes(t *testing.T) {
	for _, raw := range []string{"not-a-code", "PLX-042", "", "   "} {
		_, err := Parse(raw)
		if !errors.Is(err, ErrNotPlantCode) {
			t.Errorf("Parse(%q) error = %v, want ErrNotPlantCode", raw, err)
		}
	}
}

func TestParseTrimsWhitespace(t *testing.T) {
	s, err := Parse("  PLT-7\n")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if s.ID != "7" {
		t.Errorf("ID = %q, want %q", s.ID, "7")
	}
}
