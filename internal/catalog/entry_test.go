package catalog

import (
	"errors"
	"strings"
	"testing"
)

func TestEntry_IsPlaceholder(t *testing.T) {
	if !(Entry{}).IsPlaceholder() {
		t.Error("empty entry should be a placeholder")
	}
	if (Entry{SKU: "A1"}).IsPlaceholder() {
		t.Error("entry with SKU should not be a placeholder")
	}
}

func TestEntry_String(t *testing.T) {
	s := Entry{SKU: "A1", CollectorNumber: 7, Series: "S", Description: "D"}.String()
	for _, want := range []string{"SKU#: A1", "C#: 7", "Series: S", "Description: D"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}

func TestEntry_Validate(t *testing.T) {
	if err := (Entry{SKU: "ABC123"}).Validate(); err != nil {
		t.Fatalf("expected valid entry, got %v", err)
	}
	err := (Entry{SKU: "../x"}).Validate()
	if !errors.Is(err, ErrInvalidSKU) {
		t.Fatalf("expected ErrInvalidSKU, got %v", err)
	}
	if err := (Entry{}).Validate(); !errors.Is(err, ErrInvalidSKU) {
		t.Fatalf("expected ErrInvalidSKU for placeholder, got %v", err)
	}
}

func TestValidateSKU(t *testing.T) {
	if err := ValidateSKU("ABC123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := ValidateSKU("a/b")
	if !errors.Is(err, ErrInvalidSKU) {
		t.Fatalf("expected ErrInvalidSKU, got %v", err)
	}
	if err.Error() != "invalid SKU 'a/b'" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
