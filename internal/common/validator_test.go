package common

import (
	"strings"
	"testing"
)

func TestIsSKU(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"ABC123", true},
		{"hw-2024_05.a", true},
		{"", false},
		{".", false},
		{"..", false},
		{"../etc", false},
		{"a/b", false},
		{`a\b`, false},
		{"with space", false},
		{"ümlaut", false},
		{strings.Repeat("x", MaxSKULength), true},
		{strings.Repeat("x", MaxSKULength+1), false},
	}
	for _, tc := range cases {
		if got := IsSKU(tc.in); got != tc.want {
			t.Errorf("IsSKU(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestDefaultValidator_SKURule(t *testing.T) {
	v := DefaultValidator()
	if err := v.Var("ABC123", "required,sku"); err != nil {
		t.Fatalf("expected ABC123 to validate, got %v", err)
	}
	if err := v.Var("../x", "required,sku"); err == nil {
		t.Fatal("expected ../x to be rejected")
	}
}
