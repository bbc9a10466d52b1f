package catalog

import (
	"errors"
	"net/url"
	"strconv"
	"testing"
)

func TestParseForm_AllFields(t *testing.T) {
	values := url.Values{
		"sku":            {"ABC123"},
		"name":           {"Speedster"},
		"collectors_num": {"5"},
		"series":         {"RaceDay"},
		"description":    {"fast"},
	}

	got, err := ParseForm(values)
	if err != nil {
		t.Fatalf("ParseForm error: %v", err)
	}
	want := Entry{SKU: "ABC123", Name: "Speedster", CollectorNumber: 5, Series: "RaceDay", Description: "fast"}
	if got != want {
		t.Fatalf("ParseForm = %+v, want %+v", got, want)
	}
}

func TestParseForm_MissingFieldsDefault(t *testing.T) {
	got, err := ParseForm(url.Values{"name": {"Only Name"}})
	if err != nil {
		t.Fatalf("ParseForm error: %v", err)
	}
	if got.SKU != "" || got.CollectorNumber != 0 || got.Series != "" || got.Description != "" {
		t.Errorf("expected zero defaults, got %+v", got)
	}
	if got.Name != "Only Name" {
		t.Errorf("expected name to be set, got %q", got.Name)
	}
}

func TestParseForm_IgnoresUnknownFields(t *testing.T) {
	got, err := ParseForm(url.Values{"sku": {"X1"}, "colour": {"red"}, "collector_num": {"oops"}})
	if err != nil {
		t.Fatalf("unknown fields must be ignored, got %v", err)
	}
	if got.SKU != "X1" {
		t.Errorf("expected SKU X1, got %q", got.SKU)
	}
}

func TestParseForm_InvalidCollectorNumber(t *testing.T) {
	for _, raw := range []string{"five", "-1", "65536", "1.5"} {
		_, err := ParseForm(url.Values{"collectors_num": {raw}})
		if err == nil {
			t.Fatalf("expected error for collectors_num=%q", raw)
		}
		var fieldErr *InvalidFieldError
		if !errors.As(err, &fieldErr) {
			t.Fatalf("expected *InvalidFieldError, got %T", err)
		}
		if fieldErr.Field != FieldCollectorNumber || fieldErr.Value != raw {
			t.Errorf("unexpected field error: %+v", fieldErr)
		}
		var numErr *strconv.NumError
		if !errors.As(err, &numErr) {
			t.Errorf("expected wrapped *strconv.NumError for %q", raw)
		}
	}
}

func TestParseForm_EmptyCollectorNumberIsZero(t *testing.T) {
	got, err := ParseForm(url.Values{"collectors_num": {"  "}})
	if err != nil {
		t.Fatalf("ParseForm error: %v", err)
	}
	if got.CollectorNumber != 0 {
		t.Errorf("expected 0, got %d", got.CollectorNumber)
	}
}

func TestFormValues_RoundTrip(t *testing.T) {
	entry := Entry{SKU: "Z-9", Name: "Bone Shaker", CollectorNumber: 65535, Series: "Legends", Description: "skull"}
	got, err := ParseForm(FormValues(entry))
	if err != nil {
		t.Fatalf("ParseForm error: %v", err)
	}
	if got != entry {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, entry)
	}
}
