package catalog

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Form field names accepted by the create/update route.
const (
	FieldSKU             = "sku"
	FieldName            = "name"
	FieldCollectorNumber = "collectors_num"
	FieldSeries          = "series"
	FieldDescription     = "description"
)

// InvalidFieldError reports a submitted form value that could not be
// converted into its typed entry attribute.
type InvalidFieldError struct {
	Field string
	Value string
	Err   error
}

func (e *InvalidFieldError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invalid value '%s' for field %s", e.Value, e.Field)
	}
	return fmt.Sprintf("invalid value '%s' for field %s: %v", e.Value, e.Field, e.Err)
}

func (e *InvalidFieldError) Unwrap() error {
	return e.Err
}

type formField struct {
	name string
	set  func(entry *Entry, value string) error
	get  func(entry Entry) string
}

// formSchema lists every recognised field together with its conversion.
// Absent fields keep the zero value of the entry attribute.
var formSchema = []formField{
	{
		name: FieldSKU,
		set:  func(e *Entry, v string) error { e.SKU = strings.TrimSpace(v); return nil },
		get:  func(e Entry) string { return e.SKU },
	},
	{
		name: FieldName,
		set:  func(e *Entry, v string) error { e.Name = v; return nil },
		get:  func(e Entry) string { return e.Name },
	},
	{
		name: FieldCollectorNumber,
		set:  setCollectorNumber,
		get:  func(e Entry) string { return strconv.FormatUint(uint64(e.CollectorNumber), 10) },
	},
	{
		name: FieldSeries,
		set:  func(e *Entry, v string) error { e.Series = v; return nil },
		get:  func(e Entry) string { return e.Series },
	},
	{
		name: FieldDescription,
		set:  func(e *Entry, v string) error { e.Description = v; return nil },
		get:  func(e Entry) string { return e.Description },
	},
}

func setCollectorNumber(e *Entry, v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		e.CollectorNumber = 0
		return nil
	}
	n, err := strconv.ParseUint(v, 10, 16)
	if err != nil {
		return err
	}
	e.CollectorNumber = uint16(n)
	return nil
}

// ParseForm converts submitted form values into an Entry. Unknown fields are
// ignored; the first value wins when a field is repeated.
func ParseForm(values url.Values) (Entry, error) {
	var entry Entry
	for _, field := range formSchema {
		raw, ok := values[field.name]
		if !ok || len(raw) == 0 {
			continue
		}
		if err := field.set(&entry, raw[0]); err != nil {
			return Entry{}, &InvalidFieldError{Field: field.name, Value: raw[0], Err: err}
		}
	}
	return entry, nil
}

// FormValues is the inverse of ParseForm.
func FormValues(entry Entry) url.Values {
	values := make(url.Values, len(formSchema))
	for _, field := range formSchema {
		values.Set(field.name, field.get(entry))
	}
	return values
}
