package catalog

import (
	"errors"
	"fmt"

	"github.com/jo-hoe/codex/internal/common"
)

// ErrInvalidSKU is returned for stock codes that are empty or contain
// characters outside the allowed set.
var ErrInvalidSKU = errors.New("invalid SKU")

// Entry is a single catalog record identified by its stock code.
type Entry struct {
	SKU             string `validate:"required,sku"`
	Name            string
	CollectorNumber uint16
	Series          string
	Description     string
}

// IsPlaceholder reports whether e is the transient "new entry" value that is
// handed out for unknown stock codes. Placeholders are never persisted.
func (e Entry) IsPlaceholder() bool {
	return e.SKU == ""
}

func (e Entry) String() string {
	return fmt.Sprintf("SKU#: %s\nC#: %d\nSeries: %s\nDescription: %s",
		e.SKU, e.CollectorNumber, e.Series, e.Description)
}

// Validate checks the struct rules of the entry.
func (e Entry) Validate() error {
	if err := common.DefaultValidator().Struct(e); err != nil {
		return fmt.Errorf("%w '%s': %v", ErrInvalidSKU, e.SKU, err)
	}
	return nil
}

// ValidateSKU rejects stock codes that could not be used safely as a path
// fragment.
func ValidateSKU(sku string) error {
	if !common.IsSKU(sku) {
		return fmt.Errorf("%w '%s'", ErrInvalidSKU, sku)
	}
	return nil
}
