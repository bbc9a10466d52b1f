package common

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator"
)

// MaxSKULength bounds the length of a stock code accepted by the "sku" rule.
const MaxSKULength = 64

var (
	defaultValidator *validator.Validate
	defaultOnce      sync.Once
)

// NewValidator returns a validator with the catalog specific rules registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("sku", isSKU); err != nil {
		panic(fmt.Sprintf("failed to register sku validation: %v", err))
	}
	return v
}

// DefaultValidator returns the shared validator instance.
func DefaultValidator() *validator.Validate {
	defaultOnce.Do(func() {
		defaultValidator = NewValidator()
	})
	return defaultValidator
}

// IsSKU reports whether s may be used as a stock code. Only ASCII letters,
// digits, '.', '_' and '-' are allowed, so a stock code can never act as a
// path separator or a parent directory reference.
func IsSKU(s string) bool {
	if s == "" || len(s) > MaxSKULength || s == "." || s == ".." {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '.', c == '_', c == '-':
		default:
			return false
		}
	}
	return true
}

func isSKU(fl validator.FieldLevel) bool {
	return IsSKU(fl.Field().String())
}
