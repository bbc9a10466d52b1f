package database

import (
	"errors"
	"fmt"
)

// ErrEntryNotFound is matched by every EntryNotFoundError.
var ErrEntryNotFound = errors.New("entry not found")

// EntryNotFoundError is returned when no entry is stored for a stock code.
type EntryNotFoundError struct {
	SKU string
}

func (e *EntryNotFoundError) Error() string {
	return fmt.Sprintf("no entry found by SKU#%s", e.SKU)
}

func (e *EntryNotFoundError) Is(target error) bool {
	return target == ErrEntryNotFound
}

// StoreInitError reports a database location that can neither be opened nor
// created. It only occurs at startup.
type StoreInitError struct {
	Path   string
	Reason string
	Err    error
}

func (e *StoreInitError) Error() string {
	msg := fmt.Sprintf("cannot create database: '%s' %s", e.Path, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StoreInitError) Unwrap() error {
	return e.Err
}
