package database

import (
	"context"

	"github.com/jo-hoe/codex/internal/catalog"
)

// EntryStore is the durable home of catalog entries. Implementations serialise
// writes and never expose partially written records to readers. Returned
// entries are copies.
type EntryStore interface {
	Exists(ctx context.Context, sku string) (bool, error)
	// Get returns an *EntryNotFoundError when no entry is stored for sku.
	Get(ctx context.Context, sku string) (catalog.Entry, error)
	// Upsert inserts the entry or replaces the one stored under the same SKU.
	Upsert(ctx context.Context, entry catalog.Entry) error
	// Delete removes the entry; deleting an unknown SKU is not an error.
	Delete(ctx context.Context, sku string) error
	// List returns all entries ordered by SKU.
	List(ctx context.Context) ([]catalog.Entry, error)

	Ping(ctx context.Context) error
	Close() error
}
