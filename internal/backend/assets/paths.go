// Package assets maps stock codes onto their storage locations and serves the
// image file that belongs to each catalog entry.
package assets

import (
	"fmt"
	"path/filepath"
)

const (
	// RootDir is the directory all entry locations live under.
	RootDir = "index"
	// ImagesDir is the sub directory of RootDir holding one image per entry.
	ImagesDir = "images"
)

// EntryPath returns the canonical relative location of an entry page.
func EntryPath(sku string) string {
	return RootDir + "/" + sku
}

// ImagePath returns the canonical relative location of an entry image.
func ImagePath(sku string) string {
	return RootDir + "/" + ImagesDir + "/" + sku
}

// Resolver roots relative asset locations at the process storage directory.
type Resolver struct {
	storageRoot string
}

// NewResolver creates a resolver for the given storage root. Relative roots
// are made absolute once, here, so that Absolute stays free of I/O.
func NewResolver(storageRoot string) (*Resolver, error) {
	if storageRoot == "" {
		storageRoot = "."
	}
	abs, err := filepath.Abs(storageRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage root %s: %w", storageRoot, err)
	}
	return &Resolver{storageRoot: abs}, nil
}

// StorageRoot returns the absolute storage root.
func (r *Resolver) StorageRoot() string {
	return r.storageRoot
}

// Absolute joins a relative asset location onto the storage root.
func (r *Resolver) Absolute(rel string) string {
	return filepath.Join(r.storageRoot, filepath.FromSlash(rel))
}

// ImageFile is the absolute file location of the image for sku.
func (r *Resolver) ImageFile(sku string) string {
	return r.Absolute(ImagePath(sku))
}
