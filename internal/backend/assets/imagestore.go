package assets

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	mimeAnyImage = "image/*"
	mimeSVG      = "image/svg+xml"
)

// ErrImageNotFound is matched by every ImageNotFoundError.
var ErrImageNotFound = errors.New("image not found")

// ImageNotFoundError is returned when no image file exists for a stock code.
type ImageNotFoundError struct {
	SKU string
}

func (e *ImageNotFoundError) Error() string {
	return fmt.Sprintf("no image file found for %s", e.SKU)
}

func (e *ImageNotFoundError) Is(target error) bool {
	return target == ErrImageNotFound
}

// Image is an entry image together with its detected content type.
type Image struct {
	Data        []byte
	ContentType string
}

// ImageStore reads and writes entry images below <root>/index/images.
type ImageStore struct {
	resolver *Resolver
	dir      string
}

// NewImageStore creates the image directory if it is missing and verifies that
// it is writable.
func NewImageStore(resolver *Resolver) (*ImageStore, error) {
	dir := resolver.Absolute(RootDir + "/" + ImagesDir)

	info, err := os.Stat(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat image directory: %w", err)
		}
		if mkErr := os.MkdirAll(dir, 0o750); mkErr != nil {
			return nil, fmt.Errorf("failed to create image directory: %w", mkErr)
		}
	} else if !info.IsDir() {
		return nil, fmt.Errorf("image directory path %s is not a directory", dir)
	}

	testFile := filepath.Join(dir, ".writable_test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		return nil, fmt.Errorf("image directory is not writable: %w", err)
	}
	if err := os.Remove(testFile); err != nil {
		return nil, fmt.Errorf("failed to clean up test file: %w", err)
	}

	return &ImageStore{resolver: resolver, dir: dir}, nil
}

// fileFor resolves the image file of sku and makes sure it stays inside the
// image directory.
func (s *ImageStore) fileFor(sku string) (string, error) {
	if strings.TrimSpace(sku) == "" {
		return "", fmt.Errorf("sku is required")
	}
	full := filepath.Clean(s.resolver.ImageFile(sku))
	if filepath.Dir(full) != filepath.Clean(s.dir) {
		return "", fmt.Errorf("path traversal detected for sku %q", sku)
	}
	return full, nil
}

// Exists reports whether a regular image file is stored for sku.
func (s *ImageStore) Exists(sku string) bool {
	file, err := s.fileFor(sku)
	if err != nil {
		return false
	}
	info, err := os.Stat(file)
	return err == nil && info.Mode().IsRegular()
}

// Read loads the image of sku.
func (s *ImageStore) Read(sku string) (Image, error) {
	file, err := s.fileFor(sku)
	if err != nil {
		return Image{}, err
	}
	info, err := os.Stat(file)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.Mode().IsRegular()) {
		return Image{}, &ImageNotFoundError{SKU: sku}
	}
	if err != nil {
		return Image{}, fmt.Errorf("failed to stat image for %s: %w", sku, err)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return Image{}, fmt.Errorf("failed to read image for %s: %w", sku, err)
	}
	return Image{Data: data, ContentType: DetectContentType(data)}, nil
}

// StagedImage is an uploaded image that stays invisible until it is
// committed. Discard after a successful Commit is a no-op.
type StagedImage interface {
	Commit() error
	Discard()
}

type stagedFile struct {
	sku     string
	tmpName string
	target  string
	size    int64
	done    bool
}

// Stage writes the image of sku to a temporary file in the image directory.
// The stored image is replaced only by Commit.
func (s *ImageStore) Stage(sku string, data io.Reader) (StagedImage, error) {
	file, err := s.fileFor(sku)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary image file: %w", err)
	}
	staged := &stagedFile{sku: sku, tmpName: tmp.Name(), target: file}

	written, err := io.Copy(tmp, data)
	if err != nil {
		_ = tmp.Close()
		staged.Discard()
		return nil, fmt.Errorf("failed to write image for %s: %w", sku, err)
	}
	if err := tmp.Close(); err != nil {
		staged.Discard()
		return nil, fmt.Errorf("failed to close image for %s: %w", sku, err)
	}
	staged.size = written
	return staged, nil
}

func (f *stagedFile) Commit() error {
	if err := os.Rename(f.tmpName, f.target); err != nil {
		return fmt.Errorf("failed to store image for %s: %w", f.sku, err)
	}
	f.done = true
	slog.Debug("image stored", "sku", f.sku, "size_bytes", f.size, "file", f.target)
	return nil
}

func (f *stagedFile) Discard() {
	if f.done {
		return
	}
	f.done = true
	_ = os.Remove(f.tmpName)
}

// DetectContentType returns image/<format> for decodable images, the SVG type
// for SVG documents and image/* for anything else.
func DetectContentType(data []byte) string {
	if isSVGData(data) {
		return mimeSVG
	}
	if _, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		return "image/" + format
	}
	return mimeAnyImage
}

// isSVGData performs a lightweight detection of SVG content from raw bytes.
func isSVGData(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	n := len(data)
	if n > 4096 {
		n = 4096
	}
	header := bytes.ToLower(bytes.TrimSpace(data[:n]))
	return bytes.Contains(header, []byte("<svg")) ||
		bytes.Contains(header, []byte(`xmlns="http://www.w3.org/2000/svg"`))
}
