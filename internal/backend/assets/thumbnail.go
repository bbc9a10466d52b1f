package assets

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
)

const (
	// MaxThumbnailSide bounds both sides of a generated thumbnail.
	MaxThumbnailSide = 4096
	// MaxSourcePixels bounds the decoded size of a raster source image.
	MaxSourcePixels = 40_000_000
)

// ErrImageTooLarge is returned when a source image or the requested
// thumbnail exceeds the size bounds.
var ErrImageTooLarge = errors.New("image too large")

// Thumbnail scales an entry image to the given width, preserving the aspect
// ratio, and returns it PNG encoded. SVG images are rasterised first. Sources
// above MaxSourcePixels and thumbnails with a side above MaxThumbnailSide are
// rejected with ErrImageTooLarge before any pixel buffer is allocated.
func Thumbnail(data []byte, width int) ([]byte, error) {
	if width <= 0 {
		return nil, fmt.Errorf("width must be positive, got %d", width)
	}
	if width > MaxThumbnailSide {
		return nil, fmt.Errorf("%w: width %d exceeds %d", ErrImageTooLarge, width, MaxThumbnailSide)
	}

	var (
		src image.Image
		err error
	)
	if isSVGData(data) {
		src, err = rasterizeSVG(data, width)
	} else {
		src, err = decodeBounded(data, width)
	}
	if err != nil {
		return nil, err
	}

	bounds := src.Bounds()
	height, err := scaledHeight(width, float64(bounds.Dx()), float64(bounds.Dy()))
	if err != nil {
		return nil, err
	}

	slog.Debug("thumbnail: scaling image",
		"original_width", bounds.Dx(),
		"original_height", bounds.Dy(),
		"target_width", width,
		"target_height", height)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// rasterizeSVG renders an SVG document at the requested width on a white
// canvas. The height follows the view box; documents without one are square.
func rasterizeSVG(data []byte, width int) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: failed to parse SVG: %w", err)
	}

	height := width
	if icon.ViewBox.W > 0 && icon.ViewBox.H > 0 {
		height, err = scaledHeight(width, icon.ViewBox.W, icon.ViewBox.H)
		if err != nil {
			return nil, err
		}
	}
	icon.SetTarget(0, 0, float64(width), float64(height))

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(width, height, dst, dst.Bounds())
	dasher := rasterx.NewDasher(width, height, scanner)
	icon.Draw(dasher, 1.0)
	return dst, nil
}

// decodeBounded checks the header of a raster image before decoding it.
func decodeBounded(data []byte, width int) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("image has no pixels")
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxSourcePixels {
		return nil, fmt.Errorf("%w: source is %dx%d pixels, limit is %d",
			ErrImageTooLarge, cfg.Width, cfg.Height, MaxSourcePixels)
	}
	if _, err := scaledHeight(width, float64(cfg.Width), float64(cfg.Height)); err != nil {
		return nil, err
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return src, nil
}

// scaledHeight is the thumbnail height for the given width and source
// dimensions, at least one pixel and at most MaxThumbnailSide.
func scaledHeight(width int, srcWidth, srcHeight float64) (int, error) {
	if srcWidth <= 0 || srcHeight <= 0 {
		return 0, fmt.Errorf("image has no pixels")
	}
	h := float64(width) * srcHeight / srcWidth
	if h > MaxThumbnailSide {
		return 0, fmt.Errorf("%w: thumbnail of width %d would be %.0f pixels high, limit is %d",
			ErrImageTooLarge, width, h, MaxThumbnailSide)
	}
	if h < 1 {
		return 1, nil
	}
	return int(h), nil
}
