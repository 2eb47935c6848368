package frame

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	_ "golang.org/x/image/webp" // registers the webp decoder for Load

	"github.com/teranos/carousel/trip"
)

// Format is an image encoding.
type Format string

const (
	PNG  Format = "png"
	WebP Format = "webp"
)

// ParseFormat accepts "png" or "webp" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case PNG, WebP:
		return f, nil
	default:
		return "", trip.NewTrip(trip.TypeFrame, fmt.Sprintf("unknown image format %q", s), trip.Context{"format": s})
	}
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string { return "." + string(f) }

// Encode writes img to w. WebP output is lossless.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case PNG:
		return png.Encode(w, img)
	case WebP:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("webp encode: %w", err)
		}
		return nil
	default:
		return trip.NewTrip(trip.TypeFrame, fmt.Sprintf("unknown image format %q", f), nil)
	}
}

// WriteFile encodes img into path, creating parent directories.
func WriteFile(path string, img image.Image, f Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return trip.Wrap(trip.TypeFrame, err, trip.Context{"path": path})
	}

	file, err := os.Create(path)
	if err != nil {
		return trip.Wrap(trip.TypeFrame, err, trip.Context{"path": path})
	}

	if err := Encode(file, img, f); err != nil {
		file.Close()
		return trip.Wrap(trip.TypeFrame, err, trip.Context{"path": path, "format": string(f)})
	}
	return file.Close()
}

// Load decodes a PNG or WebP file.
func Load(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}
