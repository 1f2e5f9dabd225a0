package upload

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"prophecyorb/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/image/draw"

	_ "image/gif"
	_ "image/jpeg"
)

const (
	// MaxUploadBytes is the hard cap on raw upload size.
	MaxUploadBytes = 5 * 1024 * 1024

	// DefaultDir is where re-encoded doodles live in production.
	DefaultDir = "static/uploads"

	// Images larger than this are scaled down to fit.
	maxDimension = 800
)

// Validation failures, surfaced to the user as form errors.
var (
	ErrTooLarge    = errors.New("file too large, maximum size is 5MB")
	ErrNotAnImage  = errors.New("file is not a valid image")
	ErrBadImageURL = errors.New("invalid canvas data")
)

// IsValidationError reports whether err is user-correctable rather than a
// server-side failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrTooLarge) || errors.Is(err, ErrNotAnImage) || errors.Is(err, ErrBadImageURL)
}

// Store writes validated, re-encoded doodle images into a fixed directory.
type Store struct {
	Dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Store{Dir: dir}, nil
}

// Save validates raw as a PNG, JPEG, or GIF image no larger than 5MB,
// re-encodes the decoded pixels as PNG under a fresh random filename, and
// returns that filename. Re-encoding from pixels (rather than copying the
// original bytes) strips anything hiding inside the container.
func (s *Store) Save(raw []byte) (string, error) {
	if len(raw) > MaxUploadBytes {
		return "", ErrTooLarge
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", ErrNotAnImage
	}
	switch format {
	case "png", "jpeg", "gif":
	default:
		return "", ErrNotAnImage
	}

	img = fitWithin(img, maxDimension)

	filename := uuid.NewString() + ".png"
	path := filepath.Join(s.Dir, filename)

	f, err := os.Create(path)
	if err != nil {
		logger.Sugar.Errorf("Failed to create upload file %s: %v", path, err)
		return "", fmt.Errorf("store image: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		logger.Sugar.Errorf("Failed to encode upload %s: %v", path, err)
		return "", fmt.Errorf("store image: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("store image: %w", err)
	}
	return filename, nil
}

// SaveDataURL accepts the "data:image/...;base64," payload posted by the
// drawing canvas and runs it through the same validation path as Save.
func (s *Store) SaveDataURL(dataURL string) (string, error) {
	if !strings.HasPrefix(dataURL, "data:image") {
		return "", ErrBadImageURL
	}
	_, encoded, ok := strings.Cut(dataURL, ",")
	if !ok {
		return "", ErrBadImageURL
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrBadImageURL
	}
	return s.Save(raw)
}

// fitWithin scales img down so neither side exceeds max, preserving aspect
// ratio. Images already within bounds pass through untouched.
func fitWithin(img image.Image, max int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= max && h <= max {
		return img
	}

	scale := float64(max) / float64(w)
	if h > w {
		scale = float64(max) / float64(h)
	}
	dw := int(float64(w) * scale)
	dh := int(float64(h) * scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
