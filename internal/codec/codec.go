// Package codec decodes HEIC photos and re-encodes them into common raster
// formats, carrying their EXIF block across.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrUnsupportedFormat is returned for an input or output format the codec can't handle.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrHEICDisabled is returned by HEIC calls in builds tagged noheif.
	ErrHEICDisabled = errors.New("HEIC support is disabled in this build")
)

// DecodeError wraps any failure to read or decode a source file.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError wraps any failure to encode or write an output file.
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("failed to encode %s: %v", e.Path, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// Picture is a decoded image plus the metadata worth keeping.
type Picture struct {
	Image image.Image
	// Exif is the TIFF-structured EXIF block with orientation reset to normal,
	// nil when the source had none.
	Exif []byte
	// DateTimeOriginal is the raw "YYYY:MM:DD HH:MM:SS" capture field, empty if absent.
	DateTimeOriginal string
	// ModTime is the source file modification time.
	ModTime time.Time
	// ExifErr is why EXIF could not be read from a source that may carry it.
	// The picture is still usable.
	ExifErr error
}

// Options tune encoding.
type Options struct {
	// Quality is the JPEG quality, 1-100. Zero means DefaultQuality.
	Quality int
	// Optimize trades encode time for smaller files where the format allows it.
	Optimize bool
	// MaxWidth downscales wider images keeping aspect ratio. Zero keeps the size.
	MaxWidth int
}

// DefaultQuality is the JPEG quality used when Options.Quality is unset.
const DefaultQuality = 95

// DefaultOptions are the options used for conversions.
var DefaultOptions = Options{Quality: DefaultQuality, Optimize: true}

// Codec decodes and encodes pictures on the local filesystem.
type Codec struct{}

// New returns a codec.
func New() *Codec { return &Codec{} }

// Decode reads path, applies its EXIF orientation and returns the picture.
// HEIC/HEIF, JPEG and PNG sources are supported.
func (c *Codec) Decode(path string) (*Picture, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	var (
		img     image.Image
		exifSrc []byte
		exifErr error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".heic", ".heif":
		img, err = decodeHEIC(data)
		if err == nil {
			// A HEIC without EXIF is still a valid picture.
			exifSrc, exifErr = extractHEICExif(data)
		}
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(bytes.NewReader(data))
		exifSrc = data
	case ".png":
		img, err = png.Decode(bytes.NewReader(data))
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	pic := &Picture{Image: img, ModTime: info.ModTime()}
	if len(exifSrc) > 0 {
		meta, err := readExif(exifSrc)
		if err == nil {
			pic.Image = applyOrientation(img, meta.orientation)
			pic.Exif = resetOrientation(meta.raw)
			pic.DateTimeOriginal = meta.dateTimeOriginal
		}
		exifErr = err
	}
	if exifErr != nil {
		pic.ExifErr = fmt.Errorf("unable to extract EXIF information: %w", exifErr)
	}

	return pic, nil
}
