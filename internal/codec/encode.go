package codec

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"strings"

	"github.com/nfnt/resize"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Format is an output image format.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatTIFF Format = "tiff"
	FormatBMP  Format = "bmp"
)

// FormatFromSuffix maps an output suffix such as ".JPEG" to its format.
func FormatFromSuffix(suffix string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(suffix, ".")) {
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	case "bmp":
		return FormatBMP, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, suffix)
}

// Encode writes pic to dst in the given format. JPEG and PNG outputs keep the
// EXIF block; TIFF and BMP outputs drop it. The output gets the source
// modification time when it is known.
func (c *Codec) Encode(pic *Picture, dst string, format Format, opts Options) error {
	if pic == nil || pic.Image == nil {
		return &EncodeError{Path: dst, Err: fmt.Errorf("empty picture")}
	}

	img := pic.Image
	if opts.MaxWidth > 0 && img.Bounds().Dx() > opts.MaxWidth {
		img = resize.Resize(uint(opts.MaxWidth), 0, img, resize.Lanczos3)
	}

	data, err := encodeImage(img, pic.Exif, format, opts)
	if err != nil {
		return &EncodeError{Path: dst, Err: err}
	}

	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return &EncodeError{Path: dst, Err: err}
	}
	if !pic.ModTime.IsZero() {
		if err := os.Chtimes(dst, pic.ModTime, pic.ModTime); err != nil {
			return &EncodeError{Path: dst, Err: fmt.Errorf("failed to set file time: %w", err)}
		}
	}

	return nil
}

func encodeImage(img image.Image, exifData []byte, format Format, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatJPEG:
		q := opts.Quality
		if q <= 0 || q > 100 {
			q = DefaultQuality
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
			return nil, err
		}
		return insertJPEGExif(buf.Bytes(), exifData), nil
	case FormatPNG:
		enc := png.Encoder{CompressionLevel: png.DefaultCompression}
		if opts.Optimize {
			enc.CompressionLevel = png.BestCompression
		}
		if err := enc.Encode(&buf, img); err != nil {
			return nil, err
		}
		return insertPNGExif(buf.Bytes(), exifData), nil
	case FormatTIFF:
		to := &tiff.Options{Compression: tiff.Deflate, Predictor: opts.Optimize}
		if err := tiff.Encode(&buf, img, to); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatBMP:
		if err := bmp.Encode(&buf, img); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}
