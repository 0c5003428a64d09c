//go:build !noheif

package codec

import (
	"bytes"
	"image"

	"github.com/jdeng/goheif"
)

func decodeHEIC(data []byte) (image.Image, error) {
	return goheif.Decode(bytes.NewReader(data))
}

func extractHEICExif(data []byte) ([]byte, error) {
	return goheif.ExtractExif(bytes.NewReader(data))
}

// HEICSupported reports whether this build can decode HEIC.
func HEICSupported() bool { return true }
