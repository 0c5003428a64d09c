//go:build noheif

package codec

import "image"

func decodeHEIC(data []byte) (image.Image, error) {
	return nil, ErrHEICDisabled
}

func extractHEICExif(data []byte) ([]byte, error) {
	return nil, ErrHEICDisabled
}

// HEICSupported reports whether this build can decode HEIC.
func HEICSupported() bool { return false }
