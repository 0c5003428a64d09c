package convert

import (
	"path/filepath"
	"strings"
)

// Class is the kind of work a file needs.
type Class int

const (
	// Ignored files are skipped silently.
	Ignored Class = iota
	// HEIC files are decoded and re-encoded.
	HEIC
	// MOV files are live photo companions and only get renamed.
	MOV
)

func (c Class) String() string {
	switch c {
	case HEIC:
		return "heic"
	case MOV:
		return "mov"
	default:
		return "ignored"
	}
}

// Classify returns the class of path from its lowercased extension.
func Classify(path string) Class {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".heic", ".heif":
		return HEIC
	case ".mov":
		return MOV
	default:
		return Ignored
	}
}
