package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
)

const orientationTag = 0x0112

type exifMeta struct {
	raw              []byte
	orientation      int
	dateTimeOriginal string
}

// readExif parses an EXIF source: a JPEG file, a raw "Exif\0\0" block or a
// bare TIFF structure.
func readExif(src []byte) (*exifMeta, error) {
	x, err := exif.Decode(bytes.NewReader(src))
	if x == nil || (err != nil && exif.IsCriticalError(err)) {
		if err == nil {
			err = fmt.Errorf("no EXIF data")
		}
		return nil, err
	}

	meta := &exifMeta{raw: x.Raw, orientation: 1}
	if tag, err := x.Get(exif.Orientation); err == nil {
		if o, err := tag.Int(0); err == nil {
			meta.orientation = o
		}
	}
	if tag, err := x.Get(exif.DateTimeOriginal); err == nil {
		if s, err := tag.StringVal(); err == nil {
			meta.dateTimeOriginal = strings.TrimRight(s, "\x00 ")
		}
	}

	return meta, nil
}

// resetOrientation returns a copy of a TIFF EXIF block with the IFD0
// orientation set to 1, since the pixels already have it applied.
func resetOrientation(raw []byte) []byte {
	if len(raw) < 8 {
		return raw
	}
	out := make([]byte, len(raw))
	copy(out, raw)

	var order binary.ByteOrder
	switch string(out[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return out
	}

	ifd := int(order.Uint32(out[4:8]))
	if ifd+2 > len(out) {
		return out
	}
	n := int(order.Uint16(out[ifd:]))
	for i := 0; i < n; i++ {
		e := ifd + 2 + 12*i
		if e+12 > len(out) {
			break
		}
		// SHORT values sit left-justified in the 4 byte value field.
		if order.Uint16(out[e:]) == orientationTag && order.Uint16(out[e+2:]) == 3 {
			order.PutUint16(out[e+8:], 1)
			break
		}
	}

	return out
}

// insertJPEGExif puts the EXIF block in an APP1 segment right after SOI.
func insertJPEGExif(jpegData, tiffData []byte) []byte {
	if len(tiffData) == 0 || len(jpegData) < 4 || jpegData[0] != 0xFF || jpegData[1] != 0xD8 {
		return jpegData
	}

	ident := []byte("Exif\x00\x00")
	segLen := 2 + len(ident) + len(tiffData)
	if segLen > 0xFFFF {
		return jpegData
	}

	app1 := make([]byte, 0, 2+segLen)
	app1 = append(app1, 0xFF, 0xE1, byte(segLen>>8), byte(segLen&0xFF))
	app1 = append(app1, ident...)
	app1 = append(app1, tiffData...)

	out := make([]byte, 0, len(jpegData)+len(app1))
	out = append(out, jpegData[:2]...)
	out = append(out, app1...)
	out = append(out, jpegData[2:]...)
	return out
}

// pngHeaderLen is the signature plus the IHDR chunk.
const pngHeaderLen = 8 + 4 + 4 + 13 + 4

// insertPNGExif adds an eXIf chunk after IHDR.
func insertPNGExif(pngData, tiffData []byte) []byte {
	if len(tiffData) == 0 || len(pngData) < pngHeaderLen || string(pngData[12:16]) != "IHDR" {
		return pngData
	}

	chunk := make([]byte, 8, 12+len(tiffData))
	binary.BigEndian.PutUint32(chunk[:4], uint32(len(tiffData)))
	copy(chunk[4:8], "eXIf")
	chunk = append(chunk, tiffData...)
	chunk = binary.BigEndian.AppendUint32(chunk, crc32.ChecksumIEEE(chunk[4:]))

	out := make([]byte, 0, len(pngData)+len(chunk))
	out = append(out, pngData[:pngHeaderLen]...)
	out = append(out, chunk...)
	out = append(out, pngData[pngHeaderLen:]...)
	return out
}
