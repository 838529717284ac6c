package flashplan

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/marcinbor85/gohex"
	"github.com/pkg/errors"
)

// Segment is a contiguous run of image bytes at an absolute flash address.
type Segment struct {
	Address uint32
	Data    []byte
}

// Image is a linked firmware image as a set of data segments.
type Image struct {
	Segments []Segment
}

// OpenImage reads a firmware image from an Intel HEX or raw binary file.
// Raw binaries carry no address information and are assumed to load at the
// flash origin.
func OpenImage(name string, flashOrigin uint32) (*Image, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	switch ext := filepath.Ext(name); ext {
	case ".hex":
		return parseIntelHex(bytes.NewReader(b))
	case ".bin":
		return &Image{Segments: []Segment{{Address: flashOrigin, Data: b}}}, nil
	default:
		return nil, errors.Errorf("flashplan: unsupported image format %q", ext)
	}
}

func parseIntelHex(r io.Reader) (*Image, error) {
	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(r); err != nil {
		return nil, errors.WithStack(err)
	}
	img := &Image{}
	for _, segment := range mem.GetDataSegments() {
		img.Segments = append(img.Segments, Segment{
			Address: segment.Address,
			Data:    segment.Data,
		})
	}
	return img, nil
}

// Footprint returns the flash footprint of the image relative to the flash
// origin: the end of the highest segment. Gaps between segments count, the
// way they occupy flash in the linked image.
func (img *Image) Footprint(flashOrigin uint32) (uint32, error) {
	var end uint64
	for _, seg := range img.Segments {
		if len(seg.Data) == 0 {
			continue
		}
		if seg.Address < flashOrigin {
			return 0, errors.Errorf(
				"flashplan: segment at 0x%08x is below the flash origin 0x%08x",
				seg.Address, flashOrigin)
		}
		segEnd := uint64(seg.Address) + uint64(len(seg.Data))
		if segEnd > end {
			end = segEnd
		}
	}
	if end == 0 {
		return 0, nil
	}
	return uint32(end - uint64(flashOrigin)), nil
}
