package flashplan

import (
	"fmt"

	"github.com/pkg/errors"
)

// OverlapError reports a linked image that does not fit the code region and
// would grow into the reserved storage pages. It is always fatal at build
// time.
type OverlapError struct {
	FlashLength   uint32
	PageSize      uint32
	ReservedPages uint32
	CodeSize      uint32
	ImageSize     uint32
	CodeEnd       uint32
	StorageStart  uint32
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf(
		"image of %d bytes exceeds the %d-byte code region "+
			"(flash %d bytes, page size %d, %d reserved pages): "+
			"code region ends at 0x%08x, storage region starts at 0x%08x; "+
			"shrink the image or reduce the reserved page count",
		e.ImageSize, e.CodeSize, e.FlashLength, e.PageSize, e.ReservedPages,
		e.CodeEnd, e.StorageStart)
}

func (p *Plan) overlapError(imageSize uint32) *OverlapError {
	return &OverlapError{
		FlashLength:   p.FlashLength,
		PageSize:      p.PageSize,
		ReservedPages: p.ReservedPages,
		CodeSize:      p.Code.Size(),
		ImageSize:     imageSize,
		CodeEnd:       p.Code.End,
		StorageStart:  p.Storage.Start,
	}
}

// ValidateImageSize checks that an image footprint of the given size fits
// the code region. An image that fills the region exactly still fits.
func (p *Plan) ValidateImageSize(size uint32) error {
	if size <= p.Code.Size() {
		return nil
	}
	return p.overlapError(size)
}

// ValidateSegments checks every data segment of a parsed image against the
// code region, catching sections the linker placed into the reserved pages
// even when the total footprint would fit.
func (p *Plan) ValidateSegments(segments []Segment) error {
	for _, seg := range segments {
		if len(seg.Data) == 0 {
			continue
		}
		end := uint64(seg.Address) + uint64(len(seg.Data))
		if seg.Address < p.FlashOrigin || end > uint64(p.FlashOrigin)+uint64(p.FlashLength) {
			return errors.Errorf(
				"flashplan: segment [0x%08x, 0x%08x) lies outside flash [0x%08x, 0x%08x)",
				seg.Address, end, p.FlashOrigin, p.FlashOrigin+p.FlashLength)
		}
		if end > uint64(p.Code.End) {
			return p.overlapError(uint32(end) - p.FlashOrigin)
		}
	}
	return nil
}

// CheckImage validates the image footprint and every segment against the
// plan. This is the build-time gate: any error returned here must fail the
// build.
func (p *Plan) CheckImage(img *Image) error {
	size, err := img.Footprint(p.FlashOrigin)
	if err != nil {
		return err
	}
	if err := p.ValidateImageSize(size); err != nil {
		return err
	}
	return p.ValidateSegments(img.Segments)
}
