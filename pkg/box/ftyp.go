package box

import (
	"m7s.live/fmp4info/pkg/util"
)

// aligned(8) class FileTypeBox extends Box(‘ftyp’) {
//     unsigned int(32) major_brand;
//     unsigned int(32) minor_version;
//     unsigned int(32) compatible_brands[]; // to end of the box
// }

type FileTypeBox struct {
	BoxHeader
	MajorBrand       string
	MinorVersion     uint32
	CompatibleBrands []string
}

func DecodeFileTypeBox(c *util.Cursor) (ftyp *FileTypeBox, err error) {
	defer func() { err = classify(TypeFTYP, err) }()
	ftyp = &FileTypeBox{}
	if ftyp.BoxHeader, err = readHeader(c, TypeFTYP); err != nil {
		return nil, err
	}
	if ftyp.MajorBrand, err = c.ReadASCII(4); err != nil {
		return nil, err
	}
	if ftyp.MinorVersion, err = c.ReadUint32(); err != nil {
		return nil, err
	}
	for c.HasMoreBytes() {
		var brand string
		if brand, err = c.ReadASCII(4); err != nil {
			return nil, err
		}
		ftyp.CompatibleBrands = append(ftyp.CompatibleBrands, brand)
	}
	return
}
