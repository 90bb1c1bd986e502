package box

import (
	"github.com/yapingcat/gomedia/go-codec"

	"m7s.live/fmp4info/pkg/util"
)

// aligned(8) class MediaHeaderBox extends FullBox(‘mdhd’, version, 0) {
//  if (version==1) {
// 	unsigned int(64)  creation_time;
// 	unsigned int(64)  modification_time;
// 	unsigned int(32)  timescale;
// 	unsigned int(64)  duration;
//  } else { // version==0
// 	unsigned int(32)  creation_time;
// 	unsigned int(32)  modification_time;
// 	unsigned int(32)  timescale;
// 	unsigned int(32)  duration;
// }
// bit(1) pad = 0;
// unsigned int(5)[3] language; // ISO-639-2/T language code
// unsigned int(16) pre_defined = 0;
// }

type MediaHeaderBox struct {
	BoxHeader
	FullBox
	CreationTime     uint32
	ModificationTime uint32
	Timescale        uint32
	Duration         uint32
	Language         string
}

func DecodeMediaHeaderBox(c *util.Cursor) (mdhd *MediaHeaderBox, err error) {
	defer func() { err = classify(TypeMDHD, err) }()
	mdhd = &MediaHeaderBox{}
	if mdhd.BoxHeader, err = readHeader(c, TypeMDHD); err != nil {
		return nil, err
	}
	if mdhd.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	if err = requireVersion0(TypeMDHD, mdhd.FullBox); err != nil {
		return nil, err
	}
	var b []byte
	if b, err = c.Read(20); err != nil {
		return nil, err
	}
	mdhd.CreationTime = util.ReadBE[uint32](b[0:4])
	mdhd.ModificationTime = util.ReadBE[uint32](b[4:8])
	mdhd.Timescale = util.ReadBE[uint32](b[8:12])
	mdhd.Duration = util.ReadBE[uint32](b[12:16])
	mdhd.Language = decodeLanguage(b[16:18])
	return
}

func decodeLanguage(b []byte) string {
	bs := codec.NewBitStream(b)
	bs.SkipBits(1)
	var lang [3]byte
	for i := range lang {
		lang[i] = bs.Uint8(5) + 0x60
	}
	return string(lang[:])
}
