package box

import (
	"fmt"

	"m7s.live/fmp4info/pkg"
	"m7s.live/fmp4info/pkg/util"
)

const (
	BasicBoxLen    = 8
	ExtendedBoxLen = 16
	FullBoxLen     = 12
)

type BoxType [4]byte

func f(s string) BoxType {
	return BoxType([]byte(s))
}

func (t BoxType) String() string {
	return string(t[:])
}

var (
	TypeFTYP = f("ftyp")
	TypeMOOV = f("moov")
	TypeMVHD = f("mvhd")
	TypeTRAK = f("trak")
	TypeTKHD = f("tkhd")
	TypeMDIA = f("mdia")
	TypeMDHD = f("mdhd")
	TypeHDLR = f("hdlr")
	TypeMINF = f("minf")
	TypeSTBL = f("stbl")
	TypeSTSD = f("stsd")
	TypeMDAT = f("mdat")
	TypeFREE = f("free")
	TypeMOOF = f("moof")
	TypeMFHD = f("mfhd")
	TypeTRAF = f("traf")
	TypeTFHD = f("tfhd")
	TypeTRUN = f("trun")

	TypeMP4A = f("mp4a")
	TypeENCA = f("enca")
	TypeAVC1 = f("avc1")
	TypeAVC3 = f("avc3")
	TypeHVC1 = f("hvc1")
	TypeHEV1 = f("hev1")
	TypeAVCC = f("avcC")
	TypeHVCC = f("hvcC")
	TypeESDS = f("esds")

	HandlerVideo = f("vide")
	HandlerAudio = f("soun")
)

// aligned(8) class Box (unsigned int(32) boxtype, optional unsigned int(8)[16] extended_type) {
//     unsigned int(32) size;
//     unsigned int(32) type = boxtype;
//     if (size==1) {
//         unsigned int(64) largesize;
//     } else if (size==0) {
//         // box extends to end of file
//     }
// }

type BoxHeader struct {
	Size      uint64 // largesize when the 32-bit field is 1
	Type      BoxType
	HeaderLen int
}

func (h BoxHeader) Header() BoxHeader {
	return h
}

func (h BoxHeader) PayloadSize() uint64 {
	return h.Size - uint64(h.HeaderLen)
}

func (h BoxHeader) check() error {
	if h.Size < uint64(h.HeaderLen) {
		return fmt.Errorf("%w: %s box size %d smaller than its header", pkg.ErrParsing, h.Type, h.Size)
	}
	return nil
}

func ReadBoxHeader(c *util.Cursor) (h BoxHeader, err error) {
	var size uint32
	if size, err = c.ReadUint32(); err != nil {
		return
	}
	var t []byte
	if t, err = c.Read(4); err != nil {
		return
	}
	h.Type, h.Size, h.HeaderLen = BoxType(t), uint64(size), BasicBoxLen
	if size == 1 {
		if h.Size, err = c.ReadUint64(); err != nil {
			return
		}
		h.HeaderLen = ExtendedBoxLen
	}
	return
}

// PeekBoxHeader reads the next header and leaves the cursor where it was.
func PeekBoxHeader(c *util.Cursor) (h BoxHeader, err error) {
	start := c.Position()
	h, err = ReadBoxHeader(c)
	if rerr := c.Rewind(c.Position() - start); err == nil {
		err = rerr
	}
	return
}

// readHeader reads the header of a cursor sized exactly to one box of the expected type.
func readHeader(c *util.Cursor, want BoxType) (h BoxHeader, err error) {
	if h, err = ReadBoxHeader(c); err != nil {
		return h, classify(want, err)
	}
	if h.Type != want {
		return h, fmt.Errorf("%w: expected %s box, got %s", pkg.ErrParsing, want, h.Type)
	}
	return
}

// aligned(8) class FullBox(unsigned int(32) boxtype, unsigned int(8) v, bit(24) f) extends Box(boxtype) {
//     unsigned int(8) version = v;
//     bit(24) flags = f;
// }

type FullBox struct {
	Version uint8
	Flags   uint32
}

func readFullBox(c *util.Cursor) (b FullBox, err error) {
	if b.Version, err = c.ReadUint8(); err != nil {
		return
	}
	b.Flags, err = c.ReadUint24()
	return
}

// Box is a decoded node of the box tree.
type Box interface {
	Header() BoxHeader
	isBox()
}

// OpaqueBox is any box that is skipped without decoding.
type OpaqueBox struct {
	BoxHeader
}

func (*OpaqueBox) isBox()              {}
func (*FileTypeBox) isBox()            {}
func (*MovieBox) isBox()               {}
func (*MovieHeaderBox) isBox()         {}
func (*TrackBox) isBox()               {}
func (*TrackHeaderBox) isBox()         {}
func (*MediaBox) isBox()               {}
func (*MediaHeaderBox) isBox()         {}
func (*HandlerBox) isBox()             {}
func (*MediaInformationBox) isBox()    {}
func (*SampleTableBox) isBox()         {}
func (*SampleDescriptionBox) isBox()   {}
func (*AudioSampleEntry) isBox()       {}
func (*VisualSampleEntry) isBox()      {}
func (*ESDBox) isBox()                 {}
func (*AVCConfigurationBox) isBox()    {}
func (*HEVCConfigurationBox) isBox()   {}
func (*MovieFragmentBox) isBox()       {}
func (*MovieFragmentHeaderBox) isBox() {}
func (*TrackFragmentBox) isBox()       {}
func (*TrackFragmentHeaderBox) isBox() {}
func (*TrackRunBox) isBox()            {}
func (*MediaDataBox) isBox()           {}

// DecodeBox decodes the box at the cursor by its fourCC. Boxes below a media box
// are decoded without a handler, so their sample entries stay empty.
func DecodeBox(c *util.Cursor) (Box, error) {
	h, err := PeekBoxHeader(c)
	if err != nil {
		return nil, classify(BoxType{}, err)
	}
	if err = h.check(); err != nil {
		return nil, err
	}
	if h.Size > uint64(c.Remaining()) {
		return nil, fmt.Errorf("%w: %s box size %d exceeds %d bytes", pkg.ErrParsing, h.Type, h.Size, c.Remaining())
	}
	sub, _ := c.Slice(int(h.Size))
	switch h.Type {
	case TypeFTYP:
		return DecodeFileTypeBox(sub)
	case TypeMOOV:
		return DecodeMovieBox(sub)
	case TypeMVHD:
		return DecodeMovieHeaderBox(sub)
	case TypeTRAK:
		return DecodeTrackBox(sub)
	case TypeTKHD:
		return DecodeTrackHeaderBox(sub)
	case TypeMDIA:
		return DecodeMediaBox(sub)
	case TypeMDHD:
		return DecodeMediaHeaderBox(sub)
	case TypeHDLR:
		return DecodeHandlerBox(sub)
	case TypeMINF:
		return DecodeMediaInformationBox(sub, BoxType{})
	case TypeSTBL:
		return DecodeSampleTableBox(sub, BoxType{})
	case TypeSTSD:
		return DecodeSampleDescriptionBox(sub, BoxType{})
	case TypeESDS:
		return DecodeESDBox(sub)
	case TypeAVCC:
		return DecodeAVCConfigurationBox(sub)
	case TypeHVCC:
		return DecodeHEVCConfigurationBox(sub)
	case TypeMOOF:
		return DecodeMovieFragmentBox(sub)
	case TypeMFHD:
		return DecodeMovieFragmentHeaderBox(sub)
	case TypeTRAF:
		return DecodeTrackFragmentBox(sub)
	case TypeTFHD:
		return DecodeTrackFragmentHeaderBox(sub)
	case TypeTRUN:
		return DecodeTrackRunBox(sub)
	case TypeMDAT:
		return &MediaDataBox{BoxHeader: h}, nil
	}
	return &OpaqueBox{BoxHeader: h}, nil
}
