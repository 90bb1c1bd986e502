package box

import (
	"fmt"
	"strconv"

	"m7s.live/fmp4info/pkg"
	"m7s.live/fmp4info/pkg/codec"
	"m7s.live/fmp4info/pkg/util"
)

// abstract aligned(8) expandable(2^28-1) class BaseDescriptor : bit(8) tag=0 {
// 	// empty. To be filled by classes extending this class.
// }

const (
	ES_DescrTag           = 0x03
	DecoderConfigDescrTag = 0x04
	DecSpecificInfoTag    = 0x05
	SLConfigDescrTag      = 0x06
	streamDependenceFlag  = 0x80
	urlFlag               = 0x40
	ocrStreamFlag         = 0x20
)

type BaseDescriptor struct {
	Tag  uint8
	Size uint32
}

// class ES_Descriptor extends BaseDescriptor : bit(8) tag=ES_DescrTag {
// 	bit(16) ES_ID;
// 	bit(1) streamDependenceFlag;
// 	bit(1) URL_Flag;
// 	bit(1) OCRstreamFlag;
// 	bit(5) streamPriority;
// 	if (streamDependenceFlag)
// 		bit(16) dependsOn_ES_ID;
// 	if (URL_Flag) {
// 		bit(8) URLlength;
// 		bit(8) URLstring[URLlength];
// 	}
// 	if (OCRstreamFlag)
// 		bit(16) OCR_ES_Id;
// 	DecoderConfigDescriptor decConfigDescr;
// 	SLConfigDescriptor slConfigDescr;
// 	...
// }

type ESDescriptor struct {
	BaseDescriptor
	ESID          uint16
	Flags         uint8
	DecoderConfig *DecoderConfigDescriptor
}

// class DecoderConfigDescriptor extends BaseDescriptor : bit(8) tag=DecoderConfigDescrTag {
// 	bit(8) objectTypeIndication;
// 	bit(6) streamType;
// 	bit(1) upStream;
// 	const bit(1) reserved=1;
// 	bit(24) bufferSizeDB;
// 	bit(32) maxBitrate;
// 	bit(32) avgBitrate;
// 	DecoderSpecificInfo decSpecificInfo[0 .. 1];
// 	profileLevelIndicationIndexDescriptor profileLevelIndicationIndexDescr [0..255];
// }

type DecoderConfigDescriptor struct {
	BaseDescriptor
	ObjectTypeIndication uint8
	StreamType           uint8
	BufferSizeDB         uint32
	MaxBitrate           uint32
	AvgBitrate           uint32
	SpecificInfo         *DecoderSpecificInfo
}

type DecoderSpecificInfo struct {
	BaseDescriptor
	Data []byte
}

// AudioObjectType is the top five bits of the AudioSpecificConfig.
func (dsi *DecoderSpecificInfo) AudioObjectType() uint8 {
	if len(dsi.Data) == 0 {
		return 0
	}
	return dsi.Data[0] >> 3
}

// CodecCtx decodes Data as an AudioSpecificConfig.
func (dsi *DecoderSpecificInfo) CodecCtx() (*codec.AACCtx, error) {
	return codec.NewAACCtx(dsi.Data)
}

// aligned(8) class ESDBox extends FullBox(‘esds’, version = 0, 0) {
// 	ES_Descriptor ES;
// }

type ESDBox struct {
	BoxHeader
	FullBox
	ES      *ESDescriptor
	Skipped []BaseDescriptor // descriptors with an unhandled tag, in stream order
}

func DecodeESDBox(c *util.Cursor) (esds *ESDBox, err error) {
	defer func() { err = classify(TypeESDS, err) }()
	esds = &ESDBox{}
	if esds.BoxHeader, err = readHeader(c, TypeESDS); err != nil {
		return nil, err
	}
	if esds.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	for c.HasMoreBytes() {
		if err = esds.decodeDescriptor(c, nil); err != nil {
			return nil, err
		}
	}
	return
}

// decodeDescriptor reads one descriptor and its nested ones, attaching them to parent.
func (esds *ESDBox) decodeDescriptor(c *util.Cursor, parent any) (err error) {
	var base BaseDescriptor
	if base.Tag, err = c.ReadUint8(); err != nil {
		return
	}
	if base.Size, err = c.ReadDescriptorSize(); err != nil {
		return
	}
	payload, err := c.Slice(int(base.Size))
	if err != nil {
		return fmt.Errorf("%w: descriptor 0x%02x size %d: %w", pkg.ErrParsing, base.Tag, base.Size, err)
	}
	switch base.Tag {
	case ES_DescrTag:
		es := &ESDescriptor{BaseDescriptor: base}
		if err = es.decode(payload); err != nil {
			return
		}
		if esds.ES == nil {
			esds.ES = es
		}
		for payload.HasMoreBytes() {
			if err = esds.decodeDescriptor(payload, es); err != nil {
				return
			}
		}
	case DecoderConfigDescrTag:
		dc := &DecoderConfigDescriptor{BaseDescriptor: base}
		if err = dc.decode(payload); err != nil {
			return
		}
		if es, ok := parent.(*ESDescriptor); ok && es.DecoderConfig == nil {
			es.DecoderConfig = dc
		}
		for payload.HasMoreBytes() {
			if err = esds.decodeDescriptor(payload, dc); err != nil {
				return
			}
		}
	case DecSpecificInfoTag:
		dsi := &DecoderSpecificInfo{BaseDescriptor: base, Data: payload.Bytes()}
		if dc, ok := parent.(*DecoderConfigDescriptor); ok && dc.SpecificInfo == nil {
			dc.SpecificInfo = dsi
		}
	default:
		esds.Skipped = append(esds.Skipped, base)
	}
	return
}

func (es *ESDescriptor) decode(c *util.Cursor) (err error) {
	if es.ESID, err = c.ReadUint16(); err != nil {
		return
	}
	if es.Flags, err = c.ReadUint8(); err != nil {
		return
	}
	if es.Flags&streamDependenceFlag != 0 {
		if err = c.Advance(2); err != nil {
			return
		}
	}
	if es.Flags&urlFlag != 0 {
		var n uint8
		if n, err = c.ReadUint8(); err != nil {
			return
		}
		if err = c.Advance(int(n)); err != nil {
			return
		}
	}
	if es.Flags&ocrStreamFlag != 0 {
		err = c.Advance(2)
	}
	return
}

func (dc *DecoderConfigDescriptor) decode(c *util.Cursor) (err error) {
	if dc.ObjectTypeIndication, err = c.ReadUint8(); err != nil {
		return
	}
	if dc.StreamType, err = c.ReadUint8(); err != nil {
		return
	}
	if dc.BufferSizeDB, err = c.ReadUint24(); err != nil {
		return
	}
	if dc.MaxBitrate, err = c.ReadUint32(); err != nil {
		return
	}
	dc.AvgBitrate, err = c.ReadUint32()
	return
}

func (esds *ESDBox) DecoderConfig() *DecoderConfigDescriptor {
	if esds.ES == nil {
		return nil
	}
	return esds.ES.DecoderConfig
}

// CodecString renders the object type indication in hex, then the audio object type, e.g. 40.2.
func (esds *ESDBox) CodecString() string {
	dc := esds.DecoderConfig()
	if dc == nil {
		return ""
	}
	s := fmt.Sprintf("%02X", dc.ObjectTypeIndication)
	if dc.SpecificInfo != nil && len(dc.SpecificInfo.Data) > 0 {
		s += "." + strconv.Itoa(int(dc.SpecificInfo.AudioObjectType()))
	}
	return s
}
