package box

import (
	"fmt"
	"strings"

	"m7s.live/fmp4info/pkg"
	"m7s.live/fmp4info/pkg/codec"
	"m7s.live/fmp4info/pkg/util"
)

// aligned(8) class SampleDescriptionBox (unsigned int(32) handler_type) extends FullBox('stsd', 0, 0){
// 	int i ;
// 	unsigned int(32) entry_count;
// 	   for (i = 1 ; i <= entry_count ; i++){
// 	      switch (handler_type){
// 	         case ‘soun’: // for audio tracks
// 	            AudioSampleEntry();
// 	            break;
// 	         case ‘vide’: // for video tracks
// 	            VisualSampleEntry();
// 	            break;
// 	         case ‘hint’: // Hint track
// 	            HintSampleEntry();
// 	            break;
// 	         case ‘meta’: // Metadata track
// 	            MetadataSampleEntry();
// 	            break;
// 	      }
// 	   }
// 	}

// SampleDescriptionBox keeps the first sample entry only.
type SampleDescriptionBox struct {
	BoxHeader
	FullBox
	EntryCount uint32
	Audio      *AudioSampleEntry
	Visual     *VisualSampleEntry
}

func DecodeSampleDescriptionBox(c *util.Cursor, handlerType BoxType) (stsd *SampleDescriptionBox, err error) {
	defer func() { err = classify(TypeSTSD, err) }()
	stsd = &SampleDescriptionBox{}
	if stsd.BoxHeader, err = readHeader(c, TypeSTSD); err != nil {
		return nil, err
	}
	if stsd.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	if stsd.EntryCount, err = c.ReadUint32(); err != nil {
		return nil, err
	}
	if stsd.EntryCount == 0 || !c.HasMoreBytes() {
		return
	}
	var h BoxHeader
	if h, err = PeekBoxHeader(c); err != nil {
		return nil, err
	}
	if err = h.check(); err != nil {
		return nil, err
	}
	if h.Size > uint64(c.Remaining()) {
		return nil, fmt.Errorf("%w: %s entry size %d exceeds %d remaining bytes", pkg.ErrParsing, h.Type, h.Size, c.Remaining())
	}
	entry, _ := c.Slice(int(h.Size))
	switch handlerType {
	case HandlerAudio:
		stsd.Audio, err = DecodeAudioSampleEntry(entry)
	case HandlerVideo:
		stsd.Visual, err = DecodeVisualSampleEntry(entry)
	}
	if err != nil {
		return nil, err
	}
	return
}

// class SampleEntry (unsigned int(32) format) extends Box(format){
// 	const unsigned int(8)[6] reserved = 0;
// 	unsigned int(16) data_reference_index;
// }

func readSampleEntry(c *util.Cursor) (h BoxHeader, dataReferenceIndex uint16, err error) {
	if h, err = ReadBoxHeader(c); err != nil {
		return
	}
	if err = c.Advance(6); err != nil {
		return
	}
	dataReferenceIndex, err = c.ReadUint16()
	return
}

// class AudioSampleEntry(codingname) extends SampleEntry (codingname){
// 	const unsigned int(32)[2] reserved = 0;
// 	template unsigned int(16) channelcount = 2;
// 	template unsigned int(16) samplesize = 16;
// 	unsigned int(16) pre_defined = 0;
// 	const unsigned int(16) reserved = 0 ;
// 	template unsigned int(32) samplerate = { default samplerate of media}<<16;
// }

type AudioSampleEntry struct {
	BoxHeader
	DataReferenceIndex uint16
	ChannelCount       uint16
	SampleSize         uint16
	SampleRate         uint32 // 16.16
	ESDescriptor       *ESDBox
}

func DecodeAudioSampleEntry(c *util.Cursor) (entry *AudioSampleEntry, err error) {
	entry = &AudioSampleEntry{}
	if entry.BoxHeader, entry.DataReferenceIndex, err = readSampleEntry(c); err != nil {
		return nil, classify(entry.Type, err)
	}
	var b []byte
	if b, err = c.Read(20); err != nil {
		return nil, classify(entry.Type, err)
	}
	entry.ChannelCount = util.ReadBE[uint16](b[8:10])
	entry.SampleSize = util.ReadBE[uint16](b[10:12])
	entry.SampleRate = util.ReadBE[uint32](b[16:20])
	if !entry.IsAAC() {
		return
	}
	err = walk(c, entry.Type, children{
		TypeESDS: func(c *util.Cursor) (err error) {
			entry.ESDescriptor, err = DecodeESDBox(c)
			return
		},
	})
	if err != nil {
		return nil, err
	}
	return
}

func (entry *AudioSampleEntry) CodingName() string {
	return entry.Type.String()
}

// IsAAC reports whether the entry carries an MPEG-4 audio elementary stream descriptor.
func (entry *AudioSampleEntry) IsAAC() bool {
	return entry.Type == TypeMP4A || entry.Type == TypeENCA
}

// Codec returns the RFC 6381 codec string, e.g. mp4a.40.2.
func (entry *AudioSampleEntry) Codec() string {
	if entry.ESDescriptor != nil {
		if s := entry.ESDescriptor.CodecString(); s != "" {
			return entry.CodingName() + "." + s
		}
	}
	return entry.CodingName()
}

// class VisualSampleEntry(codingname) extends SampleEntry (codingname){
// 	unsigned int(16) pre_defined = 0;
// 	const unsigned int(16) reserved = 0;
// 	unsigned int(32)[3] pre_defined = 0;
// 	unsigned int(16) width;
// 	unsigned int(16) height;
// 	template unsigned int(32) horizresolution = 0x00480000; // 72 dpi
// 	template unsigned int(32) vertresolution = 0x00480000; // 72 dpi
// 	const unsigned int(32) reserved = 0;
// 	template unsigned int(16) frame_count = 1;
// 	string[32] compressorname;
// 	template unsigned int(16) depth = 0x0018;
// 	int(16) pre_defined = -1;
// 	// other boxes from derived specifications
// 	CleanApertureBox clap; // optional
// 	PixelAspectRatioBox pasp; // optional
// }

// CodecConfig is a decoded decoder configuration record (avcC or hvcC).
type CodecConfig interface {
	Box
	ProfileString() string
	CodecCtx() (codec.IVideoCodecCtx, error)
}

type VisualSampleEntry struct {
	BoxHeader
	DataReferenceIndex uint16
	Width              uint16
	Height             uint16
	HorizResolution    uint32
	VertResolution     uint32
	FrameCount         uint16
	CompressorName     string
	Depth              uint16
	Config             CodecConfig // nil when the entry has neither avcC nor hvcC
}

func DecodeVisualSampleEntry(c *util.Cursor) (entry *VisualSampleEntry, err error) {
	entry = &VisualSampleEntry{}
	if entry.BoxHeader, entry.DataReferenceIndex, err = readSampleEntry(c); err != nil {
		return nil, classify(entry.Type, err)
	}
	var b []byte
	if b, err = c.Read(70); err != nil {
		return nil, classify(entry.Type, err)
	}
	entry.Width = util.ReadBE[uint16](b[16:18])
	entry.Height = util.ReadBE[uint16](b[18:20])
	entry.HorizResolution = util.ReadBE[uint32](b[20:24])
	entry.VertResolution = util.ReadBE[uint32](b[24:28])
	entry.FrameCount = util.ReadBE[uint16](b[32:34])
	name := b[34:66]
	if n := int(name[0]); n < len(name) {
		entry.CompressorName = strings.ToValidUTF8(string(name[1:1+n]), "")
	}
	entry.Depth = util.ReadBE[uint16](b[66:68])
	err = walk(c, entry.Type, children{
		TypeAVCC: func(c *util.Cursor) error {
			avcc, err := DecodeAVCConfigurationBox(c)
			if err == nil && entry.Config == nil {
				entry.Config = avcc
			}
			return err
		},
		TypeHVCC: func(c *util.Cursor) error {
			hvcc, err := DecodeHEVCConfigurationBox(c)
			if err == nil && entry.Config == nil {
				entry.Config = hvcc
			}
			return err
		},
	})
	if err != nil {
		return nil, err
	}
	return
}

func (entry *VisualSampleEntry) CodingName() string {
	return entry.Type.String()
}

// Codec returns the RFC 6381 codec string; ok is false without a configuration record.
func (entry *VisualSampleEntry) Codec() (string, bool) {
	if entry.Config == nil {
		return entry.CodingName(), false
	}
	return entry.CodingName() + "." + entry.Config.ProfileString(), true
}
