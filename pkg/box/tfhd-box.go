package box

import (
	"m7s.live/fmp4info/pkg/util"
)

// aligned(8) class TrackFragmentHeaderBox extends FullBox(‘tfhd’, 0, tf_flags){
//     unsigned int(32) track_ID;
//     // all the following are optional fields
//     unsigned int(64) base_data_offset;
//     unsigned int(32) sample_description_index;
//     unsigned int(32) default_sample_duration;
//     unsigned int(32) default_sample_size;
//     unsigned int(32) default_sample_flags
// }

const (
	TF_FLAG_BASE_DATA_OFFSET                 uint32 = 0x000001
	TF_FLAG_SAMPLE_DESCRIPTION_INDEX_PRESENT uint32 = 0x000002
	TF_FLAG_DEFAULT_SAMPLE_DURATION_PRESENT  uint32 = 0x000008
	TF_FLAG_DEFAULT_SAMPLE_SIZE_PRESENT      uint32 = 0x000010
	TF_FLAG_DEFAULT_SAMPLE_FLAGS_PRESENT     uint32 = 0x000020
	TF_FLAG_DURATION_IS_EMPTY                uint32 = 0x010000

	//ffmpeg isom.h
	MOV_FRAG_SAMPLE_FLAG_IS_NON_SYNC  uint32 = 0x00010000
	MOV_FRAG_SAMPLE_FLAG_DEPENDS_MASK uint32 = 0x03000000

	MOV_FRAG_SAMPLE_FLAG_DEPENDS_NO  uint32 = 0x02000000
	MOV_FRAG_SAMPLE_FLAG_DEPENDS_YES uint32 = 0x01000000
)

type TrackFragmentHeaderBox struct {
	BoxHeader
	FullBox
	Track_ID               uint32
	BaseDataOffset         uint64
	SampleDescriptionIndex uint32
	DefaultSampleDuration  uint32
	DefaultSampleSize      uint32
	DefaultSampleFlags     uint32
	DurationIsEmpty        bool
}

type tfhdField struct {
	flag   uint32
	decode func(c *util.Cursor, tfhd *TrackFragmentHeaderBox) error
}

// tfhdFields lists the optional fields in wire order.
var tfhdFields = [...]tfhdField{
	{TF_FLAG_BASE_DATA_OFFSET, func(c *util.Cursor, tfhd *TrackFragmentHeaderBox) (err error) {
		tfhd.BaseDataOffset, err = c.ReadUint64()
		return
	}},
	{TF_FLAG_SAMPLE_DESCRIPTION_INDEX_PRESENT, func(c *util.Cursor, tfhd *TrackFragmentHeaderBox) (err error) {
		tfhd.SampleDescriptionIndex, err = c.ReadUint32()
		return
	}},
	{TF_FLAG_DEFAULT_SAMPLE_DURATION_PRESENT, func(c *util.Cursor, tfhd *TrackFragmentHeaderBox) (err error) {
		tfhd.DefaultSampleDuration, err = c.ReadUint32()
		return
	}},
	{TF_FLAG_DEFAULT_SAMPLE_SIZE_PRESENT, func(c *util.Cursor, tfhd *TrackFragmentHeaderBox) (err error) {
		tfhd.DefaultSampleSize, err = c.ReadUint32()
		return
	}},
	{TF_FLAG_DEFAULT_SAMPLE_FLAGS_PRESENT, func(c *util.Cursor, tfhd *TrackFragmentHeaderBox) (err error) {
		tfhd.DefaultSampleFlags, err = c.ReadUint32()
		return
	}},
	{TF_FLAG_DURATION_IS_EMPTY, func(c *util.Cursor, tfhd *TrackFragmentHeaderBox) error {
		tfhd.DurationIsEmpty = true
		return nil
	}},
}

func DecodeTrackFragmentHeaderBox(c *util.Cursor) (tfhd *TrackFragmentHeaderBox, err error) {
	defer func() { err = classify(TypeTFHD, err) }()
	tfhd = &TrackFragmentHeaderBox{}
	if tfhd.BoxHeader, err = readHeader(c, TypeTFHD); err != nil {
		return nil, err
	}
	if tfhd.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	if tfhd.Track_ID, err = c.ReadUint32(); err != nil {
		return nil, err
	}
	for _, field := range tfhdFields {
		if tfhd.Flags&field.flag == 0 {
			continue
		}
		if err = field.decode(c, tfhd); err != nil {
			return nil, err
		}
	}
	return
}

func (tfhd *TrackFragmentHeaderBox) DefaultDuration() (uint32, bool) {
	return tfhd.DefaultSampleDuration, tfhd.Flags&TF_FLAG_DEFAULT_SAMPLE_DURATION_PRESENT != 0
}

func (tfhd *TrackFragmentHeaderBox) DefaultSize() (uint32, bool) {
	return tfhd.DefaultSampleSize, tfhd.Flags&TF_FLAG_DEFAULT_SAMPLE_SIZE_PRESENT != 0
}
