package box

import (
	"fmt"

	"m7s.live/fmp4info/pkg"
	"m7s.live/fmp4info/pkg/util"
)

// aligned(8) class TrackRunBox extends FullBox(‘trun’, version, tr_flags) {
//      unsigned int(32) sample_count;
//      // the following are optional fields
//      signed int(32) data_offset;
//       unsigned int(32) first_sample_flags;
//      // all fields in the following array are optional
//      {
//          unsigned int(32) sample_duration;
//          unsigned int(32) sample_size;
//          unsigned int(32) sample_flags
//          if (version == 0)
//          {
//              unsigned int(32) sample_composition_time_offset;
//          }
//          else
//          {
//              signed int(32) sample_composition_time_offset;
//          }
//      }[ sample_count ]
// }

const (
	TR_FLAG_DATA_OFFSET                  uint32 = 0x000001
	TR_FLAG_DATA_FIRST_SAMPLE_FLAGS      uint32 = 0x000004
	TR_FLAG_DATA_SAMPLE_DURATION         uint32 = 0x000100
	TR_FLAG_DATA_SAMPLE_SIZE             uint32 = 0x000200
	TR_FLAG_DATA_SAMPLE_FLAGS            uint32 = 0x000400
	TR_FLAG_DATA_SAMPLE_COMPOSITION_TIME uint32 = 0x000800
)

type TrunEntry struct {
	SampleDuration              uint32
	SampleSize                  uint32
	SampleFlags                 uint32
	SampleCompositionTimeOffset uint32
}

type TrackRunBox struct {
	BoxHeader
	FullBox
	SampleCount      uint32
	DataOffset       int32
	FirstSampleFlags uint32
	EntryList        []TrunEntry // empty when the run carries no per-sample fields
}

type trunField struct {
	flag   uint32
	decode func(c *util.Cursor, trun *TrackRunBox) error
}

type trunSampleField struct {
	flag   uint32
	decode func(c *util.Cursor, entry *TrunEntry) error
}

var trunFields = [...]trunField{
	{TR_FLAG_DATA_OFFSET, func(c *util.Cursor, trun *TrackRunBox) (err error) {
		trun.DataOffset, err = c.ReadInt32()
		return
	}},
	{TR_FLAG_DATA_FIRST_SAMPLE_FLAGS, func(c *util.Cursor, trun *TrackRunBox) (err error) {
		trun.FirstSampleFlags, err = c.ReadUint32()
		return
	}},
}

var trunSampleFields = [...]trunSampleField{
	{TR_FLAG_DATA_SAMPLE_DURATION, func(c *util.Cursor, entry *TrunEntry) (err error) {
		entry.SampleDuration, err = c.ReadUint32()
		return
	}},
	{TR_FLAG_DATA_SAMPLE_SIZE, func(c *util.Cursor, entry *TrunEntry) (err error) {
		entry.SampleSize, err = c.ReadUint32()
		return
	}},
	{TR_FLAG_DATA_SAMPLE_FLAGS, func(c *util.Cursor, entry *TrunEntry) (err error) {
		entry.SampleFlags, err = c.ReadUint32()
		return
	}},
	{TR_FLAG_DATA_SAMPLE_COMPOSITION_TIME, func(c *util.Cursor, entry *TrunEntry) (err error) {
		entry.SampleCompositionTimeOffset, err = c.ReadUint32()
		return
	}},
}

func DecodeTrackRunBox(c *util.Cursor) (trun *TrackRunBox, err error) {
	defer func() { err = classify(TypeTRUN, err) }()
	trun = &TrackRunBox{}
	if trun.BoxHeader, err = readHeader(c, TypeTRUN); err != nil {
		return nil, err
	}
	if trun.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	if trun.SampleCount, err = c.ReadUint32(); err != nil {
		return nil, err
	}
	for _, field := range trunFields {
		if trun.Flags&field.flag == 0 {
			continue
		}
		if err = field.decode(c, trun); err != nil {
			return nil, err
		}
	}
	var sampleFields []trunSampleField
	for _, field := range trunSampleFields {
		if trun.Flags&field.flag != 0 {
			sampleFields = append(sampleFields, field)
		}
	}
	if need := uint64(trun.SampleCount) * uint64(len(sampleFields)) * 4; need > uint64(c.Remaining()) {
		return nil, fmt.Errorf("%w: trun with %d samples needs %d bytes, %d left", pkg.ErrParsing, trun.SampleCount, need, c.Remaining())
	}
	if len(sampleFields) == 0 {
		return
	}
	trun.EntryList = make([]TrunEntry, trun.SampleCount)
	for i := range trun.EntryList {
		for _, field := range sampleFields {
			if err = field.decode(c, &trun.EntryList[i]); err != nil {
				return nil, err
			}
		}
	}
	return
}

func (trun *TrackRunBox) has(flag uint32) bool {
	return trun.Flags&flag != 0
}

func (trun *TrackRunBox) DataOffsetPresent() bool {
	return trun.has(TR_FLAG_DATA_OFFSET)
}

func (trun *TrackRunBox) FirstSampleFlagsPresent() bool {
	return trun.has(TR_FLAG_DATA_FIRST_SAMPLE_FLAGS)
}

func (trun *TrackRunBox) SampleDurationPresent() bool {
	return trun.has(TR_FLAG_DATA_SAMPLE_DURATION)
}

func (trun *TrackRunBox) SampleSizePresent() bool {
	return trun.has(TR_FLAG_DATA_SAMPLE_SIZE)
}

func (trun *TrackRunBox) SampleFlagsPresent() bool {
	return trun.has(TR_FLAG_DATA_SAMPLE_FLAGS)
}

func dependsNo(flags uint32) bool {
	return flags&MOV_FRAG_SAMPLE_FLAG_DEPENDS_MASK == MOV_FRAG_SAMPLE_FLAG_DEPENDS_NO
}

// IsSync reports whether sample i of the run is independently decodable. first_sample_flags,
// when present, decides sample 0 on its own.
func (trun *TrackRunBox) IsSync(i int) bool {
	if i == 0 && trun.FirstSampleFlagsPresent() {
		return dependsNo(trun.FirstSampleFlags)
	}
	if !trun.SampleFlagsPresent() {
		return false
	}
	flags := trun.EntryList[i].SampleFlags
	return dependsNo(flags) || (i == 0 && flags == 0)
}

// Duration sums the explicit sample durations, or applies defaultDuration to every sample.
func (trun *TrackRunBox) Duration(defaultDuration uint32, hasDefault bool) (uint64, error) {
	if trun.SampleDurationPresent() {
		var total uint64
		for _, entry := range trun.EntryList {
			total += uint64(entry.SampleDuration)
		}
		return total, nil
	}
	if !hasDefault {
		return 0, fmt.Errorf("%w: trun without sample durations and no default sample duration", pkg.ErrParsing)
	}
	return uint64(defaultDuration) * uint64(trun.SampleCount), nil
}
