package box

import (
	"m7s.live/fmp4info/pkg/util"
)

// aligned(8) class TrackHeaderBox extends FullBox(‘tkhd’, version, flags){
//     if (version==1) {
//         unsigned int(64) creation_time;
//         unsigned int(64) modification_time;
//         unsigned int(32) track_ID;
//         const unsigned int(32) reserved = 0;
//         unsigned int(64) duration;
//     } else { // version==0
//         unsigned int(32) creation_time;
//         unsigned int(32) modification_time;
//         unsigned int(32) track_ID;
//         const unsigned int(32) reserved = 0;
//         unsigned int(32) duration;
//     }
//     const unsigned int(32)[2] reserved = 0;
//     template int(16) layer = 0;
//     template int(16) alternate_group = 0;
//     template int(16) volume = {if track_is_audio 0x0100 else 0};
//     const unsigned int(16) reserved = 0;
//     template int(32)[9] matrix= { 0x00010000,0,0,0,0x00010000,0,0,0,0x40000000 };
//     unsigned int(32) width;
//     unsigned int(32) height;
// }

type TrackHeaderBox struct {
	BoxHeader
	FullBox
	CreationTime     uint32
	ModificationTime uint32
	Track_ID         uint32
	Duration         uint32
	Layer            int16
	AlternateGroup   int16
	Volume           int16
	Matrix           [9]uint32
	Width            uint32 // 16.16
	Height           uint32 // 16.16
}

func DecodeTrackHeaderBox(c *util.Cursor) (tkhd *TrackHeaderBox, err error) {
	defer func() { err = classify(TypeTKHD, err) }()
	tkhd = &TrackHeaderBox{}
	if tkhd.BoxHeader, err = readHeader(c, TypeTKHD); err != nil {
		return nil, err
	}
	if tkhd.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	if err = requireVersion0(TypeTKHD, tkhd.FullBox); err != nil {
		return nil, err
	}
	var b []byte
	if b, err = c.Read(80); err != nil {
		return nil, err
	}
	tkhd.CreationTime = util.ReadBE[uint32](b[0:4])
	tkhd.ModificationTime = util.ReadBE[uint32](b[4:8])
	tkhd.Track_ID = util.ReadBE[uint32](b[8:12])
	tkhd.Duration = util.ReadBE[uint32](b[16:20])
	tkhd.Layer = int16(util.ReadBE[uint16](b[28:30]))
	tkhd.AlternateGroup = int16(util.ReadBE[uint16](b[30:32]))
	tkhd.Volume = int16(util.ReadBE[uint16](b[32:34]))
	for i := range tkhd.Matrix {
		tkhd.Matrix[i] = util.ReadBE[uint32](b[36+i*4 : 40+i*4])
	}
	tkhd.Width = util.ReadBE[uint32](b[72:76])
	tkhd.Height = util.ReadBE[uint32](b[76:80])
	return
}

func (tkhd *TrackHeaderBox) Resolution() (width, height uint32) {
	return tkhd.Width >> 16, tkhd.Height >> 16
}
