package box

import (
	"m7s.live/fmp4info/pkg/util"
)

// aligned(8) class MovieHeaderBox extends FullBox(‘mvhd’, version, 0) {
//     if (version==1) {
//         unsigned int(64) creation_time;
//         unsigned int(64) modification_time;
//         unsigned int(32) timescale;
//         unsigned int(64) duration;
//     } else { // version==0
//         unsigned int(32) creation_time;
//         unsigned int(32) modification_time;
//         unsigned int(32) timescale;
//         unsigned int(32) duration;
//     }
//     template int(32) rate = 0x00010000; // typically 1.0
//     template int(16) volume = 0x0100; // typically, full volume
//     const bit(16) reserved = 0;
//     const unsigned int(32)[2] reserved = 0;
//     template int(32)[9] matrix = { 0x00010000,0,0,0,0x00010000,0,0,0,0x40000000 };
//     bit(32)[6] pre_defined = 0;
//     unsigned int(32) next_track_ID;
// }

type MovieHeaderBox struct {
	BoxHeader
	FullBox
	CreationTime     uint32
	ModificationTime uint32
	Timescale        uint32
	Duration         uint32
	Rate             int32
	Volume           int16
	Matrix           [9]uint32
	NextTrackID      uint32
}

func DecodeMovieHeaderBox(c *util.Cursor) (mvhd *MovieHeaderBox, err error) {
	defer func() { err = classify(TypeMVHD, err) }()
	mvhd = &MovieHeaderBox{}
	if mvhd.BoxHeader, err = readHeader(c, TypeMVHD); err != nil {
		return nil, err
	}
	if mvhd.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	if err = requireVersion0(TypeMVHD, mvhd.FullBox); err != nil {
		return nil, err
	}
	var b []byte
	if b, err = c.Read(96); err != nil {
		return nil, err
	}
	mvhd.CreationTime = util.ReadBE[uint32](b[0:4])
	mvhd.ModificationTime = util.ReadBE[uint32](b[4:8])
	mvhd.Timescale = util.ReadBE[uint32](b[8:12])
	mvhd.Duration = util.ReadBE[uint32](b[12:16])
	mvhd.Rate = util.ReadBE[int32](b[16:20])
	mvhd.Volume = int16(util.ReadBE[uint16](b[20:22]))
	for i := range mvhd.Matrix {
		mvhd.Matrix[i] = util.ReadBE[uint32](b[32+i*4 : 36+i*4])
	}
	mvhd.NextTrackID = util.ReadBE[uint32](b[92:96])
	return
}
