package box

import (
	"fmt"

	"m7s.live/fmp4info/pkg/codec"
	"m7s.live/fmp4info/pkg/util"
)

// aligned(8) class AVCDecoderConfigurationRecord {
// 	unsigned int(8) configurationVersion = 1;
// 	unsigned int(8) AVCProfileIndication;
// 	unsigned int(8) profile_compatibility;
// 	unsigned int(8) AVCLevelIndication;
// 	bit(6) reserved = ‘111111’b;
// 	unsigned int(2) lengthSizeMinusOne;
// 	bit(3) reserved = ‘111’b;
// 	unsigned int(5) numOfSequenceParameterSets;
// 	...
// }

type AVCConfigurationBox struct {
	BoxHeader
	ConfigurationVersion uint8
	AVCProfileIndication uint8
	ProfileCompatibility uint8
	AVCLevelIndication   uint8
	Record               []byte // the whole decoder configuration record
}

func DecodeAVCConfigurationBox(c *util.Cursor) (avcc *AVCConfigurationBox, err error) {
	defer func() { err = classify(TypeAVCC, err) }()
	avcc = &AVCConfigurationBox{}
	if avcc.BoxHeader, err = readHeader(c, TypeAVCC); err != nil {
		return nil, err
	}
	rest, err := c.SliceToEnd()
	if err != nil {
		return nil, err
	}
	avcc.Record = rest.Bytes()
	var b []byte
	if b, err = rest.Read(4); err != nil {
		return nil, err
	}
	avcc.ConfigurationVersion, avcc.AVCProfileIndication, avcc.ProfileCompatibility, avcc.AVCLevelIndication = b[0], b[1], b[2], b[3]
	return
}

// ProfileString is profile, compatibility and level in upper case hex, e.g. 4D400D.
func (avcc *AVCConfigurationBox) ProfileString() string {
	return fmt.Sprintf("%02X%02X%02X", avcc.AVCProfileIndication, avcc.ProfileCompatibility, avcc.AVCLevelIndication)
}

// CodecCtx decodes the parameter sets carried in the record.
func (avcc *AVCConfigurationBox) CodecCtx() (codec.IVideoCodecCtx, error) {
	ctx, err := codec.NewH264Ctx(avcc.Record)
	if err != nil {
		return nil, err
	}
	return ctx, nil
}
