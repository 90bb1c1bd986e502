package box

import (
	"bytes"
	"encoding/hex"
	"math/bits"
	"strconv"
	"strings"

	gocodec "github.com/yapingcat/gomedia/go-codec"

	"m7s.live/fmp4info/pkg/codec"
	"m7s.live/fmp4info/pkg/util"
)

// aligned(8) class HEVCDecoderConfigurationRecord {
// 	unsigned int(8) configurationVersion = 1;
// 	unsigned int(2) general_profile_space;
// 	unsigned int(1) general_tier_flag;
// 	unsigned int(5) general_profile_idc;
// 	unsigned int(32) general_profile_compatibility_flags;
// 	unsigned int(48) general_constraint_indicator_flags;
// 	unsigned int(8) general_level_idc;
// 	bit(4) reserved = ‘1111’b;
// 	unsigned int(12) min_spatial_segmentation_idc;
// 	bit(6) reserved = ‘111111’b;
// 	unsigned int(2) parallelismType;
// 	bit(6) reserved = ‘111111’b;
// 	unsigned int(2) chroma_format_idc;
// 	bit(5) reserved = ‘11111’b;
// 	unsigned int(3) bit_depth_luma_minus8;
// 	bit(5) reserved = ‘11111’b;
// 	unsigned int(3) bit_depth_chroma_minus8;
// 	bit(16) avgFrameRate;
// 	bit(2) constantFrameRate;
// 	bit(3) numTemporalLayers;
// 	bit(1) temporalIdNested;
// 	unsigned int(2) lengthSizeMinusOne;
// 	unsigned int(8) numOfArrays;
// 	...
// }

const hvccFixedLen = 23

type HEVCConfigurationBox struct {
	BoxHeader
	ConfigurationVersion             uint8
	GeneralProfileSpace              uint8
	GeneralTierFlag                  bool
	GeneralProfileIdc                uint8
	GeneralProfileCompatibilityFlags uint32 // as stored, not reversed
	GeneralConstraintIndicatorFlags  [6]byte
	GeneralLevelIdc                  uint8
	Record                           []byte
}

func DecodeHEVCConfigurationBox(c *util.Cursor) (hvcc *HEVCConfigurationBox, err error) {
	defer func() { err = classify(TypeHVCC, err) }()
	hvcc = &HEVCConfigurationBox{}
	if hvcc.BoxHeader, err = readHeader(c, TypeHVCC); err != nil {
		return nil, err
	}
	rest, err := c.SliceToEnd()
	if err != nil {
		return nil, err
	}
	hvcc.Record = rest.Bytes()
	var b []byte
	if b, err = rest.Read(hvccFixedLen); err != nil {
		return nil, err
	}
	bs := gocodec.NewBitStream(b)
	hvcc.ConfigurationVersion = bs.Uint8(8)
	hvcc.GeneralProfileSpace = bs.Uint8(2)
	hvcc.GeneralTierFlag = bs.GetBit() == 1
	hvcc.GeneralProfileIdc = bs.Uint8(5)
	hvcc.GeneralProfileCompatibilityFlags = bs.Uint32(32)
	copy(hvcc.GeneralConstraintIndicatorFlags[:], bs.GetBytes(6))
	hvcc.GeneralLevelIdc = bs.Uint8(8)
	// min_spatial_segmentation_idc through numOfArrays are not needed for the codec string
	return
}

var profileSpaces = [4]string{"", "A", "B", "C"}

// ProfileString builds the dot separated profile, compatibility, tier/level and constraint
// fields, e.g. 1.6000000.L93.90.
func (hvcc *HEVCConfigurationBox) ProfileString() string {
	tier := "L"
	if hvcc.GeneralTierFlag {
		tier = "H"
	}
	return strings.Join([]string{
		profileSpaces[hvcc.GeneralProfileSpace&3] + strconv.Itoa(int(hvcc.GeneralProfileIdc)),
		CompatibilityFlagsString(hvcc.GeneralProfileCompatibilityFlags),
		tier + strconv.Itoa(int(hvcc.GeneralLevelIdc)),
		ConstraintFlagsString(hvcc.GeneralConstraintIndicatorFlags),
	}, ".")
}

// CompatibilityFlagsString bit-reverses the 32 compatibility flags and renders them as
// little-endian hex without leading zeros. All-zero flags render as "".
func CompatibilityFlagsString(flags uint32) string {
	var b [4]byte
	reversed := bits.Reverse32(flags)
	for i := range b {
		b[i] = byte(reversed >> (8 * i))
	}
	return strings.TrimLeft(hex.EncodeToString(b[:]), "0")
}

// ConstraintFlagsString renders the constraint bytes up to the last non-zero one as hex
// without leading zeros.
func ConstraintFlagsString(flags [6]byte) string {
	b := bytes.TrimRight(flags[:], "\x00")
	return strings.TrimLeft(hex.EncodeToString(b), "0")
}

func (hvcc *HEVCConfigurationBox) CodecCtx() (codec.IVideoCodecCtx, error) {
	ctx, err := codec.NewH265Ctx(hvcc.Record)
	if err != nil {
		return nil, err
	}
	return ctx, nil
}
