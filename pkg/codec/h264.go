package codec

import (
	"fmt"

	"github.com/deepch/vdk/codec/h264parser"
)

type (
	H264Ctx struct {
		h264parser.CodecData
	}
)

// NewH264Ctx decodes an AVCDecoderConfigurationRecord. It fails when the record carries no
// SPS or PPS.
func NewH264Ctx(record []byte) (*H264Ctx, error) {
	data, err := h264parser.NewCodecDataFromAVCDecoderConfRecord(record)
	if err != nil {
		return nil, err
	}
	return &H264Ctx{data}, nil
}

func (*H264Ctx) FourCC() FourCC {
	return FourCC_H264
}

func (ctx *H264Ctx) GetInfo() string {
	return fmt.Sprintf("fps: %d, resolution: %s", ctx.FPS(), ctx.Resolution())
}

func (ctx *H264Ctx) GetRecord() []byte {
	return ctx.Record
}
