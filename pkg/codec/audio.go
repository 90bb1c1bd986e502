package codec

import (
	"fmt"

	"github.com/deepch/vdk/codec/aacparser"
)

type (
	AACCtx struct {
		aacparser.CodecData
	}
)

// NewAACCtx decodes an AudioSpecificConfig.
func NewAACCtx(config []byte) (*AACCtx, error) {
	data, err := aacparser.NewCodecDataFromMPEG4AudioConfigBytes(config)
	if err != nil {
		return nil, err
	}
	return &AACCtx{data}, nil
}

func (ctx *AACCtx) GetChannels() int {
	return ctx.ChannelLayout().Count()
}

func (ctx *AACCtx) GetSampleRate() int {
	return ctx.SampleRate()
}

func (ctx *AACCtx) GetObjectType() int {
	return int(ctx.Config.ObjectType)
}

func (ctx *AACCtx) GetRecord() []byte {
	return ctx.ConfigBytes
}

func (ctx *AACCtx) GetInfo() string {
	return fmt.Sprintf("sample rate: %d, channels: %d, object type: %d", ctx.SampleRate(), ctx.GetChannels(), ctx.Config.ObjectType)
}

func (*AACCtx) FourCC() FourCC {
	return FourCC_MP4A
}
