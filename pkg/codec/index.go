package codec

type ICodecCtx interface {
	FourCC() FourCC
	GetInfo() string
	GetRecord() []byte
}

type IAudioCodecCtx interface {
	ICodecCtx
	GetSampleRate() int
	GetChannels() int
}

type IVideoCodecCtx interface {
	ICodecCtx
	Width() int
	Height() int
}
