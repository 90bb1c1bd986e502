package fmp4

// Description is everything a byte-range playlist needs to know about one fragmented file.
type Description struct {
	FileInfo           FileInfo           `json:"fileInfo" yaml:"fileInfo"`
	MediaInfo          MediaInfo          `json:"mediaInfo" yaml:"mediaInfo"`
	InitializationInfo InitializationInfo `json:"initializationInfo" yaml:"initializationInfo"`
	Tracks             []Track            `json:"tracks" yaml:"tracks"`
	Fragments          []Fragment         `json:"fragments" yaml:"fragments"`
	IFrames            []IFrame           `json:"iFrames" yaml:"iFrames"`
}

type FileInfo struct {
	MajorBrand       string   `json:"majorBrand" yaml:"majorBrand"`
	MinorVersion     uint32   `json:"minorVersion" yaml:"minorVersion"`
	CompatibleBrands []string `json:"compatibleBrands" yaml:"compatibleBrands"`
}

// InitializationInfo is the byte range of ftyp and moov.
type InitializationInfo struct {
	URI             string `json:"uri" yaml:"uri"`
	ByteRangeSize   uint64 `json:"byteRangeSize" yaml:"byteRangeSize"`
	ByteRangeOffset uint64 `json:"byteRangeOffset" yaml:"byteRangeOffset"`
}

type Track struct {
	TrackID           uint32 `json:"trackID" yaml:"trackID"`
	Timescale         uint32 `json:"timescale" yaml:"timescale"`
	Duration          uint32 `json:"duration" yaml:"duration"`
	ContainsEditLists bool   `json:"containsEditLists" yaml:"containsEditLists"`
}

type Fragment struct {
	SequenceNumber  uint32 `json:"sequenceNumber" yaml:"sequenceNumber"`
	Duration        uint64 `json:"duration" yaml:"duration"`
	Timescale       uint32 `json:"timescale" yaml:"timescale"`
	ByteRangeSize   uint64 `json:"byteRangeSize" yaml:"byteRangeSize"`
	ByteRangeOffset uint64 `json:"byteRangeOffset" yaml:"byteRangeOffset"`
	URI             string `json:"uri" yaml:"uri"`
}

func (f Fragment) DurationInSeconds() float64 {
	return float64(f.Duration) / float64(f.Timescale)
}

// IFrame is the byte range of one sync sample, lasting until the next one.
type IFrame struct {
	Duration        uint64 `json:"duration" yaml:"duration"`
	Timescale       uint32 `json:"timescale" yaml:"timescale"`
	ByteRangeSize   uint64 `json:"byteRangeSize" yaml:"byteRangeSize"`
	ByteRangeOffset uint64 `json:"byteRangeOffset" yaml:"byteRangeOffset"`
}

func (i IFrame) DurationInSeconds() float64 {
	return float64(i.Duration) / float64(i.Timescale)
}

type Resolution struct {
	Width  uint32 `json:"width" yaml:"width"`
	Height uint32 `json:"height" yaml:"height"`
}

type MediaInfo struct {
	PeakBitRate          uint64     `json:"peakBitRate" yaml:"peakBitRate"`
	AverageBitRate       uint64     `json:"averageBitRate" yaml:"averageBitRate"`
	IFramePeakBitRate    uint64     `json:"iFramePeakBitRate" yaml:"iFramePeakBitRate"`
	IFrameAverageBitRate uint64     `json:"iFrameAverageBitRate" yaml:"iFrameAverageBitRate"`
	AudioCodec           string     `json:"audioCodec" yaml:"audioCodec"`
	VideoCodec           string     `json:"videoCodec" yaml:"videoCodec"`
	Resolution           Resolution `json:"resolution" yaml:"resolution"`
	PeakFrameRate        float64    `json:"peakFrameRate" yaml:"peakFrameRate"`
}

// CodecDetails are read from the codec configuration records; zero when unavailable.
type CodecDetails struct {
	AudioObjectType int `json:"audioObjectType,omitempty" yaml:"audioObjectType,omitempty"`
	AudioSampleRate int `json:"audioSampleRate,omitempty" yaml:"audioSampleRate,omitempty"`
	AudioChannels   int `json:"audioChannels,omitempty" yaml:"audioChannels,omitempty"`
	CodedWidth      int `json:"codedWidth,omitempty" yaml:"codedWidth,omitempty"`
	CodedHeight     int `json:"codedHeight,omitempty" yaml:"codedHeight,omitempty"`
}
