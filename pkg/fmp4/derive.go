package fmp4

import (
	"fmt"
	"math"

	"m7s.live/fmp4info/pkg"
	"m7s.live/fmp4info/pkg/box"
)

// AbsentProfile stands in for the profile of a video sample entry without avcC or hvcC.
const AbsentProfile = "nil"

type derivation struct {
	file   *MediaFileBox
	uri    string
	video  *box.TrackBox
	audio  *box.TrackBox
	tracks map[uint32]*box.TrackBox
}

func newDerivation(file *MediaFileBox, uri string) (*derivation, error) {
	if file.FileType == nil {
		return nil, fmt.Errorf("%w: no ftyp box", pkg.ErrParsing)
	}
	if file.Movie == nil {
		return nil, fmt.Errorf("%w: no moov box", pkg.ErrParsing)
	}
	if len(file.Fragments) == 0 {
		return nil, pkg.ErrFileNotFragmented
	}
	d := &derivation{
		file:   file,
		uri:    uri,
		video:  file.Movie.FirstTrack(box.HandlerVideo),
		audio:  file.Movie.FirstTrack(box.HandlerAudio),
		tracks: make(map[uint32]*box.TrackBox, len(file.Movie.Tracks)),
	}
	if d.video == nil {
		return nil, fmt.Errorf("%w: no video track", pkg.ErrParsing)
	}
	if d.audio == nil {
		return nil, fmt.Errorf("%w: no audio track", pkg.ErrParsing)
	}
	for _, trak := range file.Movie.Tracks {
		d.tracks[trak.TrackHeader.Track_ID] = trak
	}
	return d, nil
}

func (d *derivation) fileInfo() FileInfo {
	ftyp := d.file.FileType
	return FileInfo{
		MajorBrand:       ftyp.MajorBrand,
		MinorVersion:     ftyp.MinorVersion,
		CompatibleBrands: append([]string(nil), ftyp.CompatibleBrands...),
	}
}

func (d *derivation) initializationInfo() InitializationInfo {
	return InitializationInfo{
		URI:           d.uri,
		ByteRangeSize: d.initializationSize(),
	}
}

func (d *derivation) initializationSize() uint64 {
	return d.file.FileType.Size + d.file.Movie.Size
}

func (d *derivation) trackList() []Track {
	tracks := make([]Track, 0, len(d.file.Movie.Tracks))
	for _, trak := range d.file.Movie.Tracks {
		mdhd := trak.Media.MediaHeader
		tracks = append(tracks, Track{
			TrackID:   trak.TrackHeader.Track_ID,
			Timescale: mdhd.Timescale,
			Duration:  mdhd.Duration,
		})
	}
	return tracks
}

// videoFragment finds the video track fragment of the i-th moof and the timescale of its track.
func (d *derivation) videoFragment(i int) (*box.TrackFragmentBox, uint32, error) {
	videoID := d.video.TrackHeader.Track_ID
	traf := d.file.Fragments[i].TrackFragment(videoID)
	if traf == nil {
		return nil, 0, fmt.Errorf("%w: fragment %d has no traf for track %d", pkg.ErrParsing, i, videoID)
	}
	trak, ok := d.tracks[traf.FragmentHeader.Track_ID]
	if !ok {
		return nil, 0, fmt.Errorf("%w: no trak for track %d", pkg.ErrParsing, traf.FragmentHeader.Track_ID)
	}
	return traf, trak.Media.MediaHeader.Timescale, nil
}

func (d *derivation) mediaData(i int) (*box.MediaDataBox, error) {
	if i >= len(d.file.MediaData) {
		return nil, fmt.Errorf("%w: fragment %d has no mdat", pkg.ErrParsing, i)
	}
	return d.file.MediaData[i], nil
}

func (d *derivation) fragments() ([]Fragment, error) {
	fragments := make([]Fragment, 0, len(d.file.Fragments))
	offset := d.initializationSize()
	for i, moof := range d.file.Fragments {
		traf, timescale, err := d.videoFragment(i)
		if err != nil {
			return nil, err
		}
		mdat, err := d.mediaData(i)
		if err != nil {
			return nil, err
		}
		defaultDuration, hasDefault := traf.FragmentHeader.DefaultDuration()
		var duration uint64
		for _, trun := range traf.Runs {
			runDuration, err := trun.Duration(defaultDuration, hasDefault)
			if err != nil {
				return nil, fmt.Errorf("fragment %d: %w", moof.FragmentHeader.SequenceNumber, err)
			}
			duration += runDuration
		}
		fragment := Fragment{
			SequenceNumber:  moof.FragmentHeader.SequenceNumber,
			Duration:        duration,
			Timescale:       timescale,
			ByteRangeSize:   mdat.Size + moof.Size,
			ByteRangeOffset: offset,
			URI:             d.uri,
		}
		fragments = append(fragments, fragment)
		offset += fragment.ByteRangeSize
	}
	return fragments, nil
}

// iFrames finds the sync samples of the video track. Each one is addressed by the byte range
// from the start of its fragment through the end of the sample, and lasts until the next one.
func (d *derivation) iFrames() ([]IFrame, error) {
	var (
		iFrames    []IFrame
		open       *IFrame
		openTime   uint64
		timeOffset uint64
		offset     = d.initializationSize()
	)
	for i, moof := range d.file.Fragments {
		traf, timescale, err := d.videoFragment(i)
		if err != nil {
			return nil, err
		}
		mdat, err := d.mediaData(i)
		if err != nil {
			return nil, err
		}
		tfhd := traf.FragmentHeader
		defaultDuration, hasDefaultDuration := tfhd.DefaultDuration()
		defaultSize, hasDefaultSize := tfhd.DefaultSize()
		for _, trun := range traf.Runs {
			for s := range int(trun.SampleCount) {
				if trun.IsSync(s) {
					size := defaultSize
					if trun.SampleSizePresent() {
						size = trun.EntryList[s].SampleSize
					} else if !hasDefaultSize {
						return nil, fmt.Errorf("%w: fragment %d: no sample size for sync sample", pkg.ErrParsing, moof.FragmentHeader.SequenceNumber)
					}
					rangeSize := int64(size) + int64(trun.DataOffset)
					if rangeSize < 0 {
						return nil, fmt.Errorf("%w: fragment %d: negative sync sample range", pkg.ErrParsing, moof.FragmentHeader.SequenceNumber)
					}
					if open != nil {
						open.Duration = timeOffset - openTime
						iFrames = append(iFrames, *open)
					}
					open = &IFrame{
						Timescale:       timescale,
						ByteRangeSize:   uint64(rangeSize),
						ByteRangeOffset: offset,
					}
					openTime = timeOffset
				}
				switch {
				case trun.SampleDurationPresent():
					timeOffset += uint64(trun.EntryList[s].SampleDuration)
				case hasDefaultDuration:
					timeOffset += uint64(defaultDuration)
				default:
					return nil, fmt.Errorf("%w: fragment %d: no sample duration", pkg.ErrParsing, moof.FragmentHeader.SequenceNumber)
				}
			}
		}
		offset += mdat.Size + moof.Size
	}
	if open != nil {
		open.Duration = timeOffset - openTime
		iFrames = append(iFrames, *open)
	}
	return iFrames, nil
}

// peakFrameRate is the highest sample rate of any video run, rounded to 5 decimals.
func (d *derivation) peakFrameRate() (float64, error) {
	var peak float64
	for i, moof := range d.file.Fragments {
		traf, timescale, err := d.videoFragment(i)
		if err != nil {
			return 0, err
		}
		defaultDuration, hasDefault := traf.FragmentHeader.DefaultDuration()
		for _, trun := range traf.Runs {
			runDuration, err := trun.Duration(defaultDuration, hasDefault)
			if err != nil {
				return 0, fmt.Errorf("fragment %d: %w", moof.FragmentHeader.SequenceNumber, err)
			}
			if runDuration == 0 || timescale == 0 {
				continue
			}
			if frameRate := float64(trun.SampleCount) / (float64(runDuration) / float64(timescale)); frameRate > peak {
				peak = frameRate
			}
		}
	}
	return math.Round(100_000*peak) / 100_000, nil
}

func (d *derivation) audioCodec() string {
	if entry := d.audio.SampleDescription().Audio; entry != nil {
		return entry.Codec()
	}
	return ""
}

func (d *derivation) videoCodec() string {
	entry := d.video.SampleDescription().Visual
	if entry == nil {
		return ""
	}
	codec, ok := entry.Codec()
	if !ok {
		codec += "." + AbsentProfile
	}
	return codec
}

func (d *derivation) mediaInfo(fragments []Fragment, iFrames []IFrame, peakFrameRate float64) (info MediaInfo) {
	var totalSize, totalSeconds, peak float64
	for _, fragment := range fragments {
		seconds := fragment.DurationInSeconds()
		totalSize += float64(fragment.ByteRangeSize)
		totalSeconds += seconds
		if seconds > 0 {
			peak = max(peak, 8.0*(float64(fragment.ByteRangeSize)/seconds))
		}
	}
	var iFrameTotalSize, iFramePeak float64
	for _, iFrame := range iFrames {
		seconds := iFrame.DurationInSeconds()
		iFrameTotalSize += float64(iFrame.ByteRangeSize)
		if seconds > 0 {
			iFramePeak = max(iFramePeak, 8.0*(float64(iFrame.ByteRangeSize)/seconds))
		}
	}
	info.PeakBitRate = uint64(peak)
	info.IFramePeakBitRate = uint64(iFramePeak)
	// both averages are taken over the total fragment duration
	if totalSeconds > 0 {
		info.AverageBitRate = uint64(8.0 * (totalSize / totalSeconds))
		info.IFrameAverageBitRate = uint64(8.0 * (iFrameTotalSize / totalSeconds))
	}
	info.AudioCodec = d.audioCodec()
	info.VideoCodec = d.videoCodec()
	info.Resolution.Width, info.Resolution.Height = d.video.TrackHeader.Resolution()
	info.PeakFrameRate = peakFrameRate
	return
}

// codecDetails reads sample rate, channels and coded size from the configuration records.
func (d *derivation) codecDetails() (details CodecDetails, errs []error) {
	if entry := d.audio.SampleDescription().Audio; entry != nil && entry.ESDescriptor != nil {
		if dc := entry.ESDescriptor.DecoderConfig(); dc != nil && dc.SpecificInfo != nil {
			if ctx, err := dc.SpecificInfo.CodecCtx(); err != nil {
				errs = append(errs, fmt.Errorf("audio specific config: %w", err))
			} else {
				details.AudioObjectType = ctx.GetObjectType()
				details.AudioSampleRate = ctx.GetSampleRate()
				details.AudioChannels = ctx.GetChannels()
			}
		}
	}
	if entry := d.video.SampleDescription().Visual; entry != nil && entry.Config != nil {
		if ctx, err := entry.Config.CodecCtx(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", entry.Config.Header().Type, err))
		} else {
			details.CodedWidth, details.CodedHeight = ctx.Width(), ctx.Height()
		}
	}
	return
}
