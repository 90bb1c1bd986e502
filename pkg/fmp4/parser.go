package fmp4

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"m7s.live/fmp4info/pkg"
)

// Parser describes fragmented MP4 files. It holds no state between calls, so one Parser
// may serve concurrent Parse calls.
type Parser struct {
	*slog.Logger
}

func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{Logger: logger}
}

// ReadFile reads the box forest of the file at path.
func (p *Parser) ReadFile(path string) (*MediaFileBox, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", pkg.ErrNonexistentFile, path)
		}
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadMediaFileBox(f, info.Size(), p.With("file", filepath.Base(path)))
}

func (p *Parser) Parse(path string) (*Description, error) {
	desc, _, err := p.parse(path, false)
	return desc, err
}

// ParseDetailed also decodes the codec configuration records. Records that cannot be
// decoded leave their details zero.
func (p *Parser) ParseDetailed(path string) (*Description, *CodecDetails, error) {
	return p.parse(path, true)
}

func (p *Parser) parse(path string, detailed bool) (desc *Description, details *CodecDetails, err error) {
	file, err := p.ReadFile(path)
	if err != nil {
		return
	}
	d, err := newDerivation(file, filepath.Base(path))
	if err != nil {
		return
	}
	desc = &Description{
		FileInfo:           d.fileInfo(),
		InitializationInfo: d.initializationInfo(),
		Tracks:             d.trackList(),
	}
	if desc.Fragments, err = d.fragments(); err != nil {
		return nil, nil, err
	}
	if desc.IFrames, err = d.iFrames(); err != nil {
		return nil, nil, err
	}
	peakFrameRate, err := d.peakFrameRate()
	if err != nil {
		return nil, nil, err
	}
	desc.MediaInfo = d.mediaInfo(desc.Fragments, desc.IFrames, peakFrameRate)
	p.Info("parsed", "file", d.uri, "fragments", len(desc.Fragments), "iframes", len(desc.IFrames),
		"video", desc.MediaInfo.VideoCodec, "audio", desc.MediaInfo.AudioCodec)
	if detailed {
		var errs []error
		details = new(CodecDetails)
		if *details, errs = d.codecDetails(); len(errs) > 0 {
			p.Warn("codec details incomplete", "file", d.uri, "error", errors.Join(errs...))
		}
	}
	return
}
