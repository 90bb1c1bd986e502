package fmp4

import (
	"fmt"
	"io"
	"log/slog"

	"m7s.live/fmp4info/pkg"
	"m7s.live/fmp4info/pkg/box"
	"m7s.live/fmp4info/pkg/util"
)

// MediaFileBox holds the top-level boxes of a file. Fragments[i] pairs with MediaData[i]
// by position; well-formed fragmented files interleave them moof, mdat, moof, mdat.
type MediaFileBox struct {
	FileType  *box.FileTypeBox
	Movie     *box.MovieBox
	Fragments []*box.MovieFragmentBox
	MediaData []*box.MediaDataBox
}

// ReadMediaFileBox reads the top-level boxes of r, which holds size bytes. Media data
// payloads are seeked over, never read.
func ReadMediaFileBox(r io.ReadSeeker, size int64, logger *slog.Logger) (file *MediaFileBox, err error) {
	file = &MediaFileBox{}
	var header [box.ExtendedBoxLen]byte
	for offset := int64(0); offset < size; {
		n := box.BasicBoxLen
		if _, err = io.ReadFull(r, header[:n]); err != nil {
			return nil, fmt.Errorf("%w: box header at %d: %w", pkg.ErrParsing, offset, err)
		}
		if util.ReadBE[uint32](header[:4]) == 1 {
			if _, err = io.ReadFull(r, header[n:box.ExtendedBoxLen]); err != nil {
				return nil, fmt.Errorf("%w: extended size at %d: %w", pkg.ErrParsing, offset, err)
			}
			n = box.ExtendedBoxLen
		}
		h, _ := box.ReadBoxHeader(util.NewCursor(header[:n]))
		toEnd := h.Size == 0
		if toEnd {
			h.Size = uint64(size - offset)
		}
		if h.Size < uint64(n) || h.Size > uint64(size-offset) {
			return nil, fmt.Errorf("%w: %s box at %d has size %d, file has %d bytes left", pkg.ErrParsing, h.Type, offset, h.Size, size-offset)
		}
		remaining := int64(h.Size) - int64(n)
		logger.Debug("box", "type", h.Type.String(), "offset", offset, "size", h.Size)
		switch h.Type {
		case box.TypeFTYP, box.TypeMOOV, box.TypeMOOF:
			buf := make([]byte, h.Size)
			copy(buf, header[:n])
			if toEnd {
				util.PutBE(buf[:4], uint32(h.Size))
			}
			if _, err = io.ReadFull(r, buf[n:]); err != nil {
				return nil, fmt.Errorf("%w: %s box at %d: %w", pkg.ErrParsing, h.Type, offset, err)
			}
			var b box.Box
			if b, err = box.DecodeBox(util.NewCursor(buf)); err != nil {
				return nil, err
			}
			switch b := b.(type) {
			case *box.FileTypeBox:
				if file.FileType == nil {
					file.FileType = b
				}
			case *box.MovieBox:
				if file.Movie == nil {
					file.Movie = b
				}
			case *box.MovieFragmentBox:
				file.Fragments = append(file.Fragments, b)
			}
		case box.TypeMDAT:
			file.MediaData = append(file.MediaData, &box.MediaDataBox{BoxHeader: h})
			fallthrough
		default:
			if _, err = r.Seek(remaining, io.SeekCurrent); err != nil {
				return nil, err
			}
		}
		offset += int64(h.Size)
	}
	return
}
