package box

import (
	"m7s.live/fmp4info/pkg/util"
)

type MovieBox struct {
	BoxHeader
	MovieHeader *MovieHeaderBox
	Tracks      []*TrackBox
}

func DecodeMovieBox(c *util.Cursor) (moov *MovieBox, err error) {
	moov = &MovieBox{}
	if moov.BoxHeader, err = readHeader(c, TypeMOOV); err != nil {
		return nil, err
	}
	err = walk(c, TypeMOOV, children{
		TypeMVHD: func(c *util.Cursor) (err error) {
			moov.MovieHeader, err = DecodeMovieHeaderBox(c)
			return
		},
		TypeTRAK: func(c *util.Cursor) error {
			trak, err := DecodeTrackBox(c)
			if err == nil {
				moov.Tracks = append(moov.Tracks, trak)
			}
			return err
		},
	})
	if err != nil {
		return nil, err
	}
	return
}

// FirstTrack returns the first track whose media handler is handlerType.
func (moov *MovieBox) FirstTrack(handlerType BoxType) *TrackBox {
	for _, trak := range moov.Tracks {
		if trak.HandlerType() == handlerType {
			return trak
		}
	}
	return nil
}

type TrackBox struct {
	BoxHeader
	TrackHeader *TrackHeaderBox
	Media       *MediaBox
}

func DecodeTrackBox(c *util.Cursor) (trak *TrackBox, err error) {
	trak = &TrackBox{}
	if trak.BoxHeader, err = readHeader(c, TypeTRAK); err != nil {
		return nil, err
	}
	err = walk(c, TypeTRAK, children{
		TypeTKHD: func(c *util.Cursor) (err error) {
			trak.TrackHeader, err = DecodeTrackHeaderBox(c)
			return
		},
		TypeMDIA: func(c *util.Cursor) (err error) {
			trak.Media, err = DecodeMediaBox(c)
			return
		},
	})
	if err == nil {
		err = require(TypeTRAK, TypeTKHD, trak.TrackHeader != nil)
	}
	if err == nil {
		err = require(TypeTRAK, TypeMDIA, trak.Media != nil)
	}
	if err != nil {
		return nil, err
	}
	return
}

func (trak *TrackBox) HandlerType() BoxType {
	return trak.Media.Handler.HandlerType
}

func (trak *TrackBox) SampleDescription() *SampleDescriptionBox {
	return trak.Media.MediaInformation.SampleTable.SampleDescription
}

type MediaBox struct {
	BoxHeader
	MediaHeader      *MediaHeaderBox
	Handler          *HandlerBox
	MediaInformation *MediaInformationBox
}

// DecodeMediaBox decodes minf after the walk, since its sample entries depend on the handler.
func DecodeMediaBox(c *util.Cursor) (mdia *MediaBox, err error) {
	mdia = &MediaBox{}
	if mdia.BoxHeader, err = readHeader(c, TypeMDIA); err != nil {
		return nil, err
	}
	var minf *util.Cursor
	err = walk(c, TypeMDIA, children{
		TypeMDHD: func(c *util.Cursor) (err error) {
			mdia.MediaHeader, err = DecodeMediaHeaderBox(c)
			return
		},
		TypeHDLR: func(c *util.Cursor) (err error) {
			mdia.Handler, err = DecodeHandlerBox(c)
			return
		},
		TypeMINF: func(c *util.Cursor) error {
			minf = c
			return nil
		},
	})
	if err == nil {
		err = require(TypeMDIA, TypeMDHD, mdia.MediaHeader != nil)
	}
	if err == nil {
		err = require(TypeMDIA, TypeHDLR, mdia.Handler != nil)
	}
	if err == nil {
		err = require(TypeMDIA, TypeMINF, minf != nil)
	}
	if err != nil {
		return nil, err
	}
	if mdia.MediaInformation, err = DecodeMediaInformationBox(minf, mdia.Handler.HandlerType); err != nil {
		return nil, err
	}
	return
}

type MediaInformationBox struct {
	BoxHeader
	SampleTable *SampleTableBox
}

func DecodeMediaInformationBox(c *util.Cursor, handlerType BoxType) (minf *MediaInformationBox, err error) {
	minf = &MediaInformationBox{}
	if minf.BoxHeader, err = readHeader(c, TypeMINF); err != nil {
		return nil, err
	}
	err = walk(c, TypeMINF, children{
		TypeSTBL: func(c *util.Cursor) (err error) {
			minf.SampleTable, err = DecodeSampleTableBox(c, handlerType)
			return
		},
	})
	if err == nil {
		err = require(TypeMINF, TypeSTBL, minf.SampleTable != nil)
	}
	if err != nil {
		return nil, err
	}
	return
}

type SampleTableBox struct {
	BoxHeader
	SampleDescription *SampleDescriptionBox
}

func DecodeSampleTableBox(c *util.Cursor, handlerType BoxType) (stbl *SampleTableBox, err error) {
	stbl = &SampleTableBox{}
	if stbl.BoxHeader, err = readHeader(c, TypeSTBL); err != nil {
		return nil, err
	}
	err = walk(c, TypeSTBL, children{
		TypeSTSD: func(c *util.Cursor) (err error) {
			stbl.SampleDescription, err = DecodeSampleDescriptionBox(c, handlerType)
			return
		},
	})
	if err == nil {
		err = require(TypeSTBL, TypeSTSD, stbl.SampleDescription != nil)
	}
	if err != nil {
		return nil, err
	}
	return
}
