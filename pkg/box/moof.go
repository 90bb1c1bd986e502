package box

import (
	"m7s.live/fmp4info/pkg/util"
)

type MovieFragmentBox struct {
	BoxHeader
	FragmentHeader *MovieFragmentHeaderBox
	TrackFragments []*TrackFragmentBox
}

func DecodeMovieFragmentBox(c *util.Cursor) (moof *MovieFragmentBox, err error) {
	moof = &MovieFragmentBox{}
	if moof.BoxHeader, err = readHeader(c, TypeMOOF); err != nil {
		return nil, err
	}
	err = walk(c, TypeMOOF, children{
		TypeMFHD: func(c *util.Cursor) (err error) {
			moof.FragmentHeader, err = DecodeMovieFragmentHeaderBox(c)
			return
		},
		TypeTRAF: func(c *util.Cursor) error {
			traf, err := DecodeTrackFragmentBox(c)
			if err == nil {
				moof.TrackFragments = append(moof.TrackFragments, traf)
			}
			return err
		},
	})
	if err == nil {
		err = require(TypeMOOF, TypeMFHD, moof.FragmentHeader != nil)
	}
	if err != nil {
		return nil, err
	}
	return
}

// TrackFragment returns the first track fragment of trackID.
func (moof *MovieFragmentBox) TrackFragment(trackID uint32) *TrackFragmentBox {
	for _, traf := range moof.TrackFragments {
		if traf.FragmentHeader.Track_ID == trackID {
			return traf
		}
	}
	return nil
}

// aligned(8) class MovieFragmentHeaderBox extends FullBox(‘mfhd’, 0, 0){
// 	unsigned int(32) sequence_number;
// }

type MovieFragmentHeaderBox struct {
	BoxHeader
	FullBox
	SequenceNumber uint32
}

func DecodeMovieFragmentHeaderBox(c *util.Cursor) (mfhd *MovieFragmentHeaderBox, err error) {
	defer func() { err = classify(TypeMFHD, err) }()
	mfhd = &MovieFragmentHeaderBox{}
	if mfhd.BoxHeader, err = readHeader(c, TypeMFHD); err != nil {
		return nil, err
	}
	if mfhd.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	if mfhd.SequenceNumber, err = c.ReadUint32(); err != nil {
		return nil, err
	}
	return
}

type TrackFragmentBox struct {
	BoxHeader
	FragmentHeader *TrackFragmentHeaderBox
	Runs           []*TrackRunBox
}

func DecodeTrackFragmentBox(c *util.Cursor) (traf *TrackFragmentBox, err error) {
	traf = &TrackFragmentBox{}
	if traf.BoxHeader, err = readHeader(c, TypeTRAF); err != nil {
		return nil, err
	}
	err = walk(c, TypeTRAF, children{
		TypeTFHD: func(c *util.Cursor) (err error) {
			traf.FragmentHeader, err = DecodeTrackFragmentHeaderBox(c)
			return
		},
		TypeTRUN: func(c *util.Cursor) error {
			trun, err := DecodeTrackRunBox(c)
			if err == nil {
				traf.Runs = append(traf.Runs, trun)
			}
			return err
		},
	})
	if err == nil {
		err = require(TypeTRAF, TypeTFHD, traf.FragmentHeader != nil)
	}
	if err != nil {
		return nil, err
	}
	return
}

// MediaDataBox only records the header; the payload is never read.
type MediaDataBox struct {
	BoxHeader
}
