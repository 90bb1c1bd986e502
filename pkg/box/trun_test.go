package box

import (
	"errors"
	"testing"

	"m7s.live/fmp4info/pkg"
	"m7s.live/fmp4info/pkg/util"
)

func TestTrackFragmentHeaderFields(t *testing.T) {
	t.Run(t.Name(), func(t *testing.T) {
		flags := TF_FLAG_BASE_DATA_OFFSET | TF_FLAG_DEFAULT_SAMPLE_DURATION_PRESENT | TF_FLAG_DEFAULT_SAMPLE_FLAGS_PRESENT | TF_FLAG_DURATION_IS_EMPTY
		tfhd, err := DecodeTrackFragmentHeaderBox(util.NewCursor(mkfull("tfhd", 0, flags, be32(1), be64(4096), be32(1024), be32(0x01010000))))
		if err != nil {
			t.Fatal(err)
		}
		if tfhd.Track_ID != 1 || tfhd.BaseDataOffset != 4096 || tfhd.DefaultSampleFlags != 0x01010000 || !tfhd.DurationIsEmpty {
			t.Errorf("tfhd = %+v", tfhd)
		}
		if d, ok := tfhd.DefaultDuration(); !ok || d != 1024 {
			t.Errorf("default duration = %d, %v", d, ok)
		}
		if _, ok := tfhd.DefaultSize(); ok {
			t.Error("default size reported without its flag")
		}
	})
}

func TestTrackRunFields(t *testing.T) {
	t.Run(t.Name(), func(t *testing.T) {
		flags := TR_FLAG_DATA_OFFSET | TR_FLAG_DATA_SAMPLE_DURATION | TR_FLAG_DATA_SAMPLE_SIZE | TR_FLAG_DATA_SAMPLE_COMPOSITION_TIME
		trun, err := DecodeTrackRunBox(util.NewCursor(mkfull("trun", 0, flags, be32(2), be32(0xfffffff0),
			be32(1000), be32(300), be32(2000),
			be32(1001), be32(200), be32(0),
		)))
		if err != nil {
			t.Fatal(err)
		}
		if trun.DataOffset != -16 || len(trun.EntryList) != 2 {
			t.Fatalf("trun = %+v", trun)
		}
		if e := trun.EntryList[1]; e.SampleDuration != 1001 || e.SampleSize != 200 || e.SampleCompositionTimeOffset != 0 {
			t.Errorf("entry 1 = %+v", e)
		}
		if d, err := trun.Duration(0, false); err != nil || d != 2001 {
			t.Errorf("duration = %d, %v", d, err)
		}
		_, err = DecodeTrackRunBox(util.NewCursor(mkfull("trun", 0, TR_FLAG_DATA_SAMPLE_SIZE, be32(1000), be32(1))))
		if !errors.Is(err, pkg.ErrParsing) {
			t.Errorf("oversized sample count: %v", err)
		}
	})
}

func TestTrackRunDefaultDuration(t *testing.T) {
	t.Run(t.Name(), func(t *testing.T) {
		trun, err := DecodeTrackRunBox(util.NewCursor(mkfull("trun", 0, 0, be32(126))))
		if err != nil {
			t.Fatal(err)
		}
		if d, err := trun.Duration(1024, true); err != nil || d != 129024 {
			t.Errorf("duration = %d, %v", d, err)
		}
		if _, err = trun.Duration(0, false); !errors.Is(err, pkg.ErrParsing) {
			t.Errorf("missing default: %v", err)
		}
	})
}

func TestSyncSamples(t *testing.T) {
	t.Run("sample flags", func(t *testing.T) {
		trun, err := DecodeTrackRunBox(util.NewCursor(mkfull("trun", 0, TR_FLAG_DATA_SAMPLE_FLAGS, be32(4),
			be32(0x00000000), be32(0x01010000), be32(0x02000000), be32(0x00000000))))
		if err != nil {
			t.Fatal(err)
		}
		want := []bool{true, false, true, false}
		for i, w := range want {
			if got := trun.IsSync(i); got != w {
				t.Errorf("sample %d sync = %v, want %v", i, got, w)
			}
		}
	})
	t.Run("first sample flags", func(t *testing.T) {
		trun, err := DecodeTrackRunBox(util.NewCursor(mkfull("trun", 0, TR_FLAG_DATA_FIRST_SAMPLE_FLAGS|TR_FLAG_DATA_SAMPLE_FLAGS, be32(2), be32(0x01010000),
			be32(0x00000000), be32(0x02000000))))
		if err != nil {
			t.Fatal(err)
		}
		if trun.IsSync(0) {
			t.Error("first_sample_flags should override a zero sample flag")
		}
		if !trun.IsSync(1) {
			t.Error("sample 1 should be sync")
		}
	})
	t.Run("no flags", func(t *testing.T) {
		trun, err := DecodeTrackRunBox(util.NewCursor(mkfull("trun", 0, TR_FLAG_DATA_FIRST_SAMPLE_FLAGS, be32(3), be32(MOV_FRAG_SAMPLE_FLAG_DEPENDS_NO))))
		if err != nil {
			t.Fatal(err)
		}
		if !trun.IsSync(0) || trun.IsSync(1) || trun.IsSync(2) {
			t.Error("only the first sample should be sync")
		}
	})
}

func TestMovieFragmentBox(t *testing.T) {
	t.Run(t.Name(), func(t *testing.T) {
		traf := func(id uint32) []byte {
			return mkbox("traf", mkfull("tfhd", 0, 0, be32(id)), mkfull("tfdt", 0, 0, be32(0)), mkfull("trun", 0, 0, be32(1)))
		}
		moofBytes := mkbox("moof", mkfull("mfhd", 0, 0, be32(3)), traf(2), traf(1))
		c := util.NewCursor(moofBytes)
		moof, err := DecodeMovieFragmentBox(c)
		if err != nil {
			t.Fatal(err)
		}
		if c.Remaining() != 0 {
			t.Errorf("%d bytes left in moof", c.Remaining())
		}
		if moof.FragmentHeader.SequenceNumber != 3 || len(moof.TrackFragments) != 2 {
			t.Errorf("moof = %+v", moof)
		}
		if traf := moof.TrackFragment(1); traf == nil || len(traf.Runs) != 1 {
			t.Errorf("track fragment 1 = %+v", traf)
		}
		if moof.TrackFragment(9) != nil {
			t.Error("unexpected track fragment 9")
		}
		_, err = DecodeMovieFragmentBox(util.NewCursor(mkbox("moof", traf(1))))
		var missing *MissingChildError
		if !errors.As(err, &missing) || missing.Child != TypeMFHD {
			t.Errorf("missing mfhd: %v", err)
		}
	})
}
