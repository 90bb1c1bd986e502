package fmp4

import (
	"os"
	"path/filepath"
	"testing"

	"m7s.live/fmp4info/pkg/util"
)

func be16(v uint16) []byte { return util.PutBE(make([]byte, 2), v) }
func be32(v uint32) []byte { return util.PutBE(make([]byte, 4), v) }
func be64(v uint64) []byte { return util.PutBE(make([]byte, 8), v) }

func cat(parts ...[]byte) (out []byte) {
	for _, p := range parts {
		out = append(out, p...)
	}
	return
}

func mkbox(typ string, payload ...[]byte) []byte {
	body := cat(payload...)
	return cat(be32(uint32(8+len(body))), []byte(typ), body)
}

func mkfull(typ string, version uint8, flags uint32, payload ...[]byte) []byte {
	return mkbox(typ, append([]byte{version}, util.PutBE(make([]byte, 3), flags)...), cat(payload...))
}

// mkmdat returns a media data box of exactly size bytes.
func mkmdat(size int) []byte {
	return cat(be32(uint32(size)), []byte("mdat"), make([]byte, size-8))
}

type fixtureTrack struct {
	id        uint32
	handler   string
	timescale uint32
	width     uint32
	height    uint32
	entry     []byte
}

func (ft fixtureTrack) trak() []byte {
	tkhd := make([]byte, 80)
	util.PutBE(tkhd[8:12], ft.id)
	util.PutBE(tkhd[72:76], ft.width<<16)
	util.PutBE(tkhd[76:80], ft.height<<16)
	var mediaHeader []byte
	if ft.handler == "vide" {
		mediaHeader = mkfull("vmhd", 0, 1, make([]byte, 8))
	} else {
		mediaHeader = mkfull("smhd", 0, 0, make([]byte, 4))
	}
	stbl := mkbox("stbl",
		mkfull("stsd", 0, 0, be32(1), ft.entry),
		mkfull("stts", 0, 0, be32(0)),
		mkfull("stsc", 0, 0, be32(0)),
		mkfull("stsz", 0, 0, be32(0), be32(0)),
		mkfull("stco", 0, 0, be32(0)),
	)
	mdia := mkbox("mdia",
		mkfull("mdhd", 0, 0, be32(0), be32(0), be32(ft.timescale), be32(0), be16(0x55c4), be16(0)),
		mkfull("hdlr", 0, 0, be32(0), []byte(ft.handler), make([]byte, 12), []byte("Handler"), []byte{0}),
		mkbox("minf", mediaHeader, mkbox("dinf", mkfull("dref", 0, 0, be32(0))), stbl),
	)
	return mkbox("trak", mkfull("tkhd", 0, 3, tkhd), mdia)
}

func avc1Entry(config ...[]byte) []byte {
	fixed := make([]byte, 78)
	util.PutBE(fixed[6:8], uint16(1))
	util.PutBE(fixed[24:26], uint16(320))
	util.PutBE(fixed[26:28], uint16(240))
	util.PutBE(fixed[40:42], uint16(1))
	util.PutBE(fixed[74:76], uint16(0x18))
	return mkbox("avc1", fixed, cat(config...))
}

func mp4aEntry() []byte {
	fixed := make([]byte, 28)
	util.PutBE(fixed[6:8], uint16(1))
	util.PutBE(fixed[16:18], uint16(2))
	util.PutBE(fixed[18:20], uint16(16))
	util.PutBE(fixed[24:28], uint32(48000<<16))
	dsi := []byte{0x05, 2, 0x11, 0x90}
	dc := cat([]byte{0x04, byte(13 + len(dsi)), 0x40, 0x15, 0, 0, 0}, be32(128000), be32(128000), dsi)
	sl := []byte{0x06, 1, 2}
	es := cat([]byte{0x03, byte(3 + len(dc) + len(sl)), 0, 2, 0}, dc, sl)
	return mkbox("mp4a", fixed, mkfull("esds", 0, 0, es))
}

var (
	videoTrack = fixtureTrack{id: 1, handler: "vide", timescale: 15360, width: 320, height: 240,
		entry: avc1Entry(mkbox("avcC", []byte{1, 0x4D, 0x40, 0x0D, 0xff, 0xe0, 0x00}))}
	audioTrack = fixtureTrack{id: 2, handler: "soun", timescale: 48000, entry: mp4aEntry()}
)

func mkftyp() []byte {
	return mkbox("ftyp", []byte("mp42"), be32(1), []byte("mp41mp42isomhlsf"))
}

// mkmoov pads the movie box with a free box to exactly size bytes.
func mkmoov(t *testing.T, size int, tracks ...fixtureTrack) []byte {
	body := mkfull("mvhd", 0, 0, make([]byte, 96))
	for _, track := range tracks {
		body = append(body, track.trak()...)
	}
	body = append(body, mkbox("mvex", mkfull("trex", 0, 0, be32(1), be32(1), be32(0), be32(0), be32(0)))...)
	pad := size - 8 - len(body)
	if pad < 8 {
		t.Fatalf("moov content is %d bytes, cannot pad to %d", len(body)+8, size)
	}
	return mkbox("moov", body, mkbox("free", make([]byte, pad-8)))
}

type fixtureFragment struct {
	samples    uint32
	size       int // moof + mdat
	iFrameSize uint32
}

// mkfragment builds a moof whose first video sample is the only sync sample, sized so that
// the sync sample range is iFrameSize, followed by an mdat completing size bytes.
func mkfragment(t *testing.T, seq uint32, frag fixtureFragment) []byte {
	build := func(dataOffset uint32) []byte {
		sizes := make([]byte, 0, frag.samples*4)
		sizes = append(sizes, be32(frag.iFrameSize-dataOffset)...)
		for i := uint32(1); i < frag.samples; i++ {
			sizes = append(sizes, be32(100)...)
		}
		video := mkbox("traf",
			mkfull("tfhd", 0, 0x08|0x20, be32(videoTrack.id), be32(1024), be32(0x01010000)),
			mkfull("tfdt", 0, 0, be32(0)),
			mkfull("trun", 0, 0x1|0x4|0x200, be32(frag.samples), be32(dataOffset), be32(0x02000000), sizes),
		)
		audio := mkbox("traf",
			mkfull("tfhd", 0, 0x08, be32(audioTrack.id), be32(1024)),
			mkfull("trun", 0, 0x200, be32(3), be32(300), be32(300), be32(300)),
		)
		return mkbox("moof", mkfull("mfhd", 0, 0, be32(seq)), video, audio)
	}
	moof := build(0)
	moof = build(uint32(len(moof) + 8))
	if frag.size-len(moof) < 8 {
		t.Fatalf("fragment %d: moof is %d bytes", seq, len(moof))
	}
	return cat(moof, mkmdat(frag.size-len(moof)))
}

var fixtureFragments = []fixtureFragment{
	{samples: 126, size: 718679, iFrameSize: 26056},
	{samples: 69, size: 274099, iFrameSize: 12727},
	{samples: 10, size: 58499, iFrameSize: 14771},
}

// sampleFile is a fragmented file: 1124 bytes of ftyp and moov with an AVC video and an
// AAC audio track, then three 15 fps fragments.
func sampleFile(t *testing.T) []byte {
	ftyp := mkftyp()
	file := cat(ftyp, mkmoov(t, 1124-len(ftyp), videoTrack, audioTrack))
	for i, frag := range fixtureFragments {
		file = append(file, mkfragment(t, uint32(i+1), frag)...)
	}
	return file
}

func writeFile(t *testing.T, name string, data []byte) string {
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
