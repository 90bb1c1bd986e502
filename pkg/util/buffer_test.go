package util

import (
	"errors"
	"testing"
)

func TestCursor(t *testing.T) {
	t.Run(t.Name(), func(t *testing.T) {
		c := NewCursor([]byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08})
		if v, err := c.ReadUint16(); err != nil || v != 0x0001 {
			t.Errorf("ReadUint16 = %#x, %v", v, err)
		}
		if v, err := c.ReadUint24(); err != nil || v != 0x020304 {
			t.Errorf("ReadUint24 = %#x, %v", v, err)
		}
		if v, err := c.ReadUint16LE(); err != nil || v != 0x0605 {
			t.Errorf("ReadUint16LE = %#x, %v", v, err)
		}
		if err := c.Rewind(2); err != nil {
			t.Fatal(err)
		}
		if v, err := c.ReadUint32(); err != nil || v != 0x05060708 {
			t.Errorf("ReadUint32 = %#x, %v", v, err)
		}
		if _, err := c.ReadUint8(); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("read past end: %v", err)
		}
	})
}

func TestCursorLittleEndian(t *testing.T) {
	t.Run(t.Name(), func(t *testing.T) {
		c := NewCursor([]byte{0x78, 0x56, 0x34, 0x12, 0x01, 0, 0, 0, 0, 0, 0, 0x80})
		if v, _ := c.ReadUint32LE(); v != 0x12345678 {
			t.Errorf("ReadUint32LE = %#x", v)
		}
		if err := c.Rewind(4); err != nil {
			t.Fatal(err)
		}
		if v, _ := c.ReadUint32(); v != 0x78563412 {
			t.Errorf("ReadUint32 = %#x", v)
		}
		if v, _ := c.ReadUint64LE(); v != 0x8000000000000001 {
			t.Errorf("ReadUint64LE = %#x", v)
		}
	})
}

// The continuation bytes and the terminating byte all contribute 7 bits.
func TestDescriptorSize(t *testing.T) {
	t.Run(t.Name(), func(t *testing.T) {
		c := NewCursor([]byte{0x81, 0x80, 0x01, 0xff})
		size, err := c.ReadDescriptorSize()
		if err != nil {
			t.Fatal(err)
		}
		if size != 16385 {
			t.Errorf("size = %d, want 16385", size)
		}
		if c.Position() != 3 {
			t.Errorf("position = %d, want 3", c.Position())
		}
		if _, err = NewCursor([]byte{0x80, 0x80}).ReadDescriptorSize(); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("unterminated size: %v", err)
		}
	})
}

func TestCursorSlice(t *testing.T) {
	t.Run(t.Name(), func(t *testing.T) {
		c := NewCursor([]byte("ftypmp42rest"))
		if s, _ := c.ReadASCII(4); s != "ftyp" {
			t.Errorf("ReadASCII = %q", s)
		}
		sub, err := c.Slice(4)
		if err != nil {
			t.Fatal(err)
		}
		if sub.Size() != 4 || c.Position() != 8 {
			t.Errorf("slice size %d position %d", sub.Size(), c.Position())
		}
		if _, err = sub.Read(5); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("sub-cursor over-read: %v", err)
		}
		rest, _ := c.SliceToEnd()
		if s, _ := rest.ReadUTF8(4); s != "rest" {
			t.Errorf("ReadUTF8 = %q", s)
		}
		if c.Remaining() != 0 {
			t.Errorf("remaining = %d", c.Remaining())
		}
		if err = c.Advance(1); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("advance past end: %v", err)
		}
	})
}

func TestHasMoreBytes(t *testing.T) {
	t.Run(t.Name(), func(t *testing.T) {
		c := NewCursor([]byte{1, 2, 3})
		var n int
		for c.HasMoreBytes() {
			c.Advance(1)
			n++
		}
		// the final byte is never reported
		if n != 2 {
			t.Errorf("iterations = %d, want 2", n)
		}
	})
}
