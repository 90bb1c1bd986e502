package util

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"
)

var ErrOutOfRange = errors.New("out of range")

type Integer interface {
	~int | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

func PutBE[T Integer](b []byte, num T) []byte {
	for i, n := 0, len(b); i < n; i++ {
		b[i] = byte(num >> ((n - i - 1) << 3))
	}
	return b
}

func ReadBE[T Integer](b []byte) (num T) {
	num = 0
	for i, n := 0, len(b); i < n; i++ {
		num += T(b[i]) << ((n - i - 1) << 3)
	}
	return
}

func ReadLE[T Integer](b []byte) (num T) {
	num = 0
	for i := range b {
		num += T(b[i]) << (i << 3)
	}
	return
}

// Cursor 对一段只读内存的有界读取，pos 之前的内容视为已消费
type Cursor struct {
	data []byte
	pos  int
}

func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

func (c *Cursor) Size() int {
	return len(c.data)
}

func (c *Cursor) Position() int {
	return c.pos
}

func (c *Cursor) Remaining() int {
	return len(c.data) - c.pos
}

// HasMoreBytes stops one byte short of the end of the view.
func (c *Cursor) HasMoreBytes() bool {
	return c.pos < len(c.data)-1
}

// Bytes returns the whole underlying view, consumed or not.
func (c *Cursor) Bytes() []byte {
	return c.data
}

func (c *Cursor) Read(n int) ([]byte, error) {
	if n < 0 || n > c.Remaining() {
		return nil, fmt.Errorf("%w: read %d at %d of %d", ErrOutOfRange, n, c.pos, len(c.data))
	}
	r := c.data[c.pos : c.pos+n : c.pos+n]
	c.pos += n
	return r, nil
}

// Slice consumes n bytes and returns them as a new cursor.
func (c *Cursor) Slice(n int) (*Cursor, error) {
	b, err := c.Read(n)
	if err != nil {
		return nil, err
	}
	return NewCursor(b), nil
}

func (c *Cursor) SliceToEnd() (*Cursor, error) {
	return c.Slice(c.Remaining())
}

func (c *Cursor) Advance(n int) error {
	_, err := c.Read(n)
	return err
}

func (c *Cursor) Rewind(n int) error {
	if n < 0 || n > c.pos {
		return fmt.Errorf("%w: rewind %d at %d", ErrOutOfRange, n, c.pos)
	}
	c.pos -= n
	return nil
}

func (c *Cursor) ReadUint8() (uint8, error) {
	b, err := c.Read(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *Cursor) ReadUint16() (uint16, error) {
	b, err := c.Read(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (c *Cursor) ReadUint24() (uint32, error) {
	b, err := c.Read(3)
	if err != nil {
		return 0, err
	}
	return ReadBE[uint32](b), nil
}

func (c *Cursor) ReadUint32() (uint32, error) {
	b, err := c.Read(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (c *Cursor) ReadInt32() (int32, error) {
	v, err := c.ReadUint32()
	return int32(v), err
}

func (c *Cursor) ReadUint64() (uint64, error) {
	b, err := c.Read(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (c *Cursor) ReadUint16LE() (uint16, error) {
	b, err := c.Read(2)
	if err != nil {
		return 0, err
	}
	return ReadLE[uint16](b), nil
}

func (c *Cursor) ReadUint32LE() (uint32, error) {
	b, err := c.Read(4)
	if err != nil {
		return 0, err
	}
	return ReadLE[uint32](b), nil
}

func (c *Cursor) ReadUint64LE() (uint64, error) {
	b, err := c.Read(8)
	if err != nil {
		return 0, err
	}
	return ReadLE[uint64](b), nil
}

func (c *Cursor) ReadASCII(n int) (string, error) {
	b, err := c.Read(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (c *Cursor) ReadUTF8(n int) (string, error) {
	b, err := c.Read(n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("invalid utf-8 at %d", c.pos-n)
	}
	return string(b), nil
}

// ReadDescriptorSize reads an expandable size: 7 bits per byte while the top bit is set,
// then the terminating byte.
func (c *Cursor) ReadDescriptorSize() (size uint32, err error) {
	var b uint8
	for {
		if b, err = c.ReadUint8(); err != nil {
			return
		}
		size = size<<7 | uint32(b&0x7F)
		if b&0x80 == 0 {
			return
		}
	}
}
