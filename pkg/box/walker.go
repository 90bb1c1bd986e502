package box

import (
	"errors"
	"fmt"

	"m7s.live/fmp4info/pkg"
	"m7s.live/fmp4info/pkg/util"
)

type MissingChildError struct {
	Parent BoxType
	Child  BoxType
}

func (e *MissingChildError) Error() string {
	return fmt.Sprintf("%s: %s box has no %s child", pkg.ErrParsing, e.Parent, e.Child)
}

func (e *MissingChildError) Unwrap() error {
	return pkg.ErrParsing
}

type UnsupportedVersionError struct {
	Type    BoxType
	Version uint8
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("%s: %s box version %d", pkg.ErrUnsupportedVersion, e.Type, e.Version)
}

func (e *UnsupportedVersionError) Unwrap() error {
	return pkg.ErrUnsupportedVersion
}

// classify turns cursor errors into parse errors; already classified errors pass through.
func classify(t BoxType, err error) error {
	if err == nil || errors.Is(err, pkg.ErrParsing) || errors.Is(err, pkg.ErrUnsupportedVersion) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", pkg.ErrParsing, t, err)
}

func requireVersion0(t BoxType, fb FullBox) error {
	if fb.Version != 0 {
		return &UnsupportedVersionError{Type: t, Version: fb.Version}
	}
	return nil
}

func require(parent, child BoxType, found bool) error {
	if !found {
		return &MissingChildError{Parent: parent, Child: child}
	}
	return nil
}

// children maps the significant child types of a container to their decoders.
// Each decoder gets a cursor sized to exactly one child box, header included.
type children map[BoxType]func(c *util.Cursor) error

// walk visits the boxes left in c, decoding whitelisted ones and skipping the rest.
func walk(c *util.Cursor, parent BoxType, kids children) error {
	for c.HasMoreBytes() {
		h, err := PeekBoxHeader(c)
		if err != nil {
			return classify(parent, err)
		}
		if err = h.check(); err != nil {
			return fmt.Errorf("%s: %w", parent, err)
		}
		if h.Size > uint64(c.Remaining()) {
			return fmt.Errorf("%w: %s: %s box size %d exceeds %d remaining bytes", pkg.ErrParsing, parent, h.Type, h.Size, c.Remaining())
		}
		decode, ok := kids[h.Type]
		if !ok {
			c.Advance(int(h.Size))
			continue
		}
		sub, _ := c.Slice(int(h.Size))
		if err = decode(sub); err != nil {
			return fmt.Errorf("%s: %w", parent, err)
		}
	}
	return nil
}
