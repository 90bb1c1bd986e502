package box

import (
	"strings"

	"m7s.live/fmp4info/pkg/util"
)

// aligned(8) class HandlerBox extends FullBox(‘hdlr’, version = 0, 0) {
// 	unsigned int(32) pre_defined = 0;
// 	unsigned int(32) handler_type;
// 	const unsigned int(32)[3] reserved = 0;
// 	string name;
// }

type HandlerBox struct {
	BoxHeader
	FullBox
	HandlerType BoxType
	Name        string
}

func DecodeHandlerBox(c *util.Cursor) (hdlr *HandlerBox, err error) {
	defer func() { err = classify(TypeHDLR, err) }()
	hdlr = &HandlerBox{}
	if hdlr.BoxHeader, err = readHeader(c, TypeHDLR); err != nil {
		return nil, err
	}
	if hdlr.FullBox, err = readFullBox(c); err != nil {
		return nil, err
	}
	var b []byte
	if b, err = c.Read(20); err != nil {
		return nil, err
	}
	hdlr.HandlerType = BoxType(b[4:8])
	if hdlr.Name, err = c.ReadUTF8(c.Remaining()); err != nil {
		return nil, err
	}
	hdlr.Name = strings.TrimRight(hdlr.Name, "\x00")
	return
}
