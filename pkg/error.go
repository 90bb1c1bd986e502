package pkg

import "errors"

var (
	ErrNonexistentFile    = errors.New("nonexistent file")
	ErrParsing            = errors.New("parsing error")
	ErrFileNotFragmented  = errors.New("file not fragmented")
	ErrUnsupportedVersion = errors.New("unsupported version")
)
