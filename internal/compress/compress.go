package compress

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	NameNop    = "nop"
	NameGZip   = "gzip"
	NameBrotli = "brotli"
	NameLZ4    = "lz4"
)

var (
	// ErrUnknownCodec is returned when no codec is registered under a name.
	ErrUnknownCodec = errors.New("unknown compression codec")
)

// Compress encodes and decodes stored document payloads.
type Compress interface {
	Name() string
	Encode(data []byte) ([]byte, error)
	Decode(data []byte) ([]byte, error)
}

// ByName returns the codec registered under name. An empty name selects Nop,
// "gzip:<level>" selects gzip at the given level.
func ByName(name string) (Compress, error) {
	if codec, level, ok := strings.Cut(name, ":"); ok && codec == NameGZip {
		n, err := strconv.Atoi(level)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCodec, name)
		}
		return NewGZipLevel(n)
	}

	switch name {
	case "", NameNop:
		return NewNop(), nil
	case NameGZip:
		return NewGZip(), nil
	case NameBrotli:
		return NewBrotli(), nil
	case NameLZ4:
		return NewLZ4(), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownCodec, name)
}
