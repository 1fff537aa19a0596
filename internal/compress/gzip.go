package compress

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
)

// GZip compresses payloads with gzip at a fixed level.
type GZip struct {
	level int
}

func NewGZip() GZip {
	return GZip{level: gzip.DefaultCompression}
}

// NewGZipLevel returns a gzip codec writing at level, one of the gzip package levels.
func NewGZipLevel(level int) (GZip, error) {
	if level < gzip.HuffmanOnly || level > gzip.BestCompression {
		return GZip{}, fmt.Errorf("invalid gzip level %d", level)
	}

	return GZip{level: level}, nil
}

func (g GZip) Name() string {
	return NameGZip
}

func (g GZip) Encode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, g.level)
	if err != nil {
		return nil, err
	}

	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (g GZip) Decode(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	defer r.Close()

	return io.ReadAll(r)
}
