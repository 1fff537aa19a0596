package compress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompress_RoundTrip(t *testing.T) {
	payload := []byte(`{"_id":"a","from":"x","to":"y","label":"knows knows knows knows"}`)

	for _, name := range []string{"", NameNop, NameGZip, NameBrotli, NameLZ4} {
		t.Run("codec "+name, func(t *testing.T) {
			codec, err := ByName(name)
			require.NoError(t, err)

			encoded, err := codec.Encode(payload)
			require.NoError(t, err)

			decoded, err := codec.Decode(encoded)
			require.NoError(t, err)
			assert.Equal(t, payload, decoded)
		})
	}
}

func TestCompress_UnknownCodec(t *testing.T) {
	_, err := ByName("zstd")
	assert.ErrorIs(t, err, ErrUnknownCodec)
}

func TestCompress_GZipLevel(t *testing.T) {
	payload := []byte(`{"_id":"a","from":"x","to":"y"}`)

	codec, err := ByName("gzip:9")
	require.NoError(t, err)
	assert.Equal(t, NameGZip, codec.Name())

	encoded, err := codec.Encode(payload)
	require.NoError(t, err)

	// any gzip level decodes with the default codec
	decoded, err := NewGZip().Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)

	_, err = ByName("gzip:fast")
	assert.ErrorIs(t, err, ErrUnknownCodec)

	_, err = ByName("gzip:12")
	assert.Error(t, err)

	_, err = NewGZip().Decode([]byte("not gzip"))
	assert.Error(t, err)
}
