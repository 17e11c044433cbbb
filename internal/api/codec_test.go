package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
)

func TestCodecRegistered(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	require.NotNil(t, c)
	assert.Equal(t, CodecName, c.Name())
}

func TestCodec_ChunkIsBase64(t *testing.T) {
	var c jsonCodec

	b, err := c.Marshal(&UploadRequest{Chunk: []byte{0xff, 0x00, 0x10}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"chunk":"/wAQ"}`, string(b))

	var got UploadRequest
	require.NoError(t, c.Unmarshal(b, &got))
	assert.Nil(t, got.Meta)
	assert.Equal(t, []byte{0xff, 0x00, 0x10}, got.Chunk)
}

func TestCodec_UnmarshalError(t *testing.T) {
	var c jsonCodec
	err := c.Unmarshal([]byte("{"), &FileInfo{})
	assert.ErrorContains(t, err, "*api.FileInfo")
}
