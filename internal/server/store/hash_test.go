package store

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"
)

func TestNewHashFunc(t *testing.T) {
	payload := []byte("hello")

	sha, err := NewHashFunc("sha256")
	require.NoError(t, err)
	h := sha()
	h.Write(payload)
	want := sha256.Sum256(payload)
	assert.Equal(t, hex.EncodeToString(want[:]), hex.EncodeToString(h.Sum(nil)))

	def, err := NewHashFunc("")
	require.NoError(t, err)
	assert.Equal(t, sha256.Size, def().Size())

	b2, err := NewHashFunc("blake2b")
	require.NoError(t, err)
	h = b2()
	h.Write(payload)
	wantB2 := blake2b.Sum256(payload)
	assert.Equal(t, hex.EncodeToString(wantB2[:]), hex.EncodeToString(h.Sum(nil)))

	_, err = NewHashFunc("md5")
	assert.Error(t, err)
}

func TestDigestReader_HashesEverythingRead(t *testing.T) {
	data := bytes.Repeat([]byte("abc"), 10000)
	dr := newDigestReader(context.Background(), bytes.NewReader(data), sha256.New())

	n, err := io.Copy(io.Discard, dr)
	require.NoError(t, err)
	assert.EqualValues(t, len(data), n)

	sum := sha256.Sum256(data)
	res := dr.result()
	assert.Equal(t, hex.EncodeToString(sum[:]), res.Hash)
	assert.EqualValues(t, len(data), res.Size)
}

func TestDigestReader_StopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dr := newDigestReader(ctx, bytes.NewReader([]byte("data")), sha256.New())
	_, err := io.Copy(io.Discard, dr)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, dr.result().Size)
}

func TestMinioHost(t *testing.T) {
	assert.Equal(t, "127.0.0.1:9000", minioHost("http://127.0.0.1:9000/"))
	assert.Equal(t, "minio:9000", minioHost("minio:9000"))
	assert.Equal(t, "minio:9000", minioHost("minio:9000/"))
}
