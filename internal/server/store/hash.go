package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"

	"golang.org/x/crypto/blake2b"
)

// HashFunc creates a fresh digest for one write.
type HashFunc func() hash.Hash

// NewHashFunc resolves a configured algorithm name.
func NewHashFunc(algorithm string) (HashFunc, error) {
	switch algorithm {
	case "", "sha256":
		return sha256.New, nil
	case "blake2b":
		return func() hash.Hash {
			// New256 only fails for oversized keys.
			h, _ := blake2b.New256(nil)
			return h
		}, nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm %q", algorithm)
	}
}

// digestReader hashes and counts every byte read through it.
type digestReader struct {
	r io.Reader
	h hash.Hash
	n int64
}

func newDigestReader(ctx context.Context, r io.Reader, h hash.Hash) *digestReader {
	return &digestReader{r: &contextReader{ctx: ctx, r: r}, h: h}
}

func (d *digestReader) Read(p []byte) (int, error) {
	n, err := d.r.Read(p)
	if n > 0 {
		d.h.Write(p[:n])
		d.n += int64(n)
	}
	return n, err
}

func (d *digestReader) result() WriteResult {
	return WriteResult{Hash: hex.EncodeToString(d.h.Sum(nil)), Size: d.n}
}

// contextReader stops reading once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
