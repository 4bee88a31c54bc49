package compression

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// GZip implements Decompressor using the stdlib-compatible gzip reader from
// klauspost/compress.
type GZip struct{}

// Name implements Decompressor.
func (c *GZip) Name() string { return "GZIP" }

// Decode decompresses a gzip stream.
func (c *GZip) Decode(encoded []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	return out, nil
}
