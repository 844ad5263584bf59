//go:build cgo

package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/arloliu/physmap/errs"
	"github.com/valyala/gozstd"
)

const zstdLevel = 3

// Compress compresses the input data with libzstd.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return gozstd.CompressLevel(nil, data, zstdLevel), nil
}

// Decompress decompresses Zstandard frames with libzstd.
//
// gozstd.Decompress sizes its output from the frame header, so the header is
// checked first and the payload is streamed through a reader capped at
// MaxDecodedSize, which also bounds any frames that follow the first.
func (c ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if err := checkZstdFrame(data); err != nil {
		return nil, err
	}

	zr := gozstd.NewReader(bytes.NewReader(data))
	defer zr.Release()

	out, err := io.ReadAll(io.LimitReader(zr, MaxDecodedSize+1))
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}
	if len(out) > MaxDecodedSize {
		return nil, fmt.Errorf("%w: zstd payload exceeds %d bytes", errs.ErrDecodedSizeLimit, MaxDecodedSize)
	}

	return out, nil
}
