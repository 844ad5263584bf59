package compress

import (
	"fmt"

	"github.com/arloliu/physmap/errs"
	"github.com/klauspost/compress/s2"
)

// S2Compressor uses the S2 block format.
type S2Compressor struct{}

var _ Codec = (*S2Compressor)(nil)

// NewS2Compressor creates a new S2 codec.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

// Compress encodes data as a single S2 block.
func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

// Decompress decodes an S2 block. The block's varint length prefix is checked
// against MaxDecodedSize before the output buffer is allocated.
func (c S2Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	n, err := s2.DecodedLen(data)
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}
	if n > MaxDecodedSize {
		return nil, fmt.Errorf("%w: s2 block claims %d bytes, limit %d", errs.ErrDecodedSizeLimit, n, MaxDecodedSize)
	}

	out, err := s2.Decode(make([]byte, n), data)
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}

	return out, nil
}
