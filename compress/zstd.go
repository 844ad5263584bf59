package compress

import (
	"fmt"

	"github.com/arloliu/physmap/errs"
	"github.com/klauspost/compress/zstd"
)

// ZstdCompressor uses Zstandard frames. The implementation is chosen at build
// time: valyala/gozstd with cgo, klauspost/compress/zstd without.
// Both produce standard frames, so either build decodes the other's snapshots.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd codec.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

// checkZstdFrame parses the first frame header of data and rejects frames whose
// declared content size or window exceeds MaxDecodedSize.
func checkZstdFrame(data []byte) error {
	var h zstd.Header
	if err := h.Decode(data); err != nil {
		return fmt.Errorf("zstd decompression failed: %w", err)
	}
	if h.HasFCS && h.FrameContentSize > MaxDecodedSize {
		return fmt.Errorf("%w: zstd frame claims %d bytes, limit %d",
			errs.ErrDecodedSizeLimit, h.FrameContentSize, MaxDecodedSize)
	}
	if h.WindowSize > MaxDecodedSize {
		return fmt.Errorf("%w: zstd window of %d bytes, limit %d",
			errs.ErrDecodedSizeLimit, h.WindowSize, MaxDecodedSize)
	}

	return nil
}
