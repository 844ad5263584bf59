package snapshot

import (
	"fmt"

	"github.com/arloliu/physmap/endian"
	"github.com/arloliu/physmap/errs"
	"github.com/arloliu/physmap/format"
	"github.com/arloliu/physmap/internal/options"
)

type config struct {
	engine      endian.EndianEngine
	compression format.CompressionType
}

// Option configures Encode.
type Option = options.Option[*config]

func defaultConfig() config {
	return config{
		engine:      endian.GetLittleEndianEngine(),
		compression: format.CompressionZstd,
	}
}

// WithCompression selects the codec applied to the image.
func WithCompression(c format.CompressionType) Option {
	return options.New(func(cfg *config) error {
		switch c {
		case format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4:
			cfg.compression = c
			return nil
		default:
			return fmt.Errorf("%w: %#x", errs.ErrInvalidCompression, uint8(c))
		}
	})
}

// WithLittleEndian encodes the image in little-endian byte order (the default).
func WithLittleEndian() Option {
	return options.NoError(func(cfg *config) {
		cfg.engine = endian.GetLittleEndianEngine()
	})
}

// WithBigEndian encodes the image in big-endian byte order.
func WithBigEndian() Option {
	return options.NoError(func(cfg *config) {
		cfg.engine = endian.GetBigEndianEngine()
	})
}

// WithNativeEndian encodes the image in the host byte order, so a restored
// image can be attached in place.
func WithNativeEndian() Option {
	return options.NoError(func(cfg *config) {
		cfg.engine = endian.Native()
	})
}
