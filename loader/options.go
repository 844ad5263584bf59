package loader

import (
	"errors"
	"log/slog"

	"github.com/arloliu/physmap/internal/options"
)

// Option configures a Builder.
type Option = options.Option[*Builder]

// WithLogger sets the logger used to trace insertions and the final listing.
// By default a Builder logs nothing.
func WithLogger(logger *slog.Logger) Option {
	return options.New(func(b *Builder) error {
		if logger == nil {
			return errors.New("loader: nil logger")
		}
		b.logger = logger

		return nil
	})
}

// WithExitBootServices retags boot-services code and data regions as
// conventional memory as they are added, which is how the kernel sees them
// once the loader has called ExitBootServices.
func WithExitBootServices() Option {
	return options.NoError(func(b *Builder) {
		b.exitBootServices = true
	})
}

// WithMinPages skips firmware regions smaller than pages pages. Slivers of a
// few pages are common in firmware maps and otherwise use up slots.
// Reservations are never filtered.
func WithMinPages(pages uint64) Option {
	return options.NoError(func(b *Builder) {
		b.minPages = pages
	})
}
