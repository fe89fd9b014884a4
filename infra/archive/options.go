package archive

import (
	"time"

	"github.com/klauspost/compress/gzip"
)

// DefaultMaxEntrySize is the default limit of an entry size to be read at once.
const DefaultMaxEntrySize int64 = 64 * 1024 * 1024

type options struct {
	level        int
	now          func() time.Time
	maxEntrySize int64
}

func newOptions(opts []Option) options {
	o := options{
		level:        gzip.DefaultCompression,
		now:          time.Now,
		maxEntrySize: DefaultMaxEntrySize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures Reader and Writer.
type Option func(*options)

// WithCompressionLevel sets gzip compression level for Writer.
// Level is in range of gzip.HuffmanOnly to gzip.BestCompression.
func WithCompressionLevel(level int) Option {
	return func(o *options) { o.level = level }
}

// WithClock sets time source for the modification time of entries.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithMaxEntrySize limits the entry size read by Reader.ReadEntry.
// Non-positive size means DefaultMaxEntrySize.
func WithMaxEntrySize(size int64) Option {
	return func(o *options) {
		if size <= 0 {
			size = DefaultMaxEntrySize
		}
		o.maxEntrySize = size
	}
}
