package archive

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrCorrupt indicates the archive content is broken.
	ErrCorrupt = errors.New("archive: corrupt archive")

	ErrInvalidEntryName = errors.New("archive: invalid entry name")
	ErrDuplicateEntry   = errors.New("archive: duplicate entry")
	ErrEntryNotFound    = errors.New("archive: entry not found")
	ErrEntryTooLarge    = errors.New("archive: entry too large")
	ErrSizeMismatch     = errors.New("archive: entry size mismatch")
)

// IsCorrupt reports whether err indicates broken archive content.
func IsCorrupt(err error) bool { return errors.Is(err, ErrCorrupt) }

// validEntryName rejects names which can not be a single flat entry.
func validEntryName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
	case strings.ContainsAny(name, "/\\\x00"):
	default:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidEntryName, name)
}

// copyExact copies exactly size bytes from src into dst.
// It returns ErrSizeMismatch when src has less or more content than size.
func copyExact(dst io.Writer, src io.Reader, size int64) error {
	n, err := io.CopyN(dst, src, size)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: declared %v, got %v", ErrSizeMismatch, size, n)
		}
		return err
	}
	// source must reach EOF here.
	var one [1]byte
	if m, _ := io.ReadFull(src, one[:]); m > 0 {
		return fmt.Errorf("%w: source exceeds declared %v", ErrSizeMismatch, size)
	}
	return nil
}
