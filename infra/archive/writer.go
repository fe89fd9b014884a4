package archive

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// EntryData is a named content to be written into an archive.
type EntryData struct {
	Name string
	Data []byte
}

// Writer writes entries into an archive.
// Close must be called to flush the archive. Close does not close
// the underlying io.Writer.
type Writer struct {
	gz    *gzip.Writer
	tw    *tar.Writer
	opts  options
	names map[string]bool

	err    error // sticky, any write error makes the archive invalid.
	closed bool
}

// NewWriter returns Writer which writes compressed archive into w.
// It returns error only if the options are invalid.
func NewWriter(w io.Writer, opts ...Option) (*Writer, error) {
	o := newOptions(opts)
	gz, err := gzip.NewWriterLevel(w, o.level)
	if err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}
	return &Writer{
		gz:    gz,
		tw:    tar.NewWriter(gz),
		opts:  o,
		names: make(map[string]bool, 4),
	}, nil
}

// WriteEntry writes an entry of the name with whole content data.
func (aw *Writer) WriteEntry(name string, data []byte) error {
	return aw.WriteEntryFrom(name, int64(len(data)), bytes.NewReader(data))
}

// WriteEntryFrom writes an entry of the name streaming content from r.
// The content r yields must be exactly size bytes.
func (aw *Writer) WriteEntryFrom(name string, size int64, r io.Reader) error {
	if aw.err != nil {
		return aw.err
	}
	if aw.closed {
		return errors.New("archive: write to closed writer")
	}
	if err := validEntryName(name); err != nil {
		return err
	}
	if aw.names[name] {
		return fmt.Errorf("%w: %q", ErrDuplicateEntry, name)
	}
	if size < 0 {
		return fmt.Errorf("archive: negative size %v for %q", size, name)
	}

	header := &tar.Header{
		Typeflag: tar.TypeReg,
		Name:     name,
		Size:     size,
		Mode:     0644,
		ModTime:  aw.opts.now(),
	}
	if err := aw.tw.WriteHeader(header); err != nil {
		aw.err = fmt.Errorf("archive: write header of %q: %w", name, err)
		return aw.err
	}
	if err := copyExact(aw.tw, r, size); err != nil {
		aw.err = fmt.Errorf("archive: write content of %q: %w", name, err)
		return aw.err
	}
	aw.names[name] = true
	return nil
}

// Close writes trailers of tar and gzip stream.
// Closing twice is no-op.
func (aw *Writer) Close() error {
	if aw.closed {
		return aw.err
	}
	aw.closed = true
	if aw.err != nil {
		// trailer must not be written for broken content,
		// so that a reader can detect it.
		return aw.err
	}
	if err := errors.Join(aw.tw.Close(), aw.gz.Close()); err != nil {
		aw.err = fmt.Errorf("archive: close: %w", err)
	}
	return aw.err
}

// WriteEntries writes entries into w as a complete archive in the given order.
func WriteEntries(w io.Writer, entries []EntryData, opts ...Option) (err error) {
	aw, err := NewWriter(w, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := aw.Close(); err == nil {
			err = closeErr
		}
	}()
	for _, e := range entries {
		if err := aw.WriteEntry(e.Name, e.Data); err != nil {
			return err
		}
	}
	return nil
}
