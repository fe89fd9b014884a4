package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/mzki/erasave/util/errutil"
)

// Entry is a header of an entry in an archive.
type Entry struct {
	Name string
	Size int64
}

// Reader reads entries from an archive sequentially.
// It is not restartable, open the source again to read it again.
type Reader struct {
	src  *errutil.Reader
	gz   *gzip.Reader
	tr   *tar.Reader
	opts options

	cur  *Entry
	seen map[string]bool
	done bool
	err  error // sticky
}

// NewReader starts reading an archive from r.
// It fails if r does not start with gzip header.
func NewReader(r io.Reader, opts ...Option) (*Reader, error) {
	ar := &Reader{
		src:  errutil.NewErrReader(r),
		opts: newOptions(opts),
		seen: make(map[string]bool, 4),
	}
	gz, err := gzip.NewReader(ar.src)
	if err != nil {
		return nil, ar.fail(err)
	}
	ar.gz = gz
	ar.tr = tar.NewReader(gz)
	return ar, nil
}

// fail classifies err either of the source failure or broken content,
// and remembers it.
func (ar *Reader) fail(err error) error {
	if srcErr := ar.src.Err(); srcErr != nil {
		ar.err = fmt.Errorf("archive: read source: %w", srcErr)
	} else {
		if err == io.EOF {
			// the stream ended where content was expected.
			err = io.ErrUnexpectedEOF
		}
		ar.err = fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	ar.cur = nil
	return ar.err
}

// Next advances to the next entry, skipping unread content of the current
// entry. At the end of archive it verifies the rest of the compressed
// stream and returns io.EOF.
func (ar *Reader) Next() (*Entry, error) {
	if ar.err != nil {
		return nil, ar.err
	}
	if ar.done {
		return nil, io.EOF
	}
	ar.cur = nil

	header, err := ar.tr.Next()
	if err == io.EOF {
		// trailing content after the tar trailer must still be
		// a valid gzip stream with correct checksum.
		if _, err := io.Copy(io.Discard, ar.gz); err != nil {
			return nil, ar.fail(err)
		}
		ar.done = true
		return nil, io.EOF
	}
	if err != nil {
		return nil, ar.fail(err)
	}

	switch header.Typeflag {
	case tar.TypeReg, '\x00':
	default:
		return nil, ar.fail(fmt.Errorf("unsupported entry type %q for %q", header.Typeflag, header.Name))
	}
	if err := validEntryName(header.Name); err != nil {
		return nil, ar.fail(err)
	}
	if ar.seen[header.Name] {
		return nil, ar.fail(fmt.Errorf("%w: %q", ErrDuplicateEntry, header.Name))
	}
	ar.seen[header.Name] = true

	ar.cur = &Entry{Name: header.Name, Size: header.Size}
	return ar.cur, nil
}

// Read reads content of the current entry.
// It returns io.EOF at the end of the entry.
func (ar *Reader) Read(p []byte) (int, error) {
	if ar.err != nil {
		return 0, ar.err
	}
	if ar.cur == nil {
		return 0, io.EOF
	}
	n, err := ar.tr.Read(p)
	if err != nil && err != io.EOF {
		return n, ar.fail(err)
	}
	return n, err
}

// ReadEntry reads whole content of the current entry.
// Entry larger than the maximum entry size is treated as broken.
func (ar *Reader) ReadEntry() ([]byte, error) {
	if ar.err != nil {
		return nil, ar.err
	}
	if ar.cur == nil {
		return nil, errors.New("archive: no current entry")
	}
	if ar.cur.Size > ar.opts.maxEntrySize {
		return nil, ar.fail(fmt.Errorf("%w: %q has %v bytes, limit %v", ErrEntryTooLarge, ar.cur.Name, ar.cur.Size, ar.opts.maxEntrySize))
	}
	buf := make([]byte, ar.cur.Size)
	if _, err := io.ReadFull(ar.tr, buf); err != nil {
		return nil, ar.fail(err)
	}
	return buf, nil
}

// Close releases the decompressor. It does not close the source.
func (ar *Reader) Close() error {
	if ar.gz == nil {
		return nil
	}
	return ar.gz.Close()
}

// Index is contents of entries keyed by entry name.
type Index map[string][]byte

// Get returns content of the entry named name.
func (ix Index) Get(name string) ([]byte, error) {
	bs, ok := ix[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrEntryNotFound, name)
	}
	return bs, nil
}

// ReadIndex reads whole archive from r and collects contents of entries
// listed in names. All entries are collected if names is empty.
func ReadIndex(r io.Reader, names []string, opts ...Option) (Index, error) {
	ar, err := NewReader(r, opts...)
	if err != nil {
		return nil, err
	}
	defer ar.Close()

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	ix := make(Index, len(names))
	for {
		e, err := ar.Next()
		if err == io.EOF {
			return ix, nil
		}
		if err != nil {
			return nil, err
		}
		if len(wanted) > 0 && !wanted[e.Name] {
			continue
		}
		bs, err := ar.ReadEntry()
		if err != nil {
			return nil, err
		}
		ix[e.Name] = bs
	}
}
