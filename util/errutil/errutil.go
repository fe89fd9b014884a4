// Package errutil provides utilty of errors.
package errutil

import (
	"errors"
	"io"
)

// Writer is wraper of io.Writer which remembers the first error
// returned by underlying Write and counts written bytes.
// Once error is remembered, trailing Write() is not executed and
// returns the error.
type Writer struct {
	w   io.Writer
	n   int64
	err error
}

// construct with io.Writer.
func NewErrWriter(w io.Writer) *Writer { return &Writer{w: w} }

// return internal error.
func (ew *Writer) Err() error { return ew.err }

// N returns number of bytes written so far.
func (ew *Writer) N() int64 { return ew.n }

func (ew *Writer) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(p)
	ew.n += int64(n)
	if err != nil {
		ew.err = err
	}
	return n, err
}

// Reader is wrapper of io.Reader which remembers the first error
// other than io.EOF returned by underlying Read.
// It lets callers tell failures of the source from failures of
// the content decoded from it.
type Reader struct {
	r   io.Reader
	n   int64
	err error
}

func NewErrReader(r io.Reader) *Reader { return &Reader{r: r} }

// Err returns the first non-EOF error of the underlying reader.
func (er *Reader) Err() error { return er.err }

// N returns number of bytes read so far.
func (er *Reader) N() int64 { return er.n }

func (er *Reader) Read(p []byte) (int, error) {
	n, err := er.r.Read(p)
	er.n += int64(n)
	if err != nil && !errors.Is(err, io.EOF) && er.err == nil {
		er.err = err
	}
	return n, err
}
