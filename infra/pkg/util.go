// Package pkg bundles save files into a zip archive and unbundles them,
// to move saves between machines.
package pkg

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/mzki/erasave/filesystem"
)

// MaxFileSizePlus1InByte indicate default valoe of the maximum file size + 1 to be written or read for a file.
const MaxFileSizePlus1InByte = filesystem.DefaultMaxFileSize + 1

// copyLimited is similar API except the size limiation uses MaxFileSizePlus1InByte.
// That means src size < MaxFileSizePlus1InByte will be accepted.
func copyLimited(dst io.Writer, dstPath string, src io.Reader, srcPath string) error {
	return copyLimitedN(dst, dstPath, src, srcPath, MaxFileSizePlus1InByte)
}

// ErrTooLargeBytes indicates copy operation failed due to too large bytes to read or write.
var ErrTooLargeBytes = fmt.Errorf("too large bytes")

// copyLimitedN copies content from src into dst with size limitation, nPlus1.
// It returns nil when src has less than nPlus1 bytes, returns ErrTooLargeBytes
// when src has nPlus1 bytes or more.
func copyLimitedN(dst io.Writer, dstPath string, src io.Reader, srcPath string, nPlus1 int64) error {
	_, err := io.CopyN(dst, src, nPlus1)
	switch {
	case errors.Is(err, io.EOF):
		return nil
	case err == nil:
		// source still remains after the maximum size.
		return &fs.PathError{Op: "copy", Path: srcPath, Err: fmt.Errorf("exceed limit (%v): %w", nPlus1, ErrTooLargeBytes)}
	default:
		return &fs.PathError{Op: "copy", Path: dstPath, Err: err}
	}
}
