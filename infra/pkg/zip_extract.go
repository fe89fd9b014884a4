package pkg

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"
)

// ZipEntry is a regular file found in a zip archive.
type ZipEntry struct {
	// Name is the path in the archive without the root directory.
	Name    string
	Size    int64
	ModTime time.Time
}

// WalkZip calls fn for each regular file in zip archive read from r.
// Directories are skipped. Entries with non-UTF8 names or paths escaping
// the archive root are rejected. src given to fn is valid only during
// the call and fails if the content exceeds MaxFileSizePlus1InByte.
// Walking stops at the first error returned by fn.
func WalkZip(r io.ReaderAt, rSize int64, fn func(e ZipEntry, src io.Reader) error) error {
	zReader, err := zip.NewReader(r, rSize)
	if err != nil {
		return err
	}
	for _, file := range zReader.File {
		if file.NonUTF8 {
			return fmt.Errorf("zip archive containing non-UTF8 file name, is now allowed: file name: %v", file.Name)
		}
		if file.FileInfo().IsDir() {
			continue
		}
		name, err := stripRoot(file.Name)
		if err != nil {
			return err
		}
		if err := walkZipFile(file, name, fn); err != nil {
			return err
		}
	}
	return nil
}

// stripRoot removes the root directory from zip file name.
func stripRoot(name string) (string, error) {
	// check wthether potential of zip slip
	if !fs.ValidPath(name) {
		return "", fmt.Errorf("potentially zip slip. invalid file name in archive: %v", name)
	}
	if _, rest, found := strings.Cut(name, "/"); found {
		return rest, nil
	}
	return path.Clean(name), nil
}

func walkZipFile(file *zip.File, name string, fn func(ZipEntry, io.Reader) error) error {
	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("zip file entry(%v) open failed: %w", file.Name, err)
	}
	defer src.Close()

	entry := ZipEntry{Name: name, Size: int64(file.UncompressedSize64), ModTime: file.Modified}
	return fn(entry, &limitedReader{r: src, name: file.Name, left: MaxFileSizePlus1InByte - 1})
}

// limitedReader fails with ErrTooLargeBytes instead of EOF on the limit.
type limitedReader struct {
	r    io.Reader
	name string
	left int64
}

func (lr *limitedReader) Read(p []byte) (int, error) {
	if lr.left <= 0 {
		var one [1]byte
		if n, _ := io.ReadFull(lr.r, one[:]); n > 0 {
			return 0, &fs.PathError{Op: "read", Path: lr.name, Err: ErrTooLargeBytes}
		}
		return 0, io.EOF
	}
	if int64(len(p)) > lr.left {
		p = p[:lr.left]
	}
	n, err := lr.r.Read(p)
	lr.left -= int64(n)
	return n, err
}
