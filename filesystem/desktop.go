package filesystem

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	DefaultMaxFileSize = 256 * 1024 * 1024 // 256MByte
)

var (
	// Desktop is a FileSystem for the desktop environment
	Desktop = &OSFileSystem{MaxFileSize: DefaultMaxFileSize}
)

// OSFileSystem is a adaptation of the os package with FileSystem interface.
type OSFileSystem struct {
	MaxFileSize int64 // in bytes, non-positive means no limit.
}

func (osfs *OSFileSystem) ResolvePath(fpath string) (string, error) {
	return filepath.Clean(fpath), nil
}

func (osfs *OSFileSystem) Load(fpath string) (reader io.ReadCloser, err error) {
	fp, err := os.Open(fpath)
	if err != nil {
		return nil, err
	}
	finfo, err := fp.Stat()
	if err != nil {
		fp.Close()
		return nil, fmt.Errorf("can not fetch file info: %w", err)
	}
	if maxSize := osfs.MaxFileSize; maxSize > 0 && finfo.Size() > maxSize {
		fp.Close()
		return nil, fmt.Errorf("file(%s) is too large size(>%v) to load", fpath, maxSize)
	}
	// Close() is responsible for the caller.
	return fp, nil
}

func (osfs *OSFileSystem) Exist(fpath string) bool {
	_, err := os.Stat(fpath)
	return err == nil
}

func (osfs *OSFileSystem) Store(fpath string) (writer io.WriteCloser, err error) {
	// make directory of given path. if exist do nothing.
	if err := os.MkdirAll(filepath.Dir(fpath), 0755); err != nil {
		return nil, fmt.Errorf("can not create store directory: %w", err)
	}
	fp, err := os.Create(fpath)
	if err != nil {
		return nil, fmt.Errorf("can not create store file: %w", err)
	}
	return &syncFile{fp}, nil
}

// syncFile flushes content to the device on Close.
type syncFile struct {
	*os.File
}

func (f *syncFile) Close() error {
	syncErr := f.File.Sync()
	closeErr := f.File.Close()
	if syncErr != nil {
		return syncErr
	}
	return closeErr
}

func (osfs *OSFileSystem) MkdirAll(dir string) error {
	return os.MkdirAll(dir, 0755)
}

func (osfs *OSFileSystem) Rename(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}

func (osfs *OSFileSystem) Remove(fpath string) error {
	return os.Remove(fpath)
}

func (osfs *OSFileSystem) Stat(fpath string) (fs.FileInfo, error) {
	return os.Stat(fpath)
}

func (osfs *OSFileSystem) ReadDir(dir string) ([]fs.DirEntry, error) {
	return os.ReadDir(dir)
}
