package filesystem

import (
	"io"
	"io/fs"

	"github.com/mzki/erasave/util/log"
)

//go:generate mockgen -destination=./mock/mock_filesystem.go . FileSystem

// FileSystem is abstraction for the filesystem where saves are stored.
type FileSystem interface {
	Loader

	// create data store entry. Parent directories are created as needed.
	// Existing entry is truncated.
	Store(filepath string) (io.WriteCloser, error)

	// MkdirAll creates directory with its parents.
	// It succeeds when the directory already exists.
	MkdirAll(dir string) error

	// Rename moves oldpath to newpath, replacing newpath if exists.
	Rename(oldpath, newpath string) error

	// Remove removes a file.
	Remove(filepath string) error

	// Stat returns file information. Errors for missing files
	// satisfy errors.Is(err, fs.ErrNotExist).
	Stat(filepath string) (fs.FileInfo, error)

	// ReadDir returns entries in dir sorted by name.
	ReadDir(dir string) ([]fs.DirEntry, error)
}

// path resolver resolves file path on the filesystem.
type PathResolver interface {
	ResolvePath(path string) (string, error)
}

// NopPathResolver implements PathResolver interface.
type NopPathResolver struct{}

// ResolvePath returns path as is and no error.
func (NopPathResolver) ResolvePath(path string) (string, error) { return path, nil }

// Loader searches file path and return its content as io.Reader.
type Loader interface {
	// Load loads content specified by the path.
	// It returns io.Reader for the loaded content with no error,
	// or returns nil with file loading error.
	Load(filepath string) (reader io.ReadCloser, err error)

	// Exist checks whether given filepath exist.
	// It returns true when the filepath exists, otherwise return false.
	Exist(filepath string) bool
}

var (
	// Default is a default FileSystem to be used by exported functions.
	Default FileSystem = Desktop
)

func Load(filepath string) (reader io.ReadCloser, err error) {
	log.Debugf("FileSystem.Load: %s", filepath)
	return Default.Load(filepath)
}

func Exist(filepath string) bool {
	return Default.Exist(filepath)
}

func Store(filepath string) (io.WriteCloser, error) {
	log.Debugf("FileSystem.Store: %s", filepath)
	return Default.Store(filepath)
}

// ResolvePathFS resolve file path under given FileSystem.
// if FileSystem also implements PathResolver, use it to resolve path,
// otherwise returns path itself.
func ResolvePathFS(fsys FileSystem, path string) (string, error) {
	if pr, ok := fsys.(PathResolver); ok {
		return pr.ResolvePath(path)
	}
	return path, nil
}

// OpenWatcher creates Watcher for the given FileSystem.
// If the FileSystem does not implement PathResolver interface, NopPathResover
// is used. Note that returned watcher must call Close() after use.
func OpenWatcher(fsys FileSystem) (Watcher, error) {
	if pr, ok := fsys.(PathResolver); ok {
		return newWatcher(pr)
	}
	log.Debug("FileSystem not implement PathResolver. Use NopPathResolver instead of that.")
	return newWatcher(NopPathResolver{})
}
