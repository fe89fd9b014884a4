package filesystem

import (
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
)

// AbsPathFileSystem completes absolute path for every file access.
// The absolute path is made by using filepath.Abs when CurrentDir is set to empty,
// or made by file.Join(CurrentDir, relativePath) when CurrentDir is set.
// The Backend is used to access File API. and The OSFileSystem is used as Backend when
// it is nil.
type AbsPathFileSystem struct {
	CurrentDir string
	Backend    FileSystem
}

// AbsDirFileSystem returns FileSystem which resolves relative paths under absDir.
func AbsDirFileSystem(absDir string) *AbsPathFileSystem {
	return &AbsPathFileSystem{CurrentDir: absDir, Backend: Desktop}
}

// ResolvePath complete parent directory path to fpath when fpath is a relative path.
// It returns fpath itself when fpath is already absolute path.
func (absfs *AbsPathFileSystem) ResolvePath(fpath string) (string, error) {
	if filepath.IsAbs(fpath) {
		return filepath.Clean(fpath), nil
	}

	// fpath seems to be relative file path, complete parent directory path.
	if absfs.CurrentDir == "" {
		return filepath.Abs(fpath)
	} else if filepath.IsAbs(absfs.CurrentDir) {
		return filepath.Clean(filepath.Join(absfs.CurrentDir, fpath)), nil
	} else {
		return "", fmt.Errorf("AbsPathFileSystem: CurrentDir is not absolute path: %s", absfs.CurrentDir)
	}
}

func (absfs *AbsPathFileSystem) mustBackend() FileSystem {
	if absfs.Backend == nil {
		absfs.Backend = &OSFileSystem{MaxFileSize: DefaultMaxFileSize}
	}
	return absfs.Backend
}

func (absfs *AbsPathFileSystem) resolve(op, fpath string) (string, error) {
	p, err := absfs.ResolvePath(fpath)
	if err != nil {
		return "", fmt.Errorf("AbsPathFileSystem.%s() error: %w", op, err)
	}
	return p, nil
}

func (absfs *AbsPathFileSystem) Load(fpath string) (io.ReadCloser, error) {
	p, err := absfs.resolve("Load", fpath)
	if err != nil {
		return nil, err
	}
	return absfs.mustBackend().Load(p)
}

func (absfs *AbsPathFileSystem) Exist(fpath string) bool {
	p, err := absfs.ResolvePath(fpath)
	if err != nil {
		return false
	}
	return absfs.mustBackend().Exist(p)
}

func (absfs *AbsPathFileSystem) Store(fpath string) (io.WriteCloser, error) {
	p, err := absfs.resolve("Store", fpath)
	if err != nil {
		return nil, err
	}
	return absfs.mustBackend().Store(p)
}

func (absfs *AbsPathFileSystem) MkdirAll(dir string) error {
	p, err := absfs.resolve("MkdirAll", dir)
	if err != nil {
		return err
	}
	return absfs.mustBackend().MkdirAll(p)
}

func (absfs *AbsPathFileSystem) Rename(oldpath, newpath string) error {
	oldp, err := absfs.resolve("Rename", oldpath)
	if err != nil {
		return err
	}
	newp, err := absfs.resolve("Rename", newpath)
	if err != nil {
		return err
	}
	return absfs.mustBackend().Rename(oldp, newp)
}

func (absfs *AbsPathFileSystem) Remove(fpath string) error {
	p, err := absfs.resolve("Remove", fpath)
	if err != nil {
		return err
	}
	return absfs.mustBackend().Remove(p)
}

func (absfs *AbsPathFileSystem) Stat(fpath string) (fs.FileInfo, error) {
	p, err := absfs.resolve("Stat", fpath)
	if err != nil {
		return nil, err
	}
	return absfs.mustBackend().Stat(p)
}

func (absfs *AbsPathFileSystem) ReadDir(dir string) ([]fs.DirEntry, error) {
	p, err := absfs.resolve("ReadDir", dir)
	if err != nil {
		return nil, err
	}
	return absfs.mustBackend().ReadDir(p)
}
