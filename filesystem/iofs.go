package filesystem

import (
	"io"
	"io/fs"
	"path/filepath"
)

// DirFS returns read only fs.FS for files under dir on fsys.
// It is used to pass files on FileSystem into APIs accepting fs.FS.
func DirFS(fsys FileSystem, dir string) fs.FS {
	return &dirFS{fsys: fsys, dir: dir}
}

type dirFS struct {
	fsys FileSystem
	dir  string
}

func (d *dirFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	path := filepath.Join(d.dir, filepath.FromSlash(name))
	info, err := d.fsys.Stat(path)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	if info.IsDir() {
		return &dirFSFile{info: info}, nil
	}
	r, err := d.fsys.Load(path)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return &dirFSFile{ReadCloser: r, info: info}, nil
}

// dirFSFile is a fs.File backed by Loader. Directory has no content.
type dirFSFile struct {
	io.ReadCloser
	info fs.FileInfo
}

func (f *dirFSFile) Stat() (fs.FileInfo, error) { return f.info, nil }

func (f *dirFSFile) Read(p []byte) (int, error) {
	if f.ReadCloser == nil {
		return 0, &fs.PathError{Op: "read", Path: f.info.Name(), Err: fs.ErrInvalid}
	}
	return f.ReadCloser.Read(p)
}

func (f *dirFSFile) Close() error {
	if f.ReadCloser == nil {
		return nil
	}
	return f.ReadCloser.Close()
}
