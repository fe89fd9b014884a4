package pkg

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"time"
)

// ArchiveAsZipWriter writes files in srcFsys into a zip archive on w.
// Each file is stored as rootName/file. Files are stored without
// compression since save files are compressed already.
func ArchiveAsZipWriter(w io.Writer, rootName string, srcFsys fs.FS, files []string) (err error) {
	if !fs.ValidPath(rootName) || rootName == "." {
		return fmt.Errorf("invalid root name for zip archive: %q", rootName)
	}
	zWriter := zip.NewWriter(w)
	defer func() {
		closeErr := zWriter.Close()
		err = errors.Join(err, closeErr)
	}()

	for _, file := range files {
		// use closure for deferring Close inside each iteration.
		err = func() error {
			srcFile, err := srcFsys.Open(file)
			if err != nil {
				return err
			}
			defer srcFile.Close()

			if err := addFileToZipWriter(zWriter, srcFile, rootName, file); err != nil {
				return fmt.Errorf("failed to add %v into zip: %w", file, err)
			}
			return nil
		}()
		if err != nil {
			return
		}
	}
	return
}

func addFileToZipWriter(zWriter *zip.Writer, srcFile fs.File, rootName string, file string) error {
	finfo, err := srcFile.Stat()
	if err != nil {
		return err
	}
	if !finfo.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %v", file)
	}
	if !fs.ValidPath(file) {
		return fmt.Errorf("invalid file path: %v", file)
	}
	header, err := zip.FileInfoHeader(finfo)
	if err != nil {
		return err
	}
	header.Name = path.Join(rootName, file)
	header.Method = zip.Store
	header.Modified = finfo.ModTime().Truncate(time.Second)

	w, err := zWriter.CreateHeader(header)
	if err != nil {
		return err
	}
	return copyLimited(w, header.Name, srcFile, file)
}
