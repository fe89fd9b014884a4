// Package util provides small helpers shared by packages.
package util

import (
	"path/filepath"
)

// PathManager serves paths under its base directory.
// Zero value uses the current directory as base.
type PathManager struct {
	baseDir string
}

// construct new path manager.
func NewPathManager(baseDir string) PathManager {
	return PathManager{baseDir}
}

// return path of baseDir/file.
func (p PathManager) Path(file string) string {
	return filepath.Join(p.baseDir, file)
}

// Resolve returns cleaned path itself if it is absolute,
// otherwise path under the base directory.
func (p PathManager) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return p.Path(path)
}
