package repo

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaxNameBytes is the maximum length of a save name in bytes after
// normalization. It leaves room for the temporary file decoration
// within the common 255 bytes limit of file names.
const MaxNameBytes = 200

const tempSuffix = ".tmp"

var (
	errEmptyName    = errors.New("empty name")
	errNameTooLong  = fmt.Errorf("name exceeds %d bytes", MaxNameBytes)
	errNameEncoding = errors.New("name is not valid UTF-8")
	errHiddenName   = errors.New("name must not start with '.'")
	errNameChar     = errors.New("name contains path separator or control character")
	errNotLocal     = errors.New("name is not a local file name")
)

// ValidateName checks name can be a save name, and returns
// its canonical form, normalized to Unicode NFC.
// It never touches the filesystem.
func ValidateName(name string) (string, error) {
	if name == "" {
		return "", errEmptyName
	}
	if !utf8.ValidString(name) {
		return "", errNameEncoding
	}
	name = norm.NFC.String(name)
	if len(name) > MaxNameBytes {
		return "", errNameTooLong
	}
	// also covers "." and "..".
	if strings.HasPrefix(name, ".") {
		return "", errHiddenName
	}
	for _, r := range name {
		if r == '/' || r == '\\' || r == os.PathSeparator || unicode.IsControl(r) {
			return "", errNameChar
		}
	}
	// reserved names on some platforms, e.g. NUL on windows.
	if !filepath.IsLocal(name) || filepath.Base(name) != name {
		return "", errNotLocal
	}
	return name, nil
}

// tempPath returns a hidden sibling path of path which never
// collides with valid save names.
func tempPath(path string) (string, error) {
	var b [6]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("can not generate temporary name: %w", err)
	}
	dir, base := filepath.Split(path)
	return filepath.Join(dir, "."+base+"."+hex.EncodeToString(b[:])+tempSuffix), nil
}

func isTempName(name string) bool {
	return strings.HasPrefix(name, ".") && strings.HasSuffix(name, tempSuffix)
}
