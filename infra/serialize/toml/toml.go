// Package toml reads and writes configuration files in TOML.
package toml

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"

	"github.com/mzki/erasave/filesystem"
	"github.com/mzki/erasave/util/log"
)

// encode data to Writer.
func Encode(w io.Writer, data interface{}) error {
	enc := toml.NewEncoder(w)
	return enc.Encode(data)
}

// encode data to file on the default filesystem.
func EncodeFile(file string, data interface{}) error {
	return EncodeFileFS(filesystem.Default, file, data)
}

// EncodeFileFS encodes data to file on fsys.
func EncodeFileFS(fsys filesystem.FileSystem, file string, data interface{}) (err error) {
	fp, err := fsys.Store(file)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := fp.Close(); err == nil {
			err = closeErr
		}
	}()
	return Encode(fp, data)
}

// decode from reader and store it to data.
// Unknown keys are logged and ignored.
func Decode(r io.Reader, data interface{}) error {
	meta, err := toml.NewDecoder(r).Decode(data)
	if err != nil {
		return err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		log.Infoln("toml.Decode:", "undecoded keys exist,", undecoded)
	}
	return nil
}

// decode from file on the default filesystem and store it to data.
func DecodeFile(file string, data interface{}) error {
	return DecodeFileFS(filesystem.Default, file, data)
}

// DecodeFileFS decodes file on loader and store it to data.
func DecodeFileFS(loader filesystem.Loader, file string, data interface{}) error {
	fp, err := loader.Load(file)
	if err != nil {
		return err
	}
	defer fp.Close()
	if err := Decode(fp, data); err != nil {
		return fmt.Errorf("toml: %s: %w", file, err)
	}
	return nil
}
