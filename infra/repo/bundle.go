package repo

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/mzki/erasave/filesystem"
	"github.com/mzki/erasave/infra/archive"
	"github.com/mzki/erasave/infra/pkg"
	"github.com/mzki/erasave/save"
	"github.com/mzki/erasave/util/log"
)

// BundleRootName is the root directory of saves in a bundle.
const BundleRootName = "saves"

// Export writes saves named names into w as a zip bundle, and returns
// the exported names. Empty names means all readable saves.
func (repo *FileRepository) Export(ctx context.Context, w io.Writer, names ...string) ([]string, error) {
	const op = "export"
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var targets []string
	if len(names) == 0 {
		summaries, err := repo.list()
		if err != nil {
			return nil, err
		}
		for _, sm := range summaries {
			if sm.Err != nil {
				log.Infof("repo: export: skip %s: %v", sm.Name, sm.Err)
				continue
			}
			targets = append(targets, sm.Name)
		}
	} else {
		seen := make(map[string]bool, len(names))
		for _, name := range names {
			validName, err := ValidateName(name)
			if err != nil {
				return nil, save.NewError(save.ErrInvalidName, op, name, err)
			}
			if seen[validName] {
				continue
			}
			seen[validName] = true
			if _, err := repo.stat(op, validName, repo.config.savePath(validName)); err != nil {
				return nil, err
			}
			targets = append(targets, validName)
		}
	}

	src := filesystem.DirFS(repo.fsys, repo.config.Dir())
	if err := pkg.ArchiveAsZipWriter(w, BundleRootName, src, targets); err != nil {
		return nil, save.NewError(save.ErrIO, op, "", err)
	}
	log.Debugf("repo: exported %d saves", len(targets))
	return targets, nil
}

// Import stores saves in a zip bundle read from r, and returns the
// imported names. Every save in the bundle is verified before any
// file is written. Existing saves are kept unless overwrite is true.
// Saves made by any engine version are imported.
//
// The bundle is walked twice, once to verify and once to write, so that
// bundle files are streamed rather than held in memory.
func (repo *FileRepository) Import(ctx context.Context, r io.ReaderAt, size int64, overwrite bool) ([]string, error) {
	const op = "import"
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var names []string
	seen := make(map[string]bool)
	err := pkg.WalkZip(r, size, func(e pkg.ZipEntry, src io.Reader) error {
		name, err := ValidateName(e.Name)
		if err != nil {
			return save.NewError(save.ErrInvalidName, op, e.Name, err)
		}
		if seen[name] {
			return save.NewError(save.ErrInvalidName, op, name, errors.New("duplicate save in bundle"))
		}
		seen[name] = true
		if err := verifyArchive(op, name, src, repo.opts); err != nil {
			return err
		}
		names = append(names, name)
		return nil
	})
	if err != nil {
		return nil, bundleError(op, err)
	}

	if err := repo.ensureDir(); err != nil {
		return nil, save.NewError(save.ErrIO, op, "", err)
	}
	imported := make([]string, 0, len(names))
	err = pkg.WalkZip(r, size, func(e pkg.ZipEntry, src io.Reader) error {
		name, err := ValidateName(e.Name)
		if err != nil || !seen[name] {
			return fmt.Errorf("bundle changed while importing: %q", e.Name)
		}
		path := repo.config.savePath(name)
		if !overwrite && repo.fsys.Exist(path) {
			log.Infof("repo: import: %s already exists, skipped", name)
			return nil
		}
		if err := repo.writeFile(path, func(w io.Writer) error {
			_, err := io.Copy(w, src)
			return err
		}); err != nil {
			return save.NewError(save.ErrIO, op, name, err)
		}
		repo.cache.Remove(name)
		imported = append(imported, name)
		return nil
	})
	if err != nil {
		var serr *save.Error
		if !errors.As(err, &serr) {
			err = save.NewError(save.ErrIO, op, "", err)
		}
		return imported, err
	}
	log.Debugf("repo: imported %d saves", len(imported))
	return imported, nil
}

// bundleError classifies errors from verifying a bundle. Problems which are
// not classified yet come from the zip framing.
func bundleError(op string, err error) error {
	var serr *save.Error
	if errors.As(err, &serr) {
		return err
	}
	return save.NewError(save.ErrCorruptArchive, op, "", fmt.Errorf("invalid bundle: %w", err))
}

// verifyArchive checks r is a complete save archive without
// the compatibility check. Only info.json and save.json are kept in memory.
func verifyArchive(op, name string, r io.Reader, opts []archive.Option) error {
	ix, err := archive.ReadIndex(r, []string{save.InfoEntryName, save.SaveEntryName}, opts...)
	if err != nil {
		// the source is a bundle entry. its failure means a broken bundle.
		return save.NewError(save.ErrCorruptArchive, op, name, err)
	}
	info, err := ix.Get(save.InfoEntryName)
	if err != nil {
		return save.NewError(save.ErrCorruptArchive, op, name, errMissingInfo)
	}
	if _, err := decodeMetadata(info); err != nil {
		return save.NewError(save.ErrCorruptArchive, op, name, fmt.Errorf("decode %s: %w", save.InfoEntryName, err))
	}
	if _, err := ix.Get(save.SaveEntryName); err != nil {
		return save.NewError(save.ErrCorruptArchive, op, name, errMissingSave)
	}
	return nil
}
