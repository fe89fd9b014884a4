package repo

import (
	"context"
	"errors"
	"io/fs"
	"sort"

	"github.com/mzki/erasave/save"
	"github.com/mzki/erasave/util/log"
)

// List returns summaries of save files in the save directory, newest first.
// A file whose metadata can not be read is listed with Summary.Err.
// Missing save directory is an empty list.
func (repo *FileRepository) List(ctx context.Context) ([]save.Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return repo.list()
}

func (repo *FileRepository) list() ([]save.Summary, error) {
	const op = "list"
	dir := repo.config.Dir()
	entries, err := repo.fsys.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []save.Summary{}, nil
	}
	if err != nil {
		return nil, save.NewError(save.ErrIO, op, "", err)
	}

	summaries := make([]save.Summary, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name, err := ValidateName(entry.Name())
		if err != nil {
			// temporary files and foreign files.
			if !isTempName(entry.Name()) {
				log.Debugf("repo: list: skip %s: %v", entry.Name(), err)
			}
			continue
		}
		info, err := entry.Info()
		if errors.Is(err, fs.ErrNotExist) {
			continue // removed meanwhile
		}
		if err != nil {
			summaries = append(summaries, save.Summary{Name: name, Err: save.NewError(save.ErrIO, op, name, err)})
			continue
		}

		sm := save.Summary{Name: name, Size: info.Size(), ModTime: info.ModTime()}
		sm.Info, sm.Err = repo.loadMetadata(op, name, repo.config.savePath(name), info)
		summaries = append(summaries, sm)
	}
	sortNewestFirst(summaries)
	return summaries, nil
}

// sortNewestFirst sorts by modification time, newer first, then by name.
func sortNewestFirst(summaries []save.Summary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		ti, tj := summaries[i].ModTime, summaries[j].ModTime
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return summaries[i].Name < summaries[j].Name
	})
}
