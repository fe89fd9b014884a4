package repo

import (
	"context"
	"errors"

	"github.com/mzki/erasave/save"
	"github.com/mzki/erasave/util/log"
)

// Rotate removes old saves of kind exceeding the limit in Config, and
// returns names of the removed saves. Manual saves are never rotated,
// and neither are files whose metadata can not be read.
func (repo *FileRepository) Rotate(ctx context.Context, kind save.Kind) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return repo.rotate(kind, "")
}

// rotate removes old saves of kind. A save named keep is never removed
// and takes one of the kept slots whatever its modification time is.
func (repo *FileRepository) rotate(kind save.Kind, keep string) ([]string, error) {
	const op = "rotate"
	limit := repo.config.limitOf(kind)
	if kind == save.Manual || limit <= 0 {
		return nil, nil
	}

	summaries, err := repo.list()
	if err != nil {
		return nil, err
	}
	var (
		kept    int
		removed []string
		errs    []error
	)
	if keep != "" {
		kept++
	}
	// summaries are sorted newest first.
	for _, sm := range summaries {
		if sm.Err != nil || sm.Info.Kind != kind || sm.Name == keep {
			continue
		}
		if kept < limit {
			kept++
			continue
		}
		if err := repo.remove(op, sm.Name); err != nil {
			if errors.Is(err, save.ErrNotFound) {
				continue
			}
			errs = append(errs, err)
			continue
		}
		log.Infof("repo: rotated out %v save %s", kind, sm.Name)
		removed = append(removed, sm.Name)
	}
	return removed, errors.Join(errs...)
}
