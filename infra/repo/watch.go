package repo

import (
	"context"
	"path/filepath"

	"github.com/mzki/erasave/filesystem"
	"github.com/mzki/erasave/save"
	"github.com/mzki/erasave/util/log"
)

// Watch notifies changes of saves in the save directory until ctx is done.
// The save directory is created if not exist. The returned channel is
// closed when watching ends.
func (repo *FileRepository) Watch(ctx context.Context) (<-chan save.Event, error) {
	const op = "watch"
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := repo.ensureDir(); err != nil {
		return nil, save.NewError(save.ErrIO, op, "", err)
	}
	w, err := filesystem.OpenWatcher(repo.fsys)
	if err != nil {
		return nil, save.NewError(save.ErrIO, op, "", err)
	}
	dir := repo.config.Dir()
	if err := w.Watch(dir); err != nil {
		w.Close()
		return nil, save.NewError(save.ErrIO, op, "", err)
	}

	events := make(chan save.Event)
	go func() {
		defer close(events)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events():
				if !ok {
					return
				}
				sev, ok := repo.toSaveEvent(ev)
				if !ok {
					continue
				}
				select {
				case events <- sev:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.Errors():
				if !ok {
					return
				}
				log.Infof("repo: watch %s: %v", dir, err)
			}
		}
	}()
	return events, nil
}

// toSaveEvent converts a filesystem event. Temporary and foreign files
// are filtered out. Cached metadata of the file is dropped.
func (repo *FileRepository) toSaveEvent(ev filesystem.WatchEvent) (save.Event, bool) {
	base := filepath.Base(ev.Name)
	name, err := ValidateName(base)
	if err != nil {
		return save.Event{}, false
	}
	repo.cache.Remove(name)

	var op save.EventOp
	switch {
	case ev.Op&(filesystem.WatchOpRemove|filesystem.WatchOpRename) != 0 && !repo.fsys.Exist(repo.config.savePath(name)):
		op = save.EventRemove
	case ev.Op&filesystem.WatchOpCreate != 0:
		op = save.EventCreate
	case ev.Op&(filesystem.WatchOpWrite|filesystem.WatchOpRename) != 0:
		op = save.EventWrite
	default:
		return save.Event{}, false
	}
	log.Debugf("repo: watch: %s %v", name, op)
	return save.Event{Name: name, Op: op}, true
}
