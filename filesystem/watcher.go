package filesystem

import (
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Export some types and values so that user need not import underlying package explicitly
type WatchEvent = fsnotify.Event
type WatchOp = fsnotify.Op

const (
	WatchOpCreate = fsnotify.Create
	WatchOpWrite  = fsnotify.Write
	WatchOpRemove = fsnotify.Remove
	WatchOpRename = fsnotify.Rename
	WatchOpChmod  = fsnotify.Chmod
)

// Watcher notifies changes of watched files or directories.
// Events on the same path within a short period are coalesced
// into one event whose Op has all of the observed operations.
type Watcher interface {
	Watch(path string) error
	UnWatch(path string) error
	Events() <-chan WatchEvent
	Errors() <-chan error
	Close() error
}

// DefaultCoalescePeriod is the period to merge events on the same path.
const DefaultCoalescePeriod = 100 * time.Millisecond

type watcherImpl struct {
	w            *fsnotify.Watcher
	pathResolver PathResolver
	period       time.Duration

	events    chan WatchEvent
	errors    chan error
	done      chan struct{}
	closeOnce sync.Once
}

func newWatcher(pr PathResolver) (Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("NewWatcher failed by backend fsnotify.NewWatcher(): %w", err)
	}
	wi := &watcherImpl{
		w:            w,
		pathResolver: pr,
		period:       DefaultCoalescePeriod,
		events:       make(chan WatchEvent),
		errors:       make(chan error),
		done:         make(chan struct{}),
	}
	go wi.eventLoop()
	return wi, nil
}

func (wi *watcherImpl) eventLoop() {
	defer func() {
		close(wi.events)
		close(wi.errors)
	}()

	// The backend fires several events for one save, e.g. CREATE then WRITE.
	// pending merges them per path and publishes after the period.
	pending := make(map[string]WatchOp)
	order := make([]string, 0, 4)
	var flush <-chan time.Time
	for {
		select {
		case <-wi.done:
			return
		case ev, ok := <-wi.w.Events:
			if !ok {
				return
			}
			if _, exist := pending[ev.Name]; !exist {
				order = append(order, ev.Name)
			}
			pending[ev.Name] |= ev.Op
			flush = time.After(wi.period)
		case err, ok := <-wi.w.Errors:
			if !ok {
				return
			}
			select {
			case wi.errors <- err:
			case <-wi.done:
				return
			}
		case <-flush:
			flush = nil
			for _, name := range order {
				select {
				case wi.events <- WatchEvent{Name: name, Op: pending[name]}:
				case <-wi.done:
					return
				}
				delete(pending, name)
			}
			order = order[:0]
		}
	}
}

func (wi *watcherImpl) Close() error {
	var err error
	wi.closeOnce.Do(func() {
		close(wi.done)
		err = wi.w.Close()
	})
	return err
}

func (wi *watcherImpl) Watch(path string) error {
	p, err := wi.pathResolver.ResolvePath(path)
	if err != nil {
		return fmt.Errorf("failed to Watch(%s): %w", path, err)
	}
	return wi.w.Add(p)
}

func (wi *watcherImpl) UnWatch(path string) error {
	p, err := wi.pathResolver.ResolvePath(path)
	if err != nil {
		return fmt.Errorf("failed to UnWatch(%s): %w", path, err)
	}
	return wi.w.Remove(p)
}

func (wi *watcherImpl) Events() <-chan WatchEvent { return wi.events }
func (wi *watcherImpl) Errors() <-chan error      { return wi.errors }
