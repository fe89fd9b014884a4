package filesystem

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherCoalesceEvents(t *testing.T) {
	dir := t.TempDir()
	watcher, err := OpenWatcher(Desktop)
	if err != nil {
		t.Fatal(err)
	}
	defer watcher.Close()

	if err := watcher.Watch(dir); err != nil {
		t.Fatal(err)
	}

	target := filepath.Join(dir, "run1")
	if err := os.WriteFile(target, []byte("first"), 0644); err != nil {
		t.Fatal(err)
	}

	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-watcher.Events():
			if ev.Name != target {
				continue
			}
			if !ev.Has(WatchOpCreate) {
				t.Errorf("expect create op in coalesced event, got %v", ev.Op)
			}
			return
		case err := <-watcher.Errors():
			t.Fatal(err)
		case <-timeout:
			t.Fatal("timeout waiting for event")
		}
	}
}

func TestWatcherCloseTwice(t *testing.T) {
	watcher, err := OpenWatcher(Desktop)
	if err != nil {
		t.Fatal(err)
	}
	if err := watcher.Close(); err != nil {
		t.Fatal(err)
	}
	watcher.Close()

	// channels are closed by the event loop.
	select {
	case _, ok := <-watcher.Events():
		if ok {
			t.Error("events channel must be closed")
		}
	case <-time.After(5 * time.Second):
		t.Error("events channel is not closed after Close")
	}
}
