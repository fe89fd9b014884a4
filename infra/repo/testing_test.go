package repo

import (
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/mzki/erasave/filesystem"
	"github.com/mzki/erasave/infra/archive"
	"github.com/mzki/erasave/save"
)

func newTestConfig(t *testing.T, version string) Config {
	t.Helper()
	config := NewConfig(t.TempDir())
	config.EngineVersion = version
	return config
}

func newTestRepo(t *testing.T, config Config, opts ...Option) *FileRepository {
	t.Helper()
	repo, err := NewFileRepository(filesystem.Desktop, config, opts...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTestSave(name, version string, kind save.Kind, props string) *save.Save {
	s := save.New(name, version, "Gameplay", json.RawMessage(props))
	s.Info.Kind = kind
	return s
}

// writeRawArchive writes an archive of entries as a save file named name.
func writeRawArchive(t *testing.T, config Config, name string, entries ...archive.EntryData) {
	t.Helper()
	if err := os.MkdirAll(config.Dir(), 0755); err != nil {
		t.Fatal(err)
	}
	fp, err := os.Create(config.savePath(name))
	if err != nil {
		t.Fatal(err)
	}
	defer fp.Close()
	if err := archive.WriteEntries(fp, entries); err != nil {
		t.Fatal(err)
	}
}

func infoEntry(t *testing.T, version string) archive.EntryData {
	t.Helper()
	md := save.Metadata{EngineVersion: version, Platform: "test/test", Kind: save.Manual}
	bs, err := json.Marshal(md)
	if err != nil {
		t.Fatal(err)
	}
	return archive.EntryData{Name: save.InfoEntryName, Data: bs}
}

func saveEntry(t *testing.T, version, props string) archive.EntryData {
	t.Helper()
	s := newTestSave("", version, save.Manual, props)
	bs, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	return archive.EntryData{Name: save.SaveEntryName, Data: bs}
}

func assertKind(t *testing.T, err error, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("expect error kind %v, got %v", kind, err)
	}
}
