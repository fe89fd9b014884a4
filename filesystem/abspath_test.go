package filesystem

import (
	"io"
	"path/filepath"
	"testing"
)

const AbsLoadSource = "abspath_test.go"

func TestAbsDirFileSystem(t *testing.T) {
	dirPath, err := filepath.Abs("./")
	if err != nil {
		t.Fatal(err)
	}
	dirFs := AbsDirFileSystem(dirPath)
	reader, err := dirFs.Load(AbsLoadSource)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()
}

func TestAbsDirFileSystemAtUnknownLocation(t *testing.T) {
	const unknownDir = "/path/to/unknown"
	dirFs := AbsDirFileSystem(unknownDir)
	reader, err := dirFs.Load(AbsLoadSource)
	if err == nil {
		defer reader.Close()
		t.Fatalf("Expected to raise some error for unknown path(%v), but no error", filepath.Join(unknownDir, AbsLoadSource))
	}
}

func TestAbsPathFileSystemRelativeCurrentDir(t *testing.T) {
	absfs := &AbsPathFileSystem{CurrentDir: "relative/dir"}
	if _, err := absfs.ResolvePath("file"); err == nil {
		t.Error("relative CurrentDir must be rejected")
	}
	if absfs.Exist(AbsLoadSource) {
		t.Error("Exist must be false for unresolvable path")
	}
}

func TestAbsPathFileSystemStore(t *testing.T) {
	base := t.TempDir()
	absfs := AbsDirFileSystem(base)

	if err := absfs.MkdirAll("sav"); err != nil {
		t.Fatal(err)
	}
	w, err := absfs.Store(filepath.Join("sav", "tmp"))
	if err != nil {
		t.Fatal(err)
	}
	io.WriteString(w, "data")
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := absfs.Rename(filepath.Join("sav", "tmp"), filepath.Join("sav", "run1")); err != nil {
		t.Fatal(err)
	}

	// the file must be placed under base.
	if !Desktop.Exist(filepath.Join(base, "sav", "run1")) {
		t.Fatal("stored file is not placed under CurrentDir")
	}
	entries, err := absfs.ReadDir("sav")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expect 1 entry, got %v", len(entries))
	}
	if _, err := absfs.Stat(filepath.Join("sav", "run1")); err != nil {
		t.Error(err)
	}
	if err := absfs.Remove(filepath.Join("sav", "run1")); err != nil {
		t.Error(err)
	}
}

func TestResolvePathFS(t *testing.T) {
	base := t.TempDir()
	got, err := ResolvePathFS(AbsDirFileSystem(base), "sav")
	if err != nil {
		t.Fatal(err)
	}
	if expect := filepath.Join(base, "sav"); got != expect {
		t.Errorf("got %v, expect %v", got, expect)
	}
}
