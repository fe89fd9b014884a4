package pkg

import (
	"archive/zip"
	"bytes"
	"io"
	"io/fs"
	"reflect"
	"testing"
	"testing/fstest"
	"time"
)

var testZipArchiveFS = fstest.MapFS{
	"run1":          {Data: []byte("run1-content"), ModTime: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
	"quick":         {Data: []byte("quick-content")},
	"セーブ01":         {Data: []byte("マルチバイト文字-content")},
	"dir/ignored":   {Data: []byte("nested")},
	"empty-content": {Data: []byte{}},
}

func walkAll(t *testing.T, bs []byte) map[string]string {
	t.Helper()
	got := make(map[string]string)
	err := WalkZip(bytes.NewReader(bs), int64(len(bs)), func(e ZipEntry, src io.Reader) error {
		content, err := io.ReadAll(src)
		if err != nil {
			return err
		}
		if int64(len(content)) != e.Size {
			t.Errorf("%s: size %d, read %d", e.Name, e.Size, len(content))
		}
		got[e.Name] = string(content)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return got
}

func TestArchiveAndWalkZip(t *testing.T) {
	files := []string{"run1", "quick", "セーブ01", "empty-content"}
	var buf bytes.Buffer
	if err := ArchiveAsZipWriter(&buf, "saves", testZipArchiveFS, files); err != nil {
		t.Fatal(err)
	}

	got := walkAll(t, buf.Bytes())
	expect := map[string]string{
		"run1":          "run1-content",
		"quick":         "quick-content",
		"セーブ01":         "マルチバイト文字-content",
		"empty-content": "",
	}
	if !reflect.DeepEqual(got, expect) {
		t.Errorf("got %v, expect %v", got, expect)
	}

	// stored under the root directory with modification time.
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range zr.File {
		if f.Name == "saves/run1" && !f.Modified.Equal(testZipArchiveFS["run1"].ModTime) {
			t.Errorf("modification time is not kept: %v", f.Modified)
		}
	}
}

func TestArchiveAsZipWriterError(t *testing.T) {
	for _, testcase := range []struct {
		Name     string
		RootName string
		Files    []string
	}{
		{"empty root", "", []string{"run1"}},
		{"upper root", "../saves", []string{"run1"}},
		{"missing file", "saves", []string{"missing"}},
		{"directory", "saves", []string{"dir"}},
		{"upper file", "saves", []string{"../run1"}},
	} {
		t.Run(testcase.Name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := ArchiveAsZipWriter(&buf, testcase.RootName, testZipArchiveFS, testcase.Files); err == nil {
				t.Error("expect error, got nil")
			}
		})
	}
}

func TestWalkZipRejectsZipSlip(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("../evil")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("evil")); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	called := false
	err = WalkZip(bytes.NewReader(buf.Bytes()), int64(buf.Len()), func(ZipEntry, io.Reader) error {
		called = true
		return nil
	})
	if err == nil || called {
		t.Errorf("zip slip entry must be rejected before callback, err %v", err)
	}
}

func TestWalkZipNotZip(t *testing.T) {
	bs := []byte("not a zip")
	if err := WalkZip(bytes.NewReader(bs), int64(len(bs)), func(ZipEntry, io.Reader) error { return nil }); err == nil {
		t.Error("expect error for non zip content")
	}
}

var _ fs.FS = testZipArchiveFS
