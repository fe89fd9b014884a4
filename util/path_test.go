package util

import (
	"path/filepath"
	"testing"
)

func TestPathManager(t *testing.T) {
	base, err := filepath.Abs("base")
	if err != nil {
		t.Fatal(err)
	}
	abs, err := filepath.Abs(filepath.Join("other", "..", "abs"))
	if err != nil {
		t.Fatal(err)
	}
	p := NewPathManager(base)

	for _, testcase := range []struct {
		Got    string
		Expect string
	}{
		{p.Path("sav"), filepath.Join(base, "sav")},
		{p.Resolve("sav"), filepath.Join(base, "sav")},
		{p.Resolve(abs), abs},
		{PathManager{}.Resolve("sav"), "sav"},
	} {
		if testcase.Got != testcase.Expect {
			t.Errorf("got %s, expect %s", testcase.Got, testcase.Expect)
		}
	}
}
