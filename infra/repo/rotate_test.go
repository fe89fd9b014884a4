package repo

import (
	"context"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/mzki/erasave/save"
)

func TestRotate(t *testing.T) {
	ctx := context.Background()
	config := newTestConfig(t, "1.0.0")
	// no rotation while preparing.
	config.QuickSaveLimit = 0
	config.AutoSaveLimit = 0
	writer := newTestRepo(t, config)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	saves := []struct {
		Name string
		Kind save.Kind
	}{
		{"q1", save.QuickSave},
		{"q2", save.QuickSave},
		{"q3", save.QuickSave},
		{"q4", save.QuickSave},
		{"a1", save.AutoSave},
		{"m1", save.Manual},
		{"m2", save.Manual},
	}
	for i, s := range saves {
		if err := writer.SaveToFile(ctx, newTestSave(s.Name, "1.0.0", s.Kind, `{}`)); err != nil {
			t.Fatal(err)
		}
		setModTime(t, config, s.Name, base.Add(time.Duration(i)*time.Minute))
	}

	config.QuickSaveLimit = 2
	config.AutoSaveLimit = 1
	repo := newTestRepo(t, config)

	removed, err := repo.Rotate(ctx, save.QuickSave)
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(removed)
	if expect := []string{"q1", "q2"}; !reflect.DeepEqual(removed, expect) {
		t.Errorf("removed %v, expect %v", removed, expect)
	}
	for _, name := range []string{"q3", "q4", "a1", "m1", "m2"} {
		if !repo.Exist(ctx, name) {
			t.Errorf("%s must be kept", name)
		}
	}

	for _, kind := range []save.Kind{save.AutoSave, save.Manual} {
		removed, err := repo.Rotate(ctx, kind)
		if err != nil {
			t.Fatal(err)
		}
		if len(removed) != 0 {
			t.Errorf("%v: nothing to remove, got %v", kind, removed)
		}
	}
}

func TestSaveRotatesSameKind(t *testing.T) {
	ctx := context.Background()
	config := newTestConfig(t, "1.0.0")
	config.QuickSaveLimit = 1
	repo := newTestRepo(t, config)

	old := time.Now().Add(-time.Hour)
	for _, name := range []string{"m1", "q1"} {
		kind := save.Manual
		if name == "q1" {
			kind = save.QuickSave
		}
		if err := repo.SaveToFile(ctx, newTestSave(name, "1.0.0", kind, `{}`)); err != nil {
			t.Fatal(err)
		}
		setModTime(t, config, name, old)
	}

	if err := repo.SaveToFile(ctx, newTestSave("q2", "1.0.0", save.QuickSave, `{}`)); err != nil {
		t.Fatal(err)
	}
	if repo.Exist(ctx, "q1") {
		t.Error("older quick save must be rotated out")
	}
	for _, name := range []string{"q2", "m1"} {
		if !repo.Exist(ctx, name) {
			t.Errorf("%s must be kept", name)
		}
	}
}

func TestSaveKeepsWrittenSaveOnRotation(t *testing.T) {
	ctx := context.Background()
	future := time.Now().Add(time.Minute)
	for _, testcase := range []struct {
		Name     string
		Limit    int
		Siblings []string
		Kept     []string
		Removed  []string
	}{
		{"limit 1", 1, []string{"q1"}, []string{"q3"}, []string{"q1"}},
		{"limit 2", 2, []string{"q1", "q2"}, []string{"q2", "q3"}, []string{"q1"}},
	} {
		t.Run(testcase.Name, func(t *testing.T) {
			config := newTestConfig(t, "1.0.0")
			config.QuickSaveLimit = testcase.Limit
			repo := newTestRepo(t, config)
			// siblings are newer than the save written later.
			for i, name := range testcase.Siblings {
				if err := repo.SaveToFile(ctx, newTestSave(name, "1.0.0", save.QuickSave, `{}`)); err != nil {
					t.Fatal(err)
				}
				setModTime(t, config, name, future.Add(time.Duration(i)*time.Minute))
			}

			if err := repo.SaveToFile(ctx, newTestSave("q3", "1.0.0", save.QuickSave, `{"n":3}`)); err != nil {
				t.Fatal(err)
			}
			s, err := repo.LoadFromFile(ctx, "q3")
			if err != nil {
				t.Fatalf("written save must be loadable: %v", err)
			}
			if string(s.SavedProperties) != `{"n":3}` {
				t.Errorf("unexpected payload %s", s.SavedProperties)
			}
			for _, name := range testcase.Kept {
				if !repo.Exist(ctx, name) {
					t.Errorf("%s must be kept", name)
				}
			}
			for _, name := range testcase.Removed {
				if repo.Exist(ctx, name) {
					t.Errorf("%s must be rotated out", name)
				}
			}
		})
	}
}

func TestRotateKeepsUnreadableFiles(t *testing.T) {
	ctx := context.Background()
	config := newTestConfig(t, "1.0.0")
	config.QuickSaveLimit = 1
	repo := newTestRepo(t, config)

	for _, name := range []string{"q1", "q2"} {
		if err := repo.SaveToFile(ctx, newTestSave(name, "1.0.0", save.QuickSave, `{}`)); err != nil {
			t.Fatal(err)
		}
	}
	writeRawArchive(t, config, "unreadable")

	if _, err := repo.Rotate(ctx, save.QuickSave); err != nil {
		t.Fatal(err)
	}
	if !repo.Exist(ctx, "unreadable") {
		t.Error("file without metadata must not be rotated")
	}
}
