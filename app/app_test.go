package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mzki/erasave/app/config"
	"github.com/mzki/erasave/infra/buildinfo"
	"github.com/mzki/erasave/infra/repo"
	"github.com/mzki/erasave/infra/serialize/toml"
	"github.com/mzki/erasave/save"
)

const testVersion = "1.0.0"

// newTestTool writes config file for savetool and returns its path
// and a repository on the same save directory.
func newTestTool(t *testing.T, modify func(*config.Config)) (string, *repo.FileRepository) {
	t.Helper()
	dir := t.TempDir()
	appConf := config.NewConfig(dir)
	appConf.Save.EngineVersion = testVersion
	if modify != nil {
		modify(appConf)
	}
	file := filepath.Join(dir, config.ConfigFile)
	if err := toml.EncodeFile(file, appConf); err != nil {
		t.Fatal(err)
	}

	repoConf := appConf.Save
	repoConf.QuickSaveLimit = 0
	repoConf.AutoSaveLimit = 0
	r, err := repo.NewFileRepository(nil, repoConf)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { r.Close() })
	return file, r
}

func runTool(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := NewApp(&stdout, &stderr)
	err := app.RunContext(context.Background(), append([]string{Name}, args...))
	return stdout.String(), stderr.String(), err
}

func putSave(t *testing.T, r *repo.FileRepository, name, version string, kind save.Kind) {
	t.Helper()
	s := save.New(name, version, "Gameplay", json.RawMessage(`{"health":100}`))
	s.Info.Kind = kind
	if err := r.SaveToFile(context.Background(), s); err != nil {
		t.Fatal(err)
	}
}

func TestNewApp(t *testing.T) {
	app := NewApp(&bytes.Buffer{}, &bytes.Buffer{})
	commandNames := make(map[string]bool)
	for _, cmd := range app.Commands {
		commandNames[cmd.Name] = true
	}
	for _, name := range []string{"list", "info", "verify", "cat", "remove", "rotate", "watch", "export", "import", "version"} {
		if !commandNames[name] {
			t.Errorf("missing command: %s", name)
		}
	}
	flagNames := make(map[string]bool)
	for _, flag := range app.Flags {
		flagNames[flag.Names()[0]] = true
	}
	for _, name := range []string{"config", "dir", "loglevel", "logfile"} {
		if !flagNames[name] {
			t.Errorf("missing flag: %s", name)
		}
	}
}

func TestVersion(t *testing.T) {
	file := filepath.Join(t.TempDir(), config.ConfigFile)
	stdout, _, err := runTool(t, "--config", file, "version")
	if err != nil {
		t.Fatal(err)
	}
	if expect := buildinfo.Get().String() + "\n"; stdout != expect {
		t.Errorf("got %q, expect %q", stdout, expect)
	}
	if _, err := os.Stat(file); !os.IsNotExist(err) {
		t.Errorf("version must not generate config file: %v", err)
	}
}

func TestDefaultConfigGenerated(t *testing.T) {
	file := filepath.Join(t.TempDir(), config.ConfigFile)
	stdout, stderr, err := runTool(t, "--config", file, "list")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stderr, "does not exist") {
		t.Errorf("notice of generated config is not shown: %q", stderr)
	}
	if _, err := os.Stat(file); err != nil {
		t.Errorf("config file is not generated: %v", err)
	}
	if strings.TrimSpace(stdout) != "NAME  KIND  VERSION  SIZE  MODIFIED  STATUS" {
		t.Errorf("expect header only, got %q", stdout)
	}
}

func TestList(t *testing.T) {
	file, r := newTestTool(t, nil)
	putSave(t, r, "run1", testVersion, save.Manual)
	putSave(t, r, "セーブ", testVersion, save.QuickSave)
	putSave(t, r, "old", "0.9.0", save.AutoSave)
	if err := os.WriteFile(filepath.Join(r.Config().Dir(), "broken"), []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := runTool(t, "--config", file, "list")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(stdout, "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("expect header and 4 saves, got %q", stdout)
	}
	status := make(map[string]string)
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		status[fields[0]] = fields[len(fields)-1]
	}
	for name, expect := range map[string]string{
		"run1":   "ok",
		"セーブ":    "ok",
		"old":    "incompatible",
		"broken": "corrupt",
	} {
		if got := status[name]; got != expect {
			t.Errorf("%s: got status %q, expect %q", name, got, expect)
		}
	}
}

func TestInfo(t *testing.T) {
	file, r := newTestTool(t, nil)
	putSave(t, r, "run1", testVersion, save.QuickSave)

	stdout, _, err := runTool(t, "--config", file, "info", "run1")
	if err != nil {
		t.Fatal(err)
	}
	for _, expect := range []string{
		"engine version:   " + testVersion,
		"compatible:       true",
		"kind:             QuickSave",
	} {
		if !strings.Contains(stdout, expect) {
			t.Errorf("%q is not found in output:\n%s", expect, stdout)
		}
	}

	_, _, err = runTool(t, "--config", file, "info", "missing")
	if !errors.Is(err, save.ErrNotFound) {
		t.Errorf("expect not found, got %v", err)
	}
	_, _, err = runTool(t, "--config", file, "info")
	if err == nil {
		t.Error("info without NAME must fail")
	}
}

func TestVerify(t *testing.T) {
	file, r := newTestTool(t, nil)
	putSave(t, r, "run1", testVersion, save.Manual)

	stdout, _, err := runTool(t, "--config", file, "verify", "run1")
	if err != nil {
		t.Fatal(err)
	}
	if stdout != "run1: ok\n" {
		t.Errorf("unexpected output %q", stdout)
	}

	putSave(t, r, "old", "0.9.0", save.Manual)
	stdout, _, err = runTool(t, "--config", file, "verify")
	if !errors.Is(err, ErrVerifyFailed) {
		t.Fatalf("expect verify failure, got %v", err)
	}
	if !strings.Contains(stdout, "old: incompatible") || !strings.Contains(stdout, "run1: ok") {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestCat(t *testing.T) {
	file, r := newTestTool(t, nil)
	putSave(t, r, "run1", testVersion, save.Manual)

	stdout, _, err := runTool(t, "--config", file, "cat", "run1", save.InfoEntryName)
	if err != nil {
		t.Fatal(err)
	}
	var md save.Metadata
	if err := json.Unmarshal([]byte(stdout), &md); err != nil {
		t.Fatal(err)
	}
	if md.EngineVersion != testVersion {
		t.Errorf("unexpected info entry %+v", md)
	}

	_, _, err = runTool(t, "--config", file, "cat", "run1", "screenshot.png")
	if !errors.Is(err, save.ErrNotFound) {
		t.Errorf("expect not found, got %v", err)
	}
}

func TestRotateAndRemove(t *testing.T) {
	file, r := newTestTool(t, func(c *config.Config) { c.Save.QuickSaveLimit = 1 })
	base := time.Now().Add(-time.Hour)
	for i, name := range []string{"q1", "q2", "q3"} {
		putSave(t, r, name, testVersion, save.QuickSave)
		modTime := base.Add(time.Duration(i) * time.Minute)
		if err := os.Chtimes(filepath.Join(r.Config().Dir(), name), modTime, modTime); err != nil {
			t.Fatal(err)
		}
	}

	stdout, _, err := runTool(t, "--config", file, "rotate", "QuickSave")
	if err != nil {
		t.Fatal(err)
	}
	if stdout != "removed q2\nremoved q1\n" {
		t.Errorf("unexpected output %q", stdout)
	}

	if _, _, err := runTool(t, "--config", file, "rotate", "Unknown"); err == nil {
		t.Error("unknown kind must fail")
	}

	if _, _, err := runTool(t, "--config", file, "remove", "q3"); err != nil {
		t.Fatal(err)
	}
	if r.Exist(context.Background(), "q3") {
		t.Error("q3 must be removed")
	}
}

func TestExportImport(t *testing.T) {
	file, r := newTestTool(t, nil)
	putSave(t, r, "run1", testVersion, save.Manual)
	putSave(t, r, "run2", testVersion, save.Manual)
	bundle := filepath.Join(t.TempDir(), "saves.zip")

	stdout, _, err := runTool(t, "--config", file, "export", bundle)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(stdout, "exported 2 saves") {
		t.Errorf("unexpected output %q", stdout)
	}

	dstDir := t.TempDir()
	stdout, _, err = runTool(t, "--config", file, "--dir", dstDir, "import", bundle)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"run1", "run2"} {
		if !strings.Contains(stdout, "imported "+name+"\n") {
			t.Errorf("%s is not reported in %q", name, stdout)
		}
		if _, err := os.Stat(filepath.Join(dstDir, name)); err != nil {
			t.Errorf("%s is not imported: %v", name, err)
		}
	}
}
