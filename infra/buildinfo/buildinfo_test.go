package buildinfo

import (
	"os"
	"reflect"
	"runtime/debug"
	"testing"
)

func TestGetWithoutCompileTimeInfo(t *testing.T) {
	if os.Getenv("GOTEST_BUILDINFO_COMPILE_TIME_INFO") == "true" {
		t.Skip("Without compile time information test is skipped")
	}
	backup := readBuildInfo
	defer func() { readBuildInfo = backup }()

	tests := []struct {
		name      string
		mainVer   string
		available bool
		want      BuildInfo
	}{
		{name: "no buildinfo", available: false, want: BuildInfo{Version: "dev", CommitHash: "none"}},
		{name: "devel module", mainVer: develVersion, available: true, want: BuildInfo{Version: "dev", CommitHash: "none"}},
		{name: "installed module", mainVer: "v1.4.0", available: true, want: BuildInfo{Version: "v1.4.0", CommitHash: "none"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			readBuildInfo = func() (*debug.BuildInfo, bool) {
				if !tt.available {
					return nil, false
				}
				return &debug.BuildInfo{Main: debug.Module{Version: tt.mainVer}}, true
			}
			if got := Get(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Get() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetWithCompileTimeInfo(t *testing.T) {
	if os.Getenv("GOTEST_BUILDINFO_COMPILE_TIME_INFO") != "true" {
		t.Skip("With compile time information test is skipped")
	}
	want := BuildInfo{Version: "v1.0.0", CommitHash: "34567#"}
	if got := Get(); !reflect.DeepEqual(got, want) {
		t.Errorf("Get() = %v, want %v", got, want)
	}
	if got := want.String(); got != "v1.0.0-34567#" {
		t.Errorf("String() = %v", got)
	}
}
