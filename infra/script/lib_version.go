package script

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
	"golang.org/x/mod/semver"
)

// version module exposes semantic version helpers to policy scripts.
// Versions without "v" prefix are accepted.
//
// Example:
//
//	version.compare("1.2.0", "v1.10.0") -- -1
//	version.major("1.2.0")              -- "v1"
//	version.valid("dev")                -- false
const versionModuleName = "version"

var versionExports = map[string]lua.LGFunction{
	"compare":    versionCompare,
	"major":      versionMajor,
	"majorminor": versionMajorMinor,
	"valid":      versionValid,
}

func checkVersion(L *lua.LState, i int) string {
	v := L.CheckString(i)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// * version.compare(a, b) returns -1, 0 or +1. Invalid version is less than valid ones.
func versionCompare(L *lua.LState) int {
	L.Push(lua.LNumber(semver.Compare(checkVersion(L, 1), checkVersion(L, 2))))
	return 1
}

// * version.major(v) returns "vN", or empty string for invalid version.
func versionMajor(L *lua.LState) int {
	L.Push(lua.LString(semver.Major(checkVersion(L, 1))))
	return 1
}

// * version.majorminor(v) returns "vN.M", or empty string for invalid version.
func versionMajorMinor(L *lua.LState) int {
	L.Push(lua.LString(semver.MajorMinor(checkVersion(L, 1))))
	return 1
}

func versionValid(L *lua.LState) int {
	L.Push(lua.LBool(semver.IsValid(checkVersion(L, 1))))
	return 1
}
