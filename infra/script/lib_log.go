package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/mzki/erasave/util/log"
)

// log module lets policy scripts write into the application log.
//
// Example:
//
//	log.info("saved by", saved)
//	log.debugf("running %s", running)
const loggerModuleName = "log"

var loggerExports = map[string]lua.LGFunction{
	"debug":  logDebug,
	"debugf": logDebugf,
	"info":   logInfo,
	"infof":  logInfof,
}

func logValues(L *lua.LState, start int) []interface{} {
	n := L.GetTop()
	if start > n {
		return nil
	}
	vs := make([]interface{}, 0, n-start+1)
	for i := start; i <= n; i++ {
		vs = append(vs, L.Get(i).String())
	}
	return vs
}

func logHeader(L *lua.LState) string {
	// level 1 is the lua function calling this.
	if dbg, ok := L.GetStack(1); ok {
		if _, err := L.GetInfo("Sl", dbg, lua.LNil); err == nil {
			return fmt.Sprintf("script: %s:%d:", dbg.Source, dbg.CurrentLine)
		}
	}
	return "script:"
}

func logInfo(L *lua.LState) int {
	log.Infoln(append([]interface{}{logHeader(L)}, logValues(L, 1)...)...)
	return 0
}

func logInfof(L *lua.LState) int {
	format := L.CheckString(1)
	log.Infof("%s "+format, append([]interface{}{logHeader(L)}, logValues(L, 2)...)...)
	return 0
}

func logDebug(L *lua.LState) int {
	log.Debugln(append([]interface{}{logHeader(L)}, logValues(L, 1)...)...)
	return 0
}

func logDebugf(L *lua.LState) int {
	format := L.CheckString(1)
	log.Debugf("%s "+format, append([]interface{}{logHeader(L)}, logValues(L, 2)...)...)
	return 0
}
