package script

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/mzki/erasave/filesystem"
	"github.com/mzki/erasave/util/log"
)

// PolicyFuncName is the global function a policy script must define.
//
//	function compatible(saved, running)
//	  return version.major(saved) == version.major(running)
//	end
const PolicyFuncName = "compatible"

// DefaultPolicyTimeout limits one call of the policy script.
var DefaultPolicyTimeout = 1 * time.Second

// references to [ lua-users wiki: Sand Boxes ] http://lua-users.org/wiki/SandBoxes
var unsafeGlobals = []string{
	"print", // write stdout is not allowed
	"dofile",
	"load",
	"loadfile",
	"loadstring",
	"require",
	"collectgarbage",
	"module",
	"_printregs",
}

// math.random makes a policy undeterministic.
var unsafeMathFuncs = []string{"random", "randomseed"}

// LuaPolicy is a save.VersionPolicy defined by a Lua script.
// The script runs in a sandbox which has no access to the filesystem or OS.
// Any script error, timeout or non-boolean result means incompatible.
//
// LuaPolicy is safe for concurrent use. Close must be called after use.
type LuaPolicy struct {
	mu      sync.Mutex
	vm      *lua.LState
	fn      *lua.LFunction
	name    string
	timeout time.Duration
}

// NewLuaPolicy compiles and runs source named name, then looks up
// the global function compatible.
func NewLuaPolicy(name string, source io.Reader) (*LuaPolicy, error) {
	vm := lua.NewState(lua.Options{
		CallStackSize:       lua.CallStackSize,
		RegistrySize:        lua.RegistrySize,
		SkipOpenLibs:        true,
		IncludeGoStackTrace: false,
	})
	if err := openSandbox(vm); err != nil {
		vm.Close()
		return nil, err
	}

	fn, err := vm.Load(source, name)
	if err != nil {
		vm.Close()
		return nil, fmt.Errorf("script: compile %s: %w", name, err)
	}

	p := &LuaPolicy{vm: vm, name: name, timeout: DefaultPolicyTimeout}
	// top level of the script must also finish in time.
	if err := p.call(fn, 0); err != nil {
		vm.Close()
		return nil, fmt.Errorf("script: run %s: %w", name, err)
	}

	policyFn, ok := vm.GetGlobal(PolicyFuncName).(*lua.LFunction)
	if !ok {
		vm.Close()
		return nil, fmt.Errorf("script: %s does not define function %s(saved, running)", name, PolicyFuncName)
	}
	p.fn = policyFn
	return p, nil
}

// LoadLuaPolicy loads policy script from path on the loader.
func LoadLuaPolicy(loader filesystem.Loader, path string) (*LuaPolicy, error) {
	r, err := loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("script: load policy script: %w", err)
	}
	defer r.Close()
	return NewLuaPolicy(path, r)
}

// SetTimeout changes time limit of one call. Non-positive d means DefaultPolicyTimeout.
func (p *LuaPolicy) SetTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultPolicyTimeout
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.timeout = d
}

func (p *LuaPolicy) call(fn *lua.LFunction, nret int, args ...lua.LValue) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	p.vm.SetContext(ctx)
	defer p.vm.RemoveContext()
	return p.vm.CallByParam(lua.P{Fn: fn, NRet: nret, Protect: true}, args...)
}

// Compatible implements save.VersionPolicy.
func (p *LuaPolicy) Compatible(saved, running string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.vm == nil {
		return false
	}

	top := p.vm.GetTop()
	defer p.vm.SetTop(top)
	if err := p.call(p.fn, 1, lua.LString(saved), lua.LString(running)); err != nil {
		log.Infof("script: %s: %s(%q, %q) failed: %v", p.name, PolicyFuncName, saved, running, err)
		return false
	}
	ret, ok := p.vm.Get(-1).(lua.LBool)
	if !ok {
		log.Infof("script: %s: %s must return boolean, got %v", p.name, PolicyFuncName, p.vm.Get(-1).Type())
		return false
	}
	return bool(ret)
}

// Close releases the script VM. Compatible returns false after Close.
func (p *LuaPolicy) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.vm != nil {
		p.vm.Close()
		p.vm = nil
	}
	return nil
}

func openSandbox(L *lua.LState) error {
	// builtin libraries which do not contain the modules to access
	// file system and OS.
	for _, pair := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.MathLibName, lua.OpenMath},
		{lua.StringLibName, lua.OpenString},
	} {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(pair.open),
			NRet:    0,
			Protect: true,
		}, lua.LString(pair.name)); err != nil {
			return fmt.Errorf("script: open %s library: %w", pair.name, err)
		}
	}
	for _, name := range unsafeGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	if math, ok := L.GetGlobal(lua.MathLibName).(*lua.LTable); ok {
		for _, name := range unsafeMathFuncs {
			math.RawSetString(name, lua.LNil)
		}
	}

	L.SetGlobal(versionModuleName, L.SetFuncs(L.NewTable(), versionExports))
	L.SetGlobal(loggerModuleName, L.SetFuncs(L.NewTable(), loggerExports))
	return nil
}
