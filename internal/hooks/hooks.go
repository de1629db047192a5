// Package hooks runs optional Lua packaging hooks against an assembled
// package directory. Hooks generalize one-off packaging tweaks (renames,
// extra files, drops) without rebuilding the pipeline. Scripts run in a
// sandboxed interpreter with a wall-clock timeout and a constrained
// registry; only the base, string, table and math libraries are opened.
package hooks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/architeuthis-flux/jumperless-forge/internal/target"
)

// Sandbox bounds hook execution.
type Sandbox struct {
	TimeoutMs        int
	MemoryLimitBytes int
}

// Env is the information a hook script receives.
type Env struct {
	App     string
	Version string
	Target  target.Target
	Dir     string // the assembled package directory
}

// Run executes the hook script at scriptPath against env. The script sees
// a global `pkg` table with app/version/platform/arch fields and the
// functions write(path, content), rename(old, new), remove(path) scoped
// to the package directory.
func Run(scriptPath string, env Env, sb Sandbox) error {
	code, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("failed to read hook: %w", err)
	}

	L := newSandboxState(sb)
	defer L.Close()

	timeout := sb.TimeoutMs
	if timeout <= 0 {
		timeout = 2000
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Millisecond)
	defer cancel()
	L.SetContext(ctx)

	L.SetGlobal("pkg", pkgTable(L, env))

	if err := L.DoString(string(code)); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("hook %s: sandbox timeout", filepath.Base(scriptPath))
		}
		return fmt.Errorf("hook %s: %v", filepath.Base(scriptPath), err)
	}
	return nil
}

func newSandboxState(sb Sandbox) *lua.LState {
	L := lua.NewState(lua.Options{
		SkipOpenLibs:     true,
		RegistrySize:     256,
		RegistryMaxSize:  registryMaxFromMemory(sb.MemoryLimitBytes),
		RegistryGrowStep: 0,
	})
	openLib := func(name string, f lua.LGFunction) {
		L.Push(L.NewFunction(f))
		L.Push(lua.LString(name))
		L.Call(1, 0)
	}
	openLib("base", lua.OpenBase)
	openLib("string", lua.OpenString)
	openLib("table", lua.OpenTable)
	openLib("math", lua.OpenMath)
	return L
}

func registryMaxFromMemory(memoryLimitBytes int) int {
	if memoryLimitBytes <= 0 {
		return 256
	}
	n := memoryLimitBytes / 64
	if n < 128 {
		n = 128
	}
	if n > 4096 {
		n = 4096
	}
	return n
}

func pkgTable(L *lua.LState, env Env) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("app", lua.LString(env.App))
	t.RawSetString("version", lua.LString(env.Version))
	t.RawSetString("platform", lua.LString(string(env.Target.Platform)))
	t.RawSetString("arch", lua.LString(string(env.Target.Arch)))
	t.RawSetString("write", L.NewFunction(func(L *lua.LState) int {
		rel := L.CheckString(1)
		content := L.CheckString(2)
		p, err := securePath(env.Dir, rel)
		if err != nil {
			L.RaiseError("%v", err)
			return 0
		}
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			L.RaiseError("write %s: %v", rel, err)
			return 0
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			L.RaiseError("write %s: %v", rel, err)
			return 0
		}
		return 0
	}))
	t.RawSetString("rename", L.NewFunction(func(L *lua.LState) int {
		oldRel := L.CheckString(1)
		newRel := L.CheckString(2)
		oldP, err := securePath(env.Dir, oldRel)
		if err != nil {
			L.RaiseError("%v", err)
			return 0
		}
		newP, err := securePath(env.Dir, newRel)
		if err != nil {
			L.RaiseError("%v", err)
			return 0
		}
		if err := os.MkdirAll(filepath.Dir(newP), 0o755); err != nil {
			L.RaiseError("rename %s: %v", oldRel, err)
			return 0
		}
		if err := os.Rename(oldP, newP); err != nil {
			L.RaiseError("rename %s: %v", oldRel, err)
			return 0
		}
		return 0
	}))
	t.RawSetString("remove", L.NewFunction(func(L *lua.LState) int {
		rel := L.CheckString(1)
		p, err := securePath(env.Dir, rel)
		if err != nil {
			L.RaiseError("%v", err)
			return 0
		}
		if err := os.RemoveAll(p); err != nil {
			L.RaiseError("remove %s: %v", rel, err)
			return 0
		}
		return 0
	}))
	return t
}

// securePath resolves rel inside root and rejects escapes.
func securePath(root, rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes package directory: %s", rel)
	}
	return filepath.Join(root, clean), nil
}
