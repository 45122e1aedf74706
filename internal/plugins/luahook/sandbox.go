// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

package luahook

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"
)

type library struct {
	name string
	open lua.LGFunction
}

// sandboxLibraries are the only libraries scripts can reach. os, io, debug
// and package stay closed.
func sandboxLibraries() []library {
	return []library{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	}
}

// blockedBaseFunctions reach the filesystem or compile arbitrary chunks.
var blockedBaseFunctions = []string{"dofile", "loadfile", "loadstring", "load", "require", "module"}

// Sandbox creates Lua states restricted to sandboxLibraries.
type Sandbox struct {
	libraries []library
}

// NewSandbox creates a sandbox.
func NewSandbox() *Sandbox {
	return &Sandbox{libraries: sandboxLibraries()}
}

// NewState returns a fresh restricted state bound to ctx. It exposes
// vernuntii.log(level, message) for scripts.
func (s *Sandbox) NewState(ctx context.Context) (*lua.LState, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range s.libraries {
		err := L.CallByParam(lua.P{Fn: L.NewFunction(lib.open), NRet: 0, Protect: true}, lua.LString(lib.name))
		if err != nil {
			L.Close()
			return nil, oops.In("luahook").With("library", lib.name).Wrapf(err, "open library %s", lib.name)
		}
	}
	for _, fn := range blockedBaseFunctions {
		L.SetGlobal(fn, lua.LNil)
	}

	module := L.NewTable()
	L.SetField(module, "log", L.NewFunction(func(L *lua.LState) int {
		level := L.CheckString(1)
		msg := L.CheckString(2)
		slog.Log(ctx, scriptLevel(level), msg, "source", "hook")
		return 0
	}))
	L.SetGlobal("vernuntii", module)
	L.SetContext(ctx)
	return L, nil
}

func scriptLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
