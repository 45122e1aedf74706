// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

package luahook

import (
	"context"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"

	"github.com/vernuntii/vernuntii/internal/versioning"
)

// CodeHookFailed marks failures of the script hook.
const CodeHookFailed = "HOOK_FAILED"

// HookFunction is the global a script defines.
const HookFunction = "on_next_version"

// Script is a loaded hook script.
type Script struct {
	path    string
	code    string
	sandbox *Sandbox
}

func hookError(path string) oops.OopsErrorBuilder {
	return oops.In("luahook").Code(CodeHookFailed).With("script", path)
}

// LoadScript reads path and checks that it compiles and defines
// on_next_version.
func LoadScript(ctx context.Context, sandbox *Sandbox, path string) (*Script, error) {
	code, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, hookError(path).Hint("check hook.script in the configuration").Wrapf(err, "read hook script")
	}

	L, err := sandbox.NewState(ctx)
	if err != nil {
		return nil, err
	}
	defer L.Close()
	if err := L.DoString(string(code)); err != nil {
		return nil, hookError(path).Wrapf(err, "load hook script")
	}
	if L.GetGlobal(HookFunction).Type() != lua.LTFunction {
		return nil, hookError(path).Errorf("hook script does not define %s", HookFunction)
	}
	return &Script{path: path, code: string(code), sandbox: sandbox}, nil
}

// Apply calls on_next_version with the result. A returned string replaces
// the version and must be a valid semantic version; nil keeps it.
func (s *Script) Apply(ctx context.Context, r *versioning.Result) error {
	L, err := s.sandbox.NewState(ctx)
	if err != nil {
		return err
	}
	defer L.Close()
	if err := L.DoString(s.code); err != nil {
		return hookError(s.path).Wrapf(err, "load hook script")
	}

	err = L.CallByParam(lua.P{Fn: L.GetGlobal(HookFunction), NRet: 1, Protect: true}, resultTable(L, r))
	if err != nil {
		return hookError(s.path).Wrapf(err, "call %s", HookFunction)
	}
	ret := L.Get(-1)
	L.Pop(1)

	switch v := ret.(type) {
	case *lua.LNilType:
		return nil
	case lua.LString:
		next, err := semver.StrictNewVersion(string(v))
		if err != nil {
			return hookError(s.path).With("returned", string(v)).Wrapf(err, "%s returned an invalid version", HookFunction)
		}
		r.Version = next
		return nil
	default:
		return hookError(s.path).Errorf("%s returned %s, want string or nil", HookFunction, ret.Type())
	}
}

func resultTable(L *lua.LState, r *versioning.Result) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "version", lua.LString(r.Version.String()))
	L.SetField(t, "major", lua.LNumber(r.Version.Major()))
	L.SetField(t, "minor", lua.LNumber(r.Version.Minor()))
	L.SetField(t, "patch", lua.LNumber(r.Version.Patch()))
	L.SetField(t, "pre_release", lua.LString(r.Version.Prerelease()))
	L.SetField(t, "build", lua.LString(r.Version.Metadata()))
	L.SetField(t, "branch", lua.LString(r.Branch))
	L.SetField(t, "commit", lua.LString(r.CommitSha))
	L.SetField(t, "height", lua.LNumber(r.Height))
	return t
}
