// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

package luahook_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vernuntii/vernuntii/internal/plugins/configuration"
	"github.com/vernuntii/vernuntii/internal/plugins/luahook"
	"github.com/vernuntii/vernuntii/internal/versioning"
	"github.com/vernuntii/vernuntii/pkg/errutil"
)

func writeScript(t *testing.T, code string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hook.lua")
	require.NoError(t, os.WriteFile(path, []byte(code), 0o600))
	return path
}

func result() *versioning.Result {
	return &versioning.Result{
		Version:   semver.MustParse("1.2.3-alpha.4"),
		Branch:    "feature/x",
		CommitSha: "abc",
		Height:    4,
	}
}

func TestScript_ReplacesVersion(t *testing.T) {
	path := writeScript(t, `
function on_next_version(v)
  if v.branch == "feature/x" and v.height == 4 then
    return v.major .. "." .. v.minor .. "." .. v.patch .. "-" .. v.pre_release .. "+" .. v.commit
  end
end
`)
	script, err := luahook.LoadScript(context.Background(), luahook.NewSandbox(), path)
	require.NoError(t, err)

	r := result()
	require.NoError(t, script.Apply(context.Background(), r))
	assert.Equal(t, "1.2.3-alpha.4+abc", r.Version.String())
}

func TestScript_NilKeepsVersion(t *testing.T) {
	path := writeScript(t, `function on_next_version(v) end`)
	script, err := luahook.LoadScript(context.Background(), luahook.NewSandbox(), path)
	require.NoError(t, err)

	r := result()
	require.NoError(t, script.Apply(context.Background(), r))
	assert.Equal(t, "1.2.3-alpha.4", r.Version.String())
}

func TestScript_Failures(t *testing.T) {
	tests := []struct {
		name   string
		code   string
		onLoad bool
	}{
		{"syntax error", "function on_next_version(", true},
		{"missing function", "x = 1", true},
		{"sandbox blocks os", "os.exit(1)", true},
		{"runtime error", `function on_next_version(v) error("boom") end`, false},
		{"invalid version", `function on_next_version(v) return "one" end`, false},
		{"wrong type", `function on_next_version(v) return 1 end`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script, err := luahook.LoadScript(context.Background(), luahook.NewSandbox(), writeScript(t, tt.code))
			if tt.onLoad {
				errutil.AssertErrorCode(t, err, luahook.CodeHookFailed)
				return
			}
			require.NoError(t, err)

			r := result()
			err = script.Apply(context.Background(), r)
			errutil.AssertErrorCode(t, err, luahook.CodeHookFailed)
			assert.Equal(t, "1.2.3-alpha.4", r.Version.String())
		})
	}
}

func TestLoadScript_MissingFile(t *testing.T) {
	_, err := luahook.LoadScript(context.Background(), luahook.NewSandbox(), filepath.Join(t.TempDir(), "absent.lua"))
	errutil.AssertErrorCode(t, err, luahook.CodeHookFailed)
}

func TestLoadScript_RelativeToConfiguration(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hook.lua"), []byte(`function on_next_version(v) return "2.0.0" end`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vernuntii.yml"), []byte("hook:\n  script: hook.lua\n"), 0o600))

	cfg, err := configuration.Load(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, "hook.lua", cfg.Hook.Script)

	script, err := luahook.LoadScript(context.Background(), luahook.NewSandbox(), filepath.Join(filepath.Dir(cfg.Path), cfg.Hook.Script))
	require.NoError(t, err)
	r := result()
	require.NoError(t, script.Apply(context.Background(), r))
	assert.Equal(t, "2.0.0", r.Version.String())
}
