// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

package configuration_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vernuntii/vernuntii/internal/events"
	"github.com/vernuntii/vernuntii/internal/plugin"
	"github.com/vernuntii/vernuntii/internal/plugin/plugintest"
	"github.com/vernuntii/vernuntii/internal/plugins/commandline"
	"github.com/vernuntii/vernuntii/internal/plugins/configuration"
	"github.com/vernuntii/vernuntii/pkg/errutil"
)

func newHost(t *testing.T, out *bytes.Buffer, workDir string, execute func(ctx context.Context, run *plugin.Run) error) *plugin.Host {
	t.Helper()
	ctx := context.Background()
	h := plugin.NewHost(plugin.WithExitCode(configuration.CodeInvalidConfiguration, errutil.ExitInvalidConfiguration))
	plugin.Add[commandline.CommandLine](ctx, h, commandline.New(commandline.Options{Out: out, Err: &bytes.Buffer{}}))
	plugin.Add[configuration.Configurer](ctx, h, configuration.New(configuration.Options{WorkDir: workDir}))
	plugin.Add[plugin.Plugin](ctx, h, &plugintest.Func{PluginName: "consumer", Execute: execute})
	return h
}

// requestOnParse asks for the configuration once the root command parsed.
func requestOnParse(got **configuration.Config) func(ctx context.Context, run *plugin.Run) error {
	return func(ctx context.Context, run *plugin.Run) error {
		cl, err := plugintest.Require[commandline.CommandLine](ctx, run)
		if err != nil {
			return err
		}
		conf, err := plugintest.Require[configuration.Configurer](ctx, run)
		if err != nil {
			return err
		}
		cl.SetRootHandler(func(context.Context, []string) (int, error) { return 0, nil })
		conf.Events().CreatedConfiguration.Subscribe(func(cfg *configuration.Config) error {
			*got = cfg
			return nil
		})
		cl.Events().ParsedCommandLineArgs.Subscribe(func(*commandline.ParseResult) error {
			return events.Fire(run.Bus, conf.Events().CreateConfiguration, configuration.Request{})
		})
		return nil
	}
}

func TestPlugin_CreatesConfigurationFromWorkDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vernuntii.yml"), []byte("preRelease: beta\n"), 0o600))

	var cfg *configuration.Config
	h := newHost(t, &bytes.Buffer{}, dir, requestOnParse(&cfg))

	code, err := h.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	require.NotNil(t, cfg)
	assert.Equal(t, "beta", *cfg.PreRelease)
}

func TestPlugin_ConfigPathFlag(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "other.yml")
	require.NoError(t, os.WriteFile(path, []byte("startVersion: 2.0.0\n"), 0o600))

	var cfg *configuration.Config
	h := newHost(t, &bytes.Buffer{}, t.TempDir(), requestOnParse(&cfg))

	_, err := h.Run(context.Background(), []string{"--config-path", path})
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, "2.0.0", cfg.StartVersion)
}

func TestPlugin_InvalidConfigurationExitCode(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vernuntii.yml"), []byte("unknown: true\n"), 0o600))

	var cfg *configuration.Config
	h := newHost(t, &bytes.Buffer{}, dir, requestOnParse(&cfg))

	code, err := h.Run(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, errutil.ExitInvalidConfiguration, code)
	assert.Nil(t, cfg)
}

func TestPlugin_SchemaCommand(t *testing.T) {
	var out bytes.Buffer
	h := newHost(t, &out, t.TempDir(), nil)

	code, err := h.Run(context.Background(), []string{"config", "schema"})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), configuration.SchemaID)
}
