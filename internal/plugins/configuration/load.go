// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

package configuration

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// FileNames are searched in order when the config path is a directory.
var FileNames = []string{"vernuntii.yml", "vernuntii.yaml", "vernuntii.json"}

// flagKeys maps command-line flags to the configuration keys they override.
var flagKeys = map[string]string{
	"override-versioning-mode": "versioningMode",
	"start-version":            "startVersion",
	"pre-release":              "preRelease",
	"git-directory":            "gitDirectory",
}

// Find resolves path to a configuration file. A directory is searched for
// FileNames; finding none there is not an error and yields "".
func Find(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", errInvalid(path, err, "config path %s", path)
	}
	if !info.IsDir() {
		return path, nil
	}
	for _, name := range FileNames {
		candidate := filepath.Join(path, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", errInvalid(candidate, err, "config file %s", candidate)
		}
	}
	return "", nil
}

// Load reads the configuration at path (file or directory) and overlays
// the changed flags of flags. A nil flag set applies no overrides.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errInvalid(path, err, "config path %s", path)
	}
	found, err := Find(abs)
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")
	base := abs
	if found != "" {
		data, err := os.ReadFile(found)
		if err != nil {
			return nil, errInvalid(found, err, "read %s", found)
		}
		if err := ValidateDocument(found, data); err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(found), yaml.Parser()); err != nil {
			return nil, errInvalid(found, err, "load %s", found)
		}
		base = filepath.Dir(found)
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, errInvalid(found, err, "apply command-line overrides")
		}
	}

	cfg := &Config{}
	err = k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook:       versioningModeHook,
			TagName:          "koanf",
			Result:           cfg,
			WeaklyTypedInput: true,
		},
	})
	if err != nil {
		return nil, errInvalid(found, err, "decode configuration")
	}
	cfg.Path = found
	cfg.ResolveGitDirectory(base)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// versioningModeHook decodes a bare preset name into a VersioningMode.
func versioningModeHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() == reflect.String && to == reflect.TypeFor[VersioningMode]() {
		return VersioningMode{Preset: reflect.ValueOf(data).String()}, nil
	}
	return data, nil
}
