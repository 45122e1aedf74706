// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

// Command gen-schema writes the configuration JSON Schema file.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/vernuntii/vernuntii/internal/plugins/configuration"
)

func main() {
	out := pflag.StringP("out", "o", filepath.Join("schemas", "vernuntii.schema.json"), "schema file to write")
	pflag.Parse()

	if err := writeSchema(*out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generated %s\n", *out)
}

func writeSchema(path string) error {
	schema, err := configuration.GenerateSchema()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return oops.In("gen-schema").With("path", path).Wrapf(err, "create directory")
	}
	if err := os.WriteFile(path, append(schema, '\n'), 0o600); err != nil {
		return oops.In("gen-schema").With("path", path).Wrapf(err, "write schema")
	}
	return nil
}
