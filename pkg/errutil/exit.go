// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

package errutil

import (
	"fmt"

	"github.com/samber/oops"
)

// Process exit codes.
const (
	ExitSuccess              = 0
	ExitFailure              = 1
	ExitDuplicateVersion     = 2
	ExitUnmetDependency      = 3
	ExitInvalidConfiguration = 4
)

// ExitCodes maps oops error codes to process exit codes.
type ExitCodes map[string]int

// ExitCode returns the exit code for err: ExitSuccess for nil, the mapped
// code of the deepest oops code when present in codes, ExitFailure
// otherwise.
func ExitCode(err error, codes ExitCodes) int {
	if err == nil {
		return ExitSuccess
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ExitFailure
	}
	code := oopsErr.Code()
	if code == nil {
		return ExitFailure
	}
	if exit, found := codes[fmt.Sprint(code)]; found {
		return exit
	}
	return ExitFailure
}
