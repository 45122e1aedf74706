// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

package commandline

import "github.com/samber/oops"

// CodeInvalidArguments is returned when the command line cannot be parsed.
const CodeInvalidArguments = "INVALID_ARGUMENTS"

// ErrInvalidArguments wraps a parse or validation failure.
func ErrInvalidArguments(command string, err error) error {
	return oops.In("commandline").
		Code(CodeInvalidArguments).
		With("command", command).
		Hint("run with --help to see the usage").
		Wrapf(err, "invalid arguments for %s", command)
}
