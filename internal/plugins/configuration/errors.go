// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

package configuration

import "github.com/samber/oops"

// CodeInvalidConfiguration marks every configuration failure.
const CodeInvalidConfiguration = "INVALID_CONFIGURATION"

func errInvalid(path string, err error, format string, args ...any) error {
	return oops.In("configuration").
		Code(CodeInvalidConfiguration).
		With("path", path).
		Wrapf(err, format, args...)
}

func invalidf(path string, format string, args ...any) error {
	return oops.In("configuration").
		Code(CodeInvalidConfiguration).
		With("path", path).
		Errorf(format, args...)
}
