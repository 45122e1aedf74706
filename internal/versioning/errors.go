// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

package versioning

// Error codes for version calculation.
const (
	CodeUnknownPreset        = "UNKNOWN_PRESET"
	CodeUnknownIncrementMode = "UNKNOWN_INCREMENT_MODE"
	CodeInvalidVersion       = "INVALID_VERSION"
)
