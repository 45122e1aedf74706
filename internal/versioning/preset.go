// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

package versioning

import (
	"strings"

	"github.com/samber/oops"

	"github.com/vernuntii/vernuntii/internal/versioning/convention"
)

// IncrementMode decides how many times messages may increment a level.
type IncrementMode string

// Increment modes.
const (
	// IncrementNone applies the highest requested level once.
	IncrementNone IncrementMode = "None"
	// IncrementConsecutive applies every requested increment.
	IncrementConsecutive IncrementMode = "Consecutive"
	// IncrementSuccessive applies each level at most once; a higher
	// increment allows the lower levels again.
	IncrementSuccessive IncrementMode = "Successive"
)

// ParseIncrementMode parses a case-insensitive mode name.
func ParseIncrementMode(s string) (IncrementMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return IncrementNone, nil
	case "consecutive":
		return IncrementConsecutive, nil
	case "successive":
		return IncrementSuccessive, nil
	default:
		return "", oops.In("versioning").
			Code(CodeUnknownIncrementMode).
			With("increment_mode", s).
			Errorf("unknown increment mode %q", s)
	}
}

// HeightPosition is where the height identifier is written.
type HeightPosition string

// Height positions.
const (
	HeightInPreRelease HeightPosition = "PreRelease"
	HeightInBuild      HeightPosition = "Build"
)

// Preset bundles a message convention, an increment mode and the height
// position under a name.
type Preset struct {
	Name           string
	Convention     convention.Convention
	IncrementMode  IncrementMode
	HeightPosition HeightPosition
}

// Preset names.
const (
	PresetDefault              = "Default"
	PresetManual               = "Manual"
	PresetContinuousDelivery   = "ContinuousDelivery"
	PresetContinuousDeployment = "ContinuousDeployment"
)

// PresetNames lists the built-in presets.
var PresetNames = []string{PresetDefault, PresetManual, PresetContinuousDelivery, PresetContinuousDeployment}

// LookupPreset returns the built-in preset with the case-insensitive name.
func LookupPreset(name string) (Preset, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "default", "":
		return Preset{
			Name:           PresetDefault,
			Convention:     convention.NewConventional(),
			IncrementMode:  IncrementConsecutive,
			HeightPosition: HeightInPreRelease,
		}, nil
	case "manual":
		return Preset{
			Name:           PresetManual,
			Convention:     convention.Manual{},
			IncrementMode:  IncrementNone,
			HeightPosition: HeightInPreRelease,
		}, nil
	case "continuousdelivery":
		return Preset{
			Name:           PresetContinuousDelivery,
			Convention:     convention.NewConventional(),
			IncrementMode:  IncrementNone,
			HeightPosition: HeightInPreRelease,
		}, nil
	case "continuousdeployment":
		return Preset{
			Name:           PresetContinuousDeployment,
			Convention:     convention.NewConventional(),
			IncrementMode:  IncrementSuccessive,
			HeightPosition: HeightInBuild,
		}, nil
	default:
		return Preset{}, oops.In("versioning").
			Code(CodeUnknownPreset).
			With("preset", name).
			Hint("use one of: "+strings.Join(PresetNames, ", ")).
			Errorf("unknown versioning preset %q", name)
	}
}
