// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// PersonalityLevel defines the verbosity and richness of CLI output
type PersonalityLevel string

const (
	// PersonalityFull enables boxes, colors and the nautical banner
	PersonalityFull PersonalityLevel = "full"

	// PersonalityStandard enables colors, icons, and boxes
	PersonalityStandard PersonalityLevel = "standard"

	// PersonalityMinimal uses icons and basic formatting only
	PersonalityMinimal PersonalityLevel = "minimal"

	// PersonalityMachine outputs KEY: value lines suitable for scripting
	PersonalityMachine PersonalityLevel = "machine"
)

// PersonalityEnv overrides the configured personality level.
const PersonalityEnv = "ALEUTIAN_PERSONALITY"

var (
	currentPersonality = PersonalityFull
	personalityMu      sync.RWMutex
)

// GetPersonality returns the process-wide personality level.
func GetPersonality() PersonalityLevel {
	personalityMu.RLock()
	defer personalityMu.RUnlock()
	return currentPersonality
}

// SetPersonality sets the process-wide personality level.
func SetPersonality(level PersonalityLevel) {
	personalityMu.Lock()
	defer personalityMu.Unlock()
	currentPersonality = level
}

// ParsePersonalityLevel converts a string to PersonalityLevel. Unknown
// values map to PersonalityStandard.
func ParsePersonalityLevel(s string) PersonalityLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "full", "f":
		return PersonalityFull
	case "standard", "std", "s":
		return PersonalityStandard
	case "minimal", "min", "m":
		return PersonalityMinimal
	case "machine", "quiet", "q":
		return PersonalityMachine
	default:
		return PersonalityStandard
	}
}

// InitPersonality picks the personality level: the environment variable
// wins, then the configured value, and stdout that is not a terminal always
// falls back to machine output.
func InitPersonality(configured string) PersonalityLevel {
	level := PersonalityFull
	switch {
	case os.Getenv(PersonalityEnv) != "":
		level = ParsePersonalityLevel(os.Getenv(PersonalityEnv))
	case !IsTerminal(os.Stdout):
		level = PersonalityMachine
	case configured != "":
		level = ParsePersonalityLevel(configured)
	}
	SetPersonality(level)
	return level
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// IsInteractive reports whether prompts and spinners should be shown.
func IsInteractive() bool {
	return GetPersonality() != PersonalityMachine && IsTerminal(os.Stdout)
}
