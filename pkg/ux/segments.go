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
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// Segmented buttons
// =============================================================================

// Position is where a button sits in its segmented group.
type Position int

const (
	// PositionNone marks a value that belongs to no known group.
	PositionNone Position = iota
	PositionLeft
	PositionMiddle
	PositionRight
)

func (p Position) String() string {
	switch p {
	case PositionLeft:
		return "left"
	case PositionMiddle:
		return "middle"
	case PositionRight:
		return "right"
	default:
		return ""
	}
}

// StyleTag is the visual state of one segmented button.
type StyleTag struct {
	Position Position
	Active   bool
}

// ClassName returns the tag as a CSS-like class name, for example
// "buttonleftactive" or "buttonright". The zero tag has no class.
func (t StyleTag) ClassName() string {
	if t.Position == PositionNone {
		return ""
	}
	name := "button" + t.Position.String()
	if t.Active {
		name += "active"
	}
	return name
}

// Style returns the lipgloss style drawing the tag. Rounded ends mark the
// outer segments; the active segment is filled.
func (t StyleTag) Style() lipgloss.Style {
	s := lipgloss.NewStyle().Padding(0, 1)
	if t.Active {
		return s.Bold(true).Foreground(ColorTealBright).Background(ColorDeepSea)
	}
	return s.Foreground(ColorSlate)
}

// Render draws label with the tag's style and edge markers.
func (t StyleTag) Render(label string) string {
	left, right := "│", ""
	switch t.Position {
	case PositionLeft:
		left = "("
	case PositionRight:
		right = ")"
	}
	return left + t.Style().Render(label) + right
}

// SegmentGroup is an ordered set of button values shown side by side.
type SegmentGroup struct {
	Name   string
	Values []string
}

// Known groups of the settings panel.
var (
	ResponseLengthGroup = SegmentGroup{Name: "Response length", Values: []string{"1024", "2048", "3072"}}
	ResponseTempGroup   = SegmentGroup{Name: "Response temperature", Values: []string{"1.0", "0.6", "0"}}
)

// StyleFor returns the tag of candidate within the group given the selected
// value. Values compare numerically when both parse as numbers, so "1" and
// "1.0" are the same button. A candidate outside the group gets the zero tag.
func (g SegmentGroup) StyleFor(selected, candidate string) StyleTag {
	idx := g.index(candidate)
	if idx < 0 {
		return StyleTag{}
	}
	var pos Position
	switch {
	case idx == 0:
		pos = PositionLeft
	case idx == len(g.Values)-1:
		pos = PositionRight
	default:
		pos = PositionMiddle
	}
	return StyleTag{Position: pos, Active: sameValue(selected, candidate)}
}

// Render draws every button of the group with selected highlighted.
func (g SegmentGroup) Render(selected string) string {
	parts := make([]string, 0, len(g.Values))
	for _, v := range g.Values {
		parts = append(parts, g.StyleFor(selected, v).Render(v))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

func (g SegmentGroup) index(v string) int {
	for i, candidate := range g.Values {
		if sameValue(candidate, v) {
			return i
		}
	}
	return -1
}

// StyleFor resolves candidate against the known settings groups. It is the
// entry point for callers that only hold the two values.
func StyleFor(selected, candidate string) StyleTag {
	for _, g := range []SegmentGroup{ResponseLengthGroup, ResponseTempGroup} {
		if tag := g.StyleFor(selected, candidate); tag.Position != PositionNone {
			return tag
		}
	}
	return StyleTag{}
}

// FormatTemp renders a temperature the way the temperature group spells it.
func FormatTemp(t float64) string {
	for _, v := range ResponseTempGroup.Values {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f == t {
			return v
		}
	}
	return strconv.FormatFloat(t, 'f', -1, 64)
}

func sameValue(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == b {
		return true
	}
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	return errA == nil && errB == nil && fa == fb
}
