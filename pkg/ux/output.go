// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ux provides terminal rendering for the ask CLI: the Aleutian
// palette, personality levels, segmented buttons and the chat view.
package ux

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Aleutian color palette - deep ocean teals and arctic waters
var (
	ColorTealBright  = lipgloss.Color("#2CD7C7") // highlights, success
	ColorTealPrimary = lipgloss.Color("#20B9B4") // main brand color
	ColorTealDeep    = lipgloss.Color("#16858E") // borders, accents
	ColorDeepSea     = lipgloss.Color("#104855") // active segment background
	ColorSlate       = lipgloss.Color("#2C4A54") // muted text, borders

	ColorSuccess = lipgloss.Color("#2CD7C7")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
)

// Styles provides pre-configured lipgloss styles.
var Styles = struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Highlight lipgloss.Style

	Box      lipgloss.Style
	InfoBox  lipgloss.Style
	ErrorBox lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(ColorTealBright),
	Subtitle:  lipgloss.NewStyle().Foreground(ColorTealPrimary),
	Bold:      lipgloss.NewStyle().Bold(true),
	Muted:     lipgloss.NewStyle().Foreground(ColorSlate),
	Success:   lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning:   lipgloss.NewStyle().Foreground(ColorWarning),
	Error:     lipgloss.NewStyle().Foreground(ColorError),
	Highlight: lipgloss.NewStyle().Foreground(ColorTealBright).Bold(true),

	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorTealDeep).
		Padding(0, 1),
	InfoBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorTealPrimary).
		Padding(0, 1),
	ErrorBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorError).
		Padding(0, 1),
}

// Icon provides themed status icons
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconArrow   Icon = "→"
	IconBullet  Icon = "•"
	IconAnchor  Icon = "⚓"
)

// Render returns the icon with appropriate styling
func (i Icon) Render() string {
	switch i {
	case IconSuccess:
		return Styles.Success.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	default:
		return string(i)
	}
}

// boxWidth is the width of boxed panels in full and standard personality.
const boxWidth = 72

// Printer writes status lines in the style of a personality level.
type Printer struct {
	w           io.Writer
	personality PersonalityLevel
}

// NewPrinter creates a Printer. Write errors are ignored; there is no
// meaningful recovery from a broken terminal.
func NewPrinter(w io.Writer, personality PersonalityLevel) *Printer {
	return &Printer{w: w, personality: personality}
}

// Success prints a success line.
func (p *Printer) Success(text string) {
	switch p.personality {
	case PersonalityMachine:
		p.printf("OK: %s\n", text)
	case PersonalityMinimal:
		p.printf("%s %s\n", IconSuccess.Render(), text)
	default:
		p.printf("%s %s\n", IconSuccess.Render(), Styles.Success.Render(text))
	}
}

// Warning prints a warning line.
func (p *Printer) Warning(text string) {
	switch p.personality {
	case PersonalityMachine:
		p.printf("WARN: %s\n", text)
	case PersonalityMinimal:
		p.printf("%s %s\n", IconWarning.Render(), text)
	default:
		p.printf("%s %s\n", IconWarning.Render(), Styles.Warning.Render(text))
	}
}

// Error prints an error line.
func (p *Printer) Error(text string) {
	switch p.personality {
	case PersonalityMachine:
		p.printf("ERROR: %s\n", text)
	case PersonalityMinimal:
		p.printf("%s %s\n", IconError.Render(), text)
	default:
		p.printf("%s %s\n", IconError.Render(), Styles.Error.Render(text))
	}
}

// Info prints an informational line.
func (p *Printer) Info(text string) {
	if p.personality == PersonalityMachine {
		p.printf("%s\n", text)
		return
	}
	p.printf("%s %s\n", Styles.Muted.Render("│"), text)
}

// Muted prints secondary text. Machine output omits it.
func (p *Printer) Muted(text string) {
	if p.personality == PersonalityMachine {
		return
	}
	p.printf("%s\n", Styles.Muted.Render(text))
}

// Box prints content in a rounded box, or "TITLE: content" lines for
// machines.
func (p *Printer) Box(title, content string) {
	p.box(Styles.Box, Styles.Title, title, content)
}

func (p *Printer) box(boxStyle, titleStyle lipgloss.Style, title, content string) {
	switch p.personality {
	case PersonalityMachine:
		key := strings.ToUpper(strings.ReplaceAll(title, " ", "_"))
		for _, line := range strings.Split(content, "\n") {
			p.printf("%s: %s\n", key, line)
		}
	case PersonalityMinimal:
		p.printf("%s\n%s\n", title, content)
	default:
		p.printf("%s\n", boxStyle.Width(boxWidth).Render(titleStyle.Render(title)+"\n"+content))
	}
}

func (p *Printer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format, args...)
}
