// ============================================================================
// kylang - Teaching Language Interpreter
// ============================================================================
//
// Package:     playground
// Description: Styles for the playground TUI
// Author:      msto63
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package playground

import (
	"github.com/charmbracelet/lipgloss"
)

// Color Palette
var (
	ColorPrimary   = lipgloss.Color("#8B5CF6") // Violet
	ColorSecondary = lipgloss.Color("#06B6D4") // Cyan
	ColorSuccess   = lipgloss.Color("#10B981") // Emerald
	ColorWarning   = lipgloss.Color("#F59E0B") // Amber
	ColorError     = lipgloss.Color("#EF4444") // Red
	ColorDimmed    = lipgloss.Color("#374151") // Dark Gray

	ColorBgPanel = lipgloss.Color("#1E293B") // Slate 800

	ColorText      = lipgloss.Color("#F8FAFC") // Slate 50
	ColorTextMuted = lipgloss.Color("#94A3B8") // Slate 400
	ColorTextDim   = lipgloss.Color("#64748B") // Slate 500
)

// Logo/Header styles
var (
	LogoStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	FileStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Italic(true)

	ModifiedStyle = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	TitlePanelStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 2)
)

// Panel styles
var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorDimmed).
			Padding(0, 1)

	FocusedPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary).
				Padding(0, 1)

	PanelTitleStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true)

	OutputStyle = lipgloss.NewStyle().
			Foreground(ColorText)
)

// Status bar styles
var (
	StatusBarStyle = lipgloss.NewStyle().
			Background(ColorBgPanel).
			Foreground(ColorText).
			Padding(0, 1)

	StatusOKStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	StatusErrorStyle = lipgloss.NewStyle().
				Foreground(ColorError).
				Bold(true)

	StatusBusyStyle = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	StatusMutedStyle = lipgloss.NewStyle().
				Foreground(ColorTextDim)
)

// Help styles
var (
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	HelpSepStyle = lipgloss.NewStyle().
			Foreground(ColorDimmed)
)

// Icons
const (
	IconOK      = "✔ "
	IconError   = "✘ "
	IconRunning = "● "
	IconSaved   = "💾 "
)

// Logo
const Logo = "kylang playground"
