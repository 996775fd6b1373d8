// ============================================================================
// kylang - Teaching Language Interpreter
// ============================================================================
//
// Package:     playground
// Description: Key bindings and help entries for the playground
// Author:      msto63
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package playground

import (
	"github.com/charmbracelet/bubbles/key"
)

// keyMap holds the global key bindings of the playground
type keyMap struct {
	Run    key.Binding
	Cancel key.Binding
	Save   key.Binding
	Focus  key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Run: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "run"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("ctrl+k"),
			key.WithHelp("ctrl+k", "stop"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch pane"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Run, k.Save, k.Focus, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Run, k.Cancel, k.Save},
		{k.Focus, k.Help, k.Quit},
	}
}
