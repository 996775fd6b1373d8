// ============================================================================
// kylang - Teaching Language Interpreter
// ============================================================================
//
// Package:     playground
// Description: Bubbletea model for editing and running kylang programs
// Author:      msto63
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package playground

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	mdwerror "github.com/msto63/kylang/foundation/core/error"
	mdwlog "github.com/msto63/kylang/foundation/core/log"
	"github.com/msto63/kylang/foundation/kylang"
	"github.com/msto63/kylang/internal/history"
	"github.com/msto63/kylang/pkg/core/version"
)

// Focus identifies the pane receiving key input
type Focus int

const (
	FocusEditor Focus = iota
	FocusInput
	FocusOutput
)

// Layout constants
const (
	headerHeight = 3 // Title panel with border
	statusHeight = 1
	inputHeight  = 3
)

// Config holds playground configuration
type Config struct {
	// Path is the file loaded into the editor and written by save
	Path string

	// Source and Input prefill the editor and the stdin pane
	Source string
	Input  string

	MaxSteps   int64
	RunTimeout time.Duration

	Logger  *mdwlog.Logger
	History history.Store
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		MaxSteps:   1_000_000,
		RunTimeout: 10 * time.Second,
	}
}

// Model is the Bubbletea model of the playground
type Model struct {
	// State
	width    int
	height   int
	ready    bool
	focus    Focus
	running  bool
	modified bool
	cancel   context.CancelFunc

	// Components
	editor   textarea.Model
	input    textarea.Model
	output   viewport.Model
	help     help.Model
	keys     keyMap
	contents string

	// Last outcome
	status    string
	lastErr   error
	lastRun   *kylang.Result
	savedPath string

	config Config
}

// New creates a playground model; the file at cfg.Path is loaded when
// cfg.Source is empty and the file exists
func New(cfg Config) (Model, error) {
	if cfg.Logger == nil {
		cfg.Logger = mdwlog.Discard()
	}
	source := cfg.Source
	if source == "" && cfg.Path != "" {
		data, err := os.ReadFile(cfg.Path)
		switch {
		case err == nil:
			source = string(data)
		case !os.IsNotExist(err):
			return Model{}, mdwerror.Wrap(err, "failed to read program").
				WithCode(mdwerror.CodeIOError).
				WithDetail("path", cfg.Path)
		}
	}

	editor := textarea.New()
	editor.Placeholder = "let x := 1\ndisplay x"
	editor.ShowLineNumbers = true
	editor.CharLimit = 0
	editor.MaxHeight = 0
	editor.SetValue(source)
	editor.FocusedStyle.CursorLine = lipgloss.NewStyle()
	editor.Focus()

	input := textarea.New()
	input.Placeholder = "one value per line"
	input.ShowLineNumbers = false
	input.SetHeight(inputHeight)
	input.SetValue(cfg.Input)
	input.FocusedStyle.CursorLine = lipgloss.NewStyle()
	input.Blur()

	return Model{
		editor: editor,
		input:  input,
		output: viewport.New(0, 0),
		help:   help.New(),
		keys:   defaultKeyMap(),
		focus:  FocusEditor,
		status: "ready",
		config: cfg,
	}, nil
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case runFinishedMsg:
		m.running = false
		m.cancel = nil
		m.lastErr = msg.err
		m.lastRun = msg.result
		m.contents = msg.output
		m.output.SetContent(OutputStyle.Render(msg.output))
		m.output.GotoBottom()
		m.status = describeRun(msg.result, msg.err)
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.lastErr = msg.err
			m.status = "save failed: " + msg.err.Error()
			return m, nil
		}
		m.modified = false
		m.savedPath = msg.path
		m.status = "saved " + msg.path
		return m, nil
	}

	// Forward everything else (cursor blink) to the focused pane
	switch m.focus {
	case FocusEditor:
		m.editor, cmd = m.editor.Update(msg)
	case FocusInput:
		m.input, cmd = m.input.Update(msg)
	case FocusOutput:
		m.output, cmd = m.output.Update(msg)
	}
	return m, cmd
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Run):
		if m.running {
			return m, nil
		}
		return m.startRun()

	case key.Matches(msg, m.keys.Cancel):
		if m.cancel != nil {
			m.cancel()
			m.status = "stopping..."
		}
		return m, nil

	case key.Matches(msg, m.keys.Save):
		return m, m.save()

	case key.Matches(msg, m.keys.Focus):
		m.setFocus((m.focus + 1) % 3)
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return m, nil
	}

	var cmd tea.Cmd
	switch m.focus {
	case FocusEditor:
		before := m.editor.Value()
		m.editor, cmd = m.editor.Update(msg)
		if m.editor.Value() != before {
			m.modified = true
		}
	case FocusInput:
		m.input, cmd = m.input.Update(msg)
	case FocusOutput:
		m.output, cmd = m.output.Update(msg)
	}
	return m, cmd
}

func (m *Model) setFocus(f Focus) {
	m.focus = f
	m.editor.Blur()
	m.input.Blur()
	switch f {
	case FocusEditor:
		m.editor.Focus()
	case FocusInput:
		m.input.Focus()
	}
}

// startRun launches the program in the editor with the stdin pane as input
func (m Model) startRun() (tea.Model, tea.Cmd) {
	var ctx context.Context
	var cancel context.CancelFunc
	if m.config.RunTimeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), m.config.RunTimeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	m.running = true
	m.cancel = cancel
	m.status = "running..."

	source := m.editor.Value()
	stdin := m.input.Value()
	if stdin != "" && !strings.HasSuffix(stdin, "\n") {
		stdin += "\n"
	}
	cfg := m.config

	return m, func() tea.Msg {
		defer cancel()
		return execute(ctx, cfg, source, stdin)
	}
}

// execute runs source and records it in the history store when configured
func execute(ctx context.Context, cfg Config, source, stdin string) runFinishedMsg {
	var out bytes.Buffer
	engine := kylang.New(kylang.Options{
		Logger:   cfg.Logger,
		Input:    strings.NewReader(stdin),
		Output:   &out,
		MaxSteps: cfg.MaxSteps,
	})

	record := history.NewRun(history.OriginPlayground, cfg.Path, source)
	result, err := engine.Run(ctx, source)

	record.Output = out.String()
	if result != nil {
		record.Steps = result.Steps
		record.Duration = result.Duration
	}
	if err != nil {
		record.Fail(err)
	}
	if cfg.History != nil {
		if recErr := cfg.History.Record(context.Background(), record); recErr != nil {
			cfg.Logger.Warn("Failed to record run", mdwlog.Fields{"error": recErr.Error()})
		}
	}

	return runFinishedMsg{output: out.String(), result: result, err: err}
}

// save writes the editor content to the configured path
func (m Model) save() tea.Cmd {
	path := m.config.Path
	content := m.editor.Value()
	return func() tea.Msg {
		if path == "" {
			return savedMsg{err: mdwerror.New("no file name given, start the playground with a file argument").
				WithCode(mdwerror.CodeInvalidInput)}
		}
		if !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return savedMsg{path: path, err: mdwerror.Wrap(err, "failed to save program").
				WithCode(mdwerror.CodeIOError).
				WithDetail("path", path)}
		}
		return savedMsg{path: path}
	}
}

// describeRun renders the outcome of a run for the status bar
func describeRun(result *kylang.Result, err error) string {
	if err != nil {
		return mdwerror.GetCode(err).String() + ": " + err.Error()
	}
	return fmt.Sprintf("ok  %d steps  %d displays  %s",
		result.Steps, result.Displays, result.Duration.Round(time.Microsecond))
}

// resize distributes the window among the panes
func (m *Model) resize() {
	if !m.ready {
		return
	}
	leftWidth := m.width / 2
	rightWidth := m.width - leftWidth

	// Panels have a 1 cell border, 1 cell padding and a title line
	bodyHeight := m.height - headerHeight - statusHeight - lipgloss.Height(m.helpView())
	paneHeight := bodyHeight - 3
	if paneHeight < 1 {
		paneHeight = 1
	}

	m.editor.SetWidth(max(leftWidth-4, 10))
	m.editor.SetHeight(paneHeight)

	m.input.SetWidth(max(rightWidth-4, 10))
	outputHeight := paneHeight - inputHeight - 3
	if outputHeight < 1 {
		outputHeight = 1
	}
	m.output.Width = max(rightWidth-4, 10)
	m.output.Height = outputHeight
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Loading playground..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	left := m.renderPanel("Program", m.editor.View(), m.focus == FocusEditor, m.width/2)
	right := lipgloss.JoinVertical(lipgloss.Left,
		m.renderPanel("Input", m.input.View(), m.focus == FocusInput, m.width-m.width/2),
		m.renderPanel("Output", m.output.View(), m.focus == FocusOutput, m.width-m.width/2),
	)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	b.WriteString("\n")

	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")
	b.WriteString(m.helpView())

	return b.String()
}

// renderHeader renders the title panel
func (m Model) renderHeader() string {
	name := m.config.Path
	if name == "" {
		name = "untitled"
	}
	file := FileStyle.Render(name)
	if m.modified {
		file += ModifiedStyle.Render(" *")
	}
	header := lipgloss.JoinHorizontal(lipgloss.Center,
		LogoStyle.Render(Logo),
		strings.Repeat(" ", 3),
		file,
	)
	return TitlePanelStyle.Width(max(m.width-4, 1)).Render(header)
}

func (m Model) renderPanel(title, body string, focused bool, width int) string {
	style := PanelStyle
	if focused {
		style = FocusedPanelStyle
	}
	return style.Width(max(width-2, 1)).Render(PanelTitleStyle.Render(title) + "\n" + body)
}

// renderStatusBar renders the run status and version
func (m Model) renderStatusBar() string {
	var left string
	switch {
	case m.running:
		left = StatusBusyStyle.Render(IconRunning + m.status)
	case m.lastErr != nil:
		left = StatusErrorStyle.Render(IconError + m.status)
		if pos, ok := kylang.ErrorPosition(m.lastErr); ok {
			left += StatusMutedStyle.Render(fmt.Sprintf("  (row %d, column %d)", pos.Row, pos.Column))
		}
	case m.lastRun != nil || m.savedPath != "":
		left = StatusOKStyle.Render(IconOK + m.status)
	default:
		left = StatusMutedStyle.Render(m.status)
	}
	right := StatusMutedStyle.Render("v" + version.Playground)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if gap < 1 {
		gap = 1
	}
	return StatusBarStyle.Width(max(m.width-2, 1)).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) helpView() string {
	return m.help.View(m.keys)
}

// Output returns the output of the last finished run
func (m Model) Output() string {
	return m.contents
}

// Source returns the current editor content
func (m Model) Source() string {
	return m.editor.Value()
}

// Run starts the playground TUI
func Run(cfg Config) error {
	model, err := New(cfg)
	if err != nil {
		return err
	}
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
