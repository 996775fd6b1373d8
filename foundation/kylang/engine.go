// File: engine.go
// Title: kylang High-Level Engine Interface
// Description: Integrates parser and executor behind one entry point that
//              parses source text and runs it with a fresh variable store.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial engine implementation

package kylang

import (
	"context"
	"errors"
	"io"

	mdwerror "github.com/msto63/kylang/foundation/core/error"
	mdwlog "github.com/msto63/kylang/foundation/core/log"
	"github.com/msto63/kylang/foundation/kylang/ast"
	"github.com/msto63/kylang/foundation/kylang/executor"
	"github.com/msto63/kylang/foundation/kylang/memory"
	"github.com/msto63/kylang/foundation/kylang/parser"
	mdwstringx "github.com/msto63/kylang/foundation/utils/stringx"
)

// Result is the outcome of an executed program
type Result = executor.Result

// Engine parses and executes kylang programs
type Engine struct {
	parser   *parser.Parser
	executor *executor.Executor
	logger   *mdwlog.Logger
	options  Options
}

// Options configures the engine
type Options struct {
	Logger *mdwlog.Logger

	// Input and Output default to os.Stdin and os.Stdout
	Input  io.Reader
	Output io.Writer

	// Prompt enables the "Enter value for <id>: " prompt before each input
	Prompt       bool
	PromptFormat string

	// MaxSteps bounds the statements executed per run; 0 means unbounded
	MaxSteps int64
}

// New creates a new engine
func New(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}
	logger := opts.Logger.WithField("component", "kylang-engine")

	return &Engine{
		parser: parser.New(parser.Options{Logger: opts.Logger}),
		executor: executor.New(executor.Options{
			Logger:       opts.Logger,
			Input:        opts.Input,
			Output:       opts.Output,
			Prompt:       opts.Prompt,
			PromptFormat: opts.PromptFormat,
			MaxSteps:     opts.MaxSteps,
		}),
		logger:  logger,
		options: opts,
	}
}

// Parse parses already split source lines
func (e *Engine) Parse(lines []string) (*ast.Program, error) {
	return e.parser.Parse(lines)
}

// ParseSource splits src into lines and parses them
func (e *Engine) ParseSource(src string) (*ast.Program, error) {
	return e.parser.Parse(mdwstringx.SplitLines(src))
}

// Execute runs prog with a fresh variable store
func (e *Engine) Execute(ctx context.Context, prog *ast.Program) (*Result, error) {
	return e.executor.Execute(ctx, prog, memory.New())
}

// Run parses and executes src. Nothing is executed when parsing fails.
func (e *Engine) Run(ctx context.Context, src string) (*Result, error) {
	timer := e.logger.StartTimer("kylang run")

	prog, err := e.ParseSource(src)
	if err != nil {
		timer.WithField("error_code", mdwerror.GetCode(err).String()).Stop()
		return nil, err
	}

	result, err := e.Execute(ctx, prog)
	timer.WithField("steps", result.Steps)
	if err != nil {
		timer.WithField("error_code", mdwerror.GetCode(err).String())
	}
	timer.Stop()
	return result, err
}

// Tokenize returns the tokens of every non-blank line of src, each line
// terminated by its end-of-line token
func Tokenize(src string) ([]parser.Token, error) {
	var tokens []parser.Token
	for i, line := range mdwstringx.SplitLines(src) {
		if parser.IsBlankLine(line) {
			continue
		}
		lineTokens, err := parser.TokenizeLine(line, i+1)
		tokens = append(tokens, lineTokens...)
		if err != nil {
			return tokens, err
		}
	}
	return tokens, nil
}

// IsLexical reports whether err is a lexical error
func IsLexical(err error) bool {
	return mdwerror.HasCode(err, mdwerror.CodeLexical)
}

// IsSyntax reports whether err is a syntax error
func IsSyntax(err error) bool {
	return mdwerror.HasCode(err, mdwerror.CodeSyntax)
}

// IsArithmetic reports whether err is an arithmetic fault
func IsArithmetic(err error) bool {
	return mdwerror.HasCode(err, mdwerror.CodeArithmetic)
}

// IsInputFormat reports whether err is an input format fault
func IsInputFormat(err error) bool {
	return mdwerror.HasCode(err, mdwerror.CodeInputFormat)
}

// ErrorPosition returns the source position recorded on err
func ErrorPosition(err error) (ast.Position, bool) {
	var mdwErr *mdwerror.Error
	for errors.As(err, &mdwErr) {
		row := mdwErr.IntDetail("row")
		if row > 0 {
			col := mdwErr.IntDetail("column")
			if col < 0 {
				col = 0
			}
			return ast.Position{Row: row, Column: col}, true
		}
		err = mdwErr.Unwrap()
	}
	return ast.Position{}, false
}
