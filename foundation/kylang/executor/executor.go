// File: executor.go
// Title: kylang Tree-Walking Executor
// Description: Executes statements and evaluates expressions of a parsed
//              program against a variable store, reading integers from an
//              input stream and writing displayed values to an output
//              stream.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial executor implementation

package executor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	mdwerror "github.com/msto63/kylang/foundation/core/error"
	mdwlog "github.com/msto63/kylang/foundation/core/log"
	"github.com/msto63/kylang/foundation/kylang/ast"
	"github.com/msto63/kylang/foundation/kylang/memory"
)

// DefaultPromptFormat is written before each input when prompting is on
const DefaultPromptFormat = "Enter value for %s: "

// Options configures executor behavior
type Options struct {
	Logger *mdwlog.Logger

	// Input supplies one integer per line to input statements
	Input io.Reader

	// Output receives one line per display statement
	Output io.Writer

	// Prompt writes PromptFormat (with the variable name) to Output
	// before reading
	Prompt       bool
	PromptFormat string

	// MaxSteps bounds the number of executed statements; 0 means unbounded
	MaxSteps int64
}

// Result describes a finished run
type Result struct {
	Steps     int64            `json:"steps"`
	Displays  int              `json:"displays"`
	Inputs    int              `json:"inputs"`
	Duration  time.Duration    `json:"duration"`
	Variables map[string]int64 `json:"variables"`
}

// Executor runs programs. It keeps the buffered input stream between runs
// and must not be used from several goroutines at once.
type Executor struct {
	logger  *mdwlog.Logger
	options Options
	input   *bufio.Reader
	output  io.Writer
}

// New creates a new executor with the given options
func New(opts Options) *Executor {
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.PromptFormat == "" {
		opts.PromptFormat = DefaultPromptFormat
	}

	input, ok := opts.Input.(*bufio.Reader)
	if !ok {
		input = bufio.NewReader(opts.Input)
	}

	return &Executor{
		logger:  opts.Logger.WithField("component", "kylang-executor"),
		options: opts,
		input:   input,
		output:  opts.Output,
	}
}

// run holds the state of one Execute call
type run struct {
	*Executor
	ctx    context.Context
	store  *memory.Store
	result Result
}

// Execute runs prog against store. A nil store gets a fresh one. The
// returned Result is non-nil even when the run fails and then describes
// the work done up to the fault.
func (e *Executor) Execute(ctx context.Context, prog *ast.Program, store *memory.Store) (*Result, error) {
	if prog == nil {
		return nil, mdwerror.New("program cannot be nil").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("execute")
	}
	if store == nil {
		store = memory.New()
	}

	r := &run{Executor: e, ctx: ctx, store: store}
	start := time.Now()
	e.logger.Debug("Execution started", mdwlog.Fields{"statements": len(prog.Stmts)})

	err := r.execStmts(prog.Stmts)

	r.result.Duration = time.Since(start)
	r.result.Variables = store.Snapshot()
	fields := mdwlog.Fields{
		"steps":       r.result.Steps,
		"duration_ms": r.result.Duration.Milliseconds(),
	}
	if err != nil {
		e.logger.Debug("Execution failed", fields.Merge(mdwlog.Err(err)))
		return &r.result, err
	}
	e.logger.Debug("Execution completed", fields)
	return &r.result, nil
}

// Eval evaluates a single expression against store
func (e *Executor) Eval(expr ast.Expr, store *memory.Store) (int64, error) {
	r := &run{Executor: e, ctx: context.Background(), store: store}
	return r.eval(expr)
}

func (r *run) execStmts(stmts []ast.Stmt) error {
	for _, s := range stmts {
		if err := r.exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) exec(stmt ast.Stmt) error {
	if err := r.step(stmt); err != nil {
		return err
	}

	switch s := stmt.(type) {
	case *ast.Assign:
		v, err := r.eval(s.Value)
		if err != nil {
			return err
		}
		r.store.Put(s.Name, v)
		return nil

	case *ast.Display:
		v, err := r.eval(s.Value)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(r.output, v); err != nil {
			return ioError(err, "display", s.Pos)
		}
		r.result.Displays++
		return nil

	case *ast.Input:
		v, err := r.readInt(s)
		if err != nil {
			return err
		}
		r.store.Put(s.Name, v)
		r.result.Inputs++
		return nil

	case *ast.If:
		ok, err := r.test(s.Cond)
		if err != nil {
			return err
		}
		if ok {
			return r.execStmts(s.Then.Stmts)
		}
		for _, clause := range s.Elifs {
			ok, err := r.test(clause.Cond)
			if err != nil {
				return err
			}
			if ok {
				return r.execStmts(clause.Body.Stmts)
			}
		}
		if s.Else != nil {
			return r.execStmts(s.Else.Stmts)
		}
		return nil

	case *ast.While:
		for {
			ok, err := r.test(s.Cond)
			if err != nil || !ok {
				return err
			}
			if err := r.execStmts(s.Body.Stmts); err != nil {
				return err
			}
			if err := r.checkContext(s.Pos); err != nil {
				return err
			}
		}

	case *ast.For:
		from, err := r.eval(s.From)
		if err != nil {
			return err
		}
		to, err := r.eval(s.To)
		if err != nil {
			return err
		}
		for i := from; i <= to; i++ {
			r.store.Put(s.Var, i)
			if err := r.execStmts(s.Body.Stmts); err != nil {
				return err
			}
			if err := r.checkContext(s.Pos); err != nil {
				return err
			}
			// i++ would wrap around past the largest int64
			if i == to {
				break
			}
		}
		return nil

	case *ast.Block:
		return r.execStmts(s.Stmts)

	default:
		return mdwerror.Newf("unsupported statement %T", stmt).
			WithCode(mdwerror.CodeInternal).
			WithOperation("execute")
	}
}

func (r *run) eval(expr ast.Expr) (int64, error) {
	switch e := expr.(type) {
	case *ast.IntLit:
		return e.Value, nil

	case *ast.Ident:
		return r.store.Get(e.Name), nil

	case *ast.Neg:
		v, err := r.eval(e.X)
		if err != nil {
			return 0, err
		}
		return -v, nil

	case *ast.Paren:
		return r.eval(e.X)

	case *ast.Binary:
		left, err := r.eval(e.Left)
		if err != nil {
			return 0, err
		}
		right, err := r.eval(e.Right)
		if err != nil {
			return 0, err
		}
		switch e.Op {
		case ast.OpAdd:
			return left + right, nil
		case ast.OpSub:
			return left - right, nil
		case ast.OpMul:
			return left * right, nil
		case ast.OpDiv:
			if right == 0 {
				pos := e.Right.Position()
				return 0, mdwerror.Newf("Division by zero at row %d, column %d", pos.Row, pos.Column).
					WithCode(mdwerror.CodeArithmetic).
					WithOperation("evaluate").
					WithDetail("row", pos.Row).
					WithDetail("column", pos.Column)
			}
			return left / right, nil
		}
		return 0, mdwerror.Newf("unsupported operator %s", e.Op).WithCode(mdwerror.CodeInternal)

	default:
		return 0, mdwerror.Newf("unsupported expression %T", expr).
			WithCode(mdwerror.CodeInternal).
			WithOperation("evaluate")
	}
}

func (r *run) test(cond ast.BoolExpr) (bool, error) {
	switch c := cond.(type) {
	case *ast.Compare:
		left, err := r.eval(c.Left)
		if err != nil {
			return false, err
		}
		right, err := r.eval(c.Right)
		if err != nil {
			return false, err
		}
		switch c.Op {
		case ast.RelLT:
			return left < right, nil
		case ast.RelLE:
			return left <= right, nil
		case ast.RelGT:
			return left > right, nil
		case ast.RelGE:
			return left >= right, nil
		case ast.RelEQ:
			return left == right, nil
		case ast.RelNE:
			return left != right, nil
		}
		return false, mdwerror.Newf("unsupported operator %s", c.Op).WithCode(mdwerror.CodeInternal)

	default:
		return false, mdwerror.Newf("unsupported condition %T", cond).
			WithCode(mdwerror.CodeInternal).
			WithOperation("evaluate")
	}
}

// readInt reads one line and parses it as a base-10 integer
func (r *run) readInt(s *ast.Input) (int64, error) {
	if r.options.Prompt {
		if _, err := fmt.Fprintf(r.output, r.options.PromptFormat, s.Name); err != nil {
			return 0, ioError(err, "prompt", s.Pos)
		}
	}

	line, err := r.input.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return 0, mdwerror.Newf("No input available for %s at row %d", s.Name, s.Pos.Row).
				WithCode(mdwerror.CodeInputFormat).
				WithOperation("input").
				WithDetail("row", s.Pos.Row).
				WithDetail("column", s.Pos.Column).
				WithDetail("variable", s.Name)
		}
		return 0, ioError(err, "input", s.Pos)
	}

	text := strings.TrimSpace(line)
	v, perr := strconv.ParseInt(text, 10, 64)
	if perr != nil {
		return 0, mdwerror.Newf("Invalid integer input %q for %s at row %d", text, s.Name, s.Pos.Row).
			WithCode(mdwerror.CodeInputFormat).
			WithOperation("input").
			WithDetail("row", s.Pos.Row).
			WithDetail("column", s.Pos.Column).
			WithDetail("variable", s.Name).
			WithDetail("input", text)
	}
	return v, nil
}

// step counts one executed statement and enforces the budget
func (r *run) step(stmt ast.Stmt) error {
	r.result.Steps++
	if r.options.MaxSteps > 0 && r.result.Steps > r.options.MaxSteps {
		pos := stmt.Position()
		return mdwerror.Newf("Step limit of %d exceeded at row %d", r.options.MaxSteps, pos.Row).
			WithCode(mdwerror.CodeStepLimit).
			WithOperation("execute").
			WithDetail("row", pos.Row).
			WithDetail("column", pos.Column).
			WithDetail("limit", r.options.MaxSteps)
	}
	return nil
}

// checkContext ends loops once the run's context is done
func (r *run) checkContext(pos ast.Position) error {
	if r.ctx == nil {
		return nil
	}
	if err := r.ctx.Err(); err != nil {
		return mdwerror.Wrap(err, fmt.Sprintf("Execution cancelled at row %d", pos.Row)).
			WithCode(mdwerror.CodeCancelled).
			WithOperation("execute").
			WithDetail("row", pos.Row).
			WithDetail("column", pos.Column)
	}
	return nil
}

func ioError(err error, op string, pos ast.Position) *mdwerror.Error {
	return mdwerror.Wrap(err, fmt.Sprintf("%s failed at row %d", op, pos.Row)).
		WithCode(mdwerror.CodeIOError).
		WithOperation(op).
		WithDetail("row", pos.Row)
}
