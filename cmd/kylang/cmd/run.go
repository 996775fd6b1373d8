package cmd

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	mdwerror "github.com/msto63/kylang/foundation/core/error"
	mdwlog "github.com/msto63/kylang/foundation/core/log"
	"github.com/msto63/kylang/foundation/kylang"
	"github.com/msto63/kylang/internal/history"
	"github.com/msto63/kylang/internal/watch"
	"github.com/msto63/kylang/pkg/core/config"
)

var (
	runInputFile string
	runPrompt    string
	runMaxSteps  int64
	runWatch     bool
	runNoHistory bool
	runStats     bool
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Run a kylang program",
	Long: `Parses and runs a kylang program. Use "-" to read the program from stdin;
input statements then need --input.

Input statements read one integer per line from stdin (or --input). When
stdin is a terminal a prompt "Enter value for <name>: " is shown.

Examples:
  kylang run examples/sum.ky
  kylang run --input numbers.txt examples/sum.ky
  kylang run --watch examples/sum.ky`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runInputFile, "input", "i", "", "read input values from a file instead of stdin")
	runCmd.Flags().StringVar(&runPrompt, "prompt", "", "input prompt: auto, always or never (default from config)")
	runCmd.Flags().Int64Var(&runMaxSteps, "max-steps", -1, "abort after this many statements, 0 for no limit (default from config)")
	runCmd.Flags().BoolVarP(&runWatch, "watch", "w", false, "run again whenever the file changes")
	runCmd.Flags().BoolVar(&runNoHistory, "no-history", false, "do not record this run in the history")
	runCmd.Flags().BoolVar(&runStats, "stats", false, "print step count and duration to stderr")
}

func runRun(cmd *cobra.Command, args []string) error {
	path := args[0]
	if path == "-" && runWatch {
		return mdwerror.New("--watch needs a file, not stdin").WithCode(mdwerror.CodeInvalidInput)
	}

	switch runPrompt {
	case "", config.PromptAuto, config.PromptAlways, config.PromptNever:
	default:
		return mdwerror.Newf("invalid --prompt %q, want auto, always or never", runPrompt).
			WithCode(mdwerror.CodeInvalidInput)
	}

	ctx, cancel := signalContext()
	defer cancel()

	var store history.Store
	if appConfig.History.Enabled && !runNoHistory {
		s, err := openHistory()
		if err != nil {
			logger.Warn("Run history unavailable", mdwlog.Fields{"error": err.Error()})
		} else {
			store = s
			defer store.Close()
		}
	}

	// shared by every run in watch mode
	stdin := bufio.NewReader(os.Stdin)

	err := runOnce(ctx, path, store, stdin)
	if !runWatch {
		return err
	}
	if err != nil {
		printError(err)
	}

	w, err := watch.New(path, watch.Options{Logger: logger, Debounce: appConfig.Watch.Debounce.Duration})
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Watching %s, press Ctrl+C to stop\n", path)
	return w.Run(ctx, func(string) {
		fmt.Fprintln(os.Stderr, "---- file changed, running again ----")
		if err := runOnce(ctx, path, store, stdin); err != nil {
			printError(err)
		}
	})
}

// runOnce reads, runs and records the program at path. Input statements
// read from stdin unless --input names a file, which is reopened per run.
func runOnce(ctx context.Context, path string, store history.Store, stdin *bufio.Reader) error {
	src, err := readSource(path)
	if err != nil {
		return err
	}

	input, closeInput, err := openInput(path, stdin)
	if err != nil {
		return err
	}
	defer closeInput()

	var captured bytes.Buffer
	engine := kylang.New(kylang.Options{
		Logger:       logger,
		Input:        input,
		Output:       io.MultiWriter(os.Stdout, &captured),
		Prompt:       promptEnabled(),
		PromptFormat: appConfig.Interpreter.InputPromptFormat,
		MaxSteps:     maxSteps(),
	})

	record := history.NewRun(history.OriginCLI, path, src)
	result, runErr := engine.Run(ctx, src)

	if result != nil {
		record.Steps = result.Steps
		record.Duration = result.Duration
		if runStats {
			fmt.Fprintf(os.Stderr, "steps: %d  displays: %d  inputs: %d  duration: %s\n",
				result.Steps, result.Displays, result.Inputs, result.Duration)
		}
	}
	record.Output = captured.String()
	if runErr != nil {
		record.Fail(runErr)
	}

	if store != nil {
		if err := store.Record(context.Background(), record); err != nil {
			logger.Warn("Failed to record run", mdwlog.Fields{"error": err.Error()})
		}
	}
	return runErr
}

// openInput returns the reader for input statements
func openInput(path string, stdin *bufio.Reader) (io.Reader, func(), error) {
	if runInputFile != "" {
		f, err := os.Open(runInputFile)
		if err != nil {
			return nil, nil, mdwerror.Wrap(err, "failed to open input file").
				WithCode(mdwerror.CodeFileNotFound).
				WithDetail("path", runInputFile)
		}
		return f, func() { f.Close() }, nil
	}
	if path == "-" {
		// stdin already holds the program
		return bytes.NewReader(nil), func() {}, nil
	}
	if stdin == nil {
		return os.Stdin, func() {}, nil
	}
	return stdin, func() {}, nil
}

// promptEnabled resolves the prompt mode from the flag, then the config
func promptEnabled() bool {
	mode := runPrompt
	if mode == "" {
		mode = appConfig.Interpreter.PromptInput
	}
	switch mode {
	case config.PromptAlways:
		return true
	case config.PromptNever:
		return false
	default:
		if runInputFile != "" {
			return false
		}
		fd := os.Stdin.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
}

func maxSteps() int64 {
	if runMaxSteps >= 0 {
		return runMaxSteps
	}
	return appConfig.Interpreter.MaxSteps
}
