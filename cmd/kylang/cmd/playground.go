package cmd

import (
	"github.com/spf13/cobra"

	mdwlog "github.com/msto63/kylang/foundation/core/log"
	"github.com/msto63/kylang/internal/tui/playground"
)

var playgroundCmd = &cobra.Command{
	Use:   "playground [file]",
	Short: "Edit and run programs in an interactive terminal UI",
	Long: `Opens a terminal playground with a program editor, an input pane and
the output of the last run.

Keys:
  ctrl+r  run          ctrl+k  stop a running program
  ctrl+s  save         tab     switch pane
  f1      all keys     esc     quit

Blocks are indented with four spaces in the editor.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlayground,
}

func init() {
	rootCmd.AddCommand(playgroundCmd)
}

func runPlayground(cmd *cobra.Command, args []string) error {
	cfg := playground.DefaultConfig()
	if len(args) == 1 {
		cfg.Path = args[0]
	}
	if appConfig.Interpreter.MaxSteps > 0 {
		cfg.MaxSteps = appConfig.Interpreter.MaxSteps
	}
	// Log lines on the terminal would corrupt the alternate screen
	cfg.Logger = logger
	switch appConfig.Logging.Output {
	case "stderr", "stdout":
		cfg.Logger = mdwlog.Discard()
	}

	if appConfig.History.Enabled {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()
		cfg.History = store
	}
	return playground.Run(cfg)
}
