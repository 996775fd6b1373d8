package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mdwerror "github.com/msto63/kylang/foundation/core/error"
	mdwlog "github.com/msto63/kylang/foundation/core/log"
	"github.com/msto63/kylang/pkg/core/config"
	"github.com/msto63/kylang/pkg/core/logging"
)

var (
	cfgFile string
	verbose bool

	appConfig *config.Config
	logger    *mdwlog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "kylang",
	Short: "kylang - a small teaching language interpreter",
	Long: `kylang runs programs written in a minimal imperative teaching language:
integer variables, arithmetic, comparisons, if/elif/else, while and
for loops, with tab (or four space) indentation marking blocks.

Example:
  let total := 0
  for i in 1 .. 10:
  	let total := total + i
  display total`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseOutputs()
	},
}

// Execute runs the root command and prints a failure to stderr
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $KYLANG_CONFIG or ./kylang.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
}

// setup loads the configuration and installs the default logger
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Resolve(cfgFile)
	if err != nil {
		return err
	}
	appConfig = cfg

	logCfg := logging.FromConfig("kylang", cfg.Logging)
	if verbose {
		logCfg.Level = "debug"
	}
	logger = logging.NewLogger(logCfg)
	mdwlog.SetDefault(logger)

	logger.Debug("Configuration loaded", mdwlog.Fields{
		"config":  cfgFile,
		"command": cmd.Name(),
	})
	return nil
}

// printError reports err on stderr
func printError(err error) {
	prefix := "Error"
	switch mdwerror.GetCode(err) {
	case mdwerror.CodeArithmetic, mdwerror.CodeInputFormat, mdwerror.CodeCancelled, mdwerror.CodeStepLimit:
		prefix = "Runtime error"
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", prefix, err)
}
