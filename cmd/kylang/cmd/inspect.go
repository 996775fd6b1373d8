package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	mdwerror "github.com/msto63/kylang/foundation/core/error"
	"github.com/msto63/kylang/foundation/kylang"
	"github.com/msto63/kylang/foundation/kylang/ast"
)

var (
	tokensJSON bool
	astFormat  string
)

var tokensCmd = &cobra.Command{
	Use:   "tokens <file>",
	Short: "Print the token stream of a program",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokens,
}

var astCmd = &cobra.Command{
	Use:   "ast <file>",
	Short: "Print the syntax tree of a program",
	Long: `Parses a program and prints its syntax tree.

Formats:
  text    indented tree (default)
  json    nested objects
  yaml    nested mappings
  source  the program re-rendered in canonical form`,
	Args: cobra.ExactArgs(1),
	RunE: runAST,
}

var checkCmd = &cobra.Command{
	Use:   "check <file>...",
	Short: "Parse programs without running them",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(tokensCmd, astCmd, checkCmd)
	tokensCmd.Flags().BoolVar(&tokensJSON, "json", false, "print tokens as JSON")
	astCmd.Flags().StringVarP(&astFormat, "format", "f", "text", "output format: text, json, yaml or source")
}

// tokenView is the JSON form of a token
type tokenView struct {
	Row    int    `json:"row"`
	Column int    `json:"column"`
	Kind   string `json:"kind"`
	Text   string `json:"text"`
}

func runTokens(cmd *cobra.Command, args []string) error {
	src, err := readSource(args[0])
	if err != nil {
		return err
	}

	// Print what was scanned before a lexical error, then report it
	tokens, lexErr := kylang.Tokenize(src)

	if tokensJSON {
		views := make([]tokenView, 0, len(tokens))
		for _, tok := range tokens {
			views = append(views, tokenView{Row: tok.Row(), Column: tok.Column(), Kind: tok.Kind().String(), Text: tok.Text()})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(views); err != nil {
			return err
		}
		return lexErr
	}

	fmt.Printf("%-9s %-12s %s\n", "POS", "KIND", "TEXT")
	for _, tok := range tokens {
		fmt.Printf("%-9s %-12s %q\n", fmt.Sprintf("%d:%d", tok.Row(), tok.Column()), tok.Kind(), tok.Text())
	}
	return lexErr
}

func runAST(cmd *cobra.Command, args []string) error {
	src, err := readSource(args[0])
	if err != nil {
		return err
	}

	engine := kylang.New(kylang.Options{Logger: logger})
	prog, err := engine.ParseSource(src)
	if err != nil {
		return err
	}

	switch astFormat {
	case "text":
		fmt.Print(ast.Dump(prog))
	case "source":
		fmt.Print(ast.Format(prog))
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ast.ToMap(prog))
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(ast.ToMap(prog))
	default:
		return mdwerror.Newf("unknown format %q, want text, json, yaml or source", astFormat).
			WithCode(mdwerror.CodeInvalidInput)
	}
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	engine := kylang.New(kylang.Options{Logger: logger})

	failed := 0
	for _, path := range args {
		src, err := readSource(path)
		if err == nil {
			var prog *ast.Program
			prog, err = engine.ParseSource(src)
			if err == nil {
				fmt.Printf("%s: ok (%d statements)\n", path, len(prog.Stmts))
				continue
			}
		}
		failed++
		fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
	}

	if failed > 0 {
		return mdwerror.Newf("%d of %d files failed", failed, len(args)).
			WithCode(mdwerror.CodeInvalidInput)
	}
	return nil
}
