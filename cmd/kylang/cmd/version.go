package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/msto63/kylang/pkg/core/version"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		if versionShort {
			fmt.Println(version.Release)
			return
		}
		fmt.Printf("kylang v%s\n", version.Release)
		fmt.Printf("  Language:   %s\n", version.Language)
		fmt.Printf("  Engine:     %s\n", version.ComponentVersion("engine"))
		fmt.Printf("  Server:     %s\n", version.ComponentVersion("server"))
		fmt.Printf("  Playground: %s\n", version.ComponentVersion("playground"))
		fmt.Printf("  Git Commit: %s\n", version.Commit)
		fmt.Printf("  Build Date: %s\n", version.BuildDate)
		fmt.Printf("  Go Version: %s\n", runtime.Version())
		fmt.Printf("  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "print only the release number")
}
