package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	quiet   bool
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "semdex",
	Short: "Semdex - a SemanticDB indexer for Java sources",
	Long: `Semdex walks a tree of Java source files and produces one index
document per file: symbol occurrences with exact ranges plus symbol
metadata, for consumption by code-intelligence tooling.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
