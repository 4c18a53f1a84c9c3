package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/semdex/internal/config"
	"github.com/mvp-joe/semdex/internal/indexer"
)

var (
	indexIncludeText bool
	indexDBPath      string
	indexOutputDir   string
	indexWorkers     int
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index a tree of Java source files",
	Long: `Index discovers Java files under the given path (default: current
directory), produces one index document per file, and writes them as JSON
under the output directory. With --db, documents are also stored in SQLite.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDir := "."
		if len(args) > 0 {
			rootDir = args[0]
		}
		rootDir, err := filepath.Abs(rootDir)
		if err != nil {
			return err
		}

		cfg, err := config.NewLoader(rootDir).Load()
		if err != nil {
			return err
		}
		applyIndexFlags(cmd, cfg)

		idx, err := indexer.New(indexer.RunOptions{
			RootDir:     rootDir,
			OutputDir:   cfg.OutputDir,
			DBPath:      cfg.DBPath,
			IncludeText: cfg.IncludeText,
			Workers:     cfg.Workers,
			Include:     cfg.Include,
			Ignore:      cfg.Ignore,
			Progress:    NewProgressReporter(quiet),
		})
		if err != nil {
			return err
		}
		defer idx.Close()

		result, err := idx.Run(cmd.Context())
		if err != nil {
			return err
		}
		if !quiet {
			fmt.Printf("Indexed %d files: %d occurrences, %d symbols in %s\n",
				result.Files, result.Occurrences, result.Symbols, result.Duration.Round(time.Millisecond))
		}
		return nil
	},
}

// applyIndexFlags lets explicit command-line flags override the loaded
// configuration.
func applyIndexFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("include-text") {
		cfg.IncludeText = indexIncludeText
	}
	if cmd.Flags().Changed("db") {
		cfg.DBPath = indexDBPath
	}
	if cmd.Flags().Changed("output") {
		cfg.OutputDir = indexOutputDir
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = indexWorkers
	}
}

func init() {
	indexCmd.Flags().BoolVar(&indexIncludeText, "include-text", false, "embed source text in documents")
	indexCmd.Flags().StringVar(&indexDBPath, "db", "", "also store documents in a SQLite database at this path")
	indexCmd.Flags().StringVar(&indexOutputDir, "output", "", "output directory for JSON documents")
	indexCmd.Flags().IntVar(&indexWorkers, "workers", 0, "indexing worker count")
	rootCmd.AddCommand(indexCmd)
}
