package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/semdex/internal/config"
	"github.com/mvp-joe/semdex/internal/indexer"
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Index a tree and re-index files as they change",
	Long: `Watch performs a full indexing run, then keeps watching the tree and
re-indexes Java files on every change until interrupted.`,
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

		if _, err := idx.Run(cmd.Context()); err != nil {
			return err
		}

		watcher, err := indexer.NewWatcher(idx, rootDir)
		if err != nil {
			return err
		}
		watcher.Start(cmd.Context())
		defer watcher.Stop()

		if !quiet {
			fmt.Println("Watching for changes. Press Ctrl+C to stop.")
		}

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		select {
		case <-sig:
		case <-cmd.Context().Done():
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().BoolVar(&indexIncludeText, "include-text", false, "embed source text in documents")
	watchCmd.Flags().StringVar(&indexDBPath, "db", "", "also store documents in a SQLite database at this path")
	watchCmd.Flags().StringVar(&indexOutputDir, "output", "", "output directory for JSON documents")
	watchCmd.Flags().IntVar(&indexWorkers, "workers", 0, "indexing worker count")
	rootCmd.AddCommand(watchCmd)
}
