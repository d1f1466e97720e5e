// Package cli implements the xbrlstudio command tree. The CLI is the
// orchestration layer: it opens the store, supplies the confirmation
// callbacks, and renders progress; all filing semantics live in the
// manager and store packages.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/BitWorks/xbrlstudio/internal/config"
	"github.com/BitWorks/xbrlstudio/internal/manager"
	"github.com/BitWorks/xbrlstudio/internal/store"
)

// RootOptions holds global flags and the resolved configuration shared
// by all commands.
type RootOptions struct {
	CfgFile   string
	DBPath    string
	Verbose   bool
	AssumeYes bool

	Config config.Config
}

// NewRootCommand creates the root command for the xbrlstudio CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "xbrlstudio",
		Short:         "XBRLStudio - filing storage and indexing",
		Long:          "Indexes machine-readable business filings into a durable SQLite store,\nkeyed by reporting entity and fiscal period.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			config.Init(v, opts.CfgFile)

			cfg, err := config.FromViper(v)
			if err != nil {
				return err
			}
			if opts.DBPath != "" {
				cfg.DatabasePath = opts.DBPath
			}
			opts.Config = cfg

			level := cfg.SlogLevel()
			if opts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.CfgFile, "config", "", "config file (default: $HOME/.xbrlstudio/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "database file (overrides config)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().BoolVarP(&opts.AssumeYes, "yes", "y", false, "answer yes to confirmation prompts")

	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewBatchCommand(opts))
	cmd.AddCommand(NewEntitiesCommand(opts))
	cmd.AddCommand(NewFilingsCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewRenameCommand(opts))
	cmd.AddCommand(NewReparentCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// openManager opens the configured database and wraps it in a manager
// whose confirmation prompts honor --yes. The returned closer must be
// called on every exit path.
func openManager(cmd *cobra.Command, opts *RootOptions) (*manager.Manager, func(), error) {
	path := opts.Config.DatabasePath
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	st, err := store.Open(path, store.WithNameResolution(opts.Config.Resolution()))
	if err != nil {
		return nil, nil, err
	}

	confirm := &terminalConfirmer{
		assumeYes: opts.AssumeYes,
		in:        cmd.InOrStdin(),
		out:       cmd.ErrOrStderr(),
	}
	m := manager.New(st, confirm, manager.WithCacheTTL(opts.Config.CacheTTL))

	return m, func() { _ = st.Close() }, nil
}

// stderrProgress renders a percent ticker for long-running removals.
func stderrProgress(cmd *cobra.Command) store.ProgressFunc {
	return func(percent int) {
		fmt.Fprintf(cmd.ErrOrStderr(), "\r%3d%%", percent)
		if percent >= 100 {
			fmt.Fprintln(cmd.ErrOrStderr())
		}
	}
}
