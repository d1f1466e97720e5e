package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BitWorks/xbrlstudio/internal/filing"
)

// NewRemoveCommand creates the remove command group.
func NewRemoveCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove stored data",
	}
	cmd.AddCommand(newRemoveEntityCommand(opts))
	cmd.AddCommand(newRemoveFilingCommand(opts))
	return cmd
}

func newRemoveEntityCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "entity <cik>",
		Short: "Remove an entity, its descendants, and all their filings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cik, ok := filing.ParseCIK(args[0])
			if !ok {
				return fmt.Errorf("invalid cik %q", args[0])
			}

			m, closeStore, err := openManager(cmd, opts)
			if err != nil {
				return err
			}
			defer closeStore()

			if !opts.AssumeYes {
				name, known, err := m.NameFromCik(cmd.Context(), cik)
				if err != nil {
					return err
				}
				if !known {
					return fmt.Errorf("unknown cik %d", cik)
				}
				confirm := &terminalConfirmer{in: cmd.InOrStdin(), out: cmd.ErrOrStderr()}
				if !confirm.prompt(fmt.Sprintf("Remove %q and all descendants? [y/N]: ", name)) {
					fmt.Fprintln(cmd.OutOrStdout(), "aborted")
					return nil
				}
			}

			return m.RemoveEntity(cmd.Context(), cik, stderrProgress(cmd))
		},
	}
}

func newRemoveFilingCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "filing <cik> <period>",
		Short: "Remove one quarter (qNYYYY) or a whole year (YYYY) of filings",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cik, ok := filing.ParseCIK(args[0])
			if !ok {
				return fmt.Errorf("invalid cik %q", args[0])
			}

			m, closeStore, err := openManager(cmd, opts)
			if err != nil {
				return err
			}
			defer closeStore()

			return m.RemoveFiling(cmd.Context(), cik, args[1], stderrProgress(cmd))
		},
	}
}
