package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/BitWorks/xbrlstudio/internal/filing"
)

// NewFilingsCommand creates the filings command, listing the periods
// stored for one entity.
func NewFilingsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filings <cik>",
		Short: "List the filings stored for an entity",
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

			name, known, err := m.NameFromCik(cmd.Context(), cik)
			if err != nil {
				return err
			}
			if !known {
				return fmt.Errorf("unknown cik %d", cik)
			}

			available, err := m.FilingsAvailable(cmd.Context(), cik)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", name, filing.FormatCIK(cik))
			for _, token := range available {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", token)
			}
			if len(available) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "  no filings")
			}
			return nil
		},
	}
	return cmd
}

// NewShowCommand creates the show command, printing one stored filing
// fact by fact.
func NewShowCommand(opts *RootOptions) *cobra.Command {
	var textOnly bool

	cmd := &cobra.Command{
		Use:   "show <cik> <period>",
		Short: "Print one stored filing (period is qNYYYY)",
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

			f, err := m.GetFiling(cmd.Context(), cik, args[1])
			if err != nil {
				return err
			}
			if f == nil {
				return fmt.Errorf("no filing stored for cik %d period %s", cik, args[1])
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tLABEL\tVALUE")
			for _, fact := range f.Facts {
				value := fact.Value
				if textOnly && filing.IsAlphaOrHTML(fact) {
					value = filing.ExtractText(value)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", fact.Name, fact.Label, value)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&textOnly, "text", false, "flatten rich-text values to plain text")
	return cmd
}
