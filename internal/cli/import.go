package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BitWorks/xbrlstudio/internal/filing"
	"github.com/BitWorks/xbrlstudio/internal/manager"
)

// NewImportCommand creates the import command. Automatic imports rely
// on metadata extracted from the document; --name and --period switch
// to the manual path for documents whose disclosures are incomplete.
func NewImportCommand(opts *RootOptions) *cobra.Command {
	var (
		cikFlag  string
		name     string
		period   string
		instance string
	)

	cmd := &cobra.Command{
		Use:   "import <fact-file>",
		Short: "Import a fact document into the store",
		Long: `Import parses a fact document and stores it keyed by entity cik and
fiscal period. Metadata is extracted from the document's disclosure
tags; supply --cik, --name, and --period to import documents whose
disclosures are incomplete.

Examples:
  xbrlstudio import facts.xml
  xbrlstudio import facts.xml --cik 320193
  xbrlstudio import facts.xml --cik 320193 --name "Example Corp" --period q22021`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			if instance != "" && !filing.IsInstanceDocument(instance) {
				return fmt.Errorf("%s is not a recognized instance document", instance)
			}

			var cik *int
			if cikFlag != "" {
				v, ok := filing.ParseCIK(cikFlag)
				if !ok {
					return fmt.Errorf("invalid cik %q", cikFlag)
				}
				cik = &v
			}

			manual := name != "" || period != ""
			if manual && (cik == nil || name == "" || period == "") {
				return errors.New("manual import requires --cik, --name, and --period together")
			}

			m, closeStore, err := openManager(cmd, opts)
			if err != nil {
				return err
			}
			defer closeStore()

			var result manager.ImportResult
			if manual {
				result, err = m.ImportManual(cmd.Context(), *cik, name, period, path)
			} else {
				result, err = m.ImportFiling(cmd.Context(), path, cik)
			}

			var notImportable *manager.NotImportableError
			if errors.As(err, &notImportable) {
				return fmt.Errorf("%w; re-run with --cik, --name, and --period", notImportable)
			}
			if err != nil {
				return err
			}

			switch result {
			case manager.ImportStored:
				fmt.Fprintln(cmd.OutOrStdout(), "imported")
			case manager.ImportSkipped:
				fmt.Fprintln(cmd.OutOrStdout(), "skipped")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cikFlag, "cik", "", "entity cik (overrides extraction)")
	cmd.Flags().StringVar(&name, "name", "", "entity name (manual import)")
	cmd.Flags().StringVar(&period, "period", "", "fiscal period qNYYYY (manual import)")
	cmd.Flags().StringVar(&instance, "instance", "", "source instance document to pre-check")

	return cmd
}

// NewBatchCommand creates the batch command, importing every document
// listed in a yaml manifest.
func NewBatchCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <manifest.yaml>",
		Short: "Import every fact document listed in a manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, closeStore, err := openManager(cmd, opts)
			if err != nil {
				return err
			}
			defer closeStore()

			result, err := m.ImportBatch(cmd.Context(), args[0], stderrProgress(cmd))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "batch %s: %d stored, %d skipped, %d failed\n",
				result.BatchID, result.Stored, result.Skipped, len(result.Errors))
			for _, entryErr := range result.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %v\n", entryErr.Path, entryErr.Err)
			}
			if len(result.Errors) > 0 {
				return fmt.Errorf("%d of %d entries failed", len(result.Errors),
					result.Stored+result.Skipped+len(result.Errors))
			}
			return nil
		},
	}
	return cmd
}
