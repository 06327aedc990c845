package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/realtyfeed/mvquery/internal/ui"
)

var validateCmd = &cobra.Command{
	Use:   "validate " + filterArgsUse,
	Short: "Check a filter document without running it",
	Long: `Check a filter document against the membership grammar and report every
problem found. Exits non-zero when the document is invalid.

Examples:
  mvq validate active.json
  mvq validate --json --filter '{"AND": {"package_id__gte": "abc"}}'`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readFilterDocument(cmd, args)
		if err != nil {
			return handleInputError(cmd, err)
		}
		svc, _, err := newService(cmd.Context(), false)
		if err != nil {
			return handleServiceError(cmd, err)
		}

		errs := svc.Validate(doc)
		if len(errs) > 0 {
			if isJSONOutput() {
				return handleErrorWithDetails(cmd, ErrValidationFailed, "invalid filter document",
					"Run 'mvq docs reference filter-documents' for the grammar", errs)
			}
			printValidationErrors(cmd.ErrOrStderr(), errs)
			return errSilent
		}

		if isJSONOutput() {
			outputSuccess(cmd, map[string]bool{"valid": true}, nil)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("filter document is valid"))
		return nil
	},
}

func init() {
	addFilterFlag(validateCmd)
	rootCmd.AddCommand(validateCmd)
}
