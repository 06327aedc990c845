package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/realtyfeed/mvquery/internal/server"
	"github.com/realtyfeed/mvquery/internal/ui"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the attributes and operators filters may use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := newService(cmd.Context(), false)
		if err != nil {
			return handleServiceError(cmd, err)
		}
		desc := server.Describe(svc.View(), svc.Catalog())

		if isJSONOutput() {
			outputSuccess(cmd, desc, &Meta{Count: len(desc.Attributes)})
			return nil
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.Header("View "+desc.View))
		tbl := ui.NewResultsTable(ui.NewDisplayContext(out), []string{"attribute", "type"})
		for _, a := range desc.Attributes {
			tbl.AddRow(a.Name, a.Type)
		}
		fmt.Fprintln(out, tbl.Render())
		ops := make([]string, len(desc.Operators))
		for i, op := range desc.Operators {
			ops[i] = "__" + op
		}
		fmt.Fprintln(out, ui.Hint("operators: "+strings.Join(ops, " ")))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}
