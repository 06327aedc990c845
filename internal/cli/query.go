package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/realtyfeed/mvquery/internal/store"
	"github.com/realtyfeed/mvquery/internal/ui"
)

var (
	queryFormat  outputFormat
	queryColumns []string
)

var queryCmd = &cobra.Command{
	Use:   "query " + filterArgsUse,
	Short: "Run a filter document against the membership view",
	Long: `Validate a filter document, compile it and run it against the configured
database.

Examples:
  mvq query active.json
  mvq query filters/gold.yaml --format yaml
  mvq query --filter '{"ALL": "true", "LIMIT": "5"}' --columns user_id,email
  cat filter.json | mvq query --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readFilterDocument(cmd, args)
		if err != nil {
			return handleInputError(cmd, err)
		}

		ctx := cmd.Context()
		svc, exec, err := newService(ctx, true)
		if err != nil {
			return handleServiceError(cmd, err)
		}
		defer exec.Close()

		spinner := ui.NewSpinner(cmd.ErrOrStderr(), "querying")
		spinner.Start()
		start := time.Now()
		rows, err := svc.List(ctx, doc)
		elapsed := time.Since(start)
		spinner.Stop()
		if err != nil {
			return handleServiceError(cmd, err)
		}

		if isJSONOutput() {
			outputSuccess(cmd, rows, &Meta{Count: len(rows), QueryTimeMs: elapsed.Milliseconds()})
			return nil
		}
		columns := queryColumns
		if len(columns) == 0 {
			columns = ui.ColumnOrder(rows, svc.Catalog().Names())
		}
		return writeRows(cmd.OutOrStdout(), queryFormat, rows, columns, queryColumns)
	},
}

// writeRows renders rows in the requested format. The table shows columns;
// structured formats keep every column unless picked is set.
func writeRows(w io.Writer, format outputFormat, rows []store.Row, columns, picked []string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(selectColumns(rows, picked))
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(selectColumns(rows, picked)); err != nil {
			return err
		}
		return enc.Close()
	default:
		if len(rows) == 0 {
			fmt.Fprintln(w, ui.Hint("no rows"))
			return nil
		}
		tbl := ui.RowsTable(ui.NewDisplayContext(w), rows, columns)
		fmt.Fprintln(w, tbl.Render())
		fmt.Fprintln(w, ui.Hint(ui.Count(len(rows), "row", "rows")))
		return nil
	}
}

// selectColumns restricts each row to columns. No columns means all.
func selectColumns(rows []store.Row, columns []string) []store.Row {
	if len(columns) == 0 {
		return rows
	}
	out := make([]store.Row, len(rows))
	for i, row := range rows {
		picked := make(store.Row, len(columns))
		for _, col := range columns {
			picked[col] = row[col]
		}
		out[i] = picked
	}
	return out
}

func init() {
	addFilterFlag(queryCmd)
	addFormatFlag(queryCmd.Flags(), &queryFormat)
	queryCmd.Flags().StringSliceVar(&queryColumns, "columns", nil, "Columns to show (default: all, in catalog order)")
	_ = queryCmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return outputFormats, cobra.ShellCompDirectiveNoFileComp
	})
	rootCmd.AddCommand(queryCmd)
}
