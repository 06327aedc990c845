package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/realtyfeed/mvquery/internal/sqlutil"
	"github.com/realtyfeed/mvquery/internal/ui"
)

var compileDialect string

var compileDialects = map[string]sqlutil.PlaceholderStyle{
	"postgres": sqlutil.Dollar,
	"sqlite":   sqlutil.Question,
}

type compileResult struct {
	Dialect   string `json:"dialect"`
	Statement string `json:"statement"`
	Params    []any  `json:"params"`
}

var compileCmd = &cobra.Command{
	Use:   "compile " + filterArgsUse,
	Short: "Print the SQL a filter document compiles to",
	Long: `Validate a filter document and print the parameterized statement and its
parameters without touching the database.

With --dialect the statement is bound for a driver: list parameters are
expanded and placeholders are numbered for postgres.

Examples:
  mvq compile active.json
  mvq compile --dialect postgres --filter '{"OR": {"package_id__in": ["1", "2"]}}'`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		style, bind := compileDialects[compileDialect]
		if !bind && compileDialect != "template" {
			return handleError(cmd, ErrInvalidInput,
				fmt.Errorf("unknown dialect %q", compileDialect), "Use template, postgres or sqlite")
		}

		doc, err := readFilterDocument(cmd, args)
		if err != nil {
			return handleInputError(cmd, err)
		}
		svc, _, err := newService(cmd.Context(), false)
		if err != nil {
			return handleServiceError(cmd, err)
		}
		compiled, err := svc.Compile(doc)
		if err != nil {
			return handleServiceError(cmd, err)
		}

		res := compileResult{Dialect: compileDialect, Statement: compiled.Statement, Params: compiled.Params}
		if bind {
			res.Statement, res.Params, err = sqlutil.Bind(compiled.Statement, compiled.Params, style)
			if err != nil {
				return handleError(cmd, ErrInternal, err, "")
			}
		}

		if isJSONOutput() {
			outputSuccess(cmd, res, &Meta{Count: len(res.Params)})
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, res.Statement)
		if len(res.Params) > 0 {
			fmt.Fprintln(out)
			fmt.Fprintln(out, ui.Header("Parameters"))
			for i, p := range res.Params {
				fmt.Fprintf(out, "  %s %s\n", ui.Muted.Render(fmt.Sprintf("%d.", i+1)), ui.FormatCell(p))
			}
		}
		return nil
	},
}

func init() {
	addFilterFlag(compileCmd)
	compileCmd.Flags().StringVar(&compileDialect, "dialect", "template",
		"Bind for a driver: "+strings.Join([]string{"template", "postgres", "sqlite"}, ", "))
	rootCmd.AddCommand(compileCmd)
}
