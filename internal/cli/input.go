package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/realtyfeed/mvquery/internal/filter"
	"github.com/realtyfeed/mvquery/internal/membership"
	"github.com/realtyfeed/mvquery/internal/store"
	"github.com/realtyfeed/mvquery/internal/ui"
)

// filterText holds --filter for the commands that read a filter document.
var filterText string

const filterArgsUse = "[filter-file|-]"

func addFilterFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&filterText, "filter", "f", "", "Filter document as inline JSON")
}

var stdinIsTerminal = func(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && ui.IsInteractive(f)
}

// readFilterDocument loads the filter from --filter, a file argument, "-" or
// piped stdin, in that order. Files ending in .yaml or .yml are read as
// YAML, everything else as JSON.
func readFilterDocument(cmd *cobra.Command, args []string) (filter.Value, error) {
	switch {
	case filterText != "" && len(args) > 0:
		return filter.Value{}, errors.New("use either --filter or a filter file, not both")
	case filterText != "":
		return decodeFilter([]byte(filterText), false, "--filter")
	case len(args) > 0 && args[0] != "-":
		data, err := os.ReadFile(args[0])
		if err != nil {
			return filter.Value{}, err
		}
		ext := strings.ToLower(filepath.Ext(args[0]))
		return decodeFilter(data, ext == ".yaml" || ext == ".yml", args[0])
	case len(args) > 0 || !stdinIsTerminal(cmd.InOrStdin()):
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return filter.Value{}, fmt.Errorf("failed to read stdin: %w", err)
		}
		return decodeFilter(data, false, "stdin")
	default:
		return filter.Value{}, errors.New("no filter document given")
	}
}

func decodeFilter(data []byte, yamlInput bool, source string) (filter.Value, error) {
	var (
		doc filter.Value
		err error
	)
	if yamlInput {
		doc, err = filter.DecodeYAML(data)
	} else {
		doc, err = filter.DecodeJSON(data)
	}
	if err != nil {
		return filter.Value{}, fmt.Errorf("failed to parse filter from %s: %w", source, err)
	}
	return doc, nil
}

// handleInputError reports a failure to obtain a filter document.
func handleInputError(cmd *cobra.Command, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return handleError(cmd, ErrFileNotFound, err, "")
	}
	return handleError(cmd, ErrInvalidInput, err,
		"Pass a filter file, '-' for stdin, or --filter '{\"ALL\": \"true\"}'")
}

// newService builds the membership service. With withDB it also connects to
// the configured database; the caller closes the returned executor.
func newService(ctx context.Context, withDB bool) (*membership.Service, store.Executor, error) {
	c := getConfig()
	var exec store.Executor
	if withDB {
		var err error
		exec, err = store.Open(ctx, c.Store())
		if err != nil {
			logger.Error("failed to open database", "driver", c.Database.Driver, "error", store.Cause(err))
			return nil, nil, err
		}
	}
	svc, err := membership.New(exec,
		membership.WithView(c.Query.View),
		membership.WithLogger(logger),
	)
	if err != nil {
		if exec != nil {
			exec.Close()
		}
		return nil, nil, err
	}
	return svc, exec, nil
}

// handleServiceError maps service and store errors onto CLI error codes.
func handleServiceError(cmd *cobra.Command, err error) error {
	var invalid *filter.InvalidInputError
	switch {
	case errors.As(err, &invalid):
		if !isJSONOutput() {
			printValidationErrors(cmd.ErrOrStderr(), invalid.Errors)
			return errSilent
		}
		return handleErrorWithDetails(cmd, ErrValidationFailed, "invalid filter document",
			"Run 'mvq docs reference filter-documents' for the grammar", invalid.Errors)
	case errors.Is(err, store.ErrUnsupportedDriver):
		return handleError(cmd, ErrConfigInvalid, err, "Set database.driver to postgres or sqlite")
	case errors.Is(err, store.ErrUnavailable):
		return handleError(cmd, ErrDatabaseUnavailable, errors.New("database unavailable"),
			"Check database.dsn or MVQ_DATABASE_DSN")
	case errors.Is(err, store.ErrDataAccess):
		return handleError(cmd, ErrDatabase, errors.New("query failed"), "Run with LOG_LEVEL=debug for details")
	default:
		return handleError(cmd, ErrInternal, err, "")
	}
}

func printValidationErrors(w io.Writer, errs filter.Errors) {
	fmt.Fprintln(w, ui.Error("invalid filter document "+ui.Count(len(errs), "error", "errors")))
	for _, e := range errs {
		field := e.Field
		if field == "" {
			field = "(document)"
		}
		fmt.Fprintf(w, "  %s  %s\n", ui.Accent.Render(field), e.Message)
	}
}
