package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// outputFormat is the --format value for result-producing commands.
type outputFormat string

const (
	formatTable outputFormat = "table"
	formatJSON  outputFormat = "json"
	formatYAML  outputFormat = "yaml"
)

var outputFormats = []string{string(formatTable), string(formatJSON), string(formatYAML)}

var _ pflag.Value = (*outputFormat)(nil)

func (f *outputFormat) String() string { return string(*f) }

func (f *outputFormat) Set(s string) error {
	switch v := outputFormat(strings.ToLower(strings.TrimSpace(s))); v {
	case formatTable, formatJSON, formatYAML:
		*f = v
		return nil
	default:
		return fmt.Errorf("must be one of %s", strings.Join(outputFormats, ", "))
	}
}

func (f *outputFormat) Type() string { return "format" }

func addFormatFlag(fs *pflag.FlagSet, target *outputFormat) {
	*target = formatTable
	fs.VarP(target, "format", "o", "Output format: "+strings.Join(outputFormats, ", "))
}
