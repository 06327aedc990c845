package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/realtyfeed/mvquery/internal/config"
	"github.com/realtyfeed/mvquery/internal/logging"
)

// annotationSkipConfig marks commands (and their children) that run
// without loading the config file.
const annotationSkipConfig = "mvq/skip-config"

var (
	// Global flags
	configPath string

	// Resolved values
	resolvedConfigPath string
	cfg                *config.Config
	logger             = logging.Discard()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "mvq",
	Short: "mvq - membership view query compiler",
	Long: `mvq validates membership filter documents, compiles them into a single
parameterized SELECT against the membership view, and runs them.

Filters are JSON (or YAML) objects such as:

  {"AND": {"package_id__gte": "100"}, "ORDERBY": "start_date", "LIMIT": "20"}

Run 'mvq docs' for the full reference.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Commands that work without a config file
		switch cmd.Name() {
		case "version", "help", "completion":
			return nil
		}
		for c := cmd; c != nil; c = c.Parent() {
			if c.Annotations[annotationSkipConfig] == "true" {
				return nil
			}
		}

		loaded, path, err := loadConfig()
		if err != nil {
			return handleError(cmd, ErrConfigInvalid, err, "Run 'mvq config init' to write a default config")
		}
		cfg = loaded
		resolvedConfigPath = path
		logger = newLogger(cmd.ErrOrStderr(), cfg)
		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errSilent) {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for script use)")
}

// getConfig returns the loaded config, or defaults when none was loaded.
func getConfig() *config.Config {
	if cfg == nil {
		return config.Default()
	}
	return cfg
}

func loadConfig() (*config.Config, string, error) {
	path := config.ResolvePath(configPath)

	var (
		loaded *config.Config
		err    error
	)
	if configPath != "" {
		// An explicit path must exist.
		loaded, err = config.LoadFrom(path)
	} else {
		loaded, err = config.LoadOptional(path)
	}
	if err != nil {
		return nil, path, err
	}
	if err := loaded.Validate(); err != nil {
		return nil, path, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return loaded, path, nil
}

func newLogger(w io.Writer, c *config.Config) *slog.Logger {
	lc := c.Logging()
	if w == nil {
		w = os.Stderr
	}
	lc.Writer = w
	return logging.New(lc)
}
