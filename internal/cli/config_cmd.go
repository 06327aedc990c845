package cli

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/realtyfeed/mvquery/internal/config"
	"github.com/realtyfeed/mvquery/internal/ui"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the mvq config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented default config file",
	Long: `Write a commented default config to the resolved config path
(--config, then MVQ_CONFIG, then ~/.config/mvq/config.toml).`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationSkipConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ResolvePath(configPath)
		if err := config.CreateDefault(path, configInitForce); err != nil {
			if errors.Is(err, config.ErrExists) {
				return handleError(cmd, ErrConfigExists, err, "Use --force to overwrite it")
			}
			return handleError(cmd, ErrInternal, err, "")
		}

		if isJSONOutput() {
			outputSuccess(cmd, map[string]string{"path": path}, nil)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("wrote "+path))
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration after defaults and environment overrides are
applied. Passwords in the database DSN are redacted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		shown := *getConfig()
		shown.Database.DSN = redactDSN(shown.Database.DSN)

		if isJSONOutput() {
			outputSuccess(cmd, map[string]interface{}{
				"path":   resolvedConfigPath,
				"config": shown,
			}, nil)
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.Hint("# "+resolvedConfigPath))
		return toml.NewEncoder(out).Encode(shown)
	},
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Print the resolved config file path",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationSkipConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ResolvePath(configPath)
		if isJSONOutput() {
			outputSuccess(cmd, map[string]string{"path": path}, nil)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

// redactDSN hides the password of URL-style DSNs. Other DSNs are returned
// unchanged.
func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	return u.Redacted()
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing config file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}
