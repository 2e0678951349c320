package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/pelletier/go-toml"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validates a clonescan configuration file for syntax errors and invalid values.

Examples:
  clonescan config validate                       # Validates default config locations
  clonescan config validate -c clonescan.toml     # Validates specific file
  clonescan config validate -c .clonescan/clonescan.yaml`,
	RunE: runConfigValidate,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Shows the merged configuration from defaults and config file as TOML.

Examples:
  clonescan config show                   # Show effective config
  clonescan config show -c clonescan.toml # Show config from specific file`,
	RunE: runConfigShow,
}

func init() {
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, source, err := loadConfig()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		color.Red("Configuration validation failed:")
		fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", err)
		return err
	}

	if source != "" {
		color.Green("Configuration valid: %s", source)
	} else {
		color.Yellow("No config file found. Default configuration is valid.")
	}
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, source, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if source != "" {
		fmt.Fprintf(out, "# Configuration from: %s\n\n", source)
	} else {
		fmt.Fprintln(out, "# Default configuration (no config file found)")
	}

	content, err := toml.Marshal(*cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = out.Write(content)
	return err
}
