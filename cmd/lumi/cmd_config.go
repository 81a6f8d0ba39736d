package main

import (
	"fmt"
	"os"

	"lumi/internal/config"

	"github.com/spf13/cobra"
)

var forceInit bool

// configCmd skips loading the current config so a broken file can be replaced.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage Lumi configuration",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		resolveWorkspace()
		return setupLogging(cmd, config.DefaultConfig().Logging)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	RunE:  runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing config file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}

	if _, err := os.Stat(path); err == nil && !forceInit {
		return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
