package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/talklog/pkg/config"
)

const configHeader = `# talklog configuration
# Generated by: talklog init-config
#
# Keyword tables are matched in order; the first category whose keyword
# appears in a message wins. Messages matching none are tagged 기타.

`

// NewInitConfigCommand creates the init-config command.
func NewInitConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config <path>",
		Short: "Write the default configuration to a file",
		Long: `Write the built-in configuration, including the full keyword tables,
as YAML. Edit the file and pass it to other commands with --config.

The command will not overwrite an existing file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := writeDefaultConfig(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default config to: %s\n", args[0])
			return nil
		},
	}
}

// writeDefaultConfig writes the default config to path, refusing to overwrite.
func writeDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s (will not overwrite)", path)
	}

	data, err := config.Marshal(config.DefaultConfig())
	if err != nil {
		return err
	}

	// #nosec G306 - config file doesn't need restrictive permissions
	if err := os.WriteFile(path, append([]byte(configHeader), data...), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
