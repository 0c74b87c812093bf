// Package cli provides the command-line interface for talklog.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/talklog/internal/cli/commands"
	"github.com/ccollicutt/talklog/internal/cli/plugins"
)

// Execute runs the root command and returns the exit code.
func Execute(ctx context.Context) int {
	return run(ctx, os.Args[1:])
}

func run(ctx context.Context, args []string) int {
	rootCmd := NewRootCommand()
	commands.ExitCode = commands.ExitOK

	// An unknown first argument may be a plugin.
	if name, ok := pluginCandidate(rootCmd, args); ok {
		if p, err := plugins.Find(name); err == nil {
			return p.Run(ctx, args[1:], plugins.OSStdio())
		}
	}

	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if name, ok := pluginCandidate(rootCmd, args); ok {
			_, _ = fmt.Fprintln(os.Stderr, plugins.NotFoundMessage(name))
			return commands.ExitFailure
		}
		// SilenceErrors prevents Cobra from printing this.
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return commands.ExitFailure
	}
	return commands.ExitCode
}

// pluginCandidate returns the first argument when it is neither a flag nor a
// built-in command.
func pluginCandidate(rootCmd *cobra.Command, args []string) (string, bool) {
	if len(args) == 0 {
		return "", false
	}
	name := args[0]
	if name == "" || name[0] == '-' || isBuiltinCommand(rootCmd, name) {
		return "", false
	}
	return name, true
}

// isBuiltinCommand checks if a command name is a built-in cobra command.
func isBuiltinCommand(rootCmd *cobra.Command, name string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == name || cmd.HasAlias(name) {
			return true
		}
	}
	return name == "help" || name == "completion"
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	g := &commands.GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:   "talklog",
		Short: "Extract and tag messages from KakaoTalk chat exports",
		Long: `talklog reads exported KakaoTalk chat transcripts and turns them into
dated, tagged messages.

It supports:
  - Mobile exports (one line per message with the full date)
  - PC exports (bracketed sender and time under date lines)
  - Category, publisher, subject and complaint tagging from keyword tables
  - Collecting related news articles with the same tables

Reports print as text, JSON or CSV and can be archived in SQLite or posted
to webhooks.

PLUGINS:
  Unknown commands run a plugin binary named talklog-<command>, searched in:
    1. Same directory as the talklog binary
    2. ~/.talklog/plugins/
    3. Anywhere in PATH`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	g.BindFlags(rootCmd)

	rootCmd.AddCommand(commands.NewParseCommand(g))
	rootCmd.AddCommand(commands.NewNewsCommand(g))
	rootCmd.AddCommand(commands.NewDetectCommand())
	rootCmd.AddCommand(commands.NewDiagnoseCommand(g))
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewInitConfigCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
