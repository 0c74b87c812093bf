package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/talklog/pkg/config"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a talklog configuration file without parsing any transcript.

Checks:
  - YAML or TOML syntax
  - Category names and keywords
  - Known transcript encoding
  - News endpoint and page count
  - Webhook URLs and triggers`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := commandContext(cmd)
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(w, "\nConfiguration valid!\n")
	fmt.Fprintf(w, "  Encoding:         %s\n", cfg.Transcript.Encoding)
	fmt.Fprintf(w, "  Excluded senders: %s\n", strings.Join(cfg.Transcript.ExcludedSenders, ", "))
	fmt.Fprintf(w, "  Categories:       %d\n", len(cfg.Tagging.Categories))
	fmt.Fprintf(w, "  Publishers:       %d\n", len(cfg.Tagging.Publishers))
	fmt.Fprintf(w, "  News keywords:    %d (%d page(s) each)\n", len(cfg.News.Keywords), cfg.News.Pages)
	fmt.Fprintf(w, "  Webhooks:         %d\n", len(cfg.Webhooks))

	fmt.Fprintf(w, "\nCategories (first match wins):\n")
	for i, rule := range cfg.Tagging.Categories {
		fmt.Fprintf(w, "  %d. %s: %s\n", i+1, rule.Name, strings.Join(rule.Keywords, ", "))
	}

	fmt.Fprintf(w, "\nPublishers: %s\n", strings.Join(cfg.Tagging.Publishers, ", "))
	fmt.Fprintf(w, "Subjects:   %s\n", strings.Join(cfg.Tagging.Subjects, ", "))
	fmt.Fprintf(w, "Complaints: %s\n", strings.Join(cfg.Tagging.Complaints, ", "))

	for _, wh := range cfg.Webhooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}
		fmt.Fprintf(w, "\nWebhook %s: %s (trigger %s)\n", name, wh.URL, wh.Trigger)
	}

	return nil
}
