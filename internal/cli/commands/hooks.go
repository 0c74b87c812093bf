package commands

import (
	"context"
	"fmt"

	"github.com/ccollicutt/talklog/internal/logging"
	"github.com/ccollicutt/talklog/pkg/config"
	"github.com/ccollicutt/talklog/pkg/output"
	"github.com/ccollicutt/talklog/pkg/store"
	"github.com/ccollicutt/talklog/pkg/webhook"
)

// WebhookOptions holds the webhook flags shared by parse and news.
type WebhookOptions struct {
	URL     string
	Token   string
	Trigger string
}

// collectWebhooks merges config file webhooks with the CLI webhook.
func collectWebhooks(cfg *config.Config, opts WebhookOptions) ([]config.WebhookConfig, error) {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)
	webhooks = append(webhooks, cfg.Webhooks...)

	if opts.URL == "" {
		return webhooks, nil
	}

	trigger := config.WebhookTrigger(opts.Trigger)
	switch trigger {
	case "":
		trigger = config.WebhookTriggerOnResults
	case config.WebhookTriggerOnResults, config.WebhookTriggerAlways, config.WebhookTriggerNever:
	default:
		return nil, fmt.Errorf("invalid webhook-trigger %q (use on_results, always, or never)", opts.Trigger)
	}

	return append(webhooks, config.WebhookConfig{
		Name:    "cli",
		URL:     opts.URL,
		Token:   opts.Token,
		Trigger: trigger,
		Timeout: config.DefaultWebhookTimeout,
	}), nil
}

// sendWebhooks sends the report to all webhooks whose trigger fires.
// Failures are logged but don't fail the run.
func sendWebhooks(ctx context.Context, log logging.Logger, hooks []config.WebhookConfig, report *output.Report) {
	if len(hooks) == 0 {
		return
	}
	for _, resp := range webhook.NewClient().Dispatch(ctx, report, hooks) {
		if resp.Success() {
			log.Info("webhook sent",
				logging.F("webhook", resp.Name),
				logging.F("status", resp.StatusCode),
				logging.F("duration", resp.Duration))
			continue
		}
		log.Warn("webhook failed", logging.F("webhook", resp.Name), logging.Err(resp.Error))
	}
}

// archiveReport stores the report rows in the SQLite archive at path.
func archiveReport(ctx context.Context, log logging.Logger, path string, report *output.Report) error {
	db, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer db.Close()

	run := store.Run{
		ID:         report.Metadata.RunID,
		Kind:       string(report.Kind),
		ConfigFile: report.Metadata.ConfigFile,
		Sources:    report.Summary.Sources,
		Failures:   report.Summary.Failures,
		CreatedAt:  report.Metadata.GeneratedAt,
	}

	if report.Kind == output.KindArticles {
		run.Rows = len(report.Articles)
	} else {
		run.Rows = len(report.Messages)
	}
	if err := db.ArchiveRun(ctx, run, report.Messages, report.Articles); err != nil {
		return fmt.Errorf("archiving run: %w", err)
	}

	log.Info("run archived", logging.F("db", path), logging.F("run_id", run.ID), logging.F("rows", run.Rows))
	return nil
}
