// Package config provides configuration loading and validation for talklog.
package config

import (
	"time"

	"github.com/ccollicutt/talklog/pkg/tagger"
)

// Config is the root configuration structure loaded from YAML or TOML.
type Config struct {
	Transcript TranscriptConfig `yaml:"transcript" toml:"transcript"`
	Tagging    TaggingConfig    `yaml:"tagging" toml:"tagging"`
	News       NewsConfig       `yaml:"news" toml:"news"`
	Export     ExportConfig     `yaml:"export" toml:"export"`
	Webhooks   []WebhookConfig  `yaml:"webhooks,omitempty" toml:"webhooks,omitempty"`
}

// TranscriptConfig controls how chat exports are read.
type TranscriptConfig struct {
	// Encoding is "auto" or a WHATWG label such as "utf-8" or "euc-kr".
	Encoding string `yaml:"encoding" toml:"encoding"`

	// ExcludedSenders are dropped from the output. Defaults to the open-chat bot.
	ExcludedSenders []string `yaml:"excluded_senders" toml:"excluded_senders"`

	// Workers bounds concurrent file parsing.
	Workers int `yaml:"workers" toml:"workers"`
}

// TaggingConfig holds the keyword tables. Order is significant.
type TaggingConfig struct {
	Categories    []tagger.Rule `yaml:"categories" toml:"categories"`
	Publishers    []string      `yaml:"publishers" toml:"publishers"`
	Subjects      []string      `yaml:"subjects" toml:"subjects"`
	Complaints    []string      `yaml:"complaints" toml:"complaints"`
	TextbookTerms []string      `yaml:"textbook_terms" toml:"textbook_terms"`
}

// Tables converts the section into tagger tables.
func (t TaggingConfig) Tables() tagger.Tables {
	return tagger.Tables{
		Categories:    t.Categories,
		Publishers:    t.Publishers,
		Subjects:      t.Subjects,
		Complaints:    t.Complaints,
		TextbookTerms: t.TextbookTerms,
	}.Clone()
}

// NewsConfig controls the news search crawler.
type NewsConfig struct {
	// Keywords to search for. Defaults to the publisher list.
	Keywords []string `yaml:"keywords" toml:"keywords"`

	// Endpoint is the search URL without a query string.
	Endpoint string `yaml:"endpoint" toml:"endpoint"`

	// Pages is the number of result pages fetched per keyword.
	Pages int `yaml:"pages" toml:"pages"`

	// Interval is the minimum delay between requests.
	Interval time.Duration `yaml:"interval" toml:"interval"`

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `yaml:"timeout" toml:"timeout"`

	UserAgent string `yaml:"user_agent" toml:"user_agent"`
}

// ExportConfig controls report output.
type ExportConfig struct {
	// CSVBOM prefixes CSV output with a UTF-8 byte order mark so spreadsheet
	// applications detect the encoding.
	CSVBOM bool `yaml:"csv_bom" toml:"csv_bom"`

	// TextLimit caps the number of rows listed by the text formatter. 0 lists all.
	TextLimit int `yaml:"text_limit" toml:"text_limit"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnResults fires only when the report contains records (default).
	WebhookTriggerOnResults WebhookTrigger = "on_results"
	// WebhookTriggerAlways fires after every run.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint that receives the JSON report.
type WebhookConfig struct {
	Name string `yaml:"name,omitempty" toml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url" toml:"url"`

	// Token is an optional bearer token; ${VAR} and $VAR are expanded.
	Token string `yaml:"token,omitempty" toml:"token,omitempty"`

	// Trigger defaults to "on_results".
	Trigger WebhookTrigger `yaml:"trigger,omitempty" toml:"trigger,omitempty"`

	// Timeout defaults to 10s.
	Timeout time.Duration `yaml:"timeout,omitempty" toml:"timeout,omitempty"`
}
