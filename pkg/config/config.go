package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/talklog/pkg/textenc"
)

// Load reads and validates a configuration file. Files ending in .toml are
// decoded as TOML; everything else as YAML. Keys absent from the file keep
// their defaults.
func Load(_ context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Resolve loads path, or returns the validated defaults when path is empty.
func Resolve(ctx context.Context, path string) (*Config, error) {
	if path != "" {
		return Load(ctx, path)
	}
	cfg := DefaultConfig()
	cfg.applyEnvironmentOverrides()
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return data, nil
}

// Validate checks a configuration for errors and fills in defaults for
// zero-valued optional fields.
func Validate(cfg *Config) error {
	if err := validateTranscript(&cfg.Transcript); err != nil {
		return fmt.Errorf("transcript: %w", err)
	}

	if err := validateTagging(&cfg.Tagging); err != nil {
		return fmt.Errorf("tagging: %w", err)
	}

	if err := validateNews(&cfg.News); err != nil {
		return fmt.Errorf("news: %w", err)
	}

	if cfg.Export.TextLimit < 0 {
		return errors.New("export: text_limit must be >= 0")
	}

	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			name := cfg.Webhooks[i].Name
			if name == "" {
				name = cfg.Webhooks[i].URL
			}
			return fmt.Errorf("webhooks[%d] (%s): %w", i, name, err)
		}
	}

	return nil
}

func validateTranscript(tc *TranscriptConfig) error {
	if tc.Encoding == "" {
		tc.Encoding = DefaultEncoding
	}
	if !textenc.Valid(tc.Encoding) {
		return fmt.Errorf("unknown encoding %q", tc.Encoding)
	}
	if tc.Workers < 0 {
		return errors.New("workers must be >= 0")
	}
	if tc.Workers == 0 {
		tc.Workers = DefaultWorkers
	}
	return nil
}

func validateTagging(tg *TaggingConfig) error {
	seen := make(map[string]bool)
	for i, rule := range tg.Categories {
		if strings.TrimSpace(rule.Name) == "" {
			return fmt.Errorf("categories[%d]: name is required", i)
		}
		if seen[rule.Name] {
			return fmt.Errorf("categories[%d]: duplicate category %q", i, rule.Name)
		}
		seen[rule.Name] = true
		if len(rule.Keywords) == 0 {
			return fmt.Errorf("categories[%d] (%s): at least one keyword is required", i, rule.Name)
		}
		if err := noBlank(rule.Keywords); err != nil {
			return fmt.Errorf("categories[%d] (%s): %w", i, rule.Name, err)
		}
	}

	lists := []struct {
		name  string
		items []string
	}{
		{"publishers", tg.Publishers},
		{"subjects", tg.Subjects},
		{"complaints", tg.Complaints},
		{"textbook_terms", tg.TextbookTerms},
	}
	for _, l := range lists {
		if err := noBlank(l.items); err != nil {
			return fmt.Errorf("%s: %w", l.name, err)
		}
	}
	return nil
}

func validateNews(nc *NewsConfig) error {
	if err := noBlank(nc.Keywords); err != nil {
		return fmt.Errorf("keywords: %w", err)
	}
	if nc.Endpoint == "" {
		nc.Endpoint = DefaultNewsEndpoint
	}
	if err := validateHTTPURL(nc.Endpoint); err != nil {
		return fmt.Errorf("endpoint: %w", err)
	}
	if nc.Pages < 0 {
		return errors.New("pages must be >= 1")
	}
	if nc.Pages == 0 {
		nc.Pages = DefaultNewsPages
	}
	if nc.Interval < 0 {
		return errors.New("interval must not be negative")
	}
	if nc.Timeout <= 0 {
		nc.Timeout = DefaultNewsTimeout
	}
	if nc.UserAgent == "" {
		nc.UserAgent = DefaultUserAgent
	}
	return nil
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}
	if err := validateHTTPURL(wh.URL); err != nil {
		return err
	}

	wh.Token = expandEnvVar(wh.Token)

	switch wh.Trigger {
	case "":
		wh.Trigger = WebhookTriggerOnResults
	case WebhookTriggerOnResults, WebhookTriggerAlways, WebhookTriggerNever:
	default:
		return fmt.Errorf("invalid trigger %q (must be on_results, always, or never)", wh.Trigger)
	}

	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("url must have a host")
	}
	return nil
}

func noBlank(items []string) error {
	for i, s := range items {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("entry %d is empty", i)
		}
	}
	return nil
}

// expandEnvVar expands a value of the form ${VAR} or $VAR.
func expandEnvVar(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	if strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "${") {
		return os.Getenv(s[1:])
	}
	return s
}
