package config

import (
	"os"
	"strings"
	"time"

	"github.com/ccollicutt/talklog/pkg/parser"
	"github.com/ccollicutt/talklog/pkg/tagger"
	"github.com/ccollicutt/talklog/pkg/textenc"
)

// Default values for configuration.
const (
	DefaultEncoding       = textenc.Auto
	DefaultWorkers        = parser.DefaultWorkers
	DefaultNewsEndpoint   = "https://search.naver.com/search.naver"
	DefaultNewsPages      = 3
	DefaultNewsInterval   = 300 * time.Millisecond
	DefaultNewsTimeout    = 10 * time.Second
	DefaultUserAgent      = "Mozilla/5.0"
	DefaultWebhookTimeout = 10 * time.Second
)

// Environment variable names.
const (
	EnvEncoding        = "TALKLOG_ENCODING"
	EnvNewsEndpoint    = "TALKLOG_NEWS_ENDPOINT"
	EnvExcludedSenders = "TALKLOG_EXCLUDED_SENDERS"
)

// DefaultConfig returns a configuration that works without a config file.
func DefaultConfig() *Config {
	tables := tagger.DefaultTables()
	return &Config{
		Transcript: TranscriptConfig{
			Encoding:        DefaultEncoding,
			ExcludedSenders: []string{parser.DefaultExcludedSender},
			Workers:         DefaultWorkers,
		},
		Tagging: TaggingConfig{
			Categories:    tables.Categories,
			Publishers:    tables.Publishers,
			Subjects:      tables.Subjects,
			Complaints:    tables.Complaints,
			TextbookTerms: tables.TextbookTerms,
		},
		News: NewsConfig{
			Keywords:  append([]string(nil), tables.Publishers...),
			Endpoint:  DefaultNewsEndpoint,
			Pages:     DefaultNewsPages,
			Interval:  DefaultNewsInterval,
			Timeout:   DefaultNewsTimeout,
			UserAgent: DefaultUserAgent,
		},
		Export: ExportConfig{
			CSVBOM:    true,
			TextLimit: 20,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if enc := os.Getenv(EnvEncoding); enc != "" {
		c.Transcript.Encoding = enc
	}
	if endpoint := os.Getenv(EnvNewsEndpoint); endpoint != "" {
		c.News.Endpoint = endpoint
	}
	if senders, ok := os.LookupEnv(EnvExcludedSenders); ok {
		c.Transcript.ExcludedSenders = splitList(senders)
	}
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
