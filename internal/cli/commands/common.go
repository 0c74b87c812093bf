package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/talklog/internal/logging"
	"github.com/ccollicutt/talklog/pkg/config"
	"github.com/ccollicutt/talklog/pkg/output"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// Exit codes shared by all commands.
const (
	ExitOK      = 0
	ExitNoData  = 1
	ExitFailure = 2
)

// GlobalOptions holds the persistent flags of the root command.
type GlobalOptions struct {
	ConfigPath string
	LogLevel   string
	LogJSON    bool
}

// BindFlags registers the persistent flags on cmd.
func (g *GlobalOptions) BindFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&g.ConfigPath, "config", "c", "", "Config file (YAML, or TOML by .toml extension); defaults are used when empty")
	cmd.PersistentFlags().StringVar(&g.LogLevel, "log-level", string(logging.LevelWarn), "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().BoolVar(&g.LogJSON, "log-json", false, "Write logs as JSON")
}

// Logger builds the logger described by the flags. Logs go to w.
func (g *GlobalOptions) Logger(w io.Writer) (logging.Logger, error) {
	level := logging.LevelWarn
	if g.LogLevel != "" {
		l, err := logging.ParseLevel(g.LogLevel)
		if err != nil {
			return nil, err
		}
		level = l
	}
	return logging.New(&logging.Config{Level: level, JSON: g.LogJSON, Output: w}), nil
}

// LoadConfig loads the --config file, or the defaults when none is given.
func (g *GlobalOptions) LoadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Resolve(ctx, g.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// openOutput returns the report destination: path when set, else the
// command's stdout. The returned close function is always non-nil.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path) // #nosec G304 -- output path is provided by the user
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, f.Close, nil
}

// writeReport renders report with the named formatter to the chosen output.
func writeReport(ctx context.Context, cmd *cobra.Command, report *output.Report, format, path string, opts output.FormatOptions) error {
	formatter, err := output.NewFormatter(format, opts)
	if err != nil {
		return err
	}

	w, closeFn, err := openOutput(cmd, path)
	if err != nil {
		return err
	}

	if err := formatter.Format(ctx, report, w); err != nil {
		_ = closeFn()
		return fmt.Errorf("formatting output: %w", err)
	}
	if err := closeFn(); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
