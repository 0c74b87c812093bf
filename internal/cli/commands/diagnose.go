package commands

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/talklog/pkg/config"
	"github.com/ccollicutt/talklog/pkg/detector"
	"github.com/ccollicutt/talklog/pkg/parser"
	"github.com/ccollicutt/talklog/pkg/textenc"
)

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	Verbose  bool
	Encoding string
	MaxLines int
}

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   string // "ok", "warning", "error"
	Message  string
	Details  []string
	Suggests []string
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand(g *GlobalOptions) *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose <transcript>",
		Short: "Explain why transcript lines were dropped",
		Long: `Diagnose a chat transcript line by line.

This command checks:
- The transcript file exists and can be decoded
- Which export format the lines use
- Every line that did not become a message, with its line number and reason
  (unrecognized, undated, excluded, invalid)
- The configuration file and webhooks, when --config is given

Example:
  talklog diagnose chat.txt
  talklog diagnose -v --max-lines 0 chat.txt  # list every dropped line`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiagnose(commandContext(cmd), cmd.OutOrStdout(), g, args[0], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show detailed diagnostic output")
	cmd.Flags().StringVar(&opts.Encoding, "encoding", "", "Transcript encoding (default from config)")
	cmd.Flags().IntVar(&opts.MaxLines, "max-lines", 20, "Dropped lines listed per reason (0 lists all)")

	return cmd
}

func runDiagnose(ctx context.Context, w io.Writer, g *GlobalOptions, path string, opts *DiagnoseOptions) error {
	results := []DiagnosticResult{}

	cfg, result := checkConfig(ctx, g)
	results = append(results, result)
	if cfg == nil {
		printDiagnostics(w, results, opts)
		return nil
	}

	result = checkTranscriptExists(path)
	results = append(results, result)
	if result.Status == "error" {
		printDiagnostics(w, results, opts)
		return nil
	}

	encoding := cfg.Transcript.Encoding
	if opts.Encoding != "" {
		encoding = opts.Encoding
	}
	text, result := checkEncoding(path, encoding)
	results = append(results, result)
	if result.Status == "error" {
		printDiagnostics(w, results, opts)
		return nil
	}

	results = append(results, checkFormat(text))
	results = append(results, checkLines(text, cfg, opts)...)
	results = append(results, checkWebhooks(cfg, opts)...)

	printDiagnostics(w, results, opts)
	return nil
}

func checkConfig(ctx context.Context, g *GlobalOptions) (*config.Config, DiagnosticResult) {
	result := DiagnosticResult{
		Check: "Config",
	}

	cfg, err := g.LoadConfig(ctx)
	if err != nil {
		result.Status = "error"
		result.Message = err.Error()
		result.Suggests = []string{
			"Run 'talklog validate <config>' for details",
			"Use 'talklog init-config talklog.yaml' to write a starter config",
		}
		return nil, result
	}

	result.Status = "ok"
	if g.ConfigPath == "" {
		result.Message = "Using built-in defaults"
	} else {
		result.Message = fmt.Sprintf("Loaded %s", g.ConfigPath)
	}
	result.Details = []string{
		fmt.Sprintf("Categories: %d", len(cfg.Tagging.Categories)),
		fmt.Sprintf("Excluded senders: %s", strings.Join(cfg.Transcript.ExcludedSenders, ", ")),
	}
	return cfg, result
}

func checkTranscriptExists(path string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Transcript File",
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		result.Status = "error"
		result.Message = fmt.Sprintf("Transcript not found: %s", path)
		result.Suggests = []string{"Check the file path is correct"}
		return result
	}
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot access transcript: %v", err)
		result.Suggests = []string{"Check file permissions"}
		return result
	}
	if info.IsDir() {
		result.Status = "error"
		result.Message = "Path is a directory, not a file"
		result.Suggests = []string{"Diagnose one exported .txt file at a time"}
		return result
	}
	if info.Size() == 0 {
		result.Status = "error"
		result.Message = "Transcript is empty (0 bytes)"
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Found: %s (%d bytes)", path, info.Size())
	return result
}

func checkEncoding(path, encoding string) (string, DiagnosticResult) {
	result := DiagnosticResult{
		Check: "Encoding",
	}

	text, used, err := textenc.DecodeFile(path, encoding)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot decode transcript: %v", err)
		result.Suggests = []string{"Use --encoding auto, utf-8, utf-16le or euc-kr"}
		return "", result
	}

	replaced := strings.Count(text, "\uFFFD")
	if replaced > 0 {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Decoded as %s with %d undecodable sequence(s)", used, replaced)
		result.Suggests = []string{"The file may use another encoding; try --encoding euc-kr"}
		return text, result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Decoded as %s", used)
	return text, result
}

func checkFormat(text string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Format",
	}

	detection := detector.New().DetectFromLines(parser.SplitLines(text))
	best := detection.Dominant()
	if best == nil {
		result.Status = "error"
		result.Message = "No chat format detected in the first lines"
		result.Suggests = []string{
			"Export the chat again from the KakaoTalk app (mobile or PC)",
			"Run 'talklog detect --all <transcript>' to inspect the sample",
		}
		return result
	}

	result.Status = "ok"
	if len(detection.Notes) > 0 {
		result.Status = "warning"
	}
	result.Message = fmt.Sprintf("%s (%.0f%% of sampled lines)", best.Format.Name, best.Confidence*100)
	result.Details = append(result.Details, detection.Notes...)
	return result
}

// checkLines parses the transcript with tracing and reports dropped lines by reason.
func checkLines(text string, cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	dropped := make(map[parser.Outcome][]parser.LineTrace)
	p := parser.New(
		parser.WithExcludedSenders(cfg.Transcript.ExcludedSenders...),
		parser.WithTrace(func(t parser.LineTrace) {
			if t.Outcome.Dropped() {
				dropped[t.Outcome] = append(dropped[t.Outcome], t)
			}
		}),
	)
	res := p.Parse(text)

	summary := DiagnosticResult{
		Check: "Messages",
	}
	switch {
	case res.Empty():
		summary.Status = "error"
		summary.Message = parser.ErrNoMessages.Error()
	case res.Stats.Dropped() > 0:
		summary.Status = "warning"
		summary.Message = fmt.Sprintf("%d message(s) extracted, %d line(s) dropped", res.Stats.Records, res.Stats.Dropped())
	default:
		summary.Status = "ok"
		summary.Message = fmt.Sprintf("%d message(s) extracted, no lines dropped", res.Stats.Records)
	}
	summary.Details = []string{
		fmt.Sprintf("Lines: %d (%d blank, %d date lines)", res.Stats.Lines, res.Stats.Blank, res.Stats.DateLines),
	}
	results := []DiagnosticResult{summary}

	reasons := []struct {
		outcome parser.Outcome
		status  string
		hint    string
	}{
		{parser.OutcomeUnrecognized, "warning", "Lines matching no format are usually continuations of multi-line messages or system notices"},
		{parser.OutcomeUndated, "warning", "Bracketed messages need a preceding '--- YYYY년 M월 D일 ---' date line"},
		{parser.OutcomeInvalid, "warning", "The date, time or sender could not be read"},
		{parser.OutcomeExcluded, "ok", ""},
	}
	for _, r := range reasons {
		traces := dropped[r.outcome]
		if len(traces) == 0 {
			continue
		}
		result := DiagnosticResult{
			Check:   fmt.Sprintf("Dropped: %s", r.outcome),
			Status:  r.status,
			Message: fmt.Sprintf("%d line(s)", len(traces)),
		}
		for i, t := range traces {
			if opts.MaxLines > 0 && i >= opts.MaxLines {
				result.Details = append(result.Details, fmt.Sprintf("... %d more", len(traces)-i))
				break
			}
			result.Details = append(result.Details, fmt.Sprintf("line %d: %s", t.Line, truncate(t.Text, 80)))
		}
		if r.hint != "" {
			result.Suggests = []string{r.hint}
		}
		results = append(results, result)
	}

	return results
}

func printDiagnostics(w io.Writer, results []DiagnosticResult, opts *DiagnoseOptions) {
	fmt.Fprintln(w, "=== talklog Transcript Diagnostics ===")
	fmt.Fprintln(w)

	okCount := 0
	warnCount := 0
	errCount := 0

	for _, r := range results {
		var icon string
		switch r.Status {
		case "ok":
			icon = "PASS"
			okCount++
		case "warning":
			icon = "WARN"
			warnCount++
		case "error":
			icon = "FAIL"
			errCount++
		}

		fmt.Fprintf(w, "[%s] %s\n", icon, r.Check)
		fmt.Fprintf(w, "    %s\n", r.Message)

		if opts.Verbose || r.Status != "ok" {
			for _, d := range r.Details {
				fmt.Fprintf(w, "      - %s\n", d)
			}
		}

		for _, s := range r.Suggests {
			fmt.Fprintf(w, "      Hint: %s\n", s)
		}

		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

	if errCount > 0 {
		ExitCode = ExitNoData
		fmt.Fprintln(w, "\nFix the errors above before parsing.")
	} else if warnCount > 0 {
		fmt.Fprintln(w, "\nThe transcript is usable but some lines are dropped.")
	} else {
		fmt.Fprintln(w, "\nTranscript looks good!")
	}
}

func checkWebhooks(cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}

	for _, wh := range cfg.Webhooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		result := DiagnosticResult{
			Check:  fmt.Sprintf("Webhook: %s", name),
			Status: "ok",
		}
		result.Message = fmt.Sprintf("Trigger: %s", wh.Trigger)

		if strings.HasPrefix(wh.Token, "$") {
			result.Status = "warning"
			result.Message = "Token appears to be an unresolved env var"
		} else if wh.Token == "" && strings.HasPrefix(wh.URL, "https://") {
			result.Details = append(result.Details, "No token configured")
		}

		if opts.Verbose {
			result.Details = append(result.Details,
				fmt.Sprintf("URL: %s", wh.URL),
				fmt.Sprintf("Timeout: %s", wh.Timeout),
			)
		}
		results = append(results, result)

		if opts.Verbose && wh.Trigger != config.WebhookTriggerNever {
			conn := checkWebhookConnectivity(wh)
			conn.Check = fmt.Sprintf("Webhook Connectivity: %s", name)
			results = append(results, conn)
		}
	}

	return results
}

func checkWebhookConnectivity(wh config.WebhookConfig) DiagnosticResult {
	result := DiagnosticResult{}

	// A HEAD request is enough to check the endpoint is reachable.
	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	req, err := http.NewRequest(http.MethodHead, wh.URL, nil)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot create request: %v", err)
		return result
	}

	if wh.Token != "" {
		req.Header.Set("Authorization", "Bearer "+wh.Token)
	}

	resp, err := client.Do(req)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot connect: %v", err)
		result.Suggests = []string{
			"Check if the webhook URL is correct",
			"Verify network connectivity",
		}
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		result.Status = "ok"
		result.Message = fmt.Sprintf("Reachable (status %d)", resp.StatusCode)
	} else {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Reachable but returned status %d", resp.StatusCode)
		result.Suggests = []string{
			"The endpoint may only accept POST (reports are sent with POST)",
			"Check authentication if using a token",
		}
	}

	return result
}

// truncate shortens s to at most maxLen runes.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
