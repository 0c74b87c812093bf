package cli

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ccollicutt/talklog/internal/cli/commands"
	"github.com/ccollicutt/talklog/pkg/analyzer"
	"github.com/ccollicutt/talklog/pkg/output"
	"github.com/ccollicutt/talklog/pkg/store"
)

var (
	transcriptDir = filepath.Join("testdata", "transcripts")
	mobileExport  = filepath.Join(transcriptDir, "mobile_export.txt")
	pcExportCP949 = filepath.Join(transcriptDir, "pc_export_cp949.txt")
	e2eConfigFile = filepath.Join("testdata", "configs", "talklog.yaml")
)

// requireFile fails the test if the required test file doesn't exist.
// We never skip tests - missing test data is a test failure.
func requireFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatalf("Required test file not found: %s", path)
	}
}

// runJSON runs talklog with args, writing a JSON report to a temp file, and
// returns the exit code and decoded report.
func runJSON(t *testing.T, args ...string) (int, *output.Report) {
	t.Helper()
	outPath := filepath.Join(t.TempDir(), "report.json")
	args = append(args, "-o", "json", "--out", outPath)

	code := run(context.Background(), args)

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("Report not written (exit %d): %v", code, err)
	}
	var report output.Report
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("Invalid JSON report: %v\n%s", err, data)
	}
	return code, &report
}

func findSummary(report *output.Report, kind analyzer.SummaryKind) *analyzer.Summary {
	for _, s := range report.Summaries {
		if s.Kind == kind {
			return s
		}
	}
	return nil
}

func TestE2E_MobileExport(t *testing.T) {
	requireFile(t, mobileExport)

	code, report := runJSON(t, "parse", "-c", e2eConfigFile, mobileExport)
	if code != commands.ExitOK {
		t.Fatalf("exit code = %d, want 0", code)
	}

	if len(report.Messages) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(report.Messages))
	}

	first := report.Messages[0]
	if first.Sender != "홍길동" || first.Date.String() != "2024-09-02" || first.Time.String() != "09:10" {
		t.Errorf("first message = %s %s %s", first.Date, first.Time, first.Sender)
	}
	if first.Publisher != "천재교육" || first.Subject != "수학" || !first.Complaint {
		t.Errorf("first message tags = %+v", first.Tags)
	}

	noon := report.Messages[1]
	if noon.Time.String() != "12:30" || noon.Category != "후원" {
		t.Errorf("12:30 message = %s %s", noon.Time, noon.Category)
	}

	lines := report.Summary.Lines
	if lines == nil {
		t.Fatal("missing line statistics")
	}
	if lines.Excluded != 1 {
		t.Errorf("excluded = %d, want 1", lines.Excluded)
	}
	// Header, saved-date, weekday and continuation lines.
	if lines.Unrecognized != 4 {
		t.Errorf("unrecognized = %d, want 4", lines.Unrecognized)
	}

	complaints := findSummary(report, analyzer.KindComplaint)
	if complaints == nil {
		t.Fatal("missing complaint summary")
	}
	if len(complaints.Messages) != 2 {
		t.Errorf("Expected 2 complaints, got %d", len(complaints.Messages))
	}
}

func TestE2E_LegacyEncodingPCExport(t *testing.T) {
	requireFile(t, pcExportCP949)

	code, report := runJSON(t, "parse", pcExportCP949)
	if code != commands.ExitOK {
		t.Fatalf("exit code = %d, want 0", code)
	}

	if len(report.Messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(report.Messages))
	}
	if report.Messages[0].Sender != "박교사" || report.Messages[0].Category != "출판" {
		t.Errorf("first message = %+v", report.Messages[0])
	}
	last := report.Messages[1]
	if last.Date.String() != "2024-09-04" || last.Time.String() != "14:00" || last.Publisher != "벽호" {
		t.Errorf("last message = %s %s %s", last.Date, last.Time, last.Publisher)
	}
}

func TestE2E_MergedDirectory(t *testing.T) {
	requireFile(t, mobileExport)
	requireFile(t, pcExportCP949)

	code, report := runJSON(t, "parse", "-c", e2eConfigFile, "--merge", transcriptDir)
	if code != commands.ExitOK {
		t.Fatalf("exit code = %d, want 0", code)
	}

	want := []string{"홍길동", "박교사", "김선생", "이교사", "최교사"}
	if len(report.Messages) != len(want) {
		t.Fatalf("Expected %d messages, got %d", len(want), len(report.Messages))
	}
	for i, sender := range want {
		if report.Messages[i].Sender != sender {
			t.Errorf("messages[%d].Sender = %q, want %q", i, report.Messages[i].Sender, sender)
		}
	}
	if report.Summary.Sources != 2 || report.Summary.Failures != 0 {
		t.Errorf("summary = %+v", report.Summary)
	}

	daily := findSummary(report, analyzer.KindDaily)
	if daily == nil {
		t.Fatal("missing daily summary")
	}
	if daily.Count("2024-09-02") != 3 {
		t.Errorf("2024-09-02 count = %d, want 3", daily.Count("2024-09-02"))
	}
}

func TestE2E_Archive(t *testing.T) {
	requireFile(t, mobileExport)
	dbPath := filepath.Join(t.TempDir(), "talklog.db")

	_, first := runJSON(t, "parse", "-c", e2eConfigFile, "--db", dbPath, mobileExport)
	_, second := runJSON(t, "parse", "-c", e2eConfigFile, "--db", dbPath, "--summary", "complaints", mobileExport)

	db, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open archive: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	for _, r := range []*output.Report{first, second} {
		run, err := db.GetRun(ctx, r.Metadata.RunID)
		if err != nil || run == nil {
			t.Fatalf("run %s not archived: %v", r.Metadata.RunID, err)
		}
		if run.ConfigFile != e2eConfigFile {
			t.Errorf("config file = %q", run.ConfigFile)
		}
	}

	n, err := db.MessageCount(ctx)
	if err != nil {
		t.Fatalf("MessageCount() error = %v", err)
	}
	if n != 6 {
		t.Errorf("MessageCount() = %d, want 6", n)
	}

	counts, err := db.CategoryCounts(ctx, first.Metadata.RunID)
	if err != nil {
		t.Fatalf("CategoryCounts() error = %v", err)
	}
	if counts["후원"] != 1 {
		t.Errorf("category counts = %v", counts)
	}
}

func TestE2E_WebhookFromConfig(t *testing.T) {
	requireFile(t, mobileExport)

	var mu sync.Mutex
	var runIDs []string
	var kinds []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var report output.Report
		_ = json.Unmarshal(body, &report)

		mu.Lock()
		runIDs = append(runIDs, r.Header.Get("X-Talklog-Run"))
		kinds = append(kinds, string(report.Kind))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "talklog.yaml")
	cfg := "webhooks:\n" +
		"  - name: results\n    url: " + server.URL + "/results\n" +
		"  - name: muted\n    url: " + server.URL + "/muted\n    trigger: never\n"
	if err := os.WriteFile(configPath, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	code, report := runJSON(t, "parse", "-c", configPath, mobileExport)
	if code != commands.ExitOK {
		t.Fatalf("exit code = %d, want 0", code)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(runIDs) != 1 {
		t.Fatalf("Expected 1 webhook call, got %d", len(runIDs))
	}
	if runIDs[0] != report.Metadata.RunID {
		t.Errorf("run header = %q, want %q", runIDs[0], report.Metadata.RunID)
	}
	if kinds[0] != "messages" {
		t.Errorf("payload kind = %q", kinds[0])
	}
}

func TestE2E_TextReport(t *testing.T) {
	requireFile(t, mobileExport)
	outPath := filepath.Join(t.TempDir(), "report.txt")

	code := run(context.Background(), []string{"parse", "-c", e2eConfigFile, "--out", outPath, mobileExport})
	if code != commands.ExitOK {
		t.Fatalf("exit code = %d, want 0", code)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{
		"[COMPLAINT]",
		"2024-09-03 16:13 이교사 [기타] 미래엔 과학 교과서 오류 제보합니다",
		"Summary: 3 messages from 1 transcripts",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
}
