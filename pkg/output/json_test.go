package output

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestNewJSONFormatter(t *testing.T) {
	if NewJSONFormatter(FormatOptions{}).Name() != "json" {
		t.Error("Name() should be json")
	}
}

func TestJSONFormatter_Messages(t *testing.T) {
	report := createMessageReport()

	var buf bytes.Buffer
	if err := NewJSONFormatter(FormatOptions{}).Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var decoded struct {
		Kind     string `json:"kind"`
		Messages []struct {
			Date      string `json:"date"`
			Time      string `json:"time"`
			Sender    string `json:"sender"`
			Category  string `json:"category"`
			Complaint bool   `json:"complaint"`
		} `json:"messages"`
		Metadata struct {
			RunID string `json:"run_id"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if decoded.Kind != "messages" {
		t.Errorf("kind = %q", decoded.Kind)
	}
	if len(decoded.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(decoded.Messages))
	}
	m := decoded.Messages[0]
	if m.Date != "2024-09-02" || m.Time != "16:13" || m.Sender != "철수" || !m.Complaint {
		t.Errorf("messages[0] = %+v", m)
	}
	if decoded.Metadata.RunID != report.Metadata.RunID || decoded.Metadata.RunID == "" {
		t.Errorf("run_id = %q", decoded.Metadata.RunID)
	}
	if bytes.Contains(buf.Bytes(), []byte(`\u0026`)) {
		t.Error("HTML escaping should be disabled")
	}
}

func TestJSONFormatter_Quiet(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONFormatter(FormatOptions{Quiet: true}).Format(context.Background(), createArticleReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var summary Summary
	if err := json.Unmarshal(buf.Bytes(), &summary); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if summary.Articles != 1 || summary.Sources != 2 || summary.Failures != 1 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestJSONFormatter_EmptyArticles(t *testing.T) {
	report := NewArticleReport(nil, createArticleReport().Metadata.GeneratedAt, "")

	var buf bytes.Buffer
	if err := NewJSONFormatter(FormatOptions{}).Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if report.HasResults() {
		t.Error("HasResults() = true for an empty crawl")
	}
}
