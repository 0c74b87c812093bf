package output

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
)

func TestCSVFormatter_Messages(t *testing.T) {
	var buf bytes.Buffer
	if err := NewCSVFormatter(FormatOptions{}).Format(context.Background(), createMessageReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Got %d rows, want header + 2", len(rows))
	}
	if strings.Join(rows[0], ",") != "date,time,sender,message,category,publisher,subject,complaint" {
		t.Errorf("header = %v", rows[0])
	}
	want := []string{"2024-09-02", "16:13", "철수", "지학사 교과서 배송, \"빨리\" 부탁", "기타", "지학사", "", "O"}
	for i := range want {
		if rows[1][i] != want[i] {
			t.Errorf("row 1 col %d = %q, want %q", i, rows[1][i], want[i])
		}
	}
	if rows[2][7] != "X" {
		t.Errorf("complaint flag = %q, want X", rows[2][7])
	}
}

func TestCSVFormatter_Articles(t *testing.T) {
	var buf bytes.Buffer
	if err := NewCSVFormatter(FormatOptions{}).Format(context.Background(), createArticleReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Got %d rows, want 2", len(rows))
	}
	if rows[0][0] != "keyword" || rows[0][9] != "textbook_mentioned" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][3] != "날짜 없음" || rows[1][8] != "O" || rows[1][9] != "X" {
		t.Errorf("row = %v", rows[1])
	}
}

func TestCSVFormatter_BOM(t *testing.T) {
	var buf bytes.Buffer
	if err := NewCSVFormatter(FormatOptions{BOM: true}).Format(context.Background(), createMessageReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte{0xEF, 0xBB, 0xBF, 'd', 'a', 't', 'e'}) {
		t.Errorf("output does not start with a BOM and header: %q", buf.Bytes()[:8])
	}
}

func TestNewFormatter(t *testing.T) {
	for _, name := range Formats() {
		f, err := NewFormatter(name, FormatOptions{})
		if err != nil {
			t.Fatalf("NewFormatter(%q) error = %v", name, err)
		}
		if f.Name() != name {
			t.Errorf("Name() = %q, want %q", f.Name(), name)
		}
	}
	if _, err := NewFormatter("xml", FormatOptions{}); err == nil {
		t.Error("NewFormatter() expected error for unknown format")
	}
}
