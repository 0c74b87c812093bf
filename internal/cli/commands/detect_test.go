package commands

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewDetectCommand(t *testing.T) {
	cmd := NewDetectCommand()

	if cmd.Use != "detect <transcript>" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}
	for _, flag := range []string{"output", "sample", "encoding", "all"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("Missing flag: %s", flag)
		}
	}
}

func TestRunDetect_Text(t *testing.T) {
	path := writeFile(t, t.TempDir(), "chat.txt", inlineTranscript)

	out, _, err := execute(t, NewDetectCommand(), path)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	for _, want := range []string{"Encoding: utf-8", "Detected Format: Inline datetime", "Lines sampled: 3"} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
	if ExitCode != ExitOK {
		t.Errorf("ExitCode = %d, want 0", ExitCode)
	}
}

func TestRunDetect_JSONAll(t *testing.T) {
	path := writeFile(t, t.TempDir(), "chat.txt", bracketTranscript)

	out, _, err := execute(t, NewDetectCommand(), "-o", "json", "--all", path)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}

	var result JSONOutput
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if result.Dominant != "bracket" {
		t.Errorf("Dominant = %q, want bracket", result.Dominant)
	}
	if result.SampledLines != 4 || result.ParsedLines != 2 {
		t.Errorf("sampled = %d, parsed = %d", result.SampledLines, result.ParsedLines)
	}

	kinds := make(map[string]int)
	for _, m := range result.Matches {
		kinds[m.Kind] = m.MatchCount
	}
	if kinds["bracket"] != 2 || kinds["date"] != 1 {
		t.Errorf("matches = %+v", result.Matches)
	}
}

func TestRunDetect_NotRecognized(t *testing.T) {
	path := writeFile(t, t.TempDir(), "notes.txt", "회의록\n안건 1\n")

	out, _, err := execute(t, NewDetectCommand(), path)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if !strings.Contains(out, "No chat format detected") {
		t.Errorf("Output = %s", out)
	}
	if ExitCode != ExitNoData {
		t.Errorf("ExitCode = %d, want %d", ExitCode, ExitNoData)
	}
}

func TestRunDetect_Errors(t *testing.T) {
	path := writeFile(t, t.TempDir(), "chat.txt", inlineTranscript)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad format", []string{"-o", "csv", path}, "unknown output format"},
		{"missing file", []string{"/nonexistent/chat.txt"}, "transcript not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, NewDetectCommand(), tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected %q error, got: %v", tt.want, err)
			}
		})
	}
}
