package plugins

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePlugin(t *testing.T, dir, name, script string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create %s: %v", dir, err)
	}
	path := filepath.Join(dir, Prefix+name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatalf("failed to create plugin: %v", err)
	}
	return path
}

func TestFind(t *testing.T) {
	home := t.TempDir()
	bin := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PATH", bin)

	inHome := writePlugin(t, filepath.Join(home, ".talklog", "plugins"), "dashboard", "")
	inPath := writePlugin(t, bin, "export", "")

	tests := []struct {
		command string
		want    string
	}{
		{"dashboard", inHome},
		{"export", inPath},
	}
	for _, tt := range tests {
		p, err := Find(tt.command)
		if err != nil {
			t.Fatalf("Find(%q) error = %v", tt.command, err)
		}
		if p.Path != tt.want || p.Name != tt.command {
			t.Errorf("Find(%q) = %+v, want path %s", tt.command, p, tt.want)
		}
	}

	if _, err := Find("nonexistent-plugin-xyz"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("expected ErrPluginNotFound, got %v", err)
	}
}

func TestPlugin_Run(t *testing.T) {
	dir := t.TempDir()
	path := writePlugin(t, dir, "echo", `echo "$TALKLOG_PLUGIN $1"
cat
exit 3
`)

	var out bytes.Buffer
	p := &Plugin{Name: "echo", Path: path}
	code := p.Run(context.Background(), []string{"archive.db"}, Stdio{
		In:  strings.NewReader("from stdin\n"),
		Out: &out,
		Err: &out,
	})

	if code != 3 {
		t.Errorf("exit code = %d, want 3", code)
	}
	if got := out.String(); got != "echo archive.db\nfrom stdin\n" {
		t.Errorf("output = %q", got)
	}
}

func TestPlugin_Run_Missing(t *testing.T) {
	var stderr bytes.Buffer
	p := &Plugin{Name: "missing", Path: filepath.Join(t.TempDir(), "missing")}

	if code := p.Run(context.Background(), nil, Stdio{Err: &stderr}); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "running plugin missing") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestNotFoundMessage(t *testing.T) {
	known := NotFoundMessage("dashboard")
	if !strings.Contains(known, "available as a plugin") || !strings.Contains(known, "talklog-dashboard") {
		t.Errorf("unexpected message for known plugin:\n%s", known)
	}

	unknown := NotFoundMessage("unknown")
	if !strings.Contains(unknown, `unknown command "unknown" for "talklog"`) {
		t.Errorf("unexpected message: %s", unknown)
	}
	if !strings.Contains(unknown, "~/.talklog/plugins/talklog-unknown") {
		t.Error("expected message to mention the plugins directory")
	}
	if strings.Contains(unknown, "available as a plugin") {
		t.Error("should not mention plugin availability for unknown plugins")
	}
}

func TestIsExecutable(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "plain")
	if err := os.WriteFile(plain, []byte("test"), 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	script := writePlugin(t, dir, "script", "")

	tests := []struct {
		path string
		want bool
	}{
		{plain, false},
		{script, true},
		{dir, false},
		{filepath.Join(dir, "nonexistent"), false},
	}
	for _, tt := range tests {
		if got := isExecutable(tt.path); got != tt.want {
			t.Errorf("isExecutable(%s) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
