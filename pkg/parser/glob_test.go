package parser

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestExpandGlobs_SingleFile(t *testing.T) {
	dir := t.TempDir()
	file := writeTranscript(t, dir, "chat.txt", "x")

	result, err := ExpandGlobs([]string{file})
	if err != nil {
		t.Fatalf("ExpandGlobs() error = %v", err)
	}
	if len(result) != 1 || result[0] != file {
		t.Errorf("ExpandGlobs() = %v, want [%s]", result, file)
	}
}

func TestExpandGlobs_GlobPattern(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{"a.txt", "b.txt", "c.csv"} {
		writeTranscript(t, dir, f, "x")
	}

	result, err := ExpandGlobs([]string{filepath.Join(dir, "*.txt")})
	if err != nil {
		t.Fatalf("ExpandGlobs() error = %v", err)
	}
	if len(result) != 2 {
		t.Errorf("ExpandGlobs() returned %d files, want 2", len(result))
	}
}

func TestExpandGlobs_Directory(t *testing.T) {
	dir := t.TempDir()
	writeTranscript(t, dir, "b.txt", "x")
	writeTranscript(t, dir, "a.txt", "x")
	writeTranscript(t, dir, "notes.md", "x")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}

	result, err := ExpandGlobs([]string{dir})
	if err != nil {
		t.Fatalf("ExpandGlobs() error = %v", err)
	}
	want := []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt")}
	if len(result) != 2 || result[0] != want[0] || result[1] != want[1] {
		t.Errorf("ExpandGlobs() = %v, want %v", result, want)
	}
}

func TestExpandGlobs_PreservesArgumentOrder(t *testing.T) {
	dir := t.TempDir()
	b := writeTranscript(t, dir, "b.txt", "x")
	a := writeTranscript(t, dir, "a.txt", "x")
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	d := writeTranscript(t, sub, "d.txt", "x")
	c := writeTranscript(t, sub, "c.txt", "x")

	result, err := ExpandGlobs([]string{b, sub, a})
	if err != nil {
		t.Fatalf("ExpandGlobs() error = %v", err)
	}
	want := []string{b, c, d, a}
	if !reflect.DeepEqual(result, want) {
		t.Errorf("ExpandGlobs() = %v, want %v", result, want)
	}
}

func TestExpandGlobs_Deduplicates(t *testing.T) {
	dir := t.TempDir()
	file := writeTranscript(t, dir, "a.txt", "x")

	result, err := ExpandGlobs([]string{file, filepath.Join(dir, "*.txt"), dir})
	if err != nil {
		t.Fatalf("ExpandGlobs() error = %v", err)
	}
	if len(result) != 1 {
		t.Errorf("ExpandGlobs() = %v, want one entry", result)
	}
}

func TestExpandGlobs_NoMatchKeepsLiteral(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.txt")
	result, err := ExpandGlobs([]string{missing})
	if err != nil {
		t.Fatalf("ExpandGlobs() error = %v", err)
	}
	if len(result) != 1 || result[0] != missing {
		t.Errorf("ExpandGlobs() = %v, want [%s]", result, missing)
	}
}

func TestExpandGlobs_InvalidPattern(t *testing.T) {
	if _, err := ExpandGlobs([]string{"[invalid"}); err == nil {
		t.Error("ExpandGlobs() expected error for invalid pattern")
	}
}
