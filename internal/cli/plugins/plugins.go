// Package plugins runs external talklog-<command> binaries for commands
// talklog does not implement itself.
package plugins

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Prefix is prepended to a command name to form the plugin binary name.
const Prefix = "talklog-"

// Environment variables set for every plugin process.
const (
	EnvPluginName = "TALKLOG_PLUGIN"
	EnvBinary     = "TALKLOG_BIN"
)

// KnownPlugins lists plugin names with a short description shown when they are
// not installed.
var KnownPlugins = map[string]string{
	"dashboard": "Browses runs archived with --db. Distributed separately from talklog.",
}

// ErrPluginNotFound is returned when no plugin binary can be located.
var ErrPluginNotFound = errors.New("plugin not found")

// Plugin is an installed plugin binary.
type Plugin struct {
	Name string
	Path string
}

// Stdio holds the streams a plugin runs with.
type Stdio struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// OSStdio returns the process's own streams.
func OSStdio() Stdio {
	return Stdio{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// SearchDirs returns the directories searched before PATH: the directory of
// the talklog binary, then ~/.talklog/plugins.
func SearchDirs() []string {
	var dirs []string
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".talklog", "plugins"))
	}
	return dirs
}

// Find locates the plugin for command in SearchDirs, then PATH.
func Find(command string) (*Plugin, error) {
	binary := Prefix + command

	for _, dir := range SearchDirs() {
		if candidate := filepath.Join(dir, binary); isExecutable(candidate) {
			return &Plugin{Name: command, Path: candidate}, nil
		}
	}
	if path, err := exec.LookPath(binary); err == nil {
		return &Plugin{Name: command, Path: path}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrPluginNotFound, binary)
}

// Run executes the plugin with args and returns its exit code. The plugin
// inherits the environment plus EnvPluginName and EnvBinary, so it can call
// back into talklog (for example "$TALKLOG_BIN parse -o json").
func (p *Plugin) Run(ctx context.Context, args []string, stdio Stdio) int {
	cmd := exec.CommandContext(ctx, p.Path, args...) // #nosec G204 -- path comes from Find
	cmd.Stdin = stdio.In
	cmd.Stdout = stdio.Out
	cmd.Stderr = stdio.Err
	cmd.Env = append(os.Environ(), EnvPluginName+"="+p.Name)
	if exe, err := os.Executable(); err == nil {
		cmd.Env = append(cmd.Env, EnvBinary+"="+exe)
	}

	err := cmd.Run()
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	if stdio.Err != nil {
		fmt.Fprintf(stdio.Err, "talklog: running plugin %s: %v\n", p.Name, err)
	}
	return 1
}

// NotFoundMessage explains where a missing plugin binary can be installed.
func NotFoundMessage(command string) string {
	var sb strings.Builder
	binary := Prefix + command

	fmt.Fprintf(&sb, "unknown command %q for \"talklog\"\n\n", command)
	if info, ok := KnownPlugins[command]; ok {
		fmt.Fprintf(&sb, "%q is available as a plugin. %s\n\nInstall it as one of:\n", command, info)
	} else {
		sb.WriteString("If this is a plugin, install the binary as one of:\n")
	}
	fmt.Fprintf(&sb, "  - %s next to the talklog binary\n", binary)
	fmt.Fprintf(&sb, "  - ~/.talklog/plugins/%s\n", binary)
	fmt.Fprintf(&sb, "  - %s anywhere in your PATH\n", binary)
	sb.WriteString("\nRun 'talklog --help' for usage.")
	return sb.String()
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode()&0o111 != 0
}
