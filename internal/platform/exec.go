package platform

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Commander runs external programs. Exec is the real implementation; tests
// substitute a recorder.
type Commander interface {
	// Run executes a command, waits for it and returns its trimmed stdout.
	Run(ctx context.Context, name string, args ...string) (string, error)

	// Start spawns a command and returns without waiting for it.
	Start(name string, args ...string) error
}

// Exec runs commands on the host. Stdout and Stderr are inherited by
// processes spawned with Start; nil discards the stream.
type Exec struct {
	Stdout io.Writer
	Stderr io.Writer
}

func (e Exec) Run(ctx context.Context, name string, args ...string) (string, error) {
	return Run(ctx, name, args...)
}

// Start spawns the command detached from this process's lifetime. Only
// spawn-time errors are reported.
func (e Exec) Start(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return cmd.Process.Release()
}

// Run executes a command and returns combined stdout/stderr output.
func Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// RunSilent executes a command and only returns an error if it fails.
func RunSilent(ctx context.Context, name string, args ...string) error {
	_, err := Run(ctx, name, args...)
	return err
}

// Elevate prefixes a command with the elevation helper (usually "sudo").
// An empty helper returns the command unchanged.
func Elevate(helper, name string, args ...string) (string, []string) {
	if helper == "" {
		return name, args
	}
	return helper, append([]string{name}, args...)
}
