package util

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// CommandRunner abstracts external command execution so git calls can be
// replaced in tests.
type CommandRunner interface {
	// Run executes a command and returns its stdout without the trailing newline.
	Run(ctx context.Context, name string, args ...string) (string, error)
	// RunLines executes a command and returns stdout split by newlines, empty lines removed.
	RunLines(ctx context.Context, name string, args ...string) ([]string, error)
	// IsInstalled checks if a command is available in PATH.
	IsInstalled(ctx context.Context, name string) bool
}

// RealCommandRunner uses os/exec. Env entries are appended to the current
// environment of every command.
type RealCommandRunner struct {
	Env []string
}

// CommandError is returned when a command exits unsuccessfully. Stderr holds
// the trimmed standard error output.
type CommandError struct {
	Command string
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Command, e.Err, e.Stderr)
}

func (e *CommandError) Unwrap() error { return e.Err }

func (r *RealCommandRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return "", &CommandError{
			Command: strings.Join(append([]string{name}, args...), " "),
			Stderr:  strings.TrimSpace(stderr.String()),
			Err:     err,
		}
	}
	return strings.TrimRight(string(out), "\r\n"), nil
}

func (r *RealCommandRunner) RunLines(ctx context.Context, name string, args ...string) ([]string, error) {
	output, err := r.Run(ctx, name, args...)
	if err != nil {
		return nil, err
	}
	return splitLines(output), nil
}

func (r *RealCommandRunner) IsInstalled(ctx context.Context, name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// MockResponse holds a predefined response for MockCommandRunner.
type MockResponse struct {
	Output string
	Err    error
}

// MockCommandRunner maps "name arg1 arg2" keys to predefined responses. For testing.
type MockCommandRunner struct {
	Responses map[string]MockResponse
	Calls     []string // records all commands called, for verification
}

func (m *MockCommandRunner) key(name string, args ...string) string {
	return strings.Join(append([]string{name}, args...), " ")
}

func (m *MockCommandRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	k := m.key(name, args...)
	m.Calls = append(m.Calls, k)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	resp, ok := m.Responses[k]
	if !ok {
		return "", fmt.Errorf("mock: unknown command %q", k)
	}
	return resp.Output, resp.Err
}

func (m *MockCommandRunner) RunLines(ctx context.Context, name string, args ...string) ([]string, error) {
	output, err := m.Run(ctx, name, args...)
	if err != nil {
		return nil, err
	}
	return splitLines(output), nil
}

func (m *MockCommandRunner) IsInstalled(ctx context.Context, name string) bool {
	resp, ok := m.Responses[name]
	if !ok {
		return false
	}
	return resp.Err == nil
}

// Called reports whether the command line k was run.
func (m *MockCommandRunner) Called(k string) bool {
	for _, c := range m.Calls {
		if c == k {
			return true
		}
	}
	return false
}

// splitLines splits a string by newlines and removes empty lines and
// trailing carriage returns.
func splitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, "\n")
	var result []string
	for _, line := range parts {
		line = strings.TrimRight(line, "\r")
		if line != "" {
			result = append(result, line)
		}
	}
	if result == nil {
		return []string{}
	}
	return result
}
