package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing input: %v", err)
	}
	return path
}

func TestInfixFile(t *testing.T) {
	path := writeInput(t, "input_RPN_EC.txt", "1+2*3\r\n\r\n5/0\r\n-(2+1)\r\n")

	out, err := execute(t, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "RPN: 1 2 3 * +\nResult: 7\nRPN: ERROR\nResult: ERROR\nRPN: 2 1 + u-\nResult: -3\n"
	if out != want {
		t.Errorf("got:\n%s\nwant:\n%s", out, want)
	}
}

func TestInputFlagAndEnv(t *testing.T) {
	path := writeInput(t, "exprs.txt", "4/2\n")

	out, err := execute(t, "--input", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "RPN: 4 2 /\nResult: 2\n" {
		t.Errorf("unexpected output %q", out)
	}

	t.Setenv("RPNCALC_INPUT", path)
	out, err = execute(t)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "RPN: 4 2 /\nResult: 2\n" {
		t.Errorf("unexpected output from env input %q", out)
	}
}

func TestMissingInput(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "input_RPN_EC.txt")

	out, err := execute(t, missing)
	if !errors.Is(err, errReported) {
		t.Fatalf("expected errReported, got %v", err)
	}
	if out != "Error: input_RPN_EC.txt not found\n" {
		t.Errorf("unexpected output %q", out)
	}

	out, err = execute(t, "rpn", filepath.Join(t.TempDir(), "input_RPN.txt"))
	if !errors.Is(err, errReported) {
		t.Fatalf("expected errReported, got %v", err)
	}
	if out != "Error: input_RPN.txt not found in this folder.\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestRPNCommand(t *testing.T) {
	path := writeInput(t, "input_RPN.txt", "3 4 + 2 *\n\n1 2 /\n1 +\n")

	out, err := execute(t, "rpn", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "14\n0.5\nError: not enough operands for +\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestJSONFormatWithWorkers(t *testing.T) {
	path := writeInput(t, "in.txt", "1+1\n2*(3\n9%4\n")

	out, err := execute(t, "--format", "json", "--workers", "3", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 json lines, got %d: %s", len(lines), out)
	}
	if !strings.Contains(lines[0], `"result":"2"`) ||
		!strings.Contains(lines[1], `"kind":"MismatchedParentheses"`) ||
		!strings.Contains(lines[2], `"result":"1"`) {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestConfigFile(t *testing.T) {
	input := writeInput(t, "in.txt", "7/2\n")
	cfg := writeInput(t, "rpncalc.yaml", "format: yaml\ninput: "+input+"\n")

	out, err := execute(t, "--config", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "result: \"3.5\"") || !strings.Contains(out, "exact: 7/2") {
		t.Errorf("unexpected yaml output:\n%s", out)
	}
}

func TestInvalidFlags(t *testing.T) {
	path := writeInput(t, "in.txt", "1\n")

	if _, err := execute(t, "--format", "xml", path); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err := execute(t, "--workers", "0", path); err == nil {
		t.Error("expected error for zero workers")
	}
	if _, err := execute(t, "a.txt", "b.txt"); err == nil {
		t.Error("expected error for two positional args")
	}
}
