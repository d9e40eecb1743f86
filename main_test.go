package main_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jorgicor/bas55/internal/cli"
)

func TestRunFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.bas")

	src := "10 PRINT \"HELLO\"\n20 END\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	var out, errOut bytes.Buffer
	code := cli.Run([]string{"bas55", path}, &out, &errOut)

	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, errOut.String())
	}
	if !strings.Contains(out.String(), "HELLO") {
		t.Fatalf("output = %q, want it to contain HELLO", out.String())
	}
}

func TestRunFileCompileError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.bas")

	src := "10 PRINT (\n20 END\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	var out, errOut bytes.Buffer
	code := cli.Run([]string{"bas55", path}, &out, &errOut)

	if code == 0 {
		t.Fatal("expected a nonzero exit code for a compile error")
	}
	if errOut.Len() == 0 {
		t.Fatal("expected a diagnostic on stderr")
	}
}

func TestVersionFlag(t *testing.T) {
	var out, errOut bytes.Buffer
	code := cli.Run([]string{"bas55", "-v"}, &out, &errOut)

	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(out.String(), "bas55") {
		t.Fatalf("output = %q, want it to contain bas55", out.String())
	}
}
