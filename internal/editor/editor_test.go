package editor_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/jorgicor/bas55/internal/editor"
)

func runEditor(t *testing.T, script string) (string, string) {
	t.Helper()

	var out, errOut bytes.Buffer
	ed := editor.New(strings.NewReader(script), &out, &errOut, nil)
	ed.Loop(context.Background())
	return out.String(), errOut.String()
}

func TestEditorStoresAndRunsProgram(t *testing.T) {
	out, _ := runEditor(t, "10 PRINT \"HI\"\n20 END\nRUN\nQUIT\n")
	if !strings.Contains(out, "HI") {
		t.Fatalf("out = %q", out)
	}
}

func TestEditorListShowsStoredLines(t *testing.T) {
	out, _ := runEditor(t, "10 PRINT \"HI\"\n20 END\nLIST\nQUIT\n")
	if !strings.Contains(out, `10 PRINT "HI"`) || !strings.Contains(out, "20 END") {
		t.Fatalf("out = %q", out)
	}
}

func TestEditorDeletesLineWithBareNumber(t *testing.T) {
	out, _ := runEditor(t, "10 PRINT \"A\"\n10\n20 END\nLIST\nQUIT\n")
	if strings.Contains(out, "PRINT") {
		t.Fatalf("out = %q, expected line 10 to have been deleted", out)
	}
}

func TestEditorNewClearsProgram(t *testing.T) {
	out, _ := runEditor(t, "10 PRINT \"A\"\n20 END\nNEW\nLIST\nQUIT\n")
	if strings.Contains(out, "PRINT") {
		t.Fatalf("out = %q, expected NEW to clear the program", out)
	}
}

func TestEditorHelpListsCommands(t *testing.T) {
	out, _ := runEditor(t, "HELP\nQUIT\n")
	if !strings.Contains(out, "RUN") || !strings.Contains(out, "QUIT") {
		t.Fatalf("out = %q", out)
	}
}

func TestEditorUnknownCommandReportsSyntaxError(t *testing.T) {
	_, errOut := runEditor(t, "BOGUS\nQUIT\n")
	if errOut == "" {
		t.Fatal("expected a diagnostic for an unrecognised command")
	}
}

func TestEditorDebugTogglesReportState(t *testing.T) {
	out, _ := runEditor(t, "DEBUG ON\nDEBUG\nQUIT\n")
	if !strings.Contains(out, "DEBUG MODE ON") {
		t.Fatalf("out = %q", out)
	}
}
