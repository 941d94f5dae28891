package ui

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/idilsaglam/fintrack/internal/model"
)

func TestProgressBar(t *testing.T) {
	if got := ProgressBar(1, 2, 10); got != "█████░░░░░  50%" {
		t.Errorf("ProgressBar(1,2,10) = %q", got)
	}
	if got := ProgressBar(5, 0, 2); !strings.HasSuffix(got, "500%") || strings.Count(got, "█") != 5 {
		t.Errorf("zero total and tiny width should clamp: %q", got)
	}
}

func TestPanelStringMono(t *testing.T) {
	SetTheme("mono")
	got := PanelString([]string{"ab", "c"})
	want := "+----+\n| ab |\n| c  |\n+----+\n"
	if got != want {
		t.Errorf("PanelString =\n%s\nwant\n%s", got, want)
	}
}

func TestPanelIgnoresANSIWidth(t *testing.T) {
	SetTheme("mono")
	got := PanelString([]string{"\033[31mred\033[0m", "abc"})
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	if visibleWidth(lines[1]) != visibleWidth(lines[2]) {
		t.Errorf("rows not padded to the same visible width:\n%s", got)
	}
}

func TestBadgeColours(t *testing.T) {
	SetTheme("classic")
	th := Current()
	if th.StatusColor(model.StatusCompleted) != th.Success || th.StatusColor(model.StatusInProgress) != th.Info {
		t.Error("status colours wrong")
	}
	if th.StatusColor("Archived") != th.Muted || th.PriorityColor("Urgent") != th.Muted {
		t.Error("unknown values should be muted")
	}
	if th.PriorityColor(model.PriorityHigh) != th.Error || th.PriorityColor(model.PriorityMedium) != th.Warn {
		t.Error("priority colours wrong")
	}
	if th.StatusSymbol(model.StatusCompleted) != th.SymDone {
		t.Error("status symbol wrong")
	}
}

func TestOKAndFailOutput(t *testing.T) {
	SetTheme("mono")
	var out, errOut bytes.Buffer
	SetOutput(&out, &errOut)
	defer SetOutput(os.Stdout, os.Stderr)

	OK("saved")
	Fail("nope")
	if out.String() != "✔ saved\n" || errOut.String() != "✖ nope\n" {
		t.Errorf("out=%q err=%q", out.String(), errOut.String())
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("abcdefgh", 6); got != "abc..." {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("abc", 6); got != "abc" {
		t.Errorf("Truncate = %q", got)
	}
}
