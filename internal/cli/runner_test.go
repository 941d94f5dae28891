package cli

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/idilsaglam/fintrack/internal/api"
	"github.com/idilsaglam/fintrack/internal/app"
	"github.com/idilsaglam/fintrack/internal/config"
	"github.com/idilsaglam/fintrack/internal/model"
	"github.com/idilsaglam/fintrack/internal/stub"
	"github.com/idilsaglam/fintrack/internal/ui"
)

type harness struct {
	ctx    context.Context
	app    *app.App
	srv    *stub.Server
	out    bytes.Buffer
	errOut bytes.Buffer
}

func newHarness(t *testing.T, seed ...model.WorkItem) *harness {
	t.Helper()
	t.Setenv("FINTRACK_TOKEN", "")

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := &harness{ctx: ctx, srv: stub.New(seed, stub.WithPrefix("/api"))}
	cfg := &config.Config{
		Home: t.TempDir(),
		API:  config.APIConfig{BaseURL: "http://stub.local/api", Timeout: 2 * time.Second},
		UI:   config.UIConfig{DeleteErrors: "report"},
	}
	a, err := app.New(cfg, nil, api.WithDial(h.srv.ListenInMemory(ctx)))
	if err != nil {
		t.Fatal(err)
	}
	h.app = a

	ui.SetTheme("classic")
	ui.SetOutput(&h.out, &h.errOut)
	t.Cleanup(func() { ui.SetOutput(os.Stdout, os.Stderr) })
	return h
}

func (h *harness) run(args ...string) int {
	return Run(h.ctx, h.app, args, Options{})
}

func seed() []model.WorkItem {
	return []model.WorkItem{
		{ID: 1, Title: "Pay rent", Status: model.StatusPending, Priority: model.PriorityHigh},
		{ID: 2, Title: "File taxes", Status: model.StatusCompleted, Priority: model.PriorityMedium},
		{ID: 3, Title: "Budget review", Status: model.StatusInProgress, Priority: model.PriorityLow},
	}
}

func TestListPopulated(t *testing.T) {
	h := newHarness(t, seed()...)
	if code := h.run("ls"); code != 0 {
		t.Fatalf("exit %d: %s", code, h.errOut.String())
	}
	out := h.out.String()
	for _, want := range []string{"Pay rent", "File taxes", "[High]", "[Completed]", "Total 3"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestListGrouped(t *testing.T) {
	h := newHarness(t, seed()...)
	if code := Run(h.ctx, h.app, []string{"ls"}, Options{Group: true}); code != 0 {
		t.Fatalf("exit %d", code)
	}
	out := h.out.String()
	pending := strings.Index(out, "Pending (1)")
	active := strings.Index(out, "InProgress (1)")
	done := strings.Index(out, "Completed (1)")
	if pending < 0 || active < 0 || done < 0 {
		t.Fatalf("missing group headers:\n%s", out)
	}
	if !(pending < active && active < done) {
		t.Errorf("groups out of order:\n%s", out)
	}
}

func TestListEmpty(t *testing.T) {
	h := newHarness(t)
	if code := h.run("ls"); code != 0 {
		t.Fatalf("exit %d", code)
	}
	if !strings.Contains(h.out.String(), "No tasks found") {
		t.Errorf("got %q", h.out.String())
	}
}

func TestListFailure(t *testing.T) {
	h := newHarness(t, seed()...)
	h.srv.Inject(stub.OpList, stub.Fault{Message: "DB unavailable"})
	if code := h.run("ls"); code != 1 {
		t.Fatalf("exit %d, want 1", code)
	}
	if !strings.Contains(h.errOut.String(), "Error: DB unavailable") {
		t.Errorf("stderr = %q", h.errOut.String())
	}
	if strings.Contains(h.out.String(), "Pay rent") {
		t.Error("failed list still rendered items")
	}
}

func TestAddUpdateRemove(t *testing.T) {
	h := newHarness(t)

	if code := h.run("add", "-p", "High", "-d", "monthly", "Pay", "rent"); code != 0 {
		t.Fatalf("add exit %d: %s", code, h.errOut.String())
	}
	items := h.srv.Items()
	if len(items) != 1 {
		t.Fatalf("items = %+v", items)
	}
	it := items[0]
	if it.Title != "Pay rent" || it.Description != "monthly" || it.Priority != model.PriorityHigh || it.Status != model.StatusPending {
		t.Errorf("created %+v", it)
	}

	if code := h.run("update", "-s", "Completed", "1"); code != 0 {
		t.Fatalf("update exit %d: %s", code, h.errOut.String())
	}
	if got := h.srv.Items()[0]; got.Status != model.StatusCompleted || got.Title != "Pay rent" {
		t.Errorf("updated %+v", got)
	}

	if code := h.run("rm", "1"); code != 0 {
		t.Fatalf("rm exit %d: %s", code, h.errOut.String())
	}
	if n := len(h.srv.Items()); n != 0 {
		t.Errorf("%d items left", n)
	}
	if !strings.Contains(h.out.String(), "removed #1") {
		t.Errorf("out = %q", h.out.String())
	}
}

func TestShowUnknownID(t *testing.T) {
	h := newHarness(t, seed()...)
	if code := h.run("show", "42"); code != 1 {
		t.Fatalf("exit %d, want 1", code)
	}
	if !strings.Contains(h.errOut.String(), "work item 42 not found") {
		t.Errorf("stderr = %q", h.errOut.String())
	}
}

func TestShow(t *testing.T) {
	h := newHarness(t, seed()...)
	if code := h.run("show", "3"); code != 0 {
		t.Fatalf("exit %d", code)
	}
	if out := h.out.String(); !strings.Contains(out, "#3 Budget review") || !strings.Contains(out, "(no description)") {
		t.Errorf("out = %q", out)
	}
}

func TestUsageErrors(t *testing.T) {
	h := newHarness(t)
	cases := [][]string{
		{"rm"},
		{"rm", "abc"},
		{"show", "0"},
		{"add"},
		{"update", "1"},
		{"open"},
		{"auth"},
		{"bogus"},
	}
	for _, args := range cases {
		if code := h.run(args...); code != 2 {
			t.Errorf("%v: exit %d, want 2", args, code)
		}
	}
}

func TestPages(t *testing.T) {
	h := newHarness(t, seed()...)

	if code := h.run(); code != 0 {
		t.Fatalf("home exit %d", code)
	}
	if !strings.Contains(h.out.String(), "Finance Tracker") {
		t.Errorf("home = %q", h.out.String())
	}

	h.out.Reset()
	if code := h.run("open", "dashboard/"); code != 0 {
		t.Fatalf("dashboard exit %d", code)
	}
	out := h.out.String()
	for _, want := range []string{"Dashboard", "Status", "Priority", "Expense chart: coming soon"} {
		if !strings.Contains(out, want) {
			t.Errorf("dashboard missing %q:\n%s", want, out)
		}
	}

	h.out.Reset()
	if code := h.run("/transactions"); code != 2 {
		t.Fatalf("404 exit %d, want 2", code)
	}
	if !strings.Contains(h.out.String(), "Page not found: /transactions") {
		t.Errorf("404 = %q", h.out.String())
	}
}

func TestAuthLoginStatusLogout(t *testing.T) {
	h := newHarness(t)
	stdin = strings.NewReader("opaque-token\n")
	t.Cleanup(func() { stdin = os.Stdin })

	if code := h.run("auth", "login"); code != 0 {
		t.Fatalf("login exit %d: %s", code, h.errOut.String())
	}
	if !strings.HasPrefix(h.out.String(), "Paste your token: ") {
		t.Errorf("prompt not written to the ui output: %q", h.out.String())
	}
	if code := h.run("auth", "status"); code != 0 {
		t.Fatalf("status exit %d", code)
	}
	if !strings.Contains(h.out.String(), "source: file") {
		t.Errorf("status = %q", h.out.String())
	}

	h.out.Reset()
	if code := h.run("auth", "whoami"); code != 0 {
		t.Fatalf("whoami exit %d", code)
	}
	if !strings.Contains(h.out.String(), "Opaque token") {
		t.Errorf("whoami = %q", h.out.String())
	}

	if code := h.run("auth", "logout"); code != 0 {
		t.Fatalf("logout exit %d", code)
	}
	if code := h.run("auth", "whoami"); code != 2 {
		t.Errorf("whoami after logout exit %d, want 2", code)
	}
}

func TestStubPrefix(t *testing.T) {
	cases := map[string]string{
		"http://localhost:5000/api":  "/api",
		"http://localhost:5000/api/": "/api",
		"http://localhost:5000":      "",
		"https://x.example/v1/api":   "/v1/api",
	}
	for in, want := range cases {
		if got := stubPrefix(in); got != want {
			t.Errorf("stubPrefix(%q) = %q, want %q", in, got, want)
		}
	}
}
