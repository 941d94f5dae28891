package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/idilsaglam/fintrack/internal/app"
	"github.com/idilsaglam/fintrack/internal/auth"
	"github.com/idilsaglam/fintrack/internal/model"
	"github.com/idilsaglam/fintrack/internal/stub"
	"github.com/idilsaglam/fintrack/internal/ui"
)

// Options tune output behavior from root flags.
type Options struct {
	Group bool // list grouped by status
}

var stdin io.Reader = os.Stdin

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, a *app.App, args []string, opt Options) int {
	if len(args) == 0 {
		return Open(ctx, a, "/", opt)
	}
	cmd, rest := args[0], args[1:]
	if strings.HasPrefix(cmd, "/") {
		return Open(ctx, a, cmd, opt)
	}

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp()
		return 0

	case "open":
		if len(rest) != 1 {
			ui.Fail("usage: fintrack open <path>")
			return 2
		}
		return Open(ctx, a, rest[0], opt)

	case "tasks", "ui":
		return Open(ctx, a, "/work-items", opt)

	case "dashboard":
		return Open(ctx, a, "/dashboard", opt)

	case "ls":
		return doList(ctx, a, opt)

	case "show":
		id, code := parseID("show", rest)
		if code != 0 {
			return code
		}
		return doShow(ctx, a, id)

	case "add":
		return doAdd(ctx, a, rest)

	case "update":
		return doUpdate(ctx, a, rest)

	case "rm":
		id, code := parseID("rm", rest)
		if code != 0 {
			return code
		}
		return doRemove(ctx, a, id)

	case "stub":
		return doStub(ctx, a)

	case "auth":
		if len(rest) == 0 {
			ui.Fail("usage: fintrack auth <login|logout|status|whoami>")
			return 2
		}
		switch rest[0] {
		case "login":
			return doAuthLogin(a)
		case "logout":
			return doAuthLogout(a)
		case "status":
			return doAuthStatus(a)
		case "whoami":
			return doAuthWhoAmI(a)
		default:
			ui.Fail("usage: fintrack auth <login|logout|status|whoami>")
			return 2
		}
	}

	ui.Fail("unknown subcommand: " + cmd)
	PrintHelp()
	return 2
}

func PrintHelp() {
	ui.Println(`fintrack - Finance Tracker in your terminal

Usage:
  fintrack [flags] <subcommand> [args]
  fintrack [flags] /<page>

Pages:
  /                  Home
  /work-items        Work items (interactive)
  /dashboard         Dashboard

Subcommands:
  open <path>        Open a page
  tasks              Same as /work-items
  ls                 List work items (use -group to group by status)
  show <id>          Show one work item
  add [-d desc] [-s status] [-p priority] <title...>
                     Create a work item
  update [-t title] [-d desc] [-s status] [-p priority] <id>
                     Change fields of a work item
  rm <id>            Delete a work item
  dashboard          Status and priority breakdown
  auth <login|logout|status|whoami>   Token storage (sent only with FINTRACK_AUTH_ENABLED)
  stub               Serve an in-memory work items API for development

Examples:
  fintrack add -p High Pay rent
  fintrack update -s Completed 3
  fintrack rm 3
  FINTRACK_API_URL=http://localhost:5000/api fintrack /work-items`)
}

// -------------- subcommand impls ----------------

func doList(ctx context.Context, a *app.App, opt Options) int {
	tl := a.NewTaskList()
	defer tl.Close()
	st := tl.Refresh(ctx)
	if code, done := renderUnpopulated(st); done {
		return code
	}

	done := 0
	for _, it := range st.Items {
		if it.Status == model.StatusCompleted {
			done++
		}
	}
	t := ui.Current()
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		ui.C(t.Title, "Work Items"),
		ui.C(t.Success, t.SymDone), done,
		ui.C(t.Pending, t.SymPending), len(st.Items)-done,
		ui.C(t.Accent, "Total"), len(st.Items),
	)

	var lines []string
	lines = append(lines, header)
	lines = append(lines, ui.C(t.Muted, ui.ProgressBar(done, len(st.Items), 28)))
	lines = append(lines, "")
	if opt.Group {
		lines = append(lines, groupLines(st.Items)...)
	} else {
		lines = append(lines, flatLines(st.Items)...)
	}
	lines = append(lines, "")
	lines = append(lines, ui.C(t.Muted, "Tip: add with `fintrack add \"Pay rent\"`"))
	ui.Panel(lines)
	return 0
}

func doShow(ctx context.Context, a *app.App, id int64) int {
	it, err := a.WorkItems.Get(ctx, id)
	if err != nil {
		ui.Fail("show: " + err.Error())
		return 1
	}
	ui.Panel(detailLines(it))
	return 0
}

func doAdd(ctx context.Context, a *app.App, args []string) int {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	desc := fs.String("d", "", "description")
	status := fs.String("s", model.StatusPending, "status")
	priority := fs.String("p", model.PriorityMedium, "priority")
	if err := fs.Parse(args); err != nil {
		ui.Fail("add: " + err.Error())
		return 2
	}
	title := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if title == "" {
		ui.Fail("usage: fintrack add [-d desc] [-s status] [-p priority] <title...>")
		return 2
	}

	it, err := a.WorkItems.Create(ctx, model.NewWorkItem{
		Title:       title,
		Description: *desc,
		Status:      *status,
		Priority:    *priority,
	})
	if err != nil {
		ui.Fail("add: " + err.Error())
		return 1
	}
	ui.OK(fmt.Sprintf("added #%d", it.ID))
	return 0
}

func doUpdate(ctx context.Context, a *app.App, args []string) int {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var patch model.WorkItemPatch
	fs.Func("t", "title", func(v string) error { patch.Title = &v; return nil })
	fs.Func("d", "description", func(v string) error { patch.Description = &v; return nil })
	fs.Func("s", "status", func(v string) error { patch.Status = &v; return nil })
	fs.Func("p", "priority", func(v string) error { patch.Priority = &v; return nil })
	if err := fs.Parse(args); err != nil {
		ui.Fail("update: " + err.Error())
		return 2
	}
	id, code := parseID("update", fs.Args())
	if code != 0 {
		return code
	}
	if patch.Empty() {
		ui.Fail("update: nothing to change (use -t, -d, -s or -p)")
		return 2
	}

	it, err := a.WorkItems.Update(ctx, id, patch)
	if err != nil {
		ui.Fail("update: " + err.Error())
		return 1
	}
	ui.OK(fmt.Sprintf("updated #%d", it.ID))
	return 0
}

func doRemove(ctx context.Context, a *app.App, id int64) int {
	if err := a.WorkItems.Delete(ctx, id); err != nil {
		ui.Fail("rm: " + err.Error())
		return 1
	}
	ui.OK(fmt.Sprintf("removed #%d", id))
	return 0
}

func doStub(ctx context.Context, a *app.App) int {
	opts := []stub.Option{stub.WithPrefix(stubPrefix(a.Config.API.BaseURL)), stub.WithLogger(a.Logger.Named("stub"))}
	var srv *stub.Server
	if path := a.Config.Stub.DataPath; path != "" {
		var err error
		if srv, err = stub.Open(path, opts...); err != nil {
			ui.Fail("stub: " + err.Error())
			return 1
		}
	} else {
		srv = stub.New(nil, opts...)
	}
	ui.OK("stub backend on http://" + a.Config.Stub.Addr + stubPrefix(a.Config.API.BaseURL) + " (ctrl+c to stop)")
	if err := srv.ListenAndServe(ctx, a.Config.Stub.Addr); err != nil {
		ui.Fail("stub: " + err.Error())
		return 1
	}
	return 0
}

// -------------- auth ----------------

func doAuthLogin(a *app.App) int {
	ui.Print("Paste your token: ")
	var token string
	if _, err := fmt.Fscanln(stdin, &token); err != nil {
		ui.Fail("read token: " + err.Error())
		return 1
	}
	if err := a.Tokens.Set(token, nil); err != nil {
		ui.Fail("save token: " + err.Error())
		return 1
	}
	ui.OK("logged in")
	if !a.Config.API.AuthEnabled {
		ui.Println(ui.Dim("note: the token is only sent when FINTRACK_AUTH_ENABLED=true"))
	}
	return 0
}

func doAuthLogout(a *app.App) int {
	ti, _ := a.Tokens.Get()
	if ti != nil && ti.Source == "env" {
		ui.OK("token is provided by " + auth.EnvToken + " env var (nothing to delete)")
		return 0
	}
	if err := a.Tokens.Delete(); err != nil {
		ui.Fail("logout: " + err.Error())
		return 1
	}
	ui.OK("logged out")
	return 0
}

func doAuthStatus(a *app.App) int {
	ti, _ := a.Tokens.Get()
	if ti == nil {
		ui.Println(ui.Dim("not logged in"))
		ui.Println("Run: fintrack auth login")
		return 0
	}
	ui.Println("source: " + ti.Source)
	if ti.ExpiresAt != nil {
		ui.Println("expires: " + ti.ExpiresAt.UTC().Format(time.RFC3339))
	} else {
		ui.Println("expires: (unknown)")
	}
	ui.Println(fmt.Sprintf("sent with requests: %t", a.Config.API.AuthEnabled))
	ui.Println("env override: " + auth.EnvToken)
	return 0
}

// whoami decodes a JWT locally (unverified); opaque tokens print basic info.
func doAuthWhoAmI(a *app.App) int {
	ti, _ := a.Tokens.Get()
	if ti == nil {
		ui.Fail("not logged in. Run: fintrack auth login")
		return 2
	}
	if claims, err := auth.Claims(ti.Token); err == nil {
		b, _ := json.MarshalIndent(claims, "", "  ")
		ui.Println("JWT payload:")
		ui.Println(string(b))
		return 0
	}
	ui.Println("Opaque token (cannot introspect locally).")
	ui.Println("source: " + ti.Source)
	return 0
}

// -------------- helpers --------------

func parseID(cmd string, args []string) (int64, int) {
	if len(args) != 1 {
		ui.Fail(fmt.Sprintf("usage: fintrack %s <id>", cmd))
		return 0, 2
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		ui.Fail(cmd + ": not a valid id: " + args[0])
		return 0, 2
	}
	return id, 0
}

// stubPrefix is the path part of the API base URL, so the stub answers
// where the client will look.
func stubPrefix(baseURL string) string {
	rest := baseURL
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	if i := strings.Index(rest, "/"); i >= 0 {
		return strings.TrimRight(rest[i:], "/")
	}
	return ""
}

func sortedKeys(m map[string][]model.WorkItem) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
