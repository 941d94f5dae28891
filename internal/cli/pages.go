package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/idilsaglam/fintrack/internal/app"
	"github.com/idilsaglam/fintrack/internal/model"
	"github.com/idilsaglam/fintrack/internal/tui"
	"github.com/idilsaglam/fintrack/internal/ui"
	"github.com/idilsaglam/fintrack/internal/view"
)

type page func(ctx context.Context, a *app.App, opt Options) int

// routes maps page paths to renderers. Anything else is a 404.
var routes = map[string]page{
	"/":           homePage,
	"/work-items": workItemsPage,
	"/dashboard":  dashboardPage,
}

// Open renders the page at path.
func Open(ctx context.Context, a *app.App, path string, opt Options) int {
	p, ok := routes[normalizePath(path)]
	if !ok {
		return notFoundPage(path)
	}
	return p(ctx, a, opt)
}

func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}

func homePage(_ context.Context, a *app.App, _ Options) int {
	t := ui.Current()
	ui.Panel([]string{
		ui.C(t.Title, "Finance Tracker"),
		"",
		ui.C(t.Accent, "/work-items") + "    Work Items",
		ui.C(t.Accent, "/dashboard") + "     Dashboard",
		ui.C(t.Muted, "/transactions") + "  Transactions " + ui.C(t.Muted, "(Coming Soon)"),
		"",
		ui.C(t.Muted, "API: "+a.Config.API.BaseURL),
		ui.C(t.Muted, "Open a page with `fintrack open <path>`"),
	})
	return 0
}

func workItemsPage(ctx context.Context, a *app.App, _ Options) int {
	if err := tui.Run(ctx, a.NewTaskList(), a.WorkItems); err != nil {
		ui.Fail("work items: " + err.Error())
		return 1
	}
	return 0
}

func dashboardPage(ctx context.Context, a *app.App, _ Options) int {
	tl := a.NewTaskList()
	defer tl.Close()
	st := tl.Refresh(ctx)
	if st.Phase == view.Failed {
		ui.Fail("Error: " + st.Err)
		return 1
	}

	t := ui.Current()
	total := len(st.Items)
	byStatus := map[string]int{}
	byPriority := map[string]int{}
	for _, it := range st.Items {
		byStatus[it.Status]++
		byPriority[it.Priority]++
	}

	lines := []string{ui.C(t.Title, "Dashboard"), ""}
	lines = append(lines, ui.C(t.Accent, "Status"))
	for _, s := range []string{model.StatusPending, model.StatusInProgress, model.StatusCompleted} {
		lines = append(lines, breakdownLine(t.StatusColor(s), s, byStatus[s], total))
	}
	lines = append(lines, "", ui.C(t.Accent, "Priority"))
	for _, p := range []string{model.PriorityHigh, model.PriorityMedium, model.PriorityLow} {
		lines = append(lines, breakdownLine(t.PriorityColor(p), p, byPriority[p], total))
	}
	lines = append(lines,
		"",
		ui.C(t.Muted, "Expense chart: coming soon"),
		ui.C(t.Muted, "Income chart: coming soon"),
	)
	ui.Panel(lines)
	return 0
}

func notFoundPage(path string) int {
	t := ui.Current()
	ui.Panel([]string{
		ui.C(t.Error, "404"),
		"Page not found: " + path,
		"",
		ui.C(t.Muted, "Go home with `fintrack open /`"),
	})
	return 2
}

// renderUnpopulated prints the Failed and Empty branches of a list.
// It reports false when the caller should render the items itself.
func renderUnpopulated(st view.State) (int, bool) {
	switch st.Phase {
	case view.Failed:
		ui.Fail("Error: " + st.Err)
		return 1, true
	case view.Empty:
		ui.Println(ui.Dim("No tasks found"))
		return 0, true
	}
	return 0, false
}

func breakdownLine(color, label string, n, total int) string {
	return fmt.Sprintf("%s %s %d", ui.C(color, fmt.Sprintf("%-11s", label)), ui.ProgressBar(n, total, 20), n)
}

func itemLine(it model.WorkItem) string {
	t := ui.Current()
	return fmt.Sprintf("%s %s %s %s %s",
		ui.C(t.Muted, fmt.Sprintf("#%-3d", it.ID)),
		ui.C(t.StatusColor(it.Status), t.StatusSymbol(it.Status)),
		ui.Truncate(it.Title, 48),
		ui.Badge(t.StatusColor(it.Status), it.Status),
		ui.Badge(t.PriorityColor(it.Priority), it.Priority),
	)
}

func flatLines(items []model.WorkItem) []string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, itemLine(it))
	}
	return lines
}

func groupLines(items []model.WorkItem) []string {
	t := ui.Current()
	groups := map[string][]model.WorkItem{}
	for _, it := range items {
		groups[it.Status] = append(groups[it.Status], it)
	}

	order := []string{model.StatusPending, model.StatusInProgress, model.StatusCompleted}
	for _, k := range sortedKeys(groups) {
		if k != model.StatusPending && k != model.StatusInProgress && k != model.StatusCompleted {
			order = append(order, k)
		}
	}

	var lines []string
	for _, status := range order {
		group := groups[status]
		if len(group) == 0 {
			continue
		}
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, ui.C(t.StatusColor(status), fmt.Sprintf("%s (%d)", status, len(group))))
		lines = append(lines, flatLines(group)...)
	}
	return lines
}

func detailLines(it model.WorkItem) []string {
	t := ui.Current()
	desc := it.Description
	if desc == "" {
		desc = ui.C(t.Muted, "(no description)")
	}
	lines := []string{
		ui.C(t.Title, fmt.Sprintf("#%d %s", it.ID, it.Title)),
		desc,
		"",
		ui.Badge(t.StatusColor(it.Status), it.Status) + " " + ui.Badge(t.PriorityColor(it.Priority), it.Priority),
	}
	if !it.CreatedAt.IsZero() {
		lines = append(lines, ui.C(t.Muted, "Created: "+it.CreatedAt.Local().Format("2006-01-02 15:04")))
	}
	if !it.UpdatedAt.IsZero() {
		lines = append(lines, ui.C(t.Muted, "Last updated: "+it.UpdatedAt.Local().Format("2006-01-02")))
	}
	return lines
}
