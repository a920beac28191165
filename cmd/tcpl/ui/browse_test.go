package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tcpl/internal/php"
	"tcpl/internal/report"
	"tcpl/internal/scan"
)

func sampleResult() *scan.Result {
	widget := &php.Class{
		Name:         `App\Widget`,
		Dependencies: []string{`App\Clock`},
		Functions: []php.Function{
			{
				Name:       "render",
				Visibility: php.VisibilityPublic,
				Stmts: []php.Statement{
					{Kind: php.StatementIf, Line: 4},
					{Kind: php.StatementIf, Line: 9},
				},
			},
		},
	}
	helper := &php.Class{
		Name: `App\Helper`,
		Functions: []php.Function{
			{Name: "help", Visibility: php.VisibilityPrivate},
		},
	}
	return &scan.Result{
		Root: "/tmp/app",
		Files: []scan.File{
			{Path: "app/widget.php", Lines: 30, LastAccessed: time.Now(), Class: widget},
			{Path: "app/helper.php", Lines: 10, LastAccessed: time.Now(), Class: helper},
		},
		Usage: map[string]int{`App\Widget`: 2, `App\Helper`: 3, `App\Clock`: 1},
		Stats: scan.Stats{FilesRead: 2, ClassesFound: 2},
	}
}

func newTestModel() Model {
	m := NewModel(sampleResult(), scan.OrderComplexity, report.DefaultOptions())
	m.SetSize(100, 30)
	return m
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return model
}

func selectedClass(t *testing.T, m Model) string {
	t.Helper()
	sel, ok := m.list.SelectedItem().(fileItem)
	if !ok {
		t.Fatalf("no selected item")
	}
	return sel.file.Class.Name
}

func TestModelListsClasses(t *testing.T) {
	m := newTestModel()

	view := m.View()
	if !strings.Contains(view, "Widget") || !strings.Contains(view, "Helper") {
		t.Fatalf("expected both classes in list view:\n%s", view)
	}
	if !strings.Contains(view, "tcpl: 2 classes by complexity") {
		t.Fatalf("expected list title with count and order")
	}
	if !strings.Contains(view, "sort: complexity") {
		t.Fatalf("expected status bar with active sort")
	}
}

func TestModelCycleSort(t *testing.T) {
	m := newTestModel()

	// Complexity ranks Widget (3.0) over Helper (1.0).
	if got := selectedClass(t, m); got != `App\Widget` {
		t.Fatalf("expected Widget first by complexity, got %s", got)
	}

	// Usage ranks Helper (3) over Widget (2).
	m = update(t, m, keyMsg("s"))
	if !strings.Contains(m.View(), "sort: uses") {
		t.Fatalf("expected status bar to show uses order")
	}
	if got := selectedClass(t, m); got != `App\Helper` {
		t.Fatalf("expected Helper first by usage, got %s", got)
	}

	// Three more presses wrap back to complexity.
	m = update(t, m, keyMsg("s"))
	m = update(t, m, keyMsg("s"))
	m = update(t, m, keyMsg("s"))
	if !strings.Contains(m.View(), "sort: complexity") {
		t.Fatalf("expected order cycle to wrap")
	}
}

func TestModelDetailScreen(t *testing.T) {
	m := newTestModel()

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	view := m.View()
	if !strings.Contains(view, "Path: app/widget.php") {
		t.Fatalf("expected detail to show the file path:\n%s", view)
	}
	if !strings.Contains(view, "Average cyclomatic complexity") {
		t.Fatalf("expected detail to show complexity")
	}
	if !strings.Contains(view, "if (line 4)") {
		t.Fatalf("expected detail to show statements")
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if !strings.Contains(m.View(), "sort: complexity") {
		t.Fatalf("expected esc to return to the list")
	}
}

func TestModelToggleOptions(t *testing.T) {
	m := newTestModel()

	m = update(t, m, keyMsg("d"))
	m = update(t, m, keyMsg("f"))
	if !strings.Contains(m.View(), "deps: off") || !strings.Contains(m.View(), "statements: off") {
		t.Fatalf("expected status bar to show toggled options")
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	view := m.View()
	if !strings.Contains(view, "Dependencies: 1") {
		t.Fatalf("expected dependency count to stay visible")
	}
	if strings.Contains(view, `1. App\Clock`) {
		t.Fatalf("expected dependency list to be hidden")
	}
	if strings.Contains(view, "if (line 4)") {
		t.Fatalf("expected statements to be hidden")
	}

	// Toggling inside the detail screen re-renders it.
	m = update(t, m, keyMsg("f"))
	if !strings.Contains(m.View(), "if (line 4)") {
		t.Fatalf("expected statements back after toggle in detail")
	}
}

func TestModelCopyPath(t *testing.T) {
	var copied string
	old := clipboardWriteAll
	clipboardWriteAll = func(s string) error {
		copied = s
		return nil
	}
	defer func() { clipboardWriteAll = old }()

	m := newTestModel()
	update(t, m, keyMsg("c"))

	if copied != "app/widget.php" {
		t.Fatalf("expected selected path on the clipboard, got %q", copied)
	}
}

func TestModelFilter(t *testing.T) {
	m := newTestModel()

	m = update(t, m, keyMsg("/"))
	for _, r := range "helper" {
		m = update(t, m, keyMsg(string(r)))
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	visible := m.list.VisibleItems()
	if len(visible) != 1 {
		t.Fatalf("expected one visible item after filtering, got %d", len(visible))
	}
	if name := visible[0].(fileItem).file.Class.Name; name != `App\Helper` {
		t.Fatalf("expected Helper to survive the filter, got %s", name)
	}
}

func TestShortName(t *testing.T) {
	for in, want := range map[string]string{
		`\Bar`:                "Bar",
		`App\Fixtures\Widget`: "Widget",
		"Plain":               "Plain",
	} {
		if got := shortName(in); got != want {
			t.Fatalf("shortName(%q) = %q, want %q", in, got, want)
		}
	}
}
