package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tcpl/internal/report"
	"tcpl/internal/scan"
)

// clipboardWriteAll is a package-level variable to allow mocking in tests.
var clipboardWriteAll = clipboard.WriteAll

// orders is the cycle the s key walks through.
var orders = []scan.Order{
	scan.OrderComplexity,
	scan.OrderUsage,
	scan.OrderDependencies,
	scan.OrderMaxFunction,
}

// fileItem adapts a scanned file to list.Item.
type fileItem struct {
	file  scan.File
	usage int
}

func (i fileItem) Title() string { return shortName(i.file.Class.Name) }

func (i fileItem) Description() string {
	return fmt.Sprintf("%s  avg %.2f  max %d  used %d",
		i.file.Path,
		i.file.Class.AverageComplexity(),
		i.file.Class.MaxFunctionComplexity(),
		i.usage)
}

func (i fileItem) FilterValue() string { return i.file.Class.Name }

func shortName(name string) string {
	if idx := strings.LastIndex(name, `\`); idx >= 0 {
		return name[idx+1:]
	}
	return name
}

// Model is the scan browser: a list of classes with a per-file detail
// screen rendered by the report package.
type Model struct {
	width  int
	height int

	list     list.Model
	viewport viewport.Model

	showDetail bool
	detail     fileItem
	detailRank int

	result   *scan.Result
	order    scan.Order
	opts     report.Options
	renderer *report.Renderer

	styles Styles
}

// NewModel builds the browser over a completed scan result.
func NewModel(res *scan.Result, order scan.Order, opts report.Options) Model {
	styles := DefaultStyles()

	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = styles.Title

	m := Model{
		list:     l,
		viewport: viewport.New(0, 0),
		result:   res,
		order:    order,
		opts:     opts,
		renderer: report.New(),
		styles:   styles,
	}
	m.result.Sort(m.order)
	m.reloadItems()
	return m
}

// Run blocks until the browser quits. It never scans by itself.
func Run(res *scan.Result, order scan.Order, opts report.Options) error {
	p := tea.NewProgram(NewModel(res, order, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if m.showDetail {
			switch msg.String() {
			case "q", "ctrl+c":
				return m, tea.Quit
			case "esc":
				m.showDetail = false
				return m, nil
			case "d":
				m.opts.Dependencies = !m.opts.Dependencies
				m.refreshDetail()
				return m, nil
			case "f":
				m.opts.Statements = !m.opts.Statements
				m.refreshDetail()
				return m, nil
			}
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

		// While the filter input is open every key belongs to the list.
		if m.list.FilterState() != list.Filtering {
			switch msg.String() {
			case "q", "ctrl+c":
				return m, tea.Quit
			case "enter":
				m.openDetail()
				return m, nil
			case "s":
				m.cycleOrder()
				return m, nil
			case "d":
				m.opts.Dependencies = !m.opts.Dependencies
				return m, nil
			case "f":
				m.opts.Statements = !m.opts.Statements
				return m, nil
			case "c":
				cmds = append(cmds, m.copyPath())
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// View renders the current screen.
func (m Model) View() string {
	if m.showDetail {
		header := m.styles.Header.Render(m.detail.file.Class.Name)
		footer := m.styles.Footer.Render("esc: back • d: deps • f: statements • q: quit")
		return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View(), footer)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.list.View(), m.statusBar())
}

// SetSize updates the size.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.list.SetSize(w, h-1)
	m.viewport.Width = w
	m.viewport.Height = h - 2
}

// reloadItems rebuilds the list from the result's current order.
func (m *Model) reloadItems() {
	items := make([]list.Item, 0, len(m.result.Files))
	for _, f := range m.result.Files {
		items = append(items, fileItem{file: f, usage: m.result.Usage[f.Class.Name]})
	}
	m.list.SetItems(items)
	m.list.Select(0)
	m.list.Title = fmt.Sprintf("tcpl: %d classes by %s", len(items), m.order)
}

// cycleOrder advances to the next sort order and re-sorts.
func (m *Model) cycleOrder() {
	for i, o := range orders {
		if o == m.order {
			m.order = orders[(i+1)%len(orders)]
			break
		}
	}
	m.result.Sort(m.order)
	m.reloadItems()
}

// openDetail shows the report block for the selected file.
func (m *Model) openDetail() {
	sel, ok := m.list.SelectedItem().(fileItem)
	if !ok {
		return
	}
	m.detail = sel
	m.detailRank = m.list.Index() + 1
	m.showDetail = true
	m.refreshDetail()
}

// refreshDetail re-renders the detail screen with the current options.
func (m *Model) refreshDetail() {
	var sb strings.Builder
	m.renderer.File(&sb, m.detailRank, m.detail.file, m.result.Usage, m.opts)
	m.viewport.SetContent(sb.String())
	m.viewport.GotoTop()
}

// copyPath puts the selected file's path on the clipboard.
func (m *Model) copyPath() tea.Cmd {
	sel, ok := m.list.SelectedItem().(fileItem)
	if !ok {
		return nil
	}
	if err := clipboardWriteAll(sel.file.Path); err != nil {
		return m.list.NewStatusMessage(m.styles.Error.Render("Copy failed"))
	}
	return m.list.NewStatusMessage(m.styles.Success.Render("Copied " + sel.file.Path))
}

// statusBar shows the active sort, the option flags, and the key hints.
func (m Model) statusBar() string {
	deps, stmts := "off", "off"
	if m.opts.Dependencies {
		deps = "on"
	}
	if m.opts.Statements {
		stmts = "on"
	}
	status := fmt.Sprintf("sort: %s  deps: %s  statements: %s", m.order, deps, stmts)
	hints := "s: sort • d: deps • f: statements • enter: detail • c: copy path • /: filter • q: quit"
	return m.styles.Footer.Render(
		m.styles.Info.Render(status) + "  " + m.styles.Muted.Render(hints))
}
