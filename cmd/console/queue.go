package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lnflash/flash-admin-console/internal/controller"
	"github.com/lnflash/flash-admin-console/internal/domain"
)

const searchDebounceWait = 300 * time.Millisecond

// queueMode is the interaction state of one review queue tab.
type queueMode int

const (
	modeList queueMode = iota
	modeSearch
	modeDetail
	modePrompt
)

type fetchFunc[T controller.Record] func(ctx context.Context, q controller.Query) (controller.PageResult[T], error)

type searchFunc[T controller.Record] func(ctx context.Context, query string) ([]T, error)

type documentFunc func(ctx context.Context, id string) (string, error)

// actionBinding maps a detail-view key press onto a controller action.
// A non-empty prompt means the action takes a typed argument and the key
// opens an input first.
type actionBinding struct {
	key    string
	name   string
	label  string
	prompt string
}

// queueConfig wires one review queue: its controller, its presentation, and
// the API calls that load and mutate it.
type queueConfig[T controller.Record] struct {
	title       string
	ctrl        *controller.Controller[T]
	renderer    controller.Renderer[T]
	colWidths   []int
	fetch       fetchFunc[T]
	search      searchFunc[T]
	document    documentFunc
	actions     []actionBinding
	statusCycle []string
}

// queueModel is the bubbletea model for one review queue tab.
type queueModel[T controller.Record] struct {
	queueConfig[T]

	table       table.Model
	spin        spinner.Model
	searchInput textinput.Model
	promptInput textinput.Model
	deb         *searchDebouncer

	mode          queueMode
	pendingAction actionBinding
	statusLine    string
	searchTerm    string
	statusIdx     int
	width         int
	height        int
}

// Messages are generic in the record type so each queue only reacts to its
// own completions even when the root model broadcasts.
type pageLoadedMsg[T controller.Record] struct {
	seq uint64
	res controller.PageResult[T]
	err error
}

type searchLoadedMsg[T controller.Record] struct {
	seq     uint64
	records []T
	err     error
}

type actionDoneMsg[T controller.Record] struct {
	action string
	fetch  controller.Fetch
	err    error
}

type documentURLMsg[T controller.Record] struct {
	url string
	err error
}

// searchRequestMsg fires when the search debounce window settles. It is
// tagged with the queue title because it is not generic in the record type.
type searchRequestMsg struct {
	title string
	query string
}

func newQueueModel[T controller.Record](cfg queueConfig[T]) *queueModel[T] {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))

	headers := cfg.renderer.Headers()
	columns := make([]table.Column, len(headers))
	for i, h := range headers {
		width := len(h) + 4
		if i < len(cfg.colWidths) && cfg.colWidths[i] > 0 {
			width = cfg.colWidths[i]
		}
		columns[i] = table.Column{Title: h, Width: width}
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(controller.DefaultPageSize),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true).
		Foreground(lipgloss.Color("69"))
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(true)
	t.SetStyles(styles)

	search := textinput.New()
	search.Placeholder = "username, name, or phone..."
	search.CharLimit = 100

	prompt := textinput.New()
	prompt.CharLimit = 500

	return &queueModel[T]{
		queueConfig: cfg,
		table:       t,
		spin:        s,
		searchInput: search,
		promptInput: prompt,
		deb:         newSearchDebouncer(searchDebounceWait),
	}
}

// Init loads the first page and arms the debounced-search listener.
func (m *queueModel[T]) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.beginFetch(), m.waitSearch())
}

// beginFetch issues a new page load for the controller's current query.
func (m *queueModel[T]) beginFetch() tea.Cmd {
	return m.executeFetch(m.ctrl.BeginFetch())
}

// executeFetch runs an already-issued page load.
func (m *queueModel[T]) executeFetch(f controller.Fetch) tea.Cmd {
	return func() tea.Msg {
		res, err := m.fetch(context.Background(), f.Query)
		return pageLoadedMsg[T]{seq: f.Seq, res: res, err: err}
	}
}

// beginSearch issues a free-text search superseding any outstanding load.
func (m *queueModel[T]) beginSearch(query string) tea.Cmd {
	s := m.ctrl.BeginSearch(query)
	return func() tea.Msg {
		records, err := m.search(context.Background(), s.Query)
		if domain.IsNotFound(err) {
			// The API reports zero matches as not found; the queue shows the
			// empty placeholder for that, not an error.
			records, err = nil, nil
		}
		return searchLoadedMsg[T]{seq: s.Seq, records: records, err: err}
	}
}

// waitSearch blocks until the search debounce settles, then re-enters the
// event loop. It is re-armed after every delivery.
func (m *queueModel[T]) waitSearch() tea.Cmd {
	return func() tea.Msg {
		query := <-m.deb.Ready()
		return searchRequestMsg{title: m.title, query: query}
	}
}

// dispatch runs one action against the selected record.
func (m *queueModel[T]) dispatch(name, arg string) tea.Cmd {
	return func() tea.Msg {
		f, err := m.ctrl.Dispatch(context.Background(), name, arg)
		return actionDoneMsg[T]{action: name, fetch: f, err: err}
	}
}

// fetchDocument resolves the selected record's document URL.
func (m *queueModel[T]) fetchDocument(id string) tea.Cmd {
	return func() tea.Msg {
		url, err := m.document(context.Background(), id)
		return documentURLMsg[T]{url: url, err: err}
	}
}

func (m *queueModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if h := msg.Height - 12; h >= 3 {
			m.table.SetHeight(min(h, controller.DefaultPageSize))
		}
		return m, nil

	case spinner.TickMsg:
		if m.ctrl.Loading() {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case pageLoadedMsg[T]:
		if err := m.ctrl.ApplyFetch(msg.seq, msg.res, msg.err); errors.Is(err, controller.ErrStale) {
			return m, nil
		}
		m.refreshRows()
		return m, m.spin.Tick

	case searchLoadedMsg[T]:
		if err := m.ctrl.ApplySearch(msg.seq, msg.records, msg.err); errors.Is(err, controller.ErrStale) {
			return m, nil
		}
		m.refreshRows()
		return m, m.spin.Tick

	case actionDoneMsg[T]:
		if msg.err != nil {
			m.statusLine = errorStyle.Render(msg.err.Error())
			return m, nil
		}
		m.statusLine = statusStyle.Render(fmt.Sprintf("%s applied", msg.action))
		m.mode = modeList
		return m, tea.Batch(m.executeFetch(msg.fetch), m.spin.Tick)

	case documentURLMsg[T]:
		if msg.err != nil {
			m.statusLine = errorStyle.Render(msg.err.Error())
		} else {
			m.statusLine = statusStyle.Render("Document: " + msg.url)
		}
		return m, nil

	case searchRequestMsg:
		if msg.title != m.title {
			return m, nil
		}
		m.searchTerm = msg.query
		if strings.TrimSpace(msg.query) == "" {
			return m, tea.Batch(m.beginFetch(), m.spin.Tick, m.waitSearch())
		}
		return m, tea.Batch(m.beginSearch(msg.query), m.spin.Tick, m.waitSearch())

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *queueModel[T]) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeSearch:
		return m.handleSearchKey(msg)
	case modeDetail:
		return m.handleDetailKey(msg)
	case modePrompt:
		return m.handlePromptKey(msg)
	default:
		return m.handleListKey(msg)
	}
}

func (m *queueModel[T]) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusLine = ""
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "/":
		m.mode = modeSearch
		m.searchInput.SetValue(m.searchTerm)
		m.searchInput.Focus()
		return m, textinput.Blink
	case "f":
		return m, m.cycleStatusFilter()
	case "n", "right":
		if m.ctrl.GoToPage(m.ctrl.Page().Page + 1) {
			return m, tea.Batch(m.beginFetch(), m.spin.Tick)
		}
		return m, nil
	case "p", "left":
		if m.ctrl.GoToPage(m.ctrl.Page().Page - 1) {
			return m, tea.Batch(m.beginFetch(), m.spin.Tick)
		}
		return m, nil
	case "r":
		return m, tea.Batch(m.beginFetch(), m.spin.Tick)
	case "enter":
		records := m.ctrl.Page().Records
		cursor := m.table.Cursor()
		if cursor >= 0 && cursor < len(records) {
			if m.ctrl.Select(records[cursor].RecordID()) {
				m.mode = modeDetail
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *queueModel[T]) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.searchTerm = ""
		return m, tea.Batch(m.beginFetch(), m.spin.Tick)
	case "enter":
		m.mode = modeList
		m.searchInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.deb.Set(m.searchInput.Value())
	return m, cmd
}

func (m *queueModel[T]) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "esc" || key == "backspace" {
		m.mode = modeList
		m.ctrl.ClearSelection()
		return m, nil
	}

	selected, ok := m.ctrl.Selected()
	if !ok {
		m.mode = modeList
		return m, nil
	}

	if key == "o" && m.document != nil {
		return m, m.fetchDocument(selected.RecordID())
	}

	available := m.ctrl.Available(selected)
	for _, binding := range m.actions {
		if binding.key != key {
			continue
		}
		if !containsString(available, binding.name) {
			m.statusLine = errorStyle.Render(fmt.Sprintf("%s is not allowed for this record", binding.name))
			return m, nil
		}
		if binding.prompt != "" {
			m.mode = modePrompt
			m.pendingAction = binding
			m.promptInput.SetValue("")
			m.promptInput.Placeholder = binding.prompt
			m.promptInput.Focus()
			return m, textinput.Blink
		}
		return m, tea.Batch(m.dispatch(binding.name, ""), m.spin.Tick)
	}

	return m, nil
}

func (m *queueModel[T]) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeDetail
		m.promptInput.Blur()
		return m, nil
	case "enter":
		m.promptInput.Blur()
		m.mode = modeDetail
		return m, tea.Batch(m.dispatch(m.pendingAction.name, m.promptInput.Value()), m.spin.Tick)
	}

	var cmd tea.Cmd
	m.promptInput, cmd = m.promptInput.Update(msg)
	return m, cmd
}

// cycleStatusFilter advances the status filter to its next value and reloads.
func (m *queueModel[T]) cycleStatusFilter() tea.Cmd {
	if len(m.statusCycle) == 0 {
		return nil
	}
	m.statusIdx = (m.statusIdx + 1) % len(m.statusCycle)
	m.ctrl.SetFilter("status", m.statusCycle[m.statusIdx])
	return tea.Batch(m.beginFetch(), m.spin.Tick)
}

// refreshRows rebuilds the table from the controller's current page.
func (m *queueModel[T]) refreshRows() {
	page := m.ctrl.Page()
	rows := make([]table.Row, len(page.Records))
	for i, cells := range m.renderer.Rows(page.Records) {
		rows[i] = table.Row(cells)
	}
	m.table.SetRows(rows)
	if cursor := m.table.Cursor(); cursor >= len(rows) {
		m.table.SetCursor(0)
	}
	if err := m.ctrl.Err(); err != nil {
		m.statusLine = errorStyle.Render(err.Error())
	} else {
		m.statusLine = ""
	}
}

func (m *queueModel[T]) View() string {
	switch m.mode {
	case modeDetail:
		return m.viewDetail()
	case modePrompt:
		return m.viewPrompt()
	default:
		return m.viewList()
	}
}

func (m *queueModel[T]) viewList() string {
	var b strings.Builder

	b.WriteString(m.renderFilterLine() + "\n")
	if m.mode == modeSearch {
		b.WriteString("Search: " + m.searchInput.View() + "\n")
	}

	page := m.ctrl.Page()
	if placeholder, empty := m.renderer.Empty(page.Records); empty && !m.ctrl.Loading() {
		b.WriteString(placeholderStyle.Render(placeholder) + "\n")
	} else {
		b.WriteString(m.table.View() + "\n")
	}

	b.WriteString(m.renderPagination() + "\n")
	if m.statusLine != "" {
		b.WriteString(m.statusLine + "\n")
	}
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m *queueModel[T]) renderFilterLine() string {
	parts := []string{}
	if len(m.statusCycle) > 0 {
		status := m.statusCycle[m.statusIdx]
		if status == "" {
			status = "All"
		}
		parts = append(parts, "Status: "+status)
	}
	if m.searchTerm != "" {
		parts = append(parts, "Search: "+m.searchTerm)
	}
	if m.ctrl.Loading() {
		parts = append(parts, m.spin.View()+"loading")
	}
	if len(parts) == 0 {
		return ""
	}
	return filterStyle.Render(strings.Join(parts, "  "))
}

func (m *queueModel[T]) renderPagination() string {
	page := m.ctrl.Page()
	if m.searchTerm != "" {
		return paginationStyle.Render(fmt.Sprintf("%d results", len(page.Records)))
	}
	totalPages := page.TotalPages
	if totalPages < 1 {
		totalPages = 1
	}
	current := page.Page
	if current < 1 {
		current = 1
	}
	label := controller.RangeLabel(page, m.ctrl.Query().PageSize)
	return paginationStyle.Render(fmt.Sprintf("Page %d of %d  %s", current, totalPages, label))
}

func (m *queueModel[T]) renderHelp() string {
	if m.mode == modeSearch {
		return helpStyle.Render("enter keep results  esc clear  type to search")
	}
	return helpStyle.Render("↑↓ move  enter open  ←→ page  / search  f filter  r refresh  tab switch  q quit")
}

func (m *queueModel[T]) viewDetail() string {
	selected, ok := m.ctrl.Selected()
	if !ok {
		return m.viewList()
	}

	var b strings.Builder
	for i, section := range m.renderer.Detail(selected) {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sectionTitleStyle.Render(section.Title) + "\n")
		for _, line := range section.Lines {
			b.WriteString("  " + line + "\n")
		}
	}

	b.WriteString("\n" + m.renderActionHelp(selected))
	out := detailBoxStyle.Render(b.String())
	if m.statusLine != "" {
		out += "\n" + m.statusLine
	}
	return out
}

func (m *queueModel[T]) renderActionHelp(selected T) string {
	available := m.ctrl.Available(selected)
	parts := []string{}
	for _, binding := range m.actions {
		if containsString(available, binding.name) {
			parts = append(parts, binding.key+" "+binding.label)
		}
	}
	if m.document != nil {
		parts = append(parts, "o open document")
	}
	parts = append(parts, "esc back")
	return helpStyle.Render(strings.Join(parts, "  "))
}

func (m *queueModel[T]) viewPrompt() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.pendingAction.label) + "\n\n")
	b.WriteString(m.pendingAction.prompt + ":\n")
	b.WriteString(m.promptInput.View() + "\n\n")
	b.WriteString(helpStyle.Render("enter submit  esc cancel"))
	out := promptBoxStyle.Render(b.String())
	if m.statusLine != "" {
		out += "\n" + m.statusLine
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
