// internal/tui/board.go
//
// The fulfillment board: one column per lifecycle bucket, a summary strip of
// counts on top, and the activity journal tail at the bottom. Operator keys
// trigger transitions through the engine; the board only ever renders store
// snapshots, it never mutates buckets itself.

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nlicea/orderdeck/internal/aggregate"
	"github.com/nlicea/orderdeck/internal/engine"
	"github.com/nlicea/orderdeck/internal/journal"
	"github.com/nlicea/orderdeck/internal/order"
	"github.com/nlicea/orderdeck/internal/store"
)

// OrderGateway is the remote order service surface the board consumes.
type OrderGateway interface {
	FetchStage(ctx context.Context, stage order.Stage) ([]order.Order, error)
	ApplyTransition(ctx context.Context, orderID string, target order.Stage) error
}

// stageLoadedMsg reports one finished stage fetch.
type stageLoadedMsg struct {
	stage order.Stage
	err   error
}

// transitionFinishedMsg reports one finished transition attempt.
type transitionFinishedMsg struct {
	orderID string
	action  order.Action
	target  order.Stage
	from    order.Stage
	err     error
}

// actionKeys maps board keys to operator verbs.
var actionKeys = map[string]order.Action{
	"a": order.ActionApprove,
	"x": order.ActionReject,
	"s": order.ActionShip,
	"d": order.ActionDeliver,
	"c": order.ActionComplete,
}

type stageColumn struct {
	stage   order.Stage
	orders  []order.Order
	cursor  int
	loading bool
	notice  string
}

type boardModel struct {
	store   *store.Store
	engine  *engine.Engine
	journal *journal.Journal
	timeout time.Duration

	columns []stageColumn
	focus   int
	summary aggregate.Summary
	spin    spinner.Model
	done    bool

	width  int
	height int
}

func newBoardModel(st *store.Store, eng *engine.Engine, jnl *journal.Journal, timeout time.Duration) *boardModel {
	columns := make([]stageColumn, 0, len(order.Buckets()))
	for _, stage := range order.Buckets() {
		columns = append(columns, stageColumn{stage: stage})
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &boardModel{
		store:   st,
		engine:  eng,
		journal: jnl,
		timeout: timeout,
		columns: columns,
		summary: aggregate.Summarize(nil),
		spin:    sp,
	}
}

func (b *boardModel) setSize(width, height int) {
	b.width = width
	b.height = height
}

// activate kicks off one independent fetch per bucket. The loads may finish
// in any order; each one only touches its own column.
func (b *boardModel) activate() tea.Cmd {
	cmds := []tea.Cmd{b.spin.Tick}
	for i := range b.columns {
		b.columns[i].loading = true
		b.columns[i].notice = ""
		cmds = append(cmds, b.loadStage(b.columns[i].stage))
	}
	return tea.Batch(cmds...)
}

func (b *boardModel) loadStage(stage order.Stage) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()
		return stageLoadedMsg{stage: stage, err: b.store.Load(ctx, stage)}
	}
}

func (b *boardModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {

	case spinner.TickMsg:
		if !b.anyLoading() {
			return nil
		}
		var cmd tea.Cmd
		b.spin, cmd = b.spin.Update(msg)
		return cmd

	case stageLoadedMsg:
		return b.handleStageLoaded(msg)

	case transitionFinishedMsg:
		return b.handleTransitionFinished(msg)

	case tea.KeyMsg:
		return b.handleKey(msg)
	}
	return nil
}

func (b *boardModel) handleStageLoaded(msg stageLoadedMsg) tea.Cmd {
	col := b.column(msg.stage)
	if col == nil {
		return nil
	}
	col.loading = false
	if msg.err != nil {
		// Bucket keeps its previous contents; the notice stays scoped
		// to this one stage.
		col.notice = fmt.Sprintf("load failed: %v", msg.err)
		b.journal.Error("Load %s failed: %v", msg.stage.Title(), msg.err)
	} else {
		col.orders = b.store.Snapshot(msg.stage)
		if col.cursor >= len(col.orders) {
			col.cursor = max(0, len(col.orders)-1)
		}
	}
	b.summary = aggregate.Summarize(b.store.Counts())
	return nil
}

func (b *boardModel) handleTransitionFinished(msg transitionFinishedMsg) tea.Cmd {
	col := b.column(msg.from)
	if msg.err != nil {
		if col != nil {
			col.notice = transitionNotice(msg)
		}
		b.journal.Error("Order %s %s failed: %v", msg.orderID, msg.action, msg.err)
	} else {
		b.journal.Info("Order %s -> %s", msg.orderID, msg.target.Bucket().Title())
	}
	b.refreshColumns()
	return nil
}

func transitionNotice(msg transitionFinishedMsg) string {
	var failed *order.TransitionFailedError
	switch {
	case errors.As(msg.err, &failed):
		return fmt.Sprintf("%s could not be moved: %v", msg.orderID, failed.Unwrap())
	case errors.Is(msg.err, order.ErrNotFoundInSource):
		return fmt.Sprintf("%s is out of sync, reload the stage (r)", msg.orderID)
	default:
		return msg.err.Error()
	}
}

func (b *boardModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if action, ok := actionKeys[key]; ok {
		return b.triggerAction(action)
	}
	switch key {
	case "esc", "q":
		b.done = true
	case "tab", "right":
		b.focus = (b.focus + 1) % len(b.columns)
	case "shift+tab", "left":
		b.focus = (b.focus + len(b.columns) - 1) % len(b.columns)
	case "up", "k":
		col := &b.columns[b.focus]
		if col.cursor > 0 {
			col.cursor--
		}
	case "down", "j":
		col := &b.columns[b.focus]
		if col.cursor < len(col.orders)-1 {
			col.cursor++
		}
	case "r":
		col := &b.columns[b.focus]
		col.loading = true
		col.notice = ""
		return tea.Batch(b.spin.Tick, b.loadStage(col.stage))
	case "backspace":
		b.columns[b.focus].notice = ""
	}
	return nil
}

// triggerAction resolves the operator verb against the focused column. Keys
// with no edge from the focused bucket are ignored, and an order with a
// transition already in flight has its controls disabled rather than raising
// an error.
func (b *boardModel) triggerAction(action order.Action) tea.Cmd {
	col := &b.columns[b.focus]
	if len(col.orders) == 0 || col.cursor >= len(col.orders) {
		return nil
	}
	edge, ok := order.EdgeForAction(col.stage, action)
	if !ok {
		return nil
	}
	target := col.orders[col.cursor]
	if b.engine.InFlight(target.ID) {
		return nil
	}
	col.notice = ""
	return func() tea.Msg {
		err := b.engine.Transition(context.Background(), target.ID, edge.To)
		return transitionFinishedMsg{
			orderID: target.ID,
			action:  action,
			target:  edge.To,
			from:    edge.From,
			err:     err,
		}
	}
}

func (b *boardModel) refreshColumns() {
	for i := range b.columns {
		col := &b.columns[i]
		col.orders = b.store.Snapshot(col.stage)
		if col.cursor >= len(col.orders) {
			col.cursor = max(0, len(col.orders)-1)
		}
	}
	b.summary = aggregate.Summarize(b.store.Counts())
}

func (b *boardModel) column(stage order.Stage) *stageColumn {
	bucket := stage.Bucket()
	for i := range b.columns {
		if b.columns[i].stage == bucket {
			return &b.columns[i]
		}
	}
	return nil
}

func (b *boardModel) anyLoading() bool {
	for i := range b.columns {
		if b.columns[i].loading {
			return true
		}
	}
	return false
}

func (b *boardModel) View() string {
	cards := b.renderSummary()
	columns := b.renderColumns()
	footer := b.renderFooter()
	return lipgloss.JoinVertical(lipgloss.Left, cards, columns, footer)
}

func (b *boardModel) renderSummary() string {
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1)
	numberStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF"))

	cards := []string{cardStyle.Render(fmt.Sprintf("%s\n%s",
		numberStyle.Render(fmt.Sprintf("%d", b.summary.Total)), "Total"))}
	for _, stage := range order.Buckets() {
		cards = append(cards, cardStyle.Render(fmt.Sprintf("%s\n%s",
			numberStyle.Render(fmt.Sprintf("%d", b.summary.PerStage[stage])),
			stage.Title())))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func (b *boardModel) renderColumns() string {
	colWidth := 28
	if b.width > 0 {
		colWidth = max(22, b.width/len(b.columns)-2)
	}
	rendered := make([]string, 0, len(b.columns))
	for i := range b.columns {
		rendered = append(rendered, b.renderColumn(&b.columns[i], i == b.focus, colWidth))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (b *boardModel) renderColumn(col *stageColumn, focused bool, width int) string {
	borderColor := lipgloss.Color("#444444")
	if focused {
		borderColor = lipgloss.Color("#5B8DEF")
	}
	titleStyle := lipgloss.NewStyle().Bold(true)
	var lines []string
	title := col.stage.Title()
	if col.loading {
		title = fmt.Sprintf("%s %s", title, b.spin.View())
	}
	lines = append(lines, titleStyle.Render(title))
	if col.notice != "" {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Width(width-4).
			Render(col.notice+" (backspace dismisses)"))
	}
	if len(col.orders) == 0 && !col.loading {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Render("no orders"))
	}
	for idx, o := range col.orders {
		lines = append(lines, b.renderOrder(col, o, focused && idx == col.cursor, width-4))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(width).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

func (b *boardModel) renderOrder(col *stageColumn, o order.Order, selected bool, width int) string {
	marker := "  "
	if selected {
		marker = "> "
	}
	head := fmt.Sprintf("%s#%s %s", marker, o.ID, o.ProductName)
	detail := fmt.Sprintf("   %s · %s · x%d · %.2f", o.Category, o.Size, o.Quantity, o.TotalPrice)
	if b.engine.InFlight(o.ID) {
		detail += " · sending…"
	}
	style := lipgloss.NewStyle().Width(max(10, width))
	if selected {
		style = style.Foreground(lipgloss.Color("#5B8DEF"))
	}
	return style.Render(head + "\n" + detail)
}

func (b *boardModel) renderFooter() string {
	hints := make([]string, 0, 4)
	col := b.columns[b.focus]
	for _, key := range []string{"a", "x", "s", "d", "c"} {
		action := actionKeys[key]
		if _, ok := order.EdgeForAction(col.stage, action); ok {
			hints = append(hints, fmt.Sprintf("%s %s", key, action))
		}
	}
	hints = append(hints, "r reload", "tab focus", "esc back")
	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		Render(strings.Join(hints, " · "))
	tail := b.journal.Tail(2)
	if len(tail) == 0 {
		return hint
	}
	journalStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	return lipgloss.JoinVertical(lipgloss.Left, hint, journalStyle.Render(strings.Join(tail, "\n")))
}
