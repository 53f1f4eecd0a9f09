package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang-jwt/jwt/v5"

	"github.com/nlicea/orderdeck/internal/catalog"
	"github.com/nlicea/orderdeck/internal/config"
	"github.com/nlicea/orderdeck/internal/order"
)

type fakeGateway struct {
	mu       sync.Mutex
	stages   map[order.Stage][]order.Order
	fetchErr map[order.Stage]error
	applyErr error
	applied  []string
}

func (f *fakeGateway) FetchStage(_ context.Context, stage order.Stage) ([]order.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fetchErr[stage]; err != nil {
		return nil, err
	}
	return f.stages[stage], nil
}

func (f *fakeGateway) ApplyTransition(_ context.Context, orderID string, _ order.Stage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.applyErr != nil {
		return f.applyErr
	}
	f.applied = append(f.applied, orderID)
	return nil
}

func (f *fakeGateway) appliedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.applied)
}

type fakeCatalog struct {
	products []catalog.Product
	sizes    []catalog.SizeStock
	err      error

	sizeQueries []catalog.SizeQuery
}

func (f *fakeCatalog) ListProducts(context.Context) ([]catalog.Product, error) {
	return f.products, f.err
}

func (f *fakeCatalog) ListSizes(_ context.Context, q catalog.SizeQuery) ([]catalog.SizeStock, error) {
	f.sizeQueries = append(f.sizeQueries, q)
	return f.sizes, f.err
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	home := t.TempDir()
	if err := config.InitDeckDir(home); err != nil {
		t.Fatalf("init deck dir: %v", err)
	}
	return &config.Config{
		HomeDir:     home,
		DeckHomeDir: filepath.Join(home, config.DeckDir),
		File: config.FileConfig{
			Version: 1,
			Service: config.ServiceConfig{
				BaseURL:        "http://localhost:1",
				TimeoutSeconds: 2,
			},
		},
	}
}

func newTestApp(t *testing.T, gw *fakeGateway) *App {
	t.Helper()
	app, err := NewApp(testConfig(t), WithOrderGateway(gw), WithCatalog(&fakeCatalog{}))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return app
}

// drainBoard executes board commands until the queue settles, feeding every
// produced message back into the board.
func drainBoard(t *testing.T, b *boardModel, cmds ...tea.Cmd) {
	t.Helper()
	queue := cmds
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 1000 {
			t.Fatalf("board commands did not settle")
		}
		cmd := queue[0]
		queue = queue[1:]
		if cmd == nil {
			continue
		}
		msg := cmd()
		if msg == nil {
			continue
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		if next := b.Update(msg); next != nil {
			queue = append(queue, next)
		}
	}
}

func pendingOrders(ids ...string) []order.Order {
	orders := make([]order.Order, 0, len(ids))
	for _, id := range ids {
		orders = append(orders, order.Order{ID: id, ProductName: "oxford brogue", Quantity: 2, TotalPrice: 100.00})
	}
	return orders
}

func TestNewAppStartsAtLoginWithoutSession(t *testing.T) {
	app := newTestApp(t, &fakeGateway{})
	if app.state != stateLogin {
		t.Fatalf("expected login state, got %d", app.state)
	}
}

func TestNewAppResumesValidSession(t *testing.T) {
	cfg := testConfig(t)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if err := os.WriteFile(cfg.TokenPath(), []byte(signed), 0o600); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	app, err := NewApp(cfg, WithOrderGateway(&fakeGateway{}), WithCatalog(&fakeCatalog{}))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	if app.state != stateMainMenu {
		t.Fatalf("expected main menu with live session, got %d", app.state)
	}
}

func TestBoardActivationLoadsEveryBucket(t *testing.T) {
	gw := &fakeGateway{stages: map[order.Stage][]order.Order{
		order.StagePending: pendingOrders("O1", "O2"),
		order.StageShipped: pendingOrders("O7"),
	}}
	app := newTestApp(t, gw)
	drainBoard(t, app.board, app.board.activate())

	if app.board.summary.Total != 3 {
		t.Fatalf("summary total = %d, want 3", app.board.summary.Total)
	}
	if got := app.board.summary.PerStage[order.StagePending]; got != 2 {
		t.Fatalf("pending count = %d, want 2", got)
	}
	for i := range app.board.columns {
		if app.board.columns[i].loading {
			t.Fatalf("column %s still loading", app.board.columns[i].stage)
		}
	}
}

func TestBoardLoadFailureIsStageScoped(t *testing.T) {
	gw := &fakeGateway{
		stages:   map[order.Stage][]order.Order{order.StagePending: pendingOrders("O1")},
		fetchErr: map[order.Stage]error{order.StageShipped: errors.New("connection refused")},
	}
	app := newTestApp(t, gw)
	drainBoard(t, app.board, app.board.activate())

	shipped := app.board.column(order.StageShipped)
	if shipped.notice == "" {
		t.Fatalf("expected notice on the shipped column")
	}
	pending := app.board.column(order.StagePending)
	if pending.notice != "" {
		t.Fatalf("pending column must not carry the shipped notice")
	}
	if len(pending.orders) != 1 {
		t.Fatalf("pending orders = %d, want 1", len(pending.orders))
	}
}

func TestApproveMovesOrderToShip(t *testing.T) {
	gw := &fakeGateway{stages: map[order.Stage][]order.Order{
		order.StagePending: pendingOrders("O1"),
	}}
	app := newTestApp(t, gw)
	drainBoard(t, app.board, app.board.activate())

	app.board.focus = 0 // Pending column
	drainBoard(t, app.board, app.board.triggerAction(order.ActionApprove))

	if gw.appliedCount() != 1 {
		t.Fatalf("expected one gateway call, got %d", gw.appliedCount())
	}
	counts := app.board.summary.PerStage
	if counts[order.StagePending] != 0 || counts[order.StageToShip] != 1 {
		t.Fatalf("counts after approve: %+v", counts)
	}
}

func TestApproveFailureKeepsOrderInPending(t *testing.T) {
	gw := &fakeGateway{
		stages:   map[order.Stage][]order.Order{order.StagePending: pendingOrders("O1")},
		applyErr: errors.New("status 500"),
	}
	app := newTestApp(t, gw)
	drainBoard(t, app.board, app.board.activate())

	app.board.focus = 0
	drainBoard(t, app.board, app.board.triggerAction(order.ActionApprove))

	counts := app.board.summary.PerStage
	if counts[order.StagePending] != 1 || counts[order.StageToShip] != 0 {
		t.Fatalf("counts after failed approve: %+v", counts)
	}
	if app.board.column(order.StagePending).notice == "" {
		t.Fatalf("expected failure notice on the pending column")
	}
}

func TestActionWithoutEdgeIsIgnored(t *testing.T) {
	gw := &fakeGateway{stages: map[order.Stage][]order.Order{
		order.StagePending: pendingOrders("O1"),
	}}
	app := newTestApp(t, gw)
	drainBoard(t, app.board, app.board.activate())

	app.board.focus = 0
	if cmd := app.board.triggerAction(order.ActionShip); cmd != nil {
		t.Fatalf("ship from pending must not produce a command")
	}
	if gw.appliedCount() != 0 {
		t.Fatalf("no gateway call expected")
	}
}

func TestMenuOpensBoard(t *testing.T) {
	app := newTestApp(t, &fakeGateway{})
	app.state = stateMainMenu

	model, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	updated, ok := model.(*App)
	if !ok {
		t.Fatalf("expected *App, got %T", model)
	}
	if updated.state != stateBoard {
		t.Fatalf("expected board state, got %d", updated.state)
	}
	if cmd == nil {
		t.Fatalf("expected activation command")
	}
}

func TestBoardEscReturnsToMenu(t *testing.T) {
	app := newTestApp(t, &fakeGateway{})
	app.state = stateBoard
	model, _ := app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	updated := model.(*App)
	if updated.state != stateMainMenu {
		t.Fatalf("expected main menu after esc, got %d", updated.state)
	}
}

func TestProductsScreenLoadsCatalog(t *testing.T) {
	cat := &fakeCatalog{products: []catalog.Product{
		{ProductName: "loafer", Size: "6", UnitPrice: 45.5, AvailableQuantity: 3},
	}}
	app, err := NewApp(testConfig(t), WithOrderGateway(&fakeGateway{}), WithCatalog(cat))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	cmd := app.products.activate()
	_ = app.products.Update(cmd())
	if got := len(app.products.list.Items()); got != 1 {
		t.Fatalf("expected 1 product item, got %d", got)
	}
}

func TestProductsEnterOpensSizeDetail(t *testing.T) {
	cat := &fakeCatalog{
		products: []catalog.Product{
			{ProductName: "loafer", Category: "womens", Size: "6", UnitPrice: 45.5},
		},
		sizes: []catalog.SizeStock{
			{Size: "6", CurrentStock: 3},
			{Size: "7", CurrentStock: 1},
		},
	}
	app, err := NewApp(testConfig(t), WithOrderGateway(&fakeGateway{}), WithCatalog(cat))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	_ = app.products.Update(app.products.activate()())

	cmd := app.products.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("enter on a product must load its sizes")
	}
	_ = app.products.Update(cmd())

	if app.products.detail == nil {
		t.Fatalf("expected the size detail to be open")
	}
	if len(app.products.sizes) != 2 {
		t.Fatalf("expected 2 size rows, got %d", len(app.products.sizes))
	}
	if len(cat.sizeQueries) != 1 || cat.sizeQueries[0].ProductName != "loafer" || cat.sizeQueries[0].UnitPrice != 45.5 {
		t.Fatalf("unexpected size query: %+v", cat.sizeQueries)
	}

	// First esc closes the detail, second one leaves the screen.
	_ = app.products.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if app.products.detail != nil {
		t.Fatalf("esc must close the detail first")
	}
	if app.products.done {
		t.Fatalf("closing the detail must not leave the products screen")
	}
	_ = app.products.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !app.products.done {
		t.Fatalf("second esc must leave the products screen")
	}
}
