// internal/tui/app.go
//
// Top-level bubbletea model for the operator console. It uses The Elm
// Architecture: Model holds all state, Update consumes messages, View renders
// a string. Update bodies never run concurrently, so every network call lives
// inside a tea.Cmd and re-enters the loop as a typed message.

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nlicea/orderdeck/internal/catalog"
	"github.com/nlicea/orderdeck/internal/config"
	"github.com/nlicea/orderdeck/internal/engine"
	"github.com/nlicea/orderdeck/internal/gateway"
	"github.com/nlicea/orderdeck/internal/journal"
	"github.com/nlicea/orderdeck/internal/session"
	"github.com/nlicea/orderdeck/internal/store"
)

// appState represents which "screen" we're on.
type appState int

const (
	stateLogin    appState = iota // Username/password prompt
	stateMainMenu                 // Main menu with "Orders Board", etc.
	stateBoard                    // The fulfillment board
	stateProducts                 // Read-only product catalog
)

// Logger records console activity. It matches logging.Logger's signature.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithLogger overrides the default no-op logger.
func WithLogger(l Logger) AppOption {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithOrderGateway overrides the remote order service client. Tests inject
// fakes here.
func WithOrderGateway(g OrderGateway) AppOption {
	return func(a *App) {
		if g != nil {
			a.gateway = g
		}
	}
}

// WithCatalog overrides the product catalog client.
func WithCatalog(c CatalogClient) AppOption {
	return func(a *App) {
		if c != nil {
			a.catalog = c
		}
	}
}

// App is the main application model. In bubbletea, this holds ALL the state.
type App struct {
	state   appState
	config  *config.Config
	session *session.Session
	journal *journal.Journal
	logger  Logger

	gateway OrderGateway
	catalog CatalogClient
	store   *store.Store
	engine  *engine.Engine

	mainMenu list.Model
	login    *loginModel
	board    *boardModel
	products *productsModel

	statusMsg string
	err       error

	width  int
	height int
}

// menuItem implements list.Item for the main menu.
type menuItem struct {
	title string
	desc  string
}

func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }
func (i menuItem) FilterValue() string { return i.title }

// NewApp creates the console model. The session token on disk decides whether
// the login screen or the main menu comes up first.
func NewApp(cfg *config.Config, opts ...AppOption) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("tui: config is required")
	}
	sess, err := session.New(session.Settings{
		BaseURL:   cfg.BaseURL(),
		TokenPath: cfg.TokenPath(),
		Timeout:   cfg.RequestTimeout(),
	})
	if err != nil {
		return nil, err
	}
	jnl, err := journal.New(cfg.JournalPath())
	if err != nil {
		return nil, fmt.Errorf("tui: open journal: %w", err)
	}

	mainMenu := list.New(buildMainMenu(), list.NewDefaultDelegate(), 0, 0)
	mainMenu.Title = "⬡ ORDERDECK"
	mainMenu.SetShowStatusBar(false)
	mainMenu.SetFilteringEnabled(false)

	app := &App{
		state:    stateLogin,
		config:   cfg,
		session:  sess,
		journal:  jnl,
		logger:   nopLogger{},
		mainMenu: mainMenu,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	if app.gateway == nil {
		gw, err := gateway.New(gateway.Settings{
			BaseURL:      cfg.BaseURL(),
			ImageBaseURL: cfg.ImageBaseURL(),
			Placeholder:  cfg.ImagePlaceholder(),
			Timeout:      cfg.RequestTimeout(),
		}, gateway.WithTokenSource(sess))
		if err != nil {
			return nil, err
		}
		app.gateway = gw
	}
	if app.catalog == nil {
		cat, err := catalog.New(cfg.BaseURL(), catalog.WithTokenSource(sess))
		if err != nil {
			return nil, err
		}
		app.catalog = cat
	}
	app.store, err = store.New(app.gateway)
	if err != nil {
		return nil, err
	}
	app.engine, err = engine.New(app.store, app.gateway,
		engine.WithLogger(app.logger),
		engine.WithTimeout(cfg.RequestTimeout()),
	)
	if err != nil {
		return nil, err
	}

	app.login = newLoginModel(sess, cfg.RequestTimeout())
	app.board = newBoardModel(app.store, app.engine, app.journal, cfg.RequestTimeout())
	app.products = newProductsModel(app.catalog, cfg.RequestTimeout())

	if sess.Valid() {
		app.state = stateMainMenu
		app.journal.Info("Session resumed for %s", sess.Username())
	}
	return app, nil
}

func buildMainMenu() []list.Item {
	return []list.Item{
		menuItem{title: "Orders Board", desc: "Track and advance order fulfillment"},
		menuItem{title: "Products", desc: "Browse the product catalog"},
		menuItem{title: "Logout", desc: "Drop the current session"},
		menuItem{title: "Exit", desc: "Quit orderdeck"},
	}
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	if a.state == stateLogin {
		return a.login.Init()
	}
	return nil
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.mainMenu.SetSize(max(0, msg.Width-6), max(0, msg.Height-10))
		a.board.setSize(msg.Width, msg.Height)
		a.products.setSize(msg.Width, msg.Height)
		return a, nil

	case loginFinishedMsg:
		return a.handleLoginFinished(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
	}

	switch a.state {
	case stateLogin:
		return a.updateLogin(msg)
	case stateMainMenu:
		return a.updateMainMenu(msg)
	case stateBoard:
		cmd := a.board.Update(msg)
		if a.board.done {
			a.board.done = false
			a.state = stateMainMenu
		}
		return a, cmd
	case stateProducts:
		cmd := a.products.Update(msg)
		if a.products.done {
			a.products.done = false
			a.state = stateMainMenu
		}
		return a, cmd
	}
	return a, nil
}

func (a *App) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	return a, a.login.Update(msg)
}

func (a *App) handleLoginFinished(msg loginFinishedMsg) (tea.Model, tea.Cmd) {
	a.login.submitting = false
	if msg.err != nil {
		a.login.notice = msg.err.Error()
		a.logger.Printf("tui: login failed: %v", msg.err)
		return a, nil
	}
	a.state = stateMainMenu
	a.journal.Info("Operator %s logged in", a.session.Username())
	return a, nil
}

func (a *App) updateMainMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			selected, ok := a.mainMenu.SelectedItem().(menuItem)
			if !ok {
				return a, nil
			}
			switch selected.title {
			case "Orders Board":
				a.state = stateBoard
				return a, a.board.activate()
			case "Products":
				a.state = stateProducts
				return a, a.products.activate()
			case "Logout":
				if err := a.session.Logout(); err != nil {
					a.err = err
					return a, nil
				}
				a.journal.Info("Operator logged out")
				a.state = stateLogin
				a.login.reset()
				return a, a.login.Init()
			case "Exit":
				return a, tea.Quit
			}
		case "q":
			return a, tea.Quit
		}
	}
	var cmd tea.Cmd
	a.mainMenu, cmd = a.mainMenu.Update(msg)
	return a, cmd
}

// View renders the current screen.
func (a *App) View() string {
	switch a.state {
	case stateLogin:
		return a.login.View(a.width)
	case stateBoard:
		return a.board.View()
	case stateProducts:
		return a.products.View()
	default:
		return a.viewMainMenu()
	}
}

func (a *App) viewMainMenu() string {
	view := a.mainMenu.View()
	var footer []string
	if a.session.Valid() {
		footer = append(footer, fmt.Sprintf("signed in as %s", a.session.Username()))
	}
	if a.err != nil {
		footer = append(footer, a.err.Error())
	}
	footer = append(footer, "enter select · q quit")
	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		Render(strings.Join(footer, "  ·  "))
	return lipgloss.JoinVertical(lipgloss.Left, view, hint)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
