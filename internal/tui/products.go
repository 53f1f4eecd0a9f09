// internal/tui/products.go
//
// Read-only catalog browser. Product CRUD stays on the service side; this
// screen lists the catalog and opens a per-size stock view on enter.

package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nlicea/orderdeck/internal/catalog"
)

// CatalogClient is the product surface the products screen consumes.
type CatalogClient interface {
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	ListSizes(ctx context.Context, q catalog.SizeQuery) ([]catalog.SizeStock, error)
}

type productsLoadedMsg struct {
	products []catalog.Product
	err      error
}

type sizesLoadedMsg struct {
	product catalog.Product
	sizes   []catalog.SizeStock
	err     error
}

type productItem struct {
	product catalog.Product
}

func (i productItem) Title() string {
	return fmt.Sprintf("%s (%s)", i.product.ProductName, i.product.Size)
}

func (i productItem) Description() string {
	return fmt.Sprintf("%s · %.2f · %d in stock",
		i.product.ProductDescription, i.product.UnitPrice, i.product.AvailableQuantity)
}

func (i productItem) FilterValue() string { return i.product.ProductName }

type productsModel struct {
	catalog CatalogClient
	timeout time.Duration

	list    list.Model
	loading bool
	notice  string
	done    bool

	// detail is non-nil while the per-size stock view is open.
	detail *catalog.Product
	sizes  []catalog.SizeStock
}

func newProductsModel(cat CatalogClient, timeout time.Duration) *productsModel {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Products"
	l.SetShowStatusBar(false)
	return &productsModel{catalog: cat, timeout: timeout, list: l}
}

func (p *productsModel) setSize(width, height int) {
	p.list.SetSize(max(0, width-6), max(0, height-8))
}

func (p *productsModel) activate() tea.Cmd {
	p.loading = true
	p.notice = ""
	p.detail = nil
	p.sizes = nil
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		products, err := p.catalog.ListProducts(ctx)
		return productsLoadedMsg{products: products, err: err}
	}
}

func (p *productsModel) loadSizes(product catalog.Product) tea.Cmd {
	p.loading = true
	p.notice = ""
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		sizes, err := p.catalog.ListSizes(ctx, catalog.SizeQuery{
			ProductName:        product.ProductName,
			UnitPrice:          product.UnitPrice,
			Category:           product.Category,
			ProductDescription: product.ProductDescription,
		})
		return sizesLoadedMsg{product: product, sizes: sizes, err: err}
	}
}

func (p *productsModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {

	case productsLoadedMsg:
		p.loading = false
		if msg.err != nil {
			p.notice = fmt.Sprintf("load failed: %v", msg.err)
			return nil
		}
		items := make([]list.Item, len(msg.products))
		for i, product := range msg.products {
			items[i] = productItem{product: product}
		}
		return p.list.SetItems(items)

	case sizesLoadedMsg:
		p.loading = false
		if msg.err != nil {
			p.notice = fmt.Sprintf("sizes unavailable: %v", msg.err)
			return nil
		}
		product := msg.product
		p.detail = &product
		p.sizes = msg.sizes
		return nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			if p.detail != nil {
				p.detail = nil
				p.sizes = nil
				return nil
			}
			p.done = true
			return nil
		case "enter":
			if p.detail == nil && !p.loading {
				if item, ok := p.list.SelectedItem().(productItem); ok {
					return p.loadSizes(item.product)
				}
			}
			return nil
		case "r":
			if p.detail != nil {
				return p.loadSizes(*p.detail)
			}
			return p.activate()
		}
	}
	if p.detail != nil {
		return nil
	}
	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	return cmd
}

func (p *productsModel) View() string {
	view := p.list.View()
	footer := "enter sizes · r reload · esc back"
	if p.detail != nil {
		view = p.renderDetail()
		footer = "r reload sizes · esc close"
	}
	switch {
	case p.loading:
		footer = "loading…"
	case p.notice != "":
		footer = p.notice
	}
	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		Render(footer)
	return lipgloss.JoinVertical(lipgloss.Left, view, hint)
}

func (p *productsModel) renderDetail() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("%s · %.2f", p.detail.ProductName, p.detail.UnitPrice))
	lines := []string{title}
	if p.detail.ProductDescription != "" {
		lines = append(lines, p.detail.ProductDescription)
	}
	lines = append(lines, "")
	if len(p.sizes) == 0 {
		lines = append(lines, "no sizes in stock")
	}
	for _, s := range p.sizes {
		lines = append(lines, fmt.Sprintf("size %-4s %d in stock", s.Size, s.CurrentStock))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))
}
