package gateway

import (
	"strconv"
	"strings"

	"github.com/nlicea/orderdeck/internal/order"
)

// OrderDTO mirrors the order summary shape the service returns for every
// stage listing. Field names follow the wire contract.
type OrderDTO struct {
	OrderID          int64   `json:"orderID"`
	ProductName      string  `json:"productName"`
	Size             string  `json:"size"`
	Category         string  `json:"category"`
	Quantity         int     `json:"quantity"`
	TotalPrice       float64 `json:"totalPrice"`
	CustomerName     string  `json:"customerName"`
	WarehouseAddress string  `json:"warehouseAddress"`
	ImagePath        string  `json:"image_path"`
}

func (d OrderDTO) toOrder(imageBase, placeholder string) order.Order {
	return order.Order{
		ID:              strconv.FormatInt(d.OrderID, 10),
		ProductName:     d.ProductName,
		Category:        d.Category,
		Size:            d.Size,
		Quantity:        d.Quantity,
		CustomerName:    d.CustomerName,
		ShippingAddress: d.WarehouseAddress,
		TotalPrice:      d.TotalPrice,
		ImageURL:        resolveImage(imageBase, placeholder, d.ImagePath),
	}
}

// resolveImage turns the service's relative image path into a display URL.
// The service stores Windows-style separators; normalize them before joining.
func resolveImage(base, placeholder, path string) string {
	path = strings.TrimSpace(strings.ReplaceAll(path, `\`, "/"))
	if path == "" {
		return placeholder
	}
	return base + "/" + strings.TrimLeft(path, "/")
}
