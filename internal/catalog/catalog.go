// Package catalog holds the static product cart. There is no inventory or
// product administration in scope; the list is fixed at build time.
package catalog

import (
	"github.com/dsmirnov/gophershop/internal/models"
)

const productImageURL = "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?fm=jpg&q=60&w=3000"

var products = []models.OrderItem{
	{ProductName: "Product 1", Price: 30, ImageURL: productImageURL},
	{ProductName: "Product 2", Price: 10, ImageURL: productImageURL},
	{ProductName: "Product 3", Price: 15, ImageURL: productImageURL},
}

// Products returns a copy of the static cart contents.
func Products() []models.OrderItem {
	out := make([]models.OrderItem, len(products))
	copy(out, products)
	return out
}

// Total sums the prices of the given line items.
func Total(items []models.OrderItem) float64 {
	var sum float64
	for _, item := range items {
		sum += item.Price
	}
	return sum
}
