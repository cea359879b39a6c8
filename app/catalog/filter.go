package catalog

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mytheresa/storefront/models"
)

type Filters struct {
	// Category matches a category or subcategory by id or by name.
	Category      string
	PriceLessThan *decimal.Decimal
	Query         string
}

// filterProducts keeps the active products matching every filter set.
func filterProducts(products []models.Product, f Filters) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.Status == models.StatusInactive {
			continue
		}
		if f.Category != "" && !inCategory(p, f.Category) {
			continue
		}
		if f.PriceLessThan != nil {
			price, ok := lowestPrice(p)
			if !ok || !price.LessThan(*f.PriceLessThan) {
				continue
			}
		}
		if f.Query != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Query)) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func inCategory(p models.Product, category string) bool {
	for _, c := range []*models.Category{p.Category, p.Subcategory} {
		if c == nil {
			continue
		}
		if c.ID.Hex() == category || strings.EqualFold(c.Name, category) {
			return true
		}
	}
	return false
}

// lowestPrice is the cheapest size price across all variants.
func lowestPrice(p models.Product) (decimal.Decimal, bool) {
	var (
		lowest decimal.Decimal
		found  bool
	)
	for _, v := range p.Variants {
		for _, s := range v.Sizes {
			if !found || s.Price.LessThan(lowest) {
				lowest = s.Price
				found = true
			}
		}
	}
	return lowest, found
}

func inStock(p models.Product) bool {
	for i := range p.Variants {
		if VariantAvailable(&p.Variants[i]) {
			return true
		}
	}
	return false
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset > len(items) {
		offset = len(items)
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
