package apitest

import (
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mytheresa/storefront/models"
)

// SizeSpec describes one size of a fixture variant.
type SizeSpec struct {
	Name     string
	Price    int64
	OldPrice int64
	Quantity int
}

// NewProduct builds a catalog product with one variant per color, each
// carrying the given sizes. Ids are fresh for every call.
func NewProduct(name string, colors []string, sizes ...SizeSpec) models.Product {
	p := models.Product{
		ID:       primitive.NewObjectID(),
		Name:     name,
		Category: &models.Category{ID: primitive.NewObjectID(), Name: "Shirts", Status: models.StatusActive},
		Brand:    &models.Brand{ID: primitive.NewObjectID(), Name: "Acme", Status: models.StatusActive},
		Status:   models.StatusActive,
	}
	sizeRefs := make([]models.Size, len(sizes))
	for i, s := range sizes {
		sizeRefs[i] = models.Size{ID: primitive.NewObjectID(), Name: s.Name}
	}
	for _, color := range colors {
		v := models.Variant{
			ID:     primitive.NewObjectID(),
			Color:  &models.Color{ID: primitive.NewObjectID(), Name: color},
			Images: []string{name + "-" + color + ".jpg"},
		}
		for i, s := range sizes {
			ref := sizeRefs[i]
			v.Sizes = append(v.Sizes, models.SizeEntry{
				ID:       primitive.NewObjectID(),
				Size:     &ref,
				SKU:      name + "-" + color + "-" + s.Name,
				Price:    decimal.NewFromInt(s.Price),
				OldPrice: decimal.NewFromInt(s.OldPrice),
				Quantity: s.Quantity,
			})
		}
		p.Variants = append(p.Variants, v)
	}
	return p
}

// NewAddress returns a valid delivery address.
func NewAddress(name string) models.Address {
	return models.Address{
		ID:       primitive.NewObjectID(),
		Fullname: name,
		Mobile:   "9876543210",
		Address:  "12 Market Street",
		City:     "Pune",
		State:    "Maharashtra",
		Country:  "India",
		Pincode:  "411001",
	}
}
