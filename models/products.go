package models

import (
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	// The remote API exchanges prices as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product represents a product in the catalog.
// It carries its category, brand and tag references and a list of variants,
// one per color.
type Product struct {
	ID          primitive.ObjectID `json:"_id,omitzero"`
	Name        string             `json:"name"`
	Category    *Category          `json:"category,omitempty"`
	Subcategory *Category          `json:"subcategory,omitempty"`
	Brand       *Brand             `json:"brand,omitempty"`
	Tags        []Tag              `json:"tags,omitempty"`
	Description []string           `json:"description,omitempty"`
	Variants    []Variant          `json:"variants"`
	Status      Status             `json:"status,omitempty"`
}

func (p Product) GetID() primitive.ObjectID { return p.ID }
func (p Product) GetStatus() Status         { return p.Status }

// Variant groups the sellable sizes of a product in one color.
type Variant struct {
	ID     primitive.ObjectID `json:"_id,omitzero"`
	Color  *Color             `json:"color"`
	Images []string           `json:"images"`
	Sizes  []SizeEntry        `json:"sizes"`
}

// ColorID returns the id of the variant's color, or the zero id.
func (v *Variant) ColorID() primitive.ObjectID {
	if v == nil || v.Color == nil {
		return primitive.NilObjectID
	}
	return v.Color.ID
}

func (v *Variant) ColorName() string {
	if v == nil || v.Color == nil {
		return ""
	}
	return v.Color.Name
}

func (v *Variant) FirstImage() string {
	if v == nil || len(v.Images) == 0 {
		return ""
	}
	return v.Images[0]
}

// SizeEntry is one size of a variant with its own price and stock.
type SizeEntry struct {
	ID       primitive.ObjectID `json:"_id,omitzero"`
	Size     *Size              `json:"size"`
	SKU      string             `json:"sku"`
	Price    decimal.Decimal    `json:"price"`
	OldPrice decimal.Decimal    `json:"oldPrice"`
	Quantity int                `json:"quantity"`
}

func (s *SizeEntry) SizeID() primitive.ObjectID {
	if s == nil || s.Size == nil {
		return primitive.NilObjectID
	}
	return s.Size.ID
}

func (s *SizeEntry) SizeName() string {
	if s == nil || s.Size == nil {
		return ""
	}
	return s.Size.Name
}

// InStock reports whether the size can be sold.
func (s *SizeEntry) InStock() bool {
	return s != nil && s.Quantity > 0
}
