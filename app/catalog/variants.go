package catalog

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mytheresa/storefront/models"
)

// ResolveVariant returns the variant whose color matches colorID, falling
// back to the first variant when nothing matches or nothing is selected.
// It returns nil only when the product has no variants.
func ResolveVariant(p *models.Product, colorID primitive.ObjectID) *models.Variant {
	if p == nil || len(p.Variants) == 0 {
		return nil
	}
	if v := findVariant(p, colorID); v != nil {
		return v
	}
	return &p.Variants[0]
}

// ResolveSize applies the same fallback-to-first policy to a variant's sizes.
func ResolveSize(v *models.Variant, sizeID primitive.ObjectID) *models.SizeEntry {
	if v == nil || len(v.Sizes) == 0 {
		return nil
	}
	if s := findSize(v, sizeID); s != nil {
		return s
	}
	return &v.Sizes[0]
}

// SizeAvailable reports whether a size can be bought: quantity above zero.
func SizeAvailable(s *models.SizeEntry) bool {
	return s.InStock()
}

// VariantAvailable reports whether at least one of the variant's sizes is
// in stock.
func VariantAvailable(v *models.Variant) bool {
	if v == nil {
		return false
	}
	for i := range v.Sizes {
		if SizeAvailable(&v.Sizes[i]) {
			return true
		}
	}
	return false
}

func findVariant(p *models.Product, colorID primitive.ObjectID) *models.Variant {
	if colorID.IsZero() {
		return nil
	}
	for i := range p.Variants {
		if p.Variants[i].ColorID() == colorID {
			return &p.Variants[i]
		}
	}
	return nil
}

func findSize(v *models.Variant, sizeID primitive.ObjectID) *models.SizeEntry {
	if sizeID.IsZero() {
		return nil
	}
	for i := range v.Sizes {
		if v.Sizes[i].SizeID() == sizeID {
			return &v.Sizes[i]
		}
	}
	return nil
}
