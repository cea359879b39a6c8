package models

import (
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem is one cart line. Display fields are captured when the line is
// created and never refreshed from the catalog.
type CartItem struct {
	ID        string             `json:"id"`
	ProductID primitive.ObjectID `json:"productId"`
	ColorID   primitive.ObjectID `json:"colorId"`
	SizeID    primitive.ObjectID `json:"sizeId"`
	Name      string             `json:"name"`
	Image     string             `json:"image,omitempty"`
	ColorName string             `json:"colorName"`
	SizeName  string             `json:"sizeName"`
	Price     decimal.Decimal    `json:"price"`
	OldPrice  decimal.Decimal    `json:"oldPrice"`
	Quantity  int                `json:"quantity"`
}

// LineKey builds the cart line identifier. The same product in another
// color or size is another line.
func LineKey(productID, colorID, sizeID primitive.ObjectID) string {
	return productID.Hex() + "-" + colorID.Hex() + "-" + sizeID.Hex()
}

func (i CartItem) Total() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Savings is what the line saves against the old price, never negative.
func (i CartItem) Savings() decimal.Decimal {
	diff := i.OldPrice.Sub(i.Price)
	if !diff.IsPositive() {
		return decimal.Zero
	}
	return diff.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
