package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusReturned  OrderStatus = "returned"
)

// Valid reports whether s is one of the known order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusReturned:
		return true
	}
	return false
}

const (
	PaymentCOD    = "COD"
	PaymentOnline = "Online"
)

type VariantRef struct {
	ColorID primitive.ObjectID `json:"colorId"`
	SizeID  primitive.ObjectID `json:"sizeId"`
}

type OrderItemRequest struct {
	ProductID primitive.ObjectID `json:"productId"`
	Quantity  int                `json:"quantity"`
	Variant   VariantRef         `json:"variant"`
}

// OrderRequest is the order-creation body. Only identifiers travel; the
// server prices the order itself.
type OrderRequest struct {
	DeliveryAddress Address            `json:"deliveryAddress"`
	PaymentMethod   string             `json:"paymentMethod"`
	Items           []OrderItemRequest `json:"items"`
}

type OrderResult struct {
	OrderID     string          `json:"orderId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

type OrderLine struct {
	ProductID primitive.ObjectID `json:"productId"`
	Name      string             `json:"name,omitempty"`
	Quantity  int                `json:"quantity"`
	Price     decimal.Decimal    `json:"price"`
	Variant   VariantRef         `json:"variant"`
}

// Order is the server's record of a placed order.
type Order struct {
	ID              primitive.ObjectID `json:"_id,omitzero"`
	User            *User              `json:"user,omitempty"`
	Items           []OrderLine        `json:"items"`
	DeliveryAddress Address            `json:"deliveryAddress"`
	PaymentMethod   string             `json:"paymentMethod"`
	PaymentStatus   string             `json:"paymentStatus,omitempty"`
	TotalAmount     decimal.Decimal    `json:"totalAmount"`
	Status          OrderStatus        `json:"status"`
	CreatedAt       time.Time          `json:"createdAt"`
}

func (o Order) GetID() primitive.ObjectID { return o.ID }

// GetStatus maps delivery progress onto the Active/Inactive flag used by
// the back-office lists: closed orders are inactive.
func (o Order) GetStatus() Status {
	switch o.Status {
	case OrderStatusDelivered, OrderStatusCancelled, OrderStatusReturned:
		return StatusInactive
	}
	return StatusActive
}
