package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Category represents a product category.
// A category with a Parent is a subcategory.
type Category struct {
	ID     primitive.ObjectID  `json:"_id,omitzero"`
	Name   string              `json:"name" validate:"required,max=64"`
	Parent *primitive.ObjectID `json:"parent,omitempty"`
	Status Status              `json:"status,omitempty"`
}

func (c Category) GetID() primitive.ObjectID { return c.ID }
func (c Category) GetStatus() Status         { return c.Status }

// Brand is the manufacturer reference of a product.
type Brand struct {
	ID     primitive.ObjectID `json:"_id,omitzero"`
	Name   string             `json:"name" validate:"required,max=64"`
	Logo   string             `json:"logo,omitempty" validate:"omitempty,url"`
	Status Status             `json:"status,omitempty"`
}

func (b Brand) GetID() primitive.ObjectID { return b.ID }
func (b Brand) GetStatus() Status         { return b.Status }

type Color struct {
	ID      primitive.ObjectID `json:"_id,omitzero"`
	Name    string             `json:"name" validate:"required,max=32"`
	HexCode string             `json:"hexCode,omitempty" validate:"omitempty,hexcolor"`
	Status  Status             `json:"status,omitempty"`
}

func (c Color) GetID() primitive.ObjectID { return c.ID }
func (c Color) GetStatus() Status         { return c.Status }

type Size struct {
	ID     primitive.ObjectID `json:"_id,omitzero"`
	Name   string             `json:"name" validate:"required,max=16"`
	Status Status             `json:"status,omitempty"`
}

func (s Size) GetID() primitive.ObjectID { return s.ID }
func (s Size) GetStatus() Status         { return s.Status }

type Tag struct {
	ID     primitive.ObjectID `json:"_id,omitzero"`
	Name   string             `json:"name" validate:"required,max=32"`
	Status Status             `json:"status,omitempty"`
}

func (t Tag) GetID() primitive.ObjectID { return t.ID }
func (t Tag) GetStatus() Status         { return t.Status }
