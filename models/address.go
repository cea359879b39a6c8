package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Address is a delivery address owned by the signed-in user.
type Address struct {
	ID       primitive.ObjectID `json:"_id,omitzero"`
	Fullname string             `json:"fullname" validate:"required,max=80"`
	Mobile   string             `json:"mobile" validate:"required,numeric,len=10"`
	Address  string             `json:"address" validate:"required,max=200"`
	City     string             `json:"city" validate:"required"`
	State    string             `json:"state" validate:"required"`
	Country  string             `json:"country" validate:"required"`
	Pincode  string             `json:"pincode" validate:"required,numeric,min=4,max=10"`
}

type User struct {
	ID       primitive.ObjectID `json:"_id,omitzero"`
	Fullname string             `json:"fullname"`
	Email    string             `json:"email"`
	Mobile   string             `json:"mobile,omitempty"`
	Role     string             `json:"role,omitempty"`
}

// IsAdmin reports whether the profile may use the back-office.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == "admin"
}
