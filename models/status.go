package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Status is the Active/Inactive flag every admin-managed entity carries.
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

// Toggled returns the opposite status. Unknown values toggle to Active.
func (s Status) Toggled() Status {
	if s == StatusActive {
		return StatusInactive
	}
	return StatusActive
}

// Entity is implemented by every type the back-office lists and edits.
type Entity interface {
	GetID() primitive.ObjectID
	GetStatus() Status
}
