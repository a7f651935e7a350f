package models

import (
	"time"

	"github.com/google/uuid"
)

type ContactStatus string

const (
	ContactStatusPending ContactStatus = "pending"
	ContactStatusRead    ContactStatus = "read"
	ContactStatusReplied ContactStatus = "replied"
)

func (s ContactStatus) IsValid() bool {
	switch s {
	case ContactStatusPending, ContactStatusRead, ContactStatusReplied:
		return true
	}

	return false
}

type Contact struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Subject   string        `json:"subject"`
	Message   string        `json:"message"`
	Status    ContactStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
}

type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

type UpdateContactStatusRequest struct {
	Status ContactStatus `json:"status" validate:"required"`
}
