package model

import (
	"time"
)

// Clinic is the single-row clinic profile shown on printed documents.
type Clinic struct {
	ID                 int64     `db:"id" json:"id"`
	Name               string    `db:"name" json:"name"`
	Address            string    `db:"address" json:"address"`
	City               string    `db:"city" json:"city"`
	Phone              string    `db:"phone" json:"phone"`
	Email              string    `db:"email" json:"email"`
	RegistrationNumber string    `db:"registration_number" json:"registration_number"`
	TaxID              string    `db:"tax_id" json:"tax_id"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

type UpdateClinicRequest struct {
	Name               *string `json:"name"`
	Address            *string `json:"address"`
	City               *string `json:"city"`
	Phone              *string `json:"phone"`
	Email              *string `json:"email" binding:"omitempty,email"`
	RegistrationNumber *string `json:"registration_number"`
	TaxID              *string `json:"tax_id"`
}
