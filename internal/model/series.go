package model

import (
	"time"
)

// Series is a named, independently numbered identifier sequence. CurrentNumber
// is the next number to hand out (reserve-then-advance): a reservation returns
// it and persists CurrentNumber+1 before the caller sees the value. Issued
// numbers are never reused, even if the owning entity is later deleted.
type Series struct {
	ID            int64     `json:"id" db:"id"`
	Code          string    `json:"code" db:"code"`
	Prefix        string    `json:"prefix" db:"prefix"`
	Suffix        string    `json:"suffix" db:"suffix"`
	Padding       int       `json:"padding" db:"padding"`
	Format        string    `json:"format" db:"format"`
	StartNumber   int64     `json:"start_number" db:"start_number"`
	CurrentNumber int64     `json:"current_number" db:"current_number"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Well-known series codes seeded at startup.
const (
	SeriesPatient      = "PAT"
	SeriesBill         = "BILL"
	SeriesLabOrder     = "LAB"
	SeriesPrescription = "RX"
	SeriesPharmacyItem = "PHARM"
	SeriesAppointment  = "APT"
)
