package model

import (
	"time"
)

type Patient struct {
	Base
	PatientCode string        `db:"patient_code" json:"patient_code"`
	FirstName   string        `db:"first_name" json:"first_name"`
	LastName    string        `db:"last_name" json:"last_name"`
	Gender      string        `db:"gender" json:"gender"`
	DateOfBirth *time.Time    `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Phone       string        `db:"phone" json:"phone"`
	Email       string        `db:"email" json:"email"`
	Address     string        `db:"address" json:"address"`
	BloodGroup  string        `db:"blood_group" json:"blood_group"`
	Status      PatientStatus `db:"status" json:"status"`
}

type CreatePatientRequest struct {
	FirstName   string     `json:"first_name" binding:"required"`
	LastName    string     `json:"last_name" binding:"required"`
	Gender      string     `json:"gender" binding:"required,oneof=male female other"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Phone       string     `json:"phone"`
	Email       string     `json:"email" binding:"omitempty,email"`
	Address     string     `json:"address"`
	BloodGroup  string     `json:"blood_group" binding:"omitempty,blood_group"`
}

type UpdatePatientRequest struct {
	FirstName   *string    `json:"first_name"`
	LastName    *string    `json:"last_name"`
	Gender      *string    `json:"gender" binding:"omitempty,oneof=male female other"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Phone       *string    `json:"phone"`
	Email       *string    `json:"email" binding:"omitempty,email"`
	Address     *string    `json:"address"`
	BloodGroup  *string    `json:"blood_group" binding:"omitempty,blood_group"`
	Status      *string    `json:"status" binding:"omitempty,oneof=active inactive"`
}

type PatientFilter struct {
	Pagination
	SearchTerm string `form:"search"`
	Status     string `form:"status"`
}
