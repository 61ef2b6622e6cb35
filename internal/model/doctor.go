package model

type Doctor struct {
	Base
	Name            string  `db:"name" json:"name"`
	Specialization  string  `db:"specialization" json:"specialization"`
	Qualification   string  `db:"qualification" json:"qualification"`
	Phone           string  `db:"phone" json:"phone"`
	Email           string  `db:"email" json:"email"`
	ConsultationFee float64 `db:"consultation_fee" json:"consultation_fee"`
	IsActive        bool    `db:"is_active" json:"is_active"`
}

type CreateDoctorRequest struct {
	Name            string  `json:"name" binding:"required"`
	Specialization  string  `json:"specialization" binding:"required"`
	Qualification   string  `json:"qualification"`
	Phone           string  `json:"phone"`
	Email           string  `json:"email" binding:"omitempty,email"`
	ConsultationFee float64 `json:"consultation_fee" binding:"gte=0"`
}

type UpdateDoctorRequest struct {
	Name            *string  `json:"name"`
	Specialization  *string  `json:"specialization"`
	Qualification   *string  `json:"qualification"`
	Phone           *string  `json:"phone"`
	Email           *string  `json:"email" binding:"omitempty,email"`
	ConsultationFee *float64 `json:"consultation_fee" binding:"omitempty,gte=0"`
	IsActive        *bool    `json:"is_active"`
}
