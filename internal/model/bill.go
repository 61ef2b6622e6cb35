package model

import (
	"time"
)

type Bill struct {
	Base
	BillNumber     string     `db:"bill_number" json:"bill_number"`
	PatientID      int64      `db:"patient_id" json:"patient_id"`
	PrescriptionID *int64     `db:"prescription_id" json:"prescription_id,omitempty"`
	Status         BillStatus `db:"status" json:"status"`
	SubTotal       float64    `db:"sub_total" json:"sub_total"`
	Discount       float64    `db:"discount" json:"discount"`
	Total          float64    `db:"total" json:"total"`
	PaymentMethod  *string    `db:"payment_method" json:"payment_method,omitempty"`
	PaidAt         *time.Time `db:"paid_at" json:"paid_at,omitempty"`
	CancelReason   *string    `db:"cancel_reason" json:"cancel_reason,omitempty"`
	Items          []BillItem `db:"-" json:"items,omitempty"`
}

// BillItem snapshots the unit price at billing time; later catalog edits do
// not alter historical bills.
type BillItem struct {
	ID          int64   `db:"id" json:"id"`
	BillID      int64   `db:"bill_id" json:"bill_id"`
	LabTestID   *int64  `db:"lab_test_id" json:"lab_test_id,omitempty"`
	Description string  `db:"description" json:"description"`
	Quantity    int     `db:"quantity" json:"quantity"`
	UnitPrice   float64 `db:"unit_price" json:"unit_price"`
	Amount      float64 `db:"amount" json:"amount"`
}

type CreateBillRequest struct {
	PatientID      int64                   `json:"patient_id" binding:"required"`
	PrescriptionID *int64                  `json:"prescription_id"`
	Discount       float64                 `json:"discount" binding:"gte=0"`
	Items          []CreateBillItemRequest `json:"items" binding:"required,min=1,dive"`
}

type CreateBillItemRequest struct {
	LabTestID   *int64  `json:"lab_test_id"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity" binding:"required,gt=0"`
	UnitPrice   float64 `json:"unit_price" binding:"gte=0"`
}

type PayBillRequest struct {
	PaymentMethod string  `json:"payment_method" binding:"required,oneof=cash card upi insurance"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
}

type CancelBillRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type BillFilter struct {
	Pagination
	PatientID int64  `form:"patient_id"`
	Status    string `form:"status"`
}
