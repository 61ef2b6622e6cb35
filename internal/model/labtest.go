package model

// LabTest is a priced catalog entry. Code and name are intended unique but the
// catalog accumulates duplicates from repeated bulk imports; duplicates are
// reconciled by dedup sweeps that keep the lowest surrogate key and deactivate
// the rest.
type LabTest struct {
	Base
	TestCode    string  `db:"test_code" json:"test_code"`
	TestName    string  `db:"test_name" json:"test_name"`
	Category    string  `db:"category" json:"category"`
	Subcategory string  `db:"subcategory" json:"subcategory"`
	Price       float64 `db:"price" json:"price"`
	IsActive    bool    `db:"is_active" json:"is_active"`
}

type CreateLabTestRequest struct {
	TestCode    string  `json:"test_code" binding:"required"`
	TestName    string  `json:"test_name" binding:"required"`
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory"`
	Price       float64 `json:"price" binding:"gte=0"`
}

type UpdateLabTestRequest struct {
	TestCode    *string  `json:"test_code"`
	TestName    *string  `json:"test_name"`
	Category    *string  `json:"category"`
	Subcategory *string  `json:"subcategory"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	IsActive    *bool    `json:"is_active"`
}

type ImportLabTestsRequest struct {
	Tests []CreateLabTestRequest `json:"tests" binding:"required,min=1,dive"`
}
