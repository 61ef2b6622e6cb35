package model

type PharmacyItem struct {
	Base
	ItemCode             string  `db:"item_code" json:"item_code"`
	Name                 string  `db:"name" json:"name"`
	GenericName          string  `db:"generic_name" json:"generic_name"`
	ItemType             string  `db:"item_type" json:"item_type"`
	UnitPrice            float64 `db:"unit_price" json:"unit_price"`
	StockQuantity        int     `db:"stock_quantity" json:"stock_quantity"`
	ReorderLevel         int     `db:"reorder_level" json:"reorder_level"`
	PrescriptionRequired bool    `db:"prescription_required" json:"prescription_required"`
	IsActive             bool    `db:"is_active" json:"is_active"`
}

type CreatePharmacyItemRequest struct {
	Name                 string  `json:"name" binding:"required"`
	GenericName          string  `json:"generic_name"`
	ItemType             string  `json:"item_type" binding:"required,oneof=medicine consumable equipment"`
	UnitPrice            float64 `json:"unit_price" binding:"gte=0"`
	StockQuantity        int     `json:"stock_quantity" binding:"gte=0"`
	ReorderLevel         int     `json:"reorder_level" binding:"gte=0"`
	PrescriptionRequired bool    `json:"prescription_required"`
}

type UpdatePharmacyItemRequest struct {
	Name                 *string  `json:"name"`
	GenericName          *string  `json:"generic_name"`
	ItemType             *string  `json:"item_type" binding:"omitempty,oneof=medicine consumable equipment"`
	UnitPrice            *float64 `json:"unit_price" binding:"omitempty,gte=0"`
	ReorderLevel         *int     `json:"reorder_level" binding:"omitempty,gte=0"`
	PrescriptionRequired *bool    `json:"prescription_required"`
	IsActive             *bool    `json:"is_active"`
}

// AdjustStockRequest moves stock by a signed delta (receipts positive,
// dispensing negative).
type AdjustStockRequest struct {
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason"`
}
