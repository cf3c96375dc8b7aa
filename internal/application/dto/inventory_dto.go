package dto

import "time"

// CreateInventoryRecordRequest body para POST /api/inventories.
type CreateInventoryRecordRequest struct {
	ProductID string `json:"product_id"`
	Type      string `json:"type"`       // import | export
	ChangeQty int    `json:"change_qty"` // > 0
	Note      string `json:"note"`
}

// InventoryRecordResponse salida de un registro de kardex.
type InventoryRecordResponse struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"`
	Type        string    `json:"type"`
	ChangeQty   int       `json:"change_qty"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// RecordInventoryResponse cuerpo 201 de POST /api/inventories: {success, data, newStock}.
type RecordInventoryResponse struct {
	Success  bool                    `json:"success"`
	Data     InventoryRecordResponse `json:"data"`
	NewStock int                     `json:"newStock"`
}
