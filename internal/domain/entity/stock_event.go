package entity

import "time"

// Causas de una mutación de stock (trazabilidad).
const (
	StockCauseOrderCreated   = "order_created"
	StockCauseOrderCancelled = "order_cancelled"
	StockCauseOrderDeleted   = "order_deleted"
	StockCauseLedgerImport   = "ledger_import"
	StockCauseLedgerExport   = "ledger_export"
)

// StockEvent describe una mutación de stock ya confirmada.
type StockEvent struct {
	ProductID  string    `json:"product_id"`
	Delta      int       `json:"delta"`
	NewStock   int       `json:"new_stock"`
	Cause      string    `json:"cause"`
	Reference  string    `json:"reference"` // ID del pedido o del registro de kardex
	OccurredAt time.Time `json:"occurred_at"`
}
