package entity

import "time"

// Tipos de movimiento manual de kardex.
const (
	RecordTypeImport = "import" // entrada
	RecordTypeExport = "export" // salida
)

// InventoryRecord registro append-only de un ajuste manual de stock.
// Eliminarlo no revierte el efecto sobre el stock (es limpieza de auditoría, no una corrección).
type InventoryRecord struct {
	ID        string
	ProductID string
	Type      string
	ChangeQty int // siempre positivo; el signo lo da Type
	Note      string
	CreatedAt time.Time
}

// IsValidRecordType indica si t es import o export.
func IsValidRecordType(t string) bool {
	return t == RecordTypeImport || t == RecordTypeExport
}

// Delta devuelve el cambio con signo que el registro aplica al stock.
func (r *InventoryRecord) Delta() int {
	if r.Type == RecordTypeExport {
		return -r.ChangeQty
	}
	return r.ChangeQty
}
