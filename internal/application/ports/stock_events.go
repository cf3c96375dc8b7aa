package ports

import (
	"context"

	"github.com/jhoicas/papeleria-api/internal/domain/entity"
)

// StockEventPublisher define el puerto de salida para difundir mutaciones de stock ya confirmadas.
// Cualquier adaptador (Kafka, log, mock) debe implementar esta interfaz.
// Se invoca después del commit: un fallo al publicar no revierte la operación, solo se registra.
type StockEventPublisher interface {
	Publish(ctx context.Context, events ...entity.StockEvent) error
}

// NopStockEventPublisher descarta los eventos (tests y entornos sin broker).
type NopStockEventPublisher struct{}

// Publish no hace nada.
func (NopStockEventPublisher) Publish(context.Context, ...entity.StockEvent) error { return nil }
