package kafka

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/papeleria-api/internal/domain/entity"
)

type fakeWriter struct {
	msgs []kafkago.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestEncodeMessages_ClaveYHeader(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	msgs, err := EncodeMessages([]entity.StockEvent{{
		ProductID: "p-1", Delta: -3, NewStock: 7, Cause: entity.StockCauseOrderCreated, Reference: "o-1", OccurredAt: at,
	}})
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	m := msgs[0]
	assert.Equal(t, []byte("p-1"), m.Key)
	assert.Equal(t, at, m.Time)
	require.Len(t, m.Headers, 1)
	assert.Equal(t, "cause", m.Headers[0].Key)
	assert.Equal(t, []byte("order_created"), m.Headers[0].Value)

	var body map[string]any
	require.NoError(t, json.Unmarshal(m.Value, &body))
	assert.Equal(t, "p-1", body["product_id"])
	assert.EqualValues(t, -3, body["delta"])
	assert.EqualValues(t, 7, body["new_stock"])
	assert.Equal(t, "o-1", body["reference"])
}

func TestStockEventPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := NewStockEventPublisher(w)

	require.NoError(t, p.Publish(context.Background()))
	assert.Empty(t, w.msgs, "sin eventos no se escribe nada")

	err := p.Publish(context.Background(),
		entity.StockEvent{ProductID: "p-1", Delta: 2},
		entity.StockEvent{ProductID: "p-2", Delta: -1},
	)
	require.NoError(t, err)
	assert.Len(t, w.msgs, 2)
}

func TestStockEventPublisher_ErrorDelWriter(t *testing.T) {
	boom := errors.New("broker caído")
	p := NewStockEventPublisher(&fakeWriter{err: boom})

	err := p.Publish(context.Background(), entity.StockEvent{ProductID: "p-1"})
	assert.ErrorIs(t, err, boom)
}

func TestLogPublisher_RegistraEventos(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(zerolog.New(&buf))

	require.NoError(t, p.Publish(context.Background(), entity.StockEvent{ProductID: "p-9", Cause: entity.StockCauseLedgerImport}))
	assert.Contains(t, buf.String(), `"product_id":"p-9"`)
	assert.Contains(t, buf.String(), `"cause":"ledger_import"`)
}
