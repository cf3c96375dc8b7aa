package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/papeleria-api/internal/domain"
	"github.com/jhoicas/papeleria-api/internal/domain/entity"
	"github.com/jhoicas/papeleria-api/internal/domain/repository"
)

func TestDecrementStock_Concurrente(t *testing.T) {
	s := NewStore()
	s.PutProduct(&entity.Product{ID: "p-1", Stock: 50})
	repo := NewProductRepository(s)

	var (
		wg  sync.WaitGroup
		ok  atomic.Int32
		low atomic.Int32
	)
	for i := 0; i < 120; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.DecrementStock(context.Background(), "p-1", 1)
			switch {
			case err == nil:
				ok.Add(1)
			case assert.ErrorIs(t, err, domain.ErrInsufficientStock):
				low.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 50, ok.Load())
	assert.EqualValues(t, 70, low.Load())
	p, err := repo.GetByID(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Zero(t, p.Stock)
}

func TestProductRepo_CopiasAisladas(t *testing.T) {
	s := NewStore()
	s.PutProduct(&entity.Product{ID: "p-1", Name: "Cuaderno", Stock: 5})
	repo := NewProductRepository(s)
	ctx := context.Background()

	p, err := repo.GetByID(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ProductStatusActive, p.Status)
	p.Stock = 999

	again, err := repo.GetByID(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, 5, again.Stock)

	missing, err := repo.GetByID(ctx, "p-x")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = repo.IncrementStock(ctx, "p-x", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.DecrementStock(ctx, "p-x", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrderRepo_FiltrosYPaginacion(t *testing.T) {
	s := NewStore()
	repo := NewOrderRepository(s)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	seed := []struct {
		id, user, status, payment string
	}{
		{"o-1", "u-1", entity.OrderStatusPending, entity.PaymentStatusPending},
		{"o-2", "u-1", entity.OrderStatusShipped, entity.PaymentStatusPaid},
		{"o-3", "u-2", entity.OrderStatusPending, entity.PaymentStatusPaid},
		{"o-4", "u-1", entity.OrderStatusPending, entity.PaymentStatusPending},
	}
	for i, o := range seed {
		require.NoError(t, repo.Create(ctx, &entity.Order{
			ID: o.id, UserID: o.user, Status: o.status, PaymentStatus: o.payment,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	assert.ErrorIs(t, repo.Create(ctx, &entity.Order{ID: "o-1"}), domain.ErrConflict)

	ids := func(list []*entity.Order) []string {
		out := make([]string, 0, len(list))
		for _, o := range list {
			out = append(out, o.ID)
		}
		return out
	}

	list, total, err := repo.List(ctx, repository.OrderFilter{})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Equal(t, []string{"o-4", "o-3", "o-2", "o-1"}, ids(list), "más recientes primero")

	list, total, err = repo.List(ctx, repository.OrderFilter{UserID: "u-1", Status: entity.OrderStatusPending})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, []string{"o-4", "o-1"}, ids(list))

	list, total, err = repo.List(ctx, repository.OrderFilter{PaymentStatus: entity.PaymentStatusPaid, Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total, "el total ignora la paginación")
	assert.Equal(t, []string{"o-2"}, ids(list))

	list, _, err = repo.List(ctx, repository.OrderFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestOrderRepo_CompareAndSet(t *testing.T) {
	s := NewStore()
	repo := NewOrderRepository(s)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &entity.Order{ID: "o-1", Status: entity.OrderStatusPending}))

	changed, err := repo.UpdateStatus(ctx, "o-1", entity.OrderStatusProcessing, entity.OrderStatusShipped)
	require.NoError(t, err)
	assert.False(t, changed, "el estado leído no coincide")

	changed, err = repo.UpdateStatus(ctx, "o-1", entity.OrderStatusPending, entity.OrderStatusCancelled)
	require.NoError(t, err)
	assert.True(t, changed)

	deleted, err := repo.DeleteIfStatus(ctx, "o-1", entity.OrderStatusPending)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = repo.DeleteIfStatus(ctx, "o-1", entity.OrderStatusCancelled)
	require.NoError(t, err)
	assert.True(t, deleted)

	got, err := repo.GetByID(ctx, "o-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTxRunner_ContextoCancelado(t *testing.T) {
	tx := NewTxRunner(NewStore())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := tx.RunOrder(ctx, func(repository.OrderRepository, repository.ProductRepository) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestSeedDemo(t *testing.T) {
	s := NewStore()
	SeedDemo(s)

	list, err := NewProductRepository(s).List(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Len(t, list, 5)

	ok, err := NewCustomerRepository(s).Exists(context.Background(), "u-demo-1")
	require.NoError(t, err)
	assert.True(t, ok)
}
