package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/papeleria-api/internal/domain/entity"
)

func newTestRepo(t *testing.T, ttl time.Duration) (*CartRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCartRepository(client, ttl), mr
}

func TestCartRepo_GetSinCarritoDevuelveNil(t *testing.T) {
	repo, _ := newTestRepo(t, 0)

	c, err := repo.GetByUserID(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestCartRepo_SaveYGetConservaOrden(t *testing.T) {
	repo, mr := newTestRepo(t, 0)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	c := &entity.Cart{ID: "c-1", UserID: "u-1", CreatedAt: now, UpdatedAt: now}
	c.AddItem("p-2", 1)
	c.AddItem("p-1", 2)
	c.AddItem("p-2", 3)
	require.NoError(t, repo.Save(ctx, c))
	assert.True(t, mr.Exists("cart:{u-1}"))

	got, err := repo.GetByUserID(ctx, "u-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "c-1", got.ID)
	assert.Equal(t, now, got.CreatedAt)
	assert.Equal(t, []entity.CartItem{{ProductID: "p-2", Quantity: 4}, {ProductID: "p-1", Quantity: 2}}, got.Items)
}

func TestCartRepo_SaveReemplazaLineas(t *testing.T) {
	repo, _ := newTestRepo(t, 0)
	ctx := context.Background()

	c := &entity.Cart{ID: "c-1", UserID: "u-1"}
	c.AddItem("p-1", 2)
	require.NoError(t, repo.Save(ctx, c))

	c.Clear()
	require.NoError(t, repo.Save(ctx, c))

	got, err := repo.GetByUserID(ctx, "u-1")
	require.NoError(t, err)
	require.NotNil(t, got, "un carrito vacío sigue existiendo")
	assert.Empty(t, got.Items)
}

func TestCartRepo_TTL(t *testing.T) {
	repo, mr := newTestRepo(t, time.Hour)
	c := &entity.Cart{ID: "c-1", UserID: "u-1"}
	c.AddItem("p-1", 1)
	require.NoError(t, repo.Save(context.Background(), c))

	assert.Equal(t, time.Hour, mr.TTL("cart:{u-1}"))
	mr.FastForward(2 * time.Hour)

	got, err := repo.GetByUserID(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
