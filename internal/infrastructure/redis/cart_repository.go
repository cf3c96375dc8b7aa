package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/papeleria-api/internal/domain/entity"
	"github.com/jhoicas/papeleria-api/internal/domain/repository"
	"github.com/jhoicas/papeleria-api/pkg/config"
	goredis "github.com/redis/go-redis/v9"
)

var _ repository.CartRepository = (*CartRepo)(nil)

const (
	fieldID        = "id"
	fieldCreatedAt = "created_at"
	fieldUpdatedAt = "updated_at"
	fieldItems     = "items"
)

// CartRepo guarda cada carrito en un hash cart:{userID}; la clave única garantiza un carrito por usuario.
// Las líneas van serializadas en un solo campo para conservar el orden de inserción.
type CartRepo struct {
	client goredis.UniversalClient
	prefix string
	ttl    time.Duration // 0 = sin expiración
}

// NewClient abre el cliente y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// NewCartRepository construye el adaptador.
func NewCartRepository(client goredis.UniversalClient, ttl time.Duration) *CartRepo {
	return &CartRepo{client: client, prefix: "cart:", ttl: ttl}
}

func (r *CartRepo) key(userID string) string { return r.prefix + "{" + userID + "}" }

// GetByUserID obtiene el carrito del usuario; nil si no existe.
func (r *CartRepo) GetByUserID(ctx context.Context, userID string) (*entity.Cart, error) {
	fields, err := r.client.HGetAll(ctx, r.key(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall cart: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	c := &entity.Cart{ID: fields[fieldID], UserID: userID, Items: []entity.CartItem{}}
	if c.CreatedAt, err = parseTime(fields[fieldCreatedAt]); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(fields[fieldUpdatedAt]); err != nil {
		return nil, err
	}
	if raw := fields[fieldItems]; raw != "" {
		var items []cartItemJSON
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return nil, fmt.Errorf("decode cart items: %w", err)
		}
		for _, it := range items {
			c.Items = append(c.Items, entity.CartItem{ProductID: it.ProductID, Quantity: it.Quantity})
		}
	}
	return c, nil
}

// Save reemplaza el hash completo en una transacción MULTI/EXEC.
func (r *CartRepo) Save(ctx context.Context, c *entity.Cart) error {
	items := make([]cartItemJSON, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, cartItemJSON{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart items: %w", err)
	}
	key := r.key(c.UserID)
	_, err = r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			fieldID, c.ID,
			fieldCreatedAt, c.CreatedAt.UTC().Format(time.RFC3339Nano),
			fieldUpdatedAt, c.UpdatedAt.UTC().Format(time.RFC3339Nano),
			fieldItems, string(raw),
		)
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save cart: %w", err)
	}
	return nil
}

type cartItemJSON struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, errors.Join(errors.New("fecha de carrito inválida"), err)
	}
	return t, nil
}
