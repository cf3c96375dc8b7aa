package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, StorageMemory, cfg.Storage.Engine)
	assert.Equal(t, StorageMemory, cfg.Storage.CartStore, "el carrito sigue al motor principal")
	assert.Equal(t, 5*time.Second, cfg.HTTP.RequestTimeout)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.False(t, cfg.JWT.Enabled())
	assert.False(t, cfg.Kafka.Enabled())
}

func TestFromViper_PostgresConRedis(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE", "Postgres")
	v.Set("CART_STORE", "redis")
	v.Set("KAFKA_BROKERS", "k1:9092, k2:9092,")
	v.Set("HTTP_REQUEST_TIMEOUT_MS", "1500")
	v.Set("JWT_SECRET", "s3cr3t")

	cfg, err := FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, StoragePostgres, cfg.Storage.Engine)
	assert.Equal(t, StorageRedis, cfg.Storage.CartStore)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 1500*time.Millisecond, cfg.HTTP.RequestTimeout)
	assert.True(t, cfg.JWT.Enabled())
}

func TestFromViper_CombinacionesInvalidas(t *testing.T) {
	cases := map[string]map[string]string{
		"motor desconocido":       {"STORAGE": "mongo"},
		"carrito postgres sin db": {"STORAGE": "memory", "CART_STORE": "postgres"},
		"carrito memoria con db":  {"STORAGE": "postgres", "CART_STORE": "memory"},
		"timeout cero":            {"HTTP_REQUEST_TIMEOUT_MS": "0"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			v := viper.New()
			for k, val := range env {
				v.Set(k, val)
			}
			_, err := FromViper(v)
			assert.Error(t, err)
		})
	}
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/word", DBName: "papeleria", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/papeleria?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}
