package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/papeleria-api/internal/application/cart"
	"github.com/jhoicas/papeleria-api/internal/application/inventory"
	"github.com/jhoicas/papeleria-api/internal/application/order"
	"github.com/jhoicas/papeleria-api/internal/application/ports"
	"github.com/jhoicas/papeleria-api/internal/application/stock"
	"github.com/jhoicas/papeleria-api/internal/domain/repository"
	infrakafka "github.com/jhoicas/papeleria-api/internal/infrastructure/kafka"
	"github.com/jhoicas/papeleria-api/internal/infrastructure/memory"
	"github.com/jhoicas/papeleria-api/internal/infrastructure/metrics"
	"github.com/jhoicas/papeleria-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/papeleria-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/papeleria-api/internal/interfaces/http"
	"github.com/jhoicas/papeleria-api/pkg/config"
	"github.com/jhoicas/papeleria-api/pkg/logger"
)

// cartTTL vida de un carrito inactivo en Redis.
const cartTTL = 30 * 24 * time.Hour

// repos adaptadores de almacenamiento seleccionados por configuración.
type repos struct {
	product   repository.ProductRepository
	customer  repository.CustomerRepository
	cart      repository.CartRepository
	order     repository.OrderRepository
	record    repository.InventoryRecordRepository
	ledgerTx  inventory.TxRunner
	orderTx   order.TxRunner
	health    func(ctx context.Context) error
	closeFunc []func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Engine).
		Str("cart_store", cfg.Storage.CartStore).
		Msg("iniciando aplicación")

	ctx := context.Background()
	r, err := buildRepos(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer func() {
		for _, f := range r.closeFunc {
			f()
		}
	}()

	var m *metrics.Metrics
	if cfg.App.MetricsEnabled {
		m = metrics.New("papeleria")
	}

	var publisher ports.StockEventPublisher
	if cfg.Kafka.Enabled() {
		kp := infrakafka.NewStockEventPublisher(infrakafka.NewWriter(cfg.Kafka))
		defer func() {
			if err := kp.Close(); err != nil {
				log.Error().Err(err).Msg("cerrar writer de Kafka")
			}
		}()
		publisher = kp
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.StockTopic).Msg("eventos de stock hacia Kafka")
	} else {
		publisher = infrakafka.NewLogPublisher(log.Component("stock-events"))
	}
	if m != nil {
		publisher = m.InstrumentPublisher(publisher)
	}

	stockUC := stock.NewStockUseCase(r.product)
	ledgerUC := inventory.NewLedgerUseCase(r.ledgerTx, r.product, r.record, publisher, log.Component("inventory"))
	cartUC := cart.NewCartUseCase(r.cart, r.product, r.customer)
	orderUC := order.NewOrderUseCase(r.orderTx, r.order, r.product, r.customer, publisher, log.Component("orders"))

	swaggerFile := ""
	if cfg.App.SwaggerEnabled {
		swaggerFile = "./docs/swagger.json"
	}
	app := httpRouter.NewServer(httpRouter.ServerConfig{
		AppName:     cfg.App.Name,
		SwaggerFile: swaggerFile,
		Metrics:     m,
		HealthCheck: r.health,
	}, httpRouter.RouterDeps{
		StockUC:        stockUC,
		LedgerUC:       ledgerUC,
		CartUC:         cartUC,
		OrderUC:        orderUC,
		JWTSecret:      cfg.JWT.Secret,
		JWTIssuer:      cfg.JWT.Issuer,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		Log:            log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// buildRepos elige los adaptadores según STORAGE y CART_STORE (combinaciones ya validadas en config).
func buildRepos(ctx context.Context, cfg *config.Config, log *logger.Logger) (*repos, error) {
	r := &repos{}

	switch cfg.Storage.Engine {
	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		r.closeFunc = append(r.closeFunc, pool.Close)
		txRunner := postgres.NewTxRunner(pool)
		r.product = postgres.NewProductRepository(pool)
		r.customer = postgres.NewCustomerRepository(pool)
		r.order = postgres.NewOrderRepository(pool)
		r.record = postgres.NewInventoryRecordRepository(pool)
		r.ledgerTx, r.orderTx = txRunner, txRunner
		r.health = pingPool(pool)
		if cfg.Storage.CartStore == config.StoragePostgres {
			r.cart = postgres.NewCartRepository(pool)
		}
	default:
		store := memory.NewStore()
		if cfg.Storage.SeedDemo {
			memory.SeedDemo(store)
			log.Info().Msg("datos de ejemplo cargados en memoria")
		}
		txRunner := memory.NewTxRunner(store)
		r.product = memory.NewProductRepository(store)
		r.customer = memory.NewCustomerRepository(store)
		r.order = memory.NewOrderRepository(store)
		r.record = memory.NewInventoryRecordRepository(store)
		r.ledgerTx, r.orderTx = txRunner, txRunner
		if cfg.Storage.CartStore == config.StorageMemory {
			r.cart = memory.NewCartRepository(store)
		}
	}

	if cfg.Storage.CartStore == config.StorageRedis {
		client, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		r.closeFunc = append(r.closeFunc, func() { _ = client.Close() })
		r.cart = infraredis.NewCartRepository(client, cartTTL)
	}
	return r, nil
}

func pingPool(pool *pgxpool.Pool) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return pool.Ping(ctx)
	}
}
