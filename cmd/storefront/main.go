package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fjod/storefront/internal/admin"
	"github.com/fjod/storefront/internal/backend"
	"github.com/fjod/storefront/internal/cart"
	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/checkout"
	"github.com/fjod/storefront/internal/config"
	"github.com/fjod/storefront/internal/events"
	h "github.com/fjod/storefront/internal/http"
	"github.com/fjod/storefront/internal/logger"
	"github.com/fjod/storefront/internal/orders"
	"github.com/fjod/storefront/internal/session"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	store, closeStore, err := newSessionStore(cfg)
	if err != nil {
		log.Error("failed to set up session store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.EventsTopic, cfg.KafkaBrokers...)
		defer kp.Close()
		publisher = kp
		log.Info("publishing events", "topic", cfg.EventsTopic, "brokers", cfg.KafkaBrokers)
	}

	client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout, backend.WithLogger(log))

	cookie := h.CookieConfig{TTL: cfg.SessionTTL, Secure: cfg.SecureCookie}
	cartSvc := cart.NewService(client)
	ordersSvc := orders.NewService(client, publisher, log)
	handlers := h.Handlers{
		Auth:     h.NewAuthHandler(client, store, cookie, cfg.RequestTimeout, log),
		Catalog:  h.NewCatalogHandler(catalog.NewService(client), store, cfg.RequestTimeout, log),
		Cart:     h.NewCartHandler(cartSvc, store, cfg.RequestTimeout, log),
		Checkout: h.NewCheckoutHandler(checkout.NewService(client, publisher, log), cartSvc, store, cfg.RequestTimeout, log),
		Orders:   h.NewOrdersHandler(ordersSvc, store, cfg.RequestTimeout, log),
		Admin:    h.NewAdminHandler(admin.NewService(client, ordersSvc, log), store, cfg.RequestTimeout, log),
	}

	router := h.NewRouter(handlers, store, h.RouterConfig{
		RequestTimeout:     cfg.RequestTimeout,
		Cookie:             cookie,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	}, log)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("storefront gateway starting", "port", cfg.HTTPPort, "backend", cfg.BackendURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}

func newSessionStore(cfg *config.Config) (session.Store, func(), error) {
	switch cfg.SessionStore {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, err
		}
		return session.NewRedisStore(client, cfg.SessionTTL), func() { client.Close() }, nil
	case "memory", "":
		s := session.NewMemoryStore(cfg.SessionTTL)
		return s, func() { s.Close() }, nil
	default:
		return nil, nil, errors.New("unknown SESSION_STORE " + cfg.SessionStore)
	}
}
