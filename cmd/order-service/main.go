package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"ordersvc/internal/config"
	"ordersvc/internal/httpx"
	ord "ordersvc/internal/order"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("configuration",
		zap.String("addr", cfg.OrderSvcAddr),
		zap.String("catalog", cfg.CatalogBaseURL),
		zap.String("nats", cfg.NATSUrl),
		zap.String("currency", cfg.PaymentCurrency))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("postgres", zap.Error(err))
	}
	defer db.Close()

	payments, err := ord.NewPaymentsNATS(cfg.NATSUrl, cfg.RPCTimeout, logger)
	if err != nil {
		logger.Fatal("nats", zap.Error(err))
	}
	defer payments.Close()

	repo := ord.NewPGRepo(db)
	catalog := ord.NewCatalogHTTP(cfg.CatalogBaseURL)
	svc := ord.NewService(repo, catalog, payments, logger, cfg.PaymentCurrency)

	sub, err := payments.SubscribePaid(func(ctx context.Context, evt ord.PaidEvent) error {
		_, err := svc.MarkPaid(ctx, evt)
		return err
	})
	if err != nil {
		logger.Fatal("subscribe paid events", zap.Error(err))
	}
	defer func() { _ = sub.Unsubscribe() }()

	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(logger))

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.POST("/orders", createOrderHandler(svc))
	r.GET("/orders", listOrdersHandler(svc))
	r.GET("/orders/:id", getOrderHandler(svc))
	r.PUT("/orders/:id/status", updateOrderStatusHandler(svc))
	r.POST("/orders/:id/payment-session", createPaymentSessionHandler(svc))

	srv := &http.Server{Addr: cfg.OrderSvcAddr, Handler: r}
	go func() {
		logger.Info("order-service listening", zap.String("addr", cfg.OrderSvcAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
