package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"product-api/internal/client"
	"product-api/internal/config"
	"product-api/internal/logger"
	"product-api/internal/tracer"
	"product-api/internal/version"
)

func main() {
	globalCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Instance()
	cfg := config.LoadClient()

	logger.Info(globalCtx, "product-api-http-client",
		slog.String("version", version.Version),
		slog.String("commit", version.Commit),
		slog.String("buildTime", version.BuildTime),
	)

	shutdown, err := tracer.Setup(globalCtx, tracer.Options{AppName: "product-api-http-client", Env: "development"})
	if err == nil {
		defer func() { _ = shutdown(context.Background()) }()
	}

	c := client.NewProductClient(cfg.TargetURL, cfg.APIKey, cfg.Timeout)

	logger.Info(globalCtx, "HTTP client started",
		slog.String("target", cfg.TargetURL),
		slog.Duration("delay", cfg.Delay),
	)

	ticker := time.NewTicker(cfg.Delay)
	defer ticker.Stop()

	for {
		select {
		case <-globalCtx.Done():
			logger.Info(globalCtx, "Received shutdown signal, exiting")
			return
		case <-ticker.C:
			roundTrip(globalCtx, c)
		}
	}
}

// roundTrip exercises every product operation once.
func roundTrip(ctx context.Context, c *client.ProductClient) {
	products, pagination, err := c.List(ctx, client.ListParams{Limit: 5})
	if err != nil {
		logger.Error(ctx, "List failed", slog.String("error", err.Error()))
		return
	}
	logger.Info(ctx, "Received products",
		slog.Int("count", len(products)),
		slog.Int("total", pagination.TotalItems),
	)

	stats, err := c.Stats(ctx)
	if err != nil {
		logger.Error(ctx, "Stats failed", slog.String("error", err.Error()))
		return
	}
	logger.Info(ctx, "Received stats", slog.Int("total", stats.TotalProducts), slog.Int64("averagePrice", stats.AveragePrice))

	name, desc, category := "Smoke test item", "Created by the http client", "smoke"
	price, inStock := 1.0, true
	created, err := c.Create(ctx, client.ProductInput{
		Name:        &name,
		Description: &desc,
		Price:       &price,
		Category:    &category,
		InStock:     &inStock,
	})
	if err != nil {
		logger.Error(ctx, "Create failed", slog.String("error", err.Error()))
		return
	}

	price = 2
	if _, err := c.Update(ctx, created.ID, client.ProductInput{Price: &price}); err != nil {
		logger.Error(ctx, "Update failed", slog.String("error", err.Error()))
	}
	if _, err := c.Delete(ctx, created.ID); err != nil {
		logger.Error(ctx, "Delete failed", slog.String("error", err.Error()))
		return
	}
	logger.Info(ctx, "Round trip complete", slog.String("id", created.ID))
}
