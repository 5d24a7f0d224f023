package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/kaikyoudou/storefront/internal/catalog"
	"github.com/kaikyoudou/storefront/internal/domain"
	"github.com/kaikyoudou/storefront/internal/repository"
	"github.com/kaikyoudou/storefront/internal/service"
	"github.com/kaikyoudou/storefront/pkg/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	logger, err := config.NewLogger(config.LoggerConfig{
		Level: cfg.Logger.Level,
		Env:   cfg.Env,
	})
	if err != nil {
		log.Fatalf("error creating logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("storefront started", zap.String("env", cfg.Env))

	cat, err := catalog.Load(ctx, catalog.LoaderConfig{
		Source:       cfg.Catalog.Source,
		FetchTimeout: cfg.Catalog.FetchTimeout,
		MaxRetries:   cfg.Catalog.MaxRetries,
	}, logger)
	if err != nil {
		// No silent empty catalog: the store cannot run without one.
		log.Fatalf("catalog unavailable: %v", err)
	}

	var store repository.CartStore
	switch cfg.Storage.Driver {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr: cfg.Storage.Redis.Addr,
		})
		defer rdb.Close()
		cartKey := cfg.Storage.CartKey
		if cartKey == "" {
			cartKey = repository.DefaultCartKey
		}
		store = repository.NewRedisStore(rdb, cartKey, logger)
	case "file":
		store = repository.NewFileStore(cfg.Storage.Path, logger)
	default:
		store = repository.NewMemoryStore()
	}

	shipping := domain.ShippingPolicy{
		FreeThreshold: cfg.Shipping.FreeThreshold,
		FlatFee:       cfg.Shipping.FlatFee,
	}

	cart := service.NewCartService(cat, store, shipping, logger)
	cart.Subscribe(func(count int64) {
		logger.Debug("cart changed", zap.Int64("items", count))
	})

	gateway := &service.SimulatedGateway{SettleDelay: cfg.Payment.SettleDelay}
	checkout := service.NewCheckoutService(cart, gateway, logger)

	if err := runDemo(ctx, cat, cart, checkout, cfg.Catalog.RelatedLimit); err != nil {
		logger.Error("demo session failed", zap.Error(err))
	}
}

// runDemo walks one full shopping session against the real services:
// browse, fill the cart, check out with the simulated gateway.
func runDemo(
	ctx context.Context,
	cat *catalog.Catalog,
	cart service.CartService,
	checkout service.CheckoutService,
	relatedLimit int,
) error {
	fmt.Println("== 海峡堂 — せきまる公式グッズストア ==")
	for _, p := range cat.List() {
		fmt.Printf("  [%s] %s ¥%d (在庫 %d)\n", p.ID, p.Name, p.Price, p.Stock)
	}

	first, err := cat.FindByID("1")
	if err != nil {
		return err
	}
	fmt.Printf("\nよく一緒に購入されている商品 (%s):\n", first.Name)
	for _, related := range cat.Related(first, relatedLimit) {
		fmt.Printf("  %s ¥%d\n", related.Name, related.Price)
	}

	if err := cart.AddItem(ctx, "1", 2); err != nil {
		return err
	}
	if err := cart.AddItem(ctx, "6", 1); err != nil {
		return err
	}
	if err := cart.SetQuantity(ctx, "1", 3); err != nil {
		return err
	}

	summary := cart.Summary()
	fmt.Printf("\n小計 ¥%d / 送料 ¥%d / 合計 ¥%d (%d点)\n",
		summary.Subtotal, summary.ShippingFee, summary.Total, cart.TotalItemCount())

	stepDone := make(chan domain.CheckoutStep, 4)
	checkout.OnStepChange(func(step domain.CheckoutStep) {
		stepDone <- step
	})

	err = checkout.SubmitInfo(domain.CheckoutDraft{
		Name:       "山田 太郎",
		Email:      "taro@example.com",
		Phone:      "090-1234-5678",
		PostalCode: "750-0000",
		Prefecture: "山口県",
		City:       "下関市",
		Address:    "1-2-3",
	})
	if err != nil {
		return err
	}

	if err := checkout.SubmitPayment(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			checkout.Close()
			return ctx.Err()
		case step := <-stepDone:
			if step != domain.StepComplete {
				continue
			}
			receipt, err := checkout.Finish(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("\nご注文ありがとうございました。注文番号: %s (合計 ¥%d)\n",
				receipt.OrderNumber, receipt.Summary.Total)
			return nil
		}
	}
}
