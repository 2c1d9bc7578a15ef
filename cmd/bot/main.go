package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vendebot/internal/config"
	"vendebot/internal/convstore"
	"vendebot/internal/db"
	"vendebot/internal/engine"
	"vendebot/internal/httpserver"
	"vendebot/internal/messaging"
	"vendebot/internal/reasoning"
	businessrepo "vendebot/internal/repository/business"
	couponrepo "vendebot/internal/repository/coupon"
	courierrepo "vendebot/internal/repository/courier"
	customerrepo "vendebot/internal/repository/customer"
	orderrepo "vendebot/internal/repository/order"
	productrepo "vendebot/internal/repository/product"
	promotionrepo "vendebot/internal/repository/promotion"
	"vendebot/internal/scheduler"
	"vendebot/internal/vision"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Fatalf("load time zone %q: %v", cfg.Timezone, err)
	}

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	businessRepo := businessrepo.NewPostgres(dbpool, logger)
	customerRepo := customerrepo.NewPostgres(dbpool, logger)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	couponRepo := couponrepo.NewPostgres(dbpool, logger)
	courierRepo := courierrepo.NewPostgres(dbpool, logger)
	productRepo := productrepo.NewPostgres(dbpool, logger)
	promotionRepo := promotionrepo.NewPostgres(dbpool, logger)

	reasoningModel, err := reasoning.NewGemini(ctx, cfg.GeminiAPIKey, cfg.ReasoningModel)
	if err != nil {
		logger.Fatalf("init reasoning model: %v", err)
	}
	visionModel, err := vision.NewGemini(ctx, cfg.GeminiAPIKey, cfg.VisionModel)
	if err != nil {
		logger.Fatalf("init vision model: %v", err)
	}

	wa := messaging.NewClient(cfg.GraphAPIBase, cfg.WhatsAppToken, cfg.PhoneNumberID, logger)
	store := convstore.New(cfg.IdleEviction)

	bot := engine.New(engine.Deps{
		Store:      store,
		Businesses: businessRepo,
		Customers:  customerRepo,
		Orders:     orderRepo,
		Coupons:    couponRepo,
		Couriers:   courierRepo,
		Products:   productRepo,
		Promotions: promotionRepo,
		Adapter:    reasoning.New(reasoningModel),
		Verifier:   vision.New(visionModel),
		Sender:     wa,
		Media:      wa,
	}, engine.Config{
		PointsPerDollar:  cfg.PointsPerDollar,
		RedeemCostPoints: cfg.RedeemCostPoints,
		RedeemValueCents: cfg.RedeemValueCents,
		OpenHour:         cfg.OpenHour,
		CloseHour:        cfg.CloseHour,
	}, loc, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Handler:       bot,
		VerifyToken:   cfg.VerifyToken,
		Businesses:    businessRepo,
		Customers:     customerRepo,
		Products:      productRepo,
		Coupons:       couponRepo,
		Couriers:      courierRepo,
		Promotions:    promotionRepo,
		Sender:        wa,
		BulkSendDelay: cfg.BulkSendDelay,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	jobsCtx, stopJobs := context.WithCancel(ctx)
	defer stopJobs()
	jobs := scheduler.New(scheduler.Deps{
		Businesses: businessRepo,
		Customers:  customerRepo,
		Orders:     orderRepo,
		Coupons:    couponRepo,
		Sender:     wa,
		Store:      store,
	}, scheduler.Config{
		PaymentReminderIdle:     cfg.PaymentReminderIdle,
		PaymentReminderInterval: cfg.PaymentReminderInterval,
		DeliveryReminderEvery:   cfg.DeliveryReminderEvery,
		FollowupEvery:           cfg.FollowupEvery,
		DailySummaryHour:        cfg.DailySummaryHour,
		ReengageHour:            cfg.ReengageHour,
		ReengageAfterDays:       cfg.ReengageAfterDays,
		OpenHour:                cfg.OpenHour,
		CloseHour:               cfg.CloseHour,
	}, loc, logger)
	go jobs.Run(jobsCtx)

	stopSweeper := make(chan struct{})
	go store.RunSweeper(cfg.SweepInterval, stopSweeper)

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	stopJobs()
	close(stopSweeper)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
