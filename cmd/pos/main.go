package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/middleware"

	"github.com/Gabriel44svg/Dopple-bar/internal/mongo"
	"github.com/Gabriel44svg/Dopple-bar/internal/order"
	"github.com/Gabriel44svg/Dopple-bar/pkg"
)

const (
	appNamespace = "POS"
	appName      = "pos"
	appVersion   = "0.1.0"
)

func main() {
	config, err := aqm.LoadConfig(appNamespace, os.Args[1:])
	if err != nil {
		log.Fatalf("%s(%s) cannot setup: %v", appName, appVersion, err)
	}

	logLevel, _ := config.GetString("log.level")
	logger := aqm.NewLogger(logLevel)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	baseRepo := mongo.NewBaseRepo(config, logger)
	err = baseRepo.Start(ctx)
	if err != nil {
		log.Fatalf("%s(%s) cannot start base repository: %v", appName, appVersion, err)
	}

	db := baseRepo.GetDatabase()
	if db == nil {
		log.Fatalf("%s(%s) cannot initialize repository database: %v", appName, appVersion, errors.New("repository database is nil"))
	}

	orderRepo := mongo.NewOrderRepo(db)
	itemRepo := mongo.NewLineItemRepo(db)
	promoRepo := mongo.NewPromotionRepo(db)
	couponRepo := mongo.NewCouponRepo(db)
	reasonRepo := mongo.NewReasonRepo(db)
	paymentRepo := mongo.NewPaymentRepo(db)
	policyRepo := mongo.NewPolicyRepo(db)

	repos := order.Repos{
		OrderRepo:     orderRepo,
		LineItemRepo:  itemRepo,
		PromotionRepo: promoRepo,
		CouponRepo:    couponRepo,
		ReasonRepo:    reasonRepo,
		PaymentRepo:   paymentRepo,
	}

	natsURL := config.GetStringOrDef("nats.url", "nats://localhost:4222")

	pub, err := pkg.NewNATSPublisher(natsURL)
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS publisher: %v", appName, appVersion, err)
	}

	sub, err := pkg.NewNATSSubscriber(natsURL, logger)
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS subscriber: %v", appName, appVersion, err)
	}

	kitchenSub := order.NewKitchenSubscriber(sub, orderRepo, itemRepo, pub, logger)

	publisherLifecycle := aqm.LifecycleHooks{
		OnStop: func(context.Context) error {
			return pub.Close()
		},
	}

	subLifecycle := aqm.LifecycleHooks{
		OnStop: func(context.Context) error {
			return sub.Close()
		},
	}

	seedHooks := aqm.LifecycleHooks{
		OnStart: func(ctx context.Context) error {
			return order.Seed(ctx, reasonRepo, policyRepo, logger)
		},
	}

	hd := order.HandlerDeps{
		Repos:     repos,
		Policies:  policyRepo,
		Publisher: pub,
	}

	handler := order.NewHandler(hd, config, logger)

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger:      logger,
		DisableCORS: true,
	})
	stack = append(stack, middleware.InternalOnly())

	options := []aqm.Option{
		aqm.WithConfig(config),
		aqm.WithLogger(logger),
		aqm.WithHTTPMiddleware(stack...),
		aqm.WithHTTPServerModules("web.port", handler),
		aqm.WithLifecycle(
			aqm.LifecycleHooks{OnStop: baseRepo.Stop},
			seedHooks,
			kitchenSub,
			publisherLifecycle,
			subLifecycle,
		),
		aqm.WithHealthChecks(appName),
	}

	ms := aqm.NewMicro(options...)
	logger.Infof("Starting %s(%s)", appName, appVersion)

	err = ms.Run(ctx)
	if err != nil {
		_ = baseRepo.Stop(context.Background())
		log.Fatalf("%s(%s) stopped: %v", appName, appVersion, err)
	}

	logger.Infof("%s(%s) stopped", appName, appVersion)
}
