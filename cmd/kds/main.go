package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/middleware"

	"github.com/Gabriel44svg/Dopple-bar/internal/chat"
	"github.com/Gabriel44svg/Dopple-bar/internal/kitchen"
	"github.com/Gabriel44svg/Dopple-bar/pkg"
)

const (
	appNamespace = "KDS"
	appName      = "kds"
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

	posURL := config.GetStringOrDef("services.pos.url", "http://localhost:8080")
	posSource := kitchen.NewPOSSource(posURL)

	cache := kitchen.NewTicketCache(logger)

	pollSeconds := config.GetStringOrDef("poll.interval", "5")
	interval, err := time.ParseDuration(pollSeconds + "s")
	if err != nil {
		interval = 0
	}
	poller := kitchen.NewPoller(posSource, cache, interval, logger)

	natsURL := config.GetStringOrDef("nats.url", "nats://localhost:4222")

	pub, err := pkg.NewNATSPublisher(natsURL)
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS publisher: %v", appName, appVersion, err)
	}

	sub, err := pkg.NewNATSSubscriber(natsURL, logger)
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS subscriber: %v", appName, appVersion, err)
	}

	orderSub := kitchen.NewSubscriber(sub, cache, logger)

	chatRoom := config.GetStringOrDef("chat.room", "bar")
	chatChannel := chat.NewChannel(natsURL, chatRoom, logger)

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

	kdsHandler := kitchen.NewHandler(cache, posSource, pub, config, logger)
	chatHandler := chat.NewHandler(chatChannel, logger)

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger:      logger,
		DisableCORS: true,
	})
	stack = append(stack, middleware.InternalOnly())

	options := []aqm.Option{
		aqm.WithConfig(config),
		aqm.WithLogger(logger),
		aqm.WithHTTPMiddleware(stack...),
		aqm.WithHTTPServerModules("web.port", kdsHandler, chatHandler),
		aqm.WithLifecycle(
			poller,
			orderSub,
			chatChannel,
			publisherLifecycle,
			subLifecycle,
		),
		aqm.WithHealthChecks(appName),
	}

	ms := aqm.NewMicro(options...)
	logger.Infof("Starting %s(%s)", appName, appVersion)

	if err := ms.Run(ctx); err != nil {
		log.Fatalf("%s(%s) stopped: %v", appName, appVersion, err)
	}

	logger.Infof("%s(%s) stopped", appName, appVersion)
}
