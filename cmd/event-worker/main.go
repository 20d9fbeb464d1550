// Package main 事件落库 worker：消费情绪记录与推荐流事件并写入 Postgres
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"mudi-match-api/internal/config"
	"mudi-match-api/internal/infrastructure/messaging"
	"mudi-match-api/internal/wire"
	"mudi-match-api/pkg/logger"
	"mudi-match-api/pkg/tracer"
)

const (
	monitorInterval   = 30 * time.Second
	dlqAlertThreshold = 100
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: "event-worker",
		Environment: cfg.App.Env,
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init tracer", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	layer, cleanup, err := wire.InitializeWorker(ctx, cfg)
	if err != nil {
		logger.Fatal(ctx, "failed to initialize worker", err)
	}
	defer cleanup()

	rs := cfg.Messaging.RedisStream
	group := messaging.ConsumerGroupRecorder.WithPrefix(rs.ConsumerGroupPrefix)
	name := hostnameConsumerName()

	var consumers []*messaging.Consumer
	for _, stream := range []messaging.Stream{messaging.StreamMoodEntries, messaging.StreamFeedEvents} {
		c := messaging.NewConsumer(layer.RedisClient.Redis(), messaging.ConsumerConfig{
			Stream:        stream,
			Group:         group,
			ConsumerName:  name,
			BlockTimeout:  rs.BlockTimeout,
			ClaimInterval: rs.ClaimInterval,
			RetryLimit:    rs.RetryLimit,
			Backoff:       messaging.BackoffFromConfig(rs.RetryBackoff),
		})
		layer.Recorder.Register(c)
		if err := c.Start(ctx); err != nil {
			logger.Fatal(ctx, "failed to start consumer", err, "stream", string(stream))
		}
		go c.Monitor(ctx, monitorInterval, dlqAlertThreshold)
		consumers = append(consumers, c)
	}

	logger.Info(ctx, "event-worker started", "consumer", name, "group", string(group))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "shutting down event-worker")
	for _, c := range consumers {
		c.Stop()
	}
	cancel()
}

func hostnameConsumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}
