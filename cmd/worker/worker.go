package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"StudyGate/config"
	"StudyGate/internal/queue"
	"StudyGate/internal/service"
	"StudyGate/pkg/dispatch"
	"StudyGate/pkg/logger"
	"StudyGate/pkg/snowflake"
	"StudyGate/storage"
)

func main() {

	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer storage.Close()

	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake", zap.Error(err))
	}

	// 消费者处理工单到期时需要向外部调度工作流分发升级
	if err := dispatch.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize dispatch client", zap.Error(err))
	}

	// 注入工单处理服务, 所有消费者都依赖这一环节
	queue.SetInterventionHandler(service.Intervention())

	logger.Logger.Info("Worker service starting",
		zap.String("service", "studygate-worker"),
		zap.String("environment", config.Cfg.Environment),
	)

	// 启动所有的消费者部分
	queue.StartAllConsumers(ctx)

	logger.Logger.Info("Worker service shutting down gracefully")
}
