package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"StudyGate/config"
	"StudyGate/internal/schedule"
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

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Logger.Info("Scheduler received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage for scheduler", zap.Error(err))
	}
	defer storage.Close()

	// 考虑与 worker 和 server 作区分
	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake for scheduler", zap.Error(err))
	}

	// 补偿扫描命中提醒档时需要直接向外部调度工作流分发
	if err := dispatch.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize dispatch client for scheduler", zap.Error(err))
	}

	logger.Logger.Info("Scheduler service starting",
		zap.String("service", "studygate-scheduler"),
		zap.String("environment", config.Cfg.Environment),
	)

	// 延迟消息丢失时的兜底：周期性扫描超期未处理的工单
	schedule.GetSweeper().Run(ctx)

	logger.Logger.Info("Scheduler service shutting down gracefully")
}
