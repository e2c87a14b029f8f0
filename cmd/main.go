package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"gitlab.com/interp-bridge.net/internal/adapter/redis/runtimeport"
	"gitlab.com/interp-bridge.net/internal/bridge"
	"gitlab.com/interp-bridge.net/internal/config"
	"gitlab.com/interp-bridge.net/internal/core/ports/primary"
	"gitlab.com/interp-bridge.net/internal/core/services/bridgesvc"
	"gitlab.com/interp-bridge.net/internal/gateway"
	gwcodec "gitlab.com/interp-bridge.net/internal/gateway/codec"
	logger2 "gitlab.com/interp-bridge.net/internal/global/logger"
	http2 "gitlab.com/interp-bridge.net/internal/http"
	"gitlab.com/interp-bridge.net/internal/process"
	"gitlab.com/interp-bridge.net/internal/watchdog"
)

func main() {
	InitReader()
	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	logger2.Info("Starting interpreter bridge service")

	logger := logger2.Logger

	sysCfg := config.NewSystemConfig()

	// core state
	registry := bridge.NewCallbackRegistry()
	execBridge := bridge.NewExecutionBridge(logger, bridge.WithMaxPending(sysCfg.BridgeCfg.MaxPending))

	// heartbeat watchdog
	var wd *watchdog.Engine
	if sysCfg.BridgeCfg.WatchdogEnabled {
		wd = watchdog.NewEngine(sysCfg.BridgeCfg, logger)
	}

	// gateway endpoint the interpreter dials back into
	var heartbeats primary.HeartbeatSink
	if wd != nil {
		heartbeats = wd
	}
	gw := gateway.NewServer(
		execBridge,
		heartbeats,
		gwcodec.NewJSONCodec(),
		sysCfg.InterpreterCfg.ProtocolToken,
		logger,
		gateway.WithAddress(sysCfg.GatewayCfg.Address),
	)
	execBridge.BindDispatcher(gw)

	// supervisor over the interpreter process
	handle := process.NewProcessHandle(sysCfg.InterpreterCfg, logger)
	supervisorOpts := []process.SupervisorOption{}
	if sysCfg.RedisConfig.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     sysCfg.RedisConfig.Url,
			Password: sysCfg.RedisConfig.Password,
			DB:       sysCfg.RedisConfig.DB,
		})
		statusRepo := runtimeport.NewStatusRepository(redisClient, logger)
		supervisorOpts = append(supervisorOpts, process.WithStatusRepository(statusRepo))
	}
	if wd != nil {
		supervisorOpts = append(supervisorOpts, process.WithLivenessMonitor(wd))
	}
	supervisor := process.NewSupervisor(handle, gw, registry, sysCfg.InterpreterCfg, logger, supervisorOpts...)

	// facade: wires the late-bound reset/restart callbacks
	service, err := bridgesvc.NewBridgeService(supervisor, execBridge, registry, logger)
	if err != nil {
		panic(err)
	}

	ctxBg := context.Background()
	wdCtx, wdCancel := context.WithCancel(ctxBg)
	defer wdCancel()
	if wd != nil {
		go wd.Run(wdCtx)
	}

	if err := service.Start(ctxBg); err != nil {
		logger.Error("Failed to start bridge service", "error", err)
		os.Exit(1)
	}

	httServer := http2.NewServer(sysCfg.HTTPPort, "interpreterBridge", service, logger)
	if err := httServer.Init(); err != nil {
		panic(err)
	}
	httServer.Start(ctxBg)

	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(ctxBg, 10*time.Second)
	defer cancel()
	httServer.Stop()
	if err := service.Stop(ctx); err != nil {
		logger.Error("Failed to stop bridge service", "error", err)
	}

	logger.Info("successfully shutdown server")
}

func InitReader() {
	environment := ""
	if len(os.Args) < 2 {
		log.Fatalf("Env not supplied in argument")
	} else {
		environment = os.Args[1]
	}

	err := godotenv.Load(environment + ".env")
	if err != nil {
		log.Fatalf("Error loading %s.env file", environment)
	}
}
