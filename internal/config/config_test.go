package config_test

import (
	"testing"
	"time"

	"gitlab.com/interp-bridge.net/internal/config"
)

func TestSystemConfigDefaults(t *testing.T) {
	cfg := config.NewSystemConfig()

	if cfg.HTTPPort != 8082 {
		t.Fatalf("HTTPPort = %d", cfg.HTTPPort)
	}
	if cfg.InterpreterCfg.BinPath != "interp-runtime" {
		t.Fatalf("BinPath = %q", cfg.InterpreterCfg.BinPath)
	}
	if len(cfg.InterpreterCfg.Args) != 0 {
		t.Fatalf("Args = %v", cfg.InterpreterCfg.Args)
	}
	if cfg.InterpreterCfg.ReadyTimeout != 15*time.Second {
		t.Fatalf("ReadyTimeout = %s", cfg.InterpreterCfg.ReadyTimeout)
	}
	if cfg.GatewayCfg.Address != "127.0.0.1:0" {
		t.Fatalf("gateway address = %q", cfg.GatewayCfg.Address)
	}
	if cfg.BridgeCfg.MaxPending != 256 {
		t.Fatalf("MaxPending = %d", cfg.BridgeCfg.MaxPending)
	}
	if !cfg.BridgeCfg.WatchdogEnabled {
		t.Fatalf("watchdog disabled by default")
	}
}

func TestSystemConfigReadsEnvironment(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DEBUG_MODE", "true")
	t.Setenv("INTERPRETER_BIN", "/opt/runtime/bin/interp")
	t.Setenv("INTERPRETER_ARGS", "--isolate --max-heap 512")
	t.Setenv("INTERPRETER_READY_TIMEOUT_SEC", "3")
	t.Setenv("GATEWAY_ADDR", "127.0.0.1:7001")
	t.Setenv("BRIDGE_MAX_PENDING", "16")
	t.Setenv("WATCHDOG_ENABLED", "false")
	t.Setenv("REDIS_ADDR", "redis-0:6379")
	t.Setenv("REDIS_ENABLED", "false")

	cfg := config.NewSystemConfig()

	if cfg.HTTPPort != 9090 || !cfg.DebugMode {
		t.Fatalf("HTTPPort=%d DebugMode=%v", cfg.HTTPPort, cfg.DebugMode)
	}
	if cfg.InterpreterCfg.BinPath != "/opt/runtime/bin/interp" {
		t.Fatalf("BinPath = %q", cfg.InterpreterCfg.BinPath)
	}
	wantArgs := []string{"--isolate", "--max-heap", "512"}
	if len(cfg.InterpreterCfg.Args) != len(wantArgs) {
		t.Fatalf("Args = %v", cfg.InterpreterCfg.Args)
	}
	for i, arg := range wantArgs {
		if cfg.InterpreterCfg.Args[i] != arg {
			t.Fatalf("Args[%d] = %q, want %q", i, cfg.InterpreterCfg.Args[i], arg)
		}
	}
	if cfg.InterpreterCfg.ReadyTimeout != 3*time.Second {
		t.Fatalf("ReadyTimeout = %s", cfg.InterpreterCfg.ReadyTimeout)
	}
	if cfg.GatewayCfg.Address != "127.0.0.1:7001" {
		t.Fatalf("gateway address = %q", cfg.GatewayCfg.Address)
	}
	if cfg.BridgeCfg.MaxPending != 16 || cfg.BridgeCfg.WatchdogEnabled {
		t.Fatalf("bridge cfg = %+v", cfg.BridgeCfg)
	}
	if cfg.RedisConfig.Url != "redis-0:6379" || cfg.RedisConfig.Enabled {
		t.Fatalf("redis cfg = %+v", cfg.RedisConfig)
	}
}

func TestMalformedIntFallsBack(t *testing.T) {
	t.Setenv("HTTP_PORT", "not-a-number")

	cfg := config.NewSystemConfig()
	if cfg.HTTPPort != 8082 {
		t.Fatalf("HTTPPort = %d, want fallback 8082", cfg.HTTPPort)
	}
}
