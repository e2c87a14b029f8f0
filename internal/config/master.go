package config

import (
	"os"
	"strconv"
)

type AppConfig struct {
	DebugMode      bool
	HTTPPort       int
	RedisConfig    *RedisConfig
	InterpreterCfg *InterpreterConfig
	GatewayCfg     *GatewayConfig
	BridgeCfg      *BridgeConfig
}

func NewSystemConfig() *AppConfig {
	return &AppConfig{
		DebugMode:      os.Getenv("DEBUG_MODE") == "true",
		HTTPPort:       intEnv("HTTP_PORT", 8082),
		RedisConfig:    NewRedisConfig(),
		InterpreterCfg: NewInterpreterConfig(),
		GatewayCfg:     NewGatewayConfig(),
		BridgeCfg:      NewBridgeConfig(),
	}
}

func intEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	val, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return val
}

func strEnv(key, fallback string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return fallback
}
