package config

import "time"

// BridgeConfig bounds the execution bridge and the heartbeat watchdog.
type BridgeConfig struct {
	MaxPending        int
	WatchdogEnabled   bool
	HeartbeatInterval time.Duration
	HeartbeatMaxAge   time.Duration
}

func NewBridgeConfig() *BridgeConfig {
	return &BridgeConfig{
		MaxPending:        intEnv("BRIDGE_MAX_PENDING", 256),
		WatchdogEnabled:   strEnv("WATCHDOG_ENABLED", "true") == "true",
		HeartbeatInterval: time.Duration(intEnv("WATCHDOG_CHECK_INTERVAL_SEC", 5)) * time.Second,
		HeartbeatMaxAge:   time.Duration(intEnv("WATCHDOG_HEARTBEAT_MAX_AGE_SEC", 30)) * time.Second,
	}
}
