package config

// GatewayConfig describes the callback endpoint the interpreter dials back
// into. Port 0 lets the OS pick; the negotiated address is passed to the
// subprocess at launch.
type GatewayConfig struct {
	Address string
}

func NewGatewayConfig() *GatewayConfig {
	return &GatewayConfig{
		Address: strEnv("GATEWAY_ADDR", "127.0.0.1:0"),
	}
}
