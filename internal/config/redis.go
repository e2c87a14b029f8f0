package config

type RedisConfig struct {
	DB       int
	Url      string
	Password string
	Enabled  bool
}

func NewRedisConfig() *RedisConfig {
	return &RedisConfig{
		DB:       intEnv("REDIS_DB", 0),
		Url:      strEnv("REDIS_ADDR", "localhost:6379"),
		Password: strEnv("REDIS_PASSWORD", ""),
		Enabled:  strEnv("REDIS_ENABLED", "true") == "true",
	}
}
