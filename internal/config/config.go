package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode         string        `mapstructure:"mode"`
	Port         int           `mapstructure:"port"`
	ServerID     string        `mapstructure:"server_id"`
	ReadLimit    int64         `mapstructure:"read_limit"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	SendBuffer   int           `mapstructure:"send_buffer"`
	MsgRateLimit int           `mapstructure:"msg_rate_limit"`
	MsgRateEvery time.Duration `mapstructure:"msg_rate_every"`
	Redis        RedisConfig   `mapstructure:"redis"`
}

// RedisConfig selects the multi-node backends. An empty Addr keeps
// everything in-process: in-proc bus, memory presence, memory tokens.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("server_id", hostnameOrDefault())
	v.SetDefault("read_limit", 32768)
	v.SetDefault("idle_timeout", "60s")
	v.SetDefault("write_timeout", "5s")
	v.SetDefault("send_buffer", 256)
	v.SetDefault("msg_rate_limit", 50)
	v.SetDefault("msg_rate_every", "1s")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("config file not found (%s), using defaults\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

func hostnameOrDefault() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "parley-1"
	}
	return h
}
