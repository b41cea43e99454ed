// Package config loads CLI configuration for the mtredis tools from flags,
// environment variables and an optional config file.
package config

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/spf13/viper"
)

const (
	envPrefix        = "MTREDIS"
	defaultRedisAddr = "127.0.0.1:6379"
	defaultRedisDB   = 0
	defaultPrefix    = "mtproto"
	defaultLogLevel  = "info"
	defaultMetricsOn = true
)

// AppConfig captures runtime configuration for the mtredis CLI.
type AppConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionPrefix string
	LogLevel      string
	Metrics       bool
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	v := viper.New()
	ApplyDefaults(v)
	return v
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("redis.addr", defaultRedisAddr)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", defaultRedisDB)
	v.SetDefault("session.prefix", defaultPrefix)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("metrics.enabled", defaultMetricsOn)
}

// Load parses runtime configuration from viper.
func Load(v *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		RedisAddr:     v.GetString("redis.addr"),
		RedisPassword: v.GetString("redis.password"),
		RedisDB:       v.GetInt("redis.db"),
		SessionPrefix: v.GetString("session.prefix"),
		LogLevel:      v.GetString("log.level"),
		Metrics:       v.GetBool("metrics.enabled"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.RedisAddr) == "" {
		return fmt.Errorf("redis.addr is required")
	}
	if c.RedisDB < 0 {
		return fmt.Errorf("redis.db must be >= 0")
	}
	if c.SessionPrefix == "" {
		return fmt.Errorf("session.prefix is required")
	}
	if strings.IndexFunc(c.SessionPrefix, unicode.IsSpace) >= 0 {
		return fmt.Errorf("session.prefix must not contain whitespace")
	}
	return nil
}
