package main

import (
	"context"
	"fmt"

	"github.com/MrEthical07/mtredis"
	"github.com/MrEthical07/mtredis/internal/config"
	"github.com/MrEthical07/mtredis/internal/logging"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// session bundles everything one CLI invocation needs.
type session struct {
	storage *mtredis.Storage
	logger  *zap.Logger
	client  redis.UniversalClient
}

func openSession(ctx context.Context) (*session, error) {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return nil, err
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{appConfig.RedisAddr},
		Password: appConfig.RedisPassword,
		DB:       appConfig.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s: %w", appConfig.RedisAddr, err)
	}

	storage, err := mtredis.New().
		WithRedis(client).
		WithPrefix(appConfig.SessionPrefix).
		WithLogger(logger).
		WithAuditSink(mtredis.NewZapSink(logger)).
		WithLatencyHistograms(appConfig.Metrics).
		Build()
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Debug("session ready",
		zap.String("redis", appConfig.RedisAddr),
		zap.String("prefix", appConfig.SessionPrefix),
	)
	return &session{storage: storage, logger: logger, client: client}, nil
}

func (s *session) close() {
	s.storage.Shutdown()
	_ = s.client.Close()
	_ = s.logger.Sync()
}

// withSession runs fn against a freshly opened session and releases it after.
func withSession(ctx context.Context, fn func(context.Context, *session) error) error {
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()
	return fn(ctx, s)
}
