package kv

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type Options struct {
	Addr     string
	Password string
	DB       int
}

func ConnectRedis(ctx context.Context, opts Options, log logrus.FieldLogger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := rdb.Ping(pingCtx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("could not connect to Redis at %s: %w", opts.Addr, err)
	}

	log.WithField("addr", opts.Addr).Info("Successfully connected to Redis")
	return rdb, nil
}

func CloseRedis(rdb *redis.Client, log logrus.FieldLogger) {
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.WithError(err).Warn("Redis close failed")
			return
		}
		log.Info("Redis connection closed")
	}
}
