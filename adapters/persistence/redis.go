package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/khoahotran/careerfolio/internal/config"
	"github.com/khoahotran/careerfolio/internal/domain/verification"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/logger"
)

func NewRedisClient(cfg config.Config, log logger.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("can not connect Redis: %w", err)
	}

	log.Info("Connect Redis successfully.", zap.String("addr", cfg.Redis.Addr))
	return rdb, nil
}

const verificationKeyPrefix = "verify:"

type redisVerificationStore struct {
	rdb    *redis.Client
	logger logger.Logger
}

func NewRedisVerificationStore(rdb *redis.Client, logger logger.Logger) verification.Store {
	return &redisVerificationStore{rdb: rdb, logger: logger}
}

func verificationKey(email string) string {
	return verificationKeyPrefix + email
}

func (s *redisVerificationStore) Save(ctx context.Context, email string, e verification.Entry, ttl time.Duration) error {
	data, err := json.Marshal(e)
	if err != nil {
		return apperror.NewInternal("failed to marshal verification entry", err)
	}
	if err := s.rdb.Set(ctx, verificationKey(email), data, ttl).Err(); err != nil {
		return apperror.NewInternal("failed to store verification code", err)
	}
	return nil
}

func (s *redisVerificationStore) Get(ctx context.Context, email string) (*verification.Entry, error) {
	data, err := s.rdb.Get(ctx, verificationKey(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperror.NewNotFound("verification code", email)
		}
		return nil, apperror.NewInternal("failed to read verification code", err)
	}
	var e verification.Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, apperror.NewInternal("failed to unmarshal verification entry", err)
	}
	return &e, nil
}

func (s *redisVerificationStore) MarkVerified(ctx context.Context, email string) error {
	e, err := s.Get(ctx, email)
	if err != nil {
		return err
	}
	e.Verified = true
	data, err := json.Marshal(e)
	if err != nil {
		return apperror.NewInternal("failed to marshal verification entry", err)
	}

	// XX: the entry may have expired between Get and Set.
	res, err := s.rdb.SetArgs(ctx, verificationKey(email), data, redis.SetArgs{Mode: "XX", KeepTTL: true}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return apperror.NewNotFound("verification code", email)
		}
		return apperror.NewInternal("failed to mark verification code", err)
	}
	if res != "OK" {
		return apperror.NewNotFound("verification code", email)
	}
	return nil
}

func (s *redisVerificationStore) Delete(ctx context.Context, email string) error {
	if err := s.rdb.Del(ctx, verificationKey(email)).Err(); err != nil {
		return apperror.NewInternal("failed to delete verification code", err)
	}
	return nil
}
