package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/khoahotran/careerfolio/internal/domain/verification"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/logger"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: host + ":" + port.Port()})
	t.Cleanup(func() { rdb.Close() })
	require.NoError(t, rdb.Ping(ctx).Err())
	return rdb
}

func TestRedisVerificationStore(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode.")
	}
	ctx := context.Background()
	rdb := startRedis(t)
	store := NewRedisVerificationStore(rdb, logger.NewNopLogger())
	const email = "learner@example.com"

	_, err := store.Get(ctx, email)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	require.NoError(t, store.Save(ctx, email, verification.Entry{Code: "123456"}, time.Minute))
	e, err := store.Get(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, "123456", e.Code)
	assert.False(t, e.Verified)

	require.NoError(t, store.MarkVerified(ctx, email))
	e, err = store.Get(ctx, email)
	require.NoError(t, err)
	assert.True(t, e.Verified)

	ttl, err := rdb.TTL(ctx, verificationKey(email)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0), "marking verified keeps the expiry")

	require.NoError(t, store.Delete(ctx, email))
	_, err = store.Get(ctx, email)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestRedisVerificationStore_Expires(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode.")
	}
	ctx := context.Background()
	store := NewRedisVerificationStore(startRedis(t), logger.NewNopLogger())

	require.NoError(t, store.Save(ctx, "short@example.com", verification.Entry{Code: "000111"}, time.Second))
	assert.Eventually(t, func() bool {
		_, err := store.Get(ctx, "short@example.com")
		return err != nil
	}, 5*time.Second, 200*time.Millisecond)
}
