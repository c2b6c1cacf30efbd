package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.True(t, cfg.App.MetricsEnabled)
	assert.Equal(t, "careerfolio-notifier", cfg.Kafka.GroupID)
	assert.Equal(t, 3*time.Hour, cfg.Auth.TokenLifespan)
	assert.Equal(t, 5*time.Minute, cfg.Auth.VerificationTTL)
	assert.Equal(t, "lecture-videos", cfg.Minio.Bucket)
	assert.Equal(t, 465, cfg.SMTP.Port)
	assert.Equal(t, 5, cfg.RateLimit.SendCodePerMinute)
	assert.Equal(t, 3, cfg.RateLimit.Burst)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
app:
  port: "9000"
  env: production
db:
  dsn: postgres://file
kafka:
  brokers:
    - kafka-1:9092
auth:
  jwt_secret: from-file
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	t.Setenv("APP_PORT", "7000")
	t.Setenv("TOKEN_LIFESPAN", "30m")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.App.Port, "env overrides file")
	assert.Equal(t, "production", cfg.App.Env)
	assert.Equal(t, "postgres://file", cfg.DB.DSN)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenLifespan)
	assert.Equal(t, []string{"kafka-1:9092"}, cfg.Kafka.Brokers)
}

func TestLoadConfig_CommaSeparatedBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
}
