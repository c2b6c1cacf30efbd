package config

import (
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Port           string `mapstructure:"port"`
		Env            string `mapstructure:"env"`
		MetricsEnabled bool   `mapstructure:"metrics_enabled"`
	} `mapstructure:"app"`
	DB struct {
		DSN            string `mapstructure:"dsn"`
		AutoMigrate    bool   `mapstructure:"auto_migrate"`
		MigrationsPath string `mapstructure:"migrations_path"`
	} `mapstructure:"db"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		GroupID string   `mapstructure:"group_id"`
	} `mapstructure:"kafka"`
	Auth struct {
		JWTSecret       string        `mapstructure:"jwt_secret"`
		TokenLifespan   time.Duration `mapstructure:"token_lifespan"`
		VerificationTTL time.Duration `mapstructure:"verification_ttl"`
	} `mapstructure:"auth"`
	Cloudinary struct {
		CloudName string `mapstructure:"cloud_name"`
		ApiKey    string `mapstructure:"api_key"`
		ApiSecret string `mapstructure:"api_secret"`
	} `mapstructure:"cloudinary"`
	Minio struct {
		Endpoint  string `mapstructure:"endpoint"`
		AccessKey string `mapstructure:"access_key"`
		SecretKey string `mapstructure:"secret_key"`
		UseSSL    bool   `mapstructure:"use_ssl"`
		Bucket    string `mapstructure:"bucket"`
	} `mapstructure:"minio"`
	SMTP struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		From     string `mapstructure:"from"`
	} `mapstructure:"smtp"`
	Jaeger struct {
		Enabled      bool   `mapstructure:"enabled"`
		OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	} `mapstructure:"jaeger"`
	RateLimit struct {
		SendCodePerMinute int `mapstructure:"send_code_per_minute"`
		Burst             int `mapstructure:"burst"`
	} `mapstructure:"ratelimit"`
}

// LoadConfig reads .env and config.yaml from the given directories (default ".")
// and lets environment variables override them.
func LoadConfig(paths ...string) (cfg Config, err error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	if err = godotenv.Load(filepath.Join(paths[0], ".env")); err != nil {
		log.Println("warning: .env file not found, use default.")
	}

	v := viper.New()
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err = v.ReadInConfig(); err != nil {
		log.Printf("note: config.yaml not found, read env only. Error: %v", err)
	}

	v.SetDefault("app.port", "8080")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.metrics_enabled", true)
	v.SetDefault("db.migrations_path", "file://migrations")
	v.SetDefault("kafka.group_id", "careerfolio-notifier")
	v.SetDefault("auth.token_lifespan", 3*time.Hour)
	v.SetDefault("auth.verification_ttl", 5*time.Minute)
	v.SetDefault("minio.bucket", "lecture-videos")
	v.SetDefault("smtp.port", 465)
	v.SetDefault("ratelimit.send_code_per_minute", 5)
	v.SetDefault("ratelimit.burst", 3)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("app.port", "APP_PORT")
	v.BindEnv("app.env", "APP_ENV")
	v.BindEnv("app.metrics_enabled", "METRICS_ENABLED")
	v.BindEnv("db.dsn", "DB_DSN")
	v.BindEnv("db.auto_migrate", "DB_AUTO_MIGRATE")
	v.BindEnv("db.migrations_path", "DB_MIGRATIONS_PATH")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("kafka.group_id", "KAFKA_GROUP_ID")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("auth.token_lifespan", "TOKEN_LIFESPAN")
	v.BindEnv("auth.verification_ttl", "VERIFICATION_TTL")

	v.BindEnv("cloudinary.cloud_name", "CLOUDINARY_CLOUD_NAME")
	v.BindEnv("cloudinary.api_key", "CLOUDINARY_API_KEY")
	v.BindEnv("cloudinary.api_secret", "CLOUDINARY_API_SECRET")

	v.BindEnv("minio.endpoint", "MINIO_ENDPOINT")
	v.BindEnv("minio.access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("minio.secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("minio.use_ssl", "MINIO_USE_SSL")
	v.BindEnv("minio.bucket", "MINIO_BUCKET")

	v.BindEnv("smtp.host", "SMTP_HOST")
	v.BindEnv("smtp.port", "SMTP_PORT")
	v.BindEnv("smtp.username", "EMAIL_USER")
	v.BindEnv("smtp.password", "EMAIL_PASS")
	v.BindEnv("smtp.from", "EMAIL_FROM")

	v.BindEnv("jaeger.enabled", "JAEGER_ENABLED")
	v.BindEnv("jaeger.otlp_endpoint", "JAEGER_OTLP_ENDPOINT")

	v.BindEnv("ratelimit.send_code_per_minute", "RATELIMIT_SEND_CODE_PER_MINUTE")
	v.BindEnv("ratelimit.burst", "RATELIMIT_BURST")

	err = v.Unmarshal(&cfg)
	if err == nil && len(cfg.Kafka.Brokers) == 1 && strings.Contains(cfg.Kafka.Brokers[0], ",") {
		cfg.Kafka.Brokers = strings.Split(cfg.Kafka.Brokers[0], ",")
	}
	return
}
