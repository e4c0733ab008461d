package config

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,       default=5000"`
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	StaticDir string `env:"STATIC_DIR, default=build"`

	Mongo   MongoConfig
	Redis   RedisConfig
	Uploads UploadConfig
}

type MongoConfig struct {
	URI      string `env:"MONGODB_URI, required"`
	Database string `env:"MONGODB_DB"`
}

// RedisConfig is optional: an empty Addr disables the identity guard.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

type UploadConfig struct {
	Backend string `env:"UPLOAD_BACKEND, default=disk"`
	Dir     string `env:"UPLOAD_DIR,     default=uploads"`

	S3Bucket          string `env:"S3_BUCKET"`
	S3Region          string `env:"S3_REGION, default=us-east-1"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
}

const (
	BackendDisk = "disk"
	BackendS3   = "s3"
)

// IsDevelopment reports whether human-friendly log output should be used.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from the environment, after seeding it from a .env
// file when one exists. A missing MONGODB_URI is fatal.
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom processes configuration from an arbitrary lookuper.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if b := cfg.Uploads.Backend; b != BackendDisk && b != BackendS3 {
		return nil, fmt.Errorf("UPLOAD_BACKEND must be %q or %q, got %q", BackendDisk, BackendS3, b)
	}
	if cfg.Uploads.Backend == BackendS3 && cfg.Uploads.S3Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required when UPLOAD_BACKEND=%s", BackendS3)
	}
	return &cfg, nil
}
