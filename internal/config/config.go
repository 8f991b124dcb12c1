package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	S3       S3Config       `mapstructure:"s3"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type ServerConfig struct {
	Address        string `mapstructure:"address"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
}

type DatabaseConfig struct {
	URI     string `mapstructure:"uri"`
	Name    string `mapstructure:"name"`
	Enabled bool   `mapstructure:"enabled"`
}

// StorageConfig selects the blob backend.
type StorageConfig struct {
	Driver        string        `mapstructure:"driver"` // "s3" or "minio"
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UsePathStyle    bool   `mapstructure:"use_path_style"`
}

// MinIOConfig holds MinIO connection settings.
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"` // e.g., "localhost:9000"
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

var (
	ErrMissingBucket = errors.New("storage bucket is not configured")
	ErrInvalidDriver = errors.New("storage driver must be \"s3\" or \"minio\"")
)

// LoadConfig reads configuration from path/config.yaml and environment variables.
// Environment variables override the file; nested keys use "_" (s3.bucket_name -> S3_BUCKET_NAME).
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	err = v.ReadInConfig()
	// A missing file is fine; env vars and defaults may be all we need.
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		err = nil
	} else if err != nil {
		return config, fmt.Errorf("read config: %w", err)
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("unmarshal config: %w", err)
	}

	if err = config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.max_upload_bytes", 32<<20)
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "sales_reports")
	v.SetDefault("database.enabled", true)
	v.SetDefault("storage.driver", "s3")
	v.SetDefault("storage.presign_expiry", "15m")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.use_path_style", true) // Needed by most S3-compatible services
	// Registered so AutomaticEnv can see them during Unmarshal.
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.access_key", "")
	v.SetDefault("minio.secret_key", "")
	v.SetDefault("minio.bucket", "")
	v.SetDefault("minio.region", "us-east-1")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("metrics.enabled", true)
}

// Validate checks that the selected storage driver is usable.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case "s3":
		if c.S3.BucketName == "" {
			return fmt.Errorf("%w: s3.bucket_name", ErrMissingBucket)
		}
	case "minio":
		if c.MinIO.Bucket == "" {
			return fmt.Errorf("%w: minio.bucket", ErrMissingBucket)
		}
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidDriver, c.Storage.Driver)
	}
	return nil
}
