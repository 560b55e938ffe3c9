package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	DatabaseURL       string
	JWTSecret         string
	JWTIssuer         string
	HTTPListenAddr    string
	// MetricsListenAddr serves /metrics on a separate listener when set.
	MetricsListenAddr string
	LogLevel          string
	// LogFormat is "json" (default) or "console" for human-readable local output.
	LogFormat         string
	ServiceName       string
	CORSOrigins       []string

	// EngineURL is the base URL of the workflow engine's public REST API.
	EngineURL          string
	EngineAPIKey       string
	EngineAPIKeyHeader string
	EngineCallTimeout  time.Duration
	EngineCloneTimeout time.Duration

	// Archive of retired workflow definitions. Disabled when the bucket is empty.
	ArchiveS3Endpoint  string
	ArchiveS3Bucket    string
	ArchiveS3AccessKey string
	ArchiveS3SecretKey string
	ArchiveS3Region    string
}

func Load() (*Config, error) {
	callTimeout, err := getDuration("ENGINE_CALL_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	cloneTimeout, err := getDuration("ENGINE_CLONE_TIMEOUT", 45*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTIssuer:          getEnv("JWT_ISSUER", "flowplane"),
		HTTPListenAddr:     getEnv("HTTP_LISTEN_ADDR", ":8080"),
		MetricsListenAddr:  getEnv("METRICS_LISTEN_ADDR", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
		ServiceName:        getEnv("SERVICE_NAME", "flowplane-api"),
		CORSOrigins:        splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		EngineURL:          strings.TrimRight(getEnv("ENGINE_API_URL", ""), "/"),
		EngineAPIKey:       getEnv("ENGINE_API_KEY", ""),
		EngineAPIKeyHeader: getEnv("ENGINE_API_KEY_HEADER", "X-N8N-API-KEY"),
		EngineCallTimeout:  callTimeout,
		EngineCloneTimeout: cloneTimeout,
		ArchiveS3Endpoint:  getEnv("ARCHIVE_S3_ENDPOINT", ""),
		ArchiveS3Bucket:    getEnv("ARCHIVE_S3_BUCKET", ""),
		ArchiveS3AccessKey: getEnv("ARCHIVE_S3_ACCESS_KEY", ""),
		ArchiveS3SecretKey: getEnv("ARCHIVE_S3_SECRET_KEY", ""),
		ArchiveS3Region:    getEnv("ARCHIVE_S3_REGION", "us-east-1"),
	}

	return cfg, nil
}

// Validate checks that required fields are set for the given process.
func (c *Config) Validate(process string) error {
	var missing []string

	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	if process == "api" {
		if c.HTTPListenAddr == "" {
			missing = append(missing, "HTTP_LISTEN_ADDR")
		}
		if c.EngineURL == "" {
			missing = append(missing, "ENGINE_API_URL")
		}
		if c.EngineAPIKey == "" {
			missing = append(missing, "ENGINE_API_KEY")
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}

	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 bytes")
	}
	if c.EngineCloneTimeout < c.EngineCallTimeout {
		return fmt.Errorf("ENGINE_CLONE_TIMEOUT must not be shorter than ENGINE_CALL_TIMEOUT")
	}
	if c.ArchiveEnabled() && (c.ArchiveS3AccessKey == "" || c.ArchiveS3SecretKey == "") {
		return fmt.Errorf("ARCHIVE_S3_ACCESS_KEY and ARCHIVE_S3_SECRET_KEY must be set when ARCHIVE_S3_BUCKET is set")
	}

	return nil
}

// ArchiveEnabled reports whether retired definitions are archived to S3.
func (c *Config) ArchiveEnabled() bool {
	return c.ArchiveS3Bucket != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
