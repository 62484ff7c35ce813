package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config captures runtime configuration sourced from environment variables.
type Config struct {
	Environment  string
	HTTPPort     string
	DataDir      string
	UploadsDir   string
	DownloadsDir string
	LogDir       string
	JWTSecret    string
	TokenTTL     time.Duration
	GeoAPIBase   string
	GeoTimeout   time.Duration
	AlertURLs    []string
	SnapshotSpec string
}

// Load reads env vars and falls back to defaults so the server can boot with
// zero configuration.
func Load() (Config, error) {
	cfg := Config{
		Environment:  getEnv("VC_ENV", "development"),
		HTTPPort:     getEnv("VC_HTTP_PORT", "3001"),
		DataDir:      getEnv("VC_DATA_DIR", "data"),
		UploadsDir:   getEnv("VC_UPLOADS_DIR", "uploads"),
		DownloadsDir: getEnv("VC_DOWNLOADS_DIR", "downloads"),
		LogDir:       getEnv("VC_LOG_DIR", "data/logs"),
		JWTSecret:    getEnv("VC_JWT_SECRET", "vantage-console-dev-secret"),
		GeoAPIBase:   getEnv("VC_GEO_API_BASE", "http://ip-api.com"),
		SnapshotSpec: getEnv("VC_SNAPSHOT_SPEC", "@every 5m"),
	}

	var err error
	if cfg.TokenTTL, err = getDuration("VC_TOKEN_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.GeoTimeout, err = getDuration("VC_GEO_TIMEOUT", 3*time.Second); err != nil {
		return Config{}, err
	}

	if raw := os.Getenv("VC_ALERT_URLS"); raw != "" {
		for _, u := range strings.Split(raw, ",") {
			if u = strings.TrimSpace(u); u != "" {
				cfg.AlertURLs = append(cfg.AlertURLs, u)
			}
		}
	}

	for _, dir := range []string{cfg.DataDir, cfg.UploadsDir, cfg.DownloadsDir, cfg.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Config{}, fmt.Errorf("ensure directory %s: %w", dir, err)
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}
