// Package config loads and validates environment variables at startup.
// Fail-fast: misconfiguration is fatal before the first cycle, never
// mid-cycle.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"jobwatch/monitor-service/internal/model"
)

// Config holds all runtime configuration for the monitor service.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string

	// DefaultWebhookURL is the fallback and operational channel.
	DefaultWebhookURL string
	// RegionWebhooks maps each region to its notification channel.
	RegionWebhooks map[model.Region]string

	Regions              []model.Region
	JobTitle             string
	CheckIntervalMinutes int
	RetentionDays        int

	LogLevel slog.Level
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	regions, err := parseRegions(getenvDefault("REGIONS", "NYC,LA,SF,SD"))
	if err != nil {
		return nil, err
	}

	interval, err := positiveInt("CHECK_INTERVAL_MINUTES", 30)
	if err != nil {
		return nil, err
	}
	retention, err := positiveInt("RETENTION_DAYS", 7)
	if err != nil {
		return nil, err
	}

	regionWebhooks := make(map[model.Region]string, len(regions))
	for _, r := range regions {
		regionWebhooks[r] = os.Getenv("DISCORD_WEBHOOK_URL_" + string(r))
	}

	cfg := &Config{
		Port:                 getenvDefault("PORT", "8080"),
		DatabaseURL:          dbURL,
		RedisURL:             redisURL,
		DefaultWebhookURL:    os.Getenv("DISCORD_WEBHOOK_URL"),
		RegionWebhooks:       regionWebhooks,
		Regions:              regions,
		JobTitle:             getenvDefault("JOB_TITLE", "Associate Product Manager"),
		CheckIntervalMinutes: interval,
		RetentionDays:        retention,
		LogLevel:             parseLogLevel(getenvDefault("LOG_LEVEL", "INFO")),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DefaultWebhookURL == "" && !anyNonEmpty(c.RegionWebhooks) {
		return fmt.Errorf("no Discord webhook URLs configured")
	}
	if len(c.Regions) == 0 {
		return fmt.Errorf("REGIONS must name at least one region")
	}
	return nil
}

// knownRegions lists the regions the extractor can resolve.
var knownRegions = map[model.Region]bool{
	model.RegionNYC:    true,
	model.RegionLA:     true,
	model.RegionSF:     true,
	model.RegionSD:     true,
	model.RegionRemote: true,
}

func parseRegions(csv string) ([]model.Region, error) {
	var regions []model.Region
	for _, part := range strings.Split(csv, ",") {
		name := model.Region(strings.ToUpper(strings.TrimSpace(part)))
		if name == "" {
			continue
		}
		if !knownRegions[name] {
			return nil, fmt.Errorf("unknown region %q in REGIONS", name)
		}
		regions = append(regions, name)
	}
	return regions, nil
}

func anyNonEmpty(m map[model.Region]string) bool {
	for _, v := range m {
		if v != "" {
			return true
		}
	}
	return false
}

func positiveInt(name string, def int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, s)
	}
	return v, nil
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getenvDefault(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}
