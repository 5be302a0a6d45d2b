package config_test

import (
	"testing"

	"jobwatch/monitor-service/internal/config"
)

func setBaseEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/jobwatch")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("DISCORD_WEBHOOK_URL", "https://discord.com/api/webhooks/1/abc")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CheckIntervalMinutes != 30 {
		t.Errorf("CheckIntervalMinutes = %d, want 30", cfg.CheckIntervalMinutes)
	}
	if cfg.RetentionDays != 7 {
		t.Errorf("RetentionDays = %d, want 7", cfg.RetentionDays)
	}
	if cfg.JobTitle != "Associate Product Manager" {
		t.Errorf("JobTitle = %q", cfg.JobTitle)
	}
	if len(cfg.Regions) != 4 {
		t.Errorf("Regions = %v, want 4 defaults", cfg.Regions)
	}
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DATABASE_URL", "")

	if _, err := config.Load(); err == nil {
		t.Error("Load should fail without DATABASE_URL")
	}
}

func TestLoad_RequiresSomeWebhook(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DISCORD_WEBHOOK_URL", "")

	if _, err := config.Load(); err == nil {
		t.Error("Load should fail when no webhook is configured")
	}
}

func TestLoad_RegionWebhookSatisfiesValidation(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DISCORD_WEBHOOK_URL", "")
	t.Setenv("REGIONS", "NYC")
	t.Setenv("DISCORD_WEBHOOK_URL_NYC", "https://discord.com/api/webhooks/2/nyc")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RegionWebhooks["NYC"] == "" {
		t.Error("NYC webhook should be populated")
	}
}

func TestLoad_RejectsUnknownRegion(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("REGIONS", "NYC,ATLANTIS")

	if _, err := config.Load(); err == nil {
		t.Error("Load should reject unknown regions at startup")
	}
}

func TestLoad_RejectsBadInterval(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CHECK_INTERVAL_MINUTES", "zero")

	if _, err := config.Load(); err == nil {
		t.Error("Load should reject a non-numeric interval")
	}
}

func TestLoad_ParsesRegionsCaseInsensitive(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("REGIONS", "nyc, remote")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Regions) != 2 || cfg.Regions[1] != "REMOTE" {
		t.Errorf("Regions = %v, want [NYC REMOTE]", cfg.Regions)
	}
}
