package config

import (
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.DB.URL == "" {
		t.Error("db.url default must not be empty")
	}
	if cfg.HTTP.Port != 8080 {
		t.Errorf("http.port = %d, want 8080", cfg.HTTP.Port)
	}
	if cfg.Scheduler.TickIntervalMs != 1000 {
		t.Errorf("scheduler.tick_interval_ms = %d, want 1000", cfg.Scheduler.TickIntervalMs)
	}
	if !cfg.MQ.Enabled {
		t.Error("mq.enabled must default to true")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("GEOFLOW_DB__URL", "postgresql://geoflow@db.internal:5432/geoflow")
	t.Setenv("GEOFLOW_HTTP__PORT", "9090")
	t.Setenv("GEOFLOW_SERVICES__CATALOG_URL", "http://catalog.geoflow.svc:8081")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.DB.URL != "postgresql://geoflow@db.internal:5432/geoflow" {
		t.Errorf("db.url = %q, env override did not apply", cfg.DB.URL)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("http.port = %d, want 9090", cfg.HTTP.Port)
	}
	if cfg.Services.CatalogURL != "http://catalog.geoflow.svc:8081" {
		t.Errorf("services.catalog_url = %q, env override did not apply", cfg.Services.CatalogURL)
	}
}

func TestLoad_RetryPolicyFromEnv(t *testing.T) {
	t.Setenv("GEOFLOW_RETRY__PROCESSING__MAX_ATTEMPTS", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	policy, ok := cfg.Retry["processing"]
	if !ok {
		t.Fatalf("retry.processing not loaded, retry = %v", cfg.Retry)
	}
	if policy.MaxAttempts != 7 {
		t.Errorf("max_attempts = %d, want 7", policy.MaxAttempts)
	}
}
