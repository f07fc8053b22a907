package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("CURRENCY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %s, want 8080", cfg.Server.Port)
	}
	if cfg.Data.Currency != "AED" {
		t.Errorf("Currency = %s, want AED", cfg.Data.Currency)
	}
	if cfg.Confidence.MinValidatedActions != 30 || cfg.Confidence.MinSpendAvoidedCount != 10 {
		t.Errorf("confidence gates = %+v", cfg.Confidence)
	}
}

func TestLoadRejectsBadPort(t *testing.T) {
	t.Setenv("PORT", "not-a-port")

	if _, err := Load(); err == nil {
		t.Error("expected error for non-numeric PORT")
	}
}

func TestLoadRejectsBadCurrency(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CURRENCY", "DIRHAMS")

	if _, err := Load(); err == nil {
		t.Error("expected error for non-3-letter currency")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9191")
	t.Setenv("CURRENCY", "SAR")
	t.Setenv("CONFIDENCE_MIN_ACTIONS", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != "9191" || cfg.Data.Currency != "SAR" || cfg.Confidence.MinValidatedActions != 5 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}
