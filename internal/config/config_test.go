package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_NAME", "APP_ENV", "PORT", "LOG_LEVEL", "DATABASE_URL", "REDIS_URL",
		shutdownSecondsEnvVar, shutdownDurationEnvVar, idemTTLSecondsEnvVar, idemTTLDurEnvVar,
		"AUDIT_LOG_PATH", "BRANCH_CODE", "WITHDRAWAL_LIMIT", "MAX_WITHDRAWALS", "RATE_LIMIT_PER_MINUTE", "SEED_DEMO",
	} {
		t.Setenv(key, "")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Address() != ":8080" || cfg.AuditLogPath != "audit.log" || cfg.BranchCode != "0001" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if !cfg.WithdrawalLimit.Equal(decimal.NewFromInt(500)) || cfg.MaxWithdrawals != 3 {
		t.Fatalf("unexpected account defaults %+v", cfg)
	}
	if cfg.ShutdownPeriod != 10*time.Second || cfg.IdempotencyTTL != 24*time.Hour {
		t.Fatalf("unexpected durations %+v", cfg)
	}
	if cfg.SeedDemo {
		t.Fatalf("seeding should be off by default")
	}
}

func TestOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", ":9090")
	t.Setenv("WITHDRAWAL_LIMIT", "750.50")
	t.Setenv("MAX_WITHDRAWALS", "5")
	t.Setenv(shutdownSecondsEnvVar, "3")
	t.Setenv(idemTTLDurEnvVar, "90m")
	t.Setenv("SEED_DEMO", "true")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Address() != ":9090" || !cfg.WithdrawalLimit.Equal(decimal.RequireFromString("750.50")) || cfg.MaxWithdrawals != 5 {
		t.Fatalf("unexpected overrides %+v", cfg)
	}
	if cfg.ShutdownPeriod != 3*time.Second || cfg.IdempotencyTTL != 90*time.Minute || !cfg.SeedDemo {
		t.Fatalf("unexpected overrides %+v", cfg)
	}
}

func TestInvalidValues(t *testing.T) {
	cases := map[string]string{
		"WITHDRAWAL_LIMIT":      "-1",
		"MAX_WITHDRAWALS":       "zero",
		"SEED_DEMO":             "maybe",
		shutdownSecondsEnvVar:   "soon",
		"RATE_LIMIT_PER_MINUTE": "0",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			if _, err := FromEnv(); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}

func TestProductionRequiresBackends(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected error without DATABASE_URL")
	}
	t.Setenv("DATABASE_URL", "postgres://localhost/banco")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	if _, err := FromEnv(); err != nil {
		t.Fatalf("load: %v", err)
	}
}
