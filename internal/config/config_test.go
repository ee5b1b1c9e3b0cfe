package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, tuning, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != ":8080" || cfg.MigrationsDir != "migrations" {
		t.Fatalf("defaults: %+v", cfg)
	}
	if cfg.TickInterval != 5*time.Minute || cfg.Workers != 4 || cfg.ReconcileAfter != 2*time.Hour {
		t.Fatalf("scheduler defaults: %+v", cfg)
	}
	if tuning.TavernMealPrice != 10 {
		t.Fatalf("tuning must default: %+v", tuning)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("TICK_INTERVAL", "30s")
	t.Setenv("SCHEDULER_WORKERS", "8")

	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != ":9090" || cfg.TickInterval != 30*time.Second || cfg.Workers != 8 {
		t.Fatalf("overrides: %+v", cfg)
	}
}

func TestLoad_TuningFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	body := "tavern_meal_price: 25\nmeal_minutes: 45\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write tuning file: %v", err)
	}
	t.Setenv("TUNING_FILE", path)

	_, tuning, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tuning.TavernMealPrice != 25 || tuning.MealMinutes != 45 {
		t.Fatalf("overlay not applied: %+v", tuning)
	}
	// Fields the file omits keep their defaults.
	if tuning.ContractFeeRate == 0 || tuning.DefaultTravelMinutes == 0 {
		t.Fatalf("defaults lost: %+v", tuning)
	}
}

func TestLoad_MissingTuningFileFails(t *testing.T) {
	t.Setenv("TUNING_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	if _, _, err := Load(); err == nil {
		t.Fatalf("expected error for missing tuning file")
	}
}
