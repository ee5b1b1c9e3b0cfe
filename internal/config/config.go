package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"rialto/internal/domain/economy"
)

type Config struct {
	ListenAddr     string        `env:"LISTEN_ADDR" envDefault:":8080"`
	DatabaseDSN    string        `env:"DATABASE_DSN"`
	MigrationsDir  string        `env:"MIGRATIONS_DIR" envDefault:"migrations"`
	TuningFile     string        `env:"TUNING_FILE"`
	TickInterval   time.Duration `env:"TICK_INTERVAL" envDefault:"5m"`
	Workers        int           `env:"SCHEDULER_WORKERS" envDefault:"4"`
	ReconcileAfter time.Duration `env:"RECONCILE_AFTER" envDefault:"2h"`
}

// Load parses env vars and, when TUNING_FILE is set, overlays the YAML
// overrides onto the default tuning.
func Load() (Config, economy.Tuning, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, economy.Tuning{}, fmt.Errorf("parse env: %w", err)
	}

	tuning := economy.DefaultTuning()
	if cfg.TuningFile != "" {
		override, err := loadTuningFile(cfg.TuningFile)
		if err != nil {
			return Config{}, economy.Tuning{}, err
		}
		tuning = tuning.Merge(override)
	}
	return cfg, tuning, nil
}

func loadTuningFile(path string) (economy.Tuning, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return economy.Tuning{}, fmt.Errorf("read tuning file: %w", err)
	}
	var override economy.Tuning
	if err := yaml.Unmarshal(b, &override); err != nil {
		return economy.Tuning{}, fmt.Errorf("parse tuning file: %w", err)
	}
	return override, nil
}
