package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Server is the environment surface shared by the server and admin binaries.
// Command-line flags override these values.
type Server struct {
	Addr        string `env:"REALMTICK_ADDR" envDefault:":8080"`
	DBDialect   string `env:"REALMTICK_DB_DIALECT" envDefault:"sqlite"`
	SQLitePath  string `env:"REALMTICK_SQLITE_PATH" envDefault:"./data/realm.sqlite"`
	PostgresDSN string `env:"REALMTICK_POSTGRES_DSN"`
	AdminToken  string `env:"REALMTICK_ADMIN_TOKEN"`
	ReportDir   string `env:"REALMTICK_REPORT_DIR" envDefault:"./data/reports"`
	TuningPath  string `env:"REALMTICK_TUNING" envDefault:"./configs/tuning.yaml"`
	CatalogPath string `env:"REALMTICK_CATALOG" envDefault:"./configs/catalog.yaml"`
	// DisableScheduler leaves only the manual trigger.
	DisableScheduler bool `env:"REALMTICK_DISABLE_SCHEDULER"`
}
