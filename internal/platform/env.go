// Package platform loads process-level configuration from the
// environment. Flags override these values; the environment exists so
// CI and bench machines can set defaults without wrapper scripts.
package platform

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds the environment-variable configuration.
type Env struct {
	LogLevel    string `env:"SELEXSIM_LOG_LEVEL" envDefault:"warn"`
	HistoryPath string `env:"SELEXSIM_HISTORY" envDefault:"selex-sim.db"`
	NoColor     bool   `env:"SELEXSIM_NO_COLOR"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv() (Env, error) {
	var cfg Env
	if err := env.Parse(&cfg); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
