package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_DEBUG_JSON dumps every roster snapshot a step looks at
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
	// E2E_CONCURRENCY is how many callers race on the same roster
	Concurrency int `envconfig:"E2E_CONCURRENCY" default:"40"`
	Workers     int `envconfig:"E2E_WORKERS" default:"4"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
