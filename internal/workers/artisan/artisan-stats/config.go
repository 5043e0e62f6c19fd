// internal/workers/artisan/artisan-stats/config.go
package artisanstats

import (
	"time"

	"artisan-workers/internal/common/config"
)

type Config struct {
	Timeout  time.Duration
	RadiusKm float64
}

func LoadConfig(cfg *config.Config) *Config {
	wcfg := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		Timeout:  config.GetDuration(wcfg.Timeout),
		RadiusKm: cfg.Ranking.RadiusKm,
	}
}
