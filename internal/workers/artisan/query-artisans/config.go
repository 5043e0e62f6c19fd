// internal/workers/artisan/query-artisans/config.go
package queryartisans

import (
	"time"

	"artisan-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	Limit   int
	Index   string
}

func LoadConfig(cfg *config.Config) *Config {
	wcfg := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		Timeout: config.GetDuration(wcfg.Timeout),
		Limit:   cfg.Source.Limit,
		Index:   cfg.Source.Index,
	}
}
