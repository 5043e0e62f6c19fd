// internal/workers/artisan/parse-artisan-criteria/config.go
package parseartisancriteria

import (
	"time"

	"artisan-workers/internal/common/config"
	"artisan-workers/internal/ranking"
)

type Config struct {
	Timeout         time.Duration
	DefaultPageSize int
	MaxPageSize     int
	Catalog         *ranking.Catalog
}

func LoadConfig(cfg *config.Config) *Config {
	wcfg := config.GetWorkerConfig(cfg, TaskType)

	entries := make([]ranking.ServiceEntry, 0, len(cfg.Services))
	for _, s := range cfg.Services {
		entries = append(entries, ranking.ServiceEntry{Name: s.Name, Aliases: s.Aliases})
	}

	return &Config{
		Timeout:         config.GetDuration(wcfg.Timeout),
		DefaultPageSize: cfg.Ranking.DefaultPageSize,
		MaxPageSize:     cfg.Ranking.MaxPageSize,
		Catalog:         ranking.NewCatalog(entries),
	}
}
