// internal/workers/artisan/rank-artisans/config.go
package rankartisans

import (
	"fmt"
	"time"

	"artisan-workers/internal/common/config"
	"artisan-workers/internal/ranking"
)

type Config struct {
	Timeout         time.Duration
	RadiusKm        float64
	FeaturedPremium int
	DefaultPageSize int
	Mode            ranking.PaginationMode
	SlowThreshold   time.Duration
}

func LoadConfig(cfg *config.Config) (*Config, error) {
	mode, err := ranking.ParsePaginationMode(cfg.Ranking.PaginationMode)
	if err != nil {
		return nil, fmt.Errorf("ranking config: %w", err)
	}

	wcfg := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		Timeout:         config.GetDuration(wcfg.Timeout),
		RadiusKm:        cfg.Ranking.RadiusKm,
		FeaturedPremium: cfg.Ranking.FeaturedPremium,
		DefaultPageSize: cfg.Ranking.DefaultPageSize,
		Mode:            mode,
		SlowThreshold:   time.Duration(cfg.Ranking.SlowThresholdMs) * time.Millisecond,
	}, nil
}

// RankerOptions maps the config onto the ranking pipeline.
func (c *Config) RankerOptions() ranking.Options {
	return ranking.Options{
		RadiusKm:        c.RadiusKm,
		FeaturedPremium: c.FeaturedPremium,
		Mode:            c.Mode,
	}
}
