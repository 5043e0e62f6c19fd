// Command rank-preview runs the artisan ranking pipeline against a local
// candidate fixture and prints the resulting page as JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"artisan-workers/internal/common/logger"
	"artisan-workers/internal/models"
	"artisan-workers/internal/ranking"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

var log logger.Logger = logger.NewNoOpLogger()

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "rank-preview:", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:   "rank-preview",
		Usage:  "Preview artisan search rankings from a candidate fixture",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "rank",
				Usage:  "Rank the fixture and print one page",
				Action: rankCommand,
				Flags: append(criteriaFlags(),
					&cli.IntFlag{
						Name:  "page",
						Usage: "Page number, starting at 1",
						Value: 1,
					},
					&cli.IntFlag{
						Name:  "page-size",
						Usage: "Artisans per page",
						Value: ranking.DefaultPageSize,
					},
					&cli.Uint64Flag{
						Name:  "seed",
						Usage: "Seed for reproducible shuffles",
					},
					&cli.StringFlag{
						Name:  "mode",
						Usage: "Pagination mode (full, capped)",
						Value: string(ranking.PaginateFullList),
					},
					&cli.IntFlag{
						Name:  "featured",
						Usage: "Number of random premium artisans placed first",
						Value: ranking.DefaultFeaturedPremium,
					},
				),
			},
			{
				Name:   "stats",
				Usage:  "Print tier counts for the fixture",
				Action: statsCommand,
				Flags:  criteriaFlags(),
			},
		},
	}
}

func criteriaFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "candidates",
			Aliases:  []string{"c"},
			Usage:    "Candidate fixture (.json, .yaml or .yml)",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "location",
			Usage: "Free-text city filter",
		},
		&cli.Float64Flag{
			Name:  "lat",
			Usage: "Latitude of the selected location",
		},
		&cli.Float64Flag{
			Name:  "lng",
			Usage: "Longitude of the selected location",
		},
		&cli.StringFlag{
			Name:  "place",
			Usage: "Name of the selected location",
		},
		&cli.StringFlag{
			Name:  "service",
			Usage: "Free-text prestation filter",
		},
		&cli.StringFlag{
			Name:  "prestation",
			Usage: "Resolved prestation, overrides --service",
		},
		&cli.StringFlag{
			Name:  "services",
			Usage: "Service catalog (YAML) used to resolve --service",
		},
		&cli.Float64Flag{
			Name:  "radius",
			Usage: "Search radius in km around the selected location",
			Value: ranking.DefaultRadiusKm,
		},
	}
}

func setupLogger(c *cli.Context) error {
	level := strings.ToLower(c.String("log-level"))
	switch level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.String("log-level"))
	}
	log = logger.NewWithOutput(level, "console", "stderr")
	return nil
}

func rankCommand(c *cli.Context) error {
	candidates, criteria, err := loadInputs(c)
	if err != nil {
		return err
	}

	mode, err := ranking.ParsePaginationMode(c.String("mode"))
	if err != nil {
		return err
	}

	ranker := ranking.NewRanker(ranking.Options{
		RadiusKm:        c.Float64("radius"),
		FeaturedPremium: c.Int("featured"),
		Mode:            mode,
	})

	req := ranking.Request{
		Candidates: candidates,
		Criteria:   criteria,
		Page:       c.Int("page"),
		PageSize:   c.Int("page-size"),
	}
	if c.IsSet("seed") {
		seed := c.Uint64("seed")
		req.Seed = &seed
	}

	result, err := ranker.Rank(context.Background(), req)
	if err != nil {
		return fmt.Errorf("rank: %w", err)
	}

	log.Debug("ranked fixture", map[string]interface{}{
		"candidates": len(candidates),
		"filtered":   result.TotalCount,
		"strategy":   result.Strategy,
	})

	return printJSON(c.App.Writer, rankOutput{
		Result:     result,
		Page:       max(req.Page, 1),
		TotalPages: ranking.TotalPages(result.TotalCount, req.PageSize),
	})
}

type rankOutput struct {
	models.Result
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
}

func statsCommand(c *cli.Context) error {
	candidates, criteria, err := loadInputs(c)
	if err != nil {
		return err
	}

	ranker := ranking.NewRanker(ranking.Options{RadiusKm: c.Float64("radius")})
	stats, err := ranker.Stats(context.Background(), candidates, criteria)
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	return printJSON(c.App.Writer, stats)
}

func loadInputs(c *cli.Context) ([]models.Candidate, models.Criteria, error) {
	candidates, err := loadCandidates(c.String("candidates"))
	if err != nil {
		return nil, models.Criteria{}, err
	}

	criteria := models.Criteria{
		LocationSearch:     c.String("location"),
		PrestationSearch:   c.String("service"),
		SelectedPrestation: c.String("prestation"),
	}

	switch {
	case c.IsSet("lat") && c.IsSet("lng"):
		criteria.SelectedLocation = &models.LocationPoint{
			Name: c.String("place"),
			Lat:  c.Float64("lat"),
			Lng:  c.Float64("lng"),
		}
	case c.IsSet("lat") || c.IsSet("lng"):
		return nil, models.Criteria{}, fmt.Errorf("--lat and --lng must be given together")
	}

	if path := c.String("services"); path != "" && criteria.SelectedPrestation == "" {
		catalog, err := loadCatalog(path)
		if err != nil {
			return nil, models.Criteria{}, err
		}
		if name, ok := catalog.Resolve(criteria.PrestationSearch); ok {
			criteria.SelectedPrestation = name
		}
	}

	return candidates, criteria, nil
}

// loadCandidates reads a list of candidates, either bare or under a
// top-level "candidates" key. YAML is normalized through JSON so both
// formats share the candidate field names.
func loadCandidates(path string) ([]models.Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read candidates: %w", err)
	}

	if ext := strings.ToLower(filepath.Ext(path)); ext == ".yaml" || ext == ".yml" {
		var doc interface{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if data, err = json.Marshal(doc); err != nil {
			return nil, fmt.Errorf("normalize %s: %w", path, err)
		}
	}

	var list []models.Candidate
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Candidates []models.Candidate `json:"candidates"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return wrapped.Candidates, nil
}

type catalogFile struct {
	Services []struct {
		Name    string   `yaml:"name"`
		Aliases []string `yaml:"aliases"`
	} `yaml:"services"`
}

func loadCatalog(path string) (*ranking.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read services: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	entries := make([]ranking.ServiceEntry, 0, len(file.Services))
	for _, s := range file.Services {
		entries = append(entries, ranking.ServiceEntry{Name: s.Name, Aliases: s.Aliases})
	}
	return ranking.NewCatalog(entries), nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
