package dataset

import (
	"fmt"
	"strings"
	"time"

	"github.com/mohith182/turbine-ai/internal/config"
)

// Load returns the configured telemetry. now anchors synthetic timestamps.
func Load(cfg config.DatasetConfig, now time.Time) ([]Reading, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Source)) {
	case "", "synthetic":
		return GenerateSynthetic(SyntheticOptions{
			Machines:         cfg.Machines,
			PointsPerMachine: cfg.PointsPerMachine,
			Seed:             cfg.Seed,
			Reference:        now,
		}), nil
	case "csv":
		if cfg.CSVPath == "" {
			return nil, fmt.Errorf("dataset.csv_path is required for csv source")
		}
		return LoadCSVFile(cfg.CSVPath)
	default:
		return nil, fmt.Errorf("unknown dataset source %q", cfg.Source)
	}
}
