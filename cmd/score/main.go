// Command score runs the scoring pipeline once against a biomarker panel
// from a JSON file and prints the report. Useful for offline analysis and
// for eyeballing catalog changes without standing up the server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/longevity-score-server/internal/catalog"
	"github.com/longevity-score-server/internal/domain"
	"github.com/longevity-score-server/internal/service"
)

func main() {
	var (
		inputPath   = flag.String("input", "", "path to a JSON file with a measurements array")
		catalogPath = flag.String("catalog", "data/biomarkers_database.json", "path to the biomarker evidence database")
		age         = flag.Int("age", 0, "user age in years")
		gender      = flag.String("gender", "", "user gender (optional)")
		pretty      = flag.Bool("pretty", true, "indent the JSON output")
		verbose     = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	if *inputPath == "" || *age <= 0 {
		fmt.Fprintln(os.Stderr, "usage: score -input panel.json -age 45 [-gender female] [-catalog data/biomarkers_database.json]")
		os.Exit(2)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	data, err := os.ReadFile(*inputPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to read input file")
	}
	var measurements []domain.BiomarkerMeasurement
	if err := json.Unmarshal(data, &measurements); err != nil {
		logger.WithError(err).Fatal("Failed to parse measurements")
	}

	cat, err := catalog.Load(*catalogPath, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load biomarker catalog")
	}

	scorer := service.NewScoringService(cat, nil, nil, logger)
	resp, err := scorer.Score(context.Background(), &domain.ScoreRequest{
		UserAge:      *age,
		UserGender:   *gender,
		Measurements: measurements,
	})
	if err != nil {
		logger.WithError(err).Fatal("Scoring failed")
	}

	encoder := json.NewEncoder(os.Stdout)
	if *pretty {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(resp); err != nil {
		logger.WithError(err).Fatal("Failed to encode report")
	}
}
