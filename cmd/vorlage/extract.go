package main

import (
	"fmt"

	"github.com/gutachter/vorlage"
	"github.com/gutachter/vorlage/extract"
	"github.com/gutachter/vorlage/yaml"
)

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	cfg, err := yaml.LoadConfig(c.Config)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", vorlage.ErrorMessage(err))
		return err
	}
	if c.Concurrency > 0 {
		cfg.Concurrency = c.Concurrency
	}

	extractor := &extract.Extractor{
		Ingestor: deps.Ingestor,
		Profiles: deps.Profiles,
		Families: deps.Families,
		Specs:    deps.Specs,
		Config:   cfg,
		Logger:   deps.Logger,
	}

	progress := func(event extract.ProgressEvent) {
		switch event.Type {
		case extract.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "Analyzing %d documents\n", event.Total)
		case extract.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  skip %s: %v\n", event.File, event.Error)
		case extract.ProgressFinished:
			// Summary printed after extraction completes
		}
	}

	result, err := extractor.Run(deps.Ctx, c.InputDir, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", vorlage.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Ingested %d documents (%d failed)\n", result.Ingested, len(result.Failed))
	for _, family := range result.Families {
		fmt.Fprintf(deps.Stdout, "  %s  %d documents  %d anchors  %d slots  coverage %.0f%%  conflicts %d\n",
			family.FamilyID,
			len(family.Members),
			family.Anchors,
			family.Slots,
			family.Metrics.BoilerplateCoverage*100,
			family.Metrics.ConflictsFound,
		)
	}
	if len(result.Unclustered) > 0 {
		fmt.Fprintf(deps.Stdout, "  %d documents unclustered\n", len(result.Unclustered))
	}

	return nil
}
