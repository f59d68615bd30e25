// Package slog provides logging decorators for the domain interfaces,
// built on the standard library's log/slog.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/gutachter/vorlage"
)

// Ensure LoggingIngestor implements vorlage.Ingestor.
var _ vorlage.Ingestor = (*LoggingIngestor)(nil)

// LoggingIngestor wraps an Ingestor with per-document timing and outcome
// logging.
type LoggingIngestor struct {
	next   vorlage.Ingestor
	logger *slog.Logger
}

// NewLoggingIngestor creates a new LoggingIngestor.
func NewLoggingIngestor(next vorlage.Ingestor, logger *slog.Logger) *LoggingIngestor {
	return &LoggingIngestor{next: next, logger: logger}
}

// Ingest delegates to the wrapped ingestor and logs the outcome.
func (i *LoggingIngestor) Ingest(ctx context.Context, path string) (*vorlage.DocProfile, error) {
	begin := time.Now()
	profile, err := i.next.Ingest(ctx, path)
	if err != nil {
		i.logger.Error("document ingestion failed",
			"path", path,
			"duration", time.Since(begin),
			"error", err,
		)
		return nil, err
	}
	i.logger.Info("document ingested",
		"file", profile.SourceFile,
		"paragraphs", len(profile.Paragraphs),
		"duration", time.Since(begin),
	)
	return profile, nil
}
