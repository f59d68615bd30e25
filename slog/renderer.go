package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/gutachter/vorlage"
)

// Ensure LoggingRenderer implements vorlage.Renderer.
var _ vorlage.Renderer = (*LoggingRenderer)(nil)

// LoggingRenderer wraps a Renderer with timing and outcome logging.
type LoggingRenderer struct {
	next   vorlage.Renderer
	logger *slog.Logger
}

// NewLoggingRenderer creates a new LoggingRenderer.
func NewLoggingRenderer(next vorlage.Renderer, logger *slog.Logger) *LoggingRenderer {
	return &LoggingRenderer{next: next, logger: logger}
}

// Render delegates to the wrapped renderer and logs the outcome.
func (r *LoggingRenderer) Render(ctx context.Context, spec *vorlage.TemplateSpec, content *vorlage.StructuredContent, outputPath string) (*vorlage.RenderResult, error) {
	begin := time.Now()
	result, err := r.next.Render(ctx, spec, content, outputPath)
	if err != nil {
		r.logger.Error("render failed",
			"family_id", spec.FamilyID,
			"output", outputPath,
			"duration", time.Since(begin),
			"error", err,
		)
		return nil, err
	}
	r.logger.Info("render complete",
		"family_id", spec.FamilyID,
		"output", result.OutputPath,
		"unclear", result.UnclearCount,
		"missing_sections", len(result.MissingSections),
		"duration", time.Since(begin),
	)
	return result, nil
}
