package slog_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/gutachter/vorlage"
	"github.com/gutachter/vorlage/mock"
	vslog "github.com/gutachter/vorlage/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingIngestor_Ingest(t *testing.T) {
	t.Parallel()

	t.Run("logs file, paragraph count, and duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Ingestor{
			IngestFn: func(ctx context.Context, path string) (*vorlage.DocProfile, error) {
				return &vorlage.DocProfile{
					SourceFile:  "rente_mueller.docx",
					ExtractedAt: time.Now(),
					Paragraphs:  make([]vorlage.ParagraphRecord, 42),
				}, nil
			},
		}

		ingestor := vslog.NewLoggingIngestor(inner, logger)
		profile, err := ingestor.Ingest(context.Background(), "/corpus/rente_mueller.docx")

		require.NoError(t, err)
		assert.Equal(t, "rente_mueller.docx", profile.SourceFile)
		output := buf.String()
		assert.Contains(t, output, "document ingested")
		assert.Contains(t, output, "file=rente_mueller.docx")
		assert.Contains(t, output, "paragraphs=42")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Ingestor{
			IngestFn: func(ctx context.Context, path string) (*vorlage.DocProfile, error) {
				return nil, vorlage.Errorf(vorlage.EINVALID, "not a zip archive")
			},
		}

		ingestor := vslog.NewLoggingIngestor(inner, logger)
		_, err := ingestor.Ingest(context.Background(), "/corpus/kaputt.docx")

		require.Error(t, err)
		output := buf.String()
		assert.Contains(t, output, "document ingestion failed")
		assert.Contains(t, output, "path=/corpus/kaputt.docx")
		assert.Contains(t, output, "not a zip archive")
	})
}
