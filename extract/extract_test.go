package extract_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gutachter/vorlage"
	"github.com/gutachter/vorlage/extract"
	"github.com/gutachter/vorlage/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func para(text, style string) vorlage.ParagraphRecord {
	return vorlage.ParagraphRecord{
		Text:  text,
		Style: style,
		Norm:  vorlage.Normalize(text),
	}
}

// corpusProfile builds a profile with the shared Title/Anamnese/Diagnosen
// scaffold and two body paragraphs unique to the named document.
func corpusProfile(name string) *vorlage.DocProfile {
	return &vorlage.DocProfile{
		SourceFile: name,
		Paragraphs: []vorlage.ParagraphRecord{
			para("Medizinisches Gutachten", "Title"),
			para("Anamnese", "Heading 1"),
			para(fmt.Sprintf("Der in der Akte %s geführte Patient berichtet über langjährige Rückenbeschwerden.", name), "Normal"),
			para("Diagnosen", "Heading 1"),
			para(fmt.Sprintf("Chronisches Schmerzsyndrom, dokumentiert in der Untersuchung zu %s.", name), "Normal"),
		},
		Headers: []string{},
		Footers: []string{},
	}
}

func writeDummyDocs(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		err := os.WriteFile(filepath.Join(dir, name), []byte("placeholder"), 0o644)
		require.NoError(t, err)
	}
}

// captured records everything the pipeline persists. Ingestion workers
// save profiles concurrently, so every write takes the mutex.
type captured struct {
	mu       sync.Mutex
	profiles []*vorlage.DocProfile
	specs    []*vorlage.TemplateSpec
	bases    [][]byte
	families []vorlage.TemplateFamily
}

func newExtractor(rec *captured) *extract.Extractor {
	return &extract.Extractor{
		Ingestor: &mock.Ingestor{
			IngestFn: func(_ context.Context, path string) (*vorlage.DocProfile, error) {
				return corpusProfile(filepath.Base(path)), nil
			},
		},
		Profiles: &mock.ProfileStore{
			SaveProfileFn: func(_ context.Context, profile *vorlage.DocProfile) error {
				rec.mu.Lock()
				defer rec.mu.Unlock()
				rec.profiles = append(rec.profiles, profile)
				return nil
			},
		},
		Specs: &mock.SpecStore{
			SaveSpecFn: func(_ context.Context, spec *vorlage.TemplateSpec, base []byte) error {
				rec.mu.Lock()
				defer rec.mu.Unlock()
				rec.specs = append(rec.specs, spec)
				rec.bases = append(rec.bases, base)
				return nil
			},
		},
		Families: &mock.FamilyStore{
			SaveFamiliesFn: func(_ context.Context, families []vorlage.TemplateFamily) error {
				rec.mu.Lock()
				defer rec.mu.Unlock()
				rec.families = families
				return nil
			},
		},
		Config: vorlage.DefaultConfig(),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestExtractorRun(t *testing.T) {
	t.Parallel()

	t.Run("extracts one family from a uniform corpus", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeDummyDocs(t, dir, "a.docx", "b.docx", "c.docx")
		var rec captured
		e := newExtractor(&rec)

		result, err := e.Run(context.Background(), dir, nil)
		require.NoError(t, err)

		assert.Equal(t, 3, result.Ingested)
		assert.Empty(t, result.Failed)
		assert.Empty(t, result.Unclustered)
		require.Len(t, result.Families, 1)

		fam := result.Families[0]
		assert.Regexp(t, `^family_[0-9a-f]{16}$`, fam.FamilyID)
		assert.Equal(t, "Gutachten (a)", fam.FamilyName)
		assert.Equal(t, []string{"a.docx", "b.docx", "c.docx"}, fam.Members)
		assert.Equal(t, 2, fam.Anchors)
		assert.Equal(t, 3, fam.Slots)
		assert.Equal(t, 3, fam.Metrics.DocumentsAnalyzed)
		assert.InDelta(t, 0.6, fam.Metrics.BoilerplateCoverage, 0.001)
		assert.Equal(t, 0, fam.Metrics.ConflictsFound)

		assert.Len(t, rec.profiles, 3)
		require.Len(t, rec.specs, 1)

		spec := rec.specs[0]
		assert.Equal(t, fam.FamilyID, spec.FamilyID)
		assert.Equal(t, "1.0", spec.Version)
		assert.Equal(t, []string{"vorspann_body", "anamnese_body", "diagnosen_body"}, spec.Skeleton.SlotIDs())

		require.Len(t, spec.Anchors, 2)
		assert.Equal(t, "Anamnese", spec.Anchors[0].CanonicalText)
		assert.Equal(t, "Diagnosen", spec.Anchors[1].CanonicalText)
		assert.InDelta(t, 1.0, spec.Anchors[0].Coverage, 0.001)
		assert.Equal(t, "Heading 1", spec.Anchors[0].Style)

		assert.Equal(t, "Title", spec.StyleRoles[vorlage.RoleTitle])
		assert.Equal(t, "Heading 1", spec.StyleRoles[vorlage.RoleH1])
		assert.Equal(t, "Normal", spec.StyleRoles[vorlage.RoleBody])
		assert.Equal(t, 12.0, spec.Rules.SpacingAfterHeading)
		assert.NotEmpty(t, rec.bases[0])

		require.Len(t, rec.families, 1)
		assert.Equal(t, fam.FamilyID, rec.families[0].FamilyID)
		assert.Equal(t, []string{"a.docx", "b.docx", "c.docx"}, rec.families[0].Members)
	})

	t.Run("produces identical artifacts across runs", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeDummyDocs(t, dir, "a.docx", "b.docx", "c.docx")

		var first, second captured
		_, err := newExtractor(&first).Run(context.Background(), dir, nil)
		require.NoError(t, err)
		_, err = newExtractor(&second).Run(context.Background(), dir, nil)
		require.NoError(t, err)

		require.Len(t, first.specs, 1)
		require.Len(t, second.specs, 1)
		assert.Equal(t, first.specs[0], second.specs[0])
		assert.Equal(t, first.bases[0], second.bases[0])
		assert.Equal(t, first.families, second.families)
	})

	t.Run("skips word lock files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeDummyDocs(t, dir, "a.docx", "b.docx", "c.docx", "~$a.docx")
		var rec captured
		e := newExtractor(&rec)

		var mu sync.Mutex
		var ingested []string
		e.Ingestor = &mock.Ingestor{
			IngestFn: func(_ context.Context, path string) (*vorlage.DocProfile, error) {
				mu.Lock()
				ingested = append(ingested, filepath.Base(path))
				mu.Unlock()
				return corpusProfile(filepath.Base(path)), nil
			},
		}

		result, err := e.Run(context.Background(), dir, nil)
		require.NoError(t, err)

		assert.Equal(t, 3, result.Ingested)
		for _, name := range ingested {
			assert.False(t, strings.HasPrefix(name, "~$"), "lock file %s was ingested", name)
		}
	})

	t.Run("reports progress events in order", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeDummyDocs(t, dir, "a.docx", "b.docx", "c.docx")
		var rec captured
		e := newExtractor(&rec)

		var events []extract.ProgressEvent
		_, err := e.Run(context.Background(), dir, func(event extract.ProgressEvent) {
			events = append(events, event)
		})
		require.NoError(t, err)

		require.Len(t, events, 5)
		assert.Equal(t, extract.ProgressStarted, events[0].Type)
		assert.Equal(t, 3, events[0].Total)

		completed := make(map[int]bool)
		files := make(map[string]bool)
		for _, event := range events[1:4] {
			assert.Equal(t, extract.ProgressIngested, event.Type)
			completed[event.Completed] = true
			files[event.File] = true
		}
		assert.Equal(t, map[int]bool{1: true, 2: true, 3: true}, completed)
		assert.Equal(t, map[string]bool{"a.docx": true, "b.docx": true, "c.docx": true}, files)

		assert.Equal(t, extract.ProgressFinished, events[4].Type)
		assert.Equal(t, 3, events[4].Completed)
	})

	t.Run("tolerates ingest failures above the corpus minimum", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeDummyDocs(t, dir, "a.docx", "b.docx", "c.docx", "d.docx")
		var rec captured
		e := newExtractor(&rec)
		e.Ingestor = &mock.Ingestor{
			IngestFn: func(_ context.Context, path string) (*vorlage.DocProfile, error) {
				if filepath.Base(path) == "d.docx" {
					return nil, vorlage.Errorf(vorlage.EINVALID, "not a zip archive")
				}
				return corpusProfile(filepath.Base(path)), nil
			},
		}

		result, err := e.Run(context.Background(), dir, nil)
		require.NoError(t, err)

		assert.Equal(t, 3, result.Ingested)
		require.Len(t, result.Failed, 1)
		assert.Equal(t, "d.docx", result.Failed[0].File)
		require.Len(t, result.Families, 1)
		assert.Equal(t, []string{"a.docx", "b.docx", "c.docx"}, result.Families[0].Members)
	})

	t.Run("fails when too few documents survive ingestion", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeDummyDocs(t, dir, "a.docx", "b.docx", "c.docx")
		var rec captured
		e := newExtractor(&rec)
		e.Ingestor = &mock.Ingestor{
			IngestFn: func(_ context.Context, path string) (*vorlage.DocProfile, error) {
				if filepath.Base(path) != "a.docx" {
					return nil, vorlage.Errorf(vorlage.EINVALID, "not a zip archive")
				}
				return corpusProfile("a.docx"), nil
			},
		}

		result, err := e.Run(context.Background(), dir, nil)
		require.Error(t, err)
		assert.Nil(t, result)
		assert.Equal(t, vorlage.ECORPUS, vorlage.ErrorCode(err))
		assert.Contains(t, vorlage.ErrorMessage(err), "b.docx")
	})

	t.Run("fails on a directory without documents", func(t *testing.T) {
		t.Parallel()

		var rec captured
		e := newExtractor(&rec)

		_, err := e.Run(context.Background(), t.TempDir(), nil)
		require.Error(t, err)
		assert.Equal(t, vorlage.ECORPUS, vorlage.ErrorCode(err))
	})

	t.Run("rejects an unknown similarity metric", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeDummyDocs(t, dir, "a.docx", "b.docx", "c.docx")
		var rec captured
		e := newExtractor(&rec)
		e.Config.Similarity = "cosine"

		_, err := e.Run(context.Background(), dir, nil)
		require.Error(t, err)
		assert.Equal(t, vorlage.EINVALID, vorlage.ErrorCode(err))
	})

	t.Run("propagates spec store failures", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeDummyDocs(t, dir, "a.docx", "b.docx", "c.docx")
		var rec captured
		e := newExtractor(&rec)
		e.Specs = &mock.SpecStore{
			SaveSpecFn: func(_ context.Context, _ *vorlage.TemplateSpec, _ []byte) error {
				return vorlage.Errorf(vorlage.EINTERNAL, "disk full")
			},
		}

		_, err := e.Run(context.Background(), dir, nil)
		require.Error(t, err)
	})
}
