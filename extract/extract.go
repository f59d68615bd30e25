// Package extract implements the offline template extraction pipeline.
// It coordinates concurrent document ingestion, boilerplate detection,
// family clustering, skeleton construction, and template spec emission.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/gutachter/vorlage"
	"github.com/gutachter/vorlage/docx"
	"golang.org/x/sync/errgroup"
)

// Extractor orchestrates the extraction pipeline over a corpus directory.
type Extractor struct {
	Ingestor vorlage.Ingestor
	Profiles vorlage.ProfileStore
	Families vorlage.FamilyStore
	Specs    vorlage.SpecStore
	Config   vorlage.Config
	Logger   *slog.Logger
}

// FailedDocument records one document that could not be ingested. Failures
// are non-fatal: the document is skipped and excluded from frequency
// counts.
type FailedDocument struct {
	File string
	Err  error
}

// FamilySummary reports one extracted family.
type FamilySummary struct {
	FamilyID   string
	FamilyName string
	Members    []string
	Anchors    int
	Slots      int
	Metrics    vorlage.QualityMetrics
}

// Result holds the outcome of an extraction run.
type Result struct {
	Ingested    int
	Failed      []FailedDocument
	Families    []FamilySummary
	Unclustered []string
}

// ProgressType indicates the type of progress event.
type ProgressType int

// Progress event types.
const (
	ProgressStarted ProgressType = iota
	ProgressIngested
	ProgressFailed
	ProgressFinished
)

// ProgressEvent reports progress during extraction.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	File      string
	Error     error
}

// ProgressFunc is a callback for reporting extraction progress.
type ProgressFunc func(event ProgressEvent)

// ingestResult holds the outcome of ingesting a single document, including
// the worker's partial fingerprint counts.
type ingestResult struct {
	position int
	file     string
	profile  *vorlage.DocProfile
	counts   countMap
	err      error
}

// Run executes the full pipeline over the .docx files in inputDir.
// Ingestion runs on a bounded worker pool; every later phase operates on
// the aggregated, immutable results after the join barrier. Extraction
// completes whenever the minimum corpus size is met, annotated with the
// conflicts found; it fails only when too few documents survive ingestion.
func (e *Extractor) Run(ctx context.Context, inputDir string, progress ProgressFunc) (*Result, error) {
	logger := e.logger().With("run_id", runID())

	files, err := listCorpus(inputDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, vorlage.Errorf(vorlage.ECORPUS, "no .docx files in %q", inputDir)
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: len(files)})
	}

	results := e.ingestAll(ctx, files, progress)

	result := &Result{}
	var profiles []*vorlage.DocProfile
	var partials []countMap
	for _, r := range results {
		if r.err != nil {
			result.Failed = append(result.Failed, FailedDocument{File: r.file, Err: r.err})
			logger.Warn("document skipped", "file", r.file, "error", r.err)
			continue
		}
		profiles = append(profiles, r.profile)
		partials = append(partials, r.counts)
	}
	result.Ingested = len(profiles)

	if len(profiles) < e.Config.MinCorpusSize {
		return nil, vorlage.Errorf(vorlage.ECORPUS,
			"only %d of %d documents ingested, need at least %d (failed: %s)",
			len(profiles), len(files), e.Config.MinCorpusSize, failedFiles(result.Failed))
	}

	sim := vorlage.SimilarityByName(e.Config.Similarity)
	if sim == nil {
		return nil, vorlage.Errorf(vorlage.EINVALID, "unknown similarity metric %q", e.Config.Similarity)
	}

	// Join barrier passed: fold the per-worker partial counts.
	merged := mergeCounts(partials)
	globalClass := classify(merged, len(profiles), e.Config)

	clusters, unclustered := clusterProfiles(profiles, globalClass, e.Config)
	for _, profile := range unclustered {
		result.Unclustered = append(result.Unclustered, profile.SourceFile)
		logger.Warn("document unclustered", "file", profile.SourceFile)
	}

	partialOf := make(map[*vorlage.DocProfile]countMap, len(profiles))
	for i, profile := range profiles {
		partialOf[profile] = partials[i]
	}

	families := make([]vorlage.TemplateFamily, 0, len(clusters)+1)
	for _, c := range clusters {
		id := familyID(c, globalClass)
		summary, spec, err := e.extractFamily(ctx, id, c, partialOf, sim)
		if err != nil {
			return nil, fmt.Errorf("extract family %s: %w", id, err)
		}

		base, err := docx.MarshalBaseTemplate(spec)
		if err != nil {
			return nil, fmt.Errorf("base template for %s: %w", id, err)
		}
		if err := e.Specs.SaveSpec(ctx, spec, base); err != nil {
			return nil, err
		}

		result.Families = append(result.Families, *summary)
		families = append(families, vorlage.TemplateFamily{
			FamilyID:   id,
			FamilyName: spec.FamilyName,
			Members:    summary.Members,
		})
		logger.Info("family extracted",
			"family_id", id,
			"documents", len(summary.Members),
			"anchors", summary.Anchors,
			"boilerplate_coverage", summary.Metrics.BoilerplateCoverage,
			"conflicts", summary.Metrics.ConflictsFound,
		)
	}

	sortFamilies(result.Families, families)
	if len(result.Unclustered) > 0 {
		families = append(families, vorlage.TemplateFamily{
			FamilyID:   vorlage.UnclusteredFamilyID,
			FamilyName: "Unclustered",
			Members:    append([]string(nil), result.Unclustered...),
		})
	}
	if err := e.Families.SaveFamilies(ctx, families); err != nil {
		return nil, err
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Completed: len(files), Total: len(files)})
	}
	return result, nil
}

// ingestAll parses every file on a bounded worker pool. Each worker
// produces an isolated DocProfile and its partial fingerprint counts; the
// pool never shares mutable state.
func (e *Extractor) ingestAll(ctx context.Context, files []string, progress ProgressFunc) []ingestResult {
	concurrency := e.Config.Concurrency
	if concurrency <= 0 {
		concurrency = 8
	}

	resultCh := make(chan ingestResult, len(files))

	var completed atomic.Int64
	total := len(files)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for i, file := range files {
			i, file := i, file
			g.Go(func() error {
				resultCh <- e.ingestOne(gctx, i, file)
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	results := make([]ingestResult, len(files))
	for r := range resultCh {
		completed.Add(1)
		results[r.position] = r

		if progress == nil {
			continue
		}
		event := ProgressEvent{
			Completed: int(completed.Load()),
			Total:     total,
			File:      r.file,
		}
		if r.err != nil {
			event.Type = ProgressFailed
			event.Error = r.err
		} else {
			event.Type = ProgressIngested
		}
		progress(event)
	}
	return results
}

func (e *Extractor) ingestOne(ctx context.Context, position int, file string) ingestResult {
	result := ingestResult{position: position, file: filepath.Base(file)}

	profile, err := e.Ingestor.Ingest(ctx, file)
	if err != nil {
		result.err = err
		return result
	}
	if err := e.Profiles.SaveProfile(ctx, profile); err != nil {
		result.err = err
		return result
	}

	result.profile = profile
	result.counts = countFingerprints(position, profile)
	return result
}

// extractFamily runs the per-family phases on already-aggregated data.
func (e *Extractor) extractFamily(ctx context.Context, id string, c *cluster, partialOf map[*vorlage.DocProfile]countMap, sim vorlage.SimilarityFunc) (*FamilySummary, *vorlage.TemplateSpec, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	members := c.members
	famPartials := make([]countMap, len(members))
	for i, member := range members {
		famPartials[i] = partialOf[member]
	}

	famClass := classify(mergeCounts(famPartials), len(members), e.Config)
	sequences := detectSequences(members, famClass, e.Config)
	anchors := findAnchors(members, e.Config, sim)
	skeleton := buildSkeleton(members, anchors, famClass, sequences, e.Config, sim)

	// A family whose documents expose no recognizable section headings
	// still gets a renderable template: one slot for the whole body.
	if len(skeleton) == 0 {
		skeleton = vorlage.TemplateSkeleton{{
			Type: vorlage.ItemSlot,
			Slot: &vorlage.Slot{
				SlotID:        "inhalt_body",
				SectionName:   "Inhalt",
				AllowedStyles: []vorlage.StyleRole{vorlage.RoleBody, vorlage.RoleBullet},
				ListBehavior:  vorlage.ListBulletsAllowed,
			},
		}}
	}

	kopfzeile, fusszeile := extractHeaderFooter(members)

	spec := &vorlage.TemplateSpec{
		Version:    "1.0",
		FamilyID:   id,
		FamilyName: familyName(members),
		Anchors:    anchors,
		Skeleton:   skeleton,
		StyleRoles: extractStyleRoles(members),
		Kopfzeile:  kopfzeile,
		Fusszeile:  fusszeile,
		Rules: vorlage.RenderRules{
			SpacingAfterHeading:    12,
			SpacingAfterParagraph:  6,
			BlankLineBeforeSection: true,
		},
		Metrics: vorlage.QualityMetrics{
			DocumentsAnalyzed:   len(members),
			BoilerplateCoverage: boilerplateCoverage(members, famClass),
			ConflictsFound:      famClass.conflicts,
		},
	}
	if err := spec.Validate(); err != nil {
		return nil, nil, err
	}

	memberNames := make([]string, len(members))
	for i, member := range members {
		memberNames[i] = member.SourceFile
	}

	summary := &FamilySummary{
		FamilyID:   id,
		FamilyName: spec.FamilyName,
		Members:    memberNames,
		Anchors:    len(anchors),
		Slots:      len(skeleton.SlotIDs()),
		Metrics:    spec.Metrics,
	}
	return summary, spec, nil
}

// familyName derives a readable name from the first member document.
func familyName(members []*vorlage.DocProfile) string {
	if len(members) == 0 {
		return "Gutachten"
	}
	stem := strings.TrimSuffix(members[0].SourceFile, filepath.Ext(members[0].SourceFile))
	return "Gutachten (" + stem + ")"
}

// listCorpus returns the sorted .docx files of a directory, skipping Word
// lock files ("~$...").
func listCorpus(inputDir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(inputDir, "*.docx"))
	if err != nil {
		return nil, err
	}
	files := matches[:0]
	for _, m := range matches {
		if !strings.HasPrefix(filepath.Base(m), "~$") {
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

func sortFamilies(summaries []FamilySummary, families []vorlage.TemplateFamily) {
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].FamilyID < summaries[j].FamilyID })
	sort.Slice(families, func(i, j int) bool { return families[i].FamilyID < families[j].FamilyID })
}

func failedFiles(failed []FailedDocument) string {
	if len(failed) == 0 {
		return "none"
	}
	names := make([]string, len(failed))
	for i, f := range failed {
		names[i] = f.File
	}
	return strings.Join(names, ", ")
}

func (e *Extractor) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// runID tags one extraction run's log lines.
func runID() string {
	return uuid.NewString()[:8]
}
