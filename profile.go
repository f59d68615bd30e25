package vorlage

import (
	"context"
	"time"
)

// ListInfo describes the list/numbering metadata of a paragraph.
type ListInfo struct {
	IsList bool `json:"is_list"`
	Level  int  `json:"level,omitempty"`
}

// Spacing holds the spacing and indentation metrics of a paragraph, in
// points. Zero values mean the document did not specify the property.
type Spacing struct {
	Before     float64 `json:"before,omitempty"`
	After      float64 `json:"after,omitempty"`
	LeftIndent float64 `json:"left_indent,omitempty"`
}

// ParagraphRecord is one paragraph of a source document, in reading order.
// Records are immutable once created; the normalized variants are computed
// at ingestion time and persisted alongside the original text.
type ParagraphRecord struct {
	Text         string   `json:"text"`
	Style        string   `json:"style"`
	OutlineLevel int      `json:"outline_level,omitempty"`
	List         ListInfo `json:"list"`
	Spacing      Spacing  `json:"spacing"`
	Norm         Variants `json:"norm"`
}

// Fingerprint returns the paragraph's structural identity: its style name
// paired with a hash of the date-normalized text. Two paragraphs with the
// same fingerprint are considered structurally identical regardless of
// dates.
func (p *ParagraphRecord) Fingerprint() Fingerprint {
	return NewFingerprint(p.Style, p.Norm.NoDates)
}

// DocProfile is the parsed representation of one source document: its
// paragraphs in reading order plus header/footer text per section. Profiles
// are created once during ingestion, cached to disk, and never re-derived
// during threshold tuning.
type DocProfile struct {
	SourceFile  string            `json:"source_file"`
	ExtractedAt time.Time         `json:"extracted_at"`
	Paragraphs  []ParagraphRecord `json:"paragraphs"`
	Headers     []string          `json:"headers"`
	Footers     []string          `json:"footers"`
}

// Validate returns an error if the profile contains invalid fields.
func (p *DocProfile) Validate() error {
	if p.SourceFile == "" {
		return Errorf(EINVALID, "profile source file required")
	}
	return nil
}

// StyleHistogram returns the count of paragraphs per style name.
func (p *DocProfile) StyleHistogram() map[string]int {
	hist := make(map[string]int)
	for i := range p.Paragraphs {
		hist[p.Paragraphs[i].Style]++
	}
	return hist
}

// Fingerprints returns the ordered fingerprint keys of all paragraphs.
func (p *DocProfile) Fingerprints() []string {
	keys := make([]string, len(p.Paragraphs))
	for i := range p.Paragraphs {
		keys[i] = p.Paragraphs[i].Fingerprint().String()
	}
	return keys
}

// Ingestor parses one source document into a DocProfile.
// Implementations hide the underlying file format.
type Ingestor interface {
	Ingest(ctx context.Context, path string) (*DocProfile, error)
}

// ProfileStore persists DocProfiles so later phases never re-parse the
// source documents.
type ProfileStore interface {
	// SaveProfile writes one profile, keyed by its source file stem.
	SaveProfile(ctx context.Context, profile *DocProfile) error

	// LoadProfiles reads all persisted profiles, ordered by source file
	// name.
	LoadProfiles(ctx context.Context) ([]*DocProfile, error)
}
