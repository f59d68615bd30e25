package vorlage

import (
	"context"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint is the structural equality key of a paragraph: its style name
// paired with an xxhash of the date-normalized text.
type Fingerprint struct {
	Style    string `json:"style"`
	TextHash string `json:"text_hash"`
}

// NewFingerprint computes the fingerprint for a style name and the NoDates
// variant of a paragraph's text.
func NewFingerprint(style, noDatesText string) Fingerprint {
	return Fingerprint{
		Style:    style,
		TextHash: fmt.Sprintf("%016x", xxhash.Sum64String(noDatesText)),
	}
}

// String renders the fingerprint as a stable "style:hash" key suitable for
// use in maps and JSON artifacts.
func (f Fingerprint) String() string {
	return f.Style + ":" + f.TextHash
}

// StyleRole is the logical role of a paragraph style. Roles are mapped to
// concrete style names per family via a StyleRoleMap, so templates never
// carry stringly-typed style names in slots.
type StyleRole string

// Style roles recognized by the renderer.
const (
	RoleTitle  StyleRole = "TITLE"
	RoleH1     StyleRole = "H1"
	RoleH2     StyleRole = "H2"
	RoleH3     StyleRole = "H3"
	RoleBody   StyleRole = "BODY"
	RoleBullet StyleRole = "BULLET"
)

// Valid reports whether the role is one of the recognized constants.
func (r StyleRole) Valid() bool {
	switch r {
	case RoleTitle, RoleH1, RoleH2, RoleH3, RoleBody, RoleBullet:
		return true
	}
	return false
}

// StyleRoleMap maps style roles to concrete style names for one family.
type StyleRoleMap map[StyleRole]string

// Resolve returns the concrete style name for a role, falling back to the
// BODY mapping and finally to "Normal" when the map has no entry.
func (m StyleRoleMap) Resolve(role StyleRole) string {
	if name, ok := m[role]; ok && name != "" {
		return name
	}
	if name, ok := m[RoleBody]; ok && name != "" {
		return name
	}
	return "Normal"
}

// FixedParagraph is one verbatim paragraph of a FixedBlock.
type FixedParagraph struct {
	Text         string  `json:"text"`
	Style        string  `json:"style"`
	SpacingAfter float64 `json:"spacing_after,omitempty"`
}

// FixedBlock is an ordered run of boilerplate paragraphs that co-occurs, in
// that order, in at least the configured fraction of a family's documents.
// The renderer emits it verbatim as an atomic unit.
type FixedBlock struct {
	ID           string           `json:"id"`
	Fingerprints []string         `json:"fingerprints"`
	Paragraphs   []FixedParagraph `json:"paragraphs"`
	Coverage     float64          `json:"coverage"`
}

// ListBehavior controls whether slot content may render as bullet lists.
type ListBehavior string

// List behaviors for slots.
const (
	ListNone           ListBehavior = "none"
	ListBulletsAllowed ListBehavior = "bullets_allowed"
)

// Slot is a named variable content region between two fixed blocks (or the
// document boundaries), filled at render time.
type Slot struct {
	SlotID        string       `json:"slot_id"`
	SectionName   string       `json:"section_name"`
	AllowedStyles []StyleRole  `json:"allowed_styles"`
	ListBehavior  ListBehavior `json:"list_behavior"`
	Optional      bool         `json:"optional"`
}

// Allows reports whether content may request the given role in this slot.
func (s *Slot) Allows(role StyleRole) bool {
	for _, allowed := range s.AllowedStyles {
		if allowed == role {
			return true
		}
	}
	return false
}

// MatchMode selects how anchor text is compared at analysis time.
type MatchMode string

// Anchor match modes.
const (
	MatchExact      MatchMode = "exact"
	MatchNormalized MatchMode = "normalized"
	MatchFuzzy      MatchMode = "fuzzy"
)

// Anchor is a heading-like fixed block promoted to a section boundary
// marker. Fuzzy anchors accept candidates scoring at least MinSimilarity;
// exact ties between candidates are resolved by earliest document position.
type Anchor struct {
	ID            string    `json:"id"`
	CanonicalText string    `json:"canonical_text"`
	MatchMode     MatchMode `json:"match_mode"`
	MinSimilarity float64   `json:"min_similarity,omitempty"`
	VariantsSeen  []string  `json:"variants_seen"`
	Coverage      float64   `json:"coverage"`
	Style         string    `json:"style"`
}

// Skeleton item types.
const (
	ItemFixed = "fixed"
	ItemSlot  = "slot"
)

// SkeletonItem is one entry of a TemplateSkeleton: either a fixed block or
// a slot, never both.
type SkeletonItem struct {
	Type  string      `json:"type"`
	Fixed *FixedBlock `json:"fixed,omitempty"`
	Slot  *Slot       `json:"slot,omitempty"`
}

// TemplateSkeleton is the ordered structure of one family's documents.
// Ordering is fixed after extraction; the renderer never reorders, merges,
// or drops items.
type TemplateSkeleton []SkeletonItem

// Validate checks structural integrity: every item is tagged consistently
// and slot IDs are unique.
func (sk TemplateSkeleton) Validate() error {
	seen := make(map[string]bool)
	for i, item := range sk {
		switch item.Type {
		case ItemFixed:
			if item.Fixed == nil {
				return Errorf(EINVALID, "skeleton item %d: fixed item without block", i)
			}
		case ItemSlot:
			if item.Slot == nil {
				return Errorf(EINVALID, "skeleton item %d: slot item without slot", i)
			}
			if seen[item.Slot.SlotID] {
				return Errorf(ECONFLICT, "duplicate slot ID %q", item.Slot.SlotID)
			}
			seen[item.Slot.SlotID] = true
		default:
			return Errorf(EINVALID, "skeleton item %d: unknown type %q", i, item.Type)
		}
	}
	return nil
}

// SlotIDs returns the slot IDs in skeleton order.
func (sk TemplateSkeleton) SlotIDs() []string {
	var ids []string
	for _, item := range sk {
		if item.Type == ItemSlot && item.Slot != nil {
			ids = append(ids, item.Slot.SlotID)
		}
	}
	return ids
}

// HeaderFooter is the literal header or footer text of a family, split
// into the three tab stops Word documents conventionally use.
type HeaderFooter struct {
	Left   string `json:"left"`
	Center string `json:"center"`
	Right  string `json:"right"`
}

// Empty reports whether no part carries text.
func (h HeaderFooter) Empty() bool {
	return h.Left == "" && h.Center == "" && h.Right == ""
}

// Text joins the non-empty parts with tabs, the inverse of the tab split
// applied at extraction time.
func (h HeaderFooter) Text() string {
	parts := []string{h.Left, h.Center, h.Right}
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, "\t")
}

// RenderRules are the family-wide spacing conventions applied by the
// renderer, in points.
type RenderRules struct {
	SpacingAfterHeading    float64 `json:"spacing_after_heading"`
	SpacingAfterParagraph  float64 `json:"spacing_after_paragraph"`
	BlankLineBeforeSection bool    `json:"blank_line_before_section"`
}

// QualityMetrics summarizes how well extraction fit the corpus.
type QualityMetrics struct {
	DocumentsAnalyzed   int     `json:"documents_analyzed"`
	BoilerplateCoverage float64 `json:"boilerplate_coverage"`
	ConflictsFound      int     `json:"conflicts_found"`
}

// TemplateSpec is the persisted extraction artifact for one family.
// A loaded spec is read-only and may be shared across concurrent renders.
type TemplateSpec struct {
	Version    string           `json:"version"`
	FamilyID   string           `json:"family_id"`
	FamilyName string           `json:"family_name"`
	Anchors    []Anchor         `json:"anchors"`
	Skeleton   TemplateSkeleton `json:"skeleton"`
	StyleRoles StyleRoleMap     `json:"style_roles"`
	Kopfzeile  HeaderFooter     `json:"kopfzeile"`
	Fusszeile  HeaderFooter     `json:"fusszeile"`
	Rules      RenderRules      `json:"render_rules"`
	Metrics    QualityMetrics   `json:"quality_metrics"`
}

// Validate returns an error if the spec is structurally unsound.
func (t *TemplateSpec) Validate() error {
	if t.FamilyID == "" {
		return Errorf(EINVALID, "template spec family ID required")
	}
	if len(t.Skeleton) == 0 {
		return Errorf(EINVALID, "template spec skeleton empty")
	}
	return t.Skeleton.Validate()
}

// FindSlot returns the slot with the given ID, or nil.
func (t *TemplateSpec) FindSlot(slotID string) *Slot {
	for _, item := range t.Skeleton {
		if item.Type == ItemSlot && item.Slot != nil && item.Slot.SlotID == slotID {
			return item.Slot
		}
	}
	return nil
}

// UnclusteredFamilyID names the bucket for documents that fit no family
// above the similarity floor. It never gets a TemplateSpec.
const UnclusteredFamilyID = "unclustered"

// TemplateFamily is a cluster of documents sharing one structural template.
type TemplateFamily struct {
	FamilyID   string   `json:"family_id"`
	FamilyName string   `json:"family_name"`
	Members    []string `json:"members"`
}

// SpecStore persists TemplateSpecs and their base style documents, keyed
// by family ID. Re-runs overwrite prior versions.
type SpecStore interface {
	SaveSpec(ctx context.Context, spec *TemplateSpec, baseTemplate []byte) error
	LoadSpec(ctx context.Context, familyID string) (*TemplateSpec, error)
	ListFamilies(ctx context.Context) ([]string, error)
}

// FamilyStore persists cluster assignments.
type FamilyStore interface {
	SaveFamilies(ctx context.Context, families []TemplateFamily) error
	LoadFamilies(ctx context.Context) ([]TemplateFamily, error)
}
