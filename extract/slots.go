package extract

import (
	"sort"
	"strings"

	"github.com/gutachter/vorlage"
)

// knownSections are the canonical Gutachten section headings, in typical
// report order. Numbered variants come first so manual-in-text numbering
// ("1. Anamnese") canonicalizes to the numbered form.
var knownSections = []string{
	"Gutachterliche Fragestellung",
	"Fragestellung",
	"1. Anamnese",
	"Anamnese",
	"2. Untersuchungsbefunde",
	"Untersuchungsbefunde",
	"3. Diagnosen",
	"Diagnosen",
	"Diagnose",
	"4. Epikrise",
	"Epikrise",
	"5. Sozialmedizinische Leistungsbeurteilung",
	"Sozialmedizinische Leistungsbeurteilung",
	"1.1 Anamnese medizinischer Daten",
	"Anamnese medizinischer Daten",
	"1.2 Biografische Anamnese",
	"Biografische Anamnese",
	"Familienanamnese",
	"Eigenanamnese",
	"Sozialanamnese",
	"Vegetative Anamnese",
	"Aktuelle Beschwerden",
	"Jetzige Beschwerden",
	"Aktuelle Medikation",
	"Therapie und behandelnde Ärzte",
	"Neurologischer Befund",
	"Körperlicher Befund",
	"Psychischer Befund",
	"Neurologischer/körperlicher Untersuchungsbefund",
	"Beurteilung",
	"Zusammenfassung",
	"Therapieempfehlung",
	"Empfehlung",
	"Hamilton Depression Scale",
	"Vorgelegte Klinikaufenthalte",
}

// Heading heuristics: candidates longer than this never count.
const (
	maxAnchorTextLen = 100
	shortHeadingLen  = 60
)

// anchorCandidate aggregates observations of one canonical section across
// a family's documents.
type anchorCandidate struct {
	count    int
	variants []string
	styles   map[string]int
}

// findAnchors identifies the stable section headings of a family. Each
// paragraph that looks heading-like is fuzzy-matched against the canonical
// section list using the configured similarity function; the first
// canonical name scoring at or above the threshold wins. A score exactly
// equal to the threshold is accepted. When two occurrences of the same
// anchor tie, the earliest document position is kept as its first
// observation.
func findAnchors(profiles []*vorlage.DocProfile, cfg vorlage.Config, sim vorlage.SimilarityFunc) []vorlage.Anchor {
	candidates := make(map[string]*anchorCandidate)

	for _, profile := range profiles {
		seenInDoc := make(map[string]bool)
		for paraIndex := range profile.Paragraphs {
			para := &profile.Paragraphs[paraIndex]
			text := strings.TrimSpace(para.Text)
			if text == "" || len(text) > maxAnchorTextLen {
				continue
			}
			if !headingLike(para.Style, text) {
				continue
			}

			normText := vorlage.NormalizeBasic(strings.TrimRight(text, ":- "))
			name, ok := matchKnownSection(normText, cfg.AnchorSimilarity, sim)
			if !ok {
				continue
			}

			c, exists := candidates[name]
			if !exists {
				c = &anchorCandidate{styles: make(map[string]int)}
				candidates[name] = c
			}
			if !seenInDoc[name] {
				seenInDoc[name] = true
				c.count++
			}
			if !containsString(c.variants, text) && len(c.variants) < 5 {
				c.variants = append(c.variants, text)
			}
			c.styles[para.Style]++
		}
	}

	total := len(profiles)
	var anchors []vorlage.Anchor
	for _, name := range knownSections {
		c, ok := candidates[name]
		if !ok {
			continue
		}
		coverage := float64(c.count) / float64(total)
		if coverage < cfg.AnchorCoverage {
			continue
		}
		anchors = append(anchors, vorlage.Anchor{
			ID:            vorlage.SnakeCase(name),
			CanonicalText: name,
			MatchMode:     vorlage.MatchFuzzy,
			MinSimilarity: cfg.AnchorSimilarity,
			VariantsSeen:  c.variants,
			Coverage:      coverage,
			Style:         majorityKey(c.styles),
		})
	}
	return anchors
}

// headingLike applies the heading heuristic: an explicit heading style, or
// a short line.
func headingLike(style, text string) bool {
	if strings.Contains(style, "Heading") || strings.Contains(style, "Überschrift") ||
		style == "Title" || style == "Subtitle" {
		return true
	}
	return len(text) < shortHeadingLen
}

// matchKnownSection returns the first canonical section name whose
// normalized form scores at least minSimilarity against the text. Equality
// with the threshold is accepted; one unit below is rejected.
func matchKnownSection(normText string, minSimilarity float64, sim vorlage.SimilarityFunc) (string, bool) {
	for _, known := range knownSections {
		if sim(normText, vorlage.NormalizeBasic(known)) >= minSimilarity {
			return known, true
		}
	}
	return "", false
}

// majorityKey returns the key with the highest count; ties resolve to the
// lexicographically smallest key.
func majorityKey(counts map[string]int) string {
	best := ""
	bestCount := -1
	for _, key := range sortedKeys(counts) {
		if counts[key] > bestCount {
			best, bestCount = key, counts[key]
		}
	}
	return best
}

// anchorFingerprint returns the representative fingerprint key of an
// anchor within a family: the most frequently observed one, ties broken
// lexicographically.
func anchorFingerprint(profiles []*vorlage.DocProfile, anchor *vorlage.Anchor, cfg vorlage.Config, sim vorlage.SimilarityFunc) string {
	counts := make(map[string]int)
	for _, profile := range profiles {
		for i := range profile.Paragraphs {
			para := &profile.Paragraphs[i]
			text := strings.TrimSpace(para.Text)
			if text == "" || len(text) > maxAnchorTextLen || !headingLike(para.Style, text) {
				continue
			}
			normText := vorlage.NormalizeBasic(strings.TrimRight(text, ":- "))
			if sim(normText, vorlage.NormalizeBasic(anchor.CanonicalText)) >= anchor.MinSimilarity {
				counts[para.Fingerprint().String()]++
			}
		}
	}
	return majorityKey(counts)
}

// buildSkeleton assembles the family's template skeleton: an optional
// leading slot for pre-anchor content, then one fixed heading block and one
// body slot per anchor, in canonical order. When a detected fixed sequence
// starts at an anchor's fingerprint, the subsequent boilerplate paragraphs
// extend the anchor's fixed block (longest accepted run wins).
func buildSkeleton(profiles []*vorlage.DocProfile, anchors []vorlage.Anchor, class *classification, sequences map[string]sequence, cfg vorlage.Config, sim vorlage.SimilarityFunc) vorlage.TemplateSkeleton {
	var skeleton vorlage.TemplateSkeleton

	if hasLeadingContent(profiles, anchors, sim) {
		skeleton = append(skeleton, vorlage.SkeletonItem{
			Type: vorlage.ItemSlot,
			Slot: &vorlage.Slot{
				SlotID:        "vorspann_body",
				SectionName:   "Vorspann",
				AllowedStyles: []vorlage.StyleRole{vorlage.RoleBody},
				ListBehavior:  vorlage.ListNone,
				Optional:      true,
			},
		})
	}

	for i := range anchors {
		anchor := &anchors[i]

		block := &vorlage.FixedBlock{
			ID:       anchor.ID + "_heading",
			Coverage: anchor.Coverage,
			Paragraphs: []vorlage.FixedParagraph{{
				Text:  anchor.CanonicalText,
				Style: anchor.Style,
			}},
		}

		fp := anchorFingerprint(profiles, anchor, cfg, sim)
		if fp != "" {
			block.Fingerprints = []string{fp}
			if seq, ok := sequences[fp]; ok {
				extendBlock(block, seq, class)
			}
		}

		skeleton = append(skeleton,
			vorlage.SkeletonItem{Type: vorlage.ItemFixed, Fixed: block},
			vorlage.SkeletonItem{Type: vorlage.ItemSlot, Slot: &vorlage.Slot{
				SlotID:        anchor.ID + "_body",
				SectionName:   anchor.CanonicalText,
				AllowedStyles: []vorlage.StyleRole{vorlage.RoleBody, vorlage.RoleBullet},
				ListBehavior:  vorlage.ListBulletsAllowed,
				Optional:      anchor.Coverage < cfg.OptionalBelow,
			}},
		)
	}
	return skeleton
}

// extendBlock appends the boilerplate paragraphs following the anchor
// heading in the winning detected sequence.
func extendBlock(block *vorlage.FixedBlock, seq sequence, class *classification) {
	for _, key := range seq.Fingerprints[1:] {
		stats, ok := class.fixed[key]
		if !ok || len(stats.Examples) == 0 {
			return
		}
		block.Fingerprints = append(block.Fingerprints, key)
		block.Paragraphs = append(block.Paragraphs, vorlage.FixedParagraph{
			Text:  stats.Examples[0],
			Style: representativeStyle(stats),
		})
	}
	if seq.Coverage < block.Coverage {
		block.Coverage = seq.Coverage
	}
}

// representativeStyle picks a deterministic style for a fingerprint: the
// lexicographically smallest of its observed styles.
func representativeStyle(stats *fingerprintStats) string {
	styles := make([]string, 0, len(stats.Styles))
	for style := range stats.Styles {
		styles = append(styles, style)
	}
	sort.Strings(styles)
	if len(styles) == 0 {
		return "Normal"
	}
	return styles[0]
}

// hasLeadingContent reports whether more than half of the documents carry
// non-empty content before their first anchor occurrence.
func hasLeadingContent(profiles []*vorlage.DocProfile, anchors []vorlage.Anchor, sim vorlage.SimilarityFunc) bool {
	if len(anchors) == 0 {
		return false
	}
	withLeading := 0
	for _, profile := range profiles {
		first := firstAnchorIndex(profile, anchors, sim)
		if first <= 0 {
			continue
		}
		for i := 0; i < first; i++ {
			if strings.TrimSpace(profile.Paragraphs[i].Text) != "" {
				withLeading++
				break
			}
		}
	}
	return withLeading*2 > len(profiles)
}

// firstAnchorIndex returns the paragraph index of the first anchor match
// in the document, or -1. Ties in similarity are resolved by scan order,
// i.e. the earliest document position.
func firstAnchorIndex(profile *vorlage.DocProfile, anchors []vorlage.Anchor, sim vorlage.SimilarityFunc) int {
	for i := range profile.Paragraphs {
		para := &profile.Paragraphs[i]
		text := strings.TrimSpace(para.Text)
		if text == "" || len(text) > maxAnchorTextLen {
			continue
		}
		normText := vorlage.NormalizeBasic(strings.TrimRight(text, ":- "))
		for _, anchor := range anchors {
			if sim(normText, vorlage.NormalizeBasic(anchor.CanonicalText)) >= anchor.MinSimilarity {
				return i
			}
		}
	}
	return -1
}
