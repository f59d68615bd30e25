package extract

import (
	"sort"
	"strings"

	"github.com/gutachter/vorlage"
)

// position locates the first observation of a fingerprint or sequence in
// the corpus: document index first, paragraph index second. Used for
// deterministic tie-breaks.
type position struct {
	doc  int
	para int
}

func (p position) before(q position) bool {
	if p.doc != q.doc {
		return p.doc < q.doc
	}
	return p.para < q.para
}

// fingerprintStats aggregates one fingerprint's observations across a set
// of documents.
type fingerprintStats struct {
	// Count is the number of documents the fingerprint appears in
	// (deduplicated within a document).
	Count int

	// Examples holds up to three original text forms, in observation order.
	Examples []string

	// Styles is the set of style names the fingerprint was seen under.
	Styles map[string]bool

	// First is the earliest observation position.
	First position
}

// countMap is a partial or merged fingerprint frequency count.
type countMap map[string]*fingerprintStats

const maxExamples = 3

// countFingerprints computes the partial count map for a single document.
// Workers call this independently; partials are merged after the ingestion
// join barrier by mergeCounts, so no shared mutable state exists during the
// parallel phase.
func countFingerprints(docIndex int, profile *vorlage.DocProfile) countMap {
	counts := make(countMap)
	seenInDoc := make(map[string]bool)

	for i := range profile.Paragraphs {
		para := &profile.Paragraphs[i]
		key := para.Fingerprint().String()

		stats, ok := counts[key]
		if !ok {
			stats = &fingerprintStats{
				Styles: make(map[string]bool),
				First:  position{doc: docIndex, para: i},
			}
			counts[key] = stats
		}
		if !seenInDoc[key] {
			seenInDoc[key] = true
			stats.Count++
		}
		if len(stats.Examples) < maxExamples && !containsString(stats.Examples, para.Text) {
			stats.Examples = append(stats.Examples, para.Text)
		}
		stats.Styles[para.Style] = true
	}
	return counts
}

// mergeCounts folds partial count maps into one. Partials must be passed in
// document order so example selection and first-seen positions stay
// deterministic.
func mergeCounts(partials []countMap) countMap {
	merged := make(countMap)
	for _, partial := range partials {
		keys := sortedKeys(partial)
		for _, key := range keys {
			stats := partial[key]
			existing, ok := merged[key]
			if !ok {
				merged[key] = &fingerprintStats{
					Count:    stats.Count,
					Examples: append([]string(nil), stats.Examples...),
					Styles:   copyStringSet(stats.Styles),
					First:    stats.First,
				}
				continue
			}
			existing.Count += stats.Count
			for _, example := range stats.Examples {
				if len(existing.Examples) >= maxExamples {
					break
				}
				if !containsString(existing.Examples, example) {
					existing.Examples = append(existing.Examples, example)
				}
			}
			for style := range stats.Styles {
				existing.Styles[style] = true
			}
			if stats.First.before(existing.First) {
				existing.First = stats.First
			}
		}
	}
	return merged
}

// classification is the Fixed/Variable split of a fingerprint population.
type classification struct {
	fixed    countMap
	variable countMap
	total    int

	// conflicts counts fingerprints that meet the coverage threshold but
	// fail the stability gates (style drift or minimal-content floor).
	// They are classified Variable and surfaced in the quality report.
	conflicts int
}

// coverage returns the document-coverage ratio of a fingerprint.
func (c *classification) coverage(stats *fingerprintStats) float64 {
	if c.total == 0 {
		return 0
	}
	return float64(stats.Count) / float64(c.total)
}

// isFixed reports whether a fingerprint key classified as Fixed.
func (c *classification) isFixed(key string) bool {
	_, ok := c.fixed[key]
	return ok
}

// classify splits fingerprints into Fixed and Variable. A fingerprint is
// Fixed iff its document-coverage ratio meets the threshold, its text
// length exceeds the minimal-content floor, and its style is stable. The
// comparison is on the ratio, not a floored count: with 10 documents and 8
// occurrences, a 0.85 threshold classifies Variable (0.8 < 0.85).
func classify(counts countMap, totalDocs int, cfg vorlage.Config) *classification {
	result := &classification{
		fixed:    make(countMap),
		variable: make(countMap),
		total:    totalDocs,
	}

	for _, key := range sortedKeys(counts) {
		stats := counts[key]
		covered := result.coverage(stats) >= cfg.FixedThreshold

		longEnough := len(stats.Examples) > 0 && len(stats.Examples[0]) >= cfg.MinTextLength
		styleStable := len(stats.Styles) <= cfg.StyleVariantLimit

		if covered && longEnough && styleStable {
			result.fixed[key] = stats
			continue
		}
		if covered {
			result.conflicts++
		}
		result.variable[key] = stats
	}
	return result
}

// boilerplateCoverage returns the fraction of paragraph instances across
// the given profiles whose fingerprint classified Fixed.
func boilerplateCoverage(profiles []*vorlage.DocProfile, class *classification) float64 {
	total, fixed := 0, 0
	for _, profile := range profiles {
		for _, key := range profile.Fingerprints() {
			total++
			if class.isFixed(key) {
				fixed++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(fixed) / float64(total)
}

// sequence is a detected run of Fixed fingerprints that co-occurs in order
// across most of a document set.
type sequence struct {
	Fingerprints []string
	Count        int
	Coverage     float64
	First        position
}

// detectSequences scans n-gram windows over each document's fingerprint
// sequence and keeps runs of consecutive Fixed fingerprints whose
// document coverage meets the threshold. The returned map holds, per
// starting fingerprint, the winning run: longest first, then higher
// coverage, then earliest first-seen position. That ordering is the
// deterministic tie-break for ambiguous overlapping candidates.
func detectSequences(profiles []*vorlage.DocProfile, class *classification, cfg vorlage.Config) map[string]sequence {
	type seqStats struct {
		count int
		first position
		seen  map[int]bool
	}
	candidates := make(map[string]*seqStats)

	for docIndex, profile := range profiles {
		keys := profile.Fingerprints()
		for n := cfg.NgramMin; n <= cfg.NgramMax; n++ {
			for i := 0; i+n <= len(keys); i++ {
				window := keys[i : i+n]
				if !allFixed(window, class) {
					continue
				}
				seqKey := strings.Join(window, "||")
				stats, ok := candidates[seqKey]
				if !ok {
					stats = &seqStats{
						first: position{doc: docIndex, para: i},
						seen:  make(map[int]bool),
					}
					candidates[seqKey] = stats
				}
				if !stats.seen[docIndex] {
					stats.seen[docIndex] = true
					stats.count++
				}
			}
		}
	}

	total := len(profiles)
	best := make(map[string]sequence)
	for _, seqKey := range sortedKeys(candidates) {
		stats := candidates[seqKey]
		cov := float64(stats.count) / float64(total)
		if cov < cfg.FixedThreshold {
			continue
		}

		fingerprints := strings.Split(seqKey, "||")
		candidate := sequence{
			Fingerprints: fingerprints,
			Count:        stats.count,
			Coverage:     cov,
			First:        stats.first,
		}

		start := fingerprints[0]
		current, ok := best[start]
		if !ok || betterSequence(candidate, current) {
			best[start] = candidate
		}
	}
	return best
}

// betterSequence implements the longest-match-first policy with
// deterministic tie-breaks: longer wins, then higher coverage, then
// earlier first observation.
func betterSequence(a, b sequence) bool {
	if len(a.Fingerprints) != len(b.Fingerprints) {
		return len(a.Fingerprints) > len(b.Fingerprints)
	}
	if a.Coverage != b.Coverage {
		return a.Coverage > b.Coverage
	}
	return a.First.before(b.First)
}

func allFixed(window []string, class *classification) bool {
	for _, key := range window {
		if !class.isFixed(key) {
			return false
		}
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func copyStringSet(set map[string]bool) map[string]bool {
	out := make(map[string]bool, len(set))
	for k := range set {
		out[k] = true
	}
	return out
}

// sortedKeys returns the map's keys in ascending order, for deterministic
// iteration.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
