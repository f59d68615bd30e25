package extract

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/gutachter/vorlage"
)

// cluster is one template family candidate during clustering: the member
// profiles plus the structural features of its seed document.
type cluster struct {
	seed    features
	members []*vorlage.DocProfile
}

// features are the structural signals a document is clustered by.
type features struct {
	styles     map[string]int
	fixedSet   map[string]bool
	headerText string
}

// Weights of the three clustering signals.
const (
	weightStyles   = 0.4
	weightFixedSet = 0.4
	weightHeader   = 0.2
)

// clusterProfiles groups profiles into disjoint families by structural and
// style similarity. Profiles are visited in slice order (the caller sorts
// by file name), each joining the first existing cluster whose seed scores
// at or above the similarity floor, or founding a new cluster. Documents
// that end up in a singleton cluster scoring below the floor against every
// other cluster are placed in the unclustered bucket instead of being
// forced into a family.
func clusterProfiles(profiles []*vorlage.DocProfile, class *classification, cfg vorlage.Config) (clusters []*cluster, unclustered []*vorlage.DocProfile) {
	for _, profile := range profiles {
		f := profileFeatures(profile, class)

		bestIndex := -1
		bestScore := 0.0
		for i, c := range clusters {
			score := similarity(f, c.seed)
			if score >= cfg.ClusterSimilarity && score > bestScore {
				bestIndex, bestScore = i, score
			}
		}

		if bestIndex >= 0 {
			clusters[bestIndex].members = append(clusters[bestIndex].members, profile)
			continue
		}
		clusters = append(clusters, &cluster{seed: f, members: []*vorlage.DocProfile{profile}})
	}

	// Singletons that fit nowhere are surfaced, not forced.
	kept := clusters[:0]
	for _, c := range clusters {
		if len(c.members) == 1 && len(clusters) > 1 {
			unclustered = append(unclustered, c.members[0])
			continue
		}
		kept = append(kept, c)
	}
	return kept, unclustered
}

func profileFeatures(profile *vorlage.DocProfile, class *classification) features {
	fixedSet := make(map[string]bool)
	for _, key := range profile.Fingerprints() {
		if class.isFixed(key) {
			fixedSet[key] = true
		}
	}
	return features{
		styles:     profile.StyleHistogram(),
		fixedSet:   fixedSet,
		headerText: strings.Join(append(append([]string(nil), profile.Headers...), profile.Footers...), "\n"),
	}
}

// similarity combines the three clustering signals into one [0, 1] score.
func similarity(a, b features) float64 {
	return weightStyles*cosine(a.styles, b.styles) +
		weightFixedSet*jaccard(a.fixedSet, b.fixedSet) +
		weightHeader*vorlage.TokenJaccardSimilarity(a.headerText, b.headerText)
}

func cosine(a, b map[string]int) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for k, va := range a {
		normA += float64(va) * float64(va)
		if vb, ok := b[k]; ok {
			dot += float64(va) * float64(vb)
		}
	}
	for _, vb := range b {
		normB += float64(vb) * float64(vb)
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		// Two documents with no boilerplate at all are indistinguishable on
		// this signal.
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for k := range a {
		if b[k] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// familyID derives a stable identifier from the cluster's shared fixed
// fingerprints: re-running extraction on a grown corpus keeps the ID as
// long as the family's boilerplate signature is unchanged. Clusters with no
// shared boilerplate fall back to hashing member file names.
func familyID(c *cluster, class *classification) string {
	shared := sharedFixedSet(c, class)

	var input string
	if len(shared) > 0 {
		input = strings.Join(shared, "||")
	} else {
		names := make([]string, len(c.members))
		for i, m := range c.members {
			names[i] = m.SourceFile
		}
		sort.Strings(names)
		input = strings.Join(names, "||")
	}
	return fmt.Sprintf("family_%016x", xxhash.Sum64String(input))
}

// sharedFixedSet returns the sorted fixed fingerprints present in every
// member of the cluster.
func sharedFixedSet(c *cluster, class *classification) []string {
	counts := make(map[string]int)
	for _, member := range c.members {
		seen := make(map[string]bool)
		for _, key := range member.Fingerprints() {
			if class.isFixed(key) && !seen[key] {
				seen[key] = true
				counts[key]++
			}
		}
	}
	var shared []string
	for key, n := range counts {
		if n == len(c.members) {
			shared = append(shared, key)
		}
	}
	sort.Strings(shared)
	return shared
}
