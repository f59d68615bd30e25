package vorlage

// Config holds the extraction thresholds. All values have working defaults;
// a YAML file may override any of them. Profiles are cached to disk, so
// thresholds can be tuned and extraction re-run without re-parsing sources.
type Config struct {
	// FixedThreshold is the minimum fraction of a family's documents a
	// fingerprint must cover to classify as Fixed.
	FixedThreshold float64 `yaml:"fixed_threshold"`

	// MinTextLength guards against trivially short paragraphs (":") being
	// classified as boilerplate.
	MinTextLength int `yaml:"min_text_length"`

	// StyleVariantLimit is the maximum number of distinct styles a
	// fingerprint may appear under and still count as style-stable.
	StyleVariantLimit int `yaml:"style_variant_limit"`

	// AnchorSimilarity is the minimum fuzzy-match score for anchor
	// candidates.
	AnchorSimilarity float64 `yaml:"anchor_similarity"`

	// AnchorCoverage is the minimum fraction of documents an anchor must
	// appear in.
	AnchorCoverage float64 `yaml:"anchor_coverage"`

	// OptionalBelow marks a slot optional when its anchor's coverage is
	// below this fraction.
	OptionalBelow float64 `yaml:"optional_below"`

	// ClusterSimilarity is the floor below which a document goes to the
	// unclustered bucket instead of a family.
	ClusterSimilarity float64 `yaml:"cluster_similarity"`

	// NgramMin and NgramMax bound the sequence-detection window.
	NgramMin int `yaml:"ngram_min"`
	NgramMax int `yaml:"ngram_max"`

	// MinCorpusSize is the minimum number of valid documents required for
	// extraction to proceed.
	MinCorpusSize int `yaml:"min_corpus_size"`

	// Similarity selects the fuzzy-matching metric by name.
	Similarity string `yaml:"similarity"`

	// Concurrency bounds the ingestion worker pool.
	Concurrency int `yaml:"concurrency"`
}

// DefaultConfig returns the configuration used when no file is provided.
func DefaultConfig() Config {
	return Config{
		FixedThreshold:    0.85,
		MinTextLength:     3,
		StyleVariantLimit: 2,
		AnchorSimilarity:  0.88,
		AnchorCoverage:    0.5,
		OptionalBelow:     0.8,
		ClusterSimilarity: 0.6,
		NgramMin:          2,
		NgramMax:          10,
		MinCorpusSize:     3,
		Similarity:        SimilarityLevenshtein,
		Concurrency:       8,
	}
}

// Validate returns an error if the configuration is unusable.
func (c *Config) Validate() error {
	if c.FixedThreshold <= 0 || c.FixedThreshold > 1 {
		return Errorf(EINVALID, "fixed_threshold must be in (0, 1], got %g", c.FixedThreshold)
	}
	if c.AnchorSimilarity < 0 || c.AnchorSimilarity > 1 {
		return Errorf(EINVALID, "anchor_similarity must be in [0, 1], got %g", c.AnchorSimilarity)
	}
	if c.NgramMin < 2 || c.NgramMax < c.NgramMin {
		return Errorf(EINVALID, "ngram window [%d, %d] invalid", c.NgramMin, c.NgramMax)
	}
	if c.MinCorpusSize < 1 {
		return Errorf(EINVALID, "min_corpus_size must be positive, got %d", c.MinCorpusSize)
	}
	if SimilarityByName(c.Similarity) == nil {
		return Errorf(EINVALID, "unknown similarity metric %q", c.Similarity)
	}
	return nil
}
