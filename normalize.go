package vorlage

import (
	"regexp"
	"strings"
)

// Variants holds the comparison-friendly text forms of one paragraph.
// Each variant builds on the previous: NoDates is Basic with date tokens
// replaced, NoIDs is NoDates with case-number/insurance-ID tokens replaced,
// NoNames is NoIDs with clearly-patterned name sequences replaced. The
// original text is never discarded; it lives on the ParagraphRecord.
type Variants struct {
	Basic   string `json:"basic"`
	NoDates string `json:"no_dates"`
	NoIDs   string `json:"no_ids"`
	NoNames string `json:"no_names"`
}

// Placeholders inserted by normalization.
const (
	DatePlaceholder = "<DATE>"
	IDPlaceholder   = "<ID>"
	NamePlaceholder = "<NAME>"
)

// German date forms: 27.11.2025, 2025-11-27, 27. November 2025, November 2025.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{1,2}\.\d{1,2}\.\d{2,4}\b`),
	regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
	regexp.MustCompile(`(?i)\b\d{1,2}\.\s*(?:Januar|Februar|März|April|Mai|Juni|Juli|August|September|Oktober|November|Dezember)\s*\d{2,4}\b`),
	regexp.MustCompile(`(?i)\b(?:Januar|Februar|März|April|Mai|Juni|Juli|August|September|Oktober|November|Dezember)\s*\d{2,4}\b`),
}

// Aktenzeichen and insurance number forms.
var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b[A-Z]{1,3}\s*\d{6,12}\b`),
	regexp.MustCompile(`(?i)\bAktenzeichen[:\s]*[\w\-/]+`),
	regexp.MustCompile(`(?i)\bAz\.?[:\s]*[\w\-/]+`),
	regexp.MustCompile(`(?i)\bVersicherungsnr?\.?[:\s]*[\w\-/]+`),
	regexp.MustCompile(`(?i)\bVers\.?\s*Nr\.?[:\s]*[\w\-/]+`),
}

// Conservative name forms: honorific followed by capitalized words, and
// birth date phrases. General capitalized medical terms must not match.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:Herr|Frau|Hr\.|Fr\.)\s+[A-ZÄÖÜa-zäöüß]+(?:\s+[A-ZÄÖÜa-zäöüß]+)?`),
	regexp.MustCompile(`(?i)\bgeb\.\s*\d{1,2}\.\d{1,2}\.\d{2,4}`),
	regexp.MustCompile(`(?i)\bgeboren\s+(?:am\s+)?\d{1,2}\.\d{1,2}\.\d{2,4}`),
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	quotesRe     = regexp.MustCompile("[“”„]")
	apostropheRe = regexp.MustCompile("[‘’‚]")
	dashRe       = regexp.MustCompile("[–—]")
)

// Normalize derives all comparison variants of a paragraph's text. It is a
// pure function: the same input always yields the same variants.
func Normalize(text string) Variants {
	basic := NormalizeBasic(text)
	noDates := replaceAll(basic, datePatterns, DatePlaceholder)
	noIDs := replaceAll(noDates, idPatterns, IDPlaceholder)
	noNames := replaceAll(noIDs, namePatterns, NamePlaceholder)

	return Variants{
		Basic:   basic,
		NoDates: noDates,
		NoIDs:   noIDs,
		NoNames: noNames,
	}
}

// NormalizeBasic lowercases, trims, collapses whitespace, and unifies
// typographic punctuation.
func NormalizeBasic(text string) string {
	result := strings.ToLower(strings.TrimSpace(text))
	result = whitespaceRe.ReplaceAllString(result, " ")
	result = quotesRe.ReplaceAllString(result, `"`)
	result = apostropheRe.ReplaceAllString(result, "'")
	result = dashRe.ReplaceAllString(result, "-")
	return result
}

func replaceAll(text string, patterns []*regexp.Regexp, placeholder string) string {
	for _, re := range patterns {
		text = re.ReplaceAllString(text, placeholder)
	}
	return text
}

// SnakeCase converts normalized heading text into a slot/anchor identifier:
// lowercase with non-alphanumeric runs collapsed to single underscores.
func SnakeCase(text string) string {
	var b strings.Builder
	prevUnderscore := false
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			prevUnderscore = false
		case r == 'ä':
			b.WriteString("ae")
			prevUnderscore = false
		case r == 'ö':
			b.WriteString("oe")
			prevUnderscore = false
		case r == 'ü':
			b.WriteString("ue")
			prevUnderscore = false
		case r == 'ß':
			b.WriteString("ss")
			prevUnderscore = false
		default:
			if !prevUnderscore && b.Len() > 0 {
				b.WriteRune('_')
				prevUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
