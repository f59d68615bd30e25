package extract

import (
	"strings"

	"github.com/gutachter/vorlage"
)

// minBodyTextLen filters headings and labels out of the body-style vote.
const minBodyTextLen = 20

// extractStyleRoles derives the family's StyleRoleMap by majority vote
// over the styles used for clearly-identified title, heading, body, and
// bullet paragraphs. Numbering stays manual-in-text ("1. Anamnese"); no
// auto-numbering style is ever selected, avoiding cross-document
// renumbering inconsistency.
func extractStyleRoles(profiles []*vorlage.DocProfile) vorlage.StyleRoleMap {
	headingStyles := make(map[string]int)
	bodyStyles := make(map[string]int)
	listStyles := make(map[string]int)

	for _, profile := range profiles {
		for i := range profile.Paragraphs {
			para := &profile.Paragraphs[i]
			text := strings.TrimSpace(para.Text)

			switch {
			case isHeadingStyle(para.Style):
				headingStyles[para.Style]++
			case para.List.IsList:
				listStyles[para.Style]++
			case len(text) >= minBodyTextLen:
				bodyStyles[para.Style]++
			}
		}
	}

	return vorlage.StyleRoleMap{
		vorlage.RoleTitle:  "Title",
		vorlage.RoleH1:     majorityOr(filterStyles(headingStyles, "1"), "Heading 1"),
		vorlage.RoleH2:     majorityOr(filterStyles(headingStyles, "2"), "Heading 2"),
		vorlage.RoleH3:     majorityOr(filterStyles(headingStyles, "3"), "Heading 3"),
		vorlage.RoleBody:   majorityOr(bodyStyles, "Normal"),
		vorlage.RoleBullet: majorityOr(listStyles, "List Bullet"),
	}
}

func isHeadingStyle(style string) bool {
	return strings.Contains(style, "Heading") || strings.Contains(style, "Überschrift") ||
		style == "Title" || style == "Subtitle"
}

func filterStyles(styles map[string]int, substr string) map[string]int {
	filtered := make(map[string]int)
	for style, count := range styles {
		if strings.Contains(style, substr) {
			filtered[style] = count
		}
	}
	return filtered
}

func majorityOr(counts map[string]int, fallback string) string {
	if len(counts) == 0 {
		return fallback
	}
	return majorityKey(counts)
}

// extractHeaderFooter picks the most common header and footer text across
// the family's documents and splits each into the conventional three tab
// stops. Ties resolve to the lexicographically smallest text.
func extractHeaderFooter(profiles []*vorlage.DocProfile) (kopfzeile, fusszeile vorlage.HeaderFooter) {
	headerCounts := make(map[string]int)
	footerCounts := make(map[string]int)
	for _, profile := range profiles {
		for _, h := range profile.Headers {
			headerCounts[h]++
		}
		for _, f := range profile.Footers {
			footerCounts[f]++
		}
	}

	kopfzeile = splitHeaderFooter(majorityOr(headerCounts, ""))
	fusszeile = splitHeaderFooter(majorityOr(footerCounts, ""))
	return kopfzeile, fusszeile
}

// splitHeaderFooter assigns a literal header/footer string to the
// left/center/right parts. Single-line text with tabs splits on them;
// anything else stays in the left part.
func splitHeaderFooter(text string) vorlage.HeaderFooter {
	if text == "" {
		return vorlage.HeaderFooter{}
	}
	if !strings.Contains(text, "\n") && strings.Contains(text, "\t") {
		parts := strings.SplitN(text, "\t", 3)
		hf := vorlage.HeaderFooter{Left: parts[0]}
		if len(parts) > 1 {
			hf.Center = parts[1]
		}
		if len(parts) > 2 {
			hf.Right = parts[2]
		}
		return hf
	}
	return vorlage.HeaderFooter{Left: text}
}
