// Package render turns a template spec and structured content into a
// finished .docx document. Rendering is deterministic: no analysis, no
// reordering, the skeleton is walked exactly as extracted.
package render

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/gutachter/vorlage"
	"github.com/gutachter/vorlage/docx"
)

// MissingSectionText is emitted in place of a required section the
// dictation did not cover.
const MissingSectionText = "[Abschnitt fehlt]"

// unclearPattern matches inline uncertainty markers in slot content.
var unclearPattern = regexp.MustCompile(`\{unclear:([^}]*)\}`)

// bulletPrefixes are the list markers recognized in slot lines.
var bulletPrefixes = []string{"- ", "• ", "* "}

// Renderer writes documents from template specs. It implements
// vorlage.Renderer.
type Renderer struct {
	Logger *slog.Logger
}

// New returns a Renderer logging through the given logger.
func New(logger *slog.Logger) *Renderer {
	return &Renderer{Logger: logger}
}

// Render validates the content, walks the skeleton, and writes the
// resulting document to outputPath. Fixed blocks are emitted verbatim;
// slots are filled from the content, with required-but-absent sections
// replaced by a placeholder and uncertain passages, inline markers as well
// as flagged spans, turned into highlighted runs.
func (r *Renderer) Render(ctx context.Context, spec *vorlage.TemplateSpec, content *vorlage.StructuredContent, outputPath string) (*vorlage.RenderResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if err := content.Validate(); err != nil {
		return nil, err
	}

	logger := r.logger().With("family_id", spec.FamilyID)
	r.warnUnknownSlots(logger, spec, content)

	missing := content.MissingSet()
	result := &vorlage.RenderResult{OutputPath: outputPath}

	var paragraphs []docx.Paragraph
	for _, item := range spec.Skeleton {
		switch item.Type {
		case vorlage.ItemFixed:
			paragraphs = r.renderFixed(paragraphs, spec, item.Fixed)
		case vorlage.ItemSlot:
			paragraphs = r.renderSlot(logger, paragraphs, spec, item.Slot, content, missing, result)
		}
	}

	doc := &docx.Document{
		Paragraphs: paragraphs,
		Header:     spec.Kopfzeile.Text(),
		Footer:     spec.Fusszeile.Text(),
		Styles:     spec.StyleRoles,
		Rules:      spec.Rules,
	}
	if err := docx.WriteFile(outputPath, doc); err != nil {
		return nil, err
	}

	logger.Info("document rendered",
		"output", outputPath,
		"paragraphs", len(paragraphs),
		"unclear", result.UnclearCount,
		"missing_sections", len(result.MissingSections),
	)
	return result, nil
}

// renderFixed emits a fixed block verbatim. Heading blocks get the
// family's blank-line and heading-spacing conventions.
func (r *Renderer) renderFixed(paragraphs []docx.Paragraph, spec *vorlage.TemplateSpec, block *vorlage.FixedBlock) []docx.Paragraph {
	heading := strings.HasSuffix(block.ID, "_heading")
	if heading && spec.Rules.BlankLineBeforeSection && len(paragraphs) > 0 {
		paragraphs = append(paragraphs, docx.Paragraph{Style: spec.StyleRoles.Resolve(vorlage.RoleBody), Runs: []docx.Run{{}}})
	}

	for i, fp := range block.Paragraphs {
		p := docx.Paragraph{
			Style: resolveStyle(spec.StyleRoles, fp.Style),
			Runs:  []docx.Run{{Text: fp.Text}},
		}
		switch {
		case fp.SpacingAfter > 0:
			p.SpacingAfter = fp.SpacingAfter
		case heading && i == 0:
			p.SpacingAfter = spec.Rules.SpacingAfterHeading
		default:
			p.SpacingAfter = spec.Rules.SpacingAfterParagraph
		}
		paragraphs = append(paragraphs, p)
	}
	return paragraphs
}

// renderSlot fills one slot from the content. A required slot without
// usable content renders the placeholder and is recorded in the result.
func (r *Renderer) renderSlot(logger *slog.Logger, paragraphs []docx.Paragraph, spec *vorlage.TemplateSpec, slot *vorlage.Slot, content *vorlage.StructuredContent, missing map[string]bool, result *vorlage.RenderResult) []docx.Paragraph {
	lines := nonEmptyLines(content.Slots[slot.SlotID])
	if missing[slot.SlotID] || len(lines) == 0 {
		if slot.Optional {
			logger.Debug("optional slot skipped", "slot_id", slot.SlotID)
			return paragraphs
		}
		result.MissingSections = append(result.MissingSections, slot.SlotID)
		logger.Warn("required section missing", "slot_id", slot.SlotID)
		return append(paragraphs, docx.Paragraph{
			Style:        bodyStyle(logger, spec.StyleRoles, slot),
			Runs:         []docx.Run{{Text: MissingSectionText, Italic: true}},
			SpacingAfter: spec.Rules.SpacingAfterParagraph,
		})
	}

	body := bodyStyle(logger, spec.StyleRoles, slot)
	bulletStyleName := spec.StyleRoles.Resolve(vorlage.RoleBullet)
	spans := slotSpans(content, slot.SlotID)
	for _, line := range lines {
		p := docx.Paragraph{Style: body, SpacingAfter: spec.Rules.SpacingAfterParagraph}

		if marker, rest, ok := bulletLine(line); ok {
			if slot.ListBehavior == vorlage.ListBulletsAllowed && slot.Allows(vorlage.RoleBullet) {
				p.Style = bulletStyleName
				p.Bullet = true
				line = rest
			} else {
				logger.Warn("bullet content in prose-only slot",
					"slot_id", slot.SlotID, "marker", strings.TrimSpace(marker))
			}
		}

		runs, unclear := splitUnclear(line)
		runs, flagged := highlightSpans(runs, spans, line)
		p.Runs = runs
		result.UnclearCount += unclear + flagged
		paragraphs = append(paragraphs, p)
	}
	return paragraphs
}

// slotSpans collects the upstream-flagged unclear span texts for one slot.
func slotSpans(content *vorlage.StructuredContent, slotID string) []string {
	var texts []string
	for _, span := range content.UnclearSpans {
		if span.SlotID == slotID && span.Text != "" {
			texts = append(texts, span.Text)
		}
	}
	return texts
}

// highlightSpans highlights occurrences of flagged span texts the content
// carries without an inline marker. Runs already highlighted by a marker
// are left alone, and spans that do appear inline in the line are skipped
// so nothing is counted twice.
func highlightSpans(runs []docx.Run, spans []string, line string) ([]docx.Run, int) {
	count := 0
	for _, span := range spans {
		if strings.Contains(line, "{unclear:"+span+"}") {
			continue
		}
		var out []docx.Run
		for _, run := range runs {
			if run.Highlight || !strings.Contains(run.Text, span) {
				out = append(out, run)
				continue
			}
			parts := strings.Split(run.Text, span)
			for i, part := range parts {
				if part != "" {
					out = append(out, docx.Run{Text: part})
				}
				if i < len(parts)-1 {
					out = append(out, docx.Run{Text: span, Highlight: true})
					count++
				}
			}
		}
		runs = out
	}
	return runs, count
}

// splitUnclear expands inline unclear markers into alternating plain and
// highlighted runs and returns the number of markers found.
func splitUnclear(line string) ([]docx.Run, int) {
	matches := unclearPattern.FindAllStringSubmatchIndex(line, -1)
	if len(matches) == 0 {
		return []docx.Run{{Text: line}}, 0
	}

	var runs []docx.Run
	last := 0
	for _, m := range matches {
		if prefix := line[last:m[0]]; prefix != "" {
			runs = append(runs, docx.Run{Text: prefix})
		}
		runs = append(runs, docx.Run{Text: line[m[2]:m[3]], Highlight: true})
		last = m[1]
	}
	if suffix := line[last:]; suffix != "" {
		runs = append(runs, docx.Run{Text: suffix})
	}
	return runs, len(matches)
}

// bulletLine reports whether the line starts with a recognized list marker,
// ignoring surrounding whitespace, and returns the marker and the line with
// the marker stripped.
func bulletLine(line string) (marker, rest string, ok bool) {
	trimmed := strings.TrimSpace(line)
	for _, prefix := range bulletPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return prefix, strings.TrimSpace(strings.TrimPrefix(trimmed, prefix)), true
		}
	}
	return "", "", false
}

// bodyStyle resolves the style slot content renders in. Slots that do not
// allow body text fall back to their first allowed role, which is logged
// as a coercion.
func bodyStyle(logger *slog.Logger, styles vorlage.StyleRoleMap, slot *vorlage.Slot) string {
	if slot.Allows(vorlage.RoleBody) || len(slot.AllowedStyles) == 0 {
		return styles.Resolve(vorlage.RoleBody)
	}
	role := slot.AllowedStyles[0]
	logger.Warn("slot content coerced to allowed style", "slot_id", slot.SlotID, "role", string(role))
	return styles.Resolve(role)
}

// resolveStyle maps role names stored in fixed blocks to concrete style
// names; anything else is already a concrete name.
func resolveStyle(styles vorlage.StyleRoleMap, style string) string {
	if role := vorlage.StyleRole(style); role.Valid() {
		return styles.Resolve(role)
	}
	if style == "" {
		return styles.Resolve(vorlage.RoleBody)
	}
	return style
}

func nonEmptyLines(lines []string) []string {
	var out []string
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

// warnUnknownSlots logs content keys that match no slot in the spec. They
// are ignored rather than rendered, since the skeleton is authoritative.
func (r *Renderer) warnUnknownSlots(logger *slog.Logger, spec *vorlage.TemplateSpec, content *vorlage.StructuredContent) {
	var unknown []string
	for slotID := range content.Slots {
		if spec.FindSlot(slotID) == nil {
			unknown = append(unknown, slotID)
		}
	}
	sort.Strings(unknown)
	for _, slotID := range unknown {
		logger.Warn("content for unknown slot ignored", "slot_id", slotID)
	}
}

func (r *Renderer) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
