package vorlage

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/go-playground/validator/v10"
)

// UnclearSpan marks a region of structured content the upstream structuring
// step flagged as uncertain. The renderer highlights it in the output.
type UnclearSpan struct {
	SlotID string `json:"slot_id" validate:"required"`
	Text   string `json:"text" validate:"required"`
	Reason string `json:"reason"`
}

// StructuredContent is the runtime input contract produced by the external
// LLM-structuring collaborator: slot contents keyed by slot ID, plus the
// unclear spans and slots the dictation did not cover. It is consumed
// exactly once by the renderer and not persisted here.
type StructuredContent struct {
	Slots        map[string][]string `json:"slots" validate:"required"`
	UnclearSpans []UnclearSpan       `json:"unclear_spans" validate:"dive"`
	MissingSlots []string            `json:"missing_slots"`
}

var contentValidator = validator.New()

// Validate checks the content against the expected shape. Any deviation is
// a schema error (EINVALID): rendering of the dictation must abort.
func (c *StructuredContent) Validate() error {
	if c.Slots == nil {
		return Errorf(EINVALID, "structured content missing slots object")
	}
	if err := contentValidator.Struct(c); err != nil {
		return Errorf(EINVALID, "structured content schema: %s", err)
	}
	for slotID := range c.Slots {
		if slotID == "" {
			return Errorf(EINVALID, "structured content contains empty slot ID")
		}
	}
	return nil
}

// ParseStructuredContent decodes and validates raw JSON into a
// StructuredContent. Unknown fields are rejected.
func ParseStructuredContent(data []byte) (*StructuredContent, error) {
	var content StructuredContent
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&content); err != nil {
		return nil, Errorf(EINVALID, "structured content JSON: %s", err)
	}
	if err := content.Validate(); err != nil {
		return nil, err
	}
	return &content, nil
}

// MissingSet returns the missing slot IDs as a set.
func (c *StructuredContent) MissingSet() map[string]bool {
	set := make(map[string]bool, len(c.MissingSlots))
	for _, id := range c.MissingSlots {
		set[id] = true
	}
	return set
}

// RenderResult summarizes one render: where the document was written, how
// many unclear spans were highlighted, and which sections were actually
// left as placeholders.
type RenderResult struct {
	OutputPath      string   `json:"output_path"`
	UnclearCount    int      `json:"unclear_count"`
	MissingSections []string `json:"missing_sections"`
}

// Renderer produces one output document from a template spec and
// structured content.
type Renderer interface {
	Render(ctx context.Context, spec *TemplateSpec, content *StructuredContent, outputPath string) (*RenderResult, error)
}
