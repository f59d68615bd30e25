// Package docx reads and writes Office Open XML word-processing documents.
// It implements vorlage.Ingestor on the read side and provides the
// deterministic document writer used by the runtime renderer, both built on
// archive/zip and beevik/etree. Only the structural subset the template
// pipeline needs is supported: paragraphs, styles, numbering, spacing, and
// per-section headers and footers.
package docx

// Word processing markup namespaces.
const (
	nsW = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

	nsRelationships = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsContentTypes  = "http://schemas.openxmlformats.org/package/2006/content-types"
)

// Relationship types used in document part wiring.
const (
	relOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relStyles         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relNumbering      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering"
	relHeader         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/header"
	relFooter         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer"
)

// twipsPerPoint converts between OOXML twentieths of a point and points.
const twipsPerPoint = 20
