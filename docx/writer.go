package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/gutachter/vorlage"
)

// Run is a span of text within a paragraph with uniform formatting.
type Run struct {
	Text      string
	Highlight bool
	Italic    bool
}

// Paragraph is one output paragraph. Style is a concrete style name; the
// writer resolves it to a style ID. Bullet paragraphs additionally carry
// numbering properties referencing the built-in bullet definition.
type Paragraph struct {
	Style        string
	Runs         []Run
	Bullet       bool
	SpacingAfter float64
}

// Document is the writer's input model: the rendered paragraphs plus the
// family's style and header/footer conventions.
type Document struct {
	Paragraphs []Paragraph
	Header     string
	Footer     string
	Styles     vorlage.StyleRoleMap
	Rules      vorlage.RenderRules
}

// Text returns a convenience single-run paragraph.
func Text(style, text string) Paragraph {
	return Paragraph{Style: style, Runs: []Run{{Text: text}}}
}

// Marshal serializes the document to .docx bytes. Output is deterministic:
// the same Document always yields identical part contents.
func Marshal(doc *Document) ([]byte, error) {
	type part struct {
		name string
		data func() ([]byte, error)
	}
	parts := []part{
		{"[Content_Types].xml", func() ([]byte, error) { return contentTypesXML(doc), nil }},
		{"_rels/.rels", rootRelsXML},
		{"word/_rels/document.xml.rels", func() ([]byte, error) { return documentRelsXML(doc), nil }},
		{"word/document.xml", func() ([]byte, error) { return documentXML(doc) }},
		{"word/styles.xml", func() ([]byte, error) { return stylesXML(doc.Styles) }},
		{"word/numbering.xml", numberingXML},
	}
	if doc.Header != "" {
		parts = append(parts, part{"word/header1.xml", func() ([]byte, error) { return headerFooterXML("hdr", doc.Header) }})
	}
	if doc.Footer != "" {
		parts = append(parts, part{"word/footer1.xml", func() ([]byte, error) { return headerFooterXML("ftr", doc.Footer) }})
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, part := range parts {
		data, err := part.data()
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", part.name, err)
		}
		w, err := zw.Create(part.name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile marshals the document and writes it to path.
func WriteFile(path string, doc *Document) error {
	data, err := Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// MarshalBaseTemplate produces the style-only base document for a family:
// style definitions, A4 margins, and header/footer, no body content.
func MarshalBaseTemplate(spec *vorlage.TemplateSpec) ([]byte, error) {
	return Marshal(&Document{
		Header: spec.Kopfzeile.Text(),
		Footer: spec.Fusszeile.Text(),
		Styles: spec.StyleRoles,
		Rules:  spec.Rules,
	})
}

// styleID derives a style ID from a concrete style name ("List Bullet" →
// "ListBullet").
func styleID(name string) string {
	return strings.ReplaceAll(name, " ", "")
}

func serialize(doc *etree.Document) ([]byte, error) {
	return doc.WriteToBytes()
}

func newPart(rootTag string) (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	root := doc.CreateElement(rootTag)
	root.CreateAttr("xmlns:w", nsW)
	root.CreateAttr("xmlns:r", nsR)
	return doc, root
}

func contentTypesXML(d *Document) []byte {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	types := doc.CreateElement("Types")
	types.CreateAttr("xmlns", nsContentTypes)

	def := types.CreateElement("Default")
	def.CreateAttr("Extension", "rels")
	def.CreateAttr("ContentType", "application/vnd.openxmlformats-package.relationships+xml")
	def = types.CreateElement("Default")
	def.CreateAttr("Extension", "xml")
	def.CreateAttr("ContentType", "application/xml")

	overrides := map[string]string{
		"/word/document.xml":  "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml",
		"/word/styles.xml":    "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml",
		"/word/numbering.xml": "application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml",
	}
	if d.Header != "" {
		overrides["/word/header1.xml"] = "application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml"
	}
	if d.Footer != "" {
		overrides["/word/footer1.xml"] = "application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"
	}
	for _, part := range []string{"/word/document.xml", "/word/styles.xml", "/word/numbering.xml", "/word/header1.xml", "/word/footer1.xml"} {
		ct, ok := overrides[part]
		if !ok {
			continue
		}
		ov := types.CreateElement("Override")
		ov.CreateAttr("PartName", part)
		ov.CreateAttr("ContentType", ct)
	}

	data, _ := doc.WriteToBytes()
	return data
}

func rootRelsXML() ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	rels := doc.CreateElement("Relationships")
	rels.CreateAttr("xmlns", nsRelationships)
	rel := rels.CreateElement("Relationship")
	rel.CreateAttr("Id", "rId1")
	rel.CreateAttr("Type", relOfficeDocument)
	rel.CreateAttr("Target", "word/document.xml")
	return doc.WriteToBytes()
}

func documentRelsXML(d *Document) []byte {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	rels := doc.CreateElement("Relationships")
	rels.CreateAttr("xmlns", nsRelationships)

	add := func(id, relType, target string) {
		rel := rels.CreateElement("Relationship")
		rel.CreateAttr("Id", id)
		rel.CreateAttr("Type", relType)
		rel.CreateAttr("Target", target)
	}
	add("rId1", relStyles, "styles.xml")
	add("rId2", relNumbering, "numbering.xml")
	if d.Header != "" {
		add("rId3", relHeader, "header1.xml")
	}
	if d.Footer != "" {
		add("rId4", relFooter, "footer1.xml")
	}

	data, _ := doc.WriteToBytes()
	return data
}

func documentXML(d *Document) ([]byte, error) {
	doc, root := newPart("w:document")
	body := root.CreateElement("w:body")

	for i := range d.Paragraphs {
		writeParagraph(body, &d.Paragraphs[i])
	}

	sectPr := body.CreateElement("w:sectPr")
	if d.Header != "" {
		ref := sectPr.CreateElement("w:headerReference")
		ref.CreateAttr("w:type", "default")
		ref.CreateAttr("r:id", "rId3")
	}
	if d.Footer != "" {
		ref := sectPr.CreateElement("w:footerReference")
		ref.CreateAttr("w:type", "default")
		ref.CreateAttr("r:id", "rId4")
	}

	// A4 with one-inch margins.
	pgSz := sectPr.CreateElement("w:pgSz")
	pgSz.CreateAttr("w:w", "11906")
	pgSz.CreateAttr("w:h", "16838")
	pgMar := sectPr.CreateElement("w:pgMar")
	for _, side := range []string{"w:top", "w:right", "w:bottom", "w:left"} {
		pgMar.CreateAttr(side, "1440")
	}
	pgMar.CreateAttr("w:header", "708")
	pgMar.CreateAttr("w:footer", "708")

	return serialize(doc)
}

func writeParagraph(body *etree.Element, p *Paragraph) {
	el := body.CreateElement("w:p")

	hasProps := p.Style != "" || p.Bullet || p.SpacingAfter > 0
	if hasProps {
		pPr := el.CreateElement("w:pPr")
		if p.Style != "" && p.Style != "Normal" {
			pStyle := pPr.CreateElement("w:pStyle")
			pStyle.CreateAttr("w:val", styleID(p.Style))
		}
		if p.Bullet {
			numPr := pPr.CreateElement("w:numPr")
			ilvl := numPr.CreateElement("w:ilvl")
			ilvl.CreateAttr("w:val", "0")
			numID := numPr.CreateElement("w:numId")
			numID.CreateAttr("w:val", "1")
		}
		if p.SpacingAfter > 0 {
			spacing := pPr.CreateElement("w:spacing")
			spacing.CreateAttr("w:after", strconv.Itoa(int(p.SpacingAfter*twipsPerPoint)))
		}
	}

	for _, run := range p.Runs {
		writeRun(el, run)
	}
}

func writeRun(p *etree.Element, run Run) {
	r := p.CreateElement("w:r")
	if run.Highlight || run.Italic {
		rPr := r.CreateElement("w:rPr")
		if run.Italic {
			rPr.CreateElement("w:i")
		}
		if run.Highlight {
			highlight := rPr.CreateElement("w:highlight")
			highlight.CreateAttr("w:val", "yellow")
		}
	}

	// Tabs inside the text become explicit tab elements.
	segments := strings.Split(run.Text, "\t")
	for i, segment := range segments {
		if i > 0 {
			r.CreateElement("w:tab")
		}
		if segment == "" {
			continue
		}
		t := r.CreateElement("w:t")
		t.CreateAttr("xml:space", "preserve")
		t.SetText(segment)
	}
}

// styleDef describes one generated style definition.
type styleDef struct {
	sizeHalf int // half-points
	bold     bool
}

func stylesXML(roles vorlage.StyleRoleMap) ([]byte, error) {
	doc, root := newPart("w:styles")

	// Document defaults: Arial 11pt, the house font of the corpus.
	docDefaults := root.CreateElement("w:docDefaults")
	rPrDefault := docDefaults.CreateElement("w:rPrDefault")
	writeRunFont(rPrDefault.CreateElement("w:rPr"), 22, false)

	defs := []struct {
		role vorlage.StyleRole
		def  styleDef
	}{
		{vorlage.RoleBody, styleDef{sizeHalf: 22}},
		{vorlage.RoleTitle, styleDef{sizeHalf: 32, bold: true}},
		{vorlage.RoleH1, styleDef{sizeHalf: 28, bold: true}},
		{vorlage.RoleH2, styleDef{sizeHalf: 24, bold: true}},
		{vorlage.RoleH3, styleDef{sizeHalf: 22, bold: true}},
		{vorlage.RoleBullet, styleDef{sizeHalf: 22}},
	}

	seen := make(map[string]bool)
	for _, entry := range defs {
		name := fallbackStyleName(roles, entry.role)
		if seen[name] {
			continue
		}
		seen[name] = true

		style := root.CreateElement("w:style")
		style.CreateAttr("w:type", "paragraph")
		style.CreateAttr("w:styleId", styleID(name))
		nameEl := style.CreateElement("w:name")
		nameEl.CreateAttr("w:val", name)
		writeRunFont(style.CreateElement("w:rPr"), entry.def.sizeHalf, entry.def.bold)
	}

	return serialize(doc)
}

// fallbackStyleName resolves a role's concrete name with the conventional
// Word defaults when the family map is silent.
func fallbackStyleName(roles vorlage.StyleRoleMap, role vorlage.StyleRole) string {
	if name, ok := roles[role]; ok && name != "" {
		return name
	}
	switch role {
	case vorlage.RoleTitle:
		return "Title"
	case vorlage.RoleH1:
		return "Heading 1"
	case vorlage.RoleH2:
		return "Heading 2"
	case vorlage.RoleH3:
		return "Heading 3"
	case vorlage.RoleBullet:
		return "List Bullet"
	default:
		return "Normal"
	}
}

func writeRunFont(rPr *etree.Element, sizeHalf int, bold bool) {
	fonts := rPr.CreateElement("w:rFonts")
	fonts.CreateAttr("w:ascii", "Arial")
	fonts.CreateAttr("w:hAnsi", "Arial")
	if bold {
		rPr.CreateElement("w:b")
	}
	sz := rPr.CreateElement("w:sz")
	sz.CreateAttr("w:val", strconv.Itoa(sizeHalf))
}

// numberingXML defines the single bullet list the renderer uses for
// bullets_allowed slots.
func numberingXML() ([]byte, error) {
	doc, root := newPart("w:numbering")

	abstract := root.CreateElement("w:abstractNum")
	abstract.CreateAttr("w:abstractNumId", "0")
	lvl := abstract.CreateElement("w:lvl")
	lvl.CreateAttr("w:ilvl", "0")
	numFmt := lvl.CreateElement("w:numFmt")
	numFmt.CreateAttr("w:val", "bullet")
	lvlText := lvl.CreateElement("w:lvlText")
	lvlText.CreateAttr("w:val", "•")
	ind := lvl.CreateElement("w:pPr").CreateElement("w:ind")
	ind.CreateAttr("w:left", "720")
	ind.CreateAttr("w:hanging", "360")

	num := root.CreateElement("w:num")
	num.CreateAttr("w:numId", "1")
	abstractRef := num.CreateElement("w:abstractNumId")
	abstractRef.CreateAttr("w:val", "0")

	return serialize(doc)
}

// headerFooterXML builds a header or footer part. Newlines split the text
// into paragraphs; tabs are preserved as tab elements.
func headerFooterXML(rootTag, text string) ([]byte, error) {
	doc, root := newPart("w:" + rootTag)
	for _, line := range strings.Split(text, "\n") {
		p := root.CreateElement("w:p")
		writeRun(p, Run{Text: line})
	}
	return serialize(doc)
}
