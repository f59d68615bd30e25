package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/gutachter/vorlage"
)

// Ensure Reader implements vorlage.Ingestor at compile time.
var _ vorlage.Ingestor = (*Reader)(nil)

// Reader parses .docx files into DocProfiles.
type Reader struct{}

// NewReader creates a new Reader.
func NewReader() *Reader {
	return &Reader{}
}

// Ingest parses one source document. The resulting profile contains every
// paragraph of the document body in reading order; nothing is silently
// dropped. Malformed archives or XML return an error the pipeline records
// and skips.
func (r *Reader) Ingest(ctx context.Context, docPath string) (*vorlage.DocProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(docPath)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", docPath, err)
	}

	profile, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", docPath, err)
	}

	stem := strings.TrimSuffix(filepath.Base(docPath), ".docx")
	profile.SourceFile = stem + ".docx"
	profile.ExtractedAt = time.Now().UTC()
	return profile, nil
}

// Parse reads a .docx archive from memory into a DocProfile. The
// SourceFile and ExtractedAt fields are left for the caller.
func Parse(data []byte) (*vorlage.DocProfile, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	styleNames, err := readStyleNames(zr)
	if err != nil {
		return nil, err
	}

	docXML, err := readPart(zr, "word/document.xml")
	if err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(docXML); err != nil {
		return nil, fmt.Errorf("parse document.xml: %w", err)
	}

	profile := &vorlage.DocProfile{
		Headers: []string{},
		Footers: []string{},
	}

	for _, p := range doc.FindElements("//w:body//w:p") {
		profile.Paragraphs = append(profile.Paragraphs, parseParagraph(p, styleNames))
	}

	profile.Headers = readSectionTexts(zr, "word/header")
	profile.Footers = readSectionTexts(zr, "word/footer")

	return profile, nil
}

// readStyleNames maps style IDs to human-readable style names from
// word/styles.xml. Documents without a styles part yield an empty map; the
// raw style IDs are then used as names.
func readStyleNames(zr *zip.Reader) (map[string]string, error) {
	names := make(map[string]string)

	data, err := readPart(zr, "word/styles.xml")
	if err != nil {
		return names, nil
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parse styles.xml: %w", err)
	}

	for _, style := range doc.FindElements("//w:style") {
		id := style.SelectAttrValue("w:styleId", "")
		if id == "" {
			continue
		}
		if name := style.SelectElement("w:name"); name != nil {
			names[id] = name.SelectAttrValue("w:val", id)
		}
	}
	return names, nil
}

func parseParagraph(p *etree.Element, styleNames map[string]string) vorlage.ParagraphRecord {
	record := vorlage.ParagraphRecord{
		Style: "Normal",
	}

	if pPr := p.SelectElement("w:pPr"); pPr != nil {
		if pStyle := pPr.SelectElement("w:pStyle"); pStyle != nil {
			id := pStyle.SelectAttrValue("w:val", "")
			if name, ok := styleNames[id]; ok && name != "" {
				record.Style = name
			} else if id != "" {
				record.Style = id
			}
		}

		if outline := pPr.SelectElement("w:outlineLvl"); outline != nil {
			if lvl, err := strconv.Atoi(outline.SelectAttrValue("w:val", "")); err == nil {
				record.OutlineLevel = lvl + 1
			}
		}

		if numPr := pPr.SelectElement("w:numPr"); numPr != nil {
			record.List.IsList = true
			if ilvl := numPr.SelectElement("w:ilvl"); ilvl != nil {
				if lvl, err := strconv.Atoi(ilvl.SelectAttrValue("w:val", "")); err == nil {
					record.List.Level = lvl
				}
			}
		}

		if spacing := pPr.SelectElement("w:spacing"); spacing != nil {
			record.Spacing.Before = twipsAttr(spacing, "w:before")
			record.Spacing.After = twipsAttr(spacing, "w:after")
		}
		if ind := pPr.SelectElement("w:ind"); ind != nil {
			record.Spacing.LeftIndent = twipsAttr(ind, "w:left")
		}
	}

	// Heading level from the style name wins over w:outlineLvl; it is what
	// the source authors actually picked.
	if lvl, ok := headingLevel(record.Style); ok {
		record.OutlineLevel = lvl
	}

	record.Text = paragraphText(p)
	record.Norm = vorlage.Normalize(record.Text)
	return record
}

// headingLevel extracts N from style names like "Heading 1" or
// "Überschrift 2".
func headingLevel(styleName string) (int, bool) {
	fields := strings.Fields(styleName)
	if len(fields) != 2 {
		return 0, false
	}
	first := strings.ToLower(fields[0])
	if first != "heading" && first != "überschrift" {
		return 0, false
	}
	lvl, err := strconv.Atoi(fields[1])
	if err != nil || lvl < 1 {
		return 0, false
	}
	return lvl, true
}

// paragraphText concatenates the paragraph's run text. Tabs are preserved
// as "\t"; line breaks become single spaces.
func paragraphText(p *etree.Element) string {
	var b strings.Builder
	for _, r := range p.FindElements(".//w:r") {
		for _, child := range r.ChildElements() {
			switch child.Tag {
			case "t":
				b.WriteString(child.Text())
			case "tab":
				b.WriteString("\t")
			case "br", "cr":
				b.WriteString(" ")
			}
		}
	}
	return b.String()
}

func twipsAttr(e *etree.Element, attr string) float64 {
	v := e.SelectAttrValue(attr, "")
	if v == "" {
		return 0
	}
	twips, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return twips / twipsPerPoint
}

// readSectionTexts collects the text of all header or footer parts, one
// string per part, paragraphs joined with newlines and empty paragraphs
// skipped. Duplicate parts (e.g. identical first-page and default headers)
// are collapsed.
func readSectionTexts(zr *zip.Reader, prefix string) []string {
	var files []*zip.File
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, prefix) && strings.HasSuffix(f.Name, ".xml") {
			files = append(files, f)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	texts := []string{}
	seen := make(map[string]bool)
	for _, f := range files {
		data, err := readZipFile(f)
		if err != nil {
			continue
		}
		doc := etree.NewDocument()
		if err := doc.ReadFromBytes(data); err != nil {
			continue
		}

		var lines []string
		for _, p := range doc.FindElements("//w:p") {
			text := paragraphText(p)
			if strings.TrimSpace(text) != "" {
				lines = append(lines, text)
			}
		}
		text := strings.Join(lines, "\n")
		if text != "" && !seen[text] {
			seen[text] = true
			texts = append(texts, text)
		}
	}
	return texts
}

func readPart(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name == name {
			return readZipFile(f)
		}
	}
	return nil, fmt.Errorf("missing archive part %q", name)
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
