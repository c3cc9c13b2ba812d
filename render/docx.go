package render

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"time"
)

// Page and indent sizes in twentieths of a point
const (
	twipsPerCm   = 567
	a4WidthTwips = 11906
	a4HeightTwip = 16838
	indentTwips  = 2 * twipsPerCm
	largeHalfPts = 28 // 14pt
)

const (
	contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
		`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
		`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>` +
		`</Types>`

	packageRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
		`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>` +
		`</Relationships>`

	documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>` +
		`</Relationships>`

	wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
)

// docxPart is one file of the OOXML package
type docxPart struct {
	name string
	body []byte
}

func encodeDocx(blocks []Block, cfg Config) ([]byte, error) {
	parts := []docxPart{
		{name: "[Content_Types].xml", body: []byte(contentTypesXML)},
		{name: "_rels/.rels", body: []byte(packageRelsXML)},
		{name: "docProps/core.xml", body: coreXML(cfg.Now())},
		{name: "word/_rels/document.xml.rels", body: []byte(documentRelsXML)},
		{name: "word/styles.xml", body: stylesXML(cfg)},
		{name: "word/document.xml", body: documentXML(blocks, cfg)},
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", part.name, err)
		}
		if _, err := w.Write(part.body); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize docx package: %w", err)
	}
	return buf.Bytes(), nil
}

func coreXML(now time.Time) []byte {
	stamp := now.UTC().Format(time.RFC3339)
	return []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" ` +
		`xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" ` +
		`xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
		`<dc:title>Contestação</dc:title>` +
		`<dcterms:created xsi:type="dcterms:W3CDTF">` + stamp + `</dcterms:created>` +
		`<dcterms:modified xsi:type="dcterms:W3CDTF">` + stamp + `</dcterms:modified>` +
		`</cp:coreProperties>`)
}

func stylesXML(cfg Config) []byte {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<w:styles xmlns:w="` + wordNamespace + `"><w:docDefaults><w:rPrDefault><w:rPr>`)
	b.WriteString(`<w:rFonts w:ascii="`)
	escape(&b, cfg.FontFamily)
	b.WriteString(`" w:hAnsi="`)
	escape(&b, cfg.FontFamily)
	b.WriteString(`" w:cs="`)
	escape(&b, cfg.FontFamily)
	fmt.Fprintf(&b, `"/><w:sz w:val="%d"/><w:szCs w:val="%d"/><w:lang w:val="pt-BR"/>`, cfg.FontSize*2, cfg.FontSize*2)
	b.WriteString(`</w:rPr></w:rPrDefault><w:pPrDefault><w:pPr><w:spacing w:after="120"/></w:pPr></w:pPrDefault></w:docDefaults>`)
	b.WriteString(`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>`)
	b.WriteString(`</w:styles>`)
	return b.Bytes()
}

// runStyle describes the character formatting of one line
type runStyle struct {
	bold    bool
	halfPts int
}

// paraStyle describes the paragraph formatting of a block
type paraStyle struct {
	align     string
	firstLine int
	left      int
	perLine   bool
	run       func(line int) runStyle
}

func styleFor(s blockStyle) paraStyle {
	plain := func(int) runStyle { return runStyle{} }
	switch s {
	case styleMasthead, styleTitle:
		return paraStyle{align: "center", run: func(int) runStyle { return runStyle{bold: true, halfPts: largeHalfPts} }}
	case styleAddress:
		return paraStyle{align: "center", run: func(line int) runStyle { return runStyle{bold: line == 0} }}
	case styleHeading:
		return paraStyle{align: "center", run: func(int) runStyle { return runStyle{bold: true} }}
	case styleParagraph:
		return paraStyle{align: "both", firstLine: indentTwips, run: plain}
	case styleChecklist:
		return paraStyle{left: indentTwips, perLine: true, run: plain}
	default:
		return paraStyle{align: "center", run: plain}
	}
}

func documentXML(blocks []Block, cfg Config) []byte {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<w:document xmlns:w="` + wordNamespace + `"><w:body>`)

	for i, block := range blocks {
		if block.SpaceBefore && i > 0 {
			b.WriteString(`<w:p/>`)
		}
		ps := styleFor(block.Style)
		if ps.perLine {
			for j, line := range block.Lines {
				writeParagraph(&b, ps, []string{line}, j)
			}
			continue
		}
		writeParagraph(&b, ps, block.Lines, 0)
	}

	m := cfg.Margins
	fmt.Fprintf(&b, `<w:sectPr><w:pgSz w:w="%d" w:h="%d"/>`, a4WidthTwips, a4HeightTwip)
	fmt.Fprintf(&b, `<w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d" w:header="708" w:footer="708" w:gutter="0"/>`,
		cmToTwips(m.Top), cmToTwips(m.Right), cmToTwips(m.Bottom), cmToTwips(m.Left))
	b.WriteString(`</w:sectPr></w:body></w:document>`)
	return b.Bytes()
}

// writeParagraph writes lines as one paragraph with a break between lines.
// offset is the index of the first line within its block.
func writeParagraph(b *bytes.Buffer, ps paraStyle, lines []string, offset int) {
	b.WriteString(`<w:p><w:pPr>`)
	if ps.left > 0 || ps.firstLine > 0 {
		fmt.Fprintf(b, `<w:ind w:left="%d" w:firstLine="%d"/>`, ps.left, ps.firstLine)
	}
	if ps.align != "" {
		fmt.Fprintf(b, `<w:jc w:val="%s"/>`, ps.align)
	}
	b.WriteString(`</w:pPr>`)

	for i, line := range lines {
		rs := ps.run(offset + i)
		b.WriteString(`<w:r>`)
		if rs.bold || rs.halfPts > 0 {
			b.WriteString(`<w:rPr>`)
			if rs.bold {
				b.WriteString(`<w:b/>`)
			}
			if rs.halfPts > 0 {
				fmt.Fprintf(b, `<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, rs.halfPts, rs.halfPts)
			}
			b.WriteString(`</w:rPr>`)
		}
		if i > 0 {
			b.WriteString(`<w:br/>`)
		}
		b.WriteString(`<w:t xml:space="preserve">`)
		escape(b, line)
		b.WriteString(`</w:t></w:r>`)
	}
	b.WriteString(`</w:p>`)
}

func escape(b *bytes.Buffer, s string) {
	// writes to a bytes.Buffer cannot fail
	_ = xml.EscapeText(b, []byte(s))
}

func cmToTwips(cm float64) int {
	return int(math.Round(cm * twipsPerCm))
}
