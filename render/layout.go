package render

import (
	"fmt"
	"strings"
	"unicode"

	"contestacao-backend/models"
)

type blockStyle int

const (
	styleMasthead blockStyle = iota
	styleAddress
	styleCaption
	styleTitle
	styleHeading
	styleParagraph
	styleChecklist
	styleClosing
)

// Block is one laid-out unit of the document. Both encoders walk the same
// blocks, so the DOCX and the plain text always carry the same lines.
type Block struct {
	Style blockStyle
	Lines []string
	// SpaceBefore adds an empty paragraph before the block in DOCX output
	SpaceBefore bool
}

const attachmentsTitle = "DOCUMENTOS ANEXOS"

// Layout turns the model into the ordered blocks of a contestation
func (r *Renderer) Layout(model models.RenderModel) []Block {
	m := model.WithDefaults()

	blocks := []Block{
		{Style: styleMasthead, Lines: cleanLines(r.cfg.Letterhead, r.cfg.Tagline)},
		{Style: styleAddress, SpaceBefore: true, Lines: cleanLines(
			"EXCELENTÍSSIMO(A) SENHOR(A) DOUTOR(A) JUIZ(A) DE DIREITO",
			fmt.Sprintf("DA VARA CÍVEL DO FORO %s DA COMARCA DE %s", m.Forum, m.District),
		)},
		{Style: styleCaption, SpaceBefore: true, Lines: cleanLines(
			"Processo n.º: "+m.ProcessNumber,
			"Autor: "+m.PlaintiffName,
			"Réu: "+m.DefendantName,
		)},
		{Style: styleTitle, SpaceBefore: true, Lines: []string{"CONTESTAÇÃO"}},
	}

	for _, s := range m.Sections {
		if title := cleanLines(s.Title); len(title) > 0 {
			blocks = append(blocks, Block{Style: styleHeading, SpaceBefore: true, Lines: title})
		}
		for _, p := range s.Paragraphs {
			if lines := cleanLines(p); len(lines) > 0 {
				blocks = append(blocks, Block{Style: styleParagraph, Lines: lines})
			}
		}
	}

	checklist := make([]string, 0, len(r.cfg.Attachments))
	for _, item := range cleanLines(r.cfg.Attachments...) {
		checklist = append(checklist, "• "+item)
	}
	blocks = append(blocks,
		Block{Style: styleHeading, SpaceBefore: true, Lines: []string{attachmentsTitle}},
	)
	if len(checklist) > 0 {
		blocks = append(blocks, Block{Style: styleChecklist, Lines: checklist})
	}

	blocks = append(blocks,
		Block{Style: styleClosing, SpaceBefore: true, Lines: []string{"Termos em que,", "Pede deferimento."}},
		Block{Style: styleClosing, Lines: []string{r.cfg.Now().Format("02/01/2006")}},
		Block{Style: styleClosing, Lines: cleanLines(
			"_____________________________",
			m.LawyerName,
			fmt.Sprintf("OAB/%s %s", m.LawyerState, m.LawyerNumber),
		)},
	)
	return blocks
}

// FromSections flattens a parsed section tree into render sections.
// Subsection headings become paragraphs of their own, followed by their content.
func FromSections(sections []models.Section) []models.RenderSection {
	out := make([]models.RenderSection, 0, len(sections))
	for _, s := range sections {
		paragraphs := s.Paragraphs()
		for _, sub := range s.Subsections {
			paragraphs = append(paragraphs, subsectionHeading(sub))
			paragraphs = append(paragraphs, sub.Paragraphs()...)
		}
		out = append(out, models.RenderSection{
			Title:      s.Title,
			Paragraphs: paragraphs,
		})
	}
	return out
}

func subsectionHeading(sub models.Subsection) string {
	// lettered labels already carry their closing parenthesis
	if strings.HasSuffix(sub.Number, ")") {
		return sub.Number + " " + sub.Title
	}
	return sub.Number + ". " + sub.Title
}

// cleanLines splits every value on newlines, strips control characters,
// trims and drops empty lines.
func cleanLines(values ...string) []string {
	var lines []string
	for _, v := range values {
		for _, line := range strings.Split(v, "\n") {
			line = strings.TrimSpace(strings.Map(dropControl, line))
			if line != "" {
				lines = append(lines, line)
			}
		}
	}
	return lines
}

func dropControl(r rune) rune {
	if r == '\t' {
		return ' '
	}
	// invalid UTF-8 decodes to the replacement char; FFFE and FFFF are not valid XML
	if unicode.IsControl(r) || r == unicode.ReplacementChar || r == 0xFFFE || r == 0xFFFF {
		return -1
	}
	return r
}
