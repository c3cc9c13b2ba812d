// Package parser turns a raw model response into case data and a section tree.
package parser

import (
	"regexp"
	"strings"

	"contestacao-backend/models"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// rule pairs a heading pattern with the transition it triggers.
// Rules are evaluated in order and the first match wins.
type rule struct {
	name    string
	pattern *regexp.Regexp
	apply   func(b *sectionBuilder, line string, match []string)
}

func openSectionRule(b *sectionBuilder, line string, _ []string) {
	b.openSection(line)
}

func openSubsectionRule(b *sectionBuilder, _ string, match []string) {
	b.openSubsection(match[1], strings.TrimSpace(match[2]))
}

// mainSectionRules recognize the four top-level headings of a contestation
var mainSectionRules = []rule{
	{name: "preliminar", pattern: regexp.MustCompile(`(?i)^(?:PRELIMINARMENTE|PRELIMINAR)`), apply: openSectionRule},
	{name: "merito", pattern: regexp.MustCompile(`(?i)^(?:DO MÉRITO|MÉRITO)`), apply: openSectionRule},
	{name: "pedidos", pattern: regexp.MustCompile(`(?i)^(?:DOS PEDIDOS|DOS REQUERIMENTOS)`), apply: openSectionRule},
	{name: "anexos", pattern: regexp.MustCompile(`(?i)^DOCUMENTOS ANEXOS`), apply: openSectionRule},
}

// subsectionRules recognize numbered and lettered arguments.
// The second numeric slot mirrors the first; see DESIGN.md before merging them.
var subsectionRules = []rule{
	{name: "numeric", pattern: regexp.MustCompile(`^(\d+)[.)]\s*([A-Z][^.]+)`), apply: openSubsectionRule},
	{name: "lettered", pattern: regexp.MustCompile(`^([a-z]\))\s*([A-Z][^.]+)`), apply: openSubsectionRule},
	{name: "numeric_alt", pattern: regexp.MustCompile(`^(\d+)[.)]\s*([A-Z][^.]+)`), apply: openSubsectionRule},
}

// applyFirst runs the first rule matching line and reports whether one did
func applyFirst(rules []rule, b *sectionBuilder, line string) bool {
	for _, r := range rules {
		if match := r.pattern.FindStringSubmatch(line); match != nil {
			r.apply(b, line, match)
			return true
		}
	}
	return false
}

// sectionBuilder is the two-level open/close state machine.
// A subsection is only ever open while a section is open.
type sectionBuilder struct {
	sections   []models.Section
	section    *models.Section
	subsection *models.Subsection
}

func (b *sectionBuilder) openSection(title string) {
	b.closeSection()
	b.section = &models.Section{
		Title:       strings.ToUpper(title),
		Subsections: []models.Subsection{},
	}
}

func (b *sectionBuilder) openSubsection(number, title string) {
	if b.section == nil {
		return
	}
	b.closeSubsection()
	b.subsection = &models.Subsection{
		Number: number,
		Title:  title,
	}
}

// appendContent adds a paragraph to the innermost open node.
// Lines outside any section are dropped.
func (b *sectionBuilder) appendContent(line string) {
	switch {
	case b.subsection != nil:
		b.subsection.Content += line + models.ParagraphBreak
	case b.section != nil:
		b.section.Content += line + models.ParagraphBreak
	}
}

func (b *sectionBuilder) closeSubsection() {
	if b.subsection == nil {
		return
	}
	b.section.Subsections = append(b.section.Subsections, *b.subsection)
	b.subsection = nil
}

func (b *sectionBuilder) closeSection() {
	if b.section == nil {
		return
	}
	b.closeSubsection()
	b.sections = append(b.sections, *b.section)
	b.section = nil
}

func (b *sectionBuilder) finish() []models.Section {
	b.closeSection()
	return b.sections
}

// consume feeds one line through the rule lists
func (b *sectionBuilder) consume(line string) {
	if applyFirst(mainSectionRules, b, line) {
		return
	}
	if b.section != nil && applyFirst(subsectionRules, b, line) {
		return
	}
	b.appendContent(line)
}

// BuildSections splits contestation text into a section tree. It never fails:
// when no main heading is found the whole text becomes a single fallback section.
func BuildSections(text string) []models.Section {
	lines := Dedupe(Lines(text))

	b := &sectionBuilder{}
	for _, line := range lines {
		b.consume(line)
	}
	sections := b.finish()

	if len(sections) == 0 {
		zap.L().Debug("no section heading recognized, using fallback section",
			zap.Int("chars", len(text)),
			zap.Int("lines", len(lines)),
		)
		return []models.Section{FallbackSection(text)}
	}

	zap.L().Debug("contestation split into sections",
		zap.Int("chars", len(text)),
		zap.Int("lines", len(lines)),
		zap.Int("sections", len(sections)),
	)
	return sections
}

// FallbackSection wraps the whole text in a single section
func FallbackSection(text string) models.Section {
	return models.Section{
		Title:       models.FallbackSectionTitle,
		Content:     strings.ReplaceAll(text, "\n", models.ParagraphBreak),
		Subsections: []models.Subsection{},
	}
}

// Lines returns the trimmed non-empty lines of text in NFC form
func Lines(text string) []string {
	text = norm.NFC.String(text)
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Dedupe drops every line already seen earlier in the sequence,
// keeping first occurrences in their original order.
func Dedupe(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	unique := make([]string, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		unique = append(unique, line)
	}
	return unique
}
