package models

import "strings"

// ParagraphBreak marks the end of a paragraph inside section content
const ParagraphBreak = "<br>"

// FallbackSectionTitle is used when no main section heading is recognized
const FallbackSectionTitle = "CONTESTAÇÃO"

// Section represents a top-level section of a contestation
type Section struct {
	Title       string       `json:"title"`
	Content     string       `json:"content"`
	Subsections []Subsection `json:"subsections"`
}

// Subsection represents a numbered or lettered argument inside a section
type Subsection struct {
	Number  string `json:"number"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Paragraphs returns the section's own paragraphs, without subsections
func (s Section) Paragraphs() []string {
	return SplitParagraphs(s.Content)
}

// Paragraphs returns the subsection paragraphs
func (s Subsection) Paragraphs() []string {
	return SplitParagraphs(s.Content)
}

// SplitParagraphs splits marker-encoded content into non-empty paragraphs
func SplitParagraphs(content string) []string {
	parts := strings.Split(content, ParagraphBreak)
	paragraphs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}
