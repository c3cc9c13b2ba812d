package render

import (
	"strings"
)

const paragraphIndent = "    "

// encodePlain writes one line per block line, a blank line between blocks
// and a four-space indent on body paragraphs.
func encodePlain(blocks []Block) ([]byte, error) {
	var b strings.Builder
	for i, block := range blocks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		for j, line := range block.Lines {
			if j > 0 {
				b.WriteByte('\n')
			}
			if block.Style == styleParagraph {
				b.WriteString(paragraphIndent)
			}
			b.WriteString(line)
		}
	}
	return []byte(b.String()), nil
}
