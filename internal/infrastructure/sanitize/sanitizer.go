// Package sanitize normalizes extracted document text before it is handed
// to the completion service.
package sanitize

import "strings"

type Sanitizer struct{}

func New() *Sanitizer {
	return &Sanitizer{}
}

// unicodeSpaces are space-like code points folded to a plain ASCII space.
var unicodeSpaces = map[rune]bool{
	' ': true, // no-break space
	' ': true, // narrow no-break space
	' ': true, // medium mathematical space
	'　': true, // ideographic space
}

// Sanitize strips control characters (keeping newline and tab), folds exotic
// whitespace to ASCII space, collapses space and blank-line runs, and trims
// every line. It is total and idempotent.
func (s *Sanitizer) Sanitize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range text {
		switch {
		case r == '\n' || r == '\t':
			b.WriteRune(r)
		case r < 0x20 || r == 0x7f || (r >= 0x80 && r <= 0x9f):
			// C0/C1 control characters and DEL dropped outright.
		case unicodeSpaces[r] || (r >= ' ' && r <= '​'):
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}

	lines := strings.Split(b.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(collapseSpaces(line))
	}

	return strings.TrimSpace(collapseBlankLines(lines))
}

func collapseSpaces(line string) string {
	for strings.Contains(line, "  ") {
		line = strings.ReplaceAll(line, "  ", " ")
	}
	return line
}

// collapseBlankLines joins lines keeping at most one empty line between
// paragraphs.
func collapseBlankLines(lines []string) string {
	var b strings.Builder
	blanks := 0
	wrote := false
	for _, line := range lines {
		if line == "" {
			blanks++
			continue
		}
		if wrote {
			if blanks > 0 {
				b.WriteString("\n\n")
			} else {
				b.WriteByte('\n')
			}
		}
		b.WriteString(line)
		wrote = true
		blanks = 0
	}
	return b.String()
}
