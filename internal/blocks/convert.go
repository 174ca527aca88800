package blocks

import "strings"

// Convert parses markup text into a Document. The first level-1 heading is
// treated as the page title and omitted; blank lines are dropped. Conversion
// never fails: an unterminated code fence absorbs the rest of the input.
func Convert(text string) Document {
	lines := strings.Split(text, "\n")
	doc := Document{}
	st := &parseState{}

	for i := 0; i < len(lines); {
		b, n := classify(lines, i, st)
		if b != nil {
			doc = append(doc, b)
		}
		i += n
	}
	return doc
}

// Title returns the text of the first level-1 heading, the one Convert
// omits, and whether one was found.
func Title(text string) (string, bool) {
	lines := strings.Split(text, "\n")
	for i := 0; i < len(lines); {
		if b, n, ok := fencedCode(lines, i, nil); ok && b != nil {
			i += n
			continue
		}
		if strings.HasPrefix(lines[i], "# ") {
			return strings.TrimSpace(lines[i][2:]), true
		}
		i++
	}
	return "", false
}
