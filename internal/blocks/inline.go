package blocks

import "regexp"

var (
	codeSpanPattern = regexp.MustCompile("`[^`]+`")
	boldSpanPattern = regexp.MustCompile(`\*\*[^*]+\*\*`)
)

// Segment splits a line of text into styled runs. Code spans are resolved
// first and never re-scanned; bold spans are resolved in the text between
// them. Empty segments are dropped.
func Segment(text string) []TextRun {
	var runs []TextRun
	last := 0
	for _, loc := range codeSpanPattern.FindAllStringIndex(text, -1) {
		runs = appendBold(runs, text[last:loc[0]])
		runs = appendRun(runs, text[loc[0]+1:loc[1]-1], Code)
		last = loc[1]
	}
	return appendBold(runs, text[last:])
}

func appendBold(runs []TextRun, text string) []TextRun {
	last := 0
	for _, loc := range boldSpanPattern.FindAllStringIndex(text, -1) {
		runs = appendRun(runs, text[last:loc[0]], Plain)
		runs = appendRun(runs, text[loc[0]+2:loc[1]-2], Bold)
		last = loc[1]
	}
	return appendRun(runs, text[last:], Plain)
}

func appendRun(runs []TextRun, content string, style Style) []TextRun {
	if content == "" {
		return runs
	}
	return append(runs, TextRun{Content: content, Style: style})
}
