package blocks

import (
	"regexp"
	"strings"
)

const (
	fenceMarker = "```"

	// DefaultCodeLanguage labels fenced code opened without a language tag.
	DefaultCodeLanguage = "plain text"
)

var (
	todoPattern     = regexp.MustCompile(`^(?:[-*]\s+)?\[([ xX])\]\s+(.*)`)
	bulletPattern   = regexp.MustCompile(`^[-*]\s+`)
	metadataPattern = regexp.MustCompile(`^\*\*(.+?):\*\*\s*(.*)`)
)

// parseState is threaded through one conversion and never shared.
type parseState struct {
	titleConsumed bool
}

// rule inspects lines[i]. When it matches it reports how many lines it
// consumed and the block to emit, which may be nil for dropped lines.
type rule func(lines []string, i int, st *parseState) (block Block, consumed int, ok bool)

// rules are tried in order; the first match wins.
var rules = []rule{
	fencedCode,
	headingRule(3, "### "),
	headingRule(2, "## "),
	titleOrHeading,
	todoItem,
	bulletItem,
	metadataLine,
	blankLine,
	paragraph,
}

func classify(lines []string, i int, st *parseState) (Block, int) {
	for _, r := range rules {
		if b, n, ok := r(lines, i, st); ok {
			return b, n
		}
	}
	// paragraph always matches
	return nil, 1
}

func fencedCode(lines []string, i int, _ *parseState) (Block, int, bool) {
	if !strings.HasPrefix(lines[i], fenceMarker) {
		return nil, 0, false
	}
	lang := strings.TrimSpace(lines[i][len(fenceMarker):])
	if lang == "" {
		lang = DefaultCodeLanguage
	}

	j := i + 1
	for j < len(lines) && !strings.HasPrefix(lines[j], fenceMarker) {
		j++
	}
	body := strings.Join(lines[i+1:j], "\n")
	if j < len(lines) {
		j++ // closing fence
	}
	return CodeBlock{Text: body, Language: lang}, j - i, true
}

func headingRule(level int, prefix string) rule {
	return func(lines []string, i int, _ *parseState) (Block, int, bool) {
		if !strings.HasPrefix(lines[i], prefix) {
			return nil, 0, false
		}
		text := strings.TrimSpace(lines[i][len(prefix):])
		return Heading{Level: level, Runs: Segment(text)}, 1, true
	}
}

// titleOrHeading drops the first level-1 heading of the document; it is the
// page title rather than body content.
func titleOrHeading(lines []string, i int, st *parseState) (Block, int, bool) {
	b, n, ok := headingRule(1, "# ")(lines, i, st)
	if !ok {
		return nil, 0, false
	}
	if !st.titleConsumed {
		st.titleConsumed = true
		return nil, n, true
	}
	return b, n, true
}

func todoItem(lines []string, i int, _ *parseState) (Block, int, bool) {
	m := todoPattern.FindStringSubmatch(lines[i])
	if m == nil {
		return nil, 0, false
	}
	checked := strings.EqualFold(m[1], "x")
	return TodoItem{Runs: Segment(strings.TrimSpace(m[2])), Checked: checked}, 1, true
}

func bulletItem(lines []string, i int, _ *parseState) (Block, int, bool) {
	loc := bulletPattern.FindStringIndex(lines[i])
	if loc == nil {
		return nil, 0, false
	}
	text := strings.TrimSpace(lines[i][loc[1]:])
	if text == "" {
		return nil, 1, true
	}
	return BulletItem{Runs: Segment(text)}, 1, true
}

// metadataLine unwraps "**Label:** value" into plain "Label: value".
func metadataLine(lines []string, i int, _ *parseState) (Block, int, bool) {
	m := metadataPattern.FindStringSubmatch(lines[i])
	if m == nil {
		return nil, 0, false
	}
	return Paragraph{Runs: Segment(m[1] + ": " + m[2])}, 1, true
}

func blankLine(lines []string, i int, _ *parseState) (Block, int, bool) {
	if strings.TrimSpace(lines[i]) != "" {
		return nil, 0, false
	}
	return nil, 1, true
}

func paragraph(lines []string, i int, _ *parseState) (Block, int, bool) {
	return Paragraph{Runs: Segment(lines[i])}, 1, true
}
