package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"donesync/internal/blocks"
	"donesync/internal/notion"
)

const (
	FormatMarkdown = "markdown"
	FormatTerminal = "terminal"
	FormatHTML     = "html"
	FormatJSON     = "json"
)

var htmlMarkdown = goldmark.New(
	goldmark.WithExtensions(extension.TaskList),
)

// Render produces a local preview of doc in the given format.
func Render(format, title string, doc blocks.Document, width int) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatMarkdown:
		return Markdown(title, doc), nil
	case FormatTerminal:
		return Terminal(title, doc, width)
	case FormatHTML:
		return HTML(title, doc)
	case FormatJSON:
		return JSON(title, doc)
	default:
		return "", fmt.Errorf("unknown preview format %q", format)
	}
}

// Markdown re-emits doc as markup. Typical documents convert back to the
// same blocks; the text is not byte-identical to the input file.
func Markdown(title string, doc blocks.Document) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString("# " + title + "\n\n")
	}
	for i, b := range doc {
		if i > 0 && separate(doc[i-1], b) {
			sb.WriteString("\n")
		}
		switch v := b.(type) {
		case blocks.Heading:
			sb.WriteString(strings.Repeat("#", v.Level) + " " + inline(v.Runs) + "\n")
		case blocks.Paragraph:
			sb.WriteString(inline(v.Runs) + "\n")
		case blocks.BulletItem:
			sb.WriteString("- " + inline(v.Runs) + "\n")
		case blocks.TodoItem:
			mark := " "
			if v.Checked {
				mark = "x"
			}
			sb.WriteString("- [" + mark + "] " + inline(v.Runs) + "\n")
		case blocks.CodeBlock:
			lang := v.Language
			if lang == blocks.DefaultCodeLanguage {
				lang = ""
			}
			sb.WriteString("```" + lang + "\n")
			if v.Text != "" {
				sb.WriteString(v.Text + "\n")
			}
			sb.WriteString("```\n")
		}
	}
	return sb.String()
}

// list items stay together; everything else gets a blank line between.
func separate(prev, next blocks.Block) bool {
	return !(isListItem(prev) && isListItem(next))
}

func isListItem(b blocks.Block) bool {
	k := b.Kind()
	return k == blocks.KindBullet || k == blocks.KindTodo
}

func inline(runs []blocks.TextRun) string {
	var sb strings.Builder
	for _, r := range runs {
		switch r.Style {
		case blocks.Bold:
			sb.WriteString("**" + r.Content + "**")
		case blocks.Code:
			sb.WriteString("`" + r.Content + "`")
		default:
			sb.WriteString(r.Content)
		}
	}
	return sb.String()
}

// Terminal renders the markdown preview with glamour.
func Terminal(title string, doc blocks.Document, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(Markdown(title, doc))
}

// HTML renders the markdown preview with goldmark.
func HTML(title string, doc blocks.Document) (string, error) {
	var buf bytes.Buffer
	if err := htmlMarkdown.Convert([]byte(Markdown(title, doc)), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// JSON shows the exact block objects that would be sent to the host, split
// into the calls that would carry them.
func JSON(title string, doc blocks.Document) (string, error) {
	objs, err := notion.EncodeDocument(doc)
	if err != nil {
		return "", err
	}

	type call struct {
		Method   string          `json:"method"`
		Children []notion.Object `json:"children"`
	}
	out := struct {
		Title string `json:"title"`
		Calls []call `json:"calls"`
	}{Title: title}

	offset := 0
	for i, n := range notion.Plan(len(objs)) {
		method := "PATCH"
		if i == 0 {
			method = "POST"
		}
		out.Calls = append(out.Calls, call{Method: method, Children: objs[offset : offset+n]})
		offset += n
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}
