package render

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donesync/internal/blocks"
)

const sample = "# Recap\n**Date:** 2026-10-19\n## Done\n- fixed `Segment`\n- [x] **ship** it\n- [ ] write docs\n```py\nprint(1)\n```\n"

func TestMarkdown_RoundTripsThroughConvert(t *testing.T) {
	doc := blocks.Convert(sample)

	md := Markdown("Recap", doc)

	assert.Equal(t, doc, blocks.Convert(md))
	assert.Contains(t, md, "# Recap\n\n")
	assert.Contains(t, md, "- fixed `Segment`\n- [x] **ship** it\n- [ ] write docs\n")
	assert.Contains(t, md, "```py\nprint(1)\n```\n")
}

func TestMarkdown_DefaultLanguageFenceHasNoTag(t *testing.T) {
	doc := blocks.Document{blocks.CodeBlock{Text: "x", Language: blocks.DefaultCodeLanguage}}

	assert.Equal(t, "```\nx\n```\n", Markdown("", doc))
}

func TestHTML(t *testing.T) {
	out, err := HTML("Recap", blocks.Convert(sample))
	require.NoError(t, err)

	assert.Contains(t, out, "<h1>Recap</h1>")
	assert.Contains(t, out, "<h2>Done</h2>")
	assert.Contains(t, out, "<code>Segment</code>")
	assert.Contains(t, out, "<strong>ship</strong>")
	assert.Contains(t, out, `type="checkbox"`)
}

func TestTerminal(t *testing.T) {
	out, err := Terminal("Recap", blocks.Convert(sample), 60)
	require.NoError(t, err)
	assert.Contains(t, out, "Recap")
	assert.Contains(t, out, "docs")
}

func TestJSON_GroupsBlocksIntoCalls(t *testing.T) {
	doc := make(blocks.Document, 0, 130)
	for i := 0; i < 130; i++ {
		doc = append(doc, blocks.Paragraph{Runs: []blocks.TextRun{{Content: fmt.Sprintf("p%d", i)}}})
	}

	out, err := JSON("t", doc)
	require.NoError(t, err)

	var parsed struct {
		Title string `json:"title"`
		Calls []struct {
			Method   string            `json:"method"`
			Children []json.RawMessage `json:"children"`
		} `json:"calls"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	assert.Equal(t, "t", parsed.Title)
	require.Len(t, parsed.Calls, 2)
	assert.Equal(t, "POST", parsed.Calls[0].Method)
	assert.Len(t, parsed.Calls[0].Children, 100)
	assert.Equal(t, "PATCH", parsed.Calls[1].Method)
	assert.Len(t, parsed.Calls[1].Children, 30)
}

func TestRender_UnknownFormat(t *testing.T) {
	_, err := Render("pdf", "t", nil, 0)
	assert.Error(t, err)
}
