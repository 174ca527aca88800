package notion

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donesync/internal/blocks"
)

func TestEncode_TodoWireShape(t *testing.T) {
	obj, err := Encode(blocks.TodoItem{
		Runs: []blocks.TextRun{
			{Content: "ship ", Style: blocks.Plain},
			{Content: "v2", Style: blocks.Bold},
		},
		Checked: false,
	})
	require.NoError(t, err)

	data, err := json.Marshal(obj)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"object": "block",
		"type": "to_do",
		"to_do": {
			"rich_text": [
				{"type": "text", "text": {"content": "ship "}},
				{"type": "text", "text": {"content": "v2"}, "annotations": {"bold": true}}
			],
			"checked": false
		}
	}`, string(data))
}

func TestEncode_HeadingLevels(t *testing.T) {
	for level, want := range map[int]string{1: TypeHeading1, 2: TypeHeading2, 3: TypeHeading3} {
		obj, err := Encode(blocks.Heading{Level: level, Runs: []blocks.TextRun{{Content: "h"}}})
		require.NoError(t, err)
		assert.Equal(t, want, obj.Type)
	}

	_, err := Encode(blocks.Heading{Level: 4})
	assert.Error(t, err)
}

func TestEncode_CodeRunAnnotation(t *testing.T) {
	obj, err := Encode(blocks.BulletItem{Runs: []blocks.TextRun{{Content: "make", Style: blocks.Code}}})
	require.NoError(t, err)

	data, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"object": "block",
		"type": "bulleted_list_item",
		"bulleted_list_item": {
			"rich_text": [{"type": "text", "text": {"content": "make"}, "annotations": {"code": true}}]
		}
	}`, string(data))
}

func TestEncode_CodeBlockChunking(t *testing.T) {
	text := strings.Repeat("a", 4500)

	obj, err := Encode(blocks.CodeBlock{Text: text, Language: "go"})
	require.NoError(t, err)

	require.Len(t, obj.Payload.RichText, 3)
	assert.Len(t, obj.Payload.RichText[0].Text.Content, 2000)
	assert.Len(t, obj.Payload.RichText[1].Text.Content, 2000)
	assert.Len(t, obj.Payload.RichText[2].Text.Content, 500)
	assert.Equal(t, "go", obj.Payload.Language)
	for _, rt := range obj.Payload.RichText {
		assert.Nil(t, rt.Annotations)
	}
}

func TestEncode_CodeChunkingCountsCodePoints(t *testing.T) {
	text := strings.Repeat("é", 2001)

	obj, err := Encode(blocks.CodeBlock{Text: text, Language: "plain text"})
	require.NoError(t, err)

	require.Len(t, obj.Payload.RichText, 2)
	assert.Equal(t, strings.Repeat("é", 2000), obj.Payload.RichText[0].Text.Content)
	assert.Equal(t, "é", obj.Payload.RichText[1].Text.Content)
}

func TestEncode_EmptyCodeBlock(t *testing.T) {
	obj, err := Encode(blocks.CodeBlock{Text: "", Language: "plain text"})
	require.NoError(t, err)

	data, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.JSONEq(t, `{"object":"block","type":"code","code":{"rich_text":[],"language":"plain text"}}`, string(data))
}

func TestObject_UnmarshalRoundTrip(t *testing.T) {
	in, err := Encode(blocks.TodoItem{Runs: []blocks.TextRun{{Content: "x"}}, Checked: true})
	require.NoError(t, err)
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out Object
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestLanguage(t *testing.T) {
	cases := map[string]string{
		"":           "plain text",
		"plain text": "plain text",
		"Go":         "go",
		"py":         "python",
		"yml":        "yaml",
		"ts":         "typescript",
		"JSON":       "json",
	}
	for in, want := range cases {
		assert.Equal(t, want, Language(in), in)
	}
	assert.Equal(t, "plain text", Language("no-such-language-here"))
}
