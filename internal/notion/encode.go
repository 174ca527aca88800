package notion

import (
	"encoding/json"
	"fmt"

	"donesync/internal/blocks"
)

const (
	TypeHeading1  = "heading_1"
	TypeHeading2  = "heading_2"
	TypeHeading3  = "heading_3"
	TypeParagraph = "paragraph"
	TypeBullet    = "bulleted_list_item"
	TypeTodo      = "to_do"
	TypeCode      = "code"
)

// RichText is one run object inside a block payload.
type RichText struct {
	Type        string       `json:"type"`
	Text        TextContent  `json:"text"`
	Annotations *Annotations `json:"annotations,omitempty"`
}

type TextContent struct {
	Content string `json:"content"`
}

// Annotations is omitted entirely for plain runs.
type Annotations struct {
	Bold bool `json:"bold,omitempty"`
	Code bool `json:"code,omitempty"`
}

// Payload is the type-keyed body of a block object.
type Payload struct {
	RichText []RichText `json:"rich_text"`
	Checked  *bool      `json:"checked,omitempty"`
	Language string     `json:"language,omitempty"`
}

// Object is a block as sent to the host: {"object":"block","type":T,T:{...}}.
type Object struct {
	Type    string
	Payload Payload
}

func (o Object) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"object": "block",
		"type":   o.Type,
		o.Type:   o.Payload,
	})
}

func (o *Object) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw["type"], &o.Type); err != nil {
		return fmt.Errorf("block type: %w", err)
	}
	body, ok := raw[o.Type]
	if !ok {
		return fmt.Errorf("block %q has no payload", o.Type)
	}
	return json.Unmarshal(body, &o.Payload)
}

// Encode converts one block into its wire object.
func Encode(b blocks.Block) (Object, error) {
	switch v := b.(type) {
	case blocks.Heading:
		t, err := headingType(v.Level)
		if err != nil {
			return Object{}, err
		}
		return Object{Type: t, Payload: Payload{RichText: richText(v.Runs)}}, nil
	case blocks.Paragraph:
		return Object{Type: TypeParagraph, Payload: Payload{RichText: richText(v.Runs)}}, nil
	case blocks.BulletItem:
		return Object{Type: TypeBullet, Payload: Payload{RichText: richText(v.Runs)}}, nil
	case blocks.TodoItem:
		checked := v.Checked
		return Object{Type: TypeTodo, Payload: Payload{RichText: richText(v.Runs), Checked: &checked}}, nil
	case blocks.CodeBlock:
		return Object{Type: TypeCode, Payload: Payload{
			RichText: codeText(v.Text, MaxRichTextLength),
			Language: Language(v.Language),
		}}, nil
	default:
		return Object{}, fmt.Errorf("unsupported block %T", b)
	}
}

// EncodeDocument encodes every block of doc in order.
func EncodeDocument(doc blocks.Document) ([]Object, error) {
	out := make([]Object, 0, len(doc))
	for i, b := range doc {
		obj, err := Encode(b)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		out = append(out, obj)
	}
	return out, nil
}

func headingType(level int) (string, error) {
	switch level {
	case 1:
		return TypeHeading1, nil
	case 2:
		return TypeHeading2, nil
	case 3:
		return TypeHeading3, nil
	default:
		return "", fmt.Errorf("heading level %d out of range", level)
	}
}

func richText(runs []blocks.TextRun) []RichText {
	out := make([]RichText, 0, len(runs))
	for _, r := range runs {
		rt := RichText{Type: "text", Text: TextContent{Content: r.Content}}
		switch r.Style {
		case blocks.Bold:
			rt.Annotations = &Annotations{Bold: true}
		case blocks.Code:
			rt.Annotations = &Annotations{Code: true}
		}
		out = append(out, rt)
	}
	return out
}

// codeText splits text into runs of at most limit code points each.
func codeText(text string, limit int) []RichText {
	out := []RichText{}
	chars := []rune(text)
	for i := 0; i < len(chars); i += limit {
		end := i + limit
		if end > len(chars) {
			end = len(chars)
		}
		out = append(out, RichText{Type: "text", Text: TextContent{Content: string(chars[i:end])}})
	}
	return out
}
