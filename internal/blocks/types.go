package blocks

// Style marks how a TextRun is rendered.
type Style int

const (
	Plain Style = iota
	Bold
	Code
)

func (s Style) String() string {
	switch s {
	case Bold:
		return "bold"
	case Code:
		return "code"
	default:
		return "plain"
	}
}

// TextRun is a contiguous span of text sharing one style.
type TextRun struct {
	Content string
	Style   Style
}

// Kind identifies the variant of a Block.
type Kind string

const (
	KindHeading   Kind = "heading"
	KindParagraph Kind = "paragraph"
	KindBullet    Kind = "bullet"
	KindTodo      Kind = "todo"
	KindCode      Kind = "code"
)

// Block is one structured content unit of a Document.
// Implementations are Heading, Paragraph, BulletItem, TodoItem and CodeBlock.
type Block interface {
	Kind() Kind
}

type Heading struct {
	Level int // 1, 2 or 3
	Runs  []TextRun
}

type Paragraph struct {
	Runs []TextRun
}

type BulletItem struct {
	Runs []TextRun
}

type TodoItem struct {
	Runs    []TextRun
	Checked bool
}

// CodeBlock holds fenced content verbatim. Language is the tag captured
// after the opening fence, or DefaultCodeLanguage when none was given.
type CodeBlock struct {
	Text     string
	Language string
}

func (Heading) Kind() Kind    { return KindHeading }
func (Paragraph) Kind() Kind  { return KindParagraph }
func (BulletItem) Kind() Kind { return KindBullet }
func (TodoItem) Kind() Kind   { return KindTodo }
func (CodeBlock) Kind() Kind  { return KindCode }

// Document is the ordered block sequence produced for one input.
type Document []Block
