package notion

import (
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"

	"donesync/internal/blocks"
)

// hostLanguages is the set of code block languages the host accepts.
var hostLanguages = map[string]struct{}{}

func init() {
	for _, l := range []string{
		"abap", "arduino", "bash", "basic", "c", "clojure", "coffeescript", "c++", "c#",
		"css", "dart", "diff", "docker", "elixir", "elm", "erlang", "flow", "fortran",
		"f#", "gherkin", "glsl", "go", "graphql", "groovy", "haskell", "html", "java",
		"javascript", "json", "julia", "kotlin", "latex", "less", "lisp", "livescript",
		"lua", "makefile", "markdown", "markup", "matlab", "mermaid", "nix", "objective-c",
		"ocaml", "pascal", "perl", "php", "plain text", "powershell", "prolog", "protobuf",
		"python", "r", "reason", "ruby", "rust", "sass", "scala", "scheme", "scss", "shell",
		"sql", "swift", "typescript", "vb.net", "verilog", "vhdl", "visual basic",
		"webassembly", "xml", "yaml", "java/c/c++/c#",
	} {
		hostLanguages[l] = struct{}{}
	}
}

// chroma lexer names whose lowercase form differs from the host's label.
var lexerRenames = map[string]string{
	"plaintext":       "plain text",
	"base makefile":   "makefile",
	"protocol buffer": "protobuf",
	"common lisp":     "lisp",
	"emacslisp":       "lisp",
	"fsharp":          "f#",
	"tex":             "latex",
}

// Language maps a fence tag onto a host language name. Known names pass
// through; aliases such as "py" or "yml" resolve through chroma's lexer
// registry; anything else becomes plain text.
func Language(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return blocks.DefaultCodeLanguage
	}
	if _, ok := hostLanguages[tag]; ok {
		return tag
	}

	lexer := lexers.Get(tag)
	if lexer == nil {
		return blocks.DefaultCodeLanguage
	}
	name := strings.ToLower(lexer.Config().Name)
	if renamed, ok := lexerRenames[name]; ok {
		name = renamed
	}
	if _, ok := hostLanguages[name]; ok {
		return name
	}
	return blocks.DefaultCodeLanguage
}
