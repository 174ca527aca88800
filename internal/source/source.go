package source

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"
	goerrors "github.com/goliatone/go-errors"

	"donesync/internal/blocks"
)

const CodeUnreadable = "INPUT_UNREADABLE"

// Summary is a loaded summary file ready for conversion.
type Summary struct {
	Path  string
	Body  string
	Meta  Meta
	Title string
}

// Meta is the optional YAML front matter of a summary file.
type Meta struct {
	Title string   `yaml:"title"`
	Date  string   `yaml:"date"`
	Tags  []string `yaml:"tags"`
}

// Load reads path and resolves the page title: an explicit title wins, then
// the front matter title, then the first level-1 heading, then the file name.
func Load(path, title string) (*Summary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerrors.New("file not found: "+path, goerrors.CategoryValidation).WithTextCode(CodeUnreadable)
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "cannot read input file").WithTextCode(CodeUnreadable)
	}

	meta, body := SplitFrontMatter(raw)
	s := &Summary{Path: path, Body: body, Meta: meta}
	s.Title = resolveTitle(title, meta, body, path)
	return s, nil
}

// SplitFrontMatter separates a leading front matter block from the body.
// Input without (or with unparseable) front matter is returned untouched.
func SplitFrontMatter(raw []byte) (Meta, string) {
	if !bytes.HasPrefix(raw, []byte("---")) && !bytes.HasPrefix(raw, []byte("+++")) {
		return Meta{}, string(raw)
	}
	var meta Meta
	body, err := frontmatter.Parse(bytes.NewReader(raw), &meta)
	if err != nil {
		return Meta{}, string(raw)
	}
	return meta, string(body)
}

func resolveTitle(explicit string, meta Meta, body, path string) string {
	if t := strings.TrimSpace(explicit); t != "" {
		return t
	}
	if t := strings.TrimSpace(meta.Title); t != "" {
		return t
	}
	if t, ok := blocks.Title(body); ok && t != "" {
		return t
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
