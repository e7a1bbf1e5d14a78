package classify

import (
	"fmt"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
	"github.com/smacker/go-tree-sitter/yaml"
)

// Language describes one supported source language: its tree-sitter grammar,
// the node types its grammar uses for comments, and the inline comment
// delimiters that introduce documentation lines (longest first).
type Language struct {
	Name         string
	Sitter       *sitter.Language
	CommentTypes []string
	InlineDelims []string
}

var languages = []Language{
	{Name: "go", Sitter: golang.GetLanguage(), CommentTypes: []string{"comment"}, InlineDelims: []string{"//"}},
	{Name: "python", Sitter: python.GetLanguage(), CommentTypes: []string{"comment"}, InlineDelims: []string{"#"}},
	{Name: "javascript", Sitter: javascript.GetLanguage(), CommentTypes: []string{"comment"}, InlineDelims: []string{"//"}},
	{Name: "typescript", Sitter: typescript.GetLanguage(), CommentTypes: []string{"comment"}, InlineDelims: []string{"//"}},
	{Name: "c", Sitter: c.GetLanguage(), CommentTypes: []string{"comment"}, InlineDelims: []string{"//"}},
	{Name: "cpp", Sitter: cpp.GetLanguage(), CommentTypes: []string{"comment"}, InlineDelims: []string{"//"}},
	{Name: "rust", Sitter: rust.GetLanguage(), CommentTypes: []string{"line_comment"}, InlineDelims: []string{"///", "//!", "//"}},
	{Name: "bash", Sitter: bash.GetLanguage(), CommentTypes: []string{"comment"}, InlineDelims: []string{"#"}},
	{Name: "yaml", Sitter: yaml.GetLanguage(), CommentTypes: []string{"comment"}, InlineDelims: []string{"#"}},
}

// defaultExtensions maps file extensions (with the leading dot) to language
// names. Configuration may layer overrides on top via NewRegistry.
var defaultExtensions = map[string]string{
	".go":   "go",
	".py":   "python",
	".js":   "javascript",
	".mjs":  "javascript",
	".ts":   "typescript",
	".mts":  "typescript",
	".c":    "c",
	".h":    "c",
	".cc":   "cpp",
	".cpp":  "cpp",
	".hpp":  "cpp",
	".rs":   "rust",
	".sh":   "bash",
	".bash": "bash",
	".yaml": "yaml",
	".yml":  "yaml",
}

func languageByName(name string) (Language, bool) {
	for _, l := range languages {
		if l.Name == name {
			return l, true
		}
	}
	return Language{}, false
}

// Registry resolves file extensions to classifiers. The zero-value mapping is
// the built-in extension table; overrides from configuration are layered on
// top at construction time.
type Registry struct {
	exts map[string]string
}

// NewRegistry builds a registry from the default extension table plus the
// given overrides (extension, with leading dot, to language name). An override
// naming an unknown language is ignored.
func NewRegistry(overrides map[string]string) *Registry {
	exts := make(map[string]string, len(defaultExtensions)+len(overrides))
	for ext, name := range defaultExtensions {
		exts[ext] = name
	}
	for ext, name := range overrides {
		if _, ok := languageByName(name); !ok {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[strings.ToLower(ext)] = name
	}
	return &Registry{exts: exts}
}

// Recognized reports whether files with the given extension can be classified.
func (r *Registry) Recognized(ext string) bool {
	_, ok := r.exts[strings.ToLower(ext)]
	return ok
}

// ForExtension returns a classifier for the given file extension.
func (r *Registry) ForExtension(ext string) (*Classifier, error) {
	if name, ok := r.exts[strings.ToLower(ext)]; ok {
		return New(name)
	}
	return nil, fmt.Errorf("no language registered for extension %q", ext)
}

// Extensions returns the sorted list of recognized extensions.
func (r *Registry) Extensions() []string {
	out := make([]string, 0, len(r.exts))
	for ext := range r.exts {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// LanguageName reports the language registered for an extension.
func (r *Registry) LanguageName(ext string) (string, bool) {
	name, ok := r.exts[strings.ToLower(ext)]
	return name, ok
}

// LanguageForExtension resolves an extension against the built-in table.
func LanguageForExtension(ext string) (string, bool) {
	name, ok := defaultExtensions[strings.ToLower(ext)]
	return name, ok
}
