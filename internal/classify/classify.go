package classify

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Kind tags a classified line as source code or documentation.
type Kind int

const (
	Code Kind = iota
	Doc
)

// Line is one classified input line. Text keeps exactly one trailing newline,
// except possibly on the final line of a file. Indent is only meaningful for
// Doc lines and counts the whitespace bytes preceding the comment delimiter.
type Line struct {
	Kind   Kind
	Indent int
	Text   string
}

// Result is the output of classifying one source file.
type Result struct {
	Language string
	Lines    []Line
	// SyntaxError is a human-readable description of the first parse error,
	// or empty. A parse error does not abort classification; the renderer
	// surfaces it as a leading error block.
	SyntaxError string
}

// Classifier splits a source file into code and documentation lines using a
// tree-sitter parse of the whole file, so comment delimiters inside strings
// are never mistaken for documentation.
type Classifier struct {
	lang Language
}

// New creates a classifier for a language by name.
func New(name string) (*Classifier, error) {
	lang, ok := languageByName(name)
	if !ok {
		return nil, fmt.Errorf("unsupported language: %s", name)
	}
	return &Classifier{lang: lang}, nil
}

// ForExtension creates a classifier for the language registered for a file
// extension (including the leading dot).
func ForExtension(ext string) (*Classifier, error) {
	name, ok := LanguageForExtension(ext)
	if !ok {
		return nil, fmt.Errorf("no language registered for extension %q", ext)
	}
	return New(name)
}

// LanguageName reports the name of the classifier's language.
func (c *Classifier) LanguageName() string {
	return c.lang.Name
}

// Classify parses src and classifies every line. A line is documentation iff
// it consists of optional whitespace followed by an inline comment that spans
// the rest of the line and whose delimiter is followed by a space, a tab, or
// the end of the line. Everything else, including blank lines, block comments
// and comments trailing code, is code.
func (c *Classifier) Classify(src []byte) (*Result, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(c.lang.Sitter)
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	comments := collectComments(root, c.lang.CommentTypes)

	res := &Result{Language: c.lang.Name}
	if root.HasError() {
		if n := firstErrorNode(root); n != nil {
			res.SyntaxError = fmt.Sprintf("syntax error near line %d", n.StartPoint().Row+1)
		} else {
			res.SyntaxError = "syntax error"
		}
	}

	for start := 0; start < len(src); {
		end := lineEnd(src, start)
		res.Lines = append(res.Lines, c.classifyLine(src, start, end, comments))
		start = end
	}
	return res, nil
}

// classifyLine classifies the line occupying src[start:end], where end
// includes the line terminator if present.
func (c *Classifier) classifyLine(src []byte, start, end int, comments map[uint32]*sitter.Node) Line {
	contentEnd := end
	if contentEnd > start && src[contentEnd-1] == '\n' {
		contentEnd--
		if contentEnd > start && src[contentEnd-1] == '\r' {
			contentEnd--
		}
	}

	// Find the first non-whitespace byte; its offset from the line start is
	// the doc indent.
	i := start
	for i < contentEnd && (src[i] == ' ' || src[i] == '\t') {
		i++
	}
	if i == contentEnd {
		return Line{Kind: Code, Text: string(src[start:end])}
	}

	node, ok := comments[uint32(i)]
	if !ok || int(node.EndByte()) != contentEnd {
		return Line{Kind: Code, Text: string(src[start:end])}
	}
	delim, ok := c.matchDelimiter(src[i:contentEnd])
	if !ok {
		return Line{Kind: Code, Text: string(src[start:end])}
	}

	// Drop the delimiter and the single separator space; keep the terminator.
	body := i + len(delim)
	if body < contentEnd && src[body] == ' ' {
		body++
	}
	return Line{
		Kind:   Doc,
		Indent: i - start,
		Text:   string(src[body:end]),
	}
}

// matchDelimiter reports the inline comment delimiter the comment text starts
// with. The delimiter must be followed by a space, a tab, or nothing, so that
// shebang-style or densely packed comment markers stay in code blocks.
func (c *Classifier) matchDelimiter(comment []byte) (string, bool) {
	s := string(comment)
	for _, d := range c.lang.InlineDelims {
		if !strings.HasPrefix(s, d) {
			continue
		}
		rest := s[len(d):]
		if rest == "" || rest[0] == ' ' || rest[0] == '\t' {
			return d, true
		}
	}
	return "", false
}

// collectComments walks the tree and indexes comment nodes by start byte.
func collectComments(root *sitter.Node, types []string) map[uint32]*sitter.Node {
	out := make(map[uint32]*sitter.Node)
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		for _, t := range types {
			if n.Type() == t {
				out[n.StartByte()] = n
				return
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return out
}

func firstErrorNode(root *sitter.Node) *sitter.Node {
	var find func(n *sitter.Node) *sitter.Node
	find = func(n *sitter.Node) *sitter.Node {
		if n.IsError() || n.IsMissing() {
			return n
		}
		if !n.HasError() {
			return nil
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			if e := find(n.Child(i)); e != nil {
				return e
			}
		}
		return n
	}
	return find(root)
}

func lineEnd(src []byte, start int) int {
	for i := start; i < len(src); i++ {
		if src[i] == '\n' {
			return i + 1
		}
	}
	return len(src)
}
