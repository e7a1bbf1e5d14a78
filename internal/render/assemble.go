package render

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"strings"

	"weave/internal/classify"
)

// Assets locates the editor runtime the emitted page loads: the code editor
// (ACE), the rich-text editor (TinyMCE), the page bootstrap script and the
// stylesheet. The bootstrap script receives the language name through a
// data-lang attribute and is responsible for hydrating the editors.
type Assets struct {
	CodeEditorJS string `yaml:"code_editor_js"`
	RichTextJS   string `yaml:"rich_text_js"`
	BootstrapJS  string `yaml:"bootstrap_js"`
	Stylesheet   string `yaml:"stylesheet"`
}

// DefaultAssets returns the CDN-hosted editor runtime and relative paths for
// the project's own script and stylesheet.
func DefaultAssets() Assets {
	return Assets{
		CodeEditorJS: "https://cdnjs.cloudflare.com/ajax/libs/ace/1.9.5/ace.min.js",
		RichTextJS:   "https://cdnjs.cloudflare.com/ajax/libs/tinymce/6.8.3/tinymce.min.js",
		BootstrapJS:  "weave.js",
		Stylesheet:   "css/weave.css",
	}
}

// Assembler wraps rendered block streams in a complete page.
type Assembler struct {
	assets Assets
}

func NewAssembler(assets Assets) *Assembler {
	return &Assembler{assets: assets}
}

// Page writes a complete editable document for one classified source file.
// The page shell carries the language name so the bootstrap script can select
// a syntax highlighter; a classifier-reported syntax error becomes a visible
// leading block instead of aborting the render. This stage is pure formatting
// and fails only if the sink does.
func (a *Assembler) Page(res *classify.Result, w io.Writer) error {
	if err := a.writeHead(res.Language, w); err != nil {
		return err
	}
	if res.SyntaxError != "" {
		if _, err := fmt.Fprintf(w, "        <div class=\"weave-error\">%s</div>\n", html.EscapeString(res.SyntaxError)); err != nil {
			return err
		}
	}
	if err := Blocks(res.Lines, w); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n    </body>\n</html>\n")
	return err
}

// PageBytes renders a page into memory. The virtual file synthesizer needs
// the full byte count up front to report an accurate size.
func (a *Assembler) PageBytes(res *classify.Result) ([]byte, error) {
	var buf bytes.Buffer
	if err := a.Page(res, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PageFile renders srcPath's classification to dstPath and patches the empty
// title with the source file's display name and filesystem anchor, so pages
// written to disk identify their origin.
func (a *Assembler) PageFile(res *classify.Result, srcPath, dstPath string) error {
	page, err := a.PageBytes(res)
	if err != nil {
		return err
	}

	abs, err := filepath.Abs(srcPath)
	if err != nil {
		return err
	}
	name := filepath.Base(abs)
	anchor := filepath.VolumeName(abs) + string(filepath.Separator)
	title := fmt.Sprintf("<title data-filename=\"%s\" data-root=\"%s\">%s - Weave</title>",
		html.EscapeString(name), html.EscapeString(anchor), html.EscapeString(name))
	page = bytes.Replace(page, []byte("<title></title>"), []byte(title), 1)

	return os.WriteFile(dstPath, page, 0644)
}

func (a *Assembler) writeHead(language string, w io.Writer) error {
	head := strings.Join([]string{
		"<!DOCTYPE html>",
		"<html lang=\"en\">",
		"    <head>",
		"        <meta charset=\"UTF-8\">",
		"        <meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">",
		"",
		"        <title></title>",
		"",
		fmt.Sprintf("        <script src=\"%s\"></script>", a.assets.CodeEditorJS),
		fmt.Sprintf("        <script src=\"%s\" referrerpolicy=\"origin\"></script>", a.assets.RichTextJS),
		fmt.Sprintf("        <script src=\"%s\" data-lang=\"%s\"></script>", a.assets.BootstrapJS, html.EscapeString(language)),
		"",
		fmt.Sprintf("        <link rel=\"stylesheet\" href=\"%s\">", a.assets.Stylesheet),
		"    </head>",
		"    <body>",
		"        <p>",
		"            <button onclick=\"on_save_as();\" id=\"weave-save-as-button\">",
		"                Save as",
		"            </button>",
		"            <button disabled onclick=\"on_save();\" id=\"weave-save-button\">",
		"                Save",
		"            </button>",
		"        </p>",
		"",
	}, "\n")
	_, err := io.WriteString(w, head)
	return err
}
