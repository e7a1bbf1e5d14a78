package render

import (
	"fmt"
	"html"
	"io"
	"strings"

	"weave/internal/classify"
)

// blockState is the single piece of mutable state driving the renderer. A
// fresh value is created per render pass; it is never shared between calls.
type blockState struct {
	open   bool // false until the first line opens a block
	kind   classify.Kind
	indent int
}

func (s blockState) matches(l classify.Line) bool {
	return s.open && s.kind == l.Kind && (l.Kind == classify.Code || s.indent == l.Indent)
}

// Blocks streams the block markup for a classified line sequence: one
// editor container per maximal run of lines sharing a classification.
//
// Every line must end with exactly one newline; the renderer strips it and,
// when the next line continues the same block, re-emits it before that line's
// content. This keeps block-closing markup flush against the last character
// of the block, so no spurious blank lines appear inside the editors. Only
// the final line may omit its terminator.
//
// A missing terminator on any earlier line means the classifier broke its
// contract; rendering stops with an error rather than desynchronizing line
// numbers.
func Blocks(lines []classify.Line, w io.Writer) error {
	var state blockState
	lineNo := 1

	for i, l := range lines {
		text, ok := strings.CutSuffix(l.Text, "\n")
		if !ok && i != len(lines)-1 {
			return fmt.Errorf("classified line %d is missing its line terminator", lineNo)
		}

		if state.matches(l) {
			// Newline movement: restore the terminator stripped from the
			// previous line.
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		} else {
			if err := closeBlock(state, w); err != nil {
				return err
			}
			if err := openBlock(l, lineNo, w); err != nil {
				return err
			}
		}

		if err := writeLineText(l.Kind, text, w); err != nil {
			return err
		}

		state = blockState{open: true, kind: l.Kind, indent: l.Indent}
		lineNo++
	}

	return closeBlock(state, w)
}

func writeLineText(kind classify.Kind, text string, w io.Writer) error {
	if kind == classify.Code {
		// Code is raw source; escape it so it cannot be read as markup.
		// Doc text is already markup produced upstream and goes out verbatim.
		text = html.EscapeString(text)
	}
	_, err := io.WriteString(w, text)
	return err
}

// openBlock emits the opening markup for a new block. Code blocks record the
// number of their first line so the editor gutter lines up with the source
// file; doc blocks lay out a one-row table whose indent cell mirrors the
// whitespace removed by the classifier, keeping doc text aligned with the
// code editor's gutter and content columns.
func openBlock(l classify.Line, lineNo int, w io.Writer) error {
	if l.Kind == classify.Code {
		_, err := fmt.Fprintf(w, "\n        <div class=\"weave-code\">\n            <div class=\"weave-code-editor\" data-first-line-number=\"%d\">", lineNo)
		return err
	}
	_, err := fmt.Fprintf(w, "\n        <div class=\"weave-doc\">\n            <table>\n                <tbody>\n                    <tr>\n                        <td class=\"weave-gutter-padding\">&nbsp;&nbsp;&nbsp;</td>\n                        <td class=\"weave-doc-indent\" contenteditable onpaste=\"return false\">%s</td>\n                        <td class=\"weave-doc-td\"><div class=\"weave-doc-editor\">", strings.Repeat("&nbsp;", l.Indent))
	return err
}

// closeBlock emits the closing markup for the current block; a no-op before
// the first block opens.
func closeBlock(s blockState, w io.Writer) error {
	if !s.open {
		return nil
	}
	if s.kind == classify.Code {
		_, err := io.WriteString(w, "</div>\n        </div>\n")
		return err
	}
	// Close the doc cell immediately after the last doc character; trailing
	// spaces here would be picked up as indentation by the rich-text editor.
	_, err := io.WriteString(w, "</div></td>\n                    </tr>\n                </tbody>\n            </table>\n        </div>\n")
	return err
}
