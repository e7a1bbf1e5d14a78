package render

import (
	"html"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weave/internal/classify"
)

const (
	codeOpenMarker = `<div class="weave-code">`
	docOpenMarker  = `<div class="weave-doc">`
	codeClose      = "</div>\n        </div>\n"
	docClose       = "</div></td>\n                    </tr>\n                </tbody>\n            </table>\n        </div>\n"
)

func renderBlocks(t *testing.T, lines []classify.Line) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, Blocks(lines, &sb))
	return sb.String()
}

func TestBlocks_CodeThenDocScenario(t *testing.T) {
	out := renderBlocks(t, []classify.Line{
		{Kind: classify.Code, Text: "a=1\n"},
		{Kind: classify.Code, Text: "b=2\n"},
		{Kind: classify.Doc, Indent: 0, Text: "hi\n"},
	})

	// One code block spanning lines 1-2, then one doc block starting at
	// line 3, with no stray blank lines between them.
	assert.Equal(t, 1, strings.Count(out, codeOpenMarker))
	assert.Equal(t, 1, strings.Count(out, docOpenMarker))
	assert.Contains(t, out, `data-first-line-number="1"`)
	assert.Contains(t, out, "a=1\nb=2"+codeClose)
	assert.Contains(t, out, ">hi"+docClose)
	assert.NotContains(t, out, "a=1\n\n")
}

func TestBlocks_SingleCodeRun(t *testing.T) {
	lines := []classify.Line{
		{Kind: classify.Code, Text: "one\n"},
		{Kind: classify.Code, Text: "two\n"},
		{Kind: classify.Code, Text: "three\n"},
	}
	out := renderBlocks(t, lines)

	assert.Contains(t, out, `data-first-line-number="1"`)

	// The newline movement must leave exactly lineCount-1 internal newlines.
	start := strings.Index(out, "one")
	end := strings.Index(out, codeClose)
	require.True(t, start >= 0 && end > start)
	body := out[start:end]
	assert.Equal(t, "one\ntwo\nthree", body)
}

func TestBlocks_AlternatingSingleLines(t *testing.T) {
	out := renderBlocks(t, []classify.Line{
		{Kind: classify.Code, Text: "a\n"},
		{Kind: classify.Doc, Indent: 3, Text: "note\n"},
		{Kind: classify.Code, Text: "b\n"},
	})

	assert.Equal(t, 2, strings.Count(out, codeOpenMarker))
	assert.Equal(t, 1, strings.Count(out, docOpenMarker))
	assert.Contains(t, out, `data-first-line-number="1"`)
	assert.Contains(t, out, `data-first-line-number="3"`)

	// The doc block carries its line's indent as a fixed-width placeholder.
	assert.Contains(t, out, `onpaste="return false">&nbsp;&nbsp;&nbsp;</td>`)
}

func TestBlocks_IndentChangeSplitsDocBlocks(t *testing.T) {
	out := renderBlocks(t, []classify.Line{
		{Kind: classify.Doc, Indent: 0, Text: "top\n"},
		{Kind: classify.Doc, Indent: 4, Text: "nested\n"},
	})

	// Adjacent doc lines with different indents are different blocks.
	assert.Equal(t, 2, strings.Count(out, docOpenMarker))
	assert.Equal(t, 2, strings.Count(out, docClose))
}

func TestBlocks_BalancedOpenClose(t *testing.T) {
	out := renderBlocks(t, []classify.Line{
		{Kind: classify.Doc, Indent: 0, Text: "intro\n"},
		{Kind: classify.Code, Text: "x = 1\n"},
		{Kind: classify.Code, Text: "y = 2\n"},
		{Kind: classify.Doc, Indent: 2, Text: "aside\n"},
		{Kind: classify.Code, Text: "z = 3\n"},
	})

	assert.Equal(t, strings.Count(out, codeOpenMarker), strings.Count(out, codeClose))
	assert.Equal(t, strings.Count(out, docOpenMarker), strings.Count(out, docClose))
	assert.True(t, strings.HasSuffix(out, codeClose), "the final block's close ends the stream")
}

func TestBlocks_CodeIsEscapedDocIsVerbatim(t *testing.T) {
	out := renderBlocks(t, []classify.Line{
		{Kind: classify.Code, Text: "if a < b && c > d {\n"},
		{Kind: classify.Doc, Indent: 0, Text: "<em>doc markup passes through</em>\n"},
	})

	assert.Contains(t, out, "if a &lt; b &amp;&amp; c &gt; d {")
	assert.Contains(t, out, "<em>doc markup passes through</em>")
}

func TestEscapeRoundTrip(t *testing.T) {
	src := `x = "<tag> & 'quote' \"dquote\""`
	assert.Equal(t, src, html.UnescapeString(html.EscapeString(src)))
}

func TestBlocks_FinalLineWithoutTerminator(t *testing.T) {
	out := renderBlocks(t, []classify.Line{
		{Kind: classify.Code, Text: "a\n"},
		{Kind: classify.Code, Text: "b"},
	})
	assert.Contains(t, out, "a\nb"+codeClose)
}

func TestBlocks_MissingTerminatorFailsLoudly(t *testing.T) {
	var sb strings.Builder
	err := Blocks([]classify.Line{
		{Kind: classify.Code, Text: "a"},
		{Kind: classify.Code, Text: "b\n"},
	}, &sb)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestBlocks_EmptyInput(t *testing.T) {
	out := renderBlocks(t, nil)
	assert.Empty(t, out, "zero lines produce no block markup at all")
}
