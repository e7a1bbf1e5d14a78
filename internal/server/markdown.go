package server

import (
	"bytes"
	"fmt"
	"html"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
)

// serveMarkdown renders a markdown file to a standalone HTML page. Project
// documentation usually lives next to the sources it describes; serving it
// rendered keeps browsing a literate tree pleasant.
func (s *Server) serveMarkdown(w http.ResponseWriter, r *http.Request, local string) {
	src, err := os.ReadFile(local)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	var body bytes.Buffer
	if err := goldmark.New().Convert(src, &body); err != nil {
		s.log.Error("failed to render markdown", "path", local, "err", err)
		http.Error(w, "failed to render markdown", http.StatusInternalServerError)
		return
	}

	title := strings.TrimSuffix(filepath.Base(local), filepath.Ext(local))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<!DOCTYPE html>\n<html lang=\"en\">\n    <head>\n        <meta charset=\"UTF-8\">\n        <title>%s</title>\n    </head>\n    <body>\n%s    </body>\n</html>\n",
		html.EscapeString(title), body.String())
}
