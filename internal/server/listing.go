package server

import (
	"html/template"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// listingEntry is one row of a directory listing. Entries for classifiable
// sources that have no materialized .html sibling get an extra link to their
// virtual editable document.
type listingEntry struct {
	Name     string
	Href     string
	EditHref string // empty when the entry has no virtual document
}

var listingTemplate = template.Must(template.New("listing").Parse(`<!DOCTYPE html>
<html lang="en">
    <head>
        <meta charset="UTF-8">
        <title>Directory listing for {{.Path}}</title>
    </head>
    <body>
        <h1>Directory listing for {{.Path}}</h1>
        <hr>
        <ul>
{{- range .Entries}}
            <li>{{if .EditHref}}<a href="{{.EditHref}}" target="_blank">{{.Name}}</a> <a href="{{.Href}}">(raw)</a>{{else}}<a href="{{.Href}}">{{.Name}}</a>{{end}}</li>
{{- end}}
        </ul>
        <hr>
    </body>
</html>
`))

// serveListing renders a directory listing in place of the default
// http.FileServer one, so classifiable sources link to their editable pages.
func (s *Server) serveListing(w http.ResponseWriter, r *http.Request, dir, upath string) {
	if !strings.HasSuffix(r.URL.Path, "/") {
		http.Redirect(w, r, r.URL.Path+"/", http.StatusMovedPermanently)
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		http.Error(w, "No permission to list directory", http.StatusNotFound)
		return
	}
	sort.Slice(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Name()) < strings.ToLower(entries[j].Name())
	})

	rows := make([]listingEntry, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		href := url.PathEscape(name)
		row := listingEntry{Name: name, Href: href}
		if e.IsDir() {
			row.Name += "/"
			row.Href += "/"
		} else if s.reg.Recognized(filepath.Ext(name)) && !siblingExists(dir, name+".html") {
			row.EditHref = href + ".html"
		}
		rows = append(rows, row)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := listingTemplate.Execute(w, struct {
		Path    string
		Entries []listingEntry
	}{Path: upath, Entries: rows}); err != nil {
		s.log.Error("failed to render directory listing", "dir", dir, "err", err)
	}
}

func siblingExists(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
