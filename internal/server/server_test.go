package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weave/internal/config"
	"weave/internal/render"
)

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{}
	cfg.Server.Root = dir
	cfg.Editor = render.DefaultAssets()

	s := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts, dir
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestServer_VirtualDocument(t *testing.T) {
	ts, dir := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.py"), []byte("# hello\nx = 1\n"), 0644))

	resp, body := get(t, ts.URL+"/app.py.html")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, strconv.Itoa(len(body)), resp.Header.Get("Content-Length"))
	assert.Contains(t, body, `data-lang="python"`)
}

func TestServer_DirectoryListing(t *testing.T) {
	ts, dir := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.py"), []byte("x = 1\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("n\n"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	resp, body := get(t, ts.URL+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Classifiable sources link to their editable document plus a raw link.
	assert.Contains(t, body, `href="app.py.html"`)
	assert.Contains(t, body, "(raw)")
	// Everything else links plainly.
	assert.Contains(t, body, `href="notes.txt"`)
	assert.NotContains(t, body, "notes.txt.html")
	assert.Contains(t, body, `href="sub/"`)
}

func TestServer_ListingSkipsMaterializedPages(t *testing.T) {
	ts, dir := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.py"), []byte("x = 1\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.py.html"), []byte("done"), 0644))

	_, body := get(t, ts.URL+"/")
	assert.NotContains(t, body, `target="_blank"`, "a materialized page suppresses the edit link")
}

func TestServer_MarkdownPage(t *testing.T) {
	ts, dir := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Title\n\nSome *prose*.\n"), 0644))

	resp, body := get(t, ts.URL+"/README.md")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, "<h1>Title</h1>")
	assert.Contains(t, body, "<em>prose</em>")
}

func TestServer_NotFound(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, _ := get(t, ts.URL+"/nothing.here")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_DotDotRejected(t *testing.T) {
	ts, _ := newTestServer(t)
	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)
	req.URL.Path = "/../escape.py"
	req.URL.RawPath = ""

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.NotEqual(t, http.StatusOK, resp.StatusCode)
}

func TestServer_IndexHTMLWins(t *testing.T) {
	ts, dir := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<p>front door</p>"), 0644))

	_, body := get(t, ts.URL+"/")
	assert.Contains(t, body, "front door")
	assert.NotContains(t, body, "Directory listing")
}

func TestServer_RawSourceUntouched(t *testing.T) {
	ts, dir := newTestServer(t)
	src := "# hello\nx = 1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.py"), []byte(src), 0644))

	_, body := get(t, ts.URL+"/app.py")
	assert.Equal(t, src, body)
}
