// Package vfs synthesizes editable documents for paths that do not exist on
// disk. A request for name.ext.html, where name.ext is a classifiable source
// file, is answered with a freshly rendered page instead of a 404. The
// synthesizer is a decorator over an http.FileSystem, so http.FileServer
// serves the virtual files without knowing they were never written to disk.
package vfs

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"weave/internal/classify"
	"weave/internal/render"
)

// FileSystem intercepts Open calls for virtual document paths and passes
// everything else through to the base file system. It keeps no state across
// requests; every qualifying Open synthesizes its own document.
type FileSystem struct {
	base http.FileSystem
	reg  *classify.Registry
	asm  *render.Assembler
}

func New(base http.FileSystem, reg *classify.Registry, asm *render.Assembler) FileSystem {
	return FileSystem{base: base, reg: reg, asm: asm}
}

// Open implements http.FileSystem. A path qualifies for synthesis iff it does
// not exist, carries at least two suffixes, ends in .html, and the suffix
// before .html names a recognized language. On any failure to read or render
// the backing source, Open falls back to a plain open of the requested name,
// so the caller sees the natural not-found error for the path it asked for.
func (f FileSystem) Open(name string) (http.File, error) {
	stem, ok := f.backingPath(name)
	if !ok {
		return f.base.Open(name)
	}

	// Synthesis only applies when the literal path is absent. An existing
	// file named name.ext.html always wins.
	file, err := f.base.Open(name)
	if err == nil {
		return file, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	doc, modTime, err := f.synthesize(stem)
	if err != nil {
		return f.base.Open(name)
	}
	return &memFile{
		Reader: bytes.NewReader(doc),
		info: fileInfo{
			name:    path.Base(name),
			size:    int64(len(doc)),
			modTime: modTime,
		},
	}, nil
}

// backingPath reports the source path a virtual document would be derived
// from, or false if the name does not follow the naming convention.
func (f FileSystem) backingPath(name string) (string, bool) {
	if path.Ext(name) != ".html" {
		return "", false
	}
	stem := strings.TrimSuffix(name, ".html")
	ext := path.Ext(stem)
	if ext == "" || !f.reg.Recognized(ext) {
		return "", false
	}
	return stem, true
}

// synthesize reads the backing source in full, classifies it and renders the
// editable page. The returned modification time is the backing file's, so
// conditional requests behave sensibly for content derived from it.
func (f FileSystem) synthesize(stem string) ([]byte, time.Time, error) {
	src, err := f.base.Open(stem)
	if err != nil {
		return nil, time.Time{}, err
	}
	defer src.Close()

	code, err := io.ReadAll(src)
	if err != nil {
		return nil, time.Time{}, err
	}
	modTime := time.Now()
	if fi, err := src.Stat(); err == nil {
		modTime = fi.ModTime()
	}

	cls, err := f.reg.ForExtension(path.Ext(stem))
	if err != nil {
		return nil, time.Time{}, err
	}
	res, err := cls.Classify(code)
	if err != nil {
		return nil, time.Time{}, err
	}
	doc, err := f.asm.PageBytes(res)
	if err != nil {
		return nil, time.Time{}, err
	}
	return doc, modTime, nil
}

// memFile is an in-memory http.File over synthesized bytes. Its Stat reports
// the synthesized length; http.FileServer derives Content-Length and range
// reads from that size, so it must match the bytes exactly.
type memFile struct {
	*bytes.Reader
	info fileInfo
}

func (m *memFile) Close() error { return nil }

func (m *memFile) Readdir(int) ([]fs.FileInfo, error) {
	return nil, fs.ErrInvalid
}

func (m *memFile) Stat() (fs.FileInfo, error) {
	return m.info, nil
}

type fileInfo struct {
	name    string
	size    int64
	modTime time.Time
}

func (fi fileInfo) Name() string       { return fi.name }
func (fi fileInfo) Size() int64        { return fi.size }
func (fi fileInfo) Mode() fs.FileMode  { return 0444 }
func (fi fileInfo) ModTime() time.Time { return fi.modTime }
func (fi fileInfo) IsDir() bool        { return false }
func (fi fileInfo) Sys() any           { return nil }
