package internal

import (
	"context"
	"path"
	"strings"

	"golang.org/x/net/html"
)

// Template is a parsed view with its place in an inheritance chain.
type Template struct {
	Root       *html.Node
	Path       string
	Parent     *Template
	Child      *Template
	IsDocument bool
}

// Ancestor returns the root of the chain t belongs to.
func (t *Template) Ancestor() *Template {
	cur := t
	for cur.Parent != nil {
		cur = cur.Parent
	}
	return cur
}

// Deepest returns the most specific descendant of t, t itself when it has
// no child.
func (t *Template) Deepest() *Template {
	cur := t
	for cur.Child != nil {
		cur = cur.Child
	}
	return cur
}

// TemplateLoader reads and parses views through a ResourceReader.
type TemplateLoader struct {
	reader    ResourceReader
	extension string
}

// NewTemplateLoader creates a loader. Paths without an extension get ext.
func NewTemplateLoader(reader ResourceReader, ext string) *TemplateLoader {
	if ext == StringValueEmpty {
		ext = DefaultTemplateExtension
	}
	return &TemplateLoader{reader: reader, extension: ext}
}

// ResolvePath normalizes a view path and appends the template extension
// when the path has none.
func (l *TemplateLoader) ResolvePath(p string) string {
	p = strings.TrimSpace(p)
	if p == StringValueEmpty {
		return StringValueEmpty
	}
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	if path.Ext(p) == StringValueEmpty {
		p += l.extension
	}
	return p
}

// Exists reports whether the view at p exists.
func (l *TemplateLoader) Exists(ctx context.Context, p string) (bool, error) {
	resolved := l.ResolvePath(p)
	if resolved == StringValueEmpty {
		return false, nil
	}
	return l.reader.Exists(ctx, resolved)
}

// Load reads and parses the view at p. A missing view yields a
// KindMissingResource error.
func (l *TemplateLoader) Load(ctx context.Context, p string) (*Template, error) {
	resolved := l.ResolvePath(p)
	ok, err := l.Exists(ctx, p)
	if err != nil {
		return nil, NewDirectiveErrorWithCause(KindRenderAbort, ErrMsgReadFailed, StringValueEmpty, resolved, err)
	}
	if !ok {
		return nil, NewDirectiveError(KindMissingResource, ErrMsgTemplateNotFound, StringValueEmpty, resolved)
	}

	src, err := l.reader.Read(ctx, resolved)
	if err != nil {
		return nil, NewDirectiveErrorWithCause(KindRenderAbort, ErrMsgReadFailed, StringValueEmpty, resolved, err)
	}

	return ParseTemplate(resolved, src)
}

// ParseTemplate parses src into a template stored at p.
func ParseTemplate(p string, src []byte) (*Template, error) {
	root, isDocument, err := ParseMarkup(src)
	if err != nil {
		return nil, NewDirectiveErrorWithCause(KindRenderAbort, ErrMsgParseFailed, StringValueEmpty, p, err)
	}
	return &Template{Root: root, Path: p, IsDocument: isDocument}, nil
}
