package hoof

import (
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
)

// newMinifier returns an HTML minifier that keeps document and end tags,
// so minified output still parses into the same tree.
func newMinifier() *minify.M {
	m := minify.New()
	m.Add(MediaTypeHTML, &html.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})
	return m
}

// minifyHTML minifies rendered markup.
func (e *Engine) minifyHTML(markup string) (string, error) {
	return e.minifier.String(MediaTypeHTML, markup)
}
