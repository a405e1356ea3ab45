package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestParseMarkup_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		document bool
	}{
		{"fragment", `<p class="x">a <b>b</b></p>`, false},
		{"unknown elements stay in place", `<table><each :="r in rows"><tr></tr></each></table>`, false},
		{"void element", `<p>a<br/>b</p>`, false},
		{"comment", `<div><!-- note --></div>`, false},
		{"document", `<!DOCTYPE html><html><head></head><body>x</body></html>`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, isDoc, err := ParseMarkup([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.document, isDoc)

			out, err := RenderNode(root)
			require.NoError(t, err)
			assert.Equal(t, tt.input, out)
		})
	}
}

func TestParseMarkup_SelfClosingDirective(t *testing.T) {
	root, _, err := ParseMarkup([]byte(`<extends file="base"/><block name="a">x</block>`))
	require.NoError(t, err)

	ext := FindElement(root, TagExtends, nil)
	require.NotNil(t, ext)
	assert.Nil(t, ext.FirstChild, "self-closing closes unknown elements")

	block := FindElement(root, TagBlock, nil)
	require.NotNil(t, block)
	assert.Same(t, root, block.Parent)
}

func TestAttributes(t *testing.T) {
	el := NewElement("div")
	SetAttr(el, "id", "a")
	SetAttr(el, "class", "x")
	SetAttr(el, "id", "b")

	v, ok := GetAttr(el, "id")
	assert.True(t, ok)
	assert.Equal(t, "b", v)
	assert.Equal(t, []html.Attribute{{Key: "id", Val: "b"}, {Key: "class", Val: "x"}}, el.Attr)

	RemoveAttr(el, "id")
	assert.False(t, HasAttr(el, "id"))
	assert.Equal(t, "none", GetAttrDefault(el, "id", "none"))

	assert.True(t, IsDirectiveAttr(":href"))
	assert.False(t, IsDirectiveAttr("href"))
}

func TestTreeSurgery(t *testing.T) {
	root, err := ParseFragment([]byte(`<ul><li>a</li><x></x><li>c</li></ul>`))
	require.NoError(t, err)
	x := FindElement(root, "x", nil)
	require.NotNil(t, x)

	t.Run("clone is detached and deep", func(t *testing.T) {
		ul := FindElement(root, "ul", nil)
		clone := CloneNode(ul)
		assert.Nil(t, clone.Parent)
		clone.FirstChild.FirstChild.Data = "changed"

		out, err := RenderNode(root)
		require.NoError(t, err)
		assert.Contains(t, out, "<li>a</li>")
	})

	t.Run("replace with children", func(t *testing.T) {
		fragment, err := ParseFragment([]byte(`<li>b1</li><li>b2</li>`))
		require.NoError(t, err)
		ReplaceWithChildren(x, fragment)

		out, err := RenderNode(root)
		require.NoError(t, err)
		assert.Equal(t, `<ul><li>a</li><li>b1</li><li>b2</li><li>c</li></ul>`, out)
	})
}

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(&html.Node{Type: html.TextNode, Data: " \n\t"}))
	assert.True(t, IsBlank(&html.Node{Type: html.CommentNode, Data: "c"}))
	assert.False(t, IsBlank(&html.Node{Type: html.TextNode, Data: " x "}))
	assert.False(t, IsBlank(NewElement("p")))
}

func TestVisitors(t *testing.T) {
	root, err := ParseFragment([]byte(`<div>a<p>b<i>c</i></p></div>`))
	require.NoError(t, err)

	var texts []string
	require.NoError(t, VisitText(root, func(n *html.Node) error {
		texts = append(texts, n.Data)
		return nil
	}))
	assert.Equal(t, []string{"a", "b", "c"}, texts)

	var tags []string
	require.NoError(t, VisitElements(root, func(n *html.Node) error {
		tags = append(tags, n.Data)
		return nil
	}))
	assert.Equal(t, []string{"div", "p", "i"}, tags)
}
