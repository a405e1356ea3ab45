package internal

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NodeKind classifies tree nodes for the walker.
type NodeKind int

const (
	// NodeKindOther covers doctype and raw nodes; they are passed through.
	NodeKindOther NodeKind = iota
	// NodeKindElement is an element that may carry directives.
	NodeKindElement
	// NodeKindText is a text node that may carry placeholders.
	NodeKindText
	// NodeKindContainer is a document or fragment root.
	NodeKindContainer
	// NodeKindComment is a comment; it is never processed.
	NodeKindComment
)

// Classify reports the kind of n.
func Classify(n *html.Node) NodeKind {
	if n == nil {
		return NodeKindOther
	}
	switch n.Type {
	case html.ElementNode:
		return NodeKindElement
	case html.TextNode:
		return NodeKindText
	case html.DocumentNode:
		return NodeKindContainer
	case html.CommentNode:
		return NodeKindComment
	default:
		return NodeKindOther
	}
}

// IsElement reports whether n is an element named tag.
func IsElement(n *html.Node, tag string) bool {
	return n != nil && n.Type == html.ElementNode && n.Data == tag
}

// IsBlank reports whether n is a comment or whitespace-only text.
func IsBlank(n *html.Node) bool {
	switch Classify(n) {
	case NodeKindComment:
		return true
	case NodeKindText:
		return strings.TrimSpace(n.Data) == StringValueEmpty
	default:
		return false
	}
}

// NewContainer returns an empty fragment container.
func NewContainer() *html.Node {
	return &html.Node{Type: html.DocumentNode}
}

// NewElement creates a detached element named tag.
func NewElement(tag string) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
}

// ParseMarkup builds a node tree that mirrors the source markup. Unlike
// html.Parse it applies no insertion-mode rules, so unknown elements stay
// where they were written and a self-closing slash closes any element.
// The bool result reports whether the source is a full document.
func ParseMarkup(src []byte) (*html.Node, bool, error) {
	root := NewContainer()
	stack := []*html.Node{root}
	top := func() *html.Node { return stack[len(stack)-1] }
	isDocument := false

	z := html.NewTokenizer(bytes.NewReader(src))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return nil, false, err
			}
			return root, isDocument, nil
		}

		tok := z.Token()
		switch tt {
		case html.DoctypeToken:
			isDocument = true
			top().AppendChild(&html.Node{Type: html.DoctypeNode, Data: tok.Data})
		case html.CommentToken:
			top().AppendChild(&html.Node{Type: html.CommentNode, Data: tok.Data})
		case html.TextToken:
			parent := top()
			if last := parent.LastChild; last != nil && last.Type == html.TextNode {
				last.Data += tok.Data
				continue
			}
			parent.AppendChild(&html.Node{Type: html.TextNode, Data: tok.Data})
		case html.StartTagToken, html.SelfClosingTagToken:
			if tok.DataAtom == atom.Html && len(stack) == 1 {
				isDocument = true
			}
			el := &html.Node{
				Type:     html.ElementNode,
				Data:     tok.Data,
				DataAtom: tok.DataAtom,
				Attr:     tok.Attr,
			}
			top().AppendChild(el)
			if tt == html.StartTagToken && !isVoidElement(tok.DataAtom) {
				stack = append(stack, el)
			}
		case html.EndTagToken:
			// pop to the nearest open element with this name, ignore strays
			for i := len(stack) - 1; i > 0; i-- {
				if stack[i].Data == tok.Data {
					stack = stack[:i]
					break
				}
			}
		}
	}
}

// ParseFragment parses src into a fragment container.
func ParseFragment(src []byte) (*html.Node, error) {
	root, _, err := ParseMarkup(src)
	return root, err
}

func isVoidElement(a atom.Atom) bool {
	switch a {
	case atom.Area, atom.Base, atom.Br, atom.Col, atom.Embed, atom.Hr, atom.Img,
		atom.Input, atom.Keygen, atom.Link, atom.Meta, atom.Param, atom.Source,
		atom.Track, atom.Wbr:
		return true
	default:
		return false
	}
}

// RenderNode serializes n. Containers render their children only.
func RenderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return StringValueEmpty, err
	}
	return buf.String(), nil
}

// RenderChildren serializes the children of n (its inner markup).
func RenderChildren(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return StringValueEmpty, err
		}
	}
	return buf.String(), nil
}

// CloneNode deep-copies n. The copy is detached.
func CloneNode(n *html.Node) *html.Node {
	clone := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		clone.Attr = make([]html.Attribute, len(n.Attr))
		copy(clone.Attr, n.Attr)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		clone.AppendChild(CloneNode(c))
	}
	return clone
}

// CloneChildren copies the children of n into a new fragment container.
func CloneChildren(n *html.Node) *html.Node {
	container := NewContainer()
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		container.AppendChild(CloneNode(c))
	}
	return container
}

// MoveChildren detaches every child of src and appends it to dst.
func MoveChildren(dst, src *html.Node) {
	for c := src.FirstChild; c != nil; {
		next := c.NextSibling
		src.RemoveChild(c)
		dst.AppendChild(c)
		c = next
	}
}

// ReplaceWithChildren puts the children of fragment where old was and
// detaches old. A nil fragment just removes old.
func ReplaceWithChildren(old, fragment *html.Node) {
	parent := old.Parent
	if parent == nil {
		return
	}
	if fragment != nil {
		for c := fragment.FirstChild; c != nil; {
			next := c.NextSibling
			fragment.RemoveChild(c)
			parent.InsertBefore(c, old)
			c = next
		}
	}
	parent.RemoveChild(old)
}

// ReplaceWith puts replacement where old was and detaches old.
func ReplaceWith(old, replacement *html.Node) {
	parent := old.Parent
	if parent == nil {
		return
	}
	parent.InsertBefore(replacement, old)
	parent.RemoveChild(old)
}

// Remove detaches n from its parent.
func Remove(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// GetAttr returns the value of the attribute named key.
func GetAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == StringValueEmpty && a.Key == key {
			return a.Val, true
		}
	}
	return StringValueEmpty, false
}

// GetAttrDefault returns the attribute value or def when absent.
func GetAttrDefault(n *html.Node, key, def string) string {
	if v, ok := GetAttr(n, key); ok {
		return v
	}
	return def
}

// HasAttr reports whether the attribute named key is present.
func HasAttr(n *html.Node, key string) bool {
	_, ok := GetAttr(n, key)
	return ok
}

// SetAttr sets key to val, replacing an existing value in place.
func SetAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Namespace == StringValueEmpty && n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes every attribute named key.
func RemoveAttr(n *html.Node, key string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == StringValueEmpty && a.Key == key {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}

// IsDirectiveAttr reports whether an attribute name is a directive.
func IsDirectiveAttr(key string) bool {
	return strings.HasPrefix(key, AttrDirectivePrefix)
}

// FindElement returns the first descendant of n, in document order,
// that is an element named tag and satisfies match (nil matches all).
func FindElement(n *html.Node, tag string, match func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if IsElement(c, tag) && (match == nil || match(c)) {
			return c
		}
		if found := FindElement(c, tag, match); found != nil {
			return found
		}
	}
	return nil
}

// VisitText calls fn for every text node below n.
func VisitText(n *html.Node, fn func(*html.Node) error) error {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			if err := fn(c); err != nil {
				return err
			}
			continue
		}
		if err := VisitText(c, fn); err != nil {
			return err
		}
	}
	return nil
}

// VisitElements calls fn for every element below n, parents first.
func VisitElements(n *html.Node, fn func(*html.Node) error) error {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			if err := fn(c); err != nil {
				return err
			}
		}
		if err := VisitElements(c, fn); err != nil {
			return err
		}
	}
	return nil
}
