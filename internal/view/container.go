// Package view keeps the rendered zone panels as an HTML node tree.
//
// A Container is the single root region every panel renders into. Panels
// append fragments to it, look up elements by id and mutate them in place;
// the tree is serialized on demand for the dashboard page and the live
// stream. Containers are not safe for concurrent use.
package view

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Container is the root region for all zone panels.
type Container struct {
	root *html.Node
}

// NewContainer creates an empty <div> region with the given id.
func NewContainer(id string) *Container {
	return &Container{root: &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
		Attr:     []html.Attribute{{Key: "id", Val: id}},
	}}
}

// Append parses fragment and appends the resulting nodes to the container.
// An empty fragment appends nothing.
func (c *Container) Append(fragment string) error {
	nodes, err := parseFragment(fragment, c.root)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		c.root.AppendChild(n)
	}
	return nil
}

// Find returns the first element with the given id, or nil.
func (c *Container) Find(id string) *Element {
	if n := findByID(c.root, id); n != nil {
		return &Element{node: n}
	}
	return nil
}

// Child returns the direct child of the container with the given id, or nil.
// Nested elements that happen to carry the id are ignored.
func (c *Container) Child(id string) *Element {
	for n := c.root.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == html.ElementNode && attr(n, "id") == id {
			return &Element{node: n}
		}
	}
	return nil
}

// CountID returns how many elements carry the given id.
func (c *Container) CountID(id string) int {
	count := 0
	walk(c.root, func(n *html.Node) {
		if n.Type == html.ElementNode && attr(n, "id") == id {
			count++
		}
	})
	return count
}

// HTML serializes the container, root element included.
func (c *Container) HTML() string {
	var buf bytes.Buffer
	_ = html.Render(&buf, c.root)
	return buf.String()
}

// InnerHTML serializes the container's children only.
func (c *Container) InnerHTML() string {
	return innerHTML(c.root)
}

// Element is a handle to one node of the container tree.
type Element struct {
	node *html.Node
}

// ID returns the element's id attribute.
func (e *Element) ID() string { return attr(e.node, "id") }

// Tag returns the element's tag name.
func (e *Element) Tag() string { return e.node.Data }

// Attr returns the value of the named attribute, or "".
func (e *Element) Attr(key string) string { return attr(e.node, key) }

// HasAttr reports whether the named attribute is present.
func (e *Element) HasAttr(key string) bool {
	for _, a := range e.node.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

// SetAttr sets or replaces the named attribute.
func (e *Element) SetAttr(key, val string) {
	for i := range e.node.Attr {
		if e.node.Attr[i].Key == key {
			e.node.Attr[i].Val = val
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes the named attribute if present.
func (e *Element) RemoveAttr(key string) {
	kept := e.node.Attr[:0]
	for _, a := range e.node.Attr {
		if a.Key != key {
			kept = append(kept, a)
		}
	}
	e.node.Attr = kept
}

// SetChecked toggles the boolean "checked" attribute.
func (e *Element) SetChecked(on bool) {
	if on {
		e.SetAttr("checked", "")
		return
	}
	e.RemoveAttr("checked")
}

// Checked reports whether the "checked" attribute is present.
func (e *Element) Checked() bool { return e.HasAttr("checked") }

// SetText replaces the element's children with a single text node.
func (e *Element) SetText(text string) {
	clearChildren(e.node)
	e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// Text returns the concatenated text content of the element.
func (e *Element) Text() string {
	var sb strings.Builder
	walk(e.node, func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
	})
	return sb.String()
}

// SetInnerHTML replaces the element's children with the parsed fragment.
func (e *Element) SetInnerHTML(fragment string) error {
	nodes, err := parseFragment(fragment, e.node)
	if err != nil {
		return err
	}
	clearChildren(e.node)
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	return nil
}

// InnerHTML serializes the element's children.
func (e *Element) InnerHTML() string { return innerHTML(e.node) }

// Find returns the first descendant with the given id, or nil.
func (e *Element) Find(id string) *Element {
	for ch := e.node.FirstChild; ch != nil; ch = ch.NextSibling {
		if n := findByID(ch, id); n != nil {
			return &Element{node: n}
		}
	}
	return nil
}

// Buttons returns every <button> descendant in document order.
func (e *Element) Buttons() []*Element {
	var out []*Element
	for ch := e.node.FirstChild; ch != nil; ch = ch.NextSibling {
		walk(ch, func(n *html.Node) {
			if n.Type == html.ElementNode && n.DataAtom == atom.Button {
				out = append(out, &Element{node: n})
			}
		})
	}
	return out
}

func parseFragment(fragment string, context *html.Node) ([]*html.Node, error) {
	if strings.TrimSpace(fragment) == "" {
		return nil, nil
	}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), context)
	if err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}
	return nodes, nil
}

func clearChildren(n *html.Node) {
	for ch := n.FirstChild; ch != nil; {
		next := ch.NextSibling
		n.RemoveChild(ch)
		ch = next
	}
}

func innerHTML(n *html.Node) string {
	var buf bytes.Buffer
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		_ = html.Render(&buf, ch)
	}
	return buf.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode && attr(n, "id") == id {
		return n
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if found := findByID(ch, id); found != nil {
			return found
		}
	}
	return nil
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		walk(ch, fn)
	}
}
