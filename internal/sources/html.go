package sources

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasClass(n *html.Node, class string) bool {
	v, ok := attr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

// matcher reports whether an element node is the one wanted
type matcher func(n *html.Node) bool

func byID(tag, id string) matcher {
	return func(n *html.Node) bool {
		if tag != "" && n.Data != tag {
			return false
		}
		v, ok := attr(n, "id")
		return ok && v == id
	}
}

func byClass(tag, class string) matcher {
	return func(n *html.Node) bool {
		return (tag == "" || n.Data == tag) && hasClass(n, class)
	}
}

func byAttr(tag, key, value string) matcher {
	return func(n *html.Node) bool {
		if tag != "" && n.Data != tag {
			return false
		}
		v, ok := attr(n, key)
		return ok && v == value
	}
}

// find returns the first element below root matching m in document order
func find(root *html.Node, m matcher) *html.Node {
	if root == nil {
		return nil
	}
	var found *html.Node
	var f func(*html.Node)
	f = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && n != root && m(n) {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(root)
	return found
}

// findAll returns every element below root matching m in document order
func findAll(root *html.Node, m matcher) []*html.Node {
	if root == nil {
		return nil
	}
	var found []*html.Node
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode && n != root && m(n) {
			found = append(found, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(root)
	return found
}

// text concatenates every text node below n, skipping scripts and styles
func text(n *html.Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return sb.String()
}

// collapse joins the whitespace-separated words of s with single spaces
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// outerHTML renders n including its own tag
func outerHTML(n *html.Node) string {
	if n == nil {
		return ""
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// innerHTML renders the children of n
func innerHTML(n *html.Node) string {
	if n == nil {
		return ""
	}
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return ""
		}
	}
	return buf.String()
}
