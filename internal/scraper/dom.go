package scraper

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// matcher reports whether an element node is a listing card.
type matcher func(n *html.Node) bool

// selector is one candidate way of locating cards on a page.
type selector struct {
	name  string
	match matcher
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func hasClass(name string) matcher {
	return func(n *html.Node) bool {
		for _, c := range strings.Fields(getAttr(n, "class")) {
			if c == name {
				return true
			}
		}
		return false
	}
}

// classContains matches when the class attribute contains every substring, like [class*=a][class*=b].
func classContains(parts ...string) matcher {
	return func(n *html.Node) bool {
		class := getAttr(n, "class")
		if class == "" {
			return false
		}
		for _, p := range parts {
			if !strings.Contains(class, p) {
				return false
			}
		}
		return true
	}
}

func attrEquals(key, val string) matcher {
	return func(n *html.Node) bool {
		return getAttr(n, key) == val
	}
}

func tagIs(name string) matcher {
	return func(n *html.Node) bool {
		return n.Data == name
	}
}

func anyOf(ms ...matcher) matcher {
	return func(n *html.Node) bool {
		for _, m := range ms {
			if m(n) {
				return true
			}
		}
		return false
	}
}

// findAll returns matching elements in document order. Matches are not searched for
// nested matches, so a card is never reported twice.
func findAll(root *html.Node, m matcher) []*html.Node {
	var out []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && m(n) {
			out = append(out, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

// findCards tries each selector in order and returns the first non-empty match set,
// falling back to <article> elements.
func findCards(root *html.Node, selectors []selector) []*html.Node {
	for _, sel := range selectors {
		if cards := findAll(root, sel.match); len(cards) > 0 {
			return cards
		}
	}
	return findAll(root, tagIs("article"))
}

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "br": true, "dd": true, "div": true,
	"dl": true, "dt": true, "footer": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "header": true, "li": true, "ol": true, "p": true, "section": true,
	"table": true, "td": true, "th": true, "tr": true, "ul": true,
}

// innerText renders the visible text of n, one line per block element.
func innerText(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript", "template", "svg":
				return
			}
		}
		block := n.Type == html.ElementNode && blockElements[n.Data]
		if block {
			sb.WriteString("\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			sb.WriteString("\n")
		}
	}
	walk(n)

	var lines []string
	for _, line := range strings.Split(sb.String(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// pageTitle returns the text of the first <title> element.
func pageTitle(doc *html.Node) string {
	titles := findAll(doc, tagIs("title"))
	if len(titles) == 0 {
		return ""
	}
	return innerText(titles[0])
}

// imageURLs collects absolute photo URLs inside a card, in order and without duplicates.
func imageURLs(card *html.Node, base *url.URL) []string {
	var out []string
	seen := map[string]bool{}
	for _, img := range findAll(card, tagIs("img")) {
		src := getAttr(img, "src")
		if src == "" || strings.HasPrefix(src, "data:") {
			src = getAttr(img, "data-src")
		}
		if src == "" || strings.HasPrefix(src, "data:") {
			continue
		}
		ref, err := url.Parse(src)
		if err != nil {
			continue
		}
		if base != nil {
			ref = base.ResolveReference(ref)
		}
		abs := ref.String()
		if !seen[abs] {
			seen[abs] = true
			out = append(out, abs)
		}
	}
	return out
}
