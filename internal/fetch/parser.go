package fetch

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// ParseResult holds what a single parsing pass extracts from an HTML
// page: the title, the outbound links in document order, and a text
// rendering of the visible content.
type ParseResult struct {
	// Title is the content of the <title> element.
	Title string

	// Links are the href targets of anchor elements, resolved against
	// the page URL, deduplicated, in document order.
	Links []string

	// Text is the visible text of the page with scripts and styles
	// removed. This is the per-page contribution to the analysis input.
	Text string
}

// Parse extracts title, links, and text from HTML content in one pass.
//
// Design decision: We use golang.org/x/net/html rather than regex
// because onion services serve spectacularly malformed HTML and the
// tokenizer-based parser handles it the way browsers do.
func Parse(baseURL string, content io.Reader) (*ParseResult, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{}
	seen := make(map[string]bool)
	var text strings.Builder

	var walk func(n *html.Node, skipText bool)
	walk = func(n *html.Node, skipText bool) {
		switch n.Type {
		case html.ElementNode:
			switch n.Data {
			case "title":
				if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					result.Title = strings.TrimSpace(n.FirstChild.Data)
				}
				skipText = true
			case "script", "style", "noscript":
				skipText = true
			case "a":
				if href := getAttr(n, "href"); href != "" {
					if resolved := resolveLink(base, href); resolved != "" && !seen[resolved] {
						seen[resolved] = true
						result.Links = append(result.Links, resolved)
					}
				}
			}
		case html.TextNode:
			if !skipText {
				if s := strings.TrimSpace(n.Data); s != "" {
					text.WriteString(s)
					text.WriteString(" ")
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, skipText)
		}
	}
	walk(doc, false)

	result.Text = strings.TrimSpace(text.String())
	return result, nil
}

// resolveLink resolves an anchor href against the page URL, dropping
// non-navigational targets.
func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
