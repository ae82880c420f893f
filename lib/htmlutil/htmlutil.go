package htmlutil

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s+`)

// CollapseSpace trims a string and squashes inner whitespace runs into
// single spaces, the way rendered text reads.
func CollapseSpace(s string) string {
	s = strings.TrimSpace(s)
	return innerWhitespace.ReplaceAllString(s, " ")
}

// FirstEmphasis returns the rendered text of the first <strong> or <b>
// descendant of the selection, or "" if there is none.
func FirstEmphasis(sel *goquery.Selection) string {
	emphasis := sel.Find("strong, b")
	if len(emphasis.Nodes) == 0 {
		return ""
	}
	return CollapseSpace(GetText(emphasis.Nodes[0]))
}
