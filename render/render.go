// Package render turns the markdown body of a post into HTML and a plain text excerpt.
package render

import (
	"bytes"
	"strings"

	"gitlab.com/golang-commonmark/markdown"
	"golang.org/x/net/html"
)

// MoreMarker ends the excerpt early if it occurs in the body.
const MoreMarker = "<!-- more -->"

// raw HTML is escaped, posts are written by any signed-in user
var markdownParser *markdown.Markdown = markdown.New(markdown.HTML(false), markdown.Linkify(true), markdown.Typographer(true), markdown.MaxNesting(10))

// HTML renders CommonMark markdown. Leading tabs are removed from each line before. The more marker is dropped.
func HTML(body string) string {

	body = strings.Replace(body, MoreMarker, "", 1)

	var unindented = &bytes.Buffer{}

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSuffix(line, "\r")
		unindented.WriteString(strings.TrimLeft(line, "\t"))
		unindented.WriteString("\n")
	}

	var result = &bytes.Buffer{}
	_ = markdownParser.Render(result, unindented.Bytes()) // bytes.Buffer does not fail
	return result.String()
}

// Excerpt returns the text content of the markdown body, up to the more marker or maxRunes runes.
func Excerpt(body string, maxRunes int) string {

	body, _ = cutMore(body)

	tokenizer := html.NewTokenizerFragment(strings.NewReader(HTML(body)), "body")

	var text = &strings.Builder{}
	var runes = 0

	for runes <= maxRunes {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break // assuming tokenizer.Err() == io.EOF
		}
		switch tt {
		case html.TextToken:
			var t = string(tokenizer.Text())
			text.WriteString(t)
			runes += len([]rune(t))
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			text.WriteString(" ") // block boundaries
		}
	}

	return trunc(strings.Join(strings.Fields(text.String()), " "), maxRunes)
}

// cutMore returns the part of s before the more marker. The marker is not html-escaped yet, so it is searched in the markdown.
func cutMore(s string) (string, bool) {
	if i := strings.Index(s, MoreMarker); i >= 0 {
		return s[:i], true
	}
	return s, false
}

// trunc truncates the input string to maxRunes runes. It is UTF8-safe, but does not care for HTML.
func trunc(s string, maxRunes int) string {
	s = strings.TrimSpace(s)
	var runes = 0
	for i := range s {
		if runes == maxRunes {
			return strings.TrimSpace(s[:i]) + "…"
		}
		runes++
	}
	return s
}

