package providers

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// anchor identifies an element by a whitespace-separated token in one of its
// attributes, e.g. headers="time" or class="tem-C is-active".
type anchor struct {
	attr  string
	token string
}

func (a anchor) matches(attrs map[string]string) bool {
	v, ok := attrs[a.attr]
	if !ok {
		return false
	}
	for _, tok := range strings.Fields(v) {
		if tok == a.token {
			return true
		}
	}
	return false
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// impliedEnd lists, per start tag, the open elements that tag closes when
// their end tag was omitted, and the element that bounds the search.
var impliedEnd = map[string]struct {
	closes   []string
	boundary string
}{
	"td": {closes: []string{"td", "th"}, boundary: "table"},
	"th": {closes: []string{"td", "th"}, boundary: "table"},
	"tr": {closes: []string{"tr", "td", "th"}, boundary: "table"},
	"li": {closes: []string{"li"}, boundary: "ul"},
}

type capture struct {
	idx   int
	level int
	text  strings.Builder
}

// openIndex returns the stack index of the innermost element named in names,
// searching no further than boundary, or -1.
func openIndex(stack []string, names []string, boundary string) int {
	for i := len(stack) - 1; i >= 0; i-- {
		for _, n := range names {
			if stack[i] == n {
				return i
			}
		}
		if stack[i] == boundary || (boundary == "ul" && stack[i] == "ol") {
			return -1
		}
	}
	return -1
}

// extractAnchors streams the document once and returns, per anchor, the text
// content of the first element it matches. Anchors that never match are
// absent from the result. Cells and list items whose end tag is omitted end
// where the next sibling starts.
func extractAnchors(r io.Reader, anchors []anchor) (map[anchor]string, error) {
	found := make(map[anchor]string, len(anchors))
	started := make([]bool, len(anchors))
	var (
		active []*capture
		stack  []string
	)

	finish := func(c *capture) {
		found[anchors[c.idx]] = strings.TrimSpace(c.text.String())
	}
	// closeTo pops every element at or above index i.
	closeTo := func(i int) {
		stack = stack[:i]
		remaining := active[:0]
		for _, c := range active {
			if c.level > len(stack) {
				finish(c)
				continue
			}
			remaining = append(remaining, c)
		}
		active = remaining
	}

	z := html.NewTokenizer(r)
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// Unterminated elements still yield what was read.
			for _, c := range active {
				finish(c)
			}
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return found, err
			}
			return found, nil

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			attrs := make(map[string]string)
			for hasAttr {
				var k, v []byte
				k, v, hasAttr = z.TagAttr()
				attrs[string(k)] = string(v)
			}

			opens := tt == html.StartTagToken && !voidElements[tag]
			if opens {
				if rule, ok := impliedEnd[tag]; ok {
					if i := openIndex(stack, rule.closes, rule.boundary); i >= 0 {
						closeTo(i)
					}
				}
				stack = append(stack, tag)
			}

			for i, a := range anchors {
				if started[i] || !a.matches(attrs) {
					continue
				}
				started[i] = true
				if !opens {
					found[a] = ""
					continue
				}
				active = append(active, &capture{idx: i, level: len(stack)})
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			// Stray end tags are ignored.
			if i := openIndex(stack, []string{string(name)}, ""); i >= 0 {
				closeTo(i)
			}

		case html.TextToken:
			text := z.Text()
			for _, c := range active {
				c.text.Write(text)
			}
		}
	}
}
