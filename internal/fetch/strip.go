package fetch

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// hiddenElements hold no visible text
var hiddenElements = map[atom.Atom]struct{}{
	atom.Script:   {},
	atom.Style:    {},
	atom.Noscript: {},
	atom.Template: {},
	atom.Svg:      {},
}

// StripHTML returns the visible text of doc with whitespace collapsed
func StripHTML(doc string) string {
	var (
		b      strings.Builder
		hidden int
	)

	z := html.NewTokenizer(strings.NewReader(doc))

	for {
		tt := z.Next()

		switch tt {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			name, _ := z.TagName()
			if _, ok := hiddenElements[atom.Lookup(name)]; ok {
				hidden++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if _, ok := hiddenElements[atom.Lookup(name)]; ok && hidden > 0 {
				hidden--
			}
		case html.TextToken:
			if hidden > 0 {
				continue
			}

			b.Write(z.Text())
			b.WriteByte(' ')
		}
	}
}
