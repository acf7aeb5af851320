package consent

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/theopenlane/consentaudit/internal/taxonomy"
)

const (
	// maxControlTextLength bounds control text so page chrome wrapped in a
	// button-like element is not treated as a control label
	maxControlTextLength = 100
	// maxControlCapture stops buffering text for an element that never closes
	maxControlCapture = 4 * maxControlTextLength
)

// extractControls returns the normalized text of every clickable control:
// buttons, button and submit inputs, and anchors styled as buttons. Text is
// folded, whitespace-collapsed and kept only when shorter than
// maxControlTextLength runes. Controls are returned in document order.
func extractControls(doc string) []string {
	var (
		controls []string
		capture  strings.Builder
		// capturing is the element whose text is being collected
		capturing atom.Atom
		depth     int
		skip      atom.Atom
	)

	z := html.NewTokenizer(strings.NewReader(doc))

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return controls
		}

		tok := z.Token()

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			if tok.DataAtom == atom.Script || tok.DataAtom == atom.Style {
				if tt == html.StartTagToken {
					skip = tok.DataAtom
				}

				continue
			}

			if capturing != 0 {
				if tok.DataAtom == capturing && tt == html.StartTagToken {
					depth++
				}

				continue
			}

			switch {
			case tok.DataAtom == atom.Button && tt == html.StartTagToken:
				capturing, depth = atom.Button, 1
				capture.Reset()
			case tok.DataAtom == atom.A && tt == html.StartTagToken && strings.Contains(strings.ToLower(attr(tok, "class")), "btn"):
				capturing, depth = atom.A, 1
				capture.Reset()
			case tok.DataAtom == atom.Input && isButtonInput(tok):
				if text, ok := normalizeControlText(attr(tok, "value")); ok {
					controls = append(controls, text)
				}
			}
		case html.EndTagToken:
			if skip != 0 && tok.DataAtom == skip {
				skip = 0
				continue
			}

			if capturing == 0 || tok.DataAtom != capturing {
				continue
			}

			depth--
			if depth > 0 {
				continue
			}

			if text, ok := normalizeControlText(capture.String()); ok {
				controls = append(controls, text)
			}

			capturing = 0
		case html.TextToken:
			if skip != 0 || capturing == 0 || capture.Len() >= maxControlCapture {
				continue
			}

			capture.WriteString(tok.Data)
		}
	}
}

// normalizeControlText folds and collapses whitespace, rejecting empty or
// over-long text
func normalizeControlText(s string) (string, bool) {
	text := strings.Join(strings.Fields(taxonomy.Fold(s)), " ")

	n := utf8.RuneCountInString(text)
	if n == 0 || n >= maxControlTextLength {
		return "", false
	}

	return text, true
}

// isButtonInput reports whether an input element is a button or submit input
func isButtonInput(tok html.Token) bool {
	t := strings.TrimSpace(attr(tok, "type"))

	return strings.EqualFold(t, "button") || strings.EqualFold(t, "submit")
}

// attr returns the value of the named attribute, or empty
func attr(tok html.Token, name string) string {
	for _, a := range tok.Attr {
		if a.Key == name {
			return a.Val
		}
	}

	return ""
}

// hasAttr reports whether the named attribute is present
func hasAttr(tok html.Token, name string) bool {
	for _, a := range tok.Attr {
		if a.Key == name {
			return true
		}
	}

	return false
}
