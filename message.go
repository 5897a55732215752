package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// NormalizeMessage uppercases s. With lettersOnly every byte outside A-Z is
// dropped afterwards, otherwise the message is left for NewMessage to validate.
func NormalizeMessage(s string, lettersOnly bool) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if !lettersOnly {
		return s
	}

	var result strings.Builder
	for i := 0; i < len(s); i++ {
		if isSymbol(s[i]) {
			result.WriteByte(s[i])
		}
	}
	return result.String()
}

// NormalizeOperations uppercases the operations string and trims surrounding space
func NormalizeOperations(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ExtractHTMLText returns the text content of the elements matching selector
// in the HTML document read from r. An empty selector selects the body.
// Matches are joined with newlines.
func ExtractHTMLText(r io.Reader, selector string) (string, error) {
	root, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc := goquery.NewDocumentFromNode(root)
	if selector == "" {
		selector = "body"
	}

	selection := doc.Find(selector)
	if selection.Length() == 0 {
		return "", fmt.Errorf("selector %q matched no elements", selector)
	}

	var parts []string
	selection.Each(func(i int, s *goquery.Selection) {
		parts = append(parts, strings.TrimSpace(s.Text()))
	})
	return strings.Join(parts, "\n"), nil
}
