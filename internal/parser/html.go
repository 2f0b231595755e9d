// Package parser turns mail bodies into the plain text the classifier reads.
package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLParser converts HTML mail bodies to plain text
type HTMLParser struct {
	stripQuotes     bool
	whitespaceRegex *regexp.Regexp
	newlineRegex    *regexp.Regexp
	invisibleRegex  *regexp.Regexp
	attributionLine *regexp.Regexp
}

// Option configures an HTMLParser
type Option func(*HTMLParser)

// WithQuotesStripped drops quoted reply history so only the new content of a
// message is classified.
func WithQuotesStripped() Option {
	return func(p *HTMLParser) {
		p.stripQuotes = true
	}
}

// NewHTMLParser creates a new HTML parser
func NewHTMLParser(opts ...Option) *HTMLParser {
	p := &HTMLParser{
		whitespaceRegex: regexp.MustCompile(`[^\S\n]+`),
		newlineRegex:    regexp.MustCompile(`\n{3,}`),
		// Zero-width and other invisible code points
		invisibleRegex:  regexp.MustCompile(`[\x{200B}-\x{200D}\x{FEFF}\x{00AD}\x{034F}\x{061C}\x{180E}\x{2060}-\x{2064}\x{FE00}-\x{FE0F}]+`),
		attributionLine: regexp.MustCompile(`(?i)^on .+ wrote:$`),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse converts HTML to clean plain text
func (p *HTMLParser) Parse(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, head, meta, link, title").Remove()
	if p.stripQuotes {
		doc.Find("blockquote, .gmail_quote, .yahoo_quoted, #divRplyFwdMsg").Remove()
	}

	doc.Find("p, div, br, h1, h2, h3, h4, h5, h6, li, tr, blockquote").Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("\n")
	})

	return p.Clean(doc.Text()), nil
}

// Clean normalizes plain text: invisible characters removed, runs of spaces
// collapsed, blank lines dropped. With quote stripping enabled it also cuts
// "> " quoted lines and the "On ... wrote:" line introducing them.
func (p *HTMLParser) Clean(text string) string {
	text = p.invisibleRegex.ReplaceAllString(text, "")
	text = p.whitespaceRegex.ReplaceAllString(text, " ")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if p.stripQuotes && (strings.HasPrefix(line, ">") || p.attributionLine.MatchString(line)) {
			continue
		}
		lines = append(lines, line)
	}

	text = strings.Join(lines, "\n")
	text = p.newlineRegex.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Snippet returns the first line-joined maxRunes characters of text
func Snippet(text string, maxRunes int) string {
	flat := strings.Join(strings.Fields(text), " ")
	runes := []rune(flat)
	if len(runes) <= maxRunes {
		return flat
	}
	return strings.TrimSpace(string(runes[:maxRunes]))
}
