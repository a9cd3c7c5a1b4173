package analysis

import (
	"net/url"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// minArticleLength is the readability text length below which the plain-text
// fallback is used.
const minArticleLength = 200

// mdConverter is safe for concurrent use
var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
	),
)

// ExtractText returns the readable content of a rendered page for prompting,
// cut to maxChars runes when maxChars > 0.
func ExtractText(rawHTML, pageURL string, maxChars int) string {
	text := articleMarkdown(rawHTML, pageURL)
	if text == "" {
		text = VisibleText(rawHTML)
	}
	return truncateRunes(text, maxChars)
}

func articleMarkdown(rawHTML, pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Host == "" {
		return ""
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsed)
	if err != nil || len(strings.TrimSpace(article.TextContent)) < minArticleLength {
		return ""
	}

	markdown, err := mdConverter.ConvertString(article.Content, converter.WithDomain(pageURL))
	if err != nil {
		return strings.TrimSpace(collapseWhitespace(article.TextContent))
	}

	var b strings.Builder
	if article.Title != "" {
		b.WriteString("# ")
		b.WriteString(article.Title)
		b.WriteString("\n\n")
	}
	b.WriteString(strings.TrimSpace(markdown))
	return b.String()
}

// VisibleText returns the body text without scripts, styles and noscript blocks,
// with whitespace collapsed to single spaces.
func VisibleText(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript, template, svg").Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	var parts []string
	for _, n := range root.Nodes {
		collectText(n, &parts)
	}
	return collapseWhitespace(strings.Join(parts, " "))
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if s := strings.TrimSpace(n.Data); s != "" {
			*parts = append(*parts, s)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
