package drive

import (
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"golang.org/x/net/html"
)

// excerptLength bounds Document.Excerpt in runes
const excerptLength = 280

// Document is an exported Google Doc in the forms the API serves
type Document struct {
	Markdown string
	Text     string
	Excerpt  string
}

func newDocument(htmlContent, domain string) (*Document, error) {
	markdown, err := htmlToMarkdown(htmlContent, domain)
	if err != nil {
		return nil, err
	}
	text, err := htmlToText(htmlContent)
	if err != nil {
		return nil, err
	}
	return &Document{
		Markdown: markdown,
		Text:     text,
		Excerpt:  excerpt(text, excerptLength),
	}, nil
}

func htmlToMarkdown(htmlContent, domain string) (string, error) {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	markdown, err := conv.ConvertString(htmlContent, converter.WithDomain(domain))
	if err != nil {
		return "", fmt.Errorf("failed to convert document to markdown: %w", err)
	}
	return markdown, nil
}

// htmlToText flattens HTML into plain text with paragraph breaks
func htmlToText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("failed to parse document html: %w", err)
	}

	var text strings.Builder
	extractText(doc, &text)
	return strings.TrimSpace(text.String()), nil
}

func extractText(n *html.Node, text *strings.Builder) {
	if n.Type == html.TextNode {
		text.WriteString(n.Data)
		return
	}

	if n.Type == html.ElementNode {
		switch n.Data {
		case "head", "script", "style":
			return
		case "br":
			text.WriteString("\n")
			return
		case "p", "li", "tr", "div", "h1", "h2", "h3", "h4", "h5", "h6":
			if text.Len() > 0 && !strings.HasSuffix(text.String(), "\n") {
				text.WriteString("\n")
			}
			for child := n.FirstChild; child != nil; child = child.NextSibling {
				extractText(child, text)
			}
			if n.Data == "p" {
				text.WriteString("\n\n")
			} else {
				text.WriteString("\n")
			}
			return
		}
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		extractText(child, text)
	}
}

// excerpt returns the first n runes of text with whitespace collapsed
func excerpt(text string, n int) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	runes := []rune(collapsed)
	if len(runes) <= n {
		return collapsed
	}
	return strings.TrimSpace(string(runes[:n])) + "…"
}
