package searchindex

import (
	"bytes"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"
)

// page is the searchable text extracted from one content file.
type page struct {
	Title       string
	Description string
	Body        string
	Draft       bool
}

type frontMatter struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Summary     string `yaml:"summary"`
	Draft       bool   `yaml:"draft"`
}

var (
	markdownOnce   sync.Once
	markdownParser goldmark.Markdown
)

func getMarkdownParser() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownParser = goldmark.New()
	})
	return markdownParser
}

// splitFrontMatter separates a leading `---` YAML block from the markdown body.
func splitFrontMatter(src []byte) (meta []byte, body []byte) {
	src = bytes.TrimPrefix(src, []byte("\ufeff"))
	if !bytes.HasPrefix(src, []byte("---\n")) && !bytes.HasPrefix(src, []byte("---\r\n")) {
		return nil, src
	}
	rest := src[bytes.IndexByte(src, '\n')+1:]
	for off := 0; off < len(rest); {
		end := bytes.IndexByte(rest[off:], '\n')
		line := rest[off:]
		if end >= 0 {
			line = rest[off : off+end]
		}
		if string(bytes.TrimRight(line, "\r ")) == "---" {
			if end < 0 {
				return rest[:off], nil
			}
			return rest[:off], rest[off+end+1:]
		}
		if end < 0 {
			break
		}
		off += end + 1
	}
	return nil, src
}

// extractMarkdown reads front matter, the first heading and the prose of a
// markdown or MDX document. Front matter that fails to parse is ignored.
func extractMarkdown(src []byte) page {
	meta, body := splitFrontMatter(src)

	var p page
	if len(meta) > 0 {
		var fm frontMatter
		if err := yaml.Unmarshal(meta, &fm); err == nil {
			p.Title = fm.Title
			p.Description = fm.Description
			if p.Description == "" {
				p.Description = fm.Summary
			}
			p.Draft = fm.Draft
		}
	}

	doc := getMarkdownParser().Parser().Parse(text.NewReader(body))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Kind() == ast.KindParagraph || n.Kind() == ast.KindHeading {
				b.WriteByte('\n')
			}
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			if p.Title == "" {
				p.Title = nodeText(node, body)
			}
		case *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			b.Write(node.Segment.Value(body))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(node.Value)
		}
		return ast.WalkContinue, nil
	})
	p.Body = collapseSpace(b.String())
	return p
}

func nodeText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// extractHTML reads the <title>, meta description and visible text of an
// HTML document.
func extractHTML(src []byte) page {
	var p page
	var b strings.Builder

	z := html.NewTokenizer(bytes.NewReader(src))
	skipDepth := 0
	inTitle := false
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			p.Body = collapseSpace(b.String())
			p.Title = strings.TrimSpace(p.Title)
			return p
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.Data {
			case "script", "style", "noscript", "template", "svg":
				if tt == html.StartTagToken {
					skipDepth++
				}
			case "title":
				inTitle = tt == html.StartTagToken
			case "meta":
				if attr(tok, "name") == "description" && p.Description == "" {
					p.Description = attr(tok, "content")
				}
			case "p", "div", "li", "h1", "h2", "h3", "h4", "br", "section", "article":
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			tok := z.Token()
			switch tok.Data {
			case "script", "style", "noscript", "template", "svg":
				if skipDepth > 0 {
					skipDepth--
				}
			case "title":
				inTitle = false
			}
		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			if inTitle {
				p.Title += string(z.Text())
				continue
			}
			b.Write(z.Text())
			b.WriteByte(' ')
		}
	}
}

func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
