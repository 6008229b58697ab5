// Package textnorm converts markdown model output into plain text suitable
// for chat widgets and SMS-like channels.
package textnorm

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var md = goldmark.New(goldmark.WithExtensions(extension.Strikethrough, extension.Linkify))

// blockAtoms end the current line when they close.
var blockAtoms = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Ul: true, atom.Ol: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Blockquote: true, atom.Pre: true, atom.Table: true, atom.Tr: true, atom.Hr: true,
}

// ToPlainText renders markdown to HTML and extracts its text. Blocks are
// separated by newlines and list items are prefixed with "- ". Non-breaking
// spaces become regular spaces; blank lines are dropped.
func ToPlainText(markdown string) (string, error) {
	if strings.TrimSpace(markdown) == "" {
		return "", nil
	}

	var rendered bytes.Buffer
	if err := md.Convert([]byte(markdown), &rendered); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}

	doc, err := html.Parse(&rendered)
	if err != nil {
		return "", fmt.Errorf("parsing rendered html: %w", err)
	}

	var out strings.Builder
	walk(doc, &out)

	return tidy(out.String()), nil
}

// PlainTextOrRaw is ToPlainText that falls back to the trimmed input on error.
func PlainTextOrRaw(markdown string) string {
	text, err := ToPlainText(markdown)
	if err != nil {
		return strings.TrimSpace(strings.ReplaceAll(markdown, "\u00a0", " "))
	}
	return text
}

func walk(n *html.Node, out *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		out.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style:
			return
		case atom.Br:
			out.WriteByte('\n')
			return
		case atom.Li:
			out.WriteString("\n- ")
		case atom.Td, atom.Th:
			out.WriteByte(' ')
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, out)
	}

	if n.Type == html.ElementNode && blockAtoms[n.DataAtom] {
		out.WriteByte('\n')
	}
}

func tidy(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")

	lines := strings.Split(s, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
