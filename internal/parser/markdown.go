package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/kxiao02/pptweaver/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	tree := &doctree.Document{
		Title: strings.TrimSuffix(strings.TrimSuffix(filename, ".md"), ".markdown"),
	}

	// Walk the AST and build a tree based on heading levels.
	// We use a stack to track the current nesting.
	type stackEntry struct {
		node  *doctree.Node
		level int
	}

	// Root is level 0 so every heading nests under it.
	root := &doctree.Node{Title: tree.Title}
	stack := []stackEntry{{node: root, level: 0}}

	var currentText bytes.Buffer

	flushText := func() {
		t := strings.TrimSpace(currentText.String())
		if t != "" {
			top := stack[len(stack)-1].node
			if top.Text != "" {
				top.Text += "\n\n" + t
			} else {
				top.Text = t
			}
		}
		currentText.Reset()
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			flushText()
			level := node.Level
			title := string(node.Text(src))

			newNode := &doctree.Node{Title: title}

			// Pop stack until we find a parent with lower level.
			for len(stack) > 1 && stack[len(stack)-1].level >= level {
				stack = stack[:len(stack)-1]
			}

			parent := stack[len(stack)-1].node
			parent.Children = append(parent.Children, newNode)
			stack = append(stack, stackEntry{node: newNode, level: level})

		default:
			// Collect text content from non-heading blocks. Inline
			// images stay with the section they appear in.
			top := stack[len(stack)-1].node
			top.Images = append(top.Images, collectMarkdownImages(n, src)...)
			t := extractText(n, src)
			if t != "" {
				if currentText.Len() > 0 {
					currentText.WriteString("\n\n")
				}
				currentText.WriteString(t)
			}
		}
	}
	flushText()

	tree.Children = root.Children
	// If there were no headings, put all content in a single child.
	if len(tree.Children) == 0 && (root.Text != "" || len(root.Images) > 0) {
		tree.Children = []*doctree.Node{{Text: root.Text, Images: root.Images}}
	} else if len(tree.Children) > 0 && len(root.Images) > 0 {
		// Images before the first heading belong to the first section.
		first := tree.Children[0]
		first.Images = append(root.Images, first.Images...)
	}

	return tree, nil
}

// extractText gets the text content of a goldmark AST node. Image alt
// text is excluded; images are collected separately.
func extractText(n ast.Node, src []byte) string {
	switch n.(type) {
	case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
		var buf bytes.Buffer
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
		return strings.TrimSpace(buf.String())
	}

	// Blocks with structured children (lists, quotes) join their parts
	// with newlines; inline runs concatenate.
	var parts []string
	var inline bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Image:
			// Collected separately.
		case *ast.Text:
			inline.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				inline.WriteByte('\n')
			}
		default:
			if c.Type() == ast.TypeBlock {
				if s := extractText(c, src); s != "" {
					parts = append(parts, s)
				}
			} else {
				inline.WriteString(extractText(c, src))
			}
		}
	}
	if s := strings.TrimSpace(inline.String()); s != "" {
		parts = append([]string{s}, parts...)
	}
	return strings.Join(parts, "\n")
}

// collectMarkdownImages finds inline images anywhere under n.
func collectMarkdownImages(n ast.Node, src []byte) []doctree.Image {
	var images []doctree.Image
	if img, ok := n.(*ast.Image); ok {
		images = append(images, doctree.Image{
			Alt: string(img.Text(src)),
			URL: string(img.Destination),
		})
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		images = append(images, collectMarkdownImages(c, src)...)
	}
	return images
}
