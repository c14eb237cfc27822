package extract

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_converter.go -package=mocks docbase/internal/extract Converter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Converter turns an uploaded file into plain text ready for chunking.
type Converter interface {
	// Convert reads the file at source and returns its text content.
	Convert(ctx context.Context, source string) (string, error)
}

// markdownExtensions are rendered through the markdown parser; everything
// else in textExtensions passes through as-is.
var markdownExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
}

var textExtensions = map[string]bool{
	".txt":  true,
	".text": true,
	".csv":  true,
	".json": true,
	".yaml": true,
	".yml":  true,
	".log":  true,
	".html": true,
	".xml":  true,
}

// FileConverter extracts plain text from markdown and text files.
type FileConverter struct {
	parser goldmark.Markdown
}

// NewFileConverter creates a converter with table support enabled for
// markdown sources.
func NewFileConverter() *FileConverter {
	return &FileConverter{
		parser: goldmark.New(
			goldmark.WithExtensions(extension.Table),
		),
	}
}

// Convert reads the file at source and returns its text content. Markdown
// is flattened to plain text through the AST; unknown extensions and
// non-UTF-8 content are rejected.
func (c *FileConverter) Convert(ctx context.Context, source string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	raw, err := os.ReadFile(source)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", source, err)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%s is not valid UTF-8 text", filepath.Base(source))
	}

	ext := strings.ToLower(filepath.Ext(source))
	switch {
	case markdownExtensions[ext]:
		return c.flattenMarkdown(raw), nil
	case textExtensions[ext]:
		return string(raw), nil
	default:
		return "", fmt.Errorf("unsupported file type %q", ext)
	}
}

// flattenMarkdown parses markdown and walks the AST to collect readable
// text, keeping block boundaries as newlines so chunking can prefer them.
func (c *FileConverter) flattenMarkdown(content []byte) string {
	reader := text.NewReader(content)
	doc := c.parser.Parser().Parse(reader)

	var b strings.Builder

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading, *ast.Paragraph, *ast.ListItem:
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
				b.WriteString("\n")
			}
			return ast.WalkContinue, nil

		case *ast.Text:
			b.Write(node.Segment.Value(content))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteString("\n")
			}
			return ast.WalkContinue, nil

		case *ast.String:
			b.Write(node.Value)
			return ast.WalkContinue, nil

		case *ast.CodeBlock:
			writeLines(&b, node.Lines(), content)
			return ast.WalkSkipChildren, nil

		case *ast.FencedCodeBlock:
			writeLines(&b, node.Lines(), content)
			return ast.WalkSkipChildren, nil

		default:
			// Table extension rows: pipe-join the cells on one line.
			kindName := n.Kind().String()
			if strings.Contains(kindName, "TableRow") || strings.Contains(kindName, "TableHeader") {
				if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
					b.WriteString("\n")
				}
				b.WriteString(tableRowText(n, content))
				b.WriteString("\n")
				return ast.WalkSkipChildren, nil
			}
			return ast.WalkContinue, nil
		}
	})

	return strings.TrimSpace(b.String())
}

func writeLines(b *strings.Builder, lines *text.Segments, content []byte) {
	if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
		b.WriteString("\n")
	}
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		b.Write(line.Value(content))
	}
}

// tableRowText extracts a table row's cells joined by pipes.
func tableRowText(row ast.Node, content []byte) string {
	var b strings.Builder
	cells := 0

	_ = ast.Walk(row, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if strings.Contains(node.Kind().String(), "TableCell") {
			if cells > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(nodeText(node, content))
			cells++
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return b.String()
}

// nodeText collects the text content of a node and its children.
func nodeText(n ast.Node, content []byte) string {
	var b strings.Builder

	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(content))
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(b.String())
}
