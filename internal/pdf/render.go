// Package pdf lays out a markdown report as a paginated PDF document.
package pdf

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	// PageMargin is the margin on every side of every page, in points.
	PageMargin = 20.0

	bodyFontSize = 11.0
	codeFontSize = 9.5
	lineSpacing  = 1.35
	listIndent   = 14.0
	blockGap     = 4.0

	bodyFont = "Go"
	codeFont = "GoMono"
)

// headingSizes maps ATX heading levels to font sizes in points.
var headingSizes = map[int]float64{1: 22, 2: 18, 3: 15, 4: 13, 5: 12, 6: 11}

// Document is a laid-out PDF ready to be written.
type Document struct {
	pdf *fpdf.Fpdf
}

// Write writes the PDF bytes to w.
func (d *Document) Write(w io.Writer) error {
	return d.pdf.Output(w)
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return d.pdf.PageCount()
}

// Render lays out markdownText on white A4 pages with a fixed margin. Page breaks are
// inserted automatically when content overflows. Text is set in the embedded Go fonts,
// so Latin, Greek and Cyrillic titles and comments keep their characters.
func Render(markdownText string) (*Document, error) {
	src := []byte(markdownText)
	root := goldmark.New().Parser().Parse(text.NewReader(src))

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetCreator("ghreport", true)
	pdf.AddUTF8FontFromBytes(bodyFont, "", goregular.TTF)
	pdf.AddUTF8FontFromBytes(bodyFont, "B", gobold.TTF)
	pdf.AddUTF8FontFromBytes(codeFont, "", gomono.TTF)
	pdf.SetMargins(PageMargin, PageMargin, PageMargin)
	pdf.SetAutoPageBreak(true, PageMargin)
	pdf.SetHeaderFunc(func() {
		w, h := pdf.GetPageSize()
		pdf.SetFillColor(255, 255, 255)
		pdf.Rect(0, 0, w, h, "F")
	})
	pdf.AddPage()

	l := &layout{
		pdf: pdf,
		src: src,
	}
	l.blocks(root, 0)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to lay out PDF: %w", err)
	}

	return &Document{pdf: pdf}, nil
}

// layout walks goldmark block nodes and emits fpdf cells.
type layout struct {
	pdf *fpdf.Fpdf
	src []byte
}

func (l *layout) blocks(parent ast.Node, depth int) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		l.block(n, depth)
	}
}

func (l *layout) block(n ast.Node, depth int) {
	switch node := n.(type) {
	case *ast.Heading:
		size, ok := headingSizes[node.Level]
		if !ok {
			size = bodyFontSize
		}
		l.pdf.SetFont(bodyFont, "B", size)
		l.paragraph(l.inlineText(node), size, depth, "")
		l.pdf.Ln(blockGap)

	case *ast.Paragraph, *ast.TextBlock:
		l.pdf.SetFont(bodyFont, "", bodyFontSize)
		l.paragraph(l.inlineText(node), bodyFontSize, depth, "")
		if _, ok := node.(*ast.Paragraph); ok {
			l.pdf.Ln(blockGap)
		}

	case *ast.List:
		l.list(node, depth)
		if depth == 0 {
			l.pdf.Ln(blockGap)
		}

	case *ast.FencedCodeBlock:
		l.code(node.Lines(), depth)
	case *ast.CodeBlock:
		l.code(node.Lines(), depth)

	case *ast.Blockquote:
		l.blocks(node, depth+1)

	case *ast.ThematicBreak, *ast.HTMLBlock:
		// Rules and raw HTML are not part of a report.

	default:
		l.blocks(node, depth)
	}
}

func (l *layout) list(list *ast.List, depth int) {
	number := list.Start
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "• "
		if list.IsOrdered() {
			marker = strconv.Itoa(number) + ". "
			number++
		}

		first := true
		for child := item.FirstChild(); child != nil; child = child.NextSibling() {
			switch c := child.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				prefix := "  "
				if first {
					prefix = marker
				}
				l.pdf.SetFont(bodyFont, "", bodyFontSize)
				l.paragraph(l.inlineText(c), bodyFontSize, depth, prefix)
			case *ast.List:
				l.list(c, depth+1)
			default:
				l.block(c, depth+1)
			}
			first = false
		}
	}
}

// paragraph writes wrapped text indented by depth list levels.
func (l *layout) paragraph(s string, size float64, depth int, prefix string) {
	if s == "" && prefix == "" {
		return
	}
	l.indent(depth, func() {
		l.pdf.MultiCell(0, size*lineSpacing, prefix+s, "", "L", false)
	})
}

func (l *layout) code(lines *text.Segments, depth int) {
	l.pdf.SetFont(codeFont, "", codeFontSize)
	l.indent(depth, func() {
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			s := strings.TrimRight(string(line.Value(l.src)), "\r\n")
			l.pdf.MultiCell(0, codeFontSize*lineSpacing, s, "", "L", false)
		}
	})
	l.pdf.Ln(blockGap)
}

// indent runs fn with the left margin shifted by depth list levels, so wrapped lines
// and page breaks keep the indentation.
func (l *layout) indent(depth int, fn func()) {
	left, _, _, _ := l.pdf.GetMargins()
	shifted := PageMargin + float64(depth)*listIndent
	l.pdf.SetLeftMargin(shifted)
	l.pdf.SetX(shifted)
	fn()
	l.pdf.SetLeftMargin(left)
	l.pdf.SetX(left)
}

// inlineText flattens the inline children of n into plain text.
func (l *layout) inlineText(n ast.Node) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(l.src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(t.Value)
		case *ast.AutoLink:
			sb.Write(t.URL(l.src))
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}
