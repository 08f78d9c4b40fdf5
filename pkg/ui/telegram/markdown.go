package telegram

import (
	"fmt"
	"strings"

	// Packages
	gte "github.com/igor-pavlenko/goldmark-telegram/extension"
	gteast "github.com/igor-pavlenko/goldmark-telegram/extension/ast"
	goldmark "github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	tele "gopkg.in/telebot.v4"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// markdownToEntities converts Markdown into plain text plus Telegram
// MessageEntity objects by walking the goldmark AST. Offsets and lengths
// are in UTF-16 code units, the unit Telegram uses.
func markdownToEntities(markdown string) (string, tele.Entities) {
	source := []byte(markdown)

	p := goldmark.New(goldmark.WithExtensions(gte.GTE))
	doc := p.Parser().Parse(text.NewReader(source))

	w := &entityWriter{}
	w.walk(doc, source)

	result := strings.TrimRight(w.text.String(), "\n")
	if len(w.entities) == 0 {
		return result, nil
	}
	return result, w.entities
}

///////////////////////////////////////////////////////////////////////////////
// TYPES

type entityWriter struct {
	text     strings.Builder
	entities tele.Entities
	offset   int // UTF-16 code units written so far
	ordinal  int // 1-based ordered list counter, 0 in unordered lists
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (w *entityWriter) write(s string) {
	w.text.WriteString(s)
	w.offset += utf16Len(s)
}

// span walks the node's children and tags the written range with an
// entity. Zero-length ranges are dropped.
func (w *entityWriter) span(node ast.Node, source []byte, entity tele.MessageEntity) {
	start := w.offset
	w.walkChildren(node, source)
	if length := w.offset - start; length > 0 {
		entity.Offset = start
		entity.Length = length
		w.entities = append(w.entities, entity)
	}
}

// breakBlock separates a new block from previous content with a blank
// line.
func (w *entityWriter) breakBlock() {
	s := w.text.String()
	switch {
	case s == "" || strings.HasSuffix(s, "\n\n"):
	case strings.HasSuffix(s, "\n"):
		w.write("\n")
	default:
		w.write("\n\n")
	}
}

// breakLine starts a new line unless already at one.
func (w *entityWriter) breakLine() {
	if s := w.text.String(); s != "" && !strings.HasSuffix(s, "\n") {
		w.write("\n")
	}
}

func (w *entityWriter) walk(node ast.Node, source []byte) {
	switch n := node.(type) {
	case *ast.Paragraph:
		w.breakBlock()
		w.walkChildren(n, source)

	case *ast.Heading:
		w.breakBlock()
		w.span(n, source, tele.MessageEntity{Type: tele.EntityBold})

	case *ast.List:
		w.breakLine()
		saved := w.ordinal
		w.ordinal = 0
		if n.IsOrdered() {
			w.ordinal = max(n.Start, 1)
		}
		w.walkChildren(n, source)
		w.ordinal = saved

	case *ast.ListItem:
		w.breakLine()
		if w.ordinal > 0 {
			w.write(fmt.Sprintf("%d. ", w.ordinal))
			w.ordinal++
		} else {
			w.write("• ")
		}
		w.walkChildren(n, source)

	case *ast.Blockquote:
		w.breakBlock()
		w.span(n, source, tele.MessageEntity{Type: tele.EntityBlockquote})

	case *ast.FencedCodeBlock:
		w.breakBlock()
		w.codeBlock(n.Lines(), source, string(n.Language(source)))

	case *ast.CodeBlock:
		w.breakBlock()
		w.codeBlock(n.Lines(), source, "")

	case *ast.ThematicBreak:
		w.breakBlock()
		w.write("———")

	case *ast.Emphasis:
		entityType := tele.EntityItalic
		if n.Level == 2 {
			entityType = tele.EntityBold
		}
		w.span(n, source, tele.MessageEntity{Type: entityType})

	case *ast.CodeSpan:
		start := w.offset
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				w.write(string(t.Segment.Value(source)))
			}
		}
		if length := w.offset - start; length > 0 {
			w.entities = append(w.entities, tele.MessageEntity{
				Type:   tele.EntityCode,
				Offset: start,
				Length: length,
			})
		}

	case *ast.Link:
		w.span(n, source, tele.MessageEntity{Type: tele.EntityTextLink, URL: string(n.Destination)})

	case *ast.Image:
		// Alt text linked to the image URL
		w.span(n, source, tele.MessageEntity{Type: tele.EntityTextLink, URL: string(n.Destination)})

	case *ast.AutoLink:
		w.write(string(n.URL(source)))

	case *ast.Text:
		w.write(string(n.Segment.Value(source)))
		if n.HardLineBreak() || n.SoftLineBreak() {
			w.write("\n")
		}

	case *ast.String:
		w.write(string(n.Value))

	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			segment := n.Segments.At(i)
			w.write(string(segment.Value(source)))
		}

	default:
		switch node.Kind() {
		case east.KindStrikethrough:
			w.span(node, source, tele.MessageEntity{Type: tele.EntityStrikethrough})
		case gteast.KindUnderline:
			w.span(node, source, tele.MessageEntity{Type: tele.EntityUnderline})
		default:
			w.walkChildren(node, source)
		}
	}
}

// codeBlock writes raw code lines and tags them as a code block entity.
func (w *entityWriter) codeBlock(lines *text.Segments, source []byte, language string) {
	start := w.offset
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		w.write(string(segment.Value(source)))
	}
	// Drop the trailing newline inside the block
	if s := w.text.String(); strings.HasSuffix(s, "\n") {
		w.text.Reset()
		w.text.WriteString(s[:len(s)-1])
		w.offset--
	}
	if length := w.offset - start; length > 0 {
		w.entities = append(w.entities, tele.MessageEntity{
			Type:     tele.EntityCodeBlock,
			Offset:   start,
			Length:   length,
			Language: language,
		})
	}
}

func (w *entityWriter) walkChildren(node ast.Node, source []byte) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		w.walk(c, source)
	}
}

// utf16Len returns the length of s in UTF-16 code units.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n++
		if r >= 0x10000 {
			n++
		}
	}
	return n
}
