// MIT License

// Copyright (c) 2018 Akhil Indurti

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package html converts a Kiro document into HTML output.
// All text is escaped. Inline code is escaped but never parsed, and the
// output of a code highlighter is written as is.
//
// AST nodes correspond to the following HTML tags:
// 	Heading                     <h1></h1> ... <h6></h6>
// 	Rule                        <hr>
// 	List                        <ul></ul>, <ol></ol>
// 	ListItem                    <li></li>
// 	ReportList                  <ol class="kiro-report-list"></ol>
// 	ReportItem                  <li class="kiro-report-item kiro-level-N"><span class="kiro-report-key"></span></li>
// 	Blockquote                  <blockquote></blockquote>
// 	Toggle                      <details class="kiro-toggle"><summary></summary><div></div></details>
// 	Toggle (heading, no body)   <h1></h1> ... <h6></h6>
// 	CodeBlock                   <pre><code class="language-x"></code></pre>
// 	Resource (image)            <figure class="kiro-image"><img><figcaption></figcaption></figure>
// 	Resource (link)             <p><a class="kiro-link"></a></p>
// 	Resource (audio, video)     <figure class="kiro-audio"><audio controls></audio></figure>
// 	Paragraph                   <p></p>
// 	Bold                        <strong></strong>
// 	Italic                      <em></em>
// 	Strike                      <s></s>
// 	Mark                        <mark></mark>
// 	Code                        <code></code>
// 	Tip                         <span class="kiro-tip"></span>
// 	StyleSpan                   <span class="kiro-NAME"></span>, <span class="kiro-NAME kiro-NAME-CHILD"></span>
// 	FootnoteRef                 <sup class="kiro-footnote-ref"><a></a></sup>
// 	Break                       <br>
//
// Referenced footnotes are listed after the body in a
// <section class="kiro-footnotes">.
package html // import "akhil.cc/kiro/gen/html"

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"akhil.cc/kiro/ast"
	"akhil.cc/kiro/gen"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// StyleMode selects where the document's stylesheet goes.
type StyleMode int

const (
	// StyleEmbed writes a <style> element at the start of the output, or
	// into the head of a standalone document.
	StyleEmbed StyleMode = iota
	// StyleExtract leaves the stylesheet out of the output. It is available
	// from Stylesheet.
	StyleExtract
)

// Generator represents a non-reusable HTML output generator for an
// *ast.Document.
type Generator struct {
	// Stdout specifies the generator's standard output, where HTML is
	// written. If nil, output is discarded.
	Stdout io.Writer

	// Highlighter, if set, renders the contents of code blocks. When it
	// fails the code is written escaped.
	Highlighter gen.Highlighter

	// HeadingOffset is added to every heading level. Levels past 6 are
	// written as <h6>.
	HeadingOffset int

	// HeadingIDs gives every heading an id derived from its text.
	HeadingIDs bool

	Styles StyleMode

	// Standalone wraps the output in a complete HTML document.
	Standalone bool

	Log *zap.Logger

	ctx context.Context
	doc *ast.Document
	log *zap.Logger
	fn  *footnotes
	ids map[string]int

	// inLink is set while a link caption is written. HTML does not allow
	// an anchor inside another.
	inLink bool
}

// Gen returns the Generator struct to convert the given document into HTML
// output.
//
// It sets only the document in the returned structure.
func Gen(doc *ast.Document) *Generator {
	return &Generator{ctx: context.TODO(), doc: doc}
}

// GenContext is like Gen but includes a context.
//
// The provided context is used to halt HTML generation after processing a
// top-level block.
func GenContext(ctx context.Context, doc *ast.Document) *Generator {
	if ctx == nil {
		panic("nil context")
	}
	return &Generator{ctx: ctx, doc: doc}
}

// Run converts the document, writing to Stdout. It returns the first write
// error, or the context's error if it is done before the document is
// finished.
func (g *Generator) Run() error {
	if g.Stdout == nil {
		g.Stdout = io.Discard
	}
	g.log = g.Log
	if g.log == nil {
		g.log = zap.NewNop()
	}
	g.log = g.log.Named("html")
	g.fn = newFootnotes(g.doc.Footnotes)
	g.ids = make(map[string]int)

	cw := &stickyCountWriter{0, nil, g.Stdout}
	if g.Standalone {
		g.head(cw)
	} else if g.Styles == StyleEmbed {
		g.style(cw)
	}
	for _, b := range g.doc.Blocks {
		select {
		case <-g.ctx.Done():
			return g.ctx.Err()
		default:
		}
		g.block(b, cw)
	}
	g.footnotes(cw)
	if g.Standalone {
		cw.WriteString("</body></html>")
	}
	g.log.Debug("Generated HTML",
		zap.Int64("bytes", cw.n),
		zap.Int("footnotes", len(g.fn.order)))
	return cw.err
}

// Output runs the generator and returns its standard output.
func (g *Generator) Output() ([]byte, error) {
	if g.Stdout != nil {
		return nil, fmt.Errorf("Stdout already set")
	}
	var stdout bytes.Buffer
	g.Stdout = &stdout
	err := g.Run()
	return stdout.Bytes(), err
}

// Stylesheet returns the document's style rules, one per line and sorted
// by selector. When the Highlighter is a class-based gen.Chroma, its
// stylesheet follows.
func (g *Generator) Stylesheet() string {
	sels := make([]string, 0, len(g.doc.Styles))
	for sel := range g.doc.Styles {
		sels = append(sels, sel)
	}
	sort.Strings(sels)
	rules := make([]string, 0, len(sels)+1)
	for _, sel := range sels {
		rules = append(rules, sel+" { "+g.doc.Styles[sel]+" }")
	}
	if c, ok := g.Highlighter.(*gen.Chroma); ok && c.Classes {
		var sb strings.Builder
		if err := c.WriteCSS(&sb); err == nil {
			rules = append(rules, strings.TrimSpace(sb.String()))
		}
	}
	return strings.Join(rules, "\n")
}

// style writes the stylesheet as a <style> element. "</" is written as
// "<\/" so that no rule can end the element early.
func (g *Generator) style(w io.StringWriter) {
	if css := g.Stylesheet(); css != "" {
		w.WriteString("<style>\n" + strings.ReplaceAll(css, "</", `<\/`) + "\n</style>")
	}
}

func (g *Generator) head(w io.StringWriter) {
	w.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8">`)
	if title, ok := g.title(); ok {
		w.WriteString("<title>" + escape(title) + "</title>")
	}
	if g.Styles == StyleEmbed {
		g.style(w)
	}
	w.WriteString("</head><body>")
}

// title returns the text of the first heading in the document.
func (g *Generator) title() (string, bool) {
	var h *ast.Heading
	ast.Walk(g.doc, func(n ast.Node) error {
		if t, ok := n.(*ast.Heading); ok && h == nil {
			h = t
		}
		if h != nil {
			return ast.SkipChildren
		}
		return nil
	})
	if h == nil {
		return "", false
	}
	return ast.Text(h.Text), true
}

func (g *Generator) block(b ast.Block, w *stickyCountWriter) {
	switch t := b.(type) {
	case *ast.Heading:
		g.heading(t, w)
	case *ast.Rule:
		w.WriteString("<hr>")
	case *ast.List:
		g.list(t, w)
	case *ast.ReportList:
		w.WriteString(`<ol class="kiro-report-list">`)
		for _, it := range t.Items {
			fmt.Fprintf(w, `<li class="kiro-report-item kiro-level-%d"><span class="kiro-report-key">%s</span>`, it.Level, escape(it.Key))
			if len(it.Text) > 0 {
				w.WriteString(" ")
				g.inlines(it.Text, w)
			}
			w.WriteString("</li>")
		}
		w.WriteString("</ol>")
	case *ast.Blockquote:
		w.WriteString("<blockquote>")
		g.inlines(t.Text, w)
		w.WriteString("</blockquote>")
	case *ast.Toggle:
		if t.Heading > 0 && len(t.Body) == 0 {
			g.heading(&ast.Heading{Level: t.Heading, Text: t.Summary}, w)
			break
		}
		w.WriteString(`<details class="kiro-toggle"><summary>`)
		g.inlines(t.Summary, w)
		w.WriteString("</summary><div>")
		for _, b := range t.Body {
			g.block(b, w)
		}
		w.WriteString("</div></details>")
	case *ast.CodeBlock:
		g.code(t, w)
	case *ast.Resource:
		g.resource(t, w)
	case *ast.Paragraph:
		if len(t.Text) != 0 {
			w.WriteString("<p>")
			g.inlines(t.Text, w)
			w.WriteString("</p>")
		}
	}
}

func (g *Generator) heading(h *ast.Heading, w *stickyCountWriter) {
	level := h.Level + g.HeadingOffset
	if level > 6 {
		level = 6
	}
	if level < 1 {
		level = 1
	}
	tag := "h" + strconv.Itoa(level)
	if g.HeadingIDs {
		fmt.Fprintf(w, `<%s id="%s">`, tag, escape(g.headingID(h)))
	} else {
		w.WriteString("<" + tag + ">")
	}
	g.inlines(h.Text, w)
	w.WriteString("</" + tag + ">")
}

// headingID returns a slug of the heading's text. Repeated slugs get a
// numeric suffix starting at 2.
func (g *Generator) headingID(h *ast.Heading) string {
	id := slug.Make(ast.Text(h.Text))
	if id == "" {
		id = "section"
	}
	n := g.ids[id]
	g.ids[id]++
	if n > 0 {
		id += "-" + strconv.Itoa(n+1)
	}
	return id
}

func (g *Generator) list(l *ast.List, w *stickyCountWriter) {
	tag := "ul"
	if l.Ordered {
		tag = "ol"
	}
	w.WriteString("<" + tag + ">")
	for _, it := range l.Items {
		w.WriteString("<li>")
		g.inlines(it.Text, w)
		for _, sub := range it.Sub {
			g.list(sub, w)
		}
		w.WriteString("</li>")
	}
	w.WriteString("</" + tag + ">")
}

func (g *Generator) code(c *ast.CodeBlock, w *stickyCountWriter) {
	class := ""
	if c.Lang != "" {
		class = ` class="language-` + escape(c.Lang) + `"`
	}
	if g.Highlighter == nil {
		w.WriteString("<pre><code" + class + ">" + escape(c.Raw) + "</code></pre>")
		return
	}
	out, err := g.highlight(c.Lang, c.Raw)
	if err != nil {
		g.log.Warn("Highlighting failed", zap.String("lang", c.Lang), zap.Error(err))
		w.WriteString("<pre><code>" + escape(c.Raw) + "</code></pre>")
		return
	}
	w.WriteString("<pre><code" + class + ">" + out + "</code></pre>")
}

func (g *Generator) highlight(lang, code string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("highlighter panicked: %v", r)
		}
	}()
	return g.Highlighter.Highlight(lang, code)
}

func (g *Generator) resource(r *ast.Resource, w *stickyCountWriter) {
	src := escape(r.Target)
	switch r.Kind {
	case ast.Image:
		fmt.Fprintf(w, `<figure class="kiro-image"><img src="%s" alt="%s">`, src, escape(ast.Text(r.Caption)))
		g.figcaption(r, w)
		w.WriteString("</figure>")
	case ast.Link:
		fmt.Fprintf(w, `<p><a href="%s" class="kiro-link">`, src)
		if len(r.Caption) > 0 {
			g.inLink = true
			g.inlines(r.Caption, w)
			g.inLink = false
		} else {
			w.WriteString(src)
		}
		w.WriteString("</a></p>")
	case ast.Audio, ast.Video:
		tag := r.Kind.String()
		fmt.Fprintf(w, `<figure class="kiro-%s"><%s controls src="%s"></%s>`, tag, tag, src, tag)
		g.figcaption(r, w)
		w.WriteString("</figure>")
	}
}

func (g *Generator) figcaption(r *ast.Resource, w *stickyCountWriter) {
	if len(r.Caption) == 0 {
		return
	}
	w.WriteString("<figcaption>")
	g.inlines(r.Caption, w)
	w.WriteString("</figcaption>")
}

var tags = map[string][2]string{
	"bold":   {"<strong>", "</strong>"},
	"italic": {"<em>", "</em>"},
	"strike": {"<s>", "</s>"},
	"mark":   {"<mark>", "</mark>"},
	"tip":    {`<span class="kiro-tip">`, "</span>"},
}

func (g *Generator) wrap(kind string, children []ast.Inline, w *stickyCountWriter) {
	t := tags[kind]
	w.WriteString(t[0])
	g.inlines(children, w)
	w.WriteString(t[1])
}

func (g *Generator) inlines(ins []ast.Inline, w *stickyCountWriter) {
	for _, in := range ins {
		switch t := in.(type) {
		case *ast.Plain:
			w.WriteString(escape(t.Text))
		case *ast.Bold:
			g.wrap("bold", t.Children, w)
		case *ast.Italic:
			g.wrap("italic", t.Children, w)
		case *ast.Strike:
			g.wrap("strike", t.Children, w)
		case *ast.Mark:
			g.wrap("mark", t.Children, w)
		case *ast.Tip:
			g.wrap("tip", t.Children, w)
		case *ast.Code:
			w.WriteString("<code>" + escape(t.Text) + "</code>")
		case *ast.StyleSpan:
			w.WriteString(`<span class="` + escape(spanClass(t.Name)) + `">`)
			g.inlines(t.Children, w)
			w.WriteString("</span>")
		case *ast.FootnoteRef:
			g.footnoteRef(t, w)
		case *ast.Break:
			w.WriteString("<br>")
		}
	}
}

// spanClass returns the classes of a style span. A child style such as
// "warn:title" carries its parent's class too.
func spanClass(name string) string {
	parts := strings.Split(name, ":")
	classes := make([]string, len(parts))
	for i := range parts {
		classes[i] = "kiro-" + strings.Join(parts[:i+1], "-")
	}
	return strings.Join(classes, " ")
}
