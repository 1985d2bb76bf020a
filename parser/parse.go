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

// Package parser implements a parser for Kiro source. It takes in an io.Reader
// as input and outputs an *ast.Document.
//
// Parsing never fails on malformed input: a construct that is missing its
// closing part is read as text, an unterminated code fence or style block
// runs to the end of the source, and levels that skip ahead of an earlier
// item are clamped to one more than that item's.
//
// The parser recognizes the following line syntax:
//
//      heading    = "#" { "#" } " " text .                  (one to six '#')
//      rule       = "---" { "-" } .
//      list_item  = indent ( "-" | "*" | "+" | digits "." ) " " text |
//                   "-" "-" { "-" } " " text .
//      report     = "-" key { key } " " text .              key = alnum { alnum } "." .
//      quote      = "|" [ " " text ] .
//      toggle     = [ "#" { "#" } ] ">" { ">" } " " text { indent line } .
//      footnote   = "[^" key "]:" text .
//      style      = "<style>" { line } ( "</style>" | "<>" ) .
//      fence      = "```" [ info ] { line } "```" .
//      resource   = "@" kind ":" target [ "(" text ")" | "!" text ] .
//      paragraph  = text { text } .
//
// A backslash before any of the following characters escapes it:
//
//      '\\', '*', '~', '`', '#', '-', '+', '>', '|', '[', ']', '^', '@',
//      '<', '=', '!', '(', ')', ':', '_', '.'
//
package parser // import "akhil.cc/kiro/parser"

import (
	"fmt"
	"io"
	"path"
	"strings"

	"akhil.cc/kiro/ast"
	"github.com/h2non/filetype"
	"go.uber.org/zap"
)

// MustParse is like Parse but panics if the source cannot be read.
func MustParse(src io.Reader) *ast.Document {
	doc, err := Parse(src)
	if err != nil {
		panic("Parse error: " + err.Error())
	}
	return doc
}

// Parse reads the source and returns its corresponding AST structure.
// The only errors returned are errors reading src.
func Parse(src io.Reader) (*ast.Document, error) {
	return New(nil).Parse(src)
}

// Parser parses Kiro documents. It holds no per-document state and may be
// used from several goroutines at once.
type Parser struct {
	log *zap.Logger
}

// New returns a Parser that reports degraded constructs to log at debug
// level. A nil log discards them.
func New(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("parser")}
}

// Parse is like the package-level Parse.
func (p *Parser) Parse(src io.Reader) (*ast.Document, error) {
	b, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}
	return p.ParseString(string(b)), nil
}

// ParseString parses src.
func (p *Parser) ParseString(src string) *ast.Document {
	doc := &ast.Document{
		Styles:    make(map[string]string),
		Footnotes: make(map[string][]ast.Inline),
	}
	doc.Blocks = newParser(p.log, doc, src).run()
	p.log.Debug("Parsed document",
		zap.Int("blocks", len(doc.Blocks)),
		zap.Int("styles", len(doc.Styles)),
		zap.Int("footnotes", len(doc.Footnotes)))
	return doc
}

var resourceKinds = map[string]ast.ResourceKind{
	"img":   ast.Image,
	"image": ast.Image,
	"link":  ast.Link,
	"audio": ast.Audio,
	"video": ast.Video,
}

// level is one open list in the list stack. parent is nil at the root.
type level struct {
	depth  int
	list   *ast.List
	parent *ast.ListItem
}

type openToggle struct {
	t    *ast.Toggle
	body []string
}

// parser holds the state of one parse. Toggle bodies are parsed by child
// parsers that share the document's side tables.
type parser struct {
	log *zap.Logger
	doc *ast.Document
	sc  *Scanner
	out []ast.Block

	para  []Text
	quote []Text

	lists []level
	base  int
	items map[*ast.ListItem]Text

	report *ast.ReportList
	rtext  []Text

	toggles []*openToggle
}

func newParser(log *zap.Logger, doc *ast.Document, src string) *parser {
	return &parser{
		log:   log,
		doc:   doc,
		sc:    NewScanner(src),
		items: make(map[*ast.ListItem]Text),
	}
}

func (p *parser) run() []ast.Block {
	for p.sc.Scan() {
		l := p.sc.Line()
		switch l.Kind {
		case BlankLine:
			p.closePara()
			p.closeQuote()
			if n := len(p.toggles); n > 0 {
				p.toggles[n-1].body = append(p.toggles[n-1].body, "")
			}
		case TextLine:
			p.closeQuote()
			p.closeLists()
			p.closeReport()
			p.closeToggles()
			p.para = append(p.para, l.Text)
		case HeadingLine:
			p.closeAll()
			p.out = append(p.out, &ast.Heading{Level: l.Level, Text: Inline(l.Text)})
		case RuleLine:
			p.closeAll()
			p.out = append(p.out, &ast.Rule{})
		case ListLine:
			p.closePara()
			p.closeQuote()
			p.closeReport()
			p.closeToggles()
			p.listItem(l)
		case ReportLine:
			p.closePara()
			p.closeQuote()
			p.closeLists()
			p.closeToggles()
			p.reportItem(l)
		case QuoteLine:
			p.closePara()
			p.closeLists()
			p.closeReport()
			p.closeToggles()
			p.quote = append(p.quote, l.Text)
		case ToggleLine:
			p.closePara()
			p.closeQuote()
			p.closeLists()
			p.closeReport()
			p.toggle(l)
		case ContinuationLine:
			p.continuation(l)
		case ToggleBodyLine:
			if n := len(p.toggles); n > 0 {
				p.toggles[n-1].body = append(p.toggles[n-1].body, l.Raw)
			} else {
				p.para = append(p.para, l.Text)
			}
		case FootnoteLine:
			p.closeAll()
			p.footnote(l)
		case FenceOpenLine:
			p.closeAll()
			p.code(l)
		case StyleOpenLine:
			p.closeAll()
			p.style(l)
		case ResourceLine:
			p.closeAll()
			p.resource(l)
		default:
			p.log.Debug("Unexpected line", zap.Stringer("kind", l.Kind), zap.Int("line", l.Num))
		}
	}
	p.closeAll()
	return p.out
}

func (p *parser) closeAll() {
	p.closePara()
	p.closeQuote()
	p.closeLists()
	p.closeReport()
	p.closeToggles()
}

// join concatenates lines with a single space.
func join(lines ...Text) Text {
	var t Text
	for i, l := range lines {
		if i > 0 {
			t = append(t, Char{R: ' '})
		}
		t = append(t, l...)
	}
	return t
}

func (p *parser) closePara() {
	if len(p.para) == 0 {
		return
	}
	p.out = append(p.out, &ast.Paragraph{Text: Inline(join(p.para...))})
	p.para = nil
}

func (p *parser) closeQuote() {
	if len(p.quote) == 0 {
		return
	}
	q := &ast.Blockquote{}
	for i, l := range p.quote {
		if i > 0 {
			q.Text = append(q.Text, &ast.Break{})
		}
		q.Text = append(q.Text, Inline(l)...)
	}
	p.out = append(p.out, q)
	p.quote = nil
}

// listItem places a list item using the stack of open lists. A deeper item
// opens a list under the previous item, a shallower one pops back to its
// level, and an item of the other kind (bullet or numbered) at the same
// depth starts a sibling list.
func (p *parser) listItem(l Line) {
	it := &ast.ListItem{}
	p.items[it] = l.Text
	if len(p.lists) == 0 {
		p.base = l.Indent
		lst := &ast.List{Ordered: l.Ordered, Items: []*ast.ListItem{it}}
		p.out = append(p.out, lst)
		p.lists = append(p.lists, level{depth: 0, list: lst})
		return
	}
	d := l.Indent - p.base
	if d < 0 {
		d = 0
	}
	// A list opened by an item that skipped levels covers every depth
	// between its parent's and its own.
	for n := len(p.lists); n > 1 && p.lists[n-1].depth > d && p.lists[n-2].depth >= d; n-- {
		p.lists = p.lists[:n-1]
	}
	top := &p.lists[len(p.lists)-1]
	switch {
	case d > top.depth:
		if d > top.depth+1 {
			p.log.Debug("List item skips a level", zap.Int("line", l.Num), zap.Int("depth", d))
		}
		parent := top.list.Items[len(top.list.Items)-1]
		lst := &ast.List{Ordered: l.Ordered, Items: []*ast.ListItem{it}}
		parent.Sub = append(parent.Sub, lst)
		p.lists = append(p.lists, level{depth: d, list: lst, parent: parent})
	case top.list.Ordered != l.Ordered:
		lst := &ast.List{Ordered: l.Ordered, Items: []*ast.ListItem{it}}
		if top.parent == nil {
			p.out = append(p.out, lst)
		} else {
			top.parent.Sub = append(top.parent.Sub, lst)
		}
		top.list = lst
	default:
		top.list.Items = append(top.list.Items, it)
	}
}

func (p *parser) closeLists() {
	if len(p.lists) == 0 {
		return
	}
	for it, t := range p.items {
		it.Text = Inline(t)
		delete(p.items, it)
	}
	p.lists = nil
}

func (p *parser) reportItem(l Line) {
	if p.report == nil {
		p.report = &ast.ReportList{}
		p.out = append(p.out, p.report)
	}
	lvl := l.Level
	if n := len(p.report.Items); n > 0 {
		if prev := p.report.Items[n-1].Level; lvl > prev+1 {
			p.log.Debug("Report item skips a level", zap.Int("line", l.Num), zap.String("key", l.Key))
			lvl = prev + 1
		}
	}
	p.report.Items = append(p.report.Items, &ast.ReportItem{Key: l.Key, Level: lvl})
	p.rtext = append(p.rtext, l.Text)
}

func (p *parser) closeReport() {
	if p.report == nil {
		return
	}
	for i, it := range p.report.Items {
		it.Text = Inline(p.rtext[i])
	}
	p.report = nil
	p.rtext = nil
}

func (p *parser) continuation(l Line) {
	switch {
	case len(p.lists) > 0:
		top := p.lists[len(p.lists)-1].list
		it := top.Items[len(top.Items)-1]
		p.items[it] = join(p.items[it], l.Text.trimSpace())
	case p.report != nil:
		n := len(p.rtext) - 1
		p.rtext[n] = join(p.rtext[n], l.Text.trimSpace())
	default:
		p.para = append(p.para, l.Text.trimSpace())
	}
}

// toggle opens a toggle at depth l.Level under the most recent open toggle
// one level up. Open toggles at the same depth or deeper are closed first.
// A heading toggle that ends up with no body is written as a heading.
func (p *parser) toggle(l Line) {
	d := l.Level
	if d > len(p.toggles)+1 {
		p.log.Debug("Toggle skips a level", zap.Int("line", l.Num), zap.Int("depth", d))
		d = len(p.toggles) + 1
	}
	for len(p.toggles) >= d {
		p.finishToggle()
	}
	t := &ast.Toggle{Depth: d, Heading: l.Heading, Summary: Inline(l.Text)}
	if d == 1 {
		p.out = append(p.out, t)
	} else {
		parent := p.toggles[d-2]
		p.flushBody(parent)
		parent.t.Body = append(parent.t.Body, t)
	}
	p.toggles = append(p.toggles, &openToggle{t: t})
}

func (p *parser) flushBody(o *openToggle) {
	if len(o.body) == 0 {
		return
	}
	sub := newParser(p.log, p.doc, strings.Join(o.body, "\n"))
	o.t.Body = append(o.t.Body, sub.run()...)
	o.body = nil
}

func (p *parser) finishToggle() {
	n := len(p.toggles) - 1
	p.flushBody(p.toggles[n])
	p.toggles = p.toggles[:n]
}

func (p *parser) closeToggles() {
	for len(p.toggles) > 0 {
		p.finishToggle()
	}
}

func (p *parser) footnote(l Line) {
	if _, ok := p.doc.Footnotes[l.Key]; ok {
		p.log.Debug("Duplicate footnote definition", zap.String("key", l.Key), zap.Int("line", l.Num))
		return
	}
	p.doc.Footnotes[l.Key] = Inline(l.Text)
}

func (p *parser) code(l Line) {
	lang, _, _ := strings.Cut(l.Info, " ")
	var lines []string
	closed := false
	for p.sc.Scan() {
		c := p.sc.Line()
		if c.Kind == FenceCloseLine {
			closed = true
			break
		}
		lines = append(lines, c.Raw)
	}
	if !closed {
		p.log.Debug("Code fence is not terminated", zap.Int("line", l.Num))
		for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
			lines = lines[:len(lines)-1]
		}
	}
	p.out = append(p.out, &ast.CodeBlock{Lang: lang, Raw: strings.Join(lines, "\n")})
}

func (p *parser) style(l Line) {
	var lines []string
	closed := false
	for p.sc.Scan() {
		c := p.sc.Line()
		if c.Kind == StyleCloseLine {
			closed = true
			break
		}
		lines = append(lines, c.Raw)
	}
	if !closed {
		p.log.Debug("Style block is not terminated", zap.Int("line", l.Num))
	}
	parseStyles(strings.Join(lines, "\n"), p.doc.Styles, p.log)
}

func (p *parser) resource(l Line) {
	target, caption := splitResource(l.Text)
	kind, ok := resourceKinds[l.Info]
	if !ok {
		kind = mediaKind(target)
	}
	if target == "" {
		p.log.Debug("Resource has no target", zap.String("kind", l.Info), zap.Int("line", l.Num))
	}
	p.out = append(p.out, &ast.Resource{Kind: kind, Target: target, Caption: Inline(caption)})
}

// splitResource splits directive content into its target and caption. The
// caption is either wrapped in parentheses or follows a '!'.
func splitResource(t Text) (string, Text) {
	t = t.trimSpace()
	if len(t) == 0 || t.at(0, '(') || t.at(0, '!') {
		return "", caption(t)
	}
	j := 0
	for j < len(t) && t[j].R != ' ' && t[j].R != '\t' {
		j++
	}
	return t[:j].String(), caption(t[j:].trimSpace())
}

func caption(t Text) Text {
	switch {
	case t.at(0, '!'):
		return t[1:].trimSpace()
	case t.at(0, '(') && t.at(len(t)-1, ')'):
		return t[1 : len(t)-1].trimSpace()
	}
	return t
}

// mediaKind picks the resource kind of an @media: target from its file
// extension. Anything that is not an image, audio or video is a link.
func mediaKind(target string) ast.ResourceKind {
	u := target
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(u), "."))
	if ext == "" {
		return ast.Link
	}
	switch filetype.GetType(ext).MIME.Type {
	case "image":
		return ast.Image
	case "audio":
		return ast.Audio
	case "video":
		return ast.Video
	}
	return ast.Link
}
