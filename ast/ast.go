// Package ast declares the types used to represent a parsed Kiro document.
package ast

import (
	"errors"
	"strings"
)

//go:generate sumgen Node = *Document | Block | *ListItem | *ReportItem | Inline
type Node interface {
	node()
}

//go:generate sumgen Block = *Heading | *Rule | *List | *ReportList | *Blockquote | *Toggle | *CodeBlock | *Resource | *Paragraph
type Block interface {
	Node
	block()
}

//go:generate sumgen Inline = *Plain | *Bold | *Italic | *Strike | *Mark | *Code | *Tip | *StyleSpan | *FootnoteRef | *Break
type Inline interface {
	Node
	inline()
}

// Document is the root of the tree. Styles maps a CSS selector to its
// declarations and Footnotes maps a footnote key to its definition. Both are
// filled for the whole document, wherever their sources appear.
type Document struct {
	Blocks    []Block
	Styles    map[string]string
	Footnotes map[string][]Inline
}

type Heading struct {
	Level int
	Text  []Inline
}

type Rule struct{}

// List is a bullet or numbered list. Nested lists hang off the item that
// precedes them.
type List struct {
	Ordered bool
	Items   []*ListItem
}

type ListItem struct {
	Text []Inline
	Sub  []*List
}

// ReportList is a flat list of key-labeled items such as "1." and "1.A.".
type ReportList struct {
	Items []*ReportItem
}

// ReportItem keeps its key verbatim. Level is the number of key segments.
type ReportItem struct {
	Key   string
	Level int
	Text  []Inline
}

type Blockquote struct {
	Text []Inline
}

// Toggle is a collapsible block. Depth is the number of '>' in its header.
// Heading is the level of a heading toggle such as "## > Title", or 0.
type Toggle struct {
	Depth   int
	Heading int
	Summary []Inline
	Body    []Block
}

// CodeBlock holds fenced code. Raw is never parsed for inline syntax.
type CodeBlock struct {
	Lang string
	Raw  string
}

type ResourceKind int

const (
	Image ResourceKind = iota
	Link
	Audio
	Video
)

var kindNames = [...]string{
	Image: "image",
	Link:  "link",
	Audio: "audio",
	Video: "video",
}

func (k ResourceKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Resource is an @kind: directive. An empty Target is kept as is.
type Resource struct {
	Kind    ResourceKind
	Target  string
	Caption []Inline
}

type Paragraph struct {
	Text []Inline
}

type Plain struct {
	Text string
}

type Bold struct {
	Children []Inline
}

type Italic struct {
	Children []Inline
}

type Strike struct {
	Children []Inline
}

type Mark struct {
	Children []Inline
}

// Code is an inline code span.
type Code struct {
	Text string
}

type Tip struct {
	Children []Inline
}

// StyleSpan applies the user-defined style Name to its children. Name may
// select a child style, as in "warn:title".
type StyleSpan struct {
	Name     string
	Children []Inline
}

type FootnoteRef struct {
	Key string
}

// Break is a forced line break, used between the lines of a blockquote.
type Break struct{}

func (*Document) node()    {}
func (*Heading) node()     {}
func (*Rule) node()        {}
func (*List) node()        {}
func (*ListItem) node()    {}
func (*ReportList) node()  {}
func (*ReportItem) node()  {}
func (*Blockquote) node()  {}
func (*Toggle) node()      {}
func (*CodeBlock) node()   {}
func (*Resource) node()    {}
func (*Paragraph) node()   {}
func (*Plain) node()       {}
func (*Bold) node()        {}
func (*Italic) node()      {}
func (*Strike) node()      {}
func (*Mark) node()        {}
func (*Code) node()        {}
func (*Tip) node()         {}
func (*StyleSpan) node()   {}
func (*FootnoteRef) node() {}
func (*Break) node()       {}

func (*Heading) block()    {}
func (*Rule) block()       {}
func (*List) block()       {}
func (*ReportList) block() {}
func (*Blockquote) block() {}
func (*Toggle) block()     {}
func (*CodeBlock) block()  {}
func (*Resource) block()   {}
func (*Paragraph) block()  {}

func (*Plain) inline()       {}
func (*Bold) inline()        {}
func (*Italic) inline()      {}
func (*Strike) inline()      {}
func (*Mark) inline()        {}
func (*Code) inline()        {}
func (*Tip) inline()         {}
func (*StyleSpan) inline()   {}
func (*FootnoteRef) inline() {}
func (*Break) inline()       {}

// SkipChildren may be returned by a Walker to skip the children of the
// node it was called with.
var SkipChildren = errors.New("skip children")

type Walker func(Node) error

// Walk traverses the tree rooted at n in document order, calling f for each
// node before its children. Footnote definitions are not visited.
func Walk(n Node, f Walker) error {
	if n == nil {
		return nil
	}
	if err := f(n); err != nil {
		if err == SkipChildren {
			return nil
		}
		return err
	}
	switch t := n.(type) {
	case *Document:
		for _, b := range t.Blocks {
			if err := Walk(b, f); err != nil {
				return err
			}
		}
	case *Heading:
		return walkInlines(t.Text, f)
	case *List:
		for _, it := range t.Items {
			if err := Walk(it, f); err != nil {
				return err
			}
		}
	case *ListItem:
		if err := walkInlines(t.Text, f); err != nil {
			return err
		}
		for _, l := range t.Sub {
			if err := Walk(l, f); err != nil {
				return err
			}
		}
	case *ReportList:
		for _, it := range t.Items {
			if err := Walk(it, f); err != nil {
				return err
			}
		}
	case *ReportItem:
		return walkInlines(t.Text, f)
	case *Blockquote:
		return walkInlines(t.Text, f)
	case *Toggle:
		if err := walkInlines(t.Summary, f); err != nil {
			return err
		}
		for _, b := range t.Body {
			if err := Walk(b, f); err != nil {
				return err
			}
		}
	case *Resource:
		return walkInlines(t.Caption, f)
	case *Paragraph:
		return walkInlines(t.Text, f)
	case *Bold:
		return walkInlines(t.Children, f)
	case *Italic:
		return walkInlines(t.Children, f)
	case *Strike:
		return walkInlines(t.Children, f)
	case *Mark:
		return walkInlines(t.Children, f)
	case *Tip:
		return walkInlines(t.Children, f)
	case *StyleSpan:
		return walkInlines(t.Children, f)
	}
	return nil
}

func walkInlines(ins []Inline, f Walker) error {
	for _, in := range ins {
		if err := Walk(in, f); err != nil {
			return err
		}
	}
	return nil
}

// Text returns the text content of ins with all markup removed.
// Footnote references contribute nothing.
func Text(ins []Inline) string {
	var sb strings.Builder
	for _, in := range ins {
		Walk(in, func(n Node) error {
			switch t := n.(type) {
			case *Plain:
				sb.WriteString(t.Text)
			case *Code:
				sb.WriteString(t.Text)
			case *Break:
				sb.WriteByte(' ')
			}
			return nil
		})
	}
	return sb.String()
}
