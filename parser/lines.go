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

package parser

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Char is one character of line content. Lit is set when the character was
// escaped with a backslash, in which case it is never treated as markup.
type Char struct {
	R   rune
	Lit bool
}

// Text is line content with escapes already resolved.
type Text []Char

func (t Text) String() string {
	var sb strings.Builder
	for _, c := range t {
		sb.WriteRune(c.R)
	}
	return sb.String()
}

// at reports whether t[i] is the unescaped rune r.
func (t Text) at(i int, r rune) bool {
	return i >= 0 && i < len(t) && t[i].R == r && !t[i].Lit
}

func (t Text) hasPrefixAt(i int, s string) bool {
	for _, r := range s {
		if !t.at(i, r) {
			return false
		}
		i++
	}
	return true
}

// index returns the position of the first unescaped occurrence of s at or
// after from, or -1.
func (t Text) index(s string, from int) int {
	for i := from; i < len(t); i++ {
		if t.hasPrefixAt(i, s) {
			return i
		}
	}
	return -1
}

func (t Text) trimSpace() Text {
	i, j := 0, len(t)
	for i < j && unicode.IsSpace(t[i].R) {
		i++
	}
	for j > i && unicode.IsSpace(t[j-1].R) {
		j--
	}
	return t[i:j]
}

func escapable(r rune) bool {
	switch r {
	case '\\', '*', '~', '`', '#', '-', '+', '>', '|', '[', ']', '^', '@',
		'<', '=', '!', '(', ')', ':', '_', '.':
		return true
	}
	return false
}

func unescape(s string) Text {
	rs := []rune(s)
	t := make(Text, 0, len(rs))
	for i := 0; i < len(rs); i++ {
		if rs[i] == '\\' && i+1 < len(rs) && escapable(rs[i+1]) {
			t = append(t, Char{R: rs[i+1], Lit: true})
			i++
			continue
		}
		t = append(t, Char{R: rs[i]})
	}
	return t
}

// Kind identifies the kind of a classified line.
type Kind int

const (
	BlankLine        Kind = iota // BlankLine separates blocks
	TextLine                     // TextLine is paragraph text
	HeadingLine                  // HeadingLine starts with one to six '#'
	RuleLine                     // RuleLine is three or more '-'
	ListLine                     // ListLine is a bullet or numbered list item
	ReportLine                   // ReportLine is a report-list item such as "-1.A."
	QuoteLine                    // QuoteLine starts with '|'
	ToggleLine                   // ToggleLine starts with one or more '>', optionally after '#'
	FootnoteLine                 // FootnoteLine defines a footnote: "[^key]: text"
	StyleOpenLine                // StyleOpenLine is "<style>"
	StyleLine                    // StyleLine is inside a style block
	StyleCloseLine               // StyleCloseLine is "</style>" or "<>"
	FenceOpenLine                // FenceOpenLine opens a code fence
	CodeLine                     // CodeLine is inside a code fence
	FenceCloseLine               // FenceCloseLine closes a code fence
	ResourceLine                 // ResourceLine is an "@kind: target" directive
	ContinuationLine             // ContinuationLine is indented text after a list item
	ToggleBodyLine               // ToggleBodyLine is indented content after a toggle
)

var kindNames = [...]string{
	BlankLine:        "Blank",
	TextLine:         "Text",
	HeadingLine:      "Heading",
	RuleLine:         "Rule",
	ListLine:         "List",
	ReportLine:       "Report",
	QuoteLine:        "Quote",
	ToggleLine:       "Toggle",
	FootnoteLine:     "Footnote",
	StyleOpenLine:    "StyleOpen",
	StyleLine:        "Style",
	StyleCloseLine:   "StyleClose",
	FenceOpenLine:    "FenceOpen",
	CodeLine:         "Code",
	FenceCloseLine:   "FenceClose",
	ResourceLine:     "Resource",
	ContinuationLine: "Continuation",
	ToggleBodyLine:   "ToggleBody",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Line is a classified physical line.
type Line struct {
	Num     int    // 1-based line number
	Raw     string // the line as written; dedented by one unit for ToggleBodyLine
	Indent  int    // indentation in units of two spaces or one tab
	Kind    Kind
	Text    Text   // content after the line's marker
	Level   int    // heading level, toggle depth or report-list level
	Heading int    // heading level of a heading toggle
	Marker  string // list marker
	Ordered bool   // numbered list item
	Key     string // report-list key or footnote key
	Info    string // fence info string or resource kind
}

type state int

const (
	idle state = iota
	inListItem
	inToggleBody
	inCodeFence
	inStyle
)

// Scanner classifies the lines of a Kiro source one at a time.
// Classification only looks at the current line and the scanner's
// continuation state, which follows list items, toggle bodies, code fences
// and style blocks.
type Scanner struct {
	lines []string
	pos   int
	line  Line
	st    state
	fence string
}

// NewScanner returns a scanner over src. The source is normalized to NFC and
// CRLF line endings are accepted.
func NewScanner(src string) *Scanner {
	src = norm.NFC.String(src)
	src = strings.ReplaceAll(src, "\r\n", "\n")
	return &Scanner{lines: strings.Split(src, "\n")}
}

// Scan advances to the next line, which is then available through Line.
// It returns false at the end of the input.
func (s *Scanner) Scan() bool {
	if s.pos >= len(s.lines) {
		return false
	}
	raw := s.lines[s.pos]
	s.pos++
	s.line = s.classify(raw)
	s.line.Num = s.pos
	return true
}

// Line returns the line classified by the last call to Scan.
func (s *Scanner) Line() Line {
	return s.line
}

// Reset rewinds the scanner to the first line.
func (s *Scanner) Reset() {
	s.pos = 0
	s.st = idle
	s.fence = ""
	s.line = Line{}
}

func (s *Scanner) classify(raw string) Line {
	l := Line{Raw: raw}
	switch s.st {
	case inCodeFence:
		trimmed := strings.TrimSpace(raw)
		if strings.HasPrefix(trimmed, s.fence) && strings.Trim(trimmed, "`") == "" {
			s.st = idle
			l.Kind = FenceCloseLine
		} else {
			l.Kind = CodeLine
		}
		return l
	case inStyle:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "</style>", "<>":
			s.st = idle
			l.Kind = StyleCloseLine
		default:
			l.Kind = StyleLine
		}
		return l
	}

	indent, rest := splitIndent(raw)
	l.Indent = indent
	if strings.TrimSpace(rest) == "" {
		l.Kind = BlankLine
		if s.st != inToggleBody {
			s.st = idle
		}
		return l
	}
	if s.st == inToggleBody && indent > 0 {
		l.Kind = ToggleBodyLine
		l.Raw = dedent(raw)
		l.Text = unescape(strings.TrimSpace(rest))
		return l
	}
	t := unescape(strings.TrimRightFunc(rest, unicode.IsSpace))
	if s.st == inListItem && indent > 0 && !isItem(t) {
		l.Kind = ContinuationLine
		l.Text = t
		return l
	}
	s.st = idle
	s.block(&l, t)
	return l
}

func (s *Scanner) block(l *Line, t Text) {
	if t.hasPrefixAt(0, "```") {
		n := 0
		for t.at(n, '`') {
			n++
		}
		s.fence = strings.Repeat("`", n)
		s.st = inCodeFence
		l.Kind = FenceOpenLine
		l.Info = strings.TrimSpace(t[n:].String())
		return
	}
	if t.at(0, '<') && strings.EqualFold(t.String(), "<style>") {
		s.st = inStyle
		l.Kind = StyleOpenLine
		return
	}
	if n := count(t, '#'); n > 0 && n <= 6 {
		i := n
		for i < len(t) && !t[i].Lit && (t[i].R == ' ' || t[i].R == '\t') {
			i++
		}
		if m := count(t[i:], '>'); m > 0 && (i+m == len(t) || t[i+m].R == ' ') {
			s.st = inToggleBody
			l.Kind = ToggleLine
			l.Level = m
			l.Heading = n
			l.Text = t[i+m:].trimSpace()
			return
		}
	}
	if n := count(t, '#'); n > 0 && (n == len(t) || t[n].R == ' ' || t[n].R == '\t') {
		if n > 6 {
			l.Kind = TextLine
			l.Text = t
			return
		}
		l.Kind = HeadingLine
		l.Level = n
		l.Text = t[n:].trimSpace()
		return
	}
	if n := count(t, '-'); n >= 3 && n == len(t) {
		l.Kind = RuleLine
		return
	}
	if key, segs, rest, ok := reportItem(t); ok {
		s.st = inListItem
		l.Kind = ReportLine
		l.Key = key
		l.Level = segs
		l.Text = rest
		return
	}
	if marker, depth, ordered, rest, ok := listItem(t); ok {
		s.st = inListItem
		l.Kind = ListLine
		l.Marker = marker
		l.Ordered = ordered
		l.Indent += depth
		l.Text = rest
		return
	}
	if t.at(0, '|') && (len(t) == 1 || t[1].R == ' ') {
		l.Kind = QuoteLine
		l.Text = t[1:].trimSpace()
		return
	}
	if n := count(t, '>'); n > 0 && (n == len(t) || t[n].R == ' ') {
		s.st = inToggleBody
		l.Kind = ToggleLine
		l.Level = n
		l.Text = t[n:].trimSpace()
		return
	}
	if t.hasPrefixAt(0, "[^") {
		if j := t.index("]", 2); j > 2 && t.at(j+1, ':') {
			if key := t[2:j].String(); !strings.ContainsAny(key, " \t") {
				l.Kind = FootnoteLine
				l.Key = key
				l.Text = t[j+2:].trimSpace()
				return
			}
		}
	}
	if t.at(0, '@') {
		n := 1
		for n < len(t) && !t[n].Lit && unicode.IsLetter(t[n].R) {
			n++
		}
		if kind := strings.ToLower(t[1:n].String()); t.at(n, ':') && knownResource(kind) {
			l.Kind = ResourceLine
			l.Info = kind
			l.Text = t[n+1:].trimSpace()
			return
		}
	}
	l.Kind = TextLine
	l.Text = t
}

// count returns the length of the run of unescaped r at the start of t.
func count(t Text, r rune) int {
	n := 0
	for t.at(n, r) {
		n++
	}
	return n
}

func isItem(t Text) bool {
	if _, _, _, ok := reportItem(t); ok {
		return true
	}
	_, _, _, _, ok := listItem(t)
	return ok
}

// reportItem matches "-KEY text" where KEY is one or more alphanumeric
// segments, each followed by a dot.
func reportItem(t Text) (key string, segs int, rest Text, ok bool) {
	if !t.at(0, '-') {
		return
	}
	i := 1
	for {
		j := i
		for j < len(t) && !t[j].Lit && isAlnum(t[j].R) {
			j++
		}
		if j == i || !t.at(j, '.') {
			break
		}
		segs++
		i = j + 1
	}
	if segs == 0 || (i < len(t) && t[i].R != ' ') {
		return "", 0, nil, false
	}
	return t[1:i].String(), segs, t[i:].trimSpace(), true
}

func isAlnum(r rune) bool {
	return r < 0x80 && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

// listItem matches bullet items ("- ", "* ", "+ "), dash-depth items
// ("-- ", "--- ") and numbered items ("1. ").
func listItem(t Text) (marker string, depth int, ordered bool, rest Text, ok bool) {
	if len(t) < 2 {
		return
	}
	if n := count(t, '-'); n >= 2 && t.at(n, ' ') {
		return t[:n].String(), n - 1, false, t[n:].trimSpace(), true
	}
	if (t.at(0, '-') || t.at(0, '*') || t.at(0, '+')) && t[1].R == ' ' {
		return string(t[0].R), 0, false, t[1:].trimSpace(), true
	}
	n := 0
	for n < len(t) && n < 9 && !t[n].Lit && t[n].R >= '0' && t[n].R <= '9' {
		n++
	}
	if n > 0 && t.at(n, '.') && t.at(n+1, ' ') {
		return t[:n+1].String(), 0, true, t[n+1:].trimSpace(), true
	}
	return
}

func knownResource(kind string) bool {
	_, ok := resourceKinds[kind]
	return ok || kind == "media"
}

func splitIndent(raw string) (units int, rest string) {
	spaces := 0
	for i, r := range raw {
		switch r {
		case ' ':
			spaces++
		case '\t':
			units++
		default:
			return units + spaces/2, raw[i:]
		}
	}
	return units + spaces/2, ""
}

// dedent removes one indentation unit from raw.
func dedent(raw string) string {
	if strings.HasPrefix(raw, "\t") {
		return raw[1:]
	}
	for i := 0; i < 2 && strings.HasPrefix(raw, " "); i++ {
		raw = raw[1:]
	}
	return raw
}
