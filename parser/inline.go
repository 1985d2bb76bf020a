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
	"strings"
	"unicode"

	"akhil.cc/kiro/ast"
)

// Inline parses t into a sequence of inline nodes.
//
// Delimiters are matched leftmost first: the first opener found while
// scanning takes the nearest closer of its own kind, and only then is its
// content parsed. An opener without a closer is kept as text.
//
//      bold      = "**" text "**" .
//      italic    = "*" text "*" .
//      strike    = "~~" text "~~" .
//      mark      = "==" text "==" .
//      code      = "`" string "`" .
//      tip       = "[tip]" text ( "<>" | "[/tip]" ) .
//      style     = "[" name "]" text "<>" .
//      footnote  = "[^" key "]" .
func Inline(t Text) []ast.Inline {
	var (
		out []ast.Inline
		buf strings.Builder
	)
	flush := func() {
		if buf.Len() > 0 {
			out = append(out, &ast.Plain{Text: buf.String()})
			buf.Reset()
		}
	}
	for i := 0; i < len(t); {
		if t[i].Lit {
			buf.WriteRune(t[i].R)
			i++
			continue
		}
		n, end := span(t, i)
		if n == nil {
			for _, c := range t[i:end] {
				buf.WriteRune(c.R)
			}
			i = end
			continue
		}
		flush()
		out = append(out, n)
		i = end
	}
	flush()
	return out
}

// span tries to match a span opening at t[i]. It returns the node and the
// position after its closer, or nil and the position after the text that
// should be kept literally.
func span(t Text, i int) (ast.Inline, int) {
	switch t[i].R {
	case '`':
		if j := t.index("`", i+1); j > i+1 {
			return &ast.Code{Text: t[i+1 : j].String()}, j + 1
		}
	case '*':
		if t.at(i+1, '*') {
			if j := closeStars(t, i+2, 2); j >= 0 {
				return &ast.Bold{Children: Inline(t[i+2 : j])}, j + 2
			}
			return nil, i + 2
		}
		if j := closeStars(t, i+1, 1); j >= 0 {
			return &ast.Italic{Children: Inline(t[i+1 : j])}, j + 1
		}
	case '~':
		return pair(t, i, "~~", func(c []ast.Inline) ast.Inline { return &ast.Strike{Children: c} })
	case '=':
		return pair(t, i, "==", func(c []ast.Inline) ast.Inline { return &ast.Mark{Children: c} })
	case '[':
		return bracket(t, i)
	}
	return nil, i + 1
}

// closeStars finds the closer for a run of n stars whose content starts at
// from. Inner runs of the other width are skipped so that bold can sit
// inside italic and the other way around.
func closeStars(t Text, from, n int) int {
	for k := from; k < len(t); {
		if !t.at(k, '*') {
			k++
			continue
		}
		run := 1
		for t.at(k+run, '*') {
			run++
		}
		if k > from {
			switch {
			case n == 2 && run >= 2:
				return k + run - 2
			case n == 1 && run%2 == 1:
				return k + run - 1
			}
		}
		k += run
	}
	return -1
}

func pair(t Text, i int, delim string, mk func([]ast.Inline) ast.Inline) (ast.Inline, int) {
	w := len(delim)
	if !t.hasPrefixAt(i, delim) {
		return nil, i + 1
	}
	if j := t.index(delim, i+w+1); j >= 0 {
		return mk(Inline(t[i+w : j])), j + w
	}
	return nil, i + w
}

func bracket(t Text, i int) (ast.Inline, int) {
	if t.at(i+1, '^') {
		if j := t.index("]", i+2); j > i+2 {
			if key := t[i+2 : j].String(); !strings.ContainsAny(key, " \t[") {
				return &ast.FootnoteRef{Key: key}, j + 1
			}
		}
		return nil, i + 1
	}
	j := t.index("]", i+1)
	if j < 0 || !styleName(t[i+1:j]) {
		return nil, i + 1
	}
	name := t[i+1 : j].String()
	if strings.EqualFold(name, "tip") {
		if k, w := closeTag(t, j+1, "[/tip]"); k >= 0 {
			return &ast.Tip{Children: Inline(t[j+1 : k].trimSpace())}, k + w
		}
		return nil, j + 1
	}
	if k, w := closeTag(t, j+1, ""); k >= 0 {
		return &ast.StyleSpan{Name: name, Children: Inline(t[j+1 : k].trimSpace())}, k + w
	}
	return nil, i + 1
}

// closeTag finds the first "<>" or alt at or after from.
func closeTag(t Text, from int, alt string) (int, int) {
	for k := from; k < len(t); k++ {
		if t.hasPrefixAt(k, "<>") {
			return k, 2
		}
		if alt != "" && t.hasPrefixAt(k, alt) {
			return k, len(alt)
		}
	}
	return -1, 0
}

// styleName reports whether t names a style: up to three segments of
// letters, digits, '-' and '_' separated by ':', as in "warn:title".
func styleName(t Text) bool {
	segs, n := 1, 0
	for _, c := range t {
		switch {
		case c.Lit:
			return false
		case c.R == ':':
			if n == 0 {
				return false
			}
			segs, n = segs+1, 0
		case unicode.IsLetter(c.R) || unicode.IsDigit(c.R) || c.R == '-' || c.R == '_':
			n++
		default:
			return false
		}
	}
	return n > 0 && segs <= 3
}
