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

package html

import (
	"bytes"
	"fmt"

	"akhil.cc/kiro/ast"
	"go.uber.org/zap"
)

// footnotes numbers footnote references in the order they are first seen.
// It belongs to a single run of a Generator.
type footnotes struct {
	defs  map[string][]ast.Inline
	nums  map[string]int
	order []string
}

func newFootnotes(defs map[string][]ast.Inline) *footnotes {
	return &footnotes{defs: defs, nums: make(map[string]int)}
}

// ref returns the number for key. first is set on the key's first sighting,
// and defined reports whether the key has a definition. Keys without a
// definition are numbered too.
func (f *footnotes) ref(key string) (n int, first, defined bool) {
	_, defined = f.defs[key]
	n, seen := f.nums[key]
	if !seen {
		f.order = append(f.order, key)
		n = len(f.order)
		f.nums[key] = n
	}
	return n, !seen, defined
}

func (g *Generator) footnoteRef(r *ast.FootnoteRef, w *stickyCountWriter) {
	n, first, defined := g.fn.ref(r.Key)
	id := ""
	if first {
		id = fmt.Sprintf(` id="fnref-%d"`, n)
	}
	if !defined {
		if first {
			g.log.Info("Dangling footnote reference", zap.String("key", r.Key))
		}
		fmt.Fprintf(w, `<sup class="kiro-footnote-ref kiro-footnote-dangling"%s>%d</sup>`, id, n)
		return
	}
	if g.inLink {
		fmt.Fprintf(w, `<sup class="kiro-footnote-ref"%s>%d</sup>`, id, n)
		return
	}
	fmt.Fprintf(w, `<sup class="kiro-footnote-ref"%s><a href="#fn-%d">%d</a></sup>`, id, n, n)
}

// footnotes writes the list of referenced footnotes that have a definition.
// References inside a definition are numbered as the list is written and
// extend it.
func (g *Generator) footnotes(w *stickyCountWriter) {
	var buf bytes.Buffer
	bw := &stickyCountWriter{0, nil, &buf}
	pos := 0
	for i := 0; i < len(g.fn.order); i++ {
		key := g.fn.order[i]
		def, ok := g.fn.defs[key]
		if !ok {
			continue
		}
		pos++
		n := i + 1
		if n != pos {
			fmt.Fprintf(bw, `<li id="fn-%d" value="%d">`, n, n)
		} else {
			fmt.Fprintf(bw, `<li id="fn-%d">`, n)
		}
		g.inlines(def, bw)
		fmt.Fprintf(bw, ` <a href="#fnref-%d" class="kiro-footnote-backref">↩</a></li>`, n)
	}
	if pos == 0 {
		return
	}
	w.WriteString(`<section class="kiro-footnotes"><ol>`)
	w.Write(buf.Bytes())
	w.WriteString("</ol></section>")
}
