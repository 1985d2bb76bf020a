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

// Tests for html.go
package html_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"akhil.cc/kiro/gen"
	"akhil.cc/kiro/gen/html"
	"akhil.cc/kiro/parser"
	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap/zaptest"
)

type smallcase struct {
	in   string
	want string
}

func render(t *testing.T, src string, setup func(g *html.Generator)) string {
	t.Helper()
	doc := parser.MustParse(strings.NewReader(src))
	g := html.Gen(doc)
	g.Log = zaptest.NewLogger(t)
	if setup != nil {
		setup(g)
	}
	out, err := g.Output()
	if err != nil {
		t.Fatalf("in %q: %v", src, err)
	}
	return string(out)
}

func runCases(t *testing.T, cases []smallcase, setup func(g *html.Generator)) {
	t.Helper()
	for i, test := range cases {
		if got := render(t, test.in, setup); got != test.want {
			t.Errorf("case %d, in %q,\nwant %s,\ngot  %s", i, test.in, test.want, got)
		}
	}
}

var blockSmall = []smallcase{
	{"# Hi", "<h1>Hi</h1>"},
	{"###### Six", "<h6>Six</h6>"},
	{"---", "<hr>"},
	{"one\ntwo", "<p>one two</p>"},
	{"- a\n  - b\n- c", "<ul><li>a<ul><li>b</li></ul></li><li>c</li></ul>"},
	{"- a\n    - b\n  - c", "<ul><li>a<ul><li>b</li><li>c</li></ul></li></ul>"},
	{"1. a\n2. b", "<ol><li>a</li><li>b</li></ol>"},
	{"-1.A. Alone", `<ol class="kiro-report-list">` +
		`<li class="kiro-report-item kiro-level-2"><span class="kiro-report-key">1.A.</span> Alone</li></ol>`},
	{"-1. One\n-1.A. Sub", `<ol class="kiro-report-list">` +
		`<li class="kiro-report-item kiro-level-1"><span class="kiro-report-key">1.</span> One</li>` +
		`<li class="kiro-report-item kiro-level-2"><span class="kiro-report-key">1.A.</span> Sub</li></ol>`},
	{"| a\n| b", "<blockquote>a<br>b</blockquote>"},
	{"> S\n  body", `<details class="kiro-toggle"><summary>S</summary><div><p>body</p></div></details>`},
	{"## > Lone", "<h2>Lone</h2>"},
	{"## > Open\n  body", `<details class="kiro-toggle"><summary>Open</summary><div><p>body</p></div></details>`},
	{"# > Outer\n## >> Inner", `<details class="kiro-toggle"><summary>Outer</summary><div><h2>Inner</h2></div></details>`},
	{"```go\nx < y\n```", `<pre><code class="language-go">x &lt; y</code></pre>`},
	{"```\nplain\n```", `<pre><code>plain</code></pre>`},
}

var inlineSmall = []smallcase{
	{"a **b** *c* ~~d~~ ==e== `<f>`", "<p>a <strong>b</strong> <em>c</em> <s>d</s> <mark>e</mark> <code>&lt;f&gt;</code></p>"},
	{`\*not italic\*`, "<p>*not italic*</p>"},
	{"`**raw**`", "<p><code>**raw**</code></p>"},
	{"[tip] careful <>", `<p><span class="kiro-tip">careful</span></p>`},
	{"[hot] warm <>", `<p><span class="kiro-hot">warm</span></p>`},
	{`Tom & "Jerry" <3`, "<p>Tom &amp; &quot;Jerry&quot; &lt;3</p>"},
}

var resourceSmall = []smallcase{
	{`@img: a.png (A "cat")`, `<figure class="kiro-image"><img src="a.png" alt="A &quot;cat&quot;"><figcaption>A &quot;cat&quot;</figcaption></figure>`},
	{"@img: a.png", `<figure class="kiro-image"><img src="a.png" alt=""></figure>`},
	{"@link: https://x.org", `<p><a href="https://x.org" class="kiro-link">https://x.org</a></p>`},
	{"@link: https://x.org (home)", `<p><a href="https://x.org" class="kiro-link">home</a></p>`},
	{"@link:", `<p><a href="" class="kiro-link"></a></p>`},
	{"@video: v.mp4", `<figure class="kiro-video"><video controls src="v.mp4"></video></figure>`},
	{"@audio: a.ogg ! Theme", `<figure class="kiro-audio"><audio controls src="a.ogg"></audio><figcaption>Theme</figcaption></figure>`},
	{"@link: http://x (cap[^n])\n\n[^n]: N",
		`<p><a href="http://x" class="kiro-link">cap<sup class="kiro-footnote-ref" id="fnref-1">1</sup></a></p>` +
			`<section class="kiro-footnotes"><ol>` +
			`<li id="fn-1">N <a href="#fnref-1" class="kiro-footnote-backref">↩</a></li>` +
			`</ol></section>`},
}

var footnoteSmall = []smallcase{
	{"A[^y] B[^x] C[^y]\n\n[^x]: X\n[^y]: Y",
		`<p>A<sup class="kiro-footnote-ref" id="fnref-1"><a href="#fn-1">1</a></sup>` +
			` B<sup class="kiro-footnote-ref" id="fnref-2"><a href="#fn-2">2</a></sup>` +
			` C<sup class="kiro-footnote-ref"><a href="#fn-1">1</a></sup></p>` +
			`<section class="kiro-footnotes"><ol>` +
			`<li id="fn-1">Y <a href="#fnref-1" class="kiro-footnote-backref">↩</a></li>` +
			`<li id="fn-2">X <a href="#fnref-2" class="kiro-footnote-backref">↩</a></li>` +
			`</ol></section>`},
	{"See[^gone].", `<p>See<sup class="kiro-footnote-ref kiro-footnote-dangling" id="fnref-1">1</sup>.</p>`},
	{"Hi\n\n[^u]: unused", "<p>Hi</p>"},
	{"[^a]: A[^b]\n[^b]: B\nx[^a]",
		`<p>x<sup class="kiro-footnote-ref" id="fnref-1"><a href="#fn-1">1</a></sup></p>` +
			`<section class="kiro-footnotes"><ol>` +
			`<li id="fn-1">A<sup class="kiro-footnote-ref" id="fnref-2"><a href="#fn-2">2</a></sup> <a href="#fnref-1" class="kiro-footnote-backref">↩</a></li>` +
			`<li id="fn-2">B <a href="#fnref-2" class="kiro-footnote-backref">↩</a></li>` +
			`</ol></section>`},
	{"a[^gone] b[^x]\n\n[^x]: X",
		`<p>a<sup class="kiro-footnote-ref kiro-footnote-dangling" id="fnref-1">1</sup>` +
			` b<sup class="kiro-footnote-ref" id="fnref-2"><a href="#fn-2">2</a></sup></p>` +
			`<section class="kiro-footnotes"><ol>` +
			`<li id="fn-2" value="2">X <a href="#fnref-2" class="kiro-footnote-backref">↩</a></li>` +
			`</ol></section>`},
}

func TestBlocks(t *testing.T)    { runCases(t, blockSmall, nil) }
func TestInlines(t *testing.T)   { runCases(t, inlineSmall, nil) }
func TestResources(t *testing.T) { runCases(t, resourceSmall, nil) }
func TestFootnotes(t *testing.T) { runCases(t, footnoteSmall, nil) }

const styled = "<style>\nwarn = [#f00]\n</style>\n[warn] hot <>"

func TestStyleEmbed(t *testing.T) {
	want := "<style>\n.kiro-warn { color: #f00 }\n</style>" + `<p><span class="kiro-warn">hot</span></p>`
	if got := render(t, styled, nil); got != want {
		t.Errorf("want %s,\ngot  %s", want, got)
	}
}

func TestChildStyle(t *testing.T) {
	src := "<style>\nwarn = [$bg-red] [+bell]\n:title = [#f00]\n</style>\n[warn:title] hi <>"
	want := "<style>\n.kiro-warn-title { color: #f00 }\n</style>" +
		`<p><span class="kiro-warn kiro-warn-title">hi</span></p>`
	if got := render(t, src, nil); got != want {
		t.Errorf("want %s,\ngot  %s", want, got)
	}
}

func TestStyleEndTagInRule(t *testing.T) {
	src := "<style>\n.a { content: \"</style><b>x</b>\" }\n</style>\nhi"
	want := "<style>\n.a { content: \"<\\/style><b>x<\\/b>\" }\n</style><p>hi</p>"
	if got := render(t, src, nil); got != want {
		t.Errorf("want %s,\ngot  %s", want, got)
	}
	for _, src := range []string{
		src,
		"<style>\nx = color: red</style><script>alert(1)</script>\n</style>\nhi",
	} {
		out := render(t, src, nil)
		dom, err := goquery.NewDocumentFromReader(strings.NewReader(out))
		if err != nil {
			t.Fatal(err)
		}
		if n := dom.Find("style").Length(); n != 1 {
			t.Errorf("in %q: got %d style elements, want 1", src, n)
		}
		if n := dom.Find("b, script").Length(); n != 0 {
			t.Errorf("in %q: rule contents escaped the style element:\n%s", src, out)
		}
		if got := dom.Find("body").Text(); got != "hi" {
			t.Errorf("in %q: body text %q, want %q", src, got, "hi")
		}
	}
}

func TestStyleExtract(t *testing.T) {
	doc := parser.MustParse(strings.NewReader(styled))
	g := html.Gen(doc)
	g.Styles = html.StyleExtract
	out, err := g.Output()
	if err != nil {
		t.Fatal(err)
	}
	if want := `<p><span class="kiro-warn">hot</span></p>`; string(out) != want {
		t.Errorf("want %s,\ngot  %s", want, out)
	}
	if want := ".kiro-warn { color: #f00 }"; g.Stylesheet() != want {
		t.Errorf("stylesheet: want %q, got %q", want, g.Stylesheet())
	}
}

func TestStylesheetOrder(t *testing.T) {
	src := "<style>\nz = [#000]\n.a { margin: 0 }\n</style>\n<style>\n!global = font-size: 12px\n</style>"
	doc := parser.MustParse(strings.NewReader(src))
	want := ".a { margin: 0 }\n.kiro-z { color: #000 }\n:root { font-size: 12px }"
	if got := html.Gen(doc).Stylesheet(); got != want {
		t.Errorf("want %q,\ngot  %q", want, got)
	}
}

func TestHighlighter(t *testing.T) {
	ok := gen.HighlighterFunc(func(lang, code string) (string, error) {
		return "<b>" + code + "</b>", nil
	})
	fail := gen.HighlighterFunc(func(lang, code string) (string, error) {
		return "", gen.ErrUnknownLanguage
	})
	panicky := gen.HighlighterFunc(func(lang, code string) (string, error) {
		panic("highlighter bug")
	})
	src := "```go\nx < y\n```"
	for _, test := range []struct {
		name string
		h    gen.Highlighter
		want string
	}{
		{"ok", ok, `<pre><code class="language-go"><b>x < y</b></code></pre>`},
		{"error", fail, `<pre><code>x &lt; y</code></pre>`},
		{"panic", panicky, `<pre><code>x &lt; y</code></pre>`},
	} {
		got := render(t, src, func(g *html.Generator) { g.Highlighter = test.h })
		if got != test.want {
			t.Errorf("%s: want %s,\ngot  %s", test.name, test.want, got)
		}
	}
}

func TestHeadingOptions(t *testing.T) {
	runCases(t, []smallcase{
		{"## Deep", "<h6>Deep</h6>"},
		{"# Top", "<h6>Top</h6>"},
		{"## > Lone", "<h6>Lone</h6>"},
	}, func(g *html.Generator) { g.HeadingOffset = 5 })
	runCases(t, []smallcase{
		{"# Top", "<h2>Top</h2>"},
	}, func(g *html.Generator) { g.HeadingOffset = 1 })
	runCases(t, []smallcase{
		{"# Hello World\n# Hello World\n## *Second* part",
			`<h1 id="hello-world">Hello World</h1><h1 id="hello-world-2">Hello World</h1><h2 id="second-part"><em>Second</em> part</h2>`},
	}, func(g *html.Generator) { g.HeadingIDs = true })
}

func TestStandalone(t *testing.T) {
	got := render(t, "text\n# T & U\nbody", func(g *html.Generator) { g.Standalone = true })
	want := `<!DOCTYPE html><html><head><meta charset="utf-8"><title>T &amp; U</title></head><body>` +
		`<p>text</p><h1>T &amp; U</h1><p>body</p></body></html>`
	if got != want {
		t.Errorf("want %s,\ngot  %s", want, got)
	}
}

func TestStandaloneStyles(t *testing.T) {
	got := render(t, styled, func(g *html.Generator) { g.Standalone = true })
	want := `<!DOCTYPE html><html><head><meta charset="utf-8">` +
		"<style>\n.kiro-warn { color: #f00 }\n</style></head><body>" +
		`<p><span class="kiro-warn">hot</span></p></body></html>`
	if got != want {
		t.Errorf("want %s,\ngot  %s", want, got)
	}
}

func TestCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	doc := parser.MustParse(strings.NewReader("# a\nb"))
	_, err := html.GenContext(ctx, doc).Output()
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want %v", err, context.Canceled)
	}
}

func TestOutputTwice(t *testing.T) {
	g := html.Gen(parser.MustParse(strings.NewReader("x")))
	if _, err := g.Output(); err != nil {
		t.Fatal(err)
	}
	if _, err := g.Output(); err == nil {
		t.Error("expected an error when Stdout is already set")
	}
}

func TestDocumentStructure(t *testing.T) {
	src := `# Guide
> Details
  - one
  - two
  >> Deeper
-1. Scope
-1.A. Goals
See[^n] and [tip] this <>.

[^n]: The note.`
	out := render(t, src, nil)
	dom, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	checks := []struct {
		sel  string
		n    int
		text string
	}{
		{"h1", 1, "Guide"},
		{"details.kiro-toggle > summary", 2, "DetailsDeeper"},
		{"details.kiro-toggle > div > ul > li", 2, "onetwo"},
		{"ol.kiro-report-list > li.kiro-level-2 > span.kiro-report-key", 1, "1.A."},
		{"span.kiro-tip", 1, "this"},
		{"sup.kiro-footnote-ref > a[href='#fn-1']", 1, "1"},
		{"section.kiro-footnotes li#fn-1", 1, "The note. ↩"},
	}
	for _, c := range checks {
		s := dom.Find(c.sel)
		if s.Length() != c.n || s.Text() != c.text {
			t.Errorf("%s: got %d nodes with text %q, want %d with %q", c.sel, s.Length(), s.Text(), c.n, c.text)
		}
	}
}
