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
	"errors"
	"io"
	"regexp"
	"strings"
	"unicode"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// shorthand matches the bracket tokens of a "name = value" style line:
// [#c0ffee] sets the color and [=Font Name] the font family.
var shorthand = regexp.MustCompile(`\[([#=])([^\]]+)\]`)

// unsupported matches icon ([+name]) and utility class ([$name]) tokens,
// which have no CSS rendering.
var unsupported = regexp.MustCompile(`\[[+$][^\]]*\]`)

// parseStyles reads the body of a style block into styles, keyed by
// selector. Lines of the form "name = value" are Kiro shorthand; everything
// else is read as CSS. A shorthand line starting with ':' styles a child of
// the last named style, and one starting with "::" a child of that child.
// The child "b" of style "a" gets the selector ".kiro-a-b".
func parseStyles(src string, styles map[string]string, log *zap.Logger) {
	var sheet []string
	var parent, child string
	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		name, value, ok := strings.Cut(trimmed, "=")
		if !ok || strings.ContainsAny(trimmed, "{}") {
			if strings.HasPrefix(trimmed, ":") && !strings.ContainsAny(trimmed, "{}") {
				log.Debug("Skipping style directive", zap.String("line", trimmed))
				continue
			}
			sheet = append(sheet, line)
			continue
		}
		name = strings.TrimSpace(name)
		if strings.HasPrefix(name, ":") {
			depth := len(name) - len(strings.TrimLeft(name, ":"))
			name = strings.TrimSpace(strings.TrimLeft(name, ":"))
			name = strings.TrimSuffix(strings.TrimPrefix(name, "["), "]")
			switch {
			case depth > 2 || !shorthandName(name) || name == "!global":
				log.Debug("Skipping style directive", zap.String("line", trimmed))
			case depth == 1 && parent != "":
				child = name
				merge(styles, selector(parent+"-"+child), shorthandDecls(value, log))
			case depth == 2 && child != "":
				merge(styles, selector(parent+"-"+child+"-"+name), shorthandDecls(value, log))
			default:
				log.Debug("Child style has no parent", zap.String("line", trimmed))
			}
			continue
		}
		name = strings.TrimSuffix(strings.TrimPrefix(name, "["), "]")
		if !shorthandName(name) {
			sheet = append(sheet, line)
			continue
		}
		parent, child = "", ""
		if name != "!global" {
			parent = name
		}
		merge(styles, selector(name), shorthandDecls(value, log))
	}
	if css := strings.TrimSpace(strings.Join(sheet, "\n")); css != "" {
		parseCSS(css, styles, log)
	}
}

func shorthandName(name string) bool {
	if name == "!global" {
		return true
	}
	return name != "" && strings.IndexFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_'
	}) < 0
}

func selector(name string) string {
	if name == "!global" {
		return ":root"
	}
	return ".kiro-" + name
}

func shorthandDecls(value string, log *zap.Logger) string {
	if ts := unsupported.FindAllString(value, -1); len(ts) > 0 {
		log.Debug("Ignoring unsupported style tokens", zap.Strings("tokens", ts))
		value = unsupported.ReplaceAllString(value, "")
	}
	ms := shorthand.FindAllStringSubmatch(value, -1)
	if len(ms) == 0 {
		return normDecls(value)
	}
	var decls []string
	for _, m := range ms {
		v := strings.TrimSpace(m[2])
		switch m[1] {
		case "#":
			decls = append(decls, "color: #"+strings.TrimPrefix(v, "#"))
		case "=":
			decls = append(decls, "font-family: '"+v+"'")
		}
	}
	return strings.Join(decls, "; ")
}

// normDecls collapses whitespace in a declaration list and separates the
// declarations with "; ".
func normDecls(s string) string {
	var decls []string
	for _, d := range strings.Split(s, ";") {
		if d = strings.Join(strings.Fields(d), " "); d != "" {
			decls = append(decls, d)
		}
	}
	return strings.Join(decls, "; ")
}

func merge(styles map[string]string, sel, decls string) {
	if decls == "" {
		return
	}
	if prev, ok := styles[sel]; ok && prev != "" {
		decls = prev + "; " + decls
	}
	styles[sel] = decls
}

func parseCSS(src string, styles map[string]string, log *zap.Logger) {
	p := css.NewParser(parse.NewInput(strings.NewReader(src)), false)
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			if p.HasParseError() {
				log.Debug("CSS parse error", zap.Error(p.Err()))
				continue
			}
			if err := p.Err(); err != nil && !errors.Is(err, io.EOF) {
				log.Debug("CSS read error", zap.Error(err))
			}
			return
		case css.BeginAtRuleGrammar:
			log.Debug("Skipping at-rule", zap.String("rule", string(data)))
			skipBlock(p)
		case css.BeginRulesetGrammar:
			sels := selectors(data, p.Values())
			decls := declarations(p, log)
			for _, s := range sels {
				merge(styles, s, decls)
			}
		}
	}
}

func skipBlock(p *css.Parser) {
	for depth := 1; depth > 0; {
		gt, _, _ := p.Next()
		switch gt {
		case css.ErrorGrammar:
			return
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

func selectors(data []byte, values []css.Token) []string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}
	var sels []string
	for _, s := range strings.Split(sb.String(), ",") {
		if s = strings.Join(strings.Fields(s), " "); s != "" {
			sels = append(sels, s)
		}
	}
	return sels
}

func declarations(p *css.Parser, log *zap.Logger) string {
	var decls []string
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			if !p.HasParseError() {
				return strings.Join(decls, "; ")
			}
			log.Debug("Skipping bad declaration", zap.Error(p.Err()))
		case css.EndRulesetGrammar:
			return strings.Join(decls, "; ")
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			if v := value(p.Values()); v != "" {
				decls = append(decls, string(data)+": "+v)
			}
		}
	}
}

func value(tokens []css.Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		if t.TokenType == css.WhitespaceToken {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			continue
		}
		sb.Write(t.Data)
	}
	return strings.TrimSpace(sb.String())
}
