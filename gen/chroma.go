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

package gen

import (
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Chroma highlights code in-process. With Classes set, tokens are marked
// with CSS classes instead of inline styles, and the stylesheet for Style
// can be written with WriteCSS.
type Chroma struct {
	Style   string
	Classes bool
}

func (c *Chroma) formatter() *chromahtml.Formatter {
	return chromahtml.New(
		chromahtml.WithClasses(c.Classes),
		chromahtml.PreventSurroundingPre(true),
	)
}

func (c *Chroma) style() *chroma.Style {
	if c.Style == "" {
		return styles.Fallback
	}
	return styles.Get(c.Style)
}

// Highlight returns ErrUnknownLanguage when no lexer matches lang.
func (c *Chroma) Highlight(lang, code string) (string, error) {
	if lang == "" {
		return "", ErrUnknownLanguage
	}
	lexer := lexers.Get(lang)
	if lexer == nil {
		return "", ErrUnknownLanguage
	}
	it, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := c.formatter().Format(&sb, c.style(), it); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// WriteCSS writes the stylesheet used by class-based output.
func (c *Chroma) WriteCSS(w io.Writer) error {
	return c.formatter().WriteCSS(w, c.style())
}
