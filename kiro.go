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

// Package kiro converts Kiro markup into HTML.
//
// A conversion parses the source into an *ast.Document with package parser
// and writes it out with package gen/html. Both stages are pure: nothing is
// shared between calls, so conversions may run concurrently.
package kiro // import "akhil.cc/kiro"

import (
	"context"
	"fmt"
	"io"
	"strings"

	"akhil.cc/kiro/gen/html"
	"akhil.cc/kiro/parser"
	"go.uber.org/zap"
)

// Result holds the output of a conversion. CSS is only set when the
// configuration extracts styles.
type Result struct {
	HTML string
	CSS  string
}

// Convert converts src. A nil cfg is the zero Config.
// Malformed markup never causes an error; only an invalid cfg does.
func Convert(src string, cfg *Config) (*Result, error) {
	return ConvertReader(context.Background(), strings.NewReader(src), cfg)
}

// ConvertReader is like Convert but reads the source from r. ctx is checked
// between top-level blocks and is passed to a command highlighter.
func ConvertReader(ctx context.Context, r io.Reader, cfg *Config) (*Result, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	doc, err := parser.New(log).Parse(r)
	if err != nil {
		return nil, err
	}
	g := html.GenContext(ctx, doc)
	g.Highlighter = cfg.highlighter(ctx)
	g.HeadingOffset = cfg.HeadingOffset
	g.HeadingIDs = cfg.HeadingIDs
	g.Standalone = cfg.Standalone
	g.Log = log
	if cfg.StyleOutput == StyleExtract {
		g.Styles = html.StyleExtract
	}
	out, err := g.Output()
	if err != nil {
		return nil, err
	}
	res := &Result{HTML: string(out)}
	if g.Styles == html.StyleExtract {
		res.CSS = g.Stylesheet()
	}
	return res, nil
}
