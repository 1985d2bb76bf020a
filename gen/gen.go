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

// Package gen holds the code highlighters used by the generators under it.
// A highlighter turns the contents of a fenced code block into markup that
// is written inside the block's code element.
package gen // import "akhil.cc/kiro/gen"

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	sq "github.com/kballard/go-shellquote"
)

// ErrUnknownLanguage is returned by a Highlighter that has no support for
// the requested language.
var ErrUnknownLanguage = errors.New("unknown language")

// Highlighter converts code written in lang into HTML. The returned markup
// is trusted and written as is.
type Highlighter interface {
	Highlight(lang, code string) (string, error)
}

// HighlighterFunc adapts an ordinary function to the Highlighter interface.
type HighlighterFunc func(lang, code string) (string, error)

func (f HighlighterFunc) Highlight(lang, code string) (string, error) {
	return f(lang, code)
}

// Command highlights code with an external process. Line is split according
// to the Bourne shell's word-splitting rules, and every "{lang}" in it is
// replaced with the block's language. The code is written to the process's
// standard input and its standard output is used as the highlighted markup.
type Command struct {
	Ctx    context.Context
	Line   string
	Stderr io.Writer
}

// Highlight runs the command for one code block and waits for it to finish.
func (c *Command) Highlight(lang, code string) (string, error) {
	words, err := sq.Split(c.Line)
	if err != nil {
		return "", fmt.Errorf("splitting %q: %w", c.Line, err)
	}
	if len(words) == 0 {
		return "", fmt.Errorf("no valid commands: %q", c.Line)
	}
	for i, w := range words {
		if strings.Contains(w, "{lang}") {
			if lang == "" {
				return "", ErrUnknownLanguage
			}
			words[i] = strings.ReplaceAll(w, "{lang}", lang)
		}
	}
	var cmd *exec.Cmd
	if c.Ctx == nil {
		cmd = exec.Command(words[0], words[1:]...)
	} else {
		cmd = exec.CommandContext(c.Ctx, words[0], words[1:]...)
	}
	var stdout bytes.Buffer
	cmd.Stdin = strings.NewReader(code)
	cmd.Stdout = &stdout
	if c.Stderr != nil {
		cmd.Stderr = c.Stderr
	}
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("running %s: %w", words[0], err)
	}
	return stdout.String(), nil
}
