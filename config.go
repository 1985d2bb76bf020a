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

package kiro

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"akhil.cc/kiro/gen"
	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// StyleOutput selects where the stylesheet collected from style blocks is
// placed.
type StyleOutput string

const (
	// StyleEmbed puts a <style> element at the head of the output.
	StyleEmbed StyleOutput = "embed"
	// StyleExtract leaves the stylesheet out of the HTML and returns it in
	// Result.CSS.
	StyleExtract StyleOutput = "extract"
)

// Config controls a conversion. The zero value embeds styles and does no
// highlighting.
type Config struct {
	StyleOutput   StyleOutput `yaml:"style_output" toml:"style_output"`
	HeadingOffset int         `yaml:"heading_offset" toml:"heading_offset"`
	HeadingIDs    bool        `yaml:"heading_ids" toml:"heading_ids"`
	Standalone    bool        `yaml:"standalone" toml:"standalone"`

	// Highlight names the code highlighter. "chroma" highlights in-process
	// with CSS classes, "chroma:STYLE" with inline styles from the named
	// style, and anything else is run as a command (see gen.Command).
	Highlight string `yaml:"highlight" toml:"highlight"`

	// Highlighter takes precedence over Highlight.
	Highlighter gen.Highlighter `yaml:"-" toml:"-"`

	Logger *zap.Logger `yaml:"-" toml:"-"`
}

// Validate reports every invalid value in c.
func (c *Config) Validate() error {
	var err error
	switch c.StyleOutput {
	case "", StyleEmbed, StyleExtract:
	default:
		err = multierr.Append(err, fmt.Errorf("invalid style output %q", c.StyleOutput))
	}
	if c.HeadingOffset < 0 {
		err = multierr.Append(err, fmt.Errorf("negative heading offset %d", c.HeadingOffset))
	}
	if c.Highlighter == nil && strings.TrimSpace(c.Highlight) == "" && c.Highlight != "" {
		err = multierr.Append(err, errors.New("blank highlight command"))
	}
	return err
}

// LoadConfig reads a configuration file. Files ending in .toml are read as
// TOML and all others as YAML. Unknown keys are errors.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}
	cfg := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		if keys := md.Undecoded(); len(keys) > 0 {
			return nil, fmt.Errorf("decoding %s: unknown key %q", path, keys[0].String())
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) highlighter(ctx context.Context) gen.Highlighter {
	switch {
	case c.Highlighter != nil:
		return c.Highlighter
	case c.Highlight == "":
		return nil
	case c.Highlight == "chroma":
		return &gen.Chroma{Classes: true}
	case strings.HasPrefix(c.Highlight, "chroma:"):
		return &gen.Chroma{Style: strings.TrimPrefix(c.Highlight, "chroma:")}
	}
	return &gen.Command{Ctx: ctx, Line: c.Highlight}
}
