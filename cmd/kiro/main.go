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

// This CLI utility converts Kiro source files into HTML.
//
// Usage:
//   kiro [command]
//
// Available Commands:
//   ast         Print the syntax tree of a Kiro source file
//   help        Help about any command
//   html        HTML output generator for Kiro source files
//
// Flags:
//   -h, --help      help for kiro
//   -v, --verbose   log parser and generator diagnostics
//
// Use "kiro [command] --help" for more information about a command.
package main

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"akhil.cc/kiro"
	"akhil.cc/kiro/parser"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/sanity-io/litter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func prefix(msg string, err error) error {
	return errors.New(msg + err.Error())
}

// newLogger returns a console logger writing to stderr. Colors are used
// when stderr is a terminal.
func newLogger(verbose bool) *zap.Logger {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.TimeKey = zapcore.OmitKey
	} else {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.Lock(os.Stderr), level)
	return zap.New(core)
}

func openInput(args []string) (io.ReadCloser, error) {
	if len(args) == 0 {
		return os.Stdin, nil
	}
	return os.Open(args[0])
}

type countWriter struct {
	n int64
	w io.Writer
}

func (c *countWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// writeOutput writes s to the named file, or to standard output if name is
// empty, and returns the number of bytes written. A file it creates is
// closed before it returns.
func writeOutput(name, s string) (int64, error) {
	if len(name) == 0 {
		cw := &countWriter{w: os.Stdout}
		_, err := io.WriteString(cw, s)
		return cw.n, err
	}
	f, err := os.Create(name)
	if err != nil {
		return 0, err
	}
	cw := &countWriter{w: f}
	_, err = io.WriteString(cw, s)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return cw.n, err
}

func main() {
	var verbose bool
	rootCmd := &cobra.Command{
		Use:   "kiro generator",
		Short: "output generation for Kiro source files",
		Long: `This CLI utility converts Kiro source files into HTML,
or prints their syntax tree.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log parser and generator diagnostics")

	var (
		outputfile string
		configfile string
		cssfile    string
		timeout    time.Duration
		cfg        kiro.Config
	)
	prefixHTML := "(HTML) "
	htmlCmd := &cobra.Command{
		Use:   "html [input] [-o output]",
		Short: "HTML output generator for Kiro source files",
		Long: `This command converts a Kiro source file to HTML.
All text is escaped, and code blocks are passed to the configured
highlighter. Highlight commands are parsed according to the Bourne
shell's word-splitting rules, with {lang} replaced by the block's
language.

If no input file is specified, input is read from
standard input. Similarly, if no output argument is
specified, output is written to standard output.`,
		Args:                  cobra.MaximumNArgs(1),
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(verbose)
			defer log.Sync()

			conf := &cfg
			if len(configfile) != 0 {
				loaded, err := kiro.LoadConfig(configfile)
				if err != nil {
					return prefix(prefixHTML, err)
				}
				// flags given on the command line override the file
				flags := cmd.Flags()
				if flags.Changed("heading-offset") {
					loaded.HeadingOffset = cfg.HeadingOffset
				}
				if flags.Changed("heading-ids") {
					loaded.HeadingIDs = cfg.HeadingIDs
				}
				if flags.Changed("standalone") {
					loaded.Standalone = cfg.Standalone
				}
				if flags.Changed("highlight") {
					loaded.Highlight = cfg.Highlight
				}
				conf = loaded
			}
			if len(cssfile) != 0 {
				conf.StyleOutput = kiro.StyleExtract
			}
			conf.Logger = log

			src, err := openInput(args)
			if err != nil {
				return prefix(prefixHTML, err)
			}
			defer src.Close()
			ctx := context.Background()
			if timeout > -1 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			res, err := kiro.ConvertReader(ctx, src, conf)
			if err != nil {
				return prefix(prefixHTML, err)
			}

			n, err := writeOutput(outputfile, res.HTML)
			if err != nil {
				return prefix(prefixHTML, err)
			}
			if len(cssfile) != 0 {
				if err := os.WriteFile(cssfile, []byte(res.CSS), 0o644); err != nil {
					return prefix(prefixHTML, err)
				}
			}
			log.Debug("Wrote HTML", zap.String("size", humanize.Bytes(uint64(n))))
			return nil
		},
	}
	htmlCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		if err != nil {
			return prefix(prefixHTML, err)
		}
		return nil
	})
	// pflag includes the argument type when it unquotes its usage.
	// To prevent this behavior we prefix the usage with backquotes ``.
	htmlCmd.Flags().StringVarP(&outputfile, "output", "o", "", "``name of the output file")
	htmlCmd.Flags().StringVarP(&configfile, "config", "c", "", "``YAML or TOML configuration file")
	htmlCmd.Flags().StringVar(&cssfile, "extract-css", "", "``write the stylesheet to this file instead of embedding it")
	htmlCmd.Flags().IntVar(&cfg.HeadingOffset, "heading-offset", 0, "``number added to every heading level")
	htmlCmd.Flags().BoolVar(&cfg.HeadingIDs, "heading-ids", false, "give headings ids derived from their text")
	htmlCmd.Flags().BoolVar(&cfg.Standalone, "standalone", false, "write a complete HTML document")
	htmlCmd.Flags().StringVar(&cfg.Highlight, "highlight", "", "``\"chroma\", \"chroma:STYLE\" or a command used to highlight code blocks")
	htmlCmd.Flags().DurationVarP(&timeout, "timeout", "t", -1, "``timeout used to halt the generator and highlight commands")
	// Set string version of default value to be zero-value to prevent it from being printed by FlagUsages.
	htmlCmd.Flags().Lookup("timeout").DefValue = "0"

	prefixAST := "(AST) "
	astCmd := &cobra.Command{
		Use:   "ast [input]",
		Short: "Print the syntax tree of a Kiro source file",
		Long: `This command parses a Kiro source file and prints its syntax tree,
including the collected styles and footnote definitions.

If no input file is specified, input is read from standard input.`,
		Args:                  cobra.MaximumNArgs(1),
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(verbose)
			defer log.Sync()
			src, err := openInput(args)
			if err != nil {
				return prefix(prefixAST, err)
			}
			defer src.Close()
			doc, err := parser.New(log).Parse(src)
			if err != nil {
				return prefix(prefixAST, err)
			}
			opts := litter.Options{HidePrivateFields: true, StripPackageNames: true}
			_, err = io.WriteString(os.Stdout, opts.Sdump(doc)+"\n")
			return err
		},
	}

	rootCmd.AddCommand(htmlCmd, astCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
