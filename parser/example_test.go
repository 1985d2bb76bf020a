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

// Examples for parse.go
package parser_test

import (
	"fmt"
	"strings"

	"akhil.cc/kiro/ast"
	"akhil.cc/kiro/parser"
)

func ExampleMustParse() {
	src := `# Favorite Hobbits
- Frodo
- Samwise
  - his garden
- Bilbo
`
	doc := parser.MustParse(strings.NewReader(src))
	var items func(l *ast.List, indent string)
	items = func(l *ast.List, indent string) {
		for _, item := range l.Items {
			fmt.Println(indent + ast.Text(item.Text))
			for _, sub := range item.Sub {
				items(sub, indent+" ")
			}
		}
	}
	for _, b := range doc.Blocks {
		switch t := b.(type) {
		case *ast.Heading:
			fmt.Println(ast.Text(t.Text))
		case *ast.List:
			items(t, " ")
		}
	}
	// Output:
	// Favorite Hobbits
	//  Frodo
	//  Samwise
	//   his garden
	//  Bilbo
}

func ExampleParser_ParseString() {
	doc := parser.New(nil).ParseString("-1. Scope\n-1.A. Goals\n-2. Plan")
	for _, it := range doc.Blocks[0].(*ast.ReportList).Items {
		fmt.Println(it.Level, it.Key, ast.Text(it.Text))
	}
	// Output:
	// 1 1. Scope
	// 2 1.A. Goals
	// 1 2. Plan
}
