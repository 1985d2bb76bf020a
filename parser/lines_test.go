package parser

import (
	"testing"
)

type linecase struct {
	in      string
	kind    Kind
	level   int
	heading int
	key     string
	info    string
	indent  int
	text    string
}

var lineSmall = []linecase{
	{in: "# Title", kind: HeadingLine, level: 1, text: "Title"},
	{in: "###### Six", kind: HeadingLine, level: 6, text: "Six"},
	{in: "####### Seven", kind: TextLine, text: "####### Seven"},
	{in: "#nospace", kind: TextLine, text: "#nospace"},
	{in: "----", kind: RuleLine},
	{in: "- item", kind: ListLine, text: "item"},
	{in: "* item", kind: ListLine, text: "item"},
	{in: "-- deeper", kind: ListLine, indent: 1, text: "deeper"},
	{in: "  - nested", kind: ListLine, indent: 1, text: "nested"},
	{in: "12. twelve", kind: ListLine, text: "twelve"},
	{in: "-1. One", kind: ReportLine, key: "1.", level: 1, text: "One"},
	{in: "-1.A. Sub", kind: ReportLine, key: "1.A.", level: 2, text: "Sub"},
	{in: "| said", kind: QuoteLine, text: "said"},
	{in: ">> inner", kind: ToggleLine, level: 2, text: "inner"},
	{in: "## > Heading toggle", kind: ToggleLine, level: 1, heading: 2, text: "Heading toggle"},
	{in: "#>> tight", kind: ToggleLine, level: 2, heading: 1, text: "tight"},
	{in: "####### > seven", kind: TextLine, text: "####### > seven"},
	{in: `## \> quoted`, kind: HeadingLine, level: 2, text: "> quoted"},
	{in: "[^n]: a note", kind: FootnoteLine, key: "n", text: "a note"},
	{in: "@img: cat.png", kind: ResourceLine, info: "img", text: "cat.png"},
	{in: "@unknown: x", kind: TextLine, text: "@unknown: x"},
	{in: "```go", kind: FenceOpenLine, info: "go"},
	{in: "<style>", kind: StyleOpenLine},
	{in: `\# not a heading`, kind: TextLine, text: "# not a heading"},
	{in: `\- not a list`, kind: TextLine, text: "- not a list"},
	{in: "   ", kind: BlankLine, indent: 1},
}

func TestClassify(t *testing.T) {
	for i, test := range lineSmall {
		sc := NewScanner(test.in)
		if !sc.Scan() {
			t.Fatalf("case %d: no line scanned", i)
		}
		l := sc.Line()
		if l.Kind != test.kind || l.Level != test.level || l.Heading != test.heading || l.Key != test.key ||
			l.Info != test.info || l.Indent != test.indent || l.Text.String() != test.text {
			t.Errorf("case %d, in %q,\nwant %v level=%d heading=%d key=%q info=%q indent=%d text=%q,\ngot %v level=%d heading=%d key=%q info=%q indent=%d text=%q",
				i, test.in, test.kind, test.level, test.heading, test.key, test.info, test.indent, test.text,
				l.Kind, l.Level, l.Heading, l.Key, l.Info, l.Indent, l.Text.String())
		}
	}
}

var sequenceSmall = []struct {
	in   string
	want []Kind
}{
	{"- a\n  more\n\n  indented", []Kind{ListLine, ContinuationLine, BlankLine, TextLine}},
	{"> t\n  body\n\n  more\nafter", []Kind{ToggleLine, ToggleBodyLine, BlankLine, ToggleBodyLine, TextLine}},
	{"```\n# x\n\n```", []Kind{FenceOpenLine, CodeLine, CodeLine, FenceCloseLine}},
	{"<style>\na = b\n<>\n# h", []Kind{StyleOpenLine, StyleLine, StyleCloseLine, HeadingLine}},
	{"-1. a\n  b", []Kind{ReportLine, ContinuationLine}},
	{"a\r\nb", []Kind{TextLine, TextLine}},
}

func TestScanSequence(t *testing.T) {
	for i, test := range sequenceSmall {
		var got []Kind
		sc := NewScanner(test.in)
		for sc.Scan() {
			got = append(got, sc.Line().Kind)
		}
		if len(got) != len(test.want) {
			t.Errorf("case %d, in %q,\nwant %v,\ngot %v", i, test.in, test.want, got)
			continue
		}
		for j := range got {
			if got[j] != test.want[j] {
				t.Errorf("case %d, in %q,\nwant %v,\ngot %v", i, test.in, test.want, got)
				break
			}
		}
	}
}

func TestScannerReset(t *testing.T) {
	sc := NewScanner("```\ncode")
	for sc.Scan() {
	}
	sc.Reset()
	if !sc.Scan() || sc.Line().Kind != FenceOpenLine || sc.Line().Num != 1 {
		t.Errorf("after Reset, got %v at line %d", sc.Line().Kind, sc.Line().Num)
	}
}

func TestNFC(t *testing.T) {
	sc := NewScanner("# Cafe\u0301")
	sc.Scan()
	if got := sc.Line().Text.String(); got != "Caf\u00e9" {
		t.Errorf("got %q, want composed form", got)
	}
}
