package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"
)

var styleSmall = []struct {
	in   string
	want map[string]string
}{
	{"!global = font-size: 12px", map[string]string{":root": "font-size: 12px"}},
	{"[title] = [=Georgia] [#333]", map[string]string{".kiro-title": "font-family: 'Georgia'; color: #333"}},
	{"warn = [#f00]", map[string]string{".kiro-warn": "color: #f00"}},
	{"a = color: red\na = font-weight:   bold;", map[string]string{".kiro-a": "color: red; font-weight: bold"}},
	{"h1, h2 { color: blue; }", map[string]string{"h1": "color: blue", "h2": "color: blue"}},
	{"p {\n  margin: 0;\n  border: 1px solid red\n}", map[string]string{"p": "margin: 0; border: 1px solid red"}},
	{"@media print { p { color: red } }\np { margin: 0 }", map[string]string{"p": "margin: 0"}},
	{":directive\nb = [#000]", map[string]string{".kiro-b": "color: #000"}},
	{"p { color: red }\np { margin: 0 }", map[string]string{"p": "color: red; margin: 0"}},
	{"warn = [#f00]\n:title = [#0f0]\n::icon = [=Mono]", map[string]string{
		".kiro-warn":            "color: #f00",
		".kiro-warn-title":      "color: #0f0",
		".kiro-warn-title-icon": "font-family: 'Mono'",
	}},
	{"warn = [$bg-red] [+bell] [#f00]", map[string]string{".kiro-warn": "color: #f00"}},
	{"warn = [$bg-red] [+bell]", map[string]string{}},
	{":orphan = [#000]\n::lost = [#111]", map[string]string{}},
	{"a = [#111]\n!global = [#222]\n:c = [#333]", map[string]string{".kiro-a": "color: #111", ":root": "color: #222"}},
	{":root { color: red }", map[string]string{":root": "color: red"}},
}

func TestParseStyles(t *testing.T) {
	log := zaptest.NewLogger(t)
	for i, test := range styleSmall {
		got := make(map[string]string)
		parseStyles(test.in, got, log)
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("case %d, in %q, diff (-want +got):\n%s", i, test.in, diff)
		}
	}
}
