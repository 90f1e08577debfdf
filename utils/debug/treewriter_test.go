package debug

import (
	"strings"
	"testing"
)

func TestTreeWriter_Line(t *testing.T) {
	tests := []struct {
		name   string
		depth  int
		format string
		args   []any
		want   string
	}{
		{"no depth", 0, "Stylesheet", nil, "Stylesheet\n"},
		{"depth 1", 1, "Rule", nil, "  Rule\n"},
		{"depth 2 formatted", 2, "Rule[%d] %s", []any{3, "invalid"}, "    Rule[3] invalid\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.Line(tt.depth, tt.format, tt.args...)
			if got := tw.String(); got != tt.want {
				t.Errorf("Line() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_TextBlock(t *testing.T) {
	tests := []struct {
		name  string
		depth int
		label string
		value string
		want  string
	}{
		{"empty value", 0, "media", "", "media: \n"},
		{"plain", 1, "element", "div", "  element: \"div\"\n"},
		{"quotes", 2, "attribute", `[href$=".png"]`, `    attribute: "[href$=\".png\"]"` + "\n"},
		{"newline", 0, "raw", "a,\nb", "raw: \"a,\\nb\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.TextBlock(tt.depth, tt.label, tt.value)
			if got := tw.String(); got != tt.want {
				t.Errorf("TextBlock() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_Pairs(t *testing.T) {
	tw := NewTreeWriter()
	tw.Pairs(1, []string{"element", "id", "class"}, []string{"div", "#main"})

	want := "  element: \"div\"\n  id: \"#main\"\n"
	if got := tw.String(); got != want {
		t.Errorf("Pairs() = %q, want %q", got, want)
	}
}

func TestTreeWriter_Nested(t *testing.T) {
	tw := NewTreeWriter()
	tw.Line(0, "Stylesheet rules=%d", 1)
	tw.Line(1, "Rule[%d]", 0)
	tw.TextBlock(2, "media", "print")

	lines := strings.Split(strings.TrimSuffix(tw.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	for i, l := range lines {
		if indent := len(l) - len(strings.TrimLeft(l, " ")); indent != 2*i {
			t.Errorf("line %d indent = %d, want %d", i, indent, 2*i)
		}
	}
}
