package css

import (
	"cssb/utils/debug"
)

type treeWriter struct {
	*debug.TreeWriter
}

// String returns a readable tree of the parsed stylesheet: rules in source
// order with their media, rebuilt parts and errors. It exists for manual
// inspection and debug reports.
func (s *Stylesheet) String() string {
	if s == nil {
		return "<nil Stylesheet>"
	}
	return treeWriter{debug.NewTreeWriter()}.stylesheet(s).String()
}

func (tw treeWriter) stylesheet(s *Stylesheet) treeWriter {
	tw.Line(0, "Stylesheet rules=%d invalid=%d", len(s.Rules), len(s.Invalid()))
	for _, w := range s.Warnings {
		tw.TextBlock(1, "warning", w)
	}
	for i := range s.Rules {
		tw.rule(1, i, &s.Rules[i])
	}
	return tw
}

func (tw treeWriter) rule(depth, idx int, r *Rule) {
	tw.Line(depth, "Rule[%d] raw=%q", idx, r.Raw)
	if r.Media != "" {
		tw.TextBlock(depth+1, "media", r.Media)
	}
	if r.Err != nil {
		tw.TextBlock(depth+1, "error", r.Err.Error())
		return
	}
	tw.fragment(depth+1, r.Selector)
}

func (tw treeWriter) fragment(depth int, f Fragment) {
	switch v := f.(type) {
	case Selector:
		kinds := v.Kinds()
		labels := make([]string, 0, len(kinds))
		for _, k := range kinds {
			labels = append(labels, k.String())
		}
		tw.Line(depth, "Selector parts=%d", len(kinds))
		tw.Pairs(depth+1, labels, v.Parts())
	case Combined:
		tw.TextBlock(depth, "combined", v.String())
	case nil:
		tw.Line(depth, "<nil>")
	}
}
