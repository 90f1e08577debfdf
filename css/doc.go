// Package css builds CSS selectors from typed parts and parses selector text
// back into the same representation.
//
// # Compound selectors
//
// A compound selector consists of parts of six kinds which must appear in
// this order:
//
//	element#id.class[attr]:pseudo-class::pseudo-element
//	          \----/\----/\-----------/
//	          may occur several times
//
// Element, id and pseudo-element may occur only once. Violations are
// reported as ErrDuplicateKind and ErrOutOfOrder wrapped in *PartError.
//
// # Usage
//
//	sel := css.Element("a").Attr(`href$=".png"`).PseudoClass("focus")
//	text, err := sel.Stringify() // a[href$=".png"]:focus
//
//	list := css.Combine(
//	    css.Element("div").ID("main"),
//	    "+",
//	    css.Element("table").ID("data"),
//	) // div#main + table#data
//
// Every call returns a new value, a snapshot may be extended in several
// directions without the results affecting each other.
//
// # Parsing
//
//	parser := css.NewParser(logger)
//	frag, err := parser.ParseSelector("div#main > p.note")
//	sheet := parser.Parse(cssBytes)
//
// Parsed selectors are rebuilt through the builder, so stylesheets can be
// checked against the same rules.
package css
