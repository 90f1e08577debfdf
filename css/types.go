package css

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the category of a single selector part. Numeric value of a Kind is
// its rank: inside one compound selector parts must be appended in
// non-decreasing rank order.
type Kind int

const (
	KindElement       Kind = iota // div, a, *
	KindID                        // #main
	KindClass                     // .container
	KindAttribute                 // [href$=".png"]
	KindPseudoClass               // :focus
	KindPseudoElement             // ::before

	kindCount
)

// ErrInvalidKind is returned by ParseKind for unknown names.
var ErrInvalidKind = errors.New("not a valid Kind")

var kindNames = [kindCount]string{
	KindElement:       "element",
	KindID:            "id",
	KindClass:         "class",
	KindAttribute:     "attribute",
	KindPseudoClass:   "pseudo-class",
	KindPseudoElement: "pseudo-element",
}

// KindNames returns names of all known kinds in rank order.
func KindNames() []string {
	names := make([]string, 0, kindCount)
	for _, n := range kindNames {
		names = append(names, n)
	}
	return names
}

// ParseKind converts name to Kind. "attr" is accepted as a short form of
// "attribute".
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "attr" {
		return KindAttribute, nil
	}
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("%s is %w", name, ErrInvalidKind)
}

// IsValid reports whether k is one of the defined kinds.
func (k Kind) IsValid() bool {
	return k >= KindElement && k < kindCount
}

func (k Kind) String() string {
	if !k.IsValid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Singleton reports whether the kind may appear at most once in a compound
// selector.
func (k Kind) Singleton() bool {
	return k == KindElement || k == KindID || k == KindPseudoElement
}

// Format returns CSS text of a part of this kind. Value is used verbatim,
// for attributes caller supplies complete bracket contents.
func (k Kind) Format(value string) string {
	switch k {
	case KindElement:
		return value
	case KindID:
		return "#" + value
	case KindClass:
		return "." + value
	case KindAttribute:
		return "[" + value + "]"
	case KindPseudoClass:
		return ":" + value
	case KindPseudoElement:
		return "::" + value
	default:
		// this should never happen
		panic("unsupported selector kind requested")
	}
}

// Rule is a single selector found in a stylesheet. Grouped selectors
// ("h2, h3") produce one Rule each.
type Rule struct {
	Raw      string   // Selector text as written in the stylesheet
	Media    string   // Enclosing @media query or empty for top level rules
	Selector Fragment // Rebuilt selector, nil when Err is set
	Err      error    // Validation or syntax error
}

// Valid reports whether the selector was rebuilt without errors.
func (r Rule) Valid() bool {
	return r.Err == nil
}

// Stylesheet holds selectors of a parsed stylesheet in source order.
type Stylesheet struct {
	Rules    []Rule
	Warnings []string // Skipped constructs
}

// RulesBySelector returns all rules with given raw selector text.
func (s *Stylesheet) RulesBySelector(raw string) []Rule {
	var matches []Rule
	for _, r := range s.Rules {
		if r.Raw == raw {
			matches = append(matches, r)
		}
	}
	return matches
}

// Invalid returns rules which failed to rebuild.
func (s *Stylesheet) Invalid() []Rule {
	var bad []Rule
	for _, r := range s.Rules {
		if !r.Valid() {
			bad = append(bad, r)
		}
	}
	return bad
}
