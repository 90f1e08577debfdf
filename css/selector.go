package css

import (
	"fmt"
	"slices"
	"strings"
)

// Fragment is anything which may be an operand of Combine: a compound
// Selector or result of another Combine.
type Fragment interface {
	fmt.Stringer
	// Err returns the first validation error recorded while building.
	Err() error

	fragment()
}

// Selector is a compound selector built from typed parts, for example
// div#main.container:hover. It is a value: every method returns a new
// Selector and never touches storage of the receiver, so any snapshot may be
// used as a starting point for several independent chains. Zero value is an
// empty selector.
//
// First violation of part ordering or uniqueness is recorded in the returned
// snapshot, the offending part is not added and all subsequent appends on
// that chain do nothing.
type Selector struct {
	parts []string
	used  [kindCount]int
	ranks []Kind
	err   error
}

// Element starts a new selector with type (element) selector.
func Element(name string) Selector { return Selector{}.Element(name) }

// ID starts a new selector with id selector.
func ID(name string) Selector { return Selector{}.ID(name) }

// Class starts a new selector with class selector.
func Class(name string) Selector { return Selector{}.Class(name) }

// Attr starts a new selector with attribute selector.
func Attr(spec string) Selector { return Selector{}.Attr(spec) }

// PseudoClass starts a new selector with pseudo-class.
func PseudoClass(name string) Selector { return Selector{}.PseudoClass(name) }

// PseudoElement starts a new selector with pseudo-element.
func PseudoElement(name string) Selector { return Selector{}.PseudoElement(name) }

func (s Selector) Element(name string) Selector { return s.Append(KindElement, name) }

func (s Selector) ID(name string) Selector { return s.Append(KindID, name) }

func (s Selector) Class(name string) Selector { return s.Append(KindClass, name) }

// Attr adds attribute selector, spec is complete contents of the brackets,
// e.g. `href$=".png"`.
func (s Selector) Attr(spec string) Selector { return s.Append(KindAttribute, spec) }

func (s Selector) PseudoClass(name string) Selector { return s.Append(KindPseudoClass, name) }

func (s Selector) PseudoElement(name string) Selector { return s.Append(KindPseudoElement, name) }

// Append adds part of the given kind and returns resulting snapshot.
func (s Selector) Append(kind Kind, value string) Selector {
	if s.err != nil {
		return s
	}
	if !kind.IsValid() {
		s.err = &PartError{Kind: kind, Value: value, Err: ErrInvalidKind}
		return s
	}
	if kind.Singleton() && s.used[kind] > 0 {
		s.err = &PartError{Kind: kind, Value: value, Err: ErrDuplicateKind}
		return s
	}
	if n := len(s.ranks); n > 0 && kind < s.ranks[n-1] {
		s.err = &PartError{Kind: kind, Value: value, Err: ErrOutOfOrder}
		return s
	}

	// Clip forces reallocation so snapshots never share backing arrays.
	s.parts = append(slices.Clip(s.parts), kind.Format(value))
	s.ranks = append(slices.Clip(s.ranks), kind)
	s.used[kind]++
	return s
}

// Err returns the first validation error of the chain, if any.
func (s Selector) Err() error {
	return s.err
}

// Kinds returns kinds of appended parts in append order.
func (s Selector) Kinds() []Kind {
	return slices.Clone(s.ranks)
}

// Parts returns CSS text of each appended part in append order.
func (s Selector) Parts() []string {
	return slices.Clone(s.parts)
}

// String returns CSS text of the selector without consuming it.
func (s Selector) String() string {
	return strings.Join(s.parts, "")
}

// Stringify returns CSS text of the selector and empties the snapshot text,
// so the next call returns an empty string. Kinds recorded so far are kept
// and still constrain further appends.
func (s *Selector) Stringify() (string, error) {
	if s.err != nil {
		return "", s.err
	}
	text := s.String()
	s.parts = nil
	return text, nil
}

func (Selector) fragment() {}

// Combined is the result of joining two fragments with a combinator. It has
// no parts of its own and cannot be extended, only combined further.
type Combined struct {
	text string
	err  error
}

// Combine joins two fragments as "a combinator b". Combinator is used
// verbatim, normally one of " ", "+", "~" or ">". Error of either operand
// (left one first) is carried into the result.
func Combine(a Fragment, combinator string, b Fragment) Combined {
	if err := a.Err(); err != nil {
		return Combined{err: err}
	}
	if err := b.Err(); err != nil {
		return Combined{err: err}
	}
	return Combined{text: a.String() + " " + combinator + " " + b.String()}
}

func (c Combined) Err() error {
	return c.err
}

func (c Combined) String() string {
	return c.text
}

// Stringify returns CSS text and empties it, see Selector.Stringify.
func (c *Combined) Stringify() (string, error) {
	if c.err != nil {
		return "", c.err
	}
	text := c.text
	c.text = ""
	return text, nil
}

func (Combined) fragment() {}
