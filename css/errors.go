package css

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

var (
	// ErrDuplicateKind is reported when element, id or pseudo-element is
	// added to a selector which already has one.
	ErrDuplicateKind = errors.New("element, id and pseudo-element should not occur more than one time inside the selector")

	// ErrOutOfOrder is reported when a part is added after a part of higher
	// rank.
	ErrOutOfOrder = errors.New("selector parts should be arranged in the following order: element, id, class, attribute, pseudo-class, pseudo-element")

	// ErrSyntax is reported by the parser for text it cannot tokenize into
	// selector parts.
	ErrSyntax = errors.New("malformed selector")
)

// PartError records the part which broke selector invariants.
type PartError struct {
	Kind  Kind
	Value string
	Err   error
}

func (e *PartError) Error() string {
	if !e.Kind.IsValid() {
		return fmt.Sprintf("%s %q: %v", e.Kind, e.Value, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Kind, e.Kind.Format(e.Value), e.Err)
}

func (e *PartError) Unwrap() error {
	return e.Err
}

// Errors combines errors of all invalid rules, each prefixed with the
// selector text.
func (s *Stylesheet) Errors() error {
	var err error
	for _, r := range s.Rules {
		if r.Err != nil {
			err = multierr.Append(err, fmt.Errorf("%q: %w", r.Raw, r.Err))
		}
	}
	return err
}
