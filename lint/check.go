// Package lint checks selectors of stylesheets against builder rules: parts
// of every compound selector must be ordered element, id, class, attribute,
// pseudo-class, pseudo-element and element, id and pseudo-element may not
// repeat.
package lint

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"cssb/css"
)

// Options control what is checked.
type Options struct {
	SkipMedia bool // ignore rules nested in @media blocks
}

// Result of checking a single stylesheet.
type Result struct {
	Name     string
	Checked  int
	Invalid  []css.Rule
	Warnings []string
	Sheet    *css.Stylesheet
}

// Err returns errors of all invalid rules combined or nil.
func (r *Result) Err() error {
	var err error
	for _, rule := range r.Invalid {
		err = multierr.Append(err, fmt.Errorf("%s: %q: %w", r.Name, rule.Raw, rule.Err))
	}
	return err
}

// Check reads stylesheet from r and verifies every selector in it. Returned
// error means stylesheet could not be read, selector problems are reported in
// Result.
func Check(ctx context.Context, r io.Reader, name string, opts Options, parser *css.Parser, log *zap.Logger) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read stylesheet: %w", err)
	}

	sheet := parser.Parse(data, name)
	res := &Result{Name: name, Warnings: sheet.Warnings, Sheet: sheet}

	for _, rule := range sheet.Rules {
		if opts.SkipMedia && rule.Media != "" {
			continue
		}
		res.Checked++
		if rule.Valid() {
			continue
		}
		res.Invalid = append(res.Invalid, rule)
		log.Warn("Invalid selector",
			zap.String("file", name), zap.String("selector", rule.Raw), zap.String("media", rule.Media), zap.Error(rule.Err))
	}
	for _, w := range sheet.Warnings {
		log.Debug("Stylesheet warning", zap.String("file", name), zap.String("warning", w))
	}
	return res, nil
}
