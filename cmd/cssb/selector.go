package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"cssb/css"
	"cssb/state"
)

var combinators = map[string]string{
	"+":          "+",
	"~":          "~",
	">":          ">",
	"descendant": " ",
}

// parseBuildArgs turns command line parts into a fragment. Parts are either
// KIND=VALUE appended to the current compound selector or a combinator which
// joins everything built so far with the compound selector that follows.
func parseBuildArgs(args []string) (css.Fragment, error) {
	if len(args) == 0 {
		return nil, errors.New("no selector parts have been specified")
	}

	var (
		result     css.Fragment
		combinator string
		cur        css.Selector
		started    bool
	)

	for i, arg := range args {
		if comb, ok := combinators[arg]; ok {
			if !started {
				return nil, fmt.Errorf("argument %d: combinator %q must follow selector parts", i+1, arg)
			}
			if result == nil {
				result = cur
			} else {
				result = css.Combine(result, combinator, cur)
			}
			combinator, cur, started = comb, css.Selector{}, false
			continue
		}

		name, value, ok := strings.Cut(arg, "=")
		if !ok || len(value) == 0 {
			return nil, fmt.Errorf("argument %d: %q is not KIND=VALUE", i+1, arg)
		}
		kind, err := css.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		cur = cur.Append(kind, value)
		started = true
	}
	if !started {
		return nil, fmt.Errorf("dangling combinator %q", strings.TrimSpace(combinator))
	}

	if result == nil {
		return cur, nil
	}
	return css.Combine(result, combinator, cur), nil
}

func writer(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func buildSelector(ctx context.Context, cmd *cli.Command) error {
	log := state.EnvFromContext(ctx).Log.Named("build")

	f, err := parseBuildArgs(cmd.Args().Slice())
	if err != nil {
		return fmt.Errorf("malformed command line: %w", err)
	}

	var text string
	switch v := f.(type) {
	case css.Selector:
		text, err = v.Stringify()
	case css.Combined:
		text, err = v.Stringify()
	}
	if err != nil {
		return fmt.Errorf("unable to build selector: %w", err)
	}

	log.Debug("Selector built", zap.Strings("parts", cmd.Args().Slice()), zap.String("selector", text))
	_, err = fmt.Fprintln(writer(cmd), text)
	return err
}

func normalizeSelectors(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("normalize")

	if cmd.Args().Len() == 0 {
		return errors.New("malformed command line: no selectors have been specified")
	}

	var (
		parser = env.Parser()
		out    = writer(cmd)
		errs   error
	)
	for _, text := range cmd.Args().Slice() {
		f, err := parser.ParseSelector(text)
		if err != nil {
			log.Warn("Unable to normalize selector", zap.String("selector", text), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("%q: %w", text, err))
			continue
		}
		if _, err := fmt.Fprintln(out, f.String()); err != nil {
			return err
		}
	}
	return errs
}

func inspectStylesheets(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("inspect")

	if cmd.Args().Len() == 0 {
		return errors.New("malformed command line: no stylesheets have been specified")
	}

	parser := env.Parser()
	out := writer(cmd)
	for _, name := range cmd.Args().Slice() {
		data, err := os.ReadFile(name)
		if err != nil {
			return fmt.Errorf("unable to read stylesheet: %w", err)
		}
		sheet := parser.Parse(data, name)
		log.Debug("Stylesheet parsed", zap.String("file", name), zap.Int("rules", len(sheet.Rules)))

		if _, err := fmt.Fprintf(out, "# %s\n%s", name, sheet); err != nil {
			return err
		}
	}
	return nil
}
