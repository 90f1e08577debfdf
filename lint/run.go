package lint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"

	"cssb/archive"
	"cssb/config"
	"cssb/css"
	"cssb/state"
)

// ErrInvalidSelectors is returned when some selectors failed the check and
// configuration requests failure.
var ErrInvalidSelectors = errors.New("invalid selectors found")

// Run is the lint subcommand action.
func Run(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("lint")

	if cmd.Args().Len() == 0 {
		return errors.New("no input source has been specified")
	}

	var cp encoding.Encoding
	if name := cmd.String("charset"); len(name) > 0 {
		var err error
		if cp, err = ianaindex.IANA.Encoding(name); err != nil || cp == nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", name), zap.Error(err))
			cp = nil
		} else {
			n, _ := ianaindex.IANA.Name(cp)
			log.Debug("Decoding stylesheets", zap.String("charset", n))
		}
	}

	cfg := env.Cfg.Lint
	if cmd.Bool("skip-media") {
		cfg.SkipMedia = true
	}

	files, err := collect(ctx, cmd.Args().Slice(), slices.Concat(cfg.Extensions, cfg.Archives), log)
	if err != nil {
		return err
	}

	log.Info("Processing starting", zap.Int("files", len(files)))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, files, cp, cfg, env, log)
}

func process(ctx context.Context, files []string, cp encoding.Encoding, cfg config.LintConfig, env *state.LocalEnv, log *zap.Logger) error {
	var (
		checked, invalid int
		readErrs         error
	)
	parser := env.Parser()
	opts := Options{SkipMedia: cfg.SkipMedia}

	for i, name := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		var (
			results []*Result
			err     error
		)
		if hasExtension(name, cfg.Archives) {
			results, err = checkArchive(ctx, name, cfg.Extensions, cp, opts, parser, log)
		} else {
			var res *Result
			if res, err = checkFile(ctx, name, cp, opts, parser, log); err == nil {
				results = append(results, res)
			}
		}
		if err != nil {
			log.Error("Unable to process file", zap.String("file", name), zap.Error(err))
			readErrs = multierr.Append(readErrs, fmt.Errorf("%s: %w", name, err))
			continue
		}

		bad := 0
		for _, res := range results {
			checked += res.Checked
			bad += len(res.Invalid)
		}
		if bad > 0 && env.Rpt != nil {
			env.Rpt.Store(fmt.Sprintf("stylesheets/%04d-%s", i+1, filepath.Base(name)), name)
			for j, res := range results {
				env.Rpt.StoreData(fmt.Sprintf("dumps/%04d-%03d.txt", i+1, j+1), []byte("# "+res.Name+"\n"+res.Sheet.String()))
			}
		}
		invalid += bad
	}

	log.Info("Selectors checked", zap.Int("files", len(files)), zap.Int("selectors", checked), zap.Int("invalid", invalid))

	if readErrs != nil {
		return fmt.Errorf("unable to process some files: %w", readErrs)
	}
	if invalid > 0 && cfg.FailOnError {
		return fmt.Errorf("%w: %d of %d", ErrInvalidSelectors, invalid, checked)
	}
	return nil
}

func decode(r io.Reader, cp encoding.Encoding) io.Reader {
	if cp == nil {
		return r
	}
	return cp.NewDecoder().Reader(r)
}

func checkFile(ctx context.Context, name string, cp encoding.Encoding, opts Options, parser *css.Parser, log *zap.Logger) (*Result, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Check(ctx, decode(f, cp), name, opts, parser, log)
}

// checkArchive checks every stylesheet packed into archive, entries are
// reported as "archive/entry".
func checkArchive(ctx context.Context, name string, extensions []string, cp encoding.Encoding, opts Options, parser *css.Parser, log *zap.Logger) ([]*Result, error) {
	var results []*Result

	match := func(entry string) bool {
		return hasExtension(entry, extensions)
	}
	err := archive.Walk(ctx, name, match, func(entry string, r io.Reader) error {
		res, err := Check(ctx, decode(r, cp), name+"/"+entry, opts, parser, log)
		if err != nil {
			return err
		}
		results = append(results, res)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		log.Debug("No stylesheets in archive", zap.String("archive", name))
	}
	return results, nil
}

// collect expands sources into the list of stylesheets to check. Directories
// are walked recursively picking files with requested extensions, files named
// explicitly are always taken. Result is in natural order without duplicates.
func collect(ctx context.Context, sources, extensions []string, log *zap.Logger) ([]string, error) {
	var files []string

	for _, src := range sources {
		src, err := filepath.Abs(src)
		if err != nil {
			return nil, err
		}
		fi, err := os.Stat(src)
		if err != nil {
			return nil, fmt.Errorf("input source was not found (%s): %w", src, err)
		}
		if !fi.IsDir() {
			if !fi.Mode().IsRegular() {
				return nil, fmt.Errorf("unexpected path mode for (%s)", src)
			}
			files = append(files, src)
			continue
		}

		count := 0
		err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err != nil {
				log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if !hasExtension(path, extensions) {
				log.Debug("Skipping file, not recognized as stylesheet", zap.String("file", path))
				return nil
			}
			count++
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
		if count == 0 {
			log.Debug("Nothing to process", zap.String("dir", src))
		}
	}

	slices.SortFunc(files, func(a, b string) int {
		switch {
		case a == b:
			return 0
		case natural.Less(a, b):
			return -1
		default:
			return 1
		}
	})
	return slices.Compact(files), nil
}

func hasExtension(path string, extensions []string) bool {
	ext := filepath.Ext(path)
	for _, e := range extensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}
