// Package archive walks files packed into zip based containers, for example
// EPUB books or theme bundles carrying stylesheets.
package archive

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	zip "github.com/hidez8891/zip"
)

// WalkFunc is called for each matching entry. Name is the entry path inside
// the archive, r is valid only for the duration of the call. If an error is
// returned, processing stops.
type WalkFunc func(name string, r io.Reader) error

// Walk calls walkFn for every regular entry of the archive for which match
// returns true. Entries with path traversal components ("..") or absolute
// paths make the whole archive invalid.
func Walk(ctx context.Context, archive string, match func(name string) bool, walkFn WalkFunc) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := f.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if strings.HasSuffix(name, "/") || !match(name) {
			continue
		}
		if err := visit(f, walkFn); err != nil {
			return err
		}
	}
	return nil
}

func visit(f *zip.File, walkFn WalkFunc) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("zip entry %q: %w", f.Name, err)
	}
	defer rc.Close()
	return walkFn(f.Name, rc)
}

// isSafePath returns false for absolute paths and those containing ".."
// components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
