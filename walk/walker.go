// Package walk builds recursive Walk abstraction for stylesheet trees on top
// of os.ReadDir.
package walk

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/maruel/natural"
)

// Func is the type of the function called for each file visited by Walk.
// The path argument is the full path of the file, rel is the same path
// relative to the walk root (slash separated). If an error is returned,
// processing stops, fs.SkipAll stops it without error.
type Func func(path, rel string) error

// ErrorFunc is called for directories that cannot be read. Walk continues with
// sibling entries when it returns nil.
type ErrorFunc func(path string, err error) error

// Options controls what Walk visits.
type Options struct {
	// Extensions are file name suffixes to match, for example ".scss".
	Extensions []string
	// Exclude are doublestar patterns matched against slash separated path
	// relative to root. Matching directories are not entered.
	Exclude []string
	// OnError is called for unreadable subdirectories, nil means ignore.
	OnError ErrorFunc
}

// Validate checks that options make sense.
func (o Options) Validate() error {
	if len(o.Extensions) == 0 {
		return errors.New("no file extensions to match")
	}
	for _, ext := range o.Extensions {
		if len(ext) == 0 {
			return errors.New("empty file extension")
		}
	}
	for _, p := range o.Exclude {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("bad exclude pattern %q", p)
		}
	}
	return nil
}

// Walk walks the directory tree rooted at root calling fn for each regular
// file which name ends with one of the requested extensions. Entries of every
// directory are visited in natural order so the result is deterministic.
// Symbolic links are not followed.
func Walk(ctx context.Context, root string, opts Options, fn Func) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	fi, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("not a directory: %s", root)
	}

	w := &walker{ctx: ctx, opts: opts, fn: fn}
	if err := w.dir(root, ""); err != nil && !errors.Is(err, fs.SkipAll) {
		return err
	}
	return nil
}

type walker struct {
	ctx  context.Context
	opts Options
	fn   Func
}

func (w *walker) dir(dir, rel string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if rel == "" {
			// root must be readable
			return err
		}
		if w.opts.OnError == nil {
			return nil
		}
		return w.opts.OnError(dir, err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return natural.Less(entries[i].Name(), entries[j].Name())
	})

	for _, e := range entries {
		if err := w.ctx.Err(); err != nil {
			return err
		}

		full := filepath.Join(dir, e.Name())
		erel := path.Join(rel, e.Name())
		if w.excluded(erel) {
			continue
		}

		switch {
		case e.IsDir():
			if err := w.dir(full, erel); err != nil {
				return err
			}
		case e.Type().IsRegular():
			if !w.matches(e.Name()) {
				continue
			}
			if err := w.fn(full, erel); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *walker) matches(name string) bool {
	for _, ext := range w.opts.Extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func (w *walker) excluded(rel string) bool {
	for _, p := range w.opts.Exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
