package enumerate

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/charlievieth/fastwalk"

	"github.com/arvhem/sfvsum/pkg/paths"
)

type Options struct {
	// Recursive expands directories to their full subtree instead
	// of only their immediate file children.
	Recursive bool
	// Excludes drops matching relative paths and prunes matching
	// directories during expansion.
	Excludes []string
}

// Enumerate expands inputs into a sorted, deduplicated list of
// regular files. A regular file passes through as given; a
// directory expands per Options. Symlinked directories are not
// followed during expansion and non-regular entries are skipped.
// Inputs that cannot be read contribute an error and do not stop
// the rest of the batch.
func Enumerate(inputs []string, opts Options) ([]string, []error) {
	matcher := paths.NewMatcher(opts.Excludes)

	var (
		files []string
		errs  []error
		seen  = make(map[string]bool)
	)
	add := func(p string) {
		key := filepath.Clean(p)
		if abs, err := filepath.Abs(p); err == nil {
			key = abs
		}
		if seen[key] {
			return
		}
		seen[key] = true
		files = append(files, p)
	}

	for _, in := range inputs {
		info, err := os.Stat(in)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("stat %s: %w", in, err))
		case info.Mode().IsRegular():
			add(in)
		case info.IsDir() && opts.Recursive:
			errs = append(errs, walkDir(in, matcher, add)...)
		case info.IsDir():
			if err := listDir(in, matcher, add); err != nil {
				errs = append(errs, err)
			}
		default:
			errs = append(errs,
				fmt.Errorf("%s: not a regular file", in))
		}
	}

	sort.Strings(files)
	return files, errs
}

// listDir yields only the immediate regular-file children of dir.
func listDir(dir string, m *paths.Matcher, add func(string)) error {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", dir, err)
	}
	for _, ent := range ents {
		if !ent.Type().IsRegular() || m.Match(ent.Name()) {
			continue
		}
		add(filepath.Join(dir, ent.Name()))
	}
	return nil
}

// walkDir yields every regular file under root. fastwalk runs the
// callback from multiple goroutines, so shared state is guarded
// here; output order comes from the final sort, not the walk.
func walkDir(root string, m *paths.Matcher, add func(string)) []error {
	var (
		mu   sync.Mutex
		errs []error
	)
	err := fastwalk.Walk(nil, root,
		func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				mu.Lock()
				errs = append(errs,
					fmt.Errorf("walk %s: %w", p, err))
				mu.Unlock()
				return nil
			}
			rel, rerr := filepath.Rel(root, p)
			if rerr != nil || rel == "." {
				return nil
			}
			if m.Match(filepath.ToSlash(rel)) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			mu.Lock()
			add(p)
			mu.Unlock()
			return nil
		})
	if err != nil {
		errs = append(errs, fmt.Errorf("walk %s: %w", root, err))
	}
	return errs
}
