package paths

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// ValidateEntry checks a manifest entry path before it is resolved
// against a base directory. Manifests are untrusted input: absolute
// paths and paths that climb out of the base are rejected so a
// hostile SFV file cannot direct reads elsewhere.
func ValidateEntry(p string) error {
	if p == "" {
		return fmt.Errorf("empty path")
	}
	if strings.ContainsRune(p, 0) {
		return fmt.Errorf("path contains null byte")
	}
	if path.IsAbs(p) || filepath.IsAbs(p) {
		return fmt.Errorf("absolute path not allowed: %s", p)
	}
	cleaned := path.Clean(filepath.ToSlash(p))
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return fmt.Errorf("path escapes base directory: %s", p)
	}
	return nil
}

// WithinBase reports whether full stays inside dir after resolution.
func WithinBase(dir, full string) bool {
	rel, err := filepath.Rel(dir, full)
	if err != nil {
		return false
	}
	return rel != ".." &&
		!strings.HasPrefix(rel, ".."+string(filepath.Separator)) &&
		!filepath.IsAbs(rel)
}

// Matcher matches slash-separated relative paths against exclude
// patterns: a bare pattern matches any path component, a pattern
// with '/' matches the whole relative path, and '**' spans
// directories.
type Matcher struct {
	patterns []string
}

func NewMatcher(patterns []string) *Matcher {
	return &Matcher{patterns: patterns}
}

func (m *Matcher) Match(relPath string) bool {
	for _, pat := range m.patterns {
		pat = strings.TrimSuffix(pat, "/")
		if m.matchOne(pat, relPath) {
			return true
		}
	}
	return false
}

func (m *Matcher) matchOne(pat, relPath string) bool {
	if strings.Contains(pat, "**") {
		return matchDoublestar(pat, relPath)
	}
	if strings.Contains(pat, "/") {
		ok, _ := filepath.Match(pat, relPath)
		return ok
	}
	for _, part := range strings.Split(relPath, "/") {
		if ok, _ := filepath.Match(pat, part); ok {
			return true
		}
	}
	return false
}

func matchDoublestar(pat, relPath string) bool {
	before, after, ok := strings.Cut(pat, "**")
	if !ok || strings.Contains(after, "**") {
		return false
	}
	prefix := strings.TrimSuffix(before, "/")
	suffix := strings.TrimPrefix(after, "/")

	switch {
	case prefix == "" && suffix == "":
		return true
	case prefix == "":
		return matchTail(suffix, relPath)
	case suffix == "":
		return relPath == prefix ||
			strings.HasPrefix(relPath, prefix+"/")
	default:
		if !strings.HasPrefix(relPath, prefix+"/") {
			return false
		}
		return matchTail(
			suffix, strings.TrimPrefix(relPath, prefix+"/"),
		)
	}
}

// matchTail tries the pattern against every path-suffix of relPath.
func matchTail(pat, relPath string) bool {
	parts := strings.Split(relPath, "/")
	for i := range parts {
		if ok, _ := filepath.Match(pat, strings.Join(parts[i:], "/")); ok {
			return true
		}
	}
	return false
}
