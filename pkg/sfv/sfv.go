package sfv

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/arvhem/sfvsum/pkg/checksum"
)

// Entry is one checksum line of an SFV manifest.
type Entry struct {
	Path string
	CRC  uint32
}

// Comment is a verbatim comment or blank line. Index is the entry
// index the line precedes; len(Entries) means it trails the last
// entry.
type Comment struct {
	Text  string
	Index int
}

// Manifest is an ordered SFV file: checksum entries plus the
// comment lines around them, so a parsed manifest serializes back
// with its comments in place.
type Manifest struct {
	Entries  []Entry
	Comments []Comment
}

// ParseError reports the first malformed line of a manifest. A
// manifest that does not parse in full is never verified.
type ParseError struct {
	Line   int
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf(
		"sfv: line %d: %s: %q", e.Line, e.Reason, e.Text,
	)
}

// Parse reads SFV text. Blank lines and lines starting with ';' are
// kept as comments. Every other line splits at its last whitespace
// run into a path (which may itself contain spaces) and an 8-hex-
// digit checksum. Parsing aborts on the first malformed line.
func Parse(r io.Reader) (*Manifest, error) {
	m := &Manifest{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	lineno := 0
	for sc.Scan() {
		lineno++
		line := strings.TrimSuffix(sc.Text(), "\r")

		t := strings.TrimSpace(line)
		if t == "" || strings.HasPrefix(t, ";") {
			m.Comments = append(m.Comments, Comment{
				Text:  line,
				Index: len(m.Entries),
			})
			continue
		}

		e, reason := parseEntry(t)
		if reason != "" {
			return nil, &ParseError{
				Line:   lineno,
				Text:   line,
				Reason: reason,
			}
		}
		m.Entries = append(m.Entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("sfv: read: %w", err)
	}
	return m, nil
}

func parseEntry(line string) (Entry, string) {
	i := strings.LastIndexAny(line, " \t")
	if i < 0 {
		return Entry{}, "missing checksum"
	}
	tok := line[i+1:]
	path := strings.TrimRight(line[:i], " \t")
	if path == "" {
		return Entry{}, "missing path"
	}
	if len(tok) != 8 {
		return Entry{}, "checksum is not 8 hex digits"
	}
	crc, err := strconv.ParseUint(tok, 16, 32)
	if err != nil {
		return Entry{}, "checksum is not 8 hex digits"
	}
	return Entry{Path: path, CRC: uint32(crc)}, ""
}

// Load parses the manifest at path.
func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Generate builds a manifest mirroring the successful results in
// order. Failed results are omitted; reporting them is the caller's
// job.
func Generate(results []checksum.Result) *Manifest {
	m := &Manifest{}
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		m.Entries = append(m.Entries, Entry{
			Path: r.Path,
			CRC:  r.CRC,
		})
	}
	return m
}

// String renders the manifest: comments at their recorded
// positions, one "<path> <CRC32 %08X>" line per entry, trailing
// newline.
func (m *Manifest) String() string {
	var b strings.Builder
	ci := 0
	for i, e := range m.Entries {
		for ci < len(m.Comments) && m.Comments[ci].Index <= i {
			b.WriteString(m.Comments[ci].Text)
			b.WriteByte('\n')
			ci++
		}
		fmt.Fprintf(&b, "%s %08X\n", e.Path, e.CRC)
	}
	for ; ci < len(m.Comments); ci++ {
		b.WriteString(m.Comments[ci].Text)
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteFile writes the manifest atomically: a temp file in the
// destination directory renamed into place, so an interrupted run
// never leaves a truncated manifest behind.
func (m *Manifest) WriteFile(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".sfvsum-*")
	if err != nil {
		return fmt.Errorf("create temp manifest: %w", err)
	}
	name := tmp.Name()
	if _, err := io.WriteString(tmp, m.String()); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}
