package sfv

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arvhem/sfvsum/pkg/checksum"
)

func TestParse(t *testing.T) {
	in := strings.Join([]string{
		"; generated by something",
		"",
		"video.mkv CBF43926",
		"name with spaces.bin\t00000000",
		"sub/dir/file.dat deadBEEF",
	}, "\n") + "\n"

	m, err := Parse(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []Entry{
		{Path: "video.mkv", CRC: 0xCBF43926},
		{Path: "name with spaces.bin", CRC: 0},
		{Path: "sub/dir/file.dat", CRC: 0xDEADBEEF},
	}, m.Entries)
	assert.Equal(t, []Comment{
		{Text: "; generated by something", Index: 0},
		{Text: "", Index: 0},
	}, m.Comments)
}

func TestParseCRLF(t *testing.T) {
	m, err := Parse(strings.NewReader("a.bin CBF43926\r\n"))
	require.NoError(t, err)
	require.Len(t, m.Entries, 1)
	assert.Equal(t, "a.bin", m.Entries[0].Path)
}

func TestParseMultipleSpacesBeforeChecksum(t *testing.T) {
	m, err := Parse(strings.NewReader("a b.bin   CBF43926\n"))
	require.NoError(t, err)
	require.Len(t, m.Entries, 1)
	assert.Equal(t, "a b.bin", m.Entries[0].Path)
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		line   int
		reason string
	}{
		{"no checksum", "justapath\n", 1, "missing checksum"},
		{"short checksum", "a.bin ABC\n", 1, "checksum is not 8 hex digits"},
		{"long checksum", "a.bin ABCDEF012\n", 1, "checksum is not 8 hex digits"},
		{"non-hex", "a.bin GGGGGGGG\n", 1, "checksum is not 8 hex digits"},
		{
			"after comment",
			"; fine\ngood.bin CBF43926\nbad.bin XYZ\n",
			3,
			"checksum is not 8 hex digits",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.in))
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.line, pe.Line)
			assert.Equal(t, tt.reason, pe.Reason)
		})
	}
}

func TestParseAbortsOnFirstBadLine(t *testing.T) {
	in := "bad one\nalso bad\n"
	_, err := Parse(strings.NewReader(in))
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 1, pe.Line)
}

func TestStringRoundTrip(t *testing.T) {
	in := strings.Join([]string{
		"; header",
		"a.bin CBF43926",
		"; between",
		"b with space.bin 00000000",
		"; trailing",
	}, "\n") + "\n"

	m, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, in, m.String())
}

func TestStringNormalizesCase(t *testing.T) {
	m, err := Parse(strings.NewReader("a.bin deadbeef\n"))
	require.NoError(t, err)
	assert.Equal(t, "a.bin DEADBEEF\n", m.String())
}

func TestGenerate(t *testing.T) {
	m := Generate([]checksum.Result{
		{Path: "ok.bin", CRC: 0xCBF43926},
		{Path: "broken.bin", Err: errors.New("boom")},
		{Path: "fine.bin", CRC: 1},
	})
	assert.Equal(t, []Entry{
		{Path: "ok.bin", CRC: 0xCBF43926},
		{Path: "fine.bin", CRC: 1},
	}, m.Entries)
	assert.Equal(t, "ok.bin CBF43926\nfine.bin 00000001\n", m.String())
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "sums.sfv")

	m := &Manifest{Entries: []Entry{{Path: "a.bin", CRC: 0xCBF43926}}}
	require.NoError(t, m.WriteFile(out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "a.bin CBF43926\n", string(data))

	// No temp file left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "sums.sfv", entries[0].Name())
}

func TestWriteFileOverwrites(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "sums.sfv")
	require.NoError(t, os.WriteFile(out, []byte("old\n"), 0644))

	m := &Manifest{Entries: []Entry{{Path: "a.bin", CRC: 2}}}
	require.NoError(t, m.WriteFile(out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "a.bin 00000002\n", string(data))
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.sfv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
