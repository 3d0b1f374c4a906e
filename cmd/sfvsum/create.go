package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/arvhem/sfvsum/pkg/checksum"
	"github.com/arvhem/sfvsum/pkg/enumerate"
	"github.com/arvhem/sfvsum/pkg/sfv"
)

func createCmd() *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "compute checksums, optionally writing an SFV file",
		ArgsUsage: "<path>...",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "recursive",
				Aliases: []string{"r"},
				Usage:   "expand directories recursively",
			},
			&cli.PathFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "write an SFV manifest to `FILE`",
			},
			&cli.IntFlag{
				Name:    "jobs",
				Aliases: []string{"j"},
				Value:   1,
				Usage:   "hash up to `N` files in parallel",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "exclude pattern (repeatable)",
			},
			&cli.BoolFlag{
				Name:  "progress",
				Usage: "show a progress bar while hashing",
			},
		},
		Action: createAction,
	}
}

func createAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf(
			"usage: sfvsum create [options] <path>...",
		)
	}
	color := newColorizer(c.Bool("no-color"))

	files, enumErrs := enumerate.Enumerate(
		c.Args().Slice(),
		enumerate.Options{
			Recursive: c.Bool("recursive"),
			Excludes:  c.StringSlice("exclude"),
		},
	)
	for _, err := range enumErrs {
		fmt.Fprintln(os.Stderr, errorLine(color, err))
	}
	slog.Debug("enumerated",
		"files", len(files),
		"errors", len(enumErrs),
	)

	var onProgress func(int64)
	if c.Bool("progress") {
		bar := newHashBar(totalSize(files))
		defer func() { _ = bar.Finish() }()
		onProgress = func(n int64) { _ = bar.Add64(n) }
	}

	results := checksum.Files(files, c.Int("jobs"), onProgress)

	// Manifest entries use the paths a reader of the SFV file
	// expects: relative to the current directory when possible.
	display := displayPaths(files)
	failed := len(enumErrs)
	for i := range results {
		if results[i].Err != nil {
			failed++
			fmt.Fprintln(os.Stderr,
				errorLine(color, results[i].Err))
			continue
		}
		results[i].Path = display[i]
		fmt.Printf("%s %08X\n", display[i], results[i].CRC)
	}

	m := sfv.Generate(results)
	if out := c.Path("output"); out != "" {
		if err := m.WriteFile(out); err != nil {
			return err
		}
		slog.Debug("wrote manifest",
			"path", out,
			"entries", len(m.Entries),
		)
	}

	fmt.Fprintf(os.Stderr,
		"%d files hashed, %d failed\n",
		len(m.Entries), failed,
	)
	if failed > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

// displayPaths maps enumerated paths to how they are printed and
// recorded: relative to the current directory when the file lives
// under it, absolute otherwise.
func displayPaths(files []string) []string {
	out := make([]string, len(files))
	cwd, err := os.Getwd()
	for i, f := range files {
		out[i] = filepath.ToSlash(f)
		if err != nil {
			continue
		}
		abs, aerr := filepath.Abs(f)
		if aerr != nil {
			continue
		}
		rel, rerr := filepath.Rel(cwd, abs)
		if rerr == nil && rel != ".." &&
			!strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			out[i] = filepath.ToSlash(rel)
		} else {
			out[i] = filepath.ToSlash(abs)
		}
	}
	return out
}

func totalSize(files []string) int64 {
	var total int64
	for _, f := range files {
		if info, err := os.Stat(f); err == nil {
			total += info.Size()
		}
	}
	return total
}
