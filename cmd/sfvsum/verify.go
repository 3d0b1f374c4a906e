package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/arvhem/sfvsum/pkg/sfv"
	"github.com/arvhem/sfvsum/pkg/verify"
)

func verifyCmd() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "verify files against an SFV manifest",
		ArgsUsage: "<file.sfv>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "jobs",
				Aliases: []string{"j"},
				Value:   1,
				Usage:   "verify up to `N` files in parallel",
			},
		},
		Action: verifyAction,
	}
}

func verifyAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: sfvsum verify <file.sfv>")
	}
	color := newColorizer(c.Bool("no-color"))
	sfvPath := c.Args().Get(0)

	// A manifest that does not parse cannot be trusted, so parse
	// errors are fatal to the whole run.
	m, err := sfv.Load(sfvPath)
	if err != nil {
		return err
	}

	base := filepath.Dir(sfvPath)
	slog.Debug("parsed manifest",
		"entries", len(m.Entries),
		"base", base,
	)

	rep := verify.Run(m, base, verify.Options{
		Workers: c.Int("jobs"),
	})

	for _, res := range rep.Results {
		switch res.Status {
		case verify.Matched:
			fmt.Println(color.Color(fmt.Sprintf(
				"%s [bold][green]OK", res.Entry.Path,
			)))
		case verify.Mismatched:
			fmt.Println(color.Color(fmt.Sprintf(
				"%s [bold][yellow]FAILED[reset] %08X != %08X",
				res.Entry.Path, res.Actual, res.Entry.CRC,
			)))
		case verify.Missing:
			fmt.Println(color.Color(fmt.Sprintf(
				"%s [bold][red]ERROR[reset] %v",
				res.Entry.Path, res.Err,
			)))
		}
	}

	s := rep.Summary()
	fmt.Printf("%d matched, %d mismatched, %d missing\n",
		s.Matched, s.Mismatched, s.Missing)
	if !rep.OK() {
		return cli.Exit("", 1)
	}
	return nil
}
