package verify

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/arvhem/sfvsum/pkg/checksum"
	"github.com/arvhem/sfvsum/pkg/paths"
	"github.com/arvhem/sfvsum/pkg/sfv"
)

type Status int

const (
	Matched Status = iota
	Mismatched
	Missing
)

func (s Status) String() string {
	switch s {
	case Matched:
		return "matched"
	case Mismatched:
		return "mismatched"
	case Missing:
		return "missing"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result pairs one manifest entry with its outcome. Actual is valid
// for Matched and Mismatched; Err carries the reason for Missing.
type Result struct {
	Entry  sfv.Entry
	Status Status
	Actual uint32
	Err    error
}

type Report struct {
	// Results is in manifest order, one per entry. Duplicate
	// manifest paths verify independently.
	Results []Result
}

type Summary struct {
	Matched    int
	Mismatched int
	Missing    int
}

func (r *Report) Summary() Summary {
	var s Summary
	for _, res := range r.Results {
		switch res.Status {
		case Matched:
			s.Matched++
		case Mismatched:
			s.Mismatched++
		case Missing:
			s.Missing++
		}
	}
	return s
}

// OK reports whether every entry matched.
func (r *Report) OK() bool {
	for _, res := range r.Results {
		if res.Status != Matched {
			return false
		}
	}
	return true
}

type Options struct {
	// Workers bounds concurrent hashing; <= 1 verifies
	// sequentially.
	Workers int
	// OnProgress receives hashed byte counts and may be invoked
	// concurrently when Workers > 1.
	OnProgress func(n int64)
}

// Run re-hashes every entry of m, resolving entry paths against
// baseDir, and classifies each as Matched, Mismatched or Missing.
// It only reads: neither the manifest nor the files are touched.
// Report order is manifest order regardless of worker completion
// order.
func Run(m *sfv.Manifest, baseDir string, opts Options) *Report {
	results := make([]Result, len(m.Entries))
	check := func(i int) {
		results[i] = checkEntry(
			m.Entries[i], baseDir, opts.OnProgress,
		)
	}

	workers := opts.Workers
	if workers > len(m.Entries) {
		workers = len(m.Entries)
	}
	if workers <= 1 {
		for i := range m.Entries {
			check(i)
		}
		return &Report{Results: results}
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				check(i)
			}
		}()
	}
	for i := range m.Entries {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return &Report{Results: results}
}

func checkEntry(
	e sfv.Entry,
	baseDir string,
	onProgress func(n int64),
) Result {
	if err := paths.ValidateEntry(e.Path); err != nil {
		return Result{Entry: e, Status: Missing, Err: err}
	}
	full := filepath.Join(baseDir, filepath.FromSlash(e.Path))
	if !paths.WithinBase(baseDir, full) {
		return Result{
			Entry:  e,
			Status: Missing,
			Err: fmt.Errorf(
				"path escapes base directory: %s", e.Path,
			),
		}
	}

	crc, err := checksum.File(full, onProgress)
	if err != nil {
		return Result{Entry: e, Status: Missing, Err: err}
	}
	if crc != e.CRC {
		return Result{Entry: e, Status: Mismatched, Actual: crc}
	}
	return Result{Entry: e, Status: Matched, Actual: crc}
}
