package checksum

import (
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"os"
	"sync"
)

// Number of bytes read from a file at a time.
const chunkSize = 1 << 20

// Sum returns the CRC32 of p using the SFV convention (IEEE
// polynomial, reflected, initial and final XOR 0xFFFFFFFF).
func Sum(p []byte) uint32 {
	return crc32.ChecksumIEEE(p)
}

// New returns an empty CRC32 accumulator. Feeding it the same bytes
// under any chunking yields the same sum as a single Sum call.
func New() hash.Hash32 {
	return crc32.NewIEEE()
}

// File streams the file at path through the CRC32 engine in bounded
// chunks. onProgress, if non-nil, receives byte counts as reading
// advances.
func File(path string, onProgress func(n int64)) (uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := New()
	buf := make([]byte, chunkSize)
	for {
		n, rerr := f.Read(buf)
		if n > 0 {
			_, _ = h.Write(buf[:n])
			if onProgress != nil {
				onProgress(int64(n))
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return 0, fmt.Errorf("read %s: %w", path, rerr)
		}
	}
	return h.Sum32(), nil
}

// Result is the outcome of hashing one file. Err is nil exactly when
// CRC is valid.
type Result struct {
	Path string
	CRC  uint32
	Err  error
}

// Files hashes every path, continuing past per-file failures rather
// than aborting the batch. Results are returned in input order no
// matter how many workers ran; workers <= 1 hashes sequentially.
// With workers > 1, onProgress may be invoked concurrently.
func Files(
	paths []string,
	workers int,
	onProgress func(n int64),
) []Result {
	res := make([]Result, len(paths))
	if workers > len(paths) {
		workers = len(paths)
	}
	if workers <= 1 {
		for i, p := range paths {
			crc, err := File(p, onProgress)
			res[i] = Result{Path: p, CRC: crc, Err: err}
		}
		return res
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				crc, err := File(paths[i], onProgress)
				res[i] = Result{
					Path: paths[i],
					CRC:  crc,
					Err:  err,
				}
			}
		}()
	}
	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return res
}
