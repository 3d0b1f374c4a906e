package main

import (
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// newHashBar returns a byte-based bar for hashing totalBytes. The
// bar renders on stderr so the checksum listing on stdout stays
// clean. Add64 is safe to call from multiple hashing workers.
func newHashBar(totalBytes int64) *progressbar.ProgressBar {
	return progressbar.NewOptions64(
		totalBytes,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("hashing"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionThrottle(120*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}
