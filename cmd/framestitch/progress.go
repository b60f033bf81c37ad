package main

import (
	"os"

	"github.com/schollz/progressbar/v3"
)

// newProgressBar creates a progress bar on stderr. A hidden bar accepts
// updates and prints nothing.
func newProgressBar(total int, description string, hidden bool) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetVisibility(!hidden),
	)
}
