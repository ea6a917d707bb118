package outwriter

import (
	"os"

	"github.com/huangsam/gitgrade/internal/contract"
	"golang.org/x/term"
)

// terminalWidth returns the configured width override or the detected terminal width.
func terminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		return 80 // Conservative default for narrow terminals and CI
	}
	return detectedWidth
}

// getMaxSubjectWidth calculates how many characters of a commit subject fit
// on one line next to the type label and short sha.
func getMaxSubjectWidth(cfg *contract.Config) int {
	// Type label + sha + indentation and separators
	available := terminalWidth(cfg) - 36
	if available < 20 {
		return 20
	}
	if available > 100 {
		return 100
	}
	return available
}
