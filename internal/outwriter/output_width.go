package outwriter

import (
	"os"

	"github.com/huangsam/lakerisk/internal/contract"
	"golang.org/x/term"
)

// GetMaxTableNameWidth calculates the maximum width for lake and species names in table output
// based on terminal width and table configuration.
func GetMaxTableNameWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Rank + Region + Adjusted + Risk + Presence with borders/padding
	baseWidth := 50

	// Raw and Similarity columns
	if cfg.Detail {
		baseWidth += 24
	}

	// Table borders, separators, and padding
	baseWidth += 10

	available := termWidth - baseWidth
	if available < 12 {
		return 12
	}
	if available > 40 {
		return 40
	}
	return available
}
