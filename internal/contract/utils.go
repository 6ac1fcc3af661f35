package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/lakerisk/schema"
)

// Color variables for console output.
var (
	HighColor    = color.New(color.FgRed, color.Bold) // HighColor represents standard danger.
	MediumColor  = color.New(color.FgYellow)          // MediumColor represents standard caution, not bold.
	LowColor     = color.New(color.FgCyan)            // LowColor represents informational / low-priority signal.
	PresentColor = color.New(color.FgGreen)           // PresentColor marks observed presence.
)

// GetColorLabel returns a colored risk label for console output (table).
func GetColorLabel(level schema.RiskLevel) string {
	text := string(level)
	switch level {
	case schema.HighRisk:
		return HighColor.Sprint(text)
	case schema.MediumRisk:
		return MediumColor.Sprint(text)
	default: // "Low"
		return LowColor.Sprint(text)
	}
}

// GetPresenceLabel returns a colored presence label for console output.
func GetPresenceLabel(p schema.Presence) string {
	if p == schema.PresenceYes {
		return PresentColor.Sprint(string(p))
	}
	return string(p)
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".lakerisk_cache.db"
	}
	return filepath.Join(homeDir, ".lakerisk_cache.db")
}

// GetRunsDBFilePath returns the path to the SQLite DB file for run tracking.
func GetRunsDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".lakerisk_runs.db"
	}
	return filepath.Join(homeDir, ".lakerisk_runs.db")
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
