package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/gitgrade/schema"
)

// Color variables for console output.
var (
	ExcellentColor = color.New(color.FgGreen, color.Bold) // ExcellentColor marks strong results.
	GoodColor      = color.New(color.FgCyan)              // GoodColor marks acceptable results.
	PoorColor      = color.New(color.FgRed, color.Bold)   // PoorColor marks results needing work.
	WarnColor      = color.New(color.FgYellow)            // WarnColor marks informational warnings.
)

// GetPlainLabel returns the category label of a score under the default
// thresholds. This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(score int) string {
	return string(schema.DefaultScoringPolicy().CategoryFor(score))
}

// GetColorLabel returns a colored category label for console output (table).
func GetColorLabel(category schema.Category) string {
	text := string(category)
	switch category {
	case schema.Excellent:
		return ExcellentColor.Sprint(text)
	case schema.Good:
		return GoodColor.Sprint(text)
	default:
		return PoorColor.Sprint(text)
	}
}

// GetRiskLabel returns a colored knowledge-silo risk label.
func GetRiskLabel(risk schema.RiskLevel) string {
	text := string(risk)
	switch risk {
	case schema.HighRisk:
		return PoorColor.Sprint(text)
	case schema.MediumRisk:
		return WarnColor.Sprint(text)
	default:
		return GoodColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when the path is empty.
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

// GetCacheDBFilePath returns the path to the SQLite DB file for result caching.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".gitgrade_cache.db"
	}
	return filepath.Join(homeDir, ".gitgrade_cache.db")
}

// GetAnalysisDBFilePath returns the path to the SQLite DB file for analysis storage.
func GetAnalysisDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".gitgrade_analysis.db"
	}
	return filepath.Join(homeDir, ".gitgrade_analysis.db")
}

// Truncate shortens s to at most maxWidth runes with an ellipsis suffix.
// Requires maxWidth > 3 so the ellipsis leaves room for content.
func Truncate(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return s
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
