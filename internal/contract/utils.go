package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Strategy label constants.
const (
	SuperiorValue = "Superior" // Beats treat-all and treat-none at this threshold
	UsefulValue   = "Useful"   // Beats treat-none but not treat-all
	NeutralValue  = "Neutral"  // Indistinguishable from treat-none
	HarmfulValue  = "Harmful"  // Worse than doing nothing
)

// Color variables for console output.
var (
	SuperiorColor = color.New(color.FgGreen, color.Bold) // clear win over both references
	UsefulColor   = color.New(color.FgCyan)              // positive but dominated by treat-all
	NeutralColor  = color.New(color.FgYellow)            // on the treat-none line
	HarmfulColor  = color.New(color.FgRed, color.Bold)   // acting here causes net harm
)

// labelEpsilon absorbs floating point noise when comparing net benefits.
const labelEpsilon = 1e-12

// DateTimeFormat is the shared timestamp layout for output and history.
const DateTimeFormat = "2006-01-02 15:04:05"

// GetPlainLabel classifies a strategy's net benefit at one threshold against
// the two reference strategies. This is the core logic used for CSV, JSON,
// and table printing.
func GetPlainLabel(nb, nbTreatAll float64) string {
	switch {
	case nb < -labelEpsilon:
		return HarmfulValue
	case nb <= labelEpsilon:
		return NeutralValue
	case nb >= nbTreatAll-labelEpsilon:
		return SuperiorValue
	default:
		return UsefulValue
	}
}

// GetColorLabel returns a colored label for console output (table).
// It uses GetPlainLabel to determine the string, then applies the color.
func GetColorLabel(nb, nbTreatAll float64) string {
	text := GetPlainLabel(nb, nbTreatAll)

	switch text {
	case SuperiorValue:
		return SuperiorColor.Sprint(text)
	case UsefulValue:
		return UsefulColor.Sprint(text)
	case HarmfulValue:
		return HarmfulColor.Sprint(text)
	default: // "Neutral"
		return NeutralColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on
// the provided file path. It returns os.Stdout when the path is empty.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// ParseBoolString parses permissive boolean strings such as yes/no/true/false/1/0.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1", "on":
		return true, nil
	case "no", "false", "0", "off", "":
		return false, nil
	default:
		return false, fmt.Errorf("cannot interpret %q as a boolean", s)
	}
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

// GetHistoryDBFilePath returns the path to the SQLite DB file for run history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".dcurves_history.db"
	}
	return filepath.Join(homeDir, ".dcurves_history.db")
}
