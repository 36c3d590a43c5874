package cmd

import (
	"io"
	"os"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles for status lines printed to stdout.
var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	branchStyle  = lipgloss.NewStyle().Bold(true)
	keyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

func init() {
	if shouldDisableColors() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

func shouldDisableColors() bool {
	// Check NO_COLOR environment variable (https://no-color.org/)
	if os.Getenv("NO_COLOR") != "" {
		return true
	}

	if os.Getenv("TERM") == "dumb" {
		return true
	}

	if runtime.GOOS == "windows" {
		// Windows Terminal and newer terminals support ANSI
		if os.Getenv("WT_SESSION") != "" {
			return false
		}
		if os.Getenv("TERM_PROGRAM") != "" {
			return false
		}
		// Disable by default on older Windows consoles
		return os.Getenv("ANSICON") == "" && os.Getenv("ConEmuANSI") != "ON"
	}

	return false
}

// pickerProfile returns the color profile for the picker highlight. The
// picker draws on the controlling terminal, so stdout redirection does not
// matter here.
func pickerProfile() termenv.Profile {
	if shouldDisableColors() {
		return termenv.Ascii
	}
	return termenv.NewOutput(io.Discard, termenv.WithTTY(true)).EnvColorProfile()
}
