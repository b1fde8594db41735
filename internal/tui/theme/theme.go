package theme

import (
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme defines the color palette for the dashboard.
type Theme struct {
	// Base colors
	Base    lipgloss.Color // Background
	Surface lipgloss.Color // Panel surface
	Border  lipgloss.Color // Panel borders

	// Text colors
	Text    lipgloss.Color // Primary text
	Subtext lipgloss.Color // Secondary text
	Overlay lipgloss.Color // Dimmed text

	// Accent colors
	Red    lipgloss.Color
	Peach  lipgloss.Color
	Yellow lipgloss.Color
	Green  lipgloss.Color
	Sky    lipgloss.Color
	Blue   lipgloss.Color
	Mauve  lipgloss.Color

	// Semantic colors
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color
}

// Catppuccin Mocha - the default dark theme
var CatppuccinMocha = Theme{
	Base:    lipgloss.Color("#1e1e2e"),
	Surface: lipgloss.Color("#313244"),
	Border:  lipgloss.Color("#45475a"),

	Text:    lipgloss.Color("#cdd6f4"),
	Subtext: lipgloss.Color("#a6adc8"),
	Overlay: lipgloss.Color("#6c7086"),

	Red:    lipgloss.Color("#f38ba8"),
	Peach:  lipgloss.Color("#fab387"),
	Yellow: lipgloss.Color("#f9e2af"),
	Green:  lipgloss.Color("#a6e3a1"),
	Sky:    lipgloss.Color("#89dceb"),
	Blue:   lipgloss.Color("#89b4fa"),
	Mauve:  lipgloss.Color("#cba6f7"),

	Success: lipgloss.Color("#a6e3a1"),
	Warning: lipgloss.Color("#f9e2af"),
	Error:   lipgloss.Color("#f38ba8"),
	Info:    lipgloss.Color("#89dceb"),
}

// Catppuccin Latte - light variant for light terminals
var CatppuccinLatte = Theme{
	Base:    lipgloss.Color("#eff1f5"),
	Surface: lipgloss.Color("#ccd0da"),
	Border:  lipgloss.Color("#bcc0cc"),

	Text:    lipgloss.Color("#4c4f69"),
	Subtext: lipgloss.Color("#6c6f85"),
	Overlay: lipgloss.Color("#7c7f93"),

	Red:    lipgloss.Color("#d20f39"),
	Peach:  lipgloss.Color("#fe640b"),
	Yellow: lipgloss.Color("#df8e1d"),
	Green:  lipgloss.Color("#40a02b"),
	Sky:    lipgloss.Color("#04a5e5"),
	Blue:   lipgloss.Color("#1e66f5"),
	Mauve:  lipgloss.Color("#8839ef"),

	Success: lipgloss.Color("#40a02b"),
	Warning: lipgloss.Color("#df8e1d"),
	Error:   lipgloss.Color("#d20f39"),
	Info:    lipgloss.Color("#04a5e5"),
}

// Plain is a no-color theme using terminal defaults. Used when NO_COLOR is
// set or for accessibility needs.
var Plain = Theme{}

// Default is the theme used when detection is unavailable.
var Default = CatppuccinMocha

// NoColorEnabled returns true if color output should be disabled.
// Respects the NO_COLOR standard (https://no-color.org/):
//   - If NO_COLOR exists in the environment (any value), colors are disabled
//   - SWARMDASH_NO_COLOR=1 also disables colors
//   - SWARMDASH_NO_COLOR=0 forces colors ON (overrides NO_COLOR)
func NoColorEnabled() bool {
	override := strings.TrimSpace(os.Getenv("SWARMDASH_NO_COLOR"))
	switch strings.ToLower(override) {
	case "0", "false", "no", "off":
		return false
	case "1", "true", "yes", "on":
		return true
	}

	_, noColorSet := os.LookupEnv("NO_COLOR")
	return noColorSet
}

// FromName returns a theme by name.
func FromName(name string) Theme {
	if NoColorEnabled() {
		return Plain
	}

	switch strings.ToLower(strings.TrimSpace(name)) {
	case "plain", "none", "no-color", "nocolor":
		return Plain
	case "latte", "light":
		return CatppuccinLatte
	case "mocha", "dark":
		return CatppuccinMocha
	default:
		return autoTheme()
	}
}

// Current returns the active theme based on SWARMDASH_THEME or background
// detection.
func Current() Theme {
	return FromName(os.Getenv("SWARMDASH_THEME"))
}

// detectDarkBackground inspects the terminal for a dark background. Defined
// as a variable for testability.
var detectDarkBackground = func() bool {
	output := termenv.NewOutput(os.Stdout)
	return output.HasDarkBackground()
}

var (
	cachedAutoTheme Theme
	autoThemeOnce   sync.Once
)

func autoTheme() Theme {
	autoThemeOnce.Do(func() {
		cachedAutoTheme = CatppuccinMocha

		defer func() {
			if recover() != nil {
				cachedAutoTheme = CatppuccinMocha
			}
		}()

		if !detectDarkBackground() {
			cachedAutoTheme = CatppuccinLatte
		}
	})
	return cachedAutoTheme
}
