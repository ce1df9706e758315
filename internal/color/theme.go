package color

import (
	"strings"

	darkmode "github.com/thiagokokada/dark-mode-go"
)

type ThemePreference int

const (
	ThemeAuto ThemePreference = iota
	ThemeLight
	ThemeDark
)

func (p ThemePreference) String() string {
	switch p {
	case ThemeLight:
		return "light"
	case ThemeDark:
		return "dark"
	default:
		return "auto"
	}
}

var detectDarkMode = darkmode.IsDarkMode

func ThemePreferenceFromString(raw string) ThemePreference {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case ThemeDark.String():
		return ThemeDark
	case ThemeLight.String():
		return ThemeLight
	default:
		return ThemeAuto
	}
}

// IsDark resolves the preference, asking the desktop when it is auto.
// Detection failures fall back to light.
func (p ThemePreference) IsDark() bool {
	switch p {
	case ThemeDark:
		return true
	case ThemeLight:
		return false
	}
	if detectDarkMode == nil {
		return false
	}
	dark, err := detectDarkMode()
	return err == nil && dark
}

// lightThemeFactor darkens colours drawn on light backgrounds.
const lightThemeFactor = 0.8

// AdjustForTheme darkens c for light themes and returns it unchanged for dark
// ones.
func AdjustForTheme(c RGB, dark bool) RGB {
	if dark {
		return c
	}
	return RGB{
		R: uint8(float64(c.R) * lightThemeFactor),
		G: uint8(float64(c.G) * lightThemeFactor),
		B: uint8(float64(c.B) * lightThemeFactor),
	}
}

// TextColor is the neutral colour used for blame metadata.
func TextColor(dark bool) RGB {
	if dark {
		return RGB{180, 180, 180}
	}
	return RGB{100, 100, 100}
}
