package render

import (
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
)

// Markdown style names
const (
	ThemeAds        = "ads"
	ThemeDark       = "dark"
	ThemeLight      = "light"
	ThemeDracula    = "dracula"
	ThemeTokyoNight = "tokyo-night"
	ThemeNoTTY      = "notty"
	ThemeASCII      = "ascii"
)

// Google brand colours used by the ads style
const (
	googleBlue   = "#4285F4"
	googleGreen  = "#34A853"
	googleYellow = "#FBBC05"
	googleRed    = "#EA4335"
)

func stringPtr(s string) *string { return &s }

// AdsStyleConfig returns the default markdown style: glamour's dark style
// with headings, emphasis and links in Google Ads colours.
func AdsStyleConfig() ansi.StyleConfig {
	cfg := styles.DarkStyleConfig

	cfg.H1.Color = stringPtr("#FFFFFF")
	cfg.H1.BackgroundColor = stringPtr(googleBlue)
	cfg.H2.Color = stringPtr(googleBlue)
	cfg.H3.Color = stringPtr(googleGreen)
	cfg.H4.Color = stringPtr(googleYellow)
	cfg.Strong.Color = stringPtr(googleYellow)
	cfg.Link.Color = stringPtr(googleBlue)
	cfg.LinkText.Color = stringPtr(googleGreen)
	cfg.Code.Color = stringPtr(googleRed)

	return cfg
}

// IsBuiltinStyle reports whether style names a built-in style rather than
// a path to a JSON style file.
func IsBuiltinStyle(style string) bool {
	switch style {
	case ThemeAds, ThemeDark, ThemeLight, ThemeDracula, ThemeTokyoNight, ThemeNoTTY, ThemeASCII:
		return true
	default:
		return false
	}
}

// styleOption maps a style name to the glamour option that loads it
func styleOption(style string) glamour.TermRendererOption {
	switch {
	case style == "" || style == ThemeAds:
		return glamour.WithStyles(AdsStyleConfig())
	case IsBuiltinStyle(style):
		return glamour.WithStandardStyle(style)
	default:
		return glamour.WithStylePath(style)
	}
}

// ThemeInfo contains information about a theme for display purposes.
type ThemeInfo struct {
	Name        string
	Description string
}

// AvailableThemes returns the built-in markdown styles.
func AvailableThemes() []ThemeInfo {
	return []ThemeInfo{
		{Name: ThemeAds, Description: "Google Ads colours on a dark background (default)"},
		{Name: ThemeDark, Description: "Dark theme"},
		{Name: ThemeLight, Description: "Light theme for bright terminals"},
		{Name: ThemeDracula, Description: "Dracula color scheme"},
		{Name: ThemeTokyoNight, Description: "Tokyo Night color scheme"},
		{Name: ThemeNoTTY, Description: "Plain text (no styling)"},
		{Name: ThemeASCII, Description: "ASCII-only output"},
	}
}

// ThemeNames returns just the theme names for selection.
func ThemeNames() []string {
	themes := AvailableThemes()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}
