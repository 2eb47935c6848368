package carousel

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette maps slide style tokens to terminal colours. Tokens follow the
// Tailwind names used by deck files (bg-slate-900, text-white, ...).
var palette = map[string]lipgloss.Color{
	"slate-900":   lipgloss.Color("#0f172a"),
	"slate-800":   lipgloss.Color("#1e293b"),
	"blue-800":    lipgloss.Color("#1e40af"),
	"blue-900":    lipgloss.Color("#1e3a8a"),
	"emerald-900": lipgloss.Color("#064e3b"),
	"emerald-800": lipgloss.Color("#065f46"),
	"rose-900":    lipgloss.Color("#881337"),
	"rose-800":    lipgloss.Color("#9f1239"),
	"indigo-950":  lipgloss.Color("#1e1b4b"),
	"indigo-900":  lipgloss.Color("#312e81"),
	"amber-800":   lipgloss.Color("#92400e"),
	"amber-900":   lipgloss.Color("#78350f"),
	"gray-900":    lipgloss.Color("#111827"),
	"black":       lipgloss.Color("#000000"),
	"white":       lipgloss.Color("#ffffff"),
	"gray-100":    lipgloss.Color("#f3f4f6"),
	"gray-200":    lipgloss.Color("#e5e7eb"),
}

var (
	fallbackBackground = lipgloss.Color("#0f172a")
	fallbackForeground = lipgloss.Color("#ffffff")
	dimForeground      = lipgloss.Color("#94a3b8")
	progressColor      = "#ffffff"
	progressTrack      = "#475569"
)

// tokenColor resolves "bg-<name>" or "text-<name>". A raw colour ("#rrggbb" or an
// ANSI index) is passed through; anything else falls back.
func tokenColor(token, prefix string, fallback lipgloss.Color) lipgloss.Color {
	if token == "" {
		return fallback
	}
	if strings.HasPrefix(token, "#") {
		return lipgloss.Color(token)
	}
	if c, ok := palette[strings.TrimPrefix(token, prefix)]; ok {
		return c
	}
	return fallback
}

// slideStyle builds the text style for a slide's font token: serif renders
// italic, sans bold, mono plain.
func slideStyle(v SlideView) lipgloss.Style {
	st := lipgloss.NewStyle().
		Foreground(tokenColor(v.TextColor, "text-", fallbackForeground)).
		Background(tokenColor(v.Background, "bg-", fallbackBackground))

	switch v.Font {
	case "font-serif":
		st = st.Italic(true)
	case "font-sans":
		st = st.Bold(true)
	}
	return st
}

// SlideColors returns the background and text colours of s for image export.
func SlideColors(s Slide) (bg, fg color.RGBA) {
	bg = hexRGBA(tokenColor(s.Background, "bg-", fallbackBackground), fallbackBackground)
	fg = hexRGBA(tokenColor(s.TextColor, "text-", fallbackForeground), fallbackForeground)
	return bg, fg
}

func hexRGBA(c, fallback lipgloss.Color) color.RGBA {
	v, err := strconv.ParseUint(strings.TrimPrefix(string(c), "#"), 16, 32)
	if err != nil || len(c) != 7 {
		if c == fallback {
			return color.RGBA{A: 255}
		}
		return hexRGBA(fallback, fallback)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}
