package carousel

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

var (
	prevGlyph = [arrowHeight]string{"╭─╮", "│‹│", "╰─╯"}
	nextGlyph = [arrowHeight]string{"╭─╮", "│›│", "╰─╯"}
)

const (
	dotActive   = "●"
	dotInactive = "○"
)

// painter draws scenes. It keeps the bubbles components whose configuration
// outlives a single frame.
type painter struct {
	bar      progress.Model
	help     help.Model
	keys     KeyMap
	maxTilt  float64
	showHelp bool
}

func newPainter(keys KeyMap, maxTilt float64) *painter {
	bar := progress.New(
		progress.WithSolidFill(progressColor),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = progressTrack

	return &painter{
		bar:      bar,
		help:     help.New(),
		keys:     keys,
		maxTilt:  maxTilt,
		showHelp: true,
	}
}

// paint renders sc as exactly Layout.Height lines of Layout.Width cells.
func (p *painter) paint(sc Scene) string {
	l := sc.Layout
	active, ok := sc.Active()
	if !ok {
		return ""
	}

	bg := lipgloss.NewStyle().Background(tokenColor(active.Background, "bg-", fallbackBackground))
	fg := bg.Foreground(tokenColor(active.TextColor, "text-", fallbackForeground))

	rows := make([]string, 0, l.Height)
	rows = append(rows, p.stage(sc, active, bg, fg)...)
	rows = append(rows, p.dots(sc, bg, fg))
	rows = append(rows, p.progress(sc, bg))
	rows = append(rows, p.footer(sc))
	return strings.Join(rows, "\n")
}

func (p *painter) stage(sc Scene, active SlideView, bg, fg lipgloss.Style) []string {
	l := sc.Layout
	content := sc.Content
	prev, next := l.Prev(), l.Next()
	dx, dy := sc.Tilt.Offset(p.maxTilt)

	cw := int(content.W)
	block := p.content(active, cw, int(content.H))
	top := int(content.Y) + dy
	left := int(content.X) + dx

	rows := make([]string, l.stageHeight())
	for y := range rows {
		var b strings.Builder
		col := 0
		put := func(s string, w int) {
			b.WriteString(s)
			col += w
		}
		gap := func(to int) {
			if to > col {
				put(bg.Render(strings.Repeat(" ", to-col)), to-col)
			}
		}

		if y >= int(prev.Y) && y < int(prev.Y+prev.H) {
			gap(int(prev.X))
			put(fg.Render(prevGlyph[y-int(prev.Y)]), arrowWidth)
		}
		if i := y - top; i >= 0 && i < len(block) {
			gap(left)
			put(block[i], cw)
		}
		if y >= int(next.Y) && y < int(next.Y+next.H) {
			gap(int(next.X))
			put(fg.Render(nextGlyph[y-int(next.Y)]), arrowWidth)
		}
		gap(l.Width)
		rows[y] = b.String()
	}
	return rows
}

// content lays out the slide text in a box of w x h cells, centred both ways.
func (p *painter) content(v SlideView, w, h int) []string {
	base := slideStyle(v).Width(w).Align(lipgloss.Center)
	blank := base.Render("")

	var lines []string
	lines = append(lines, strings.Split(base.Faint(true).Render(strings.ToUpper(v.Subtitle)), "\n")...)
	lines = append(lines, blank)
	lines = append(lines, strings.Split(base.Bold(true).Render(v.Title), "\n")...)
	lines = append(lines, blank)
	lines = append(lines, strings.Split(base.Render(v.Description), "\n")...)

	if len(lines) > h {
		lines = lines[:h]
	}
	above := (h - len(lines)) / 2
	out := make([]string, 0, h)
	for i := 0; i < above; i++ {
		out = append(out, blank)
	}
	out = append(out, lines...)
	for len(out) < h {
		out = append(out, blank)
	}

	for i, line := range out {
		out[i] = fitWidth(line, w, base)
	}
	return out
}

func (p *painter) dots(sc Scene, bg, fg lipgloss.Style) string {
	l := sc.Layout
	var b strings.Builder
	col := 0
	for _, c := range sc.Controls {
		if c.Kind != ControlDot {
			continue
		}
		x := int(c.Bounds.X)
		if x >= l.Width {
			break
		}
		if x > col {
			b.WriteString(bg.Render(strings.Repeat(" ", x-col)))
			col = x
		}
		glyph := dotInactive
		st := fg.Faint(true)
		if c.Current {
			glyph = dotActive
			st = fg
		}
		b.WriteString(st.Render(glyph))
		col++
	}
	if col < l.Width {
		b.WriteString(bg.Render(strings.Repeat(" ", l.Width-col)))
	}
	return b.String()
}

func (p *painter) progress(sc Scene, bg lipgloss.Style) string {
	r := sc.Layout.Progress()
	p.bar.Width = int(r.W)
	left := int(r.X)
	right := sc.Layout.Width - left - int(r.W)
	return bg.Render(strings.Repeat(" ", left)) +
		fitWidth(p.bar.ViewAs(sc.Progress.Fraction), int(r.W), bg) +
		bg.Render(strings.Repeat(" ", right))
}

func (p *painter) footer(sc Scene) string {
	status := fmt.Sprintf("%s  %d/%d", sc.Label, indexOf(sc)+1, len(sc.Slides))
	if !sc.Progress.Running {
		status += "  ❚❚ paused"
	}

	bindings := []key.Binding{p.keys.Help}
	if p.showHelp {
		bindings = p.keys.ShortHelp()
	}
	left := p.help.ShortHelpView(bindings)

	w := sc.Layout.Width
	statusStyle := lipgloss.NewStyle().Foreground(dimForeground)
	right := statusStyle.Render(status)
	space := w - lipgloss.Width(left) - lipgloss.Width(right)
	if space < 1 {
		return fitWidth(left, w, lipgloss.NewStyle())
	}
	return left + strings.Repeat(" ", space) + right
}

func indexOf(sc Scene) int {
	for i, s := range sc.Slides {
		if s.Active {
			return i
		}
	}
	return 0
}

// fitWidth truncates or pads s to exactly w cells.
func fitWidth(s string, w int, pad lipgloss.Style) string {
	n := ansi.StringWidth(s)
	switch {
	case n > w:
		return ansi.Truncate(s, w, "")
	case n < w:
		return s + pad.Render(strings.Repeat(" ", w-n))
	default:
		return s
	}
}
