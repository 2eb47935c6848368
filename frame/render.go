// Package frame turns rendered terminal views into images: a fixed cell grid
// drawn with a bitmap font, encoded as PNG or WebP, and compared pixel by pixel
// against stored baselines.
package frame

import (
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Config defines the grid and colours of a frame.
type Config struct {
	Width      int // columns
	Height     int // rows
	CellWidth  int // pixels per column
	CellHeight int // pixels per row
	Background color.RGBA
	Foreground color.RGBA
}

// DefaultConfig is an 80x24 grid of 8x16 cells, white on black.
func DefaultConfig() Config {
	return Config{
		Width:      80,
		Height:     24,
		CellWidth:  8,
		CellHeight: 16,
		Background: color.RGBA{0, 0, 0, 255},
		Foreground: color.RGBA{255, 255, 255, 255},
	}
}

// baseline offset of basicfont.Face7x13 inside a 16px row
const baseline = 12

// Renderer rasterises terminal output into a cell buffer and then an image.
type Renderer struct {
	config Config
	buffer [][]rune
	face   font.Face
}

// NewRenderer creates a renderer for cfg. Zero cell sizes fall back to 8x16.
func NewRenderer(cfg Config) *Renderer {
	if cfg.CellWidth <= 0 {
		cfg.CellWidth = 8
	}
	if cfg.CellHeight <= 0 {
		cfg.CellHeight = 16
	}

	buffer := make([][]rune, cfg.Height)
	for i := range buffer {
		buffer[i] = make([]rune, cfg.Width)
	}
	return &Renderer{
		config: cfg,
		buffer: buffer,
		face:   basicfont.Face7x13,
	}
}

// Config returns the renderer's configuration.
func (r *Renderer) Config() Config { return r.config }

// Load replaces the buffer with view. Escape sequences are dropped and lines
// beyond the grid are clipped.
func (r *Renderer) Load(view string) {
	for i := range r.buffer {
		for j := range r.buffer[i] {
			r.buffer[i][j] = ' '
		}
	}

	for row, line := range strings.Split(view, "\n") {
		if row >= r.config.Height {
			break
		}
		col := 0
		for _, ch := range ansi.Strip(line) {
			if col >= r.config.Width {
				break
			}
			r.buffer[row][col] = ch
			col++
		}
	}
}

// Text returns the buffer as plain text, one line per row.
func (r *Renderer) Text() string {
	lines := make([]string, len(r.buffer))
	for i, row := range r.buffer {
		lines[i] = strings.TrimRight(string(row), " ")
	}
	return strings.Join(lines, "\n")
}

// Image draws the buffer.
func (r *Renderer) Image() *image.RGBA {
	cfg := r.config
	img := image.NewRGBA(image.Rect(0, 0, cfg.Width*cfg.CellWidth, cfg.Height*cfg.CellHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(cfg.Background), image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(cfg.Foreground),
		Face: r.face,
	}

	for row, line := range r.buffer {
		for col, ch := range line {
			if ch == ' ' || ch == 0 {
				continue
			}
			drawer.Dot = fixed.P(col*cfg.CellWidth, row*cfg.CellHeight+baseline)
			drawer.DrawString(string(ch))
		}
	}
	return img
}

// Render loads view and draws it.
func (r *Renderer) Render(view string) *image.RGBA {
	r.Load(view)
	return r.Image()
}
