package frame

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"github.com/teranos/carousel/trip"
)

// Supervisor compares captured frames with baselines.
type Supervisor struct {
	baselineDir string
	currentDir  string
	tolerance   float64 // fraction of differing pixels allowed
	format      Format
}

// NewSupervisor creates a supervisor with a 5% tolerance over PNG files.
func NewSupervisor(baselineDir, currentDir string) *Supervisor {
	return &Supervisor{
		baselineDir: baselineDir,
		currentDir:  currentDir,
		tolerance:   0.05,
		format:      PNG,
	}
}

// WithTolerance sets the allowed fraction of differing pixels.
func (s *Supervisor) WithTolerance(tolerance float64) *Supervisor {
	s.tolerance = tolerance
	return s
}

// WithFormat sets the file format of baselines and captures.
func (s *Supervisor) WithFormat(f Format) *Supervisor {
	s.format = f
	return s
}

func (s *Supervisor) baselinePath(name string) string {
	return filepath.Join(s.baselineDir, name+s.format.Ext())
}

func (s *Supervisor) currentPath(name string) string {
	return filepath.Join(s.currentDir, name+s.format.Ext())
}

// Validate compares the capture called name with its baseline. When they differ
// beyond the tolerance a highlighted diff image is written next to the capture.
func (s *Supervisor) Validate(name string) error {
	baseline, err := Load(s.baselinePath(name))
	if err != nil {
		return fmt.Errorf("failed to load baseline: %w", err)
	}
	current, err := Load(s.currentPath(name))
	if err != nil {
		return fmt.Errorf("failed to load current: %w", err)
	}

	difference := Difference(baseline, current)
	if difference <= s.tolerance {
		return nil
	}

	ctx := trip.Context{
		"frame":      name,
		"difference": difference,
		"tolerance":  s.tolerance,
	}
	if baseline.Bounds() == current.Bounds() {
		diffPath := filepath.Join(s.currentDir, name+"_diff"+s.format.Ext())
		if err := WriteFile(diffPath, DiffImage(baseline, current), s.format); err == nil {
			ctx["diff"] = diffPath
		}
	}
	return trip.NewTrip(trip.TypeFrame, fmt.Sprintf("visual regression detected: %.2f%% difference (tolerance: %.2f%%)",
		difference*100, s.tolerance*100), ctx)
}

// SetBaseline copies a capture into the baseline directory under name.
func (s *Supervisor) SetBaseline(name, capturePath string) error {
	if err := os.MkdirAll(s.baselineDir, 0o755); err != nil {
		return fmt.Errorf("failed to create baseline directory: %w", err)
	}

	in, err := os.Open(capturePath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(s.baselinePath(name))
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Difference returns the fraction of pixels that differ. Images of different
// sizes are entirely different.
func Difference(a, b image.Image) float64 {
	ba, bb := a.Bounds(), b.Bounds()
	if ba.Dx() != bb.Dx() || ba.Dy() != bb.Dy() {
		return 1
	}
	total := ba.Dx() * ba.Dy()
	if total == 0 {
		return 0
	}

	different := 0
	for y := 0; y < ba.Dy(); y++ {
		for x := 0; x < ba.Dx(); x++ {
			if !sameColor(a.At(ba.Min.X+x, ba.Min.Y+y), b.At(bb.Min.X+x, bb.Min.Y+y)) {
				different++
			}
		}
	}
	return float64(different) / float64(total)
}

// DiffImage paints differing pixels red over a dimmed copy of a.
func DiffImage(a, b image.Image) *image.RGBA {
	bounds := a.Bounds()
	diff := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	other := b.Bounds()

	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			ca := a.At(bounds.Min.X+x, bounds.Min.Y+y)
			if sameColor(ca, b.At(other.Min.X+x, other.Min.Y+y)) {
				r, g, bl, al := ca.RGBA()
				diff.Set(x, y, color.RGBA{uint8(r >> 9), uint8(g >> 9), uint8(bl >> 9), uint8(al >> 8)})
			} else {
				diff.Set(x, y, color.RGBA{255, 0, 0, 255})
			}
		}
	}
	return diff
}

func sameColor(a, b color.Color) bool {
	r1, g1, b1, a1 := a.RGBA()
	r2, g2, b2, a2 := b.RGBA()
	return r1 == r2 && g1 == g2 && b1 == b2 && a1 == a2
}
