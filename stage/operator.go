package stage

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/teranos/carousel/frame"
	"github.com/teranos/carousel/trip"
)

// Operator is a Director that can also capture the view as image frames.
type Operator struct {
	*Director
	renderer   *frame.Renderer
	format     frame.Format
	frameCount int
	filmDir    string
	frames     []string
}

// NewOperator creates an operator writing frames of the given format into outputDir.
func NewOperator(t testing.TB, model Stageable, outputDir string, format frame.Format) *Operator {
	return &Operator{
		Director: New(t, model),
		renderer: frame.NewRenderer(frame.DefaultConfig()),
		format:   format,
		filmDir:  outputDir,
	}
}

// WithFrameConfig changes the frame geometry and colours.
func (op *Operator) WithFrameConfig(cfg frame.Config) *Operator {
	op.renderer = frame.NewRenderer(cfg)
	return op
}

// WithTimeout wraps the base method to return *Operator.
func (op *Operator) WithTimeout(timeout time.Duration) *Operator {
	op.Director.WithTimeout(timeout)
	return op
}

// Start wraps the base method to return *Operator.
func (op *Operator) Start() *Operator {
	op.Director.Start()
	return op
}

// Capture renders the current view and writes it as frame_NNN_label.<ext>.
func (op *Operator) Capture(label string) *Operator {
	if !op.ready("Capture") {
		return op
	}
	op.sync()

	path := filepath.Join(op.filmDir, fmt.Sprintf("frame_%03d_%s%s", op.frameCount, label, op.format.Ext()))
	img := op.renderer.Render(op.currentView())
	if err := frame.WriteFile(path, img, op.format); err != nil {
		op.recordTrip(trip.Wrap(trip.TypeFrame, err, trip.Context{"label": label}).WithSeverity(trip.Stumble))
		return op
	}

	op.frameCount++
	op.frames = append(op.frames, path)
	op.recordAction("capture", path)
	return op
}

// PressRightWithCapture advances and captures the result.
func (op *Operator) PressRightWithCapture(label string) *Operator {
	op.PressRight()
	return op.Capture(label)
}

// PressLeftWithCapture goes back and captures the result.
func (op *Operator) PressLeftWithCapture(label string) *Operator {
	op.PressLeft()
	return op.Capture(label)
}

// WaitForSlideWithCapture waits for slide index and captures it.
func (op *Operator) WaitForSlideWithCapture(index int, label string) *Operator {
	op.WaitForSlide(index)
	return op.Capture(label)
}

// Frames returns the paths written so far.
func (op *Operator) Frames() []string {
	return op.frames
}
