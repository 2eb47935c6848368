// Package stage drives a bubbletea carousel headlessly for integration tests.
//
// The director runs the model inside a real tea.Program with no terminal, sends
// it keyboard, mouse and focus messages, and lets tests wait for and assert on
// what the model renders.
//
// Basic usage:
//
//	m, _ := carousel.New(carousel.DefaultDeck())
//
//	result := stage.New(t, m).
//		WithTimeout(5 * time.Second).
//		Start().
//		PressRight().
//		WaitForSlide(1).
//		AssertMode("paused").
//		AssertViewContains("Digital Horizons").
//		Stop()
//
//	assert.True(t, result.Success)
//
// For frame capture:
//
//	stage.NewOperator(t, m, "frames/", frame.PNG).
//		Start().
//		Capture("initial").
//		Stop()
package stage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/teranos/carousel/trip"
)

// Stageable is a tea.Model the director can inspect.
type Stageable interface {
	tea.Model
	// CurrentSlide returns the active slide index.
	CurrentSlide() int
	// CurrentMode returns a short state name such as "playing" or "paused".
	CurrentMode() string
	// CheckCondition evaluates a named predicate for waits and assertions.
	CheckCondition(condition string) bool
}

// Closer is implemented by models that own resources. Close is called once the
// program has exited.
type Closer interface {
	Close()
}

// observation is what the director knows about the model after one update.
// It is computed on the program goroutine so readers never touch the live model.
type observation struct {
	view      string
	slide     int
	mode      string
	sequence  int64
	timestamp time.Time
}

// Action records one step performed by the director.
type Action struct {
	Timestamp time.Time
	Type      string      // "keypress", "mouse", "wait", "assertion", "capture"
	Details   interface{} // action specific
}

// Snapshot is the observed state at one moment.
type Snapshot struct {
	Timestamp time.Time
	View      string
	Slide     int
	Mode      string
}

// Result is returned by Stop.
type Result struct {
	Actions      []Action
	Snapshots    []Snapshot
	Success      bool
	Duration     time.Duration
	ErrorMessage string
	Error        error
	TripReport   string
}

// Config configures a Director.
type Config struct {
	// Timeout bounds the whole session and every wait.
	Timeout time.Duration
	// TypingSpeed is the delay between runes sent by Type.
	TypingSpeed time.Duration
	// CaptureViews records a snapshot after every interaction.
	CaptureViews bool
	// Width and Height are sent as the initial window size.
	Width, Height int
}

// DefaultConfig returns a 10 second timeout, no typing delay and an 80x24 window.
func DefaultConfig() Config {
	return Config{
		Timeout:      10 * time.Second,
		CaptureViews: true,
		Width:        80,
		Height:       24,
	}
}

// Director runs one staged session.
type Director struct {
	t       testing.TB
	model   Stageable
	program *tea.Program
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	config  Config
	started bool
	began   time.Time

	mu          sync.Mutex
	actions     []Action
	snapshots   []Snapshot
	tripHandler *trip.Handler
	lastTrip    *trip.Trip
	failed      bool

	observations chan observation
	obsMu        sync.RWMutex
	latest       observation
	latestModel  Stageable

	updateSeq        int64 // atomic
	lastProcessedSeq int64 // atomic
	updatesSent      int64 // atomic
	bufferOverflows  int64 // atomic
	duplicates       int64 // atomic
}

// New creates a director with DefaultConfig.
func New(t testing.TB, model Stageable) *Director {
	return NewWithConfig(t, model, DefaultConfig())
}

// NewWithConfig creates a director with cfg.
func NewWithConfig(t testing.TB, model Stageable, cfg Config) *Director {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)

	d := &Director{
		t:            t,
		model:        model,
		ctx:          ctx,
		cancel:       cancel,
		done:         make(chan struct{}),
		config:       cfg,
		tripHandler:  trip.NewHandler("stage", trip.DefaultPolicy()),
		observations: make(chan observation, 64),
		latestModel:  model,
	}
	go d.syncObservations()
	return d
}

// syncObservations applies observations in sequence order, dropping stale ones.
func (d *Director) syncObservations() {
	for {
		select {
		case obs := <-d.observations:
			d.store(obs)
		case <-d.ctx.Done():
			return
		}
	}
}

func (d *Director) store(obs observation) {
	d.obsMu.Lock()
	defer d.obsMu.Unlock()

	if obs.sequence <= atomic.LoadInt64(&d.lastProcessedSeq) {
		atomic.AddInt64(&d.duplicates, 1)
		return
	}
	d.latest = obs
	atomic.StoreInt64(&d.lastProcessedSeq, obs.sequence)
}

// publish records the model's state. It runs on the program goroutine.
func (d *Director) publish(m Stageable) {
	obs := observation{
		view:      m.View(),
		slide:     m.CurrentSlide(),
		mode:      m.CurrentMode(),
		sequence:  atomic.AddInt64(&d.updateSeq, 1),
		timestamp: time.Now(),
	}

	d.obsMu.Lock()
	d.latestModel = m
	d.obsMu.Unlock()

	select {
	case d.observations <- obs:
		atomic.AddInt64(&d.updatesSent, 1)
	default:
		atomic.AddInt64(&d.bufferOverflows, 1)
		d.store(obs)
	}
}

// WithTimeout replaces the session timeout. It is ignored after Start.
func (d *Director) WithTimeout(timeout time.Duration) *Director {
	if d.started {
		d.t.Logf("cannot change timeout after start, ignoring WithTimeout(%v)", timeout)
		return d
	}
	d.cancel()
	d.ctx, d.cancel = context.WithTimeout(context.Background(), timeout)
	d.config.Timeout = timeout
	go d.syncObservations()
	return d
}

// WithViewCapture enables or disables snapshots. It is ignored after Start.
func (d *Director) WithViewCapture(enabled bool) *Director {
	if d.started {
		return d
	}
	d.config.CaptureViews = enabled
	return d
}

// Start runs the program and waits until the model has rendered once.
func (d *Director) Start() *Director {
	if d.started {
		d.t.Logf("director already started")
		return d
	}
	d.began = time.Now()

	d.program = tea.NewProgram(stageModelWrapper{Stageable: d.model, director: d},
		tea.WithoutRenderer(),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
		tea.WithoutSignalHandler(),
		tea.WithContext(d.ctx),
	)

	go func() {
		defer close(d.done)
		defer func() {
			if r := recover(); r != nil {
				d.t.Logf("program goroutine panicked: %v", r)
			}
		}()
		if _, err := d.program.Run(); err != nil && d.ctx.Err() == nil {
			d.t.Logf("program exited: %v", err)
		}
	}()

	if err := d.waitForProgramReady(); err != nil {
		d.recordTrip(newStageTrip("startup_failed", err.Error(), nil).WithSeverity(trip.Fall))
		return d
	}
	d.started = true

	if d.config.Width > 0 && d.config.Height > 0 {
		d.sendMessage(tea.WindowSizeMsg{Width: d.config.Width, Height: d.config.Height})
	}
	d.captureSnapshot()
	return d
}

// Stop quits the program, closes the model and returns the result.
func (d *Director) Stop() *Result {
	if d.started && d.config.CaptureViews {
		d.captureSnapshot()
	}

	if d.program != nil {
		d.program.Quit()
		select {
		case <-d.done:
		case <-time.After(time.Second):
			d.program.Kill()
			<-d.done
		}
	}
	d.cancel()

	d.obsMu.RLock()
	model := d.latestModel
	d.obsMu.RUnlock()
	if c, ok := model.(Closer); ok {
		c.Close()
	}

	success := !d.HasFailed()

	d.mu.Lock()
	defer d.mu.Unlock()
	result := &Result{
		Actions:   d.actions,
		Snapshots: d.snapshots,
		Success:   success,
		Duration:  time.Since(d.began),
	}
	if d.lastTrip != nil {
		result.ErrorMessage = fmt.Sprintf("[%s] %s", strings.ToLower(d.lastTrip.Type), d.lastTrip.Message)
		result.Error = d.lastTrip
		result.TripReport = d.tripHandler.DetailedReport()
	}
	return result
}

func (d *Director) waitForProgramReady() error {
	deadline := time.NewTimer(d.config.Timeout)
	defer deadline.Stop()

	for {
		select {
		case <-deadline.C:
			return fmt.Errorf("timeout waiting for program to be ready")
		case <-d.ctx.Done():
			return fmt.Errorf("context cancelled while waiting for program")
		case <-d.done:
			return fmt.Errorf("program exited before it was ready")
		default:
			if atomic.LoadInt64(&d.lastProcessedSeq) > 0 && d.currentView() != "" {
				return nil
			}
			time.Sleep(5 * time.Millisecond)
		}
	}
}

func (d *Director) observed() observation {
	d.obsMu.RLock()
	defer d.obsMu.RUnlock()
	return d.latest
}

func (d *Director) currentView() string { return d.observed().view }
func (d *Director) currentMode() string { return d.observed().mode }
func (d *Director) currentSlide() int   { return d.observed().slide }

// View returns the most recently observed view.
func (d *Director) View() string { return d.currentView() }

// Slide returns the most recently observed slide index.
func (d *Director) Slide() int { return d.currentSlide() }

// GetSynchronizationStats reports observation delivery counters.
func (d *Director) GetSynchronizationStats() map[string]int64 {
	return map[string]int64{
		"updates_generated": atomic.LoadInt64(&d.updateSeq),
		"updates_sent":      atomic.LoadInt64(&d.updatesSent),
		"updates_processed": atomic.LoadInt64(&d.lastProcessedSeq),
		"buffer_overflows":  atomic.LoadInt64(&d.bufferOverflows),
		"duplicate_updates": atomic.LoadInt64(&d.duplicates),
	}
}

// HasFailed reports whether a non-recoverable trip was recorded.
func (d *Director) HasFailed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.failed || !d.tripHandler.ShouldContinue()
}

// GetTripHandler returns the handler holding every recorded trip.
func (d *Director) GetTripHandler() *trip.Handler {
	return d.tripHandler
}

func newStageTrip(kind, message string, ctx trip.Context) *trip.Trip {
	if ctx == nil {
		ctx = trip.Context{}
	}
	ctx["kind"] = kind
	return trip.NewTrip(trip.TypeStage, message, ctx)
}

func (d *Director) recordTrip(t *trip.Trip) {
	d.mu.Lock()
	d.tripHandler.Record(t)
	d.lastTrip = t
	if !t.CanRecover() {
		d.failed = true
	}
	d.mu.Unlock()

	d.t.Helper()
	if t.IsFall() {
		d.t.Error(t)
	} else {
		d.t.Log(t.DetailedString())
	}
}

func (d *Director) recordAction(kind string, details interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.actions = append(d.actions, Action{Timestamp: time.Now(), Type: kind, Details: details})
}

func (d *Director) captureSnapshot() {
	if !d.config.CaptureViews {
		return
	}
	obs := d.observed()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.snapshots = append(d.snapshots, Snapshot{
		Timestamp: time.Now(),
		View:      obs.view,
		Slide:     obs.slide,
		Mode:      obs.mode,
	})
}
