package stage

import (
	"fmt"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/teranos/carousel/trip"
)

// probeMsg asks the program goroutine to evaluate a condition on the live model.
// Sending one after a message also acts as a barrier: the reply arrives only
// after every earlier message has been applied.
type probeMsg struct {
	condition string
	reply     chan probeReply
}

// probeReply carries the sequence of the last published observation so the
// caller can wait for the sync goroutine to catch up.
type probeReply struct {
	holds    bool
	sequence int64
}

// stageModelWrapper keeps the director in sync with every update.
type stageModelWrapper struct {
	Stageable
	director *Director
}

func (w stageModelWrapper) Init() tea.Cmd {
	cmd := w.Stageable.Init()
	w.director.publish(w.Stageable)
	return cmd
}

func (w stageModelWrapper) Update(msg tea.Msg) (model tea.Model, cmd tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			w.director.handleModelPanic(r, msg)
			model, cmd = w, nil
		}
	}()

	if p, ok := msg.(probeMsg); ok {
		p.reply <- probeReply{
			holds:    w.Stageable.CheckCondition(p.condition),
			sequence: atomic.LoadInt64(&w.director.updateSeq),
		}
		return w, nil
	}

	next, cmd := w.Stageable.Update(msg)
	if next == nil {
		w.director.handleInvalidModelState("Update returned nil model", msg)
		return w, cmd
	}
	staged, ok := next.(Stageable)
	if !ok {
		w.director.handleInvalidModelState(fmt.Sprintf("Update returned %T, which cannot be staged", next), msg)
		return w, cmd
	}

	w.director.publish(staged)
	return stageModelWrapper{Stageable: staged, director: w.director}, cmd
}

func (d *Director) handleModelPanic(panicValue interface{}, msg tea.Msg) {
	d.captureErrorSnapshot("model_panic", fmt.Sprintf("panic: %v", panicValue))
	d.recordTrip(newStageTrip("model_panic", fmt.Sprintf("model panic during Update: %v", panicValue), map[string]interface{}{
		"panic_value": panicValue,
		"tea_msg":     fmt.Sprintf("%T: %+v", msg, msg),
		"model_type":  fmt.Sprintf("%T", d.model),
	}).WithSeverity(trip.Fall))
	d.cancel()
}

func (d *Director) handleInvalidModelState(reason string, msg tea.Msg) {
	d.captureErrorSnapshot("invalid_model_state", reason)
	d.recordTrip(newStageTrip("invalid_model_state", reason, map[string]interface{}{
		"tea_msg":    fmt.Sprintf("%T: %+v", msg, msg),
		"model_type": fmt.Sprintf("%T", d.model),
	}).WithSeverity(trip.Fall))
	d.cancel()
}

// captureErrorSnapshot stores the last good view with the error appended.
func (d *Director) captureErrorSnapshot(kind, message string) {
	obs := d.observed()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.snapshots = append(d.snapshots, Snapshot{
		Timestamp: time.Now(),
		View:      fmt.Sprintf("%s\n\n=== %s ===\n%s", obs.view, kind, message),
		Slide:     obs.slide,
		Mode:      "error",
	})
}
