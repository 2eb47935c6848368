// Package trip provides structured error handling for the carousel.
//
// The carousel has no transient failures: everything that can go wrong is a
// programming or configuration mistake at the call site. A Trip records what
// was attempted, why it was refused and how serious it is, so callers can decide
// whether to keep going (a rejected jump) or give up (an empty deck).
package trip

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Trip types used across the module.
const (
	// TypePrecondition marks a call that violated an operation's precondition,
	// such as jumping to an index outside [0, N).
	TypePrecondition = "precondition"
	// TypeConfig marks invalid configuration or deck files.
	TypeConfig = "config"
	// TypeFrame marks failures rendering or writing still frames.
	TypeFrame = "frame"
	// TypeStage marks failures while driving a widget headlessly.
	TypeStage = "stage"
)

// Trip is an error with a category, severity and debugging context.
//
// Example usage:
//
//	err := NewTrip(TypePrecondition, "slide index out of range",
//	    Context{"index": 7, "count": 6})
//
//	if err.CanRecover() {
//	    // ignore the request and carry on
//	}
type Trip struct {
	Type      string    // Error category
	Message   string    // Human-readable description
	Context   Context   // Additional debugging information
	Timestamp time.Time // When the error occurred
	Severity  Severity  // How serious this error is
}

// Context carries the values involved in a trip.
type Context map[string]interface{}

// Severity indicates how serious a trip is and how it should be handled.
type Severity int

const (
	// Stumble is a refused request that leaves state untouched.
	// Examples: a jump to a missing slide, a command after Close.
	Stumble Severity = iota

	// Error is a failure the caller has to handle.
	// Examples: unreadable deck file, bad config value.
	Error

	// Fall means the component cannot exist in this configuration.
	// Examples: mounting with an empty deck.
	Fall
)

func (s Severity) String() string {
	switch s {
	case Stumble:
		return "stumble"
	case Error:
		return "error"
	case Fall:
		return "fall"
	default:
		return "unknown"
	}
}

// NewTrip creates a trip with Error severity and the current timestamp.
func NewTrip(errorType, message string, context Context) *Trip {
	return &Trip{
		Type:      errorType,
		Message:   message,
		Context:   context,
		Timestamp: time.Now(),
		Severity:  Error,
	}
}

// NewStumble creates a trip with Stumble severity.
func NewStumble(errorType, message string, context Context) *Trip {
	return NewTrip(errorType, message, context).WithSeverity(Stumble)
}

// NewFall creates a trip with Fall severity.
func NewFall(errorType, message string, context Context) *Trip {
	return NewTrip(errorType, message, context).WithSeverity(Fall)
}

// Wrap converts err into a trip of the given type. The original error is kept
// under the "cause" context key and is reachable through errors.Unwrap.
func Wrap(errorType string, err error, context Context) *Trip {
	if err == nil {
		return nil
	}
	if context == nil {
		context = Context{}
	}
	context["cause"] = err
	return NewTrip(errorType, err.Error(), context)
}

// WithSeverity sets the severity level for this trip.
func (t *Trip) WithSeverity(severity Severity) *Trip {
	t.Severity = severity
	return t
}

// Error implements the error interface.
func (t *Trip) Error() string {
	return fmt.Sprintf("[%s:%s] %s", t.Type, t.Severity, t.Message)
}

// Unwrap returns the wrapped cause, if any.
func (t *Trip) Unwrap() error {
	if cause, ok := t.Context["cause"].(error); ok {
		return cause
	}
	return nil
}

// CanRecover reports whether the caller may carry on as if nothing happened.
func (t *Trip) CanRecover() bool {
	return t.Severity == Stumble
}

// IsFall reports whether the trip is fatal for the component.
func (t *Trip) IsFall() bool {
	return t.Severity == Fall
}

// GetContext returns a specific context value if it exists.
func (t *Trip) GetContext(key string) (interface{}, bool) {
	if t.Context == nil {
		return nil, false
	}
	val, exists := t.Context[key]
	return val, exists
}

// DetailedString returns the trip with its context, keys in sorted order.
func (t *Trip) DetailedString() string {
	var details strings.Builder

	details.WriteString(t.Error())
	details.WriteString(fmt.Sprintf("\n  Time: %s", t.Timestamp.Format("15:04:05.000")))

	if len(t.Context) > 0 {
		keys := make([]string, 0, len(t.Context))
		for key := range t.Context {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		details.WriteString("\n  Context:")
		for _, key := range keys {
			details.WriteString(fmt.Sprintf("\n    %s: %v", key, t.Context[key]))
		}
	}

	return details.String()
}

// IsType reports whether err is, or wraps, a trip of the given type.
func IsType(err error, errorType string) bool {
	var t *Trip
	if errors.As(err, &t) {
		return t.Type == errorType
	}
	return false
}

// Handler collects trips raised by one component.
//
// Stumbles are kept apart from real errors: a carousel that refuses a few
// out-of-range jumps is still healthy, one that was mounted without slides is not.
type Handler struct {
	component string
	trips     []*Trip
	stumbles  []*Trip
	last      *Trip
	policy    *Policy
}

// Policy decides when a component should stop.
type Policy struct {
	// StopOnFall stops the component as soon as a fall is recorded.
	StopOnFall bool

	// MaxStumbles is the number of stumbles tolerated before giving up (0 = unlimited).
	MaxStumbles int
}

// DefaultPolicy stops on falls and tolerates any number of stumbles.
func DefaultPolicy() *Policy {
	return &Policy{
		StopOnFall:  true,
		MaxStumbles: 0,
	}
}

// NewHandler creates a handler for a specific component.
func NewHandler(component string, policy *Policy) *Handler {
	if policy == nil {
		policy = DefaultPolicy()
	}

	return &Handler{
		component: component,
		trips:     make([]*Trip, 0),
		stumbles:  make([]*Trip, 0),
		policy:    policy,
	}
}

// Record adds a trip to the handler.
func (h *Handler) Record(trip *Trip) {
	if trip == nil {
		return
	}
	h.last = trip
	if trip.Severity == Stumble {
		h.stumbles = append(h.stumbles, trip)
	} else {
		h.trips = append(h.trips, trip)
	}
}

// ShouldContinue reports whether the component should keep running.
func (h *Handler) ShouldContinue() bool {
	if h.policy.StopOnFall {
		for _, trip := range h.trips {
			if trip.IsFall() {
				return false
			}
		}
	}

	if h.policy.MaxStumbles > 0 && len(h.stumbles) > h.policy.MaxStumbles {
		return false
	}

	return true
}

// HasTrips returns true if any non-stumble trips have been recorded.
func (h *Handler) HasTrips() bool {
	return len(h.trips) > 0
}

// HasStumbles returns true if any stumbles have been recorded.
func (h *Handler) HasStumbles() bool {
	return len(h.stumbles) > 0
}

// Trips returns all recorded non-stumble trips.
func (h *Handler) Trips() []*Trip {
	return h.trips
}

// Stumbles returns all recorded stumbles.
func (h *Handler) Stumbles() []*Trip {
	return h.stumbles
}

// Last returns the most recently recorded trip of any severity.
func (h *Handler) Last() *Trip {
	return h.last
}

// Summary provides a one-line overview.
func (h *Handler) Summary() string {
	if len(h.trips) == 0 && len(h.stumbles) == 0 {
		return fmt.Sprintf("[%s] no issues", h.component)
	}

	return fmt.Sprintf("[%s] %d trips, %d stumbles",
		h.component, len(h.trips), len(h.stumbles))
}

// DetailedReport lists every recorded trip.
func (h *Handler) DetailedReport() string {
	var report strings.Builder

	report.WriteString(fmt.Sprintf("=== %s ===\n", h.component))
	report.WriteString(h.Summary() + "\n")

	if len(h.trips) > 0 {
		report.WriteString("\nTrips:\n")
		for i, trip := range h.trips {
			report.WriteString(fmt.Sprintf("%d. %s\n", i+1, trip.DetailedString()))
		}
	}

	if len(h.stumbles) > 0 {
		report.WriteString("\nStumbles:\n")
		for i, stumble := range h.stumbles {
			report.WriteString(fmt.Sprintf("%d. %s\n", i+1, stumble.DetailedString()))
		}
	}

	return report.String()
}
