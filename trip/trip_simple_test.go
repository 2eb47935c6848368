package trip

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestTrip_Core tests core Trip functionality
func TestTrip_Core(t *testing.T) {
	context := Context{
		"index": 9,
		"count": 6,
	}

	trip := NewTrip(TypePrecondition, "slide index out of range", context)

	assert.Equal(t, TypePrecondition, trip.Type)
	assert.Equal(t, "slide index out of range", trip.Message)
	assert.Equal(t, context, trip.Context)
	assert.Equal(t, Error, trip.Severity)
	assert.WithinDuration(t, time.Now(), trip.Timestamp, time.Second)

	assert.Equal(t, "[precondition:error] slide index out of range", trip.Error())
}

// TestTrip_Severities tests different severity levels
func TestTrip_Severities(t *testing.T) {
	stumble := NewStumble(TypePrecondition, "jump rejected", nil)
	error_ := NewTrip(TypeConfig, "bad interval", nil)
	fall := NewFall(TypePrecondition, "empty deck", nil)

	assert.Equal(t, Stumble, stumble.Severity)
	assert.Equal(t, Error, error_.Severity)
	assert.Equal(t, Fall, fall.Severity)

	assert.True(t, stumble.CanRecover())
	assert.False(t, error_.CanRecover())
	assert.False(t, fall.CanRecover())

	assert.False(t, stumble.IsFall())
	assert.False(t, error_.IsFall())
	assert.True(t, fall.IsFall())
}

// TestTrip_Methods tests trip methods
func TestTrip_Methods(t *testing.T) {
	trip := NewTrip("test", "Test message", Context{"key": "value", "another": 1})

	trip.WithSeverity(Fall)
	assert.Equal(t, Fall, trip.Severity)

	val, exists := trip.GetContext("key")
	assert.True(t, exists)
	assert.Equal(t, "value", val)

	_, exists = trip.GetContext("missing")
	assert.False(t, exists)

	detailed := trip.DetailedString()
	assert.Contains(t, detailed, "Test message")
	assert.Contains(t, detailed, "key: value")
	assert.Less(t, strings.Index(detailed, "another"), strings.Index(detailed, "key:"), "context keys are sorted")
}

func TestTrip_WrapAndType(t *testing.T) {
	assert.Nil(t, Wrap(TypeConfig, nil, nil))

	wrapped := Wrap(TypeConfig, io.ErrUnexpectedEOF, Context{"path": "deck.yaml"})
	assert.True(t, errors.Is(wrapped, io.ErrUnexpectedEOF))
	assert.Equal(t, "deck.yaml", wrapped.Context["path"])

	outer := fmt.Errorf("load: %w", wrapped)
	assert.True(t, IsType(outer, TypeConfig))
	assert.False(t, IsType(outer, TypePrecondition))
	assert.False(t, IsType(io.EOF, TypeConfig))
}

// TestHandler_Basic tests basic Handler functionality
func TestHandler_Basic(t *testing.T) {
	handler := NewHandler("carousel", DefaultPolicy())

	assert.True(t, handler.ShouldContinue())
	assert.Contains(t, handler.Summary(), "no issues")

	stumble := NewStumble(TypePrecondition, "Minor issue", nil)
	handler.Record(stumble)
	assert.True(t, handler.ShouldContinue())
	assert.True(t, handler.HasStumbles())
	assert.False(t, handler.HasTrips())
	assert.Same(t, stumble, handler.Last())

	fall := NewFall(TypePrecondition, "Critical error", nil)
	handler.Record(fall)
	assert.False(t, handler.ShouldContinue())
	assert.Same(t, fall, handler.Last())

	handler.Record(nil)
	assert.Len(t, handler.Trips(), 1)
	assert.Len(t, handler.Stumbles(), 1)

	report := handler.DetailedReport()
	assert.Contains(t, report, "1 trips, 1 stumbles")
	assert.Contains(t, report, "Critical error")
}

func TestHandler_MaxStumbles(t *testing.T) {
	handler := NewHandler("carousel", &Policy{MaxStumbles: 2})

	for i := 0; i < 2; i++ {
		handler.Record(NewStumble(TypePrecondition, "rejected", nil))
	}
	assert.True(t, handler.ShouldContinue())

	handler.Record(NewStumble(TypePrecondition, "rejected", nil))
	assert.False(t, handler.ShouldContinue())
}

// TestPolicy_Default tests default policy
func TestPolicy_Default(t *testing.T) {
	policy := DefaultPolicy()

	assert.True(t, policy.StopOnFall)
	assert.Equal(t, 0, policy.MaxStumbles)

	assert.NotNil(t, NewHandler("nil-policy", nil).policy)
}

// TestSeverity_String tests severity string representation
func TestSeverity_String(t *testing.T) {
	assert.Equal(t, "stumble", Stumble.String())
	assert.Equal(t, "error", Error.String())
	assert.Equal(t, "fall", Fall.String())
	assert.Equal(t, "unknown", Severity(42).String())
}
