package walk

import (
	"context"
	"time"
)

// Event names a point in the life of a walk.
type Event string

const (
	// EventWalkStart fires once the seed has been resolved.
	EventWalkStart Event = "walk_start"

	// EventStep fires after every visited artist.
	EventStep Event = "step"

	// EventWalkEnd fires when the path reached the requested length.
	EventWalkEnd Event = "walk_end"

	// EventWalkError fires when a walk aborts.
	EventWalkError Event = "walk_error"
)

// StepInfo describes one visit.
type StepInfo struct {
	// Index is the zero based position of Artist in the path.
	Index int

	// Artist is the visited artist.
	Artist string

	// Releases is the number of releases the catalog returned for Artist.
	Releases int

	// Discovered lists the artists first seen on this step.
	Discovered []string

	// Candidates is the list the next artist was drawn from.
	Candidates []string

	// Next is the drawn candidate.
	Next string

	// Duration is the time spent on the catalog request.
	Duration time.Duration
}

// EventData is passed to listeners with every event.
type EventData struct {
	Request Request
	Seed    string
	Step    *StepInfo
	Path    []string
	Elapsed time.Duration
	Err     error
}

// Listener receives walk events. Listeners run synchronously on the walk goroutine.
type Listener interface {
	OnWalkEvent(ctx context.Context, event Event, data EventData)
}

// ListenerFunc is a function adapter for Listener
type ListenerFunc func(ctx context.Context, event Event, data EventData)

// OnWalkEvent implements the Listener interface
func (f ListenerFunc) OnWalkEvent(ctx context.Context, event Event, data EventData) {
	f(ctx, event, data)
}
