package goa

import "time"

// Event statuses reported to a Recorder.
const (
	StatusCurated  = "curated"
	StatusInferred = "inferred"
	StatusFailed   = "failed"
)

// Recorder receives run statistics. internal/metrics provides the Prometheus implementation.
type Recorder interface {
	EventProcessed(status string)
	Disqualified(reason string)
	Annotated(aspect string, n int)
	LinesWritten(n int)
	RunDuration(d time.Duration)
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) EventProcessed(string)     {}
func (NopRecorder) Disqualified(string)       {}
func (NopRecorder) Annotated(string, int)     {}
func (NopRecorder) LinesWritten(int)          {}
func (NopRecorder) RunDuration(time.Duration) {}
