package goa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/reactome/goa-release/internal/gaf"
	"github.com/reactome/goa-release/internal/graph"
	"github.com/reactome/goa-release/internal/models"
)

// ErrorPolicy decides what a failing event does to the run.
type ErrorPolicy string

const (
	// PolicyAbort stops the run at the first failing event.
	PolicyAbort ErrorPolicy = "abort"
	// PolicySkip logs the failing event, counts it and continues.
	PolicySkip ErrorPolicy = "skip"
)

// IsValid returns true if the policy is recognized.
func (p ErrorPolicy) IsValid() bool {
	return p == PolicyAbort || p == PolicySkip
}

// AnnotationWriter renders the final annotation file and returns its local path.
type AnnotationWriter interface {
	Write(ctx context.Context, lines []string, dates gaf.DateLookup) (string, error)
}

// Publisher moves a written file into the release output and returns where it landed.
type Publisher interface {
	Publish(ctx context.Context, path string) (string, error)
}

// Options configure a Generator.
type Options struct {
	Workers  int
	OnError  ErrorPolicy
	DryRun   bool
	Recorder Recorder
}

// Report summarizes a generation run.
type Report struct {
	RunID    string         `json:"run_id"`
	Events   int            `json:"events"`
	Curated  int            `json:"curated"`
	Inferred int            `json:"inferred"`
	Failed   int            `json:"failed"`
	Lines    int            `json:"lines"`
	ByAspect map[Aspect]int `json:"by_aspect"`
	Artifact string         `json:"artifact,omitempty"`
	Duration time.Duration  `json:"duration"`
}

// Generator drives one GO annotation file generation over every curated reaction-like event.
type Generator struct {
	store       graph.Store
	classifiers []Classifier
	writer      AnnotationWriter
	publisher   Publisher
	opts        Options
	logger      *slog.Logger
}

// NewGenerator wires the three classifiers to st. writer and publisher may be nil for
// dry runs and single-event annotation.
func NewGenerator(st graph.Store, writer AnnotationWriter, publisher Publisher, opts Options, logger *slog.Logger) *Generator {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.OnError == "" {
		opts.OnError = PolicyAbort
	}
	if opts.Recorder == nil {
		opts.Recorder = NopRecorder{}
	}
	return &Generator{
		store: st,
		classifiers: []Classifier{
			NewCellularComponentClassifier(st, opts.Recorder, logger),
			NewMolecularFunctionClassifier(st, opts.Recorder, logger),
			NewBiologicalProcessClassifier(st, opts.Recorder, logger),
		},
		writer:    writer,
		publisher: publisher,
		opts:      opts,
		logger:    logger,
	}
}

// tally counts event outcomes across workers.
type tally struct {
	mu       sync.Mutex
	curated  int
	inferred int
	failed   int
}

func (t *tally) add(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch status {
	case StatusCurated:
		t.curated++
	case StatusInferred:
		t.inferred++
	case StatusFailed:
		t.failed++
	}
}

// Run annotates every curated reaction-like event, then writes and publishes the file.
func (g *Generator) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{RunID: uuid.NewString(), ByAspect: make(map[Aspect]int)}
	logger := g.logger.With("run_id", report.RunID)

	events, err := g.store.FetchInstancesByClass(ctx, models.ClassReactionlikeEvent)
	if err != nil {
		return nil, fmt.Errorf("fetching reaction-like events: %w", err)
	}
	report.Events = len(events)
	logger.Info("generating GO annotations", "events", len(events), "workers", g.opts.Workers, "on_event_error", g.opts.OnError)

	lines := newSyncLineSet()
	dates := NewReconciler()
	counts := &tally{}

	process := func(ctx context.Context, event models.Instance) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		// A failed event contributes neither lines nor dates.
		eventDates := NewReconciler()
		status, set, err := g.processEvent(ctx, event, eventDates)
		if err != nil {
			if g.opts.OnError == PolicyAbort || errors.Is(err, graph.ErrStoreAccess) {
				return fmt.Errorf("annotating %s: %w", event, err)
			}
			logger.Error("skipping event after failure", "event", event, "error", err)
			status = StatusFailed
		} else {
			dates.Merge(eventDates)
		}
		lines.merge(set)
		counts.add(status)
		g.opts.Recorder.EventProcessed(status)
		return nil
	}

	if g.opts.Workers == 1 {
		for _, event := range events {
			if err := process(ctx, event); err != nil {
				return nil, err
			}
		}
	} else {
		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(g.opts.Workers)
		for _, event := range events {
			eg.Go(func() error { return process(egCtx, event) })
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}
	}

	report.Curated, report.Inferred, report.Failed = counts.curated, counts.inferred, counts.failed
	sorted := lines.sorted()
	report.Lines = len(sorted)
	for _, l := range sorted {
		report.ByAspect[AspectOf(l)]++
	}
	for aspect, n := range report.ByAspect {
		g.opts.Recorder.Annotated(aspect.Name(), n)
	}

	if g.opts.DryRun || g.writer == nil {
		report.Duration = time.Since(start)
		logger.Info("dry run, annotation file not written", "lines", report.Lines)
		return report, nil
	}

	path, err := g.writer.Write(ctx, sorted, dates)
	if err != nil {
		return nil, fmt.Errorf("writing annotation file: %w", err)
	}
	report.Artifact = path
	if g.publisher != nil {
		if report.Artifact, err = g.publisher.Publish(ctx, path); err != nil {
			return nil, fmt.Errorf("publishing annotation file: %w", err)
		}
	}

	report.Duration = time.Since(start)
	g.opts.Recorder.LinesWritten(report.Lines)
	g.opts.Recorder.RunDuration(report.Duration)
	logger.Info("GO annotation file generated",
		"artifact", report.Artifact,
		"lines", report.Lines,
		"curated", report.Curated,
		"inferred", report.Inferred,
		"failed", report.Failed,
		"duration", report.Duration,
	)
	return report, nil
}

// processEvent skips inferred events and runs every classifier over curated ones.
func (g *Generator) processEvent(ctx context.Context, event models.Instance, dates *Reconciler) (string, LineSet, error) {
	inferred, err := IsInferred(ctx, g.store, event)
	if err != nil {
		return "", nil, err
	}
	if inferred {
		g.logger.Debug("skipping inferred event", "event", event)
		return StatusInferred, nil, nil
	}

	lines := make(LineSet)
	for _, c := range g.classifiers {
		set, err := c.Process(ctx, event, dates)
		if err != nil {
			return "", nil, fmt.Errorf("%s: %w", c.Aspect().Name(), err)
		}
		lines.Merge(set)
	}
	return StatusCurated, lines, nil
}

// DatedLine is a canonical line and its reconciled date.
type DatedLine struct {
	Line string `json:"line"`
	Date int    `json:"date"`
}

// EventAnnotations is the result of annotating a single event.
type EventAnnotations struct {
	Event    models.Instance `json:"event"`
	Inferred bool            `json:"inferred"`
	Lines    []DatedLine     `json:"lines"`
}

// AnnotateEvent runs the classifiers over one event without writing anything.
func (g *Generator) AnnotateEvent(ctx context.Context, event models.Instance) (*EventAnnotations, error) {
	if !event.IsA(models.ClassReactionlikeEvent) {
		return nil, fmt.Errorf("%w: %s is not a ReactionlikeEvent", ErrInvalidArgument, event)
	}
	dates := NewReconciler()
	status, set, err := g.processEvent(ctx, event, dates)
	if err != nil {
		return nil, fmt.Errorf("annotating %s: %w", event, err)
	}

	out := &EventAnnotations{Event: event, Inferred: status == StatusInferred}
	for _, l := range set.Sorted() {
		d, _ := dates.Date(l)
		out.Lines = append(out.Lines, DatedLine{Line: l, Date: d})
	}
	return out, nil
}

// FindEvent returns the reaction-like event with the given DBID.
func (g *Generator) FindEvent(ctx context.Context, dbID int64) (models.Instance, error) {
	events, err := g.store.FetchInstancesByClass(ctx, models.ClassReactionlikeEvent)
	if err != nil {
		return models.Instance{}, fmt.Errorf("fetching reaction-like events: %w", err)
	}
	for _, e := range events {
		if e.DBID == dbID {
			return e, nil
		}
	}
	return models.Instance{}, fmt.Errorf("%w: no reaction-like event with dbId %d", ErrInvalidArgument, dbID)
}
