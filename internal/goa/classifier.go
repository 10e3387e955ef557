package goa

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/reactome/goa-release/internal/graph"
	"github.com/reactome/goa-release/internal/models"
)

// Classifier turns one reaction-like event into annotation lines of a single aspect.
// Every line it returns has been dated in dates.
type Classifier interface {
	Aspect() Aspect
	Process(ctx context.Context, event models.Instance, dates *Reconciler) (LineSet, error)
}

// LineSet is a set of canonical lines.
type LineSet map[string]struct{}

// Add inserts line.
func (s LineSet) Add(line string) {
	s[line] = struct{}{}
}

// Has reports whether line is in the set.
func (s LineSet) Has(line string) bool {
	_, ok := s[line]
	return ok
}

// Merge adds every line of other.
func (s LineSet) Merge(other LineSet) {
	for l := range other {
		s[l] = struct{}{}
	}
}

// Sorted returns the lines in lexicographic order.
func (s LineSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for l := range s {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// syncLineSet is the run-wide accumulator shared by event workers.
type syncLineSet struct {
	mu    sync.Mutex
	lines LineSet
}

func newSyncLineSet() *syncLineSet {
	return &syncLineSet{lines: make(LineSet)}
}

func (s *syncLineSet) merge(other LineSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines.Merge(other)
}

func (s *syncLineSet) sorted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lines.Sorted()
}

// AspectOf returns the aspect column of a canonical line.
func AspectOf(line string) Aspect {
	fields := strings.Split(line, "\t")
	if len(fields) < 9 {
		return ""
	}
	return Aspect(fields[8])
}

// deps is what every classifier reads through.
type deps struct {
	store    graph.Store
	resolver *Resolver
	builder  *LineBuilder
	recorder Recorder
	logger   *slog.Logger
}

func newDeps(st graph.Store, rec Recorder, logger *slog.Logger) deps {
	if rec == nil {
		rec = NopRecorder{}
	}
	return deps{
		store:    st,
		resolver: NewResolver(st, logger),
		builder:  NewLineBuilder(st),
		recorder: rec,
		logger:   logger,
	}
}

// disqualified logs and counts a skipped protein.
func (d deps) disqualified(aspect Aspect, protein models.Instance, reason string) {
	d.logger.Warn("protein disqualified, skipping GO annotation",
		"aspect", aspect.Name(), "protein", protein, "reason", reason)
	d.recorder.Disqualified(reason)
}

// lazyIdentifier computes an event's REACTOME identifier at most once.
type lazyIdentifier struct {
	event models.Instance
	id    string
	done  bool
}

func (l *lazyIdentifier) get(ctx context.Context, st graph.Store) (string, error) {
	if l.done {
		return l.id, nil
	}
	id, err := ReactomeIdentifier(ctx, st, l.event)
	if err != nil {
		return "", err
	}
	l.id, l.done = id, true
	return id, nil
}
