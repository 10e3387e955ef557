package goa

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/reactome/goa-release/internal/graph"
	"github.com/reactome/goa-release/internal/models"
)

// Reconciler maps each canonical line to the latest modification date of the entities
// that produced it. Dates only move forward, so the result does not depend on the order
// in which classifiers reach a line. Safe for concurrent use.
type Reconciler struct {
	mu    sync.Mutex
	dates map[string]int
}

// NewReconciler creates an empty Reconciler for one generation run.
func NewReconciler() *Reconciler {
	return &Reconciler{dates: make(map[string]int)}
}

// Assign reads entity's edit date and records it for line.
func (r *Reconciler) Assign(ctx context.Context, st graph.Store, entity models.Instance, line string) (int, error) {
	date, err := EntityDate(ctx, st, entity)
	if err != nil {
		return 0, err
	}
	r.Record(line, date)
	return date, nil
}

// Record stores date for line unless a later date is already known.
func (r *Reconciler) Record(line string, date int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.dates[line]; !ok || date > cur {
		r.dates[line] = date
	}
}

// Merge records every date of other, keeping the later date per line.
func (r *Reconciler) Merge(other *Reconciler) {
	other.mu.Lock()
	pending := make(map[string]int, len(other.dates))
	for line, date := range other.dates {
		pending[line] = date
	}
	other.mu.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	for line, date := range pending {
		if cur, ok := r.dates[line]; !ok || date > cur {
			r.dates[line] = date
		}
	}
}

// Date returns the reconciled YYYYMMDD date of line.
func (r *Reconciler) Date(line string) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.dates[line]
	return d, ok
}

// Len returns the number of dated lines.
func (r *Reconciler) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.dates)
}

// EntityDate returns the date of entity's last "modified" edit, or of its "created" edit
// when it was never modified.
func EntityDate(ctx context.Context, st graph.Store, entity models.Instance) (int, error) {
	modified, err := graph.InstanceValues(ctx, st, entity, models.AttrModified)
	if err != nil {
		return 0, err
	}

	var edit *models.Instance
	if len(modified) > 0 {
		edit = &modified[len(modified)-1]
	} else {
		edit, err = graph.InstanceValue(ctx, st, entity, models.AttrCreated)
		if err != nil {
			return 0, err
		}
		if edit == nil {
			return 0, missingAttribute(entity, models.AttrCreated)
		}
	}

	dateTime, ok, err := graph.TextValue(ctx, st, *edit, models.AttrDateTime)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, missingAttribute(*edit, models.AttrDateTime)
	}
	date, err := ParseEditDate(dateTime)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrMissingAttribute, edit, err)
	}
	return date, nil
}

// ParseEditDate turns "2019-01-01 01:01:01.0" into 20190101.
func ParseEditDate(dateTime string) (int, error) {
	day, _, _ := strings.Cut(strings.TrimSpace(dateTime), " ")
	day = strings.ReplaceAll(day, "-", "")
	if len(day) != 8 {
		return 0, fmt.Errorf("unparseable edit date %q", dateTime)
	}
	n, err := strconv.Atoi(day)
	if err != nil {
		return 0, fmt.Errorf("unparseable edit date %q: %w", dateTime, err)
	}
	return n, nil
}
