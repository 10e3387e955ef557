package goa

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reactome/goa-release/internal/graph"
	"github.com/reactome/goa-release/internal/models"
)

// BiologicalProcessClassifier annotates catalyst proteins with the biological processes of
// the event, or of the closest containing events that have any.
type BiologicalProcessClassifier struct {
	deps
}

// NewBiologicalProcessClassifier creates the "P" aspect classifier.
func NewBiologicalProcessClassifier(st graph.Store, rec Recorder, logger *slog.Logger) *BiologicalProcessClassifier {
	return &BiologicalProcessClassifier{deps: newDeps(st, rec, logger)}
}

// Aspect returns AspectBiologicalProcess.
func (c *BiologicalProcessClassifier) Aspect() Aspect { return AspectBiologicalProcess }

// ProcessTerm is a biological process accession and the identifier of the event carrying it.
type ProcessTerm struct {
	Accession       string
	EventIdentifier string
}

// Process builds one involved_in line per eligible catalyst protein and process term.
// Lines are dated by the event's edits.
func (c *BiologicalProcessClassifier) Process(ctx context.Context, event models.Instance, dates *Reconciler) (LineSet, error) {
	catalysts, err := graph.InstanceValues(ctx, c.store, event, models.AttrCatalystActivity)
	if err != nil {
		return nil, err
	}

	lines := make(LineSet)
	var terms []ProcessTerm
	termsLoaded := false
	for _, catalyst := range catalysts {
		proteins, err := c.resolver.AnnotatableProteins(ctx, catalyst)
		if err != nil {
			return nil, err
		}
		for _, protein := range proteins {
			reason, err := DisqualificationReason(ctx, c.store, protein)
			if err != nil {
				return nil, err
			}
			if reason != "" {
				c.disqualified(AspectBiologicalProcess, protein, reason)
				continue
			}

			if !termsLoaded {
				if terms, err = c.ProcessTerms(ctx, event, 0); err != nil {
					return nil, err
				}
				termsLoaded = true
			}
			for _, term := range terms {
				line, err := c.builder.Build(ctx, protein, LineFields{
					Aspect:          AspectBiologicalProcess,
					Qualifier:       QualifierInvolvedIn,
					Accession:       term.Accession,
					EventIdentifier: term.EventIdentifier,
					Evidence:        EvidenceTraceableAuthorStatement,
				})
				if err != nil {
					return nil, fmt.Errorf("building line for %s: %w", protein, err)
				}
				if _, err := dates.Assign(ctx, c.store, event, line); err != nil {
					return nil, fmt.Errorf("dating line for %s: %w", event, err)
				}
				lines.Add(line)
			}
		}
	}
	return lines, nil
}

// ProcessTerms returns the biological process terms of event. When it has none, the events
// containing it (hasEvent referers) are searched, up to MaxAscentLevel levels above level 0.
func (c *BiologicalProcessClassifier) ProcessTerms(ctx context.Context, event models.Instance, level int) ([]ProcessTerm, error) {
	if level > MaxAscentLevel {
		return nil, nil
	}

	processes, err := graph.InstanceValues(ctx, c.store, event, models.AttrGOBiologicalProcess)
	if err != nil {
		return nil, err
	}
	if len(processes) > 0 {
		id, err := ReactomeIdentifier(ctx, c.store, event)
		if err != nil {
			return nil, err
		}
		terms := make([]ProcessTerm, 0, len(processes))
		for _, p := range processes {
			accession, ok, err := graph.TextValue(ctx, c.store, p, models.AttrAccession)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, missingAttribute(p, models.AttrAccession)
			}
			terms = append(terms, ProcessTerm{Accession: PrefixGO + accession, EventIdentifier: id})
		}
		return terms, nil
	}

	parents, err := c.store.Referers(ctx, event, models.AttrHasEvent)
	if err != nil {
		return nil, err
	}
	var terms []ProcessTerm
	for _, parent := range parents {
		found, err := c.ProcessTerms(ctx, parent, level+1)
		if err != nil {
			return nil, err
		}
		terms = append(terms, found...)
	}
	return terms, nil
}
