package goa

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reactome/goa-release/internal/graph"
	"github.com/reactome/goa-release/internal/models"
)

// CellularComponentClassifier annotates every protein reachable from an event with its compartment.
type CellularComponentClassifier struct {
	deps
}

// NewCellularComponentClassifier creates the "C" aspect classifier.
func NewCellularComponentClassifier(st graph.Store, rec Recorder, logger *slog.Logger) *CellularComponentClassifier {
	return &CellularComponentClassifier{deps: newDeps(st, rec, logger)}
}

// Aspect returns AspectCellularComponent.
func (c *CellularComponentClassifier) Aspect() Aspect { return AspectCellularComponent }

// Process builds one located_in line per eligible protein with a compartment.
// Lines are dated by the protein's edits.
func (c *CellularComponentClassifier) Process(ctx context.Context, event models.Instance, dates *Reconciler) (LineSet, error) {
	proteins, err := c.resolver.TraverseProteins(ctx, event)
	if err != nil {
		return nil, err
	}

	lines := make(LineSet)
	eventID := &lazyIdentifier{event: event}
	for _, protein := range proteins {
		reason, err := c.disqualification(ctx, protein)
		if err != nil {
			return nil, err
		}
		if reason != "" {
			c.disqualified(AspectCellularComponent, protein, reason)
			continue
		}

		compartment, err := graph.InstanceValue(ctx, c.store, protein, models.AttrCompartment)
		if err != nil {
			return nil, err
		}
		if compartment == nil {
			c.logger.Info("protein has no cellular compartment, skipping GO annotation", "protein", protein)
			continue
		}
		accession, ok, err := graph.TextValue(ctx, c.store, *compartment, models.AttrAccession)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, missingAttribute(*compartment, models.AttrAccession)
		}

		id, err := eventID.get(ctx, c.store)
		if err != nil {
			return nil, err
		}
		line, err := c.builder.Build(ctx, protein, LineFields{
			Aspect:          AspectCellularComponent,
			Qualifier:       QualifierLocatedIn,
			Accession:       PrefixGO + accession,
			EventIdentifier: id,
			Evidence:        EvidenceTraceableAuthorStatement,
		})
		if err != nil {
			return nil, fmt.Errorf("building line for %s: %w", protein, err)
		}
		if _, err := dates.Assign(ctx, c.store, protein, line); err != nil {
			return nil, fmt.Errorf("dating line for %s: %w", protein, err)
		}
		lines.Add(line)
	}
	return lines, nil
}

func (c *CellularComponentClassifier) disqualification(ctx context.Context, protein models.Instance) (string, error) {
	reason, err := DisqualificationReason(ctx, c.store, protein)
	if err != nil || reason != "" {
		return reason, err
	}
	taxon, err := TaxonIdentifier(ctx, c.store, protein)
	if err != nil {
		return "", err
	}
	if IsAlternateCompartmentTaxon(taxon) {
		return ReasonAlternateCompartment, nil
	}
	return "", nil
}
