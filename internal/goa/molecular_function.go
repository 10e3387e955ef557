package goa

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reactome/goa-release/internal/graph"
	"github.com/reactome/goa-release/internal/models"
)

// MolecularFunctionClassifier annotates catalyst proteins with the activity they enable.
//
// Literature references live on the event's CatalystActivityReference instances rather
// than on the catalyst activities, so iteration starts from those references.
type MolecularFunctionClassifier struct {
	deps
}

// NewMolecularFunctionClassifier creates the "F" aspect classifier.
func NewMolecularFunctionClassifier(st graph.Store, rec Recorder, logger *slog.Logger) *MolecularFunctionClassifier {
	return &MolecularFunctionClassifier{deps: newDeps(st, rec, logger)}
}

// Aspect returns AspectMolecularFunction.
func (c *MolecularFunctionClassifier) Aspect() Aspect { return AspectMolecularFunction }

// Process emits one EXP line per PubMed citation of a catalyst reference, or a single TAS
// line citing the event when there are none. Lines are dated by the catalyst activity's edits.
func (c *MolecularFunctionClassifier) Process(ctx context.Context, event models.Instance, dates *Reconciler) (LineSet, error) {
	refs, err := graph.InstanceValues(ctx, c.store, event, models.AttrCatalystActivityReference)
	if err != nil {
		return nil, err
	}

	lines := make(LineSet)
	eventID := &lazyIdentifier{event: event}
	for _, ref := range refs {
		if err := c.processReference(ctx, event, ref, eventID, dates, lines); err != nil {
			return nil, err
		}
	}
	return lines, nil
}

func (c *MolecularFunctionClassifier) processReference(ctx context.Context, event, ref models.Instance,
	eventID *lazyIdentifier, dates *Reconciler, lines LineSet) error {
	catalyst, err := graph.InstanceValue(ctx, c.store, ref, models.AttrCatalystActivity)
	if err != nil {
		return err
	}
	if catalyst == nil {
		c.logger.Debug("catalyst activity reference has no catalyst activity", "reference", ref, "event", event)
		return nil
	}

	accession, ok, err := c.activityAccession(ctx, *catalyst)
	if err != nil {
		return err
	}
	if !ok {
		c.logger.Warn("catalyst has no GO_MolecularFunction activity, skipping GO annotation", "catalyst", catalyst)
		return nil
	}

	proteins, err := c.resolver.CatalystProteins(ctx, *catalyst)
	if err != nil {
		return err
	}
	for _, protein := range proteins {
		reason, err := DisqualificationReason(ctx, c.store, protein)
		if err != nil {
			return err
		}
		if reason != "" {
			c.disqualified(AspectMolecularFunction, protein, reason)
			continue
		}
		if accession == ProteinBindingAccession {
			c.logger.Info("accession is for protein binding, skipping GO annotation",
				"protein", protein, "catalyst", catalyst)
			continue
		}

		citations, err := c.pubMedIdentifiers(ctx, ref)
		if err != nil {
			return err
		}
		var fields []LineFields
		if len(citations) > 0 {
			for _, pmid := range citations {
				fields = append(fields, LineFields{EventIdentifier: PrefixPubMed + pmid, Evidence: EvidenceInferredFromExperiment})
			}
		} else {
			id, err := eventID.get(ctx, c.store)
			if err != nil {
				return err
			}
			fields = append(fields, LineFields{EventIdentifier: id, Evidence: EvidenceTraceableAuthorStatement})
		}

		for _, f := range fields {
			f.Aspect = AspectMolecularFunction
			f.Qualifier = QualifierEnables
			f.Accession = accession
			line, err := c.builder.Build(ctx, protein, f)
			if err != nil {
				return fmt.Errorf("building line for %s: %w", protein, err)
			}
			if _, err := dates.Assign(ctx, c.store, *catalyst, line); err != nil {
				return fmt.Errorf("dating line for %s: %w", catalyst, err)
			}
			lines.Add(line)
		}
	}
	return nil
}

// activityAccession returns "GO:<accession>" of the catalyst's activity, or false when unset.
func (c *MolecularFunctionClassifier) activityAccession(ctx context.Context, catalyst models.Instance) (string, bool, error) {
	activity, err := graph.InstanceValue(ctx, c.store, catalyst, models.AttrActivity)
	if err != nil || activity == nil {
		return "", false, err
	}
	accession, ok, err := graph.TextValue(ctx, c.store, *activity, models.AttrAccession)
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, missingAttribute(*activity, models.AttrAccession)
	}
	return PrefixGO + accession, true, nil
}

func (c *MolecularFunctionClassifier) pubMedIdentifiers(ctx context.Context, ref models.Instance) ([]string, error) {
	literature, err := graph.InstanceValues(ctx, c.store, ref, models.AttrLiteratureReference)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, lit := range literature {
		pmid, ok, err := graph.TextValue(ctx, c.store, lit, models.AttrPubMedIdentifier)
		if err != nil {
			return nil, err
		}
		if ok && pmid != "" {
			out = append(out, pmid)
		}
	}
	return out, nil
}
