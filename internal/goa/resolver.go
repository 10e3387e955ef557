package goa

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/reactome/goa-release/internal/graph"
	"github.com/reactome/goa-release/internal/models"
)

// ProteinSource is what an active unit or physical entity resolves to.
// It is one of SingleProtein, ProteinGroup or Ineligible.
type ProteinSource interface {
	proteins() []models.Instance
}

// SingleProtein is an EntityWithAccessionedSequence used directly.
type SingleProtein struct {
	Protein models.Instance
}

// ProteinGroup is an EntitySet whose members are all EntityWithAccessionedSequence.
type ProteinGroup struct {
	Set     models.Instance
	Members []models.Instance
}

// Ineligible is anything else. Reason is suitable for a warning log.
type Ineligible struct {
	Entity models.Instance
	Reason string
}

func (s SingleProtein) proteins() []models.Instance { return []models.Instance{s.Protein} }
func (g ProteinGroup) proteins() []models.Instance  { return g.Members }
func (Ineligible) proteins() []models.Instance      { return nil }

// ClassifyProteinSource decides which ProteinSource entity is.
func ClassifyProteinSource(ctx context.Context, st graph.Store, entity models.Instance) (ProteinSource, error) {
	if entity.IsA(models.ClassEntityWithAccessionedSequence) {
		return SingleProtein{Protein: entity}, nil
	}
	if !entity.IsA(models.ClassEntitySet) {
		return Ineligible{Entity: entity, Reason: "not an EWAS or an EntitySet"}, nil
	}

	members, err := graph.InstanceValues(ctx, st, entity, models.AttrHasMember)
	if err != nil {
		return nil, fmt.Errorf("reading members of %s: %w", entity, err)
	}
	for _, m := range members {
		if !m.IsA(models.ClassEntityWithAccessionedSequence) {
			return Ineligible{Entity: entity, Reason: "EntitySet has non-EWAS member " + m.String()}, nil
		}
	}
	return ProteinGroup{Set: entity, Members: members}, nil
}

// Resolver extracts annotatable proteins from catalysts and events.
type Resolver struct {
	store  graph.Store
	logger *slog.Logger
}

// NewResolver creates a Resolver reading from st.
func NewResolver(st graph.Store, logger *slog.Logger) *Resolver {
	return &Resolver{store: st, logger: logger}
}

func (r *Resolver) catalystEntity(ctx context.Context, catalyst models.Instance) (*models.Instance, error) {
	activeUnit, err := graph.InstanceValue(ctx, r.store, catalyst, models.AttrActiveUnit)
	if err != nil {
		return nil, fmt.Errorf("reading active unit of %s: %w", catalyst, err)
	}
	if activeUnit != nil {
		return activeUnit, nil
	}
	pe, err := graph.InstanceValue(ctx, r.store, catalyst, models.AttrPhysicalEntity)
	if err != nil {
		return nil, fmt.Errorf("reading physical entity of %s: %w", catalyst, err)
	}
	return pe, nil
}

// CatalystProteins returns the proteins performing catalyst: its active unit, or its
// physical entity when the active unit is empty. The entity must have a compartment and be
// an EWAS or an EntitySet of EWAS members; otherwise a warning is logged and nothing is returned.
func (r *Resolver) CatalystProteins(ctx context.Context, catalyst models.Instance) ([]models.Instance, error) {
	return r.resolve(ctx, catalyst, true)
}

// AnnotatableProteins is CatalystProteins without the compartment requirement.
func (r *Resolver) AnnotatableProteins(ctx context.Context, catalyst models.Instance) ([]models.Instance, error) {
	return r.resolve(ctx, catalyst, false)
}

func (r *Resolver) resolve(ctx context.Context, catalyst models.Instance, needCompartment bool) ([]models.Instance, error) {
	entity, err := r.catalystEntity(ctx, catalyst)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		r.logger.Warn("active unit/physical entity is null, skipping annotation", "catalyst", catalyst)
		return nil, nil
	}

	if needCompartment {
		compartment, err := r.store.AttributeValue(ctx, *entity, models.AttrCompartment)
		if err != nil {
			return nil, fmt.Errorf("reading compartment of %s: %w", entity, err)
		}
		if compartment == nil {
			r.logger.Warn("active unit/physical entity has no compartment, skipping annotation",
				"entity", entity, "catalyst", catalyst)
			return nil, nil
		}
	}

	source, err := ClassifyProteinSource(ctx, r.store, *entity)
	if err != nil {
		return nil, err
	}
	if bad, ok := source.(Ineligible); ok {
		r.logger.Warn("active unit/physical entity is not annotatable, skipping annotation",
			"entity", entity, "catalyst", catalyst, "reason", bad.Reason)
		return nil, nil
	}
	return dedupe(source.proteins()), nil
}

// traversalRules lists, per class, the forward attributes followed when collecting
// the proteins of an event. Classes match by IsA.
var traversalRules = []struct {
	class string
	attrs []string
}{
	{models.ClassPathway, []string{models.AttrHasEvent}},
	{models.ClassReactionlikeEvent, []string{models.AttrInput, models.AttrOutput, models.AttrCatalystActivity}},
	{models.ClassCatalystActivity, []string{models.AttrPhysicalEntity}},
	{models.ClassComplex, []string{models.AttrHasComponent}},
	{models.ClassEntitySet, []string{models.AttrHasMember}},
	{models.ClassPolymer, []string{models.AttrRepeatedUnit}},
}

func followedAttributes(inst models.Instance) []string {
	var out []string
	for _, rule := range traversalRules {
		if inst.IsA(rule.class) {
			out = append(out, rule.attrs...)
		}
	}
	return out
}

// TraverseProteins walks breadth first from event along traversalRules and returns every
// EntityWithAccessionedSequence reached, ordered by DBID. No validity filtering is applied.
func (r *Resolver) TraverseProteins(ctx context.Context, event models.Instance) ([]models.Instance, error) {
	seen := map[int64]bool{event.DBID: true}
	queue := []models.Instance{event}
	var out []models.Instance

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current.IsA(models.ClassEntityWithAccessionedSequence) {
			out = append(out, current)
		}

		for _, attr := range followedAttributes(current) {
			next, err := graph.InstanceValues(ctx, r.store, current, attr)
			if err != nil {
				return nil, fmt.Errorf("following %s of %s: %w", attr, current, err)
			}
			for _, n := range next {
				if seen[n.DBID] {
					continue
				}
				seen[n.DBID] = true
				queue = append(queue, n)
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].DBID < out[j].DBID })
	return out, nil
}

func dedupe(in []models.Instance) []models.Instance {
	seen := make(map[int64]bool, len(in))
	out := make([]models.Instance, 0, len(in))
	for _, inst := range in {
		if seen[inst.DBID] {
			continue
		}
		seen[inst.DBID] = true
		out = append(out, inst)
	}
	return out
}
