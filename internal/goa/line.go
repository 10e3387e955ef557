package goa

import (
	"context"
	"fmt"
	"strings"

	"github.com/reactome/goa-release/internal/graph"
	"github.com/reactome/goa-release/internal/models"
)

// LineFields are the per-annotation columns of a canonical line.
type LineFields struct {
	Aspect          Aspect
	Qualifier       string
	Accession       string
	EventIdentifier string
	Evidence        string
}

// LineBuilder renders canonical annotation lines. It never records what it builds.
type LineBuilder struct {
	store graph.Store
}

// NewLineBuilder creates a LineBuilder reading from st.
func NewLineBuilder(st graph.Store) *LineBuilder {
	return &LineBuilder{store: st}
}

// Build returns the 13 tab-separated columns of a GAF line for protein, everything but
// the date and assigned-by columns.
func (b *LineBuilder) Build(ctx context.Context, protein models.Instance, f LineFields) (string, error) {
	if err := requireEWAS(protein); err != nil {
		return "", err
	}

	refEntity, err := graph.InstanceValue(ctx, b.store, protein, models.AttrReferenceEntity)
	if err != nil {
		return "", err
	}
	if refEntity == nil {
		return "", missingAttribute(protein, models.AttrReferenceEntity)
	}
	identifier, ok, err := graph.TextValue(ctx, b.store, *refEntity, models.AttrIdentifier)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", missingAttribute(*refEntity, models.AttrIdentifier)
	}
	secondary, err := b.secondaryIdentifier(ctx, *refEntity, identifier)
	if err != nil {
		return "", err
	}
	taxon, err := TaxonIdentifier(ctx, b.store, protein)
	if err != nil {
		return "", err
	}

	return strings.Join([]string{
		DBUniProtKB,
		identifier,
		secondary,
		f.Qualifier,
		f.Accession,
		f.EventIdentifier,
		f.Evidence,
		"",
		string(f.Aspect),
		"",
		"",
		ObjectProtein,
		PrefixTaxon + taxon,
	}, "\t"), nil
}

// secondaryIdentifier prefers secondaryIdentifier, then geneName, then the primary identifier.
func (b *LineBuilder) secondaryIdentifier(ctx context.Context, refEntity models.Instance, identifier string) (string, error) {
	for _, attr := range []string{models.AttrSecondaryIdentifier, models.AttrGeneName} {
		v, ok, err := graph.TextValue(ctx, b.store, refEntity, attr)
		if err != nil {
			return "", err
		}
		if ok {
			return v, nil
		}
	}
	return identifier, nil
}

// StableIdentifier returns the identifier string of event's stable identifier.
func StableIdentifier(ctx context.Context, st graph.Store, event models.Instance) (string, error) {
	stID, err := graph.InstanceValue(ctx, st, event, models.AttrStableIdentifier)
	if err != nil {
		return "", err
	}
	if stID == nil {
		return "", missingAttribute(event, models.AttrStableIdentifier)
	}
	id, ok, err := graph.TextValue(ctx, st, *stID, models.AttrIdentifier)
	if err != nil {
		return "", err
	}
	if !ok || id == "" {
		return "", missingAttribute(*stID, models.AttrIdentifier)
	}
	return id, nil
}

// ReactomeIdentifier returns "REACTOME:" followed by event's stable identifier.
func ReactomeIdentifier(ctx context.Context, st graph.Store, event models.Instance) (string, error) {
	id, err := StableIdentifier(ctx, st, event)
	if err != nil {
		return "", fmt.Errorf("event identifier: %w", err)
	}
	return PrefixReactome + id, nil
}
