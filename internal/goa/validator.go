package goa

import (
	"context"
	"fmt"

	"github.com/reactome/goa-release/internal/graph"
	"github.com/reactome/goa-release/internal/models"
)

// Disqualification reasons, also used as metric labels.
const (
	ReasonInvalidProtein       = "invalid protein"
	ReasonExcludedMicrobial    = "excluded microbial species"
	ReasonAlternateCompartment = "alternate GO compartment species"
	ReasonNoCompartment        = "no compartment"
)

// IsValidProtein returns true if protein has a species and is backed by a UniProt reference entity.
// A missing reference entity or reference database makes the protein invalid, not an error.
func IsValidProtein(ctx context.Context, st graph.Store, protein models.Instance) (bool, error) {
	species, err := st.AttributeValue(ctx, protein, models.AttrSpecies)
	if err != nil {
		return false, err
	}
	if species == nil {
		return false, nil
	}

	refEntity, err := graph.InstanceValue(ctx, st, protein, models.AttrReferenceEntity)
	if err != nil || refEntity == nil {
		return false, err
	}
	refDB, err := graph.InstanceValue(ctx, st, *refEntity, models.AttrReferenceDatabase)
	if err != nil || refDB == nil {
		return false, err
	}
	return refDB.DisplayName == UniProtDatabase, nil
}

// DisqualificationReason returns "" when protein may be annotated, otherwise the reason it may not.
func DisqualificationReason(ctx context.Context, st graph.Store, protein models.Instance) (string, error) {
	if err := requireEWAS(protein); err != nil {
		return "", err
	}

	valid, err := IsValidProtein(ctx, st, protein)
	if err != nil {
		return "", err
	}
	if !valid {
		return ReasonInvalidProtein, nil
	}

	taxon, err := TaxonIdentifier(ctx, st, protein)
	if err != nil {
		return "", err
	}
	if IsExcludedMicrobialTaxon(taxon) {
		return ReasonExcludedMicrobial, nil
	}
	return "", nil
}

// TaxonIdentifier reads species -> crossReference -> identifier.
func TaxonIdentifier(ctx context.Context, st graph.Store, protein models.Instance) (string, error) {
	species, err := graph.InstanceValue(ctx, st, protein, models.AttrSpecies)
	if err != nil {
		return "", err
	}
	if species == nil {
		return "", missingAttribute(protein, models.AttrSpecies)
	}
	xref, err := graph.InstanceValue(ctx, st, *species, models.AttrCrossReference)
	if err != nil {
		return "", err
	}
	if xref == nil {
		return "", missingAttribute(*species, models.AttrCrossReference)
	}
	id, ok, err := graph.TextValue(ctx, st, *xref, models.AttrIdentifier)
	if err != nil {
		return "", err
	}
	if !ok || id == "" {
		return "", missingAttribute(*xref, models.AttrIdentifier)
	}
	return id, nil
}

// IsInferred returns true if event carries an evidence type or an inferredFrom link.
// Inferred events are never annotated.
func IsInferred(ctx context.Context, st graph.Store, event models.Instance) (bool, error) {
	for _, attr := range []string{models.AttrEvidenceType, models.AttrInferredFrom} {
		v, err := st.AttributeValue(ctx, event, attr)
		if err != nil {
			return false, fmt.Errorf("reading %s of %s: %w", attr, event, err)
		}
		if v != nil {
			return true, nil
		}
	}
	return false, nil
}
