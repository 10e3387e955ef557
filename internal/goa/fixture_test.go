package goa

import (
	"io"
	"log/slog"
	"testing"

	"github.com/reactome/goa-release/internal/graph"
	"github.com/reactome/goa-release/internal/models"
)

const defaultEditDate = "2019-01-01 01:01:01.0"

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixture builds small curated graphs on a MockStore.
type fixture struct {
	t  *testing.T
	st *graph.MockStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{t: t, st: graph.NewMockStore()}
}

func (f *fixture) edit(dateTime string) models.Instance {
	e := f.st.Add(models.ClassInstanceEdit, "edit "+dateTime)
	f.st.SetText(e, models.AttrDateTime, dateTime)
	return e
}

func (f *fixture) created(inst models.Instance, dateTime string) {
	f.st.SetRefs(inst, models.AttrCreated, f.edit(dateTime))
}

func (f *fixture) modified(inst models.Instance, dateTimes ...string) {
	edits := make([]models.Instance, 0, len(dateTimes))
	for _, d := range dateTimes {
		edits = append(edits, f.edit(d))
	}
	f.st.SetRefs(inst, models.AttrModified, edits...)
}

func (f *fixture) species(taxon string) models.Instance {
	xref := f.st.Add(models.ClassDatabaseIdentifier, "NCBI_Taxonomy:"+taxon)
	f.st.SetText(xref, models.AttrIdentifier, taxon)
	sp := f.st.Add(models.ClassSpecies, "species "+taxon)
	f.st.SetRefs(sp, models.AttrCrossReference, xref)
	return sp
}

func (f *fixture) goTerm(class, accession string) models.Instance {
	term := f.st.Add(class, "GO "+accession)
	f.st.SetText(term, models.AttrAccession, accession)
	return term
}

type proteinSpec struct {
	name        string
	uniprot     string
	geneName    string
	secondary   string
	taxon       string
	database    string
	noSpecies   bool
	noRefEntity bool
	compartment string
	date        string
}

// protein adds an EWAS. Unset fields default to a valid UniProt protein with a compartment.
func (f *fixture) protein(p proteinSpec) models.Instance {
	if p.name == "" {
		p.name = "ABCD1 [cytosol]"
	}
	if p.uniprot == "" {
		p.uniprot = "ABCD1234"
	}
	if p.taxon == "" {
		p.taxon = "54321A"
	}
	if p.database == "" {
		p.database = UniProtDatabase
	}
	if p.date == "" {
		p.date = defaultEditDate
	}

	ewas := f.st.Add(models.ClassEntityWithAccessionedSequence, p.name)
	if !p.noRefEntity {
		db := f.st.Add(models.ClassReferenceDatabase, p.database)
		ref := f.st.Add(models.ClassReferenceGeneProduct, p.database+":"+p.uniprot)
		f.st.SetText(ref, models.AttrIdentifier, p.uniprot)
		f.st.SetRefs(ref, models.AttrReferenceDatabase, db)
		if p.geneName != "" {
			f.st.SetText(ref, models.AttrGeneName, p.geneName)
		}
		if p.secondary != "" {
			f.st.SetText(ref, models.AttrSecondaryIdentifier, p.secondary)
		}
		f.st.SetRefs(ewas, models.AttrReferenceEntity, ref)
	}
	if !p.noSpecies {
		f.st.SetRefs(ewas, models.AttrSpecies, f.species(p.taxon))
	}
	if p.compartment != "-" {
		acc := p.compartment
		if acc == "" {
			acc = "0004321"
		}
		f.st.SetRefs(ewas, models.AttrCompartment, f.goTerm(models.ClassCompartment, acc))
	}
	f.created(ewas, p.date)
	return ewas
}

// reaction adds a Reaction with a stable identifier.
func (f *fixture) reaction(stableID string) models.Instance {
	r := f.st.Add(models.ClassReaction, "reaction "+stableID)
	f.stableID(r, stableID)
	f.created(r, defaultEditDate)
	return r
}

func (f *fixture) pathway(stableID string, children ...models.Instance) models.Instance {
	p := f.st.Add(models.ClassPathway, "pathway "+stableID)
	f.stableID(p, stableID)
	f.st.SetRefs(p, models.AttrHasEvent, children...)
	return p
}

func (f *fixture) stableID(inst models.Instance, id string) {
	s := f.st.Add(models.ClassStableIdentifier, id)
	f.st.SetText(s, models.AttrIdentifier, id)
	f.st.SetRefs(inst, models.AttrStableIdentifier, s)
}

// catalyst adds a CatalystActivity whose physical entity is entity and whose activity is
// the given molecular function accession ("" for none).
func (f *fixture) catalyst(entity models.Instance, activity string) models.Instance {
	ca := f.st.Add(models.ClassCatalystActivity, "catalyst of "+entity.DisplayName)
	f.st.SetRefs(ca, models.AttrPhysicalEntity, entity)
	if activity != "" {
		f.st.SetRefs(ca, models.AttrActivity, f.goTerm(models.ClassGOMolecularFunction, activity))
	}
	f.created(ca, defaultEditDate)
	return ca
}

// catalyze links catalyst to event directly and through a CatalystActivityReference citing pmids.
func (f *fixture) catalyze(event, catalyst models.Instance, pmids ...string) models.Instance {
	f.appendRef(event, models.AttrCatalystActivity, catalyst)

	ref := f.st.Add(models.ClassCatalystActivityReference, "reference of "+catalyst.DisplayName)
	f.st.SetRefs(ref, models.AttrCatalystActivity, catalyst)
	lits := make([]models.Instance, 0, len(pmids))
	for _, id := range pmids {
		lit := f.st.Add(models.ClassLiteratureReference, "PMID "+id)
		f.st.SetText(lit, models.AttrPubMedIdentifier, id)
		lits = append(lits, lit)
	}
	f.st.SetRefs(ref, models.AttrLiteratureReference, lits...)
	f.appendRef(event, models.AttrCatalystActivityReference, ref)
	return ref
}

func (f *fixture) appendRef(inst models.Instance, attr string, target models.Instance) {
	f.t.Helper()
	existing, err := f.st.AttributeValues(f.t.Context(), inst, attr)
	if err != nil {
		f.t.Fatal(err)
	}
	f.st.Set(inst, attr, append(existing, models.Ref(target))...)
}

func (f *fixture) entitySet(members ...models.Instance) models.Instance {
	set := f.st.Add(models.ClassDefinedSet, "set")
	f.st.SetRefs(set, models.AttrHasMember, members...)
	f.st.SetRefs(set, models.AttrCompartment, f.goTerm(models.ClassCompartment, "0005829"))
	return set
}

// canonicalLine is the canonical line of the default protein with the given columns.
func canonicalLine(qualifier, accession, eventID, evidence string, aspect Aspect) string {
	return "UniProtKB\tABCD1234\tABCD1\t" + qualifier + "\t" + accession + "\t" + eventID + "\t" +
		evidence + "\t\t" + string(aspect) + "\t\t\tprotein\ttaxon:54321A"
}
