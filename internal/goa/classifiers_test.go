package goa

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reactome/goa-release/internal/graph"
	"github.com/reactome/goa-release/internal/models"
)

func runClassifier(t *testing.T, c Classifier, event models.Instance) (LineSet, *Reconciler) {
	t.Helper()
	dates := NewReconciler()
	lines, err := c.Process(context.Background(), event, dates)
	require.NoError(t, err)
	for l := range lines {
		_, ok := dates.Date(l)
		assert.True(t, ok, "every emitted line is dated: %q", l)
	}
	return lines, dates
}

func ccClassifier(st graph.Store) Classifier {
	return NewCellularComponentClassifier(st, nil, newTestLogger())
}

func mfClassifier(st graph.Store) Classifier {
	return NewMolecularFunctionClassifier(st, nil, newTestLogger())
}

func bpClassifier(st graph.Store) *BiologicalProcessClassifier {
	return NewBiologicalProcessClassifier(st, nil, newTestLogger())
}

func TestCellularComponent_Example(t *testing.T) {
	f := newFixture(t)
	p := f.protein(proteinSpec{geneName: "ABCD1", date: "2019-01-01 01:01:01.0"})
	r := f.reaction("R-HSA-1234")
	f.st.SetRefs(r, models.AttrInput, p)

	lines, dates := runClassifier(t, ccClassifier(f.st), r)
	want := canonicalLine(QualifierLocatedIn, "GO:0004321", "REACTOME:R-HSA-1234", EvidenceTraceableAuthorStatement, AspectCellularComponent)
	assert.Equal(t, []string{want}, lines.Sorted())
	d, _ := dates.Date(want)
	assert.Equal(t, 20190101, d)
}

func TestCellularComponent_Disqualifications(t *testing.T) {
	tests := []struct {
		name string
		spec proteinSpec
	}{
		{"invalid protein", proteinSpec{database: "ENSEMBL"}},
		{"excluded microbial", proteinSpec{taxon: "90371"}},
		{"alternate compartment species", proteinSpec{taxon: "1491"}},
		{"no compartment", proteinSpec{compartment: "-"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			r := f.reaction("R-HSA-1")
			f.st.SetRefs(r, models.AttrOutput, f.protein(tt.spec))

			lines, _ := runClassifier(t, ccClassifier(f.st), r)
			assert.Empty(t, lines)
		})
	}
}

func TestCellularComponent_DuplicatesCollapse(t *testing.T) {
	f := newFixture(t)
	p := f.protein(proteinSpec{})
	r := f.reaction("R-HSA-1")
	cx := f.st.Add(models.ClassComplex, "p:p")
	f.st.SetRefs(cx, models.AttrHasComponent, p)
	f.st.SetRefs(r, models.AttrInput, p, cx)
	f.st.SetRefs(r, models.AttrOutput, cx)

	lines, _ := runClassifier(t, ccClassifier(f.st), r)
	assert.Len(t, lines, 1)
}

func TestCellularComponent_MissingStableIdentifierFails(t *testing.T) {
	f := newFixture(t)
	r := f.st.Add(models.ClassReaction, "no stId")
	f.st.SetRefs(r, models.AttrInput, f.protein(proteinSpec{}))

	_, err := ccClassifier(f.st).Process(context.Background(), r, NewReconciler())
	assert.ErrorIs(t, err, ErrMissingAttribute)
}

func TestMolecularFunction_LiteraturePath(t *testing.T) {
	f := newFixture(t)
	p := f.protein(proteinSpec{geneName: "ABCD1"})
	r := f.reaction("R-HSA-1234")
	ca := f.catalyst(p, "1234")
	f.modified(ca, "2021-07-08 10:00:00.0")
	f.catalyze(r, ca, "1234")

	lines, dates := runClassifier(t, mfClassifier(f.st), r)
	want := canonicalLine(QualifierEnables, "GO:1234", "PMID:1234", EvidenceInferredFromExperiment, AspectMolecularFunction)
	assert.Equal(t, []string{want}, lines.Sorted())
	d, _ := dates.Date(want)
	assert.Equal(t, 20210708, d, "dated by the catalyst activity")
}

func TestMolecularFunction_OneLinePerCitation(t *testing.T) {
	f := newFixture(t)
	p := f.protein(proteinSpec{geneName: "ABCD1"})
	r := f.reaction("R-HSA-1234")
	f.catalyze(r, f.catalyst(p, "0003824"), "111", "222")

	lines, _ := runClassifier(t, mfClassifier(f.st), r)
	assert.Equal(t, []string{
		canonicalLine(QualifierEnables, "GO:0003824", "PMID:111", EvidenceInferredFromExperiment, AspectMolecularFunction),
		canonicalLine(QualifierEnables, "GO:0003824", "PMID:222", EvidenceInferredFromExperiment, AspectMolecularFunction),
	}, lines.Sorted())
}

func TestMolecularFunction_ReactomePath(t *testing.T) {
	f := newFixture(t)
	p := f.protein(proteinSpec{geneName: "ABCD1"})
	r := f.reaction("R-HSA-1234")
	f.catalyze(r, f.catalyst(p, "0003824"))

	lines, _ := runClassifier(t, mfClassifier(f.st), r)
	assert.Equal(t, []string{
		canonicalLine(QualifierEnables, "GO:0003824", "REACTOME:R-HSA-1234", EvidenceTraceableAuthorStatement, AspectMolecularFunction),
	}, lines.Sorted())
}

func TestMolecularFunction_NeverProteinBinding(t *testing.T) {
	for _, pmids := range [][]string{nil, {"1234"}} {
		f := newFixture(t)
		r := f.reaction("R-HSA-1")
		f.catalyze(r, f.catalyst(f.protein(proteinSpec{}), "0005515"), pmids...)

		lines, _ := runClassifier(t, mfClassifier(f.st), r)
		assert.Empty(t, lines, "pmids=%v", pmids)
	}
}

func TestMolecularFunction_Skips(t *testing.T) {
	t.Run("no activity", func(t *testing.T) {
		f := newFixture(t)
		r := f.reaction("R-HSA-1")
		f.catalyze(r, f.catalyst(f.protein(proteinSpec{}), ""))
		lines, _ := runClassifier(t, mfClassifier(f.st), r)
		assert.Empty(t, lines)
	})

	t.Run("reference without catalyst", func(t *testing.T) {
		f := newFixture(t)
		r := f.reaction("R-HSA-1")
		f.st.SetRefs(r, models.AttrCatalystActivityReference, f.st.Add(models.ClassCatalystActivityReference, "dangling"))
		lines, _ := runClassifier(t, mfClassifier(f.st), r)
		assert.Empty(t, lines)
	})

	t.Run("catalyst without reference", func(t *testing.T) {
		f := newFixture(t)
		r := f.reaction("R-HSA-1")
		f.st.SetRefs(r, models.AttrCatalystActivity, f.catalyst(f.protein(proteinSpec{}), "0003824"))
		lines, _ := runClassifier(t, mfClassifier(f.st), r)
		assert.Empty(t, lines)
	})

	t.Run("excluded microbial", func(t *testing.T) {
		f := newFixture(t)
		r := f.reaction("R-HSA-1")
		f.catalyze(r, f.catalyst(f.protein(proteinSpec{taxon: "1280"}), "0003824"))
		lines, _ := runClassifier(t, mfClassifier(f.st), r)
		assert.Empty(t, lines)
	})

	t.Run("catalyst entity without compartment", func(t *testing.T) {
		f := newFixture(t)
		r := f.reaction("R-HSA-1")
		f.catalyze(r, f.catalyst(f.protein(proteinSpec{compartment: "-"}), "0003824"))
		lines, _ := runClassifier(t, mfClassifier(f.st), r)
		assert.Empty(t, lines)
	})
}

func TestMolecularFunction_AlternateCompartmentSpeciesStillAnnotated(t *testing.T) {
	f := newFixture(t)
	p := f.protein(proteinSpec{taxon: "11676"})
	r := f.reaction("R-HSA-1")
	f.catalyze(r, f.catalyst(p, "0003824"))

	mf, _ := runClassifier(t, mfClassifier(f.st), r)
	assert.Len(t, mf, 1)
	cc, _ := runClassifier(t, ccClassifier(f.st), r)
	assert.Empty(t, cc)
}

func TestBiologicalProcess_OwnTerms(t *testing.T) {
	f := newFixture(t)
	p := f.protein(proteinSpec{geneName: "ABCD1"})
	r := f.reaction("R-HSA-1234")
	f.modified(r, "2022-02-02 02:02:02.0")
	f.st.SetRefs(r, models.AttrGOBiologicalProcess,
		f.goTerm(models.ClassGOBiologicalProcess, "0006810"),
		f.goTerm(models.ClassGOBiologicalProcess, "0008152"))
	f.st.SetRefs(r, models.AttrCatalystActivity, f.catalyst(p, "0003824"))

	lines, dates := runClassifier(t, bpClassifier(f.st), r)
	want := []string{
		canonicalLine(QualifierInvolvedIn, "GO:0006810", "REACTOME:R-HSA-1234", EvidenceTraceableAuthorStatement, AspectBiologicalProcess),
		canonicalLine(QualifierInvolvedIn, "GO:0008152", "REACTOME:R-HSA-1234", EvidenceTraceableAuthorStatement, AspectBiologicalProcess),
	}
	assert.Equal(t, want, lines.Sorted())
	d, _ := dates.Date(want[0])
	assert.Equal(t, 20220202, d, "dated by the reaction")
}

func TestBiologicalProcess_Ascent(t *testing.T) {
	// chain: reaction <- parent <- grandparent <- great-grandparent, term placed at one level
	tests := []struct {
		name    string
		level   int
		wantIDs []string
	}{
		{"parent", 1, []string{"REACTOME:R-HSA-P1"}},
		{"grandparent", 2, []string{"REACTOME:R-HSA-P2"}},
		{"beyond the cap", 3, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			r := f.reaction("R-HSA-1")
			f.st.SetRefs(r, models.AttrCatalystActivity, f.catalyst(f.protein(proteinSpec{compartment: "-"}), ""))
			p1 := f.pathway("R-HSA-P1", r)
			p2 := f.pathway("R-HSA-P2", p1)
			p3 := f.pathway("R-HSA-P3", p2)
			chain := []models.Instance{r, p1, p2, p3}
			f.st.SetRefs(chain[tt.level], models.AttrGOBiologicalProcess, f.goTerm(models.ClassGOBiologicalProcess, "0006810"))

			lines, _ := runClassifier(t, bpClassifier(f.st), r)
			var got []string
			for _, l := range lines.Sorted() {
				got = append(got, splitLine(l)[5])
			}
			assert.Equal(t, tt.wantIDs, got)
		})
	}
}

func TestBiologicalProcess_MultipleParents(t *testing.T) {
	f := newFixture(t)
	r := f.reaction("R-HSA-1")
	f.st.SetRefs(r, models.AttrCatalystActivity, f.catalyst(f.protein(proteinSpec{}), ""))
	a := f.pathway("R-HSA-A", r)
	b := f.pathway("R-HSA-B", r)
	f.st.SetRefs(a, models.AttrGOBiologicalProcess, f.goTerm(models.ClassGOBiologicalProcess, "1"))
	f.st.SetRefs(b, models.AttrGOBiologicalProcess, f.goTerm(models.ClassGOBiologicalProcess, "2"))

	terms, err := bpClassifier(f.st).ProcessTerms(context.Background(), r, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []ProcessTerm{
		{Accession: "GO:1", EventIdentifier: "REACTOME:R-HSA-A"},
		{Accession: "GO:2", EventIdentifier: "REACTOME:R-HSA-B"},
	}, terms)
}

func TestBiologicalProcess_ProteinDisqualified(t *testing.T) {
	f := newFixture(t)
	r := f.reaction("R-HSA-1")
	f.st.SetRefs(r, models.AttrGOBiologicalProcess, f.goTerm(models.ClassGOBiologicalProcess, "0006810"))
	f.st.SetRefs(r, models.AttrCatalystActivity, f.catalyst(f.protein(proteinSpec{taxon: "813"}), ""))

	lines, _ := runClassifier(t, bpClassifier(f.st), r)
	assert.Empty(t, lines)
}

func TestClassifiers_Idempotent(t *testing.T) {
	f := newFixture(t)
	p := f.protein(proteinSpec{})
	r := f.reaction("R-HSA-1")
	f.st.SetRefs(r, models.AttrGOBiologicalProcess, f.goTerm(models.ClassGOBiologicalProcess, "0006810"))
	f.catalyze(r, f.catalyst(p, "0003824"), "42")

	for _, c := range []Classifier{ccClassifier(f.st), mfClassifier(f.st), bpClassifier(f.st)} {
		first, _ := runClassifier(t, c, r)
		second, _ := runClassifier(t, c, r)
		assert.Equal(t, first.Sorted(), second.Sorted(), c.Aspect().Name())
		assert.NotEmpty(t, first, c.Aspect().Name())
	}
}

func TestClassifiers_StoreFailurePropagates(t *testing.T) {
	f := newFixture(t)
	r := f.reaction("R-HSA-1")
	f.catalyze(r, f.catalyst(f.protein(proteinSpec{}), "0003824"))
	f.st.FailWith(assert.AnError)

	for _, c := range []Classifier{ccClassifier(f.st), mfClassifier(f.st), bpClassifier(f.st)} {
		_, err := c.Process(context.Background(), r, NewReconciler())
		assert.ErrorIs(t, err, graph.ErrStoreAccess, c.Aspect().Name())
	}
}
