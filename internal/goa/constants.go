package goa

// Aspect is the GO aspect letter written in column 9 of a GAF line.
type Aspect string

const (
	AspectCellularComponent Aspect = "C"
	AspectMolecularFunction Aspect = "F"
	AspectBiologicalProcess Aspect = "P"
)

// Name returns the GO namespace the aspect stands for.
func (a Aspect) Name() string {
	switch a {
	case AspectCellularComponent:
		return "cellular_component"
	case AspectMolecularFunction:
		return "molecular_function"
	case AspectBiologicalProcess:
		return "biological_process"
	default:
		return "unknown"
	}
}

// GO qualifiers.
const (
	QualifierLocatedIn  = "located_in"
	QualifierEnables    = "enables"
	QualifierInvolvedIn = "involved_in"
)

// Evidence codes.
const (
	EvidenceTraceableAuthorStatement = "TAS"
	EvidenceInferredFromExperiment   = "EXP"
)

// Identifier prefixes and fixed column values.
const (
	PrefixGO       = "GO:"
	PrefixReactome = "REACTOME:"
	PrefixPubMed   = "PMID:"
	PrefixTaxon    = "taxon:"

	DBUniProtKB     = "UniProtKB"
	ObjectProtein   = "protein"
	UniProtDatabase = "UniProt"
)

// ProteinBindingAccession requires an IPI evidence code with a With/From
// column, which this generator does not produce, so it is never annotated.
const ProteinBindingAccession = "GO:0005515"

// MaxAscentLevel is how many hasEvent levels above a reaction the biological
// process lookup climbs: the parent and the grandparent.
const MaxAscentLevel = 2

// excludedMicrobialTaxa never receive any annotation:
// C. trachomatis, E. coli, N. meningitidis, S. typhimurium, S. aureus, T. gondii.
var excludedMicrobialTaxa = map[string]bool{
	"813":   true,
	"562":   true,
	"491":   true,
	"90371": true,
	"1280":  true,
	"5811":  true,
}

// alternateCompartmentTaxa carry their own GO compartment terms and never
// receive a cellular component annotation: HIV 1, C. botulinum, B. anthracis.
var alternateCompartmentTaxa = map[string]bool{
	"11676": true,
	"1491":  true,
	"1392":  true,
}

// IsExcludedMicrobialTaxon reports whether taxon is on the excluded microbial species list.
func IsExcludedMicrobialTaxon(taxon string) bool {
	return excludedMicrobialTaxa[taxon]
}

// IsAlternateCompartmentTaxon reports whether taxon uses an alternate GO compartment.
func IsAlternateCompartmentTaxon(taxon string) bool {
	return alternateCompartmentTaxa[taxon]
}
