package models

import "sort"

// Schema class names.
const (
	ClassEvent                         = "Event"
	ClassPathway                       = "Pathway"
	ClassReactionlikeEvent             = "ReactionlikeEvent"
	ClassReaction                      = "Reaction"
	ClassBlackBoxEvent                 = "BlackBoxEvent"
	ClassPolymerisation                = "Polymerisation"
	ClassDepolymerisation              = "Depolymerisation"
	ClassFailedReaction                = "FailedReaction"
	ClassCatalystActivity              = "CatalystActivity"
	ClassCatalystActivityReference     = "CatalystActivityReference"
	ClassPhysicalEntity                = "PhysicalEntity"
	ClassGenomeEncodedEntity           = "GenomeEncodedEntity"
	ClassEntityWithAccessionedSequence = "EntityWithAccessionedSequence"
	ClassComplex                       = "Complex"
	ClassPolymer                       = "Polymer"
	ClassSimpleEntity                  = "SimpleEntity"
	ClassEntitySet                     = "EntitySet"
	ClassDefinedSet                    = "DefinedSet"
	ClassCandidateSet                  = "CandidateSet"
	ClassOpenSet                       = "OpenSet"
	ClassReferenceEntity               = "ReferenceEntity"
	ClassReferenceSequence             = "ReferenceSequence"
	ClassReferenceGeneProduct          = "ReferenceGeneProduct"
	ClassReferenceIsoform              = "ReferenceIsoform"
	ClassReferenceDatabase             = "ReferenceDatabase"
	ClassTaxon                         = "Taxon"
	ClassSpecies                       = "Species"
	ClassDatabaseIdentifier            = "DatabaseIdentifier"
	ClassGOTerm                        = "GO_Term"
	ClassGOCellularComponent           = "GO_CellularComponent"
	ClassCompartment                   = "Compartment"
	ClassGOMolecularFunction           = "GO_MolecularFunction"
	ClassGOBiologicalProcess           = "GO_BiologicalProcess"
	ClassStableIdentifier              = "StableIdentifier"
	ClassPublication                   = "Publication"
	ClassLiteratureReference           = "LiteratureReference"
	ClassInstanceEdit                  = "InstanceEdit"
	ClassEvidenceType                  = "EvidenceType"
)

// Attribute names.
const (
	AttrActiveUnit                = "activeUnit"
	AttrAccession                 = "accession"
	AttrActivity                  = "activity"
	AttrCatalystActivity          = "catalystActivity"
	AttrCatalystActivityReference = "catalystActivityReference"
	AttrCompartment               = "compartment"
	AttrCreated                   = "created"
	AttrCrossReference            = "crossReference"
	AttrDateTime                  = "dateTime"
	AttrEvidenceType              = "evidenceType"
	AttrGeneName                  = "geneName"
	AttrGOBiologicalProcess       = "goBiologicalProcess"
	AttrHasComponent              = "hasComponent"
	AttrHasEvent                  = "hasEvent"
	AttrHasMember                 = "hasMember"
	AttrIdentifier                = "identifier"
	AttrInferredFrom              = "inferredFrom"
	AttrInput                     = "input"
	AttrLiteratureReference       = "literatureReference"
	AttrModified                  = "modified"
	AttrOutput                    = "output"
	AttrPhysicalEntity            = "physicalEntity"
	AttrPubMedIdentifier          = "pubMedIdentifier"
	AttrReferenceDatabase         = "referenceDatabase"
	AttrReferenceEntity           = "referenceEntity"
	AttrRepeatedUnit              = "repeatedUnit"
	AttrSecondaryIdentifier       = "secondaryIdentifier"
	AttrSpecies                   = "species"
	AttrStableIdentifier          = "stableIdentifier"
)

// superclass maps each schema class to its direct parent. Root classes are absent.
var superclass = map[string]string{
	ClassPathway:                       ClassEvent,
	ClassReactionlikeEvent:             ClassEvent,
	ClassReaction:                      ClassReactionlikeEvent,
	ClassBlackBoxEvent:                 ClassReactionlikeEvent,
	ClassPolymerisation:                ClassReactionlikeEvent,
	ClassDepolymerisation:              ClassReactionlikeEvent,
	ClassFailedReaction:                ClassReactionlikeEvent,
	ClassGenomeEncodedEntity:           ClassPhysicalEntity,
	ClassEntityWithAccessionedSequence: ClassGenomeEncodedEntity,
	ClassComplex:                       ClassPhysicalEntity,
	ClassPolymer:                       ClassPhysicalEntity,
	ClassSimpleEntity:                  ClassPhysicalEntity,
	ClassEntitySet:                     ClassPhysicalEntity,
	ClassDefinedSet:                    ClassEntitySet,
	ClassCandidateSet:                  ClassEntitySet,
	ClassOpenSet:                       ClassEntitySet,
	ClassReferenceSequence:             ClassReferenceEntity,
	ClassReferenceGeneProduct:          ClassReferenceSequence,
	ClassReferenceIsoform:              ClassReferenceGeneProduct,
	ClassSpecies:                       ClassTaxon,
	ClassGOCellularComponent:           ClassGOTerm,
	ClassCompartment:                   ClassGOCellularComponent,
	ClassGOMolecularFunction:           ClassGOTerm,
	ClassGOBiologicalProcess:           ClassGOTerm,
	ClassLiteratureReference:           ClassPublication,
}

// IsA returns true if class equals ancestor or descends from it in the schema.
// Unknown classes only match themselves.
func IsA(class, ancestor string) bool {
	for c := class; c != ""; c = superclass[c] {
		if c == ancestor {
			return true
		}
	}
	return false
}

// Subclasses returns class and every known class descending from it, sorted by name.
func Subclasses(class string) []string {
	out := []string{class}
	for c := range superclass {
		if c != class && IsA(c, class) {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}
