package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsA(t *testing.T) {
	tests := []struct {
		class    string
		ancestor string
		want     bool
	}{
		{ClassReaction, ClassReactionlikeEvent, true},
		{ClassReaction, ClassEvent, true},
		{ClassBlackBoxEvent, ClassReactionlikeEvent, true},
		{ClassPathway, ClassReactionlikeEvent, false},
		{ClassDefinedSet, ClassEntitySet, true},
		{ClassCandidateSet, ClassPhysicalEntity, true},
		{ClassEntityWithAccessionedSequence, ClassEntityWithAccessionedSequence, true},
		{ClassComplex, ClassEntityWithAccessionedSequence, false},
		{ClassCompartment, ClassGOCellularComponent, true},
		{"SomethingNew", "SomethingNew", true},
		{"SomethingNew", ClassEvent, false},
	}
	for _, tt := range tests {
		t.Run(tt.class+"_"+tt.ancestor, func(t *testing.T) {
			assert.Equal(t, tt.want, IsA(tt.class, tt.ancestor))
		})
	}
}

func TestSubclasses(t *testing.T) {
	got := Subclasses(ClassEntitySet)
	assert.Equal(t, []string{ClassCandidateSet, ClassDefinedSet, ClassEntitySet, ClassOpenSet}, got)

	rle := Subclasses(ClassReactionlikeEvent)
	assert.Contains(t, rle, ClassReaction)
	assert.Contains(t, rle, ClassFailedReaction)
	assert.NotContains(t, rle, ClassPathway)
}

func TestInstanceString(t *testing.T) {
	inst := Instance{DBID: 42, Class: ClassReaction, DisplayName: "ATP hydrolysis"}
	assert.Equal(t, "[Reaction:42] ATP hydrolysis", inst.String())
	assert.True(t, inst.IsA(ClassEvent))
}

func TestValue(t *testing.T) {
	ref := Ref(Instance{DBID: 1, DisplayName: "UniProt"})
	assert.True(t, ref.IsInstance())
	assert.Equal(t, "UniProt", ref.String())

	s := Scalar("P12345")
	assert.False(t, s.IsInstance())
	assert.Equal(t, "P12345", s.String())
}
