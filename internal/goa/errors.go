package goa

import (
	"errors"
	"fmt"

	"github.com/reactome/goa-release/internal/models"
)

var (
	// ErrMissingAttribute means curated data lacks an attribute a line cannot be built without.
	ErrMissingAttribute = errors.New("missing required attribute")

	// ErrInvalidArgument means a protein-only operation received a non-EWAS instance.
	ErrInvalidArgument = errors.New("invalid argument")
)

func missingAttribute(inst models.Instance, attr string) error {
	return fmt.Errorf("%w: %s has no %s", ErrMissingAttribute, inst, attr)
}

func requireEWAS(inst models.Instance) error {
	if !inst.IsA(models.ClassEntityWithAccessionedSequence) {
		return fmt.Errorf("%w: %s is not an EntityWithAccessionedSequence", ErrInvalidArgument, inst)
	}
	return nil
}
