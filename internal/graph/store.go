package graph

import (
	"context"
	"errors"

	"github.com/reactome/goa-release/internal/models"
)

// ErrStoreAccess wraps every connectivity or query failure raised by a backend.
// Callers treat it as fatal for the whole generation run.
var ErrStoreAccess = errors.New("graph store access failed")

// Store is the read-only view of the pathway knowledge graph.
type Store interface {
	// FetchInstancesByClass returns every instance of class, including instances of its subclasses.
	FetchInstancesByClass(ctx context.Context, class string) ([]models.Instance, error)

	// AttributeValue returns the first value of attr, or nil when the attribute is unset.
	AttributeValue(ctx context.Context, inst models.Instance, attr string) (*models.Value, error)

	// AttributeValues returns all values of attr in their stored order.
	AttributeValues(ctx context.Context, inst models.Instance, attr string) ([]models.Value, error)

	// Referers returns the instances whose attr points at inst.
	Referers(ctx context.Context, inst models.Instance, attr string) ([]models.Instance, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// Backend identifies a concrete Store implementation.
type Backend string

const (
	BackendNeo4j    Backend = "neo4j"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// ValidBackends is the set of all supported graph backends.
var ValidBackends = []Backend{
	BackendNeo4j,
	BackendSQLite,
	BackendPostgres,
}

// IsValid returns true if the backend is recognized.
func (b Backend) IsValid() bool {
	for _, v := range ValidBackends {
		if b == v {
			return true
		}
	}
	return false
}

// InstanceValue returns the first instance-valued entry of attr, or nil.
func InstanceValue(ctx context.Context, st Store, inst models.Instance, attr string) (*models.Instance, error) {
	v, err := st.AttributeValue(ctx, inst, attr)
	if err != nil {
		return nil, err
	}
	if v == nil || v.Instance == nil {
		return nil, nil
	}
	return v.Instance, nil
}

// InstanceValues returns the instance-valued entries of attr, dropping scalars.
func InstanceValues(ctx context.Context, st Store, inst models.Instance, attr string) ([]models.Instance, error) {
	vals, err := st.AttributeValues(ctx, inst, attr)
	if err != nil {
		return nil, err
	}
	out := make([]models.Instance, 0, len(vals))
	for _, v := range vals {
		if v.Instance != nil {
			out = append(out, *v.Instance)
		}
	}
	return out, nil
}

// TextValue returns the first value of attr as text and whether it was set.
func TextValue(ctx context.Context, st Store, inst models.Instance, attr string) (string, bool, error) {
	v, err := st.AttributeValue(ctx, inst, attr)
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return v.String(), true, nil
}
