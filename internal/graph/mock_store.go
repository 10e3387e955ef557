package graph

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/reactome/goa-release/internal/models"
)

// MockStore is an in-memory implementation of Store for testing and fixtures.
type MockStore struct {
	mu         sync.RWMutex
	instances  map[int64]models.Instance
	attributes map[int64]map[string][]models.Value
	nextID     int64
	failWith   error
}

// NewMockStore creates a new mock store.
func NewMockStore() *MockStore {
	return &MockStore{
		instances:  make(map[int64]models.Instance),
		attributes: make(map[int64]map[string][]models.Value),
		nextID:     1,
	}
}

// Add registers a new instance with an auto-assigned DBID and returns it.
func (m *MockStore) Add(class, displayName string) models.Instance {
	m.mu.Lock()
	defer m.mu.Unlock()
	for {
		if _, taken := m.instances[m.nextID]; !taken {
			break
		}
		m.nextID++
	}
	inst := models.Instance{DBID: m.nextID, Class: class, DisplayName: displayName}
	m.instances[inst.DBID] = inst
	m.nextID++
	return inst
}

// Put registers inst under its own DBID, replacing any previous instance with that id.
func (m *MockStore) Put(inst models.Instance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.instances[inst.DBID] = inst
}

// Set replaces all values of attr on inst.
func (m *MockStore) Set(inst models.Instance, attr string, values ...models.Value) {
	m.mu.Lock()
	defer m.mu.Unlock()
	attrs, ok := m.attributes[inst.DBID]
	if !ok {
		attrs = make(map[string][]models.Value)
		m.attributes[inst.DBID] = attrs
	}
	cp := make([]models.Value, len(values))
	copy(cp, values)
	attrs[attr] = cp
}

// SetRefs replaces all values of attr on inst with references to targets.
func (m *MockStore) SetRefs(inst models.Instance, attr string, targets ...models.Instance) {
	values := make([]models.Value, len(targets))
	for i, t := range targets {
		values[i] = models.Ref(t)
	}
	m.Set(inst, attr, values...)
}

// SetText replaces all values of attr on inst with scalar texts.
func (m *MockStore) SetText(inst models.Instance, attr string, texts ...string) {
	values := make([]models.Value, len(texts))
	for i, t := range texts {
		values[i] = models.Scalar(t)
	}
	m.Set(inst, attr, values...)
}

// FailWith makes every subsequent read return err wrapped in ErrStoreAccess. Pass nil to recover.
func (m *MockStore) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

func (m *MockStore) failure() error {
	if m.failWith != nil {
		return fmt.Errorf("%w: %w", ErrStoreAccess, m.failWith)
	}
	return nil
}

// FetchInstancesByClass returns instances of class or its subclasses, sorted by DBID.
func (m *MockStore) FetchInstancesByClass(_ context.Context, class string) ([]models.Instance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.failure(); err != nil {
		return nil, err
	}

	var out []models.Instance
	for _, inst := range m.instances {
		if inst.IsA(class) {
			out = append(out, inst)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DBID < out[j].DBID })
	return out, nil
}

// AttributeValue returns the first value of attr or nil.
func (m *MockStore) AttributeValue(ctx context.Context, inst models.Instance, attr string) (*models.Value, error) {
	values, err := m.AttributeValues(ctx, inst, attr)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	v := values[0]
	return &v, nil
}

// AttributeValues returns a copy of all values of attr.
func (m *MockStore) AttributeValues(_ context.Context, inst models.Instance, attr string) ([]models.Value, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.failure(); err != nil {
		return nil, err
	}

	values := m.attributes[inst.DBID][attr]
	out := make([]models.Value, len(values))
	copy(out, values)
	return out, nil
}

// Referers scans every instance for attr values pointing at inst.
func (m *MockStore) Referers(_ context.Context, inst models.Instance, attr string) ([]models.Instance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.failure(); err != nil {
		return nil, err
	}

	var out []models.Instance
	for id, attrs := range m.attributes {
		for _, v := range attrs[attr] {
			if v.Instance != nil && v.Instance.DBID == inst.DBID {
				out = append(out, m.instances[id])
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DBID < out[j].DBID })
	return out, nil
}

// Ping reports the configured failure, if any.
func (m *MockStore) Ping(_ context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.failure()
}

// Close is a no-op for the mock store.
func (m *MockStore) Close() error {
	return nil
}
