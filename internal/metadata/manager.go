package metadata

import (
	"sync/atomic"

	"github.com/yashagw/relcore/internal/relation"
)

// Manager holds the current catalog for concurrent readers and writers.
// Readers take a snapshot and keep using it; writers swap in a new catalog,
// so nobody ever sees a partially updated one.
type Manager struct {
	current atomic.Pointer[Catalog]
}

func NewManager(catalog *Catalog) *Manager {
	if catalog == nil {
		catalog = NewCatalog()
	}
	m := &Manager{}
	m.current.Store(catalog)
	return m
}

// Snapshot returns the current catalog.
func (m *Manager) Snapshot() *Catalog {
	return m.current.Load()
}

// CreateTable registers r, replacing any table of the same name.
func (m *Manager) CreateTable(r *relation.Relation) {
	for {
		old := m.current.Load()
		if m.current.CompareAndSwap(old, old.With(r)) {
			return
		}
	}
}

// DropTable removes a table, reporting whether it existed.
func (m *Manager) DropTable(name string) bool {
	for {
		old := m.current.Load()
		if !old.Has(name) {
			return false
		}
		if m.current.CompareAndSwap(old, old.Without(name)) {
			return true
		}
	}
}

// GetTable looks up a table in the current catalog.
func (m *Manager) GetTable(name string) (*relation.Relation, error) {
	return m.Snapshot().Get(name)
}
