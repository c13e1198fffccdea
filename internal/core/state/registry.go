package state

// Registry tracks every table of a world so teardown can drop them all at
// once. Refs hold no ownership, so tables can be cleared in any order.
type Registry struct {
	tables []Clearable
}

func NewRegistry() *Registry {
	return &Registry{
		tables: make([]Clearable, 0, 32),
	}
}

// Register adds a table to the registry.
func (r *Registry) Register(t Clearable) {
	r.tables = append(r.tables, t)
}

// Tables returns the registered tables in registration order.
func (r *Registry) Tables() []Clearable {
	return r.tables
}

// ClearAll empties every registered table.
func (r *Registry) ClearAll() {
	for _, t := range r.tables {
		t.Clear()
	}
}

// Register is a helper that builds a table and registers it in one step.
func Register[T any](r *Registry, t *Table[T]) *Table[T] {
	r.Register(t)
	return t
}
