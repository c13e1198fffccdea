package state

// Ref is an id-based handle into a Table. It never owns the target: the
// entity is looked up through the table on every Get, so a Ref may be built
// before its target exists and stays safe after the target is removed.
//
// The zero value is the empty reference. Refs are comparable and can be used
// as map keys; two refs into the same table are equal iff their ids are.
type Ref[T any] struct {
	table *Table[T]
	id    string
}

func NewRef[T any](t *Table[T], id string) Ref[T] {
	return Ref[T]{table: t, id: id}
}

// None returns the empty reference.
func None[T any]() Ref[T] {
	return Ref[T]{}
}

func (r Ref[T]) ID() string { return r.id }

func (r Ref[T]) IsEmpty() bool { return r.id == "" }

// Get resolves the reference. The empty ref resolves to (nil, false)
// silently; an id missing from the table is logged by the table.
func (r Ref[T]) Get() (*T, bool) {
	if r.id == "" || r.table == nil {
		return nil, false
	}
	return r.table.Get(r.id)
}

// Resolve is Get for call sites that treat a miss as "nothing to do".
func (r Ref[T]) Resolve() *T {
	v, _ := r.Get()
	return v
}

// Equal compares by id.
func (r Ref[T]) Equal(o Ref[T]) bool { return r.id == o.id }

// Less orders by id.
func (r Ref[T]) Less(o Ref[T]) bool { return r.id < o.id }

func (r Ref[T]) String() string { return r.id }
