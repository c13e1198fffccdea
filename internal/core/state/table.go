package state

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var (
	ErrEmptyID     = errors.New("empty id")
	ErrDuplicateID = errors.New("duplicate id")
)

// Clearable is implemented by every table so the Registry can bulk-clear
// the whole world on teardown.
type Clearable interface {
	Name() string
	Len() int
	Clear()
}

// Table is an insertion-ordered id → entity store. It is the only owner of
// its entities; everything else holds a Ref.
// No reflect, no interface{}: pure generics.
type Table[T any] struct {
	name  string
	log   *zap.Logger
	data  map[string]*T
	order []string
}

func NewTable[T any](name string, log *zap.Logger) *Table[T] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Table[T]{
		name: name,
		log:  log,
		data: make(map[string]*T, 64),
	}
}

func (t *Table[T]) Name() string { return t.name }

// Insert adds an entity under id. Empty and already used ids are rejected.
func (t *Table[T]) Insert(id string, v *T) error {
	if id == "" {
		return fmt.Errorf("%s: %w", t.name, ErrEmptyID)
	}
	if _, ok := t.data[id]; ok {
		return fmt.Errorf("%s %q: %w", t.name, id, ErrDuplicateID)
	}
	t.data[id] = v
	t.order = append(t.order, id)
	return nil
}

// Get returns the entity for id. A miss is logged at error level since it
// means some reference points at content that does not exist.
func (t *Table[T]) Get(id string) (*T, bool) {
	v, ok := t.data[id]
	if !ok {
		t.log.Error("state ref not found", zap.String("table", t.name), zap.String("id", id))
		return nil, false
	}
	return v, true
}

// Lookup is Get without the miss log, for callers probing optional content.
func (t *Table[T]) Lookup(id string) (*T, bool) {
	v, ok := t.data[id]
	return v, ok
}

func (t *Table[T]) Has(id string) bool {
	_, ok := t.data[id]
	return ok
}

// Remove deletes id, keeping the order of the remaining entries.
func (t *Table[T]) Remove(id string) (*T, bool) {
	v, ok := t.data[id]
	if !ok {
		return nil, false
	}
	delete(t.data, id)
	for i, k := range t.order {
		if k == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return v, true
}

func (t *Table[T]) Len() int {
	return len(t.order)
}

// Keys returns a copy of the ids in insertion order.
func (t *Table[T]) Keys() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// At returns the i-th entry in insertion order.
func (t *Table[T]) At(i int) (string, *T) {
	id := t.order[i]
	return id, t.data[id]
}

// Each iterates in insertion order. Returning false stops the scan.
// Entries added during iteration are not visited; entries removed during
// iteration are skipped.
func (t *Table[T]) Each(fn func(id string, v *T) bool) {
	keys := t.order
	if len(keys) == 0 {
		return
	}
	snapshot := make([]string, len(keys))
	copy(snapshot, keys)
	for _, id := range snapshot {
		v, ok := t.data[id]
		if !ok {
			continue
		}
		if !fn(id, v) {
			return
		}
	}
}

// Ref builds a reference into this table.
func (t *Table[T]) Ref(id string) Ref[T] {
	return NewRef(t, id)
}

func (t *Table[T]) Clear() {
	clear(t.data)
	t.order = t.order[:0]
}
