// Package registry holds the explicit capability tables of the module APIs.
// Each API type declares its action and data bindings once, from package init,
// and the registrar materializes them into routes at construction time.
package registry

import (
	"errors"
	"sort"
	"sync"

	"github.com/abhissng/chargehub/blame"
	"github.com/abhissng/chargehub/ocpp"
)

// ErrDuplicateBinding is the cause of every rejected duplicate registration.
var ErrDuplicateBinding = errors.New("duplicate binding")

// Table is the capability table of one API type. The first registration of a
// key stays live; later ones are rejected.
type Table[T any] struct {
	name string

	mu      sync.RWMutex
	actions map[ocpp.CallAction]ActionBinding[T]
	data    map[dataKey]DataBinding[T]
}

type dataKey struct {
	namespace ocpp.Namespace
	method    ocpp.HTTPMethod
}

// New creates an empty table named name.
func New[T any](name string) *Table[T] {
	return &Table[T]{
		name:    name,
		actions: make(map[ocpp.CallAction]ActionBinding[T]),
		data:    make(map[dataKey]DataBinding[T]),
	}
}

// Name returns the table name used in errors and logs.
func (t *Table[T]) Name() string {
	if t == nil {
		return ""
	}
	return t.name
}

// Expose registers an action binding.
func (t *Table[T]) Expose(b ActionBinding[T]) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.actions[b.Action]; exists {
		return blame.DuplicateBindingError(t.name, b.Action.String()).WithCause(ErrDuplicateBinding)
	}
	t.actions[b.Action] = b
	return nil
}

// ExposeData registers a data binding.
func (t *Table[T]) ExposeData(b DataBinding[T]) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := dataKey{namespace: b.Namespace, method: b.Method}
	if _, exists := t.data[key]; exists {
		return blame.DuplicateBindingError(t.name, b.Method.String()+" "+b.Namespace.String()).WithCause(ErrDuplicateBinding)
	}
	t.data[key] = b
	return nil
}

// MustExpose is Expose for package init; it panics on a duplicate.
func (t *Table[T]) MustExpose(bindings ...ActionBinding[T]) *Table[T] {
	for _, b := range bindings {
		if err := t.Expose(b); err != nil {
			panic(err)
		}
	}
	return t
}

// MustExposeData is ExposeData for package init; it panics on a duplicate.
func (t *Table[T]) MustExposeData(bindings ...DataBinding[T]) *Table[T] {
	for _, b := range bindings {
		if err := t.ExposeData(b); err != nil {
			panic(err)
		}
	}
	return t
}

// Actions returns every action binding sorted by action name.
func (t *Table[T]) Actions() []ActionBinding[T] {
	if t == nil {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]ActionBinding[T], 0, len(t.actions))
	for _, b := range t.actions {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Action < out[j].Action })
	return out
}

// DataBindings returns every data binding sorted by namespace, then method.
func (t *Table[T]) DataBindings() []DataBinding[T] {
	if t == nil {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]DataBinding[T], 0, len(t.data))
	for _, b := range t.data {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Namespace != out[j].Namespace {
			return out[i].Namespace < out[j].Namespace
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// ActionNames lists the bound actions, sorted.
func (t *Table[T]) ActionNames() []ocpp.CallAction {
	bindings := t.Actions()
	names := make([]ocpp.CallAction, len(bindings))
	for i, b := range bindings {
		names[i] = b.Action
	}
	return names
}
