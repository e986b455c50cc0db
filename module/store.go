package module

import (
	"context"
	"errors"

	"github.com/abhissng/chargehub/blame"
	"github.com/abhissng/chargehub/cache"
	"github.com/abhissng/chargehub/ocpp"
	"github.com/abhissng/chargehub/ports"
)

const entityNamespace = "entity"

// StationQuery selects the entries of one station on the data routes.
type StationQuery struct {
	Identifier string `json:"identifier" validate:"required,max=36"`
	TenantID   string `json:"tenantId" validate:"required"`
}

// Store keeps entities of one namespace in the shared cache, keyed by tenant and id.
type Store[V any] struct {
	cache     ports.Cache
	namespace ocpp.Namespace
}

// NewStore returns the store of namespace backed by c.
func NewStore[V any](c ports.Cache, namespace ocpp.Namespace) *Store[V] {
	return &Store[V]{cache: c, namespace: namespace}
}

func (s *Store[V]) key(tenantID, id string) string {
	return cache.Key(entityNamespace, s.namespace.String(), tenantID, id)
}

// Get returns the entry, or an entry-not-found blame when it is absent.
func (s *Store[V]) Get(ctx context.Context, tenantID, id string) (*V, error) {
	v := new(V)
	found, err := cache.GetJSON(ctx, s.cache, s.key(tenantID, id), v)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, blame.EntryNotFoundError(s.namespace.String(), id)
	}
	return v, nil
}

// Put stores v without expiry.
func (s *Store[V]) Put(ctx context.Context, tenantID, id string, v V) error {
	return cache.SetJSON(ctx, s.cache, s.key(tenantID, id), v, 0)
}

// Update applies fn to the current entry, or to a zero V when absent, and stores the result.
// Concurrent updates of the same key are last-writer-wins.
func (s *Store[V]) Update(ctx context.Context, tenantID, id string, fn func(v *V)) (*V, error) {
	v := new(V)
	if _, err := cache.GetJSON(ctx, s.cache, s.key(tenantID, id), v); err != nil {
		return nil, err
	}
	fn(v)
	if err := s.Put(ctx, tenantID, id, *v); err != nil {
		return nil, err
	}
	return v, nil
}

// Delete removes the entry.
func (s *Store[V]) Delete(ctx context.Context, tenantID, id string) error {
	return s.cache.Delete(ctx, s.key(tenantID, id))
}

// IsNotFound reports whether err is an entry-not-found blame.
func IsNotFound(err error) bool {
	var b blame.Blame
	return errors.As(err, &b) && b.FetchErrCode() == blame.ErrorEntryNotFound
}
