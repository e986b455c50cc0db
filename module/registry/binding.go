package registry

import (
	"context"
	"fmt"

	"github.com/abhissng/chargehub/ocpp"
)

// Call carries the routing identity of an action request.
type Call struct {
	Identifier  string `json:"identifier" validate:"required,max=36"`
	TenantID    string `json:"tenantId" validate:"required"`
	CallbackURL string `json:"callbackUrl,omitempty" validate:"omitempty,url"`
}

// None marks an absent query or body schema on a data binding.
type None struct{}

// ActionBinding routes one protocol action to a handler of API type T.
type ActionBinding[T any] struct {
	Action ocpp.CallAction
	// Schema returns a fresh pointer the request body is decoded into.
	Schema func() any
	Invoke func(self T, ctx context.Context, call Call, payload any) (*ocpp.MessageConfirmation, error)
}

// DataBinding routes one verb on one entity namespace to a handler of API type T.
type DataBinding[T any] struct {
	Namespace ocpp.Namespace
	Method    ocpp.HTTPMethod
	// QuerySchema and BodySchema are nil when the route takes no query or body.
	QuerySchema func() any
	BodySchema  func() any
	Invoke      func(self T, ctx context.Context, query, body any) (any, error)
}

// Action builds an ActionBinding from a typed method expression such as
// (*TransactionsAPI).RequestStartTransaction.
func Action[T, P any](action ocpp.CallAction, fn func(T, context.Context, Call, *P) (*ocpp.MessageConfirmation, error)) ActionBinding[T] {
	return ActionBinding[T]{
		Action: action,
		Schema: func() any { return new(P) },
		Invoke: func(self T, ctx context.Context, call Call, payload any) (*ocpp.MessageConfirmation, error) {
			p, ok := payload.(*P)
			if !ok {
				return nil, fmt.Errorf("action %s: payload is %T, want %T", action, payload, new(P))
			}
			return fn(self, ctx, call, p)
		},
	}
}

// Data builds a DataBinding from a typed method expression. Use None for Q or B
// when the route has no query or no body.
func Data[T, Q, B any](namespace ocpp.Namespace, method ocpp.HTTPMethod, fn func(T, context.Context, *Q, *B) (any, error)) DataBinding[T] {
	return DataBinding[T]{
		Namespace:   namespace,
		Method:      method,
		QuerySchema: schemaOf[Q](),
		BodySchema:  schemaOf[B](),
		Invoke: func(self T, ctx context.Context, query, body any) (any, error) {
			q, err := cast[Q](query)
			if err != nil {
				return nil, fmt.Errorf("%s %s query: %w", method, namespace, err)
			}
			b, err := cast[B](body)
			if err != nil {
				return nil, fmt.Errorf("%s %s body: %w", method, namespace, err)
			}
			return fn(self, ctx, q, b)
		},
	}
}

func schemaOf[S any]() func() any {
	if _, absent := any(new(S)).(*None); absent {
		return nil
	}
	return func() any { return new(S) }
}

// cast turns a nil value into a zero S.
func cast[S any](v any) (*S, error) {
	if v == nil {
		return new(S), nil
	}
	s, ok := v.(*S)
	if !ok {
		return nil, fmt.Errorf("got %T, want %T", v, new(S))
	}
	return s, nil
}
