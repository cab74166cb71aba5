package experience

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/ignite/golden-ipa/internal/domain"
)

// Event is a direct resolver invocation from the public query executor.
// Arguments holds the field arguments, Source the already resolved parent
// object for relation fields.
type Event struct {
	Arguments json.RawMessage `json:"arguments"`
	Source    json.RawMessage `json:"source"`
	Info      EventInfo       `json:"info"`
}

// EventInfo names the field being resolved.
type EventInfo struct {
	ParentTypeName string `json:"parentTypeName"`
	FieldName      string `json:"fieldName"`
}

// Field returns the "Parent.field" key of the event.
func (i EventInfo) Field() string {
	return i.ParentTypeName + "." + i.FieldName
}

type fieldResolver func(ctx context.Context, ev Event) (any, error)

// Resolve dispatches ev to the resolver of its field.
func (r *Resolvers) Resolve(ctx context.Context, ev Event) (any, error) {
	resolve, ok := r.fields()[ev.Info.Field()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, ev.Info.Field())
	}
	return resolve(ctx, ev)
}

func (r *Resolvers) fields() map[string]fieldResolver {
	return map[string]fieldResolver{
		"Mutation.createCustomer": func(ctx context.Context, ev Event) (any, error) {
			var args CreateCustomerArgs
			if err := decodePart("arguments", ev.Arguments, &args); err != nil {
				return nil, err
			}
			return r.CreateCustomer(ctx, args)
		},
		"Query.getCustomer": func(ctx context.Context, ev Event) (any, error) {
			var args GetCustomerArgs
			if err := decodePart("arguments", ev.Arguments, &args); err != nil {
				return nil, err
			}
			return r.GetCustomer(ctx, args)
		},
		"Mutation.createOrder": func(ctx context.Context, ev Event) (any, error) {
			var args CreateOrderArgs
			if err := decodePart("arguments", ev.Arguments, &args); err != nil {
				return nil, err
			}
			return r.CreateOrder(ctx, args)
		},
		"Customer.orders": func(ctx context.Context, ev Event) (any, error) {
			var source domain.Customer
			if err := decodePart("source", ev.Source, &source); err != nil {
				return nil, err
			}
			return r.CustomerOrders(ctx, source)
		},
	}
}

// decodePart decodes one part of the event. An absent or null part leaves
// v zero so that resolver validation reports the missing fields.
func decodePart(name string, raw json.RawMessage, v any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBadEvent, name, err)
	}
	return nil
}
