package centralsystem

import (
	"context"
	"time"

	"github.com/abhissng/chargehub/cache"
	"github.com/abhissng/chargehub/ocpp"
	"github.com/abhissng/chargehub/ports"
)

const pendingNamespace = "pending"

// pendingCall is a CSMS call sent to a station and not yet answered.
type pendingCall struct {
	Group  ocpp.EventGroup `json:"group"`
	Action ocpp.CallAction `json:"action"`
	SentAt time.Time       `json:"sentAt"`
}

// pendingCalls keeps pending calls in the shared cache so any instance
// holding the socket can route the answer.
type pendingCalls struct {
	cache ports.Cache
	ttl   time.Duration
}

func (p *pendingCalls) key(tenantID, identifier, messageID string) string {
	return cache.Key(pendingNamespace, tenantID, identifier, messageID)
}

func (p *pendingCalls) put(ctx context.Context, tenantID, identifier, messageID string, call pendingCall) error {
	return cache.SetJSON(ctx, p.cache, p.key(tenantID, identifier, messageID), call, p.ttl)
}

// take returns the pending call and forgets it.
func (p *pendingCalls) take(ctx context.Context, tenantID, identifier, messageID string) (pendingCall, bool, error) {
	var call pendingCall
	key := p.key(tenantID, identifier, messageID)
	found, err := cache.GetJSON(ctx, p.cache, key, &call)
	if err != nil || !found {
		return call, false, err
	}
	return call, true, p.cache.Delete(ctx, key)
}
