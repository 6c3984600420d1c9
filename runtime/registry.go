package runtime

import (
	"sync"

	"conversa/contract"
)

// Registry maintains, per conversation name, the set of live delivery
// endpoints. Groups are created lazily on first subscription and pruned
// when the last endpoint leaves, so an idle server holds no group state.
type Registry struct {
	mu     sync.RWMutex
	groups map[string]map[contract.EventSink]struct{}
}

func NewRegistry() *Registry {
	return &Registry{groups: make(map[string]map[contract.EventSink]struct{})}
}

// Subscribe adds the endpoint to the conversation's group.
func (r *Registry) Subscribe(conversation string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	group, ok := r.groups[conversation]
	if !ok {
		group = make(map[contract.EventSink]struct{})
		r.groups[conversation] = group
	}
	group[sink] = struct{}{}
}

// Unsubscribe removes the endpoint. Removing an absent endpoint is a
// no-op. An emptied group is deleted to avoid leaking entries for
// conversations nobody is connected to anymore.
func (r *Registry) Unsubscribe(conversation string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	group, ok := r.groups[conversation]
	if !ok {
		return
	}
	delete(group, sink)
	if len(group) == 0 {
		delete(r.groups, conversation)
	}
}

// Sinks returns a snapshot of the conversation's current endpoints.
// Returns nil if the group doesn't exist.
func (r *Registry) Sinks(conversation string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	group, ok := r.groups[conversation]
	if !ok {
		return nil
	}
	sinks := make([]contract.EventSink, 0, len(group))
	for sink := range group {
		sinks = append(sinks, sink)
	}
	return sinks
}
