// Package runtime coordinates live connections: group membership,
// presence bookkeeping and event fan-out. It holds no business rules
// beyond the ordering and atomicity guarantees of those operations.
package runtime

import (
	"log/slog"
	"sync"

	"conversa/contract"
	"conversa/domain/event"
)

// Failer is implemented by sinks that can be torn down by the hub when
// delivery to them fails. The call must not block: it only signals the
// owning session, whose own close path performs the Leave cleanup.
type Failer interface {
	Fail(err error)
}

// Hub owns the group registry and the presence registry and serializes
// every compound operation per conversation name. Holding one lock for
// the whole of Join and Leave guarantees that a roster can never observe
// a session registered in the group but missing from presence, and that
// events published on one conversation reach every sink in publish order.
// Operations on distinct conversation names do not contend.
type Hub struct {
	mu       sync.Mutex
	locks    map[string]*sync.Mutex
	registry *Registry
	presence *Presence
	log      *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		locks:    make(map[string]*sync.Mutex),
		registry: NewRegistry(),
		presence: NewPresence(),
		log:      log,
	}
}

// Join registers the endpoint, announces the arrival to the group and
// marks the principal online, as one serialized step. The joining sink
// alone receives an OnlineRoster snapshot taken before this principal
// was added, then learns of its own arrival through the user_join echo,
// exactly like every other member.
func (h *Hub) Join(conversation, username string, sink contract.EventSink) {
	lock := h.lockFor(conversation)
	lock.Lock()
	defer lock.Unlock()

	h.registry.Subscribe(conversation, sink)
	roster := event.OnlineRoster{Conversation: conversation, Users: h.presence.List(conversation)}
	if err := sink.Consume(roster); err != nil {
		h.log.Warn("roster delivery failed on join",
			"conversation", conversation, "user", username, "error", err)
	}
	h.deliver(conversation, event.UserJoined{Conversation: conversation, Username: username})
	h.presence.Join(conversation, username)
}

// Leave announces the departure, marks the principal offline and revokes
// the endpoint, as one serialized step. Safe to call for an endpoint that
// was already evicted by a failed delivery.
func (h *Hub) Leave(conversation, username string, sink contract.EventSink) {
	lock := h.lockFor(conversation)
	lock.Lock()
	defer lock.Unlock()

	h.deliver(conversation, event.UserLeft{Conversation: conversation, Username: username})
	h.presence.Leave(conversation, username)
	h.registry.Unsubscribe(conversation, sink)
}

// Publish delivers the event to every current endpoint of the group,
// the originator included.
func (h *Hub) Publish(conversation string, e event.DomainEvent) {
	lock := h.lockFor(conversation)
	lock.Lock()
	defer lock.Unlock()

	h.deliver(conversation, e)
}

// Online returns the conversation's current roster.
func (h *Hub) Online(conversation string) []string {
	return h.presence.List(conversation)
}

// deliver fans out to the group snapshot. A failing sink never aborts
// delivery to the others: it is evicted from the group and signalled so
// its session runs its own disconnect cleanup.
func (h *Hub) deliver(conversation string, e event.DomainEvent) {
	for _, sink := range h.registry.Sinks(conversation) {
		err := sink.Consume(e)
		if err == nil {
			continue
		}
		h.log.Warn("evicting unreachable endpoint",
			"conversation", conversation, "error", err)
		h.registry.Unsubscribe(conversation, sink)
		if f, ok := sink.(Failer); ok {
			f.Fail(err)
		}
	}
}

func (h *Hub) lockFor(conversation string) *sync.Mutex {
	h.mu.Lock()
	defer h.mu.Unlock()

	lock, ok := h.locks[conversation]
	if !ok {
		lock = &sync.Mutex{}
		h.locks[conversation] = lock
	}
	return lock
}
