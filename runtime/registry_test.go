package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"

	"conversa/domain/event"
)

type nopSink struct{ id int }

func (s *nopSink) Consume(e event.DomainEvent) error { return nil }

func TestRegistry_Subscribe_One_Conversation_One_Sink(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sink := &nopSink{}

	// Given no group exists
	req.Nil(registry.Sinks("alice__bob"))

	// When an endpoint subscribes
	registry.Subscribe("alice__bob", sink)

	// Then the group holds exactly that endpoint
	sinks := registry.Sinks("alice__bob")
	req.Len(sinks, 1)
	req.Contains(sinks, sink)
}

func TestRegistry_Subscribe_One_Conversation_Multiple_Sinks(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sink1 := &nopSink{id: 1}
	sink2 := &nopSink{id: 2}

	// When two endpoints subscribe the same conversation
	registry.Subscribe("alice__bob", sink1)
	registry.Subscribe("alice__bob", sink2)

	// Then both are in the group
	sinks := registry.Sinks("alice__bob")
	req.Len(sinks, 2)
	req.Contains(sinks, sink1)
	req.Contains(sinks, sink2)
}

func TestRegistry_Unsubscribe_Prunes_Empty_Group(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sink := &nopSink{}

	// Given one subscribed endpoint
	registry.Subscribe("alice__bob", sink)

	// When it unsubscribes
	registry.Unsubscribe("alice__bob", sink)

	// Then the group is gone entirely
	req.Nil(registry.Sinks("alice__bob"))
	req.Empty(registry.groups)
}

func TestRegistry_Unsubscribe_Absent_Sink_Is_Noop(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sink1 := &nopSink{id: 1}
	sink2 := &nopSink{id: 2}

	registry.Subscribe("alice__bob", sink1)

	// Removing an endpoint that never subscribed changes nothing
	registry.Unsubscribe("alice__bob", sink2)
	registry.Unsubscribe("clara__dan", sink2)

	req.Len(registry.Sinks("alice__bob"), 1)
}

func TestRegistry_Groups_Are_Isolated(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sink1 := &nopSink{id: 1}
	sink2 := &nopSink{id: 2}

	registry.Subscribe("alice__bob", sink1)
	registry.Subscribe("clara__dan", sink2)

	req.Len(registry.Sinks("alice__bob"), 1)
	req.Contains(registry.Sinks("alice__bob"), sink1)
	req.Len(registry.Sinks("clara__dan"), 1)
	req.Contains(registry.Sinks("clara__dan"), sink2)
}
