//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"conversa/domain/event"
)

// EventSink is the delivery endpoint of exactly one connection session.
// Consume must not block the caller: implementations buffer and report
// an error when the session can no longer accept events, which the hub
// treats as that endpoint's disconnect.
type EventSink interface {
	Consume(e event.DomainEvent) error
}

// IHub is the single serialization point for all group and presence
// operations on a conversation name.
type IHub interface {
	Join(conversation, username string, sink EventSink)
	Leave(conversation, username string, sink EventSink)
	Publish(conversation string, e event.DomainEvent)
	Online(conversation string) []string
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// lifecycle events, avoiding manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
