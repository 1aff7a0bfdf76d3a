//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
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

// Handle is a live connection owned by the transport layer.
// The registry keeps a non-owning reference and compares handles by ConnectionID.
type Handle interface {
	ConnectionID() domain.ConnectionID
	Consume(ctx context.Context, e event.DomainEvent) error
}

type IPresenceRegistry interface {
	Register(identity domain.Identity, handle Handle)
	Lookup(identity domain.Identity) (Handle, bool)
	Unregister(handle Handle)
	Len() int
}

type IDispatcher interface {
	Dispatch(ctx context.Context, message domain.Message)
}
