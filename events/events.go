package events

import (
	"reflect"
	"sync"
)

// EventHandler defines a function type where its input type is the generic type. A returned error stops the event
// from reaching any remaining handlers and is returned from Publish.
type EventHandler[T any] func(T) error

// globalEventHandlers describes a mapping of event types to EventHandler objects. These callbacks are called
// any time any EventEmitter publishes an event of that type.
var globalEventHandlers = make(map[reflect.Type][]any)

// globalEventHandlersLock is a lock that provides thread synchronization when accessing globalEventHandlers.
var globalEventHandlersLock sync.RWMutex

// SubscribeAny adds an EventHandler to the list of global EventHandler objects for a given event data type.
// When an event of that type is published by any emitter, the callback will be triggered with the event data.
// Note: An EventHandler subscribed here will remain throughout program execution. Objects which should be freed from
// memory should not use this method to avoid memory leaks.
func SubscribeAny[T any](callback EventHandler[T]) {
	// Reflect on a nil object to get the generic type.
	eventType := reflect.TypeOf((*T)(nil)).Elem()

	globalEventHandlersLock.Lock()
	defer globalEventHandlersLock.Unlock()
	globalEventHandlers[eventType] = append(globalEventHandlers[eventType], callback)
}

// EventEmitter describes a provider which can subscribe EventHandler methods for callback when the event type (generic)
// is published. It additionally provides methods for publishing events. Publish may be called from multiple
// goroutines at once; handlers must be safe for that.
type EventEmitter[T any] struct {
	// subscriptions defines the EventHandler methods which should be invoked when a new event is published to this
	// emitter.
	subscriptions []EventHandler[T]

	// subscriptionsLock guards subscriptions.
	subscriptionsLock sync.RWMutex
}

// Publish emits the provided event by calling every EventHandler subscribed to this emitter, followed by every
// global EventHandler for the event type. Returns the first error a handler returns.
func (e *EventEmitter[T]) Publish(event T) error {
	// Copy our subscriptions so handlers may subscribe without deadlocking
	e.subscriptionsLock.RLock()
	subscriptions := append([]EventHandler[T](nil), e.subscriptions...)
	e.subscriptionsLock.RUnlock()

	// Call every subscribed EventHandler
	for _, subscription := range subscriptions {
		if err := subscription(event); err != nil {
			return err
		}
	}

	// Fetch the global handlers for the generic type
	eventType := reflect.TypeOf((*T)(nil)).Elem()
	globalEventHandlersLock.RLock()
	callbacks := append([]any(nil), globalEventHandlers[eventType]...)
	globalEventHandlersLock.RUnlock()

	// Call all relevant event handlers.
	for _, callback := range callbacks {
		if err := callback.(EventHandler[T])(event); err != nil {
			return err
		}
	}
	return nil
}

// Subscribe adds an EventHandler to the list of subscribed EventHandler objects for this emitter. When an event is
// published, the callback will be triggered with the event data.
func (e *EventEmitter[T]) Subscribe(callback EventHandler[T]) {
	e.subscriptionsLock.Lock()
	defer e.subscriptionsLock.Unlock()
	e.subscriptions = append(e.subscriptions, callback)
}
