package patterns

import (
	"sync"

	"github.com/pkg/errors"
)

// Subject represents an observable subject
type Subject interface {
	// Subscribe registers an observer
	Subscribe(observer interface{}) error
	// Unsubscribe removes an observer
	Unsubscribe(observer interface{}) error
	// Notify notifies all observers
	Notify(event interface{})
}

// Observer receives events from a Subject
type Observer interface {
	Observe(event interface{})
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(event interface{})

// Observe implements Observer
func (f ObserverFunc) Observe(event interface{}) {
	f(event)
}

// NewSubject creates a Subject that delivers events synchronously in subscription order
func NewSubject() Subject {
	return &subject{}
}

type subject struct {
	observers []Observer
	mu        sync.RWMutex
}

func (s *subject) Subscribe(observer interface{}) error {
	o, ok := observer.(Observer)
	if !ok {
		return errors.Errorf("unsupported observer type %T", observer)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
	return nil
}

func (s *subject) Unsubscribe(observer interface{}) error {
	if _, ok := observer.(ObserverFunc); ok {
		return errors.New("function observers cannot be unsubscribed")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, o := range s.observers {
		if o == observer {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			return nil
		}
	}
	return errors.New("observer not found")
}

func (s *subject) Notify(event interface{}) {
	s.mu.RLock()
	observers := append([]Observer(nil), s.observers...)
	s.mu.RUnlock()
	for _, o := range observers {
		o.Observe(event)
	}
}
