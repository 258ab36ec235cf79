// Package eventbus implements the typed multi-producer broadcast channel
// every other core component publishes domain events through and PluginHost
// delivers, in order, to enabled plugins.
//
// Grounded on the state-change-notification pattern of a single dispatch
// goroutine draining a buffered channel and fanning out to per-subscriber
// channels, the way a daemon coordinator in the reference pack serializes
// state-change notifications with ordered locking instead of a shared mutex
// held across a send.
package eventbus

import (
	"sync"

	"github.com/kodeflow/tempod/internal/domain"
)

// subscriberBuffer bounds how far a subscriber may lag before it is told to
// resynchronize instead of blocking the publisher.
const subscriberBuffer = 256

// Lagged is delivered in place of dropped events when a subscriber's buffer
// fills. N is how many events were dropped.
type Lagged struct{ N int }

// Bus is a typed broadcast channel. The zero value is not usable; use New.
type Bus struct {
	mu          sync.Mutex
	subscribers map[int64]*subscription
	nextID      int64
	publish     chan domain.Event
	done        chan struct{}
	wg          sync.WaitGroup
}

type subscription struct {
	ch     chan any // domain.Event or Lagged
	closed bool
}

// New creates a Bus and starts its single dispatch goroutine. Call Close to
// stop it.
func New() *Bus {
	b := &Bus{
		subscribers: make(map[int64]*subscription),
		publish:     make(chan domain.Event, 1024),
		done:        make(chan struct{}),
	}
	b.wg.Add(1)
	go b.dispatch()
	return b
}

// Subscription is the handle returned by Subscribe; Events delivers every
// event published after subscription, in FIFO order per publisher. Unsubscribe
// releases the handle.
type Subscription struct {
	id     int64
	bus    *Bus
	ch     chan any
}

// Events returns the channel the subscriber should range over. Values are
// either domain.Event or eventbus.Lagged.
func (s *Subscription) Events() <-chan any { return s.ch }

// Unsubscribe stops delivery to this subscription and releases its buffer.
func (s *Subscription) Unsubscribe() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	if sub, ok := s.bus.subscribers[s.id]; ok {
		sub.closed = true
		close(sub.ch)
		delete(s.bus.subscribers, s.id)
	}
}

// Subscribe registers a new subscriber and returns its handle.
func (b *Bus) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	sub := &subscription{ch: make(chan any, subscriberBuffer)}
	b.subscribers[id] = sub
	return &Subscription{id: id, bus: b, ch: sub.ch}
}

// Publish enqueues event for delivery. It never blocks the caller on a slow
// subscriber — the dispatch goroutine owns delivery order and backpressure.
func (b *Bus) Publish(event domain.Event) {
	select {
	case b.publish <- event:
	case <-b.done:
	}
}

// Close stops the dispatch goroutine and closes every subscriber channel.
func (b *Bus) Close() {
	close(b.done)
	b.wg.Wait()
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, sub := range b.subscribers {
		if !sub.closed {
			close(sub.ch)
		}
		delete(b.subscribers, id)
	}
}

func (b *Bus) dispatch() {
	defer b.wg.Done()
	for {
		select {
		case ev := <-b.publish:
			b.deliver(ev)
		case <-b.done:
			// Drain anything already queued before a subscriber sees us stop,
			// preserving FIFO order for events published just before shutdown.
			for {
				select {
				case ev := <-b.publish:
					b.deliver(ev)
					continue
				default:
				}
				return
			}
		}
	}
}

func (b *Bus) deliver(ev domain.Event) {
	b.mu.Lock()
	subs := make([]*subscription, 0, len(b.subscribers))
	for _, s := range b.subscribers {
		subs = append(subs, s)
	}
	b.mu.Unlock()

	for _, s := range subs {
		select {
		case s.ch <- ev:
		default:
			// Buffer full: drop the event and fold it into a Lagged marker so
			// the subscriber knows to resynchronize through a query instead
			// of silently missing state.
			select {
			case s.ch <- Lagged{N: 1}:
			default:
			}
		}
	}
}
