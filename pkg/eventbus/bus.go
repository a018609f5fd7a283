// Package eventbus is a small in-process pub/sub bus used to fan monitoring events
// out to interested subscribers (loggers, alerters, dashboards) without coupling
// them to the monitor.
package eventbus

import (
	"context"
	"sync"
)

// Topic groups subscribers so events can be published to a subset of them.
type Topic string

const defaultTopic Topic = "__default__"

// Bus dispatches events to all subscribers on one or more topics.  Subscribers on
// the default topic receive every event regardless of the topics it was dispatched
// to, so a single subscriber can observe all monitors.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[Topic][]chan Event
	done        []chan struct{}
}

// New returns an empty bus.  Topics are created implicitly on first subscribe.
func New() *Bus {
	return &Bus{
		subscribers: make(map[Topic][]chan Event),
	}
}

// Subscribe registers a subscriber on the given topics, or on the default topic when
// none are given.  The returned event channel is closed when the bus shuts down; the
// subscriber should treat the close as a shutdown signal, finish any in-flight work,
// and then close the done channel.
func (b *Bus) Subscribe(topics ...Topic) (chan Event, chan struct{}) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := make(chan Event, 1)
	done := make(chan struct{})
	b.done = append(b.done, done)

	if len(topics) == 0 {
		topics = []Topic{defaultTopic}
	}
	for _, topic := range topics {
		b.subscribers[topic] = append(b.subscribers[topic], c)
	}
	return c, done
}

// Unsubscribe removes the subscriber and closes both of its channels.
func (b *Bus) Unsubscribe(c chan Event, done chan struct{}) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for topic, chs := range b.subscribers {
		for i, ch := range chs {
			if ch == c {
				close(ch)
				b.subscribers[topic] = append(b.subscribers[topic][:i], b.subscribers[topic][i+1:]...)
				break
			}
		}
	}
	for i, d := range b.done {
		if d == done {
			close(d)
			b.done = append(b.done[:i], b.done[i+1:]...)
			break
		}
	}
}

// Dispatch broadcasts the event to the named topics plus the default topic.  Topics
// with no subscribers drop the event silently, so monitors can publish on
// specialized topics without knowing whether anyone listens.
func (b *Bus) Dispatch(event Event, topics ...Topic) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	topics = append(topics, defaultTopic)
	for _, topic := range topics {
		channels := b.subscribers[topic]
		if len(channels) == 0 {
			continue
		}

		// copy so the send loop does not race with unsubscribes
		chs := append([]chan Event{}, channels...)
		go func(event Event, chs []chan Event) {
			for _, ch := range chs {
				ch <- event
			}
		}(event, chs)
	}
}

// Shutdown closes all subscriber channels and blocks until every subscriber closes
// its done channel, or until the context expires.
func (b *Bus) Shutdown(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	done := make(chan struct{})
	go waitAll(done, append([]chan struct{}{}, b.done...))

	for _, chs := range b.subscribers {
		for _, ch := range chs {
			close(ch)
		}
	}
	b.subscribers = make(map[Topic][]chan Event)
	b.done = nil

	select {
	case <-ctx.Done():
		return ErrShutdownTimeout
	case <-done:
		return nil
	}
}

func waitAll(done chan struct{}, all []chan struct{}) {
	var wg sync.WaitGroup
	for _, ch := range all {
		wg.Add(1)
		go func(c chan struct{}) {
			<-c
			wg.Done()
		}(ch)
	}
	wg.Wait()
	close(done)
}
