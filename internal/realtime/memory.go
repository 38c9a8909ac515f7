package realtime

import (
	"context"
	"sync"
)

// MemoryBroker is an in-process Broker.
type MemoryBroker struct {
	mu     sync.RWMutex
	topics map[string]map[*memorySub]struct{}
	closed bool
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{topics: make(map[string]map[*memorySub]struct{})}
}

type memorySub struct {
	b     *MemoryBroker
	topic string
	ch    chan []byte
	once  sync.Once
}

func (s *memorySub) C() <-chan []byte { return s.ch }

func (s *memorySub) Close() error {
	s.once.Do(func() {
		s.b.mu.Lock()
		if subs, ok := s.b.topics[s.topic]; ok {
			delete(subs, s)
			if len(subs) == 0 {
				delete(s.b.topics, s.topic)
			}
		}
		close(s.ch)
		s.b.mu.Unlock()
	})
	return nil
}

// Publish never blocks: a full subscriber buffer drops the payload.
func (b *MemoryBroker) Publish(_ context.Context, topic string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	for s := range b.topics[topic] {
		select {
		case s.ch <- payload:
		default:
		}
	}
	return nil
}

// Subscribe registers a subscriber until Close or ctx is done.
func (b *MemoryBroker) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	s := &memorySub{b: b, topic: topic, ch: make(chan []byte, subscriberBuffer)}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrClosed
	}
	if b.topics[topic] == nil {
		b.topics[topic] = make(map[*memorySub]struct{})
	}
	b.topics[topic][s] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = s.Close()
	}()
	return s, nil
}

// Subscribers returns the number of live subscribers on topic.
func (b *MemoryBroker) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

// Close ends every subscription.
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	var subs []*memorySub
	for _, set := range b.topics {
		for s := range set {
			subs = append(subs, s)
		}
	}
	b.mu.Unlock()
	for _, s := range subs {
		_ = s.Close()
	}
	return nil
}
