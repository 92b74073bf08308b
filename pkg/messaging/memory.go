package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrBrokerClosed   = errors.New("broker closed")
	ErrSubscriberFull = errors.New("subscriber buffer full")
)

const DefaultMemoryBuffer = 100

// MemoryBroker is an in-process Broker for development and tests. A
// message is still handed to every subscriber with room for it, but
// Publish reports ErrSubscriberFull when any buffer was full.
type MemoryBroker struct {
	mu     sync.Mutex
	subs   map[string][]chan []byte
	buffer int
	closed bool
}

func NewMemoryBroker() *MemoryBroker {
	return NewMemoryBrokerSize(DefaultMemoryBuffer)
}

// NewMemoryBrokerSize buffers up to n messages per subscriber.
func NewMemoryBrokerSize(n int) *MemoryBroker {
	if n < 1 {
		n = 1
	}
	return &MemoryBroker{subs: make(map[string][]chan []byte), buffer: n}
}

func (b *MemoryBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBrokerClosed
	}
	subs := b.subs[channel]
	dropped := 0
	for _, ch := range subs {
		select {
		case ch <- payload:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		return fmt.Errorf("%w: %d of %d subscribers on %s", ErrSubscriberFull, dropped, len(subs), channel)
	}
	return nil
}

func (b *MemoryBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrBrokerClosed
	}

	ch := make(chan []byte, b.buffer)
	b.subs[channel] = append(b.subs[channel], ch)

	go func() {
		<-ctx.Done()
		b.unsubscribe(channel, ch)
	}()
	return ch, nil
}

func (b *MemoryBroker) unsubscribe(channel string, ch chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[channel]
	for i, c := range subs {
		if c == ch {
			b.subs[channel] = append(subs[:i], subs[i+1:]...)
			close(ch)
			return
		}
	}
}

func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for _, subs := range b.subs {
		for _, ch := range subs {
			close(ch)
		}
	}
	b.subs = nil
	return nil
}
