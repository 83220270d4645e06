package datastores

import (
	"context"
	"errors"
	"sync"
)

// Slot is a key-value persistence slot. Set replaces the value wholesale.
type Slot interface {
	// Get returns [ErrSlotEmpty] when nothing was ever set at key.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Pinger is implemented by slots backed by a remote or on-disk database.
type Pinger interface {
	Ping(context.Context) error
}

var ErrSlotEmpty = errors.New("slot: key not set")

// SlotInmem implements [Slot] in memory.
type SlotInmem struct {
	mu sync.Mutex
	m  map[string][]byte
}

var _ Slot = (*SlotInmem)(nil)

func (s *SlotInmem) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.m[key]
	if !ok {
		return nil, ErrSlotEmpty
	}
	return append([]byte(nil), value...), nil
}

func (s *SlotInmem) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		s.m = map[string][]byte{}
	}
	s.m[key] = append([]byte(nil), value...)
	return nil
}
