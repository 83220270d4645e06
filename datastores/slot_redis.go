package datastores

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// SlotRedis implements [Slot] with plain GET and SET commands.
type SlotRedis struct {
	client *redis.Client
	prefix string
}

var (
	_ Slot   = (*SlotRedis)(nil)
	_ Pinger = (*SlotRedis)(nil)
)

// NewSlotRedis returns a slot storing keys under prefix.
func NewSlotRedis(client *redis.Client, prefix string) *SlotRedis {
	return &SlotRedis{client: client, prefix: prefix}
}

func (s *SlotRedis) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSlotEmpty
	}
	return b, err
}

func (s *SlotRedis) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, s.prefix+key, value, 0).Err()
}

func (s *SlotRedis) Ping(ctx context.Context) error { return s.client.Ping(ctx).Err() }

func (s *SlotRedis) Close() error { return s.client.Close() }
