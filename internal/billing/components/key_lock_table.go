package components

import (
	"context"
	"hash/fnv"
)

const defaultLockShards = 256

// KeyLockTable serializes work on idempotency keys with a fixed set of shard locks.
// Distinct keys may share a shard; the table never grows.
type KeyLockTable struct {
	shards []chan struct{}
}

// NewKeyLockTable creates a table with the given number of shards
func NewKeyLockTable(shards int) *KeyLockTable {
	if shards <= 0 {
		shards = defaultLockShards
	}

	t := &KeyLockTable{shards: make([]chan struct{}, shards)}
	for i := range t.shards {
		t.shards[i] = make(chan struct{}, 1)
	}
	return t
}

// Lock blocks until the shard of key is free or ctx is done. The returned func
// releases the shard and must be called exactly once.
func (t *KeyLockTable) Lock(ctx context.Context, key string) (func(), error) {
	shard := t.shards[t.shardIndex(key)]

	select {
	case shard <- struct{}{}:
		return func() { <-shard }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *KeyLockTable) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(t.shards)))
}
