package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPrefix = "geovault:"
	// maxSaveAttempts bounds the optimistic retries of Save under contention
	maxSaveAttempts = 10
)

// RedisStore keeps every decoy as a JSON value, plus one set of decoy ids per operation target
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a store on top of an existing client.
// All the keys are prefixed with the given prefix.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

// ConnectRedis connects to the server and makes sure it's reachable
func ConnectRedis(ctx context.Context, opts *redis.Options, prefix string) (*RedisStore, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisStore(client, prefix), nil
}

func (r *RedisStore) decoyKey(id string) string {
	return r.prefix + "decoy:" + id
}

func (r *RedisStore) targetKey(targetID string) string {
	return r.prefix + "target:" + targetID
}

// Save creates or replaces the decoy. The decoy key is watched while the
// previous target is read, so a concurrent move can not leave a stale membership.
func (r *RedisStore) Save(ctx context.Context, d *Decoy) error {
	if err := d.validate(); err != nil {
		return err
	}
	value, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode decoy: %w", err)
	}

	key := r.decoyKey(d.ID)
	txn := func(tx *redis.Tx) error {
		previous, err := r.get(ctx, tx, d.ID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if previous != nil && previous.OperationTargetID != d.OperationTargetID {
				pipe.SRem(ctx, r.targetKey(previous.OperationTargetID), d.ID)
			}
			pipe.Set(ctx, key, value, 0)
			pipe.SAdd(ctx, r.targetKey(d.OperationTargetID), d.ID)
			return nil
		})
		return err
	}

	for i := 0; i < maxSaveAttempts; i++ {
		err := r.client.Watch(ctx, txn, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("redis save: %w", err)
		}
		return nil
	}
	return fmt.Errorf("redis save '%s': %w", d.ID, redis.TxFailedErr)
}

// Get returns the decoy or ErrNotFound
func (r *RedisStore) Get(ctx context.Context, id string) (*Decoy, error) {
	return r.get(ctx, r.client, id)
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *RedisStore) get(ctx context.Context, c stringGetter, id string) (*Decoy, error) {
	value, err := c.Get(ctx, r.decoyKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var d Decoy
	if err := json.Unmarshal(value, &d); err != nil {
		return nil, fmt.Errorf("decode decoy '%s': %w", id, err)
	}
	return &d, nil
}

// ListByTarget returns the decoys of an operation target, oldest first
func (r *RedisStore) ListByTarget(ctx context.Context, targetID string) ([]*Decoy, error) {
	ids, err := r.client.SMembers(ctx, r.targetKey(targetID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis members: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.decoyKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}

	result := make([]*Decoy, 0, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			// the set can briefly outlive a deleted decoy
			continue
		}
		var d Decoy
		if err := json.Unmarshal([]byte(s), &d); err != nil {
			return nil, fmt.Errorf("decode decoy '%s': %w", ids[i], err)
		}
		result = append(result, &d)
	}
	sortDecoys(result)
	return result, nil
}

// Delete removes the decoy or returns ErrNotFound
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	d, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.decoyKey(id))
		pipe.SRem(ctx, r.targetKey(d.OperationTargetID), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

// DeleteByTarget removes all the decoys of an operation target
func (r *RedisStore) DeleteByTarget(ctx context.Context, targetID string) (int, error) {
	ids, err := r.client.SMembers(ctx, r.targetKey(targetID)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis members: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.decoyKey(id)
	}

	var removed *redis.IntCmd
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.Del(ctx, keys...)
		pipe.Del(ctx, r.targetKey(targetID))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis delete: %w", err)
	}
	return int(removed.Val()), nil
}

// Close closes the client
func (r *RedisStore) Close(context.Context) error {
	return r.client.Close()
}
