package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/mixelka/emailtriage/pkg/models"
)

const (
	keyMessage = "%s:msg:%s" // prefix, message id
	keyIndex   = "%s:msgs"   // prefix; sorted set of ids scored by seq
	keySeq     = "%s:seq"    // prefix
	keyLock    = "%s:lock"   // prefix

	defaultRedisPrefix = "triage"
	defaultLockTTL     = 5 * time.Second
)

// RedisOptions configures a RedisStore
type RedisOptions struct {
	Prefix  string        // Key namespace, defaults to "triage"
	LockTTL time.Duration // Writer lock expiry
}

// RedisStore keeps each message as a JSON value and an insertion index in a
// sorted set. Writers serialize on a distributed lock and commit with
// MULTI/EXEC, so readers never observe half of a batch.
type RedisStore struct {
	rdb     redis.UniversalClient
	locker  *redislock.Client
	prefix  string
	lockTTL time.Duration
}

// NewRedisStore creates a store on top of an existing client.
// The store takes ownership of the client and closes it on Close.
func NewRedisStore(rdb redis.UniversalClient, opts RedisOptions) *RedisStore {
	if opts.Prefix == "" {
		opts.Prefix = defaultRedisPrefix
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = defaultLockTTL
	}
	return &RedisStore{
		rdb:     rdb,
		locker:  redislock.New(rdb),
		prefix:  opts.Prefix,
		lockTTL: opts.LockTTL,
	}
}

func (s *RedisStore) messageKey(id string) string {
	return fmt.Sprintf(keyMessage, s.prefix, id)
}

func (s *RedisStore) indexKey() string {
	return fmt.Sprintf(keyIndex, s.prefix)
}

// List returns all messages ordered by Seq
func (s *RedisStore) List(ctx context.Context) ([]models.Message, error) {
	ids, err := s.rdb.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, unavailable("list index", err)
	}
	if len(ids) == 0 {
		return []models.Message{}, nil
	}

	msgs, missing, err := s.load(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		// Index entries without a value are left over from interrupted writes
		s.rdb.ZRem(ctx, s.indexKey(), toMembers(missing)...)
	}
	return msgs, nil
}

// Get returns a message by id
func (s *RedisStore) Get(ctx context.Context, id string) (models.Message, error) {
	data, err := s.rdb.Get(ctx, s.messageKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Message{}, ErrNotFound
	}
	if err != nil {
		return models.Message{}, unavailable("get message", err)
	}

	var msg models.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return models.Message{}, fmt.Errorf("failed to decode message %s: %w", id, err)
	}
	return msg, nil
}

// Insert stores a new message and assigns its Seq
func (s *RedisStore) Insert(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		return fmt.Errorf("failed to insert message: empty id")
	}

	return s.withLock(ctx, func() error {
		exists, err := s.rdb.Exists(ctx, s.messageKey(msg.ID)).Result()
		if err != nil {
			return unavailable("check message", err)
		}
		if exists > 0 {
			return ErrAlreadyExists
		}

		seq, err := s.rdb.Incr(ctx, fmt.Sprintf(keySeq, s.prefix)).Result()
		if err != nil {
			return unavailable("allocate seq", err)
		}

		stored := *msg
		stored.Seq = seq
		data, err := json.Marshal(stored)
		if err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}

		_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.messageKey(msg.ID), data, 0)
			pipe.ZAdd(ctx, s.indexKey(), redis.Z{Score: float64(seq), Member: msg.ID})
			return nil
		})
		if err != nil {
			return unavailable("insert message", err)
		}

		msg.Seq = seq
		return nil
	})
}

// Update replaces a stored message, keeping its Seq and terminal flags
func (s *RedisStore) Update(ctx context.Context, msg models.Message) error {
	return s.withLock(ctx, func() error {
		current, err := s.Get(ctx, msg.ID)
		if err != nil {
			return err
		}

		msg.Seq = current.Seq
		KeepTerminal(&msg, current)
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
		if err := s.rdb.Set(ctx, s.messageKey(msg.ID), data, 0).Err(); err != nil {
			return unavailable("update message", err)
		}
		return nil
	})
}

// Delete removes a message permanently
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.withLock(ctx, func() error {
		exists, err := s.rdb.Exists(ctx, s.messageKey(id)).Result()
		if err != nil {
			return unavailable("check message", err)
		}
		if exists == 0 {
			return ErrNotFound
		}

		_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, s.messageKey(id))
			pipe.ZRem(ctx, s.indexKey(), id)
			return nil
		})
		if err != nil {
			return unavailable("delete message", err)
		}
		return nil
	})
}

// ApplyBatch loads every id, applies op and writes all values in one transaction
func (s *RedisStore) ApplyBatch(ctx context.Context, op BatchOp, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	return s.withLock(ctx, func() error {
		msgs, missing, err := s.load(ctx, ids)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, missing[0])
		}

		for _, msg := range msgs {
			if !op.Admits(msg) {
				return fmt.Errorf("%w: %s", ErrNotFound, msg.ID)
			}
		}

		values := make(map[string][]byte, len(msgs))
		for i := range msgs {
			op.Apply(&msgs[i])
			data, err := json.Marshal(msgs[i])
			if err != nil {
				return fmt.Errorf("failed to encode message: %w", err)
			}
			values[s.messageKey(msgs[i].ID)] = data
		}

		_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for key, data := range values {
				pipe.Set(ctx, key, data, 0)
			}
			return nil
		})
		if err != nil {
			return unavailable("apply batch", err)
		}
		return nil
	})
}

// Close closes the underlying client
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// load fetches ids with a single MGET, returning found messages in id order
// and the ids that have no value.
func (s *RedisStore) load(ctx context.Context, ids []string) ([]models.Message, []string, error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.messageKey(id)
	}

	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, nil, unavailable("load messages", err)
	}

	msgs := make([]models.Message, 0, len(values))
	var missing []string
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			missing = append(missing, ids[i])
			continue
		}
		var msg models.Message
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			return nil, nil, fmt.Errorf("failed to decode message %s: %w", ids[i], err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, missing, nil
}

func (s *RedisStore) withLock(ctx context.Context, fn func() error) error {
	lock, err := s.locker.Obtain(ctx, fmt.Sprintf(keyLock, s.prefix), s.lockTTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), 40),
	})
	if err != nil {
		return unavailable("obtain lock", err)
	}
	defer lock.Release(context.WithoutCancel(ctx))

	return fn()
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", ErrUnavailable, op, err)
}

func toMembers(ids []string) []interface{} {
	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	return members
}
