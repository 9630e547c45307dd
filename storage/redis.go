package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"hearingwatch/types"

	"github.com/redis/go-redis/v9"
)

// maxTxRetries bounds optimistic-lock retries when another writer touches
// the same event between WATCH and EXEC.
const maxTxRetries = 10

// RedisConfig configures the Redis connection and key namespace
type RedisConfig struct {
	Addr     string // e.g. localhost:6379
	Password string
	DB       int
	Prefix   string // namespace for every key, e.g. "hearingwatch"
}

// RedisStore keeps each CommitteeEvent as a JSON document.
//
// Layout:
//
//	<prefix>:event:<eventId>        JSON document
//	<prefix>:committee:<committeeId> SET of eventIds
//	<prefix>:committees              SET of committeeIds
//	<prefix>:url:<hash(url)>         owning eventId (unique committeeEventUrl)
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis and verifies connectivity.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return NewRedisStoreWithClient(client, cfg.Prefix), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "hearingwatch"
	}
	return &RedisStore{client: client, prefix: prefix}
}

// Close closes the underlying Redis client
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) eventKey(id int64) string {
	return s.prefix + ":event:" + strconv.FormatInt(id, 10)
}

func (s *RedisStore) committeeKey(committeeID string) string {
	return s.prefix + ":committee:" + committeeID
}

func (s *RedisStore) committeesKey() string {
	return s.prefix + ":committees"
}

func (s *RedisStore) urlKey(url string) string {
	return s.prefix + ":url:" + hashURL(url)
}

func (s *RedisStore) UpsertEvent(ctx context.Context, m types.EventMetadata) (UpsertResult, error) {
	id := strconv.FormatInt(m.EventID, 10)
	eventKey := s.eventKey(m.EventID)
	keys := []string{eventKey}
	if m.CommitteeEventURL != "" {
		keys = append(keys, s.urlKey(m.CommitteeEventURL))
	}

	var res UpsertResult
	txf := func(tx *redis.Tx) error {
		res = UpsertResult{}

		e, err := s.load(ctx, tx, m.EventID)
		switch {
		case errors.Is(err, ErrNotFound):
			e = &types.CommitteeEvent{}
			res.Created = true
		case err != nil:
			return err
		}

		if m.CommitteeEventURL != "" {
			owner, err := tx.Get(ctx, s.urlKey(m.CommitteeEventURL)).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			if err == nil && owner != id {
				return fmt.Errorf("%w: %s belongs to event %s", ErrDuplicateURL, m.CommitteeEventURL, owner)
			}
		}

		prevURL, prevCommittee := e.CommitteeEventURL, e.CommitteeID
		e.ApplyMetadata(m)
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to encode event %d: %w", m.EventID, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, eventKey, data, 0)
			pipe.SAdd(ctx, s.committeesKey(), m.CommitteeID)
			pipe.SAdd(ctx, s.committeeKey(m.CommitteeID), id)
			if prevCommittee != "" && prevCommittee != m.CommitteeID {
				pipe.SRem(ctx, s.committeeKey(prevCommittee), id)
			}
			if prevURL != "" && prevURL != m.CommitteeEventURL {
				pipe.Del(ctx, s.urlKey(prevURL))
				res.PreviousURL = prevURL
			}
			if m.CommitteeEventURL != "" {
				pipe.Set(ctx, s.urlKey(m.CommitteeEventURL), id, 0)
			}
			return nil
		})
		return err
	}

	if err := s.watch(ctx, txf, keys...); err != nil {
		return UpsertResult{}, err
	}
	return res, nil
}

func (s *RedisStore) GetEvent(ctx context.Context, eventID int64) (*types.CommitteeEvent, error) {
	return s.load(ctx, s.client, eventID)
}

func (s *RedisStore) ListAll(ctx context.Context) ([]*types.CommitteeEvent, error) {
	committees, err := s.client.SMembers(ctx, s.committeesKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list committees: %w", err)
	}

	var all []*types.CommitteeEvent
	for _, committeeID := range committees {
		events, err := s.listCommittee(ctx, committeeID)
		if err != nil {
			return nil, err
		}
		all = append(all, events...)
	}
	SortEvents(all)
	return all, nil
}

func (s *RedisStore) ListByCommittee(ctx context.Context, committeeID string) ([]*types.CommitteeEvent, error) {
	events, err := s.listCommittee(ctx, committeeID)
	if err != nil {
		return nil, err
	}
	SortEvents(events)
	return events, nil
}

func (s *RedisStore) listCommittee(ctx context.Context, committeeID string) ([]*types.CommitteeEvent, error) {
	ids, err := s.client.SMembers(ctx, s.committeeKey(committeeID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list events for committee %s: %w", committeeID, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.prefix + ":event:" + id
	}
	docs, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load events for committee %s: %w", committeeID, err)
	}

	events := make([]*types.CommitteeEvent, 0, len(docs))
	for i, doc := range docs {
		raw, ok := doc.(string)
		if !ok {
			continue // removed between SMEMBERS and MGET
		}
		var e types.CommitteeEvent
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", keys[i], err)
		}
		events = append(events, &e)
	}
	return events, nil
}

func (s *RedisStore) SetVideoMatch(ctx context.Context, eventID int64, m types.VideoMatch) error {
	_, err := s.update(ctx, eventID, func(e *types.CommitteeEvent) bool {
		e.ApplyVideoMatch(m)
		return true
	})
	return err
}

func (s *RedisStore) SetVideoMatchByTitle(ctx context.Context, committeeID, title string, m types.VideoMatch) (bool, error) {
	events, err := s.listCommittee(ctx, committeeID)
	if err != nil {
		return false, err
	}
	e := firstByTitle(events, title)
	if e == nil {
		return false, nil
	}
	if err := s.SetVideoMatch(ctx, e.EventID, m); err != nil {
		return false, err
	}
	return true, nil
}

func (s *RedisStore) SetPresumedMatch(ctx context.Context, eventID int64, p types.PresumedMatch) (bool, error) {
	return s.update(ctx, eventID, func(e *types.CommitteeEvent) bool {
		if e.HasVideo() {
			return false
		}
		e.PresumedVideoID = p.VideoID
		e.PresumedVideoTitle = p.Title
		return true
	})
}

// update applies mutate to an existing event under WATCH. mutate returns
// false to leave the document unchanged.
func (s *RedisStore) update(ctx context.Context, eventID int64, mutate func(*types.CommitteeEvent) bool) (bool, error) {
	key := s.eventKey(eventID)
	var written bool

	txf := func(tx *redis.Tx) error {
		written = false
		e, err := s.load(ctx, tx, eventID)
		if err != nil {
			return err
		}
		if !mutate(e) {
			return nil
		}
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to encode event %d: %w", eventID, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err == nil {
			written = true
		}
		return err
	}

	if err := s.watch(ctx, txf, key); err != nil {
		return false, err
	}
	return written, nil
}

func (s *RedisStore) watch(ctx context.Context, txf func(*redis.Tx) error, keys ...string) error {
	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("gave up after %d conflicting writes on %v", maxTxRetries, keys)
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *RedisStore) load(ctx context.Context, c getter, eventID int64) (*types.CommitteeEvent, error) {
	raw, err := c.Get(ctx, s.eventKey(eventID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load event %d: %w", eventID, err)
	}

	var e types.CommitteeEvent
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("failed to decode event %d: %w", eventID, err)
	}
	return &e, nil
}
