package store

import (
	"context"
	"encoding/json"
	"github.com/redis/go-redis/v9"
	"go-ml.dev/pkg/ordinal/model"
	"golang.org/x/xerrors"
	"sort"
)

/*
RedisStore keeps model artifacts and entries in redis,
the name index is the set <prefix>:models
*/
type RedisStore struct {
	client  *redis.Client
	prefix  string
	solvers model.Table
}

func NewRedisStore(client *redis.Client, prefix string, solvers model.Table) *RedisStore {
	if prefix == "" {
		prefix = "ordinal"
	}
	return &RedisStore{client: client, prefix: prefix, solvers: solvers}
}

/*
DialRedis connects to the server and checks it is alive
*/
func DialRedis(ctx context.Context, addr string, db int, prefix string, solvers model.Table) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, xerrors.Errorf("failed to connect redis at %v: %w", addr, err)
	}
	return NewRedisStore(client, prefix, solvers), nil
}

func (s *RedisStore) modelKey(name string) string { return s.prefix + ":model:" + name }
func (s *RedisStore) entryKey(name string) string { return s.prefix + ":entry:" + name }
func (s *RedisStore) indexKey() string            { return s.prefix + ":models" }

func (s *RedisStore) Save(ctx context.Context, name string, m *model.Model, meta map[string]float64) error {
	if err := checkName(name); err != nil {
		return err
	}
	artifact, err := m.Encode()
	if err != nil {
		return err
	}
	entry, err := json.Marshal(newEntry(name, m, meta))
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.modelKey(name), artifact, 0)
		pipe.Set(ctx, s.entryKey(name), entry, 0)
		pipe.SAdd(ctx, s.indexKey(), name)
		return nil
	})
	if err != nil {
		return xerrors.Errorf("failed to save model %v: %w", name, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, name string) (*model.Model, error) {
	artifact, err := s.client.Get(ctx, s.modelKey(name)).Bytes()
	if err == redis.Nil {
		return nil, xerrors.Errorf("%v: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, xerrors.Errorf("failed to load model %v: %w", name, err)
	}
	return model.Decode(s.solvers, artifact)
}

func (s *RedisStore) List(ctx context.Context) ([]Entry, error) {
	names, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, xerrors.Errorf("failed to list models: %w", err)
	}
	r := []Entry{}
	if len(names) == 0 {
		return r, nil
	}
	sort.Strings(names)
	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = s.entryKey(n)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, xerrors.Errorf("failed to list models: %w", err)
	}
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(str), &e); err != nil {
			return nil, xerrors.Errorf("bad entry of %v: %w", names[i], err)
		}
		r = append(r, e)
	}
	return r, nil
}

func (s *RedisStore) Delete(ctx context.Context, name string) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.modelKey(name), s.entryKey(name))
		pipe.SRem(ctx, s.indexKey(), name)
		return nil
	})
	if err != nil {
		return xerrors.Errorf("failed to delete model %v: %w", name, err)
	}
	if del.Val() == 0 {
		return xerrors.Errorf("%v: %w", name, ErrNotFound)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ ModelStore = (*RedisStore)(nil)
