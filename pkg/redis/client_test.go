package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kaigocloud/carebill-backend/pkg/config"
)

type fakeStore struct {
	values map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}}
}

func (f *fakeStore) Ping(context.Context) *goredis.StatusCmd {
	return goredis.NewStatusResult("PONG", nil)
}

func (f *fakeStore) Set(_ context.Context, key string, value any, _ time.Duration) *goredis.StatusCmd {
	f.values[key] = toString(value)
	return goredis.NewStatusResult("OK", nil)
}

func (f *fakeStore) Get(_ context.Context, key string) *goredis.StringCmd {
	if val, ok := f.values[key]; ok {
		return goredis.NewStringResult(val, nil)
	}
	return goredis.NewStringResult("", goredis.Nil)
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, _ time.Duration) *goredis.BoolCmd {
	if _, exists := f.values[key]; exists {
		return goredis.NewBoolResult(false, nil)
	}
	f.values[key] = toString(value)
	return goredis.NewBoolResult(true, nil)
}

func (f *fakeStore) Incr(_ context.Context, key string) *goredis.IntCmd {
	return goredis.NewIntResult(1, nil)
}

func (f *fakeStore) Del(_ context.Context, keys ...string) *goredis.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := f.values[key]; ok {
			delete(f.values, key)
			removed++
		}
	}
	return goredis.NewIntResult(removed, nil)
}

func toString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return ""
}

func TestSetNXOnlySetsOnce(t *testing.T) {
	client := &Client{store: newFakeStore()}
	ctx := context.Background()

	ok, err := client.SetNX(ctx, "k", "v1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first SetNX expected to win: ok=%v err=%v", ok, err)
	}
	ok, err = client.SetNX(ctx, "k", "v2", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("second SetNX should not overwrite")
	}
	val, err := client.Get(ctx, "k")
	if err != nil || val != "v1" {
		t.Fatalf("expected original value, got %q err=%v", val, err)
	}
}

func TestGetMissingKeyReturnsNil(t *testing.T) {
	client := &Client{store: newFakeStore()}
	_, err := client.Get(context.Background(), "missing")
	if !errors.Is(err, goredis.Nil) {
		t.Fatalf("expected redis.Nil, got %v", err)
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{store: newFakeStore()}
	if got := client.IdempotencyKey("subscriptions", "abc"); got != "cb:idempotency:subscriptions:abc" {
		t.Fatalf("unexpected idempotency key %q", got)
	}
	if got := client.LockKey("cron-worker"); got != "cb:lock:cron-worker" {
		t.Fatalf("unexpected lock key %q", got)
	}
	if got := client.CounterKey("renewals"); got != "cb:counter:renewals" {
		t.Fatalf("unexpected counter key %q", got)
	}
}

func TestOptionsFromConfigRequiresTarget(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error when neither url nor address provided")
	}
	opts, err := optionsFromConfig(config.RedisConfig{Address: "localhost:6379", PoolSize: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6379" || opts.PoolSize != 5 {
		t.Fatalf("options not derived from config: %+v", opts)
	}
}
