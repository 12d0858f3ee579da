// Package testutil holds in-memory stand-ins for infrastructure used by
// package tests.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Message is one PUBLISH seen by FakeRedis.
type Message struct {
	Channel string
	Payload string
}

// FakeRedis implements the subset of redis.Cmdable the services use. Any
// other command panics through the nil embedded interface.
type FakeRedis struct {
	redis.Cmdable

	mu        sync.Mutex
	values    map[string]string
	ttls      map[string]time.Duration
	expires   map[string]int
	lists     map[string][]string
	published []Message

	// Fail, when set, is returned by every command.
	Fail error
}

// NewFakeRedis returns an empty FakeRedis.
func NewFakeRedis() *FakeRedis {
	return &FakeRedis{
		values: map[string]string{},
		ttls:    map[string]time.Duration{},
		expires: map[string]int{},
		lists:   map[string][]string{},
	}
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

func (f *FakeRedis) Ping(_ context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", f.Fail)
}

func (f *FakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail != nil {
		return redis.NewStringResult("", f.Fail)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *FakeRedis) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail != nil {
		return redis.NewStatusResult("", f.Fail)
	}
	f.values[key] = toString(value)
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *FakeRedis) SetNX(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail != nil {
		return redis.NewBoolResult(false, f.Fail)
	}
	if _, exists := f.values[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	f.values[key] = toString(value)
	f.ttls[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (f *FakeRedis) GetDel(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail != nil {
		return redis.NewStringResult("", f.Fail)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	delete(f.values, key)
	delete(f.ttls, key)
	return redis.NewStringResult(v, nil)
}

func (f *FakeRedis) Expire(_ context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail != nil {
		return redis.NewBoolResult(false, f.Fail)
	}
	if _, ok := f.values[key]; !ok {
		return redis.NewBoolResult(false, nil)
	}
	f.ttls[key] = expiration
	f.expires[key]++
	return redis.NewBoolResult(true, nil)
}

func (f *FakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail != nil {
		return redis.NewIntResult(0, f.Fail)
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.values[k]; ok {
			delete(f.values, k)
			delete(f.ttls, k)
			n++
		}
		if _, ok := f.lists[k]; ok {
			delete(f.lists, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

// Scan returns every matching key in a single page.
func (f *FakeRedis) Scan(_ context.Context, _ uint64, match string, _ int64) *redis.ScanCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail != nil {
		return redis.NewScanCmdResult(nil, 0, f.Fail)
	}
	var keys []string
	for k := range f.values {
		if ok, _ := path.Match(match, k); ok || match == "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return redis.NewScanCmdResult(keys, 0, nil)
}

func (f *FakeRedis) Publish(_ context.Context, channel string, message interface{}) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail != nil {
		return redis.NewIntResult(0, f.Fail)
	}
	f.published = append(f.published, Message{Channel: channel, Payload: toString(message)})
	return redis.NewIntResult(0, nil)
}

func (f *FakeRedis) RPush(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail != nil {
		return redis.NewIntResult(0, f.Fail)
	}
	for _, v := range values {
		f.lists[key] = append(f.lists[key], toString(v))
	}
	return redis.NewIntResult(int64(len(f.lists[key])), nil)
}

func (f *FakeRedis) LPop(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail != nil {
		return redis.NewStringResult("", f.Fail)
	}
	list := f.lists[key]
	if len(list) == 0 {
		return redis.NewStringResult("", redis.Nil)
	}
	f.lists[key] = list[1:]
	return redis.NewStringResult(list[0], nil)
}

// BLPop never blocks: an empty queue answers redis.Nil at once.
func (f *FakeRedis) BLPop(ctx context.Context, _ time.Duration, keys ...string) *redis.StringSliceCmd {
	for _, k := range keys {
		v, err := f.LPop(ctx, k).Result()
		if err == nil {
			return redis.NewStringSliceResult([]string{k, v}, nil)
		}
		if !errors.Is(err, redis.Nil) {
			return redis.NewStringSliceResult(nil, err)
		}
	}
	return redis.NewStringSliceResult(nil, redis.Nil)
}

func (f *FakeRedis) LLen(_ context.Context, key string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail != nil {
		return redis.NewIntResult(0, f.Fail)
	}
	return redis.NewIntResult(int64(len(f.lists[key])), nil)
}

// Value returns a stored string and whether it exists.
func (f *FakeRedis) Value(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v, ok
}

// ExpiryOf returns the expiration a key was last set with.
func (f *FakeRedis) ExpiryOf(key string) time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ttls[key]
}

// Expirations counts successful EXPIRE calls on key.
func (f *FakeRedis) Expirations(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.expires[key]
}

// List returns a copy of a list.
func (f *FakeRedis) List(key string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lists[key]...)
}

// Published returns every message published so far.
func (f *FakeRedis) Published() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Message(nil), f.published...)
}
