package cache_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/yeisme/filerelay/pkg/cache"
)

// mockKVStore 模拟KV存储实现.
type mockKVStore struct {
	data map[string][]byte
}

func newMockKVStore() *mockKVStore {
	return &mockKVStore{
		data: make(map[string][]byte),
	}
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if value, exists := m.data[key]; exists {
		return value, nil
	}

	return nil, fmt.Errorf("key not found")
}

func (m *mockKVStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *mockKVStore) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *mockKVStore) Exists(ctx context.Context, key string) (bool, error) {
	_, exists := m.data[key]
	return exists, nil
}

func (m *mockKVStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	keys := make([]string, 0, len(m.data))
	for key := range m.data {
		keys = append(keys, key)
	}

	return keys, nil
}

func (m *mockKVStore) Close() error {
	return nil
}

// TestCache_SetGet 测试泛型 Set/Get 往返.
func TestCache_SetGet(t *testing.T) {
	c := cache.NewCache(newMockKVStore())
	ctx := context.Background()

	if err := cache.Set(ctx, c, "member:42", true, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	ok, err := cache.Get[bool](ctx, c, "member:42")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if !ok {
		t.Error("expected cached value true, got false")
	}
}

// TestCache_Miss 测试缓存未命中返回错误.
func TestCache_Miss(t *testing.T) {
	c := cache.NewCache(newMockKVStore())

	if _, err := cache.Get[bool](context.Background(), c, "member:404"); err == nil {
		t.Error("expected error on cache miss, got nil")
	}
}

// TestCache_Delete 测试删除后不可读.
func TestCache_Delete(t *testing.T) {
	c := cache.NewCache(newMockKVStore())
	ctx := context.Background()

	if err := cache.Set(ctx, c, "member:7", true, 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	if err := c.Delete(ctx, "member:7"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	exists, err := c.Exists(ctx, "member:7")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}

	if exists {
		t.Error("expected key to be deleted")
	}
}
