package kv_test

import (
	"context"
	"testing"
	"time"

	"github.com/yeisme/filerelay/pkg/internal/storage/kv"
)

// TestMemoryKV_SetGet 测试内存 KV 的基本读写.
func TestMemoryKV_SetGet(t *testing.T) {
	store, err := kv.NewKVStore(context.Background(), kv.KVTypeMemory, nil)
	if err != nil {
		t.Fatalf("create memory kv: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	if err := store.Set(ctx, "k1", []byte("v1"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := store.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if string(got) != "v1" {
		t.Errorf("expected v1, got %q", got)
	}

	// 未知键
	if _, err := store.Get(ctx, "missing"); err == nil {
		t.Error("expected error for missing key, got nil")
	}
}

// TestMemoryKV_TTL 测试内存 KV 的惰性过期.
func TestMemoryKV_TTL(t *testing.T) {
	store, err := kv.NewKVStore(context.Background(), kv.KVTypeMemory, nil)
	if err != nil {
		t.Fatalf("create memory kv: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	if err := store.Set(ctx, "ttl-key", []byte("short-lived"), time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}

	// 未过期时可读
	if _, err := store.Get(ctx, "ttl-key"); err != nil {
		t.Fatalf("get before expiry: %v", err)
	}

	// 过期检查按 unix 秒粒度，等到跨过边界
	time.Sleep(2100 * time.Millisecond)

	if _, err := store.Get(ctx, "ttl-key"); err == nil {
		t.Error("expected expired key to be gone, got value")
	}

	exists, err := store.Exists(ctx, "ttl-key")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}

	if exists {
		t.Error("expected expired key to not exist")
	}
}

// TestMemoryKV_DeleteKeys 测试删除与键列举.
func TestMemoryKV_DeleteKeys(t *testing.T) {
	store, err := kv.NewKVStore(context.Background(), kv.KVTypeMemory, nil)
	if err != nil {
		t.Fatalf("create memory kv: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		if err := store.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatalf("set %s: %v", k, err)
		}
	}

	keys, err := store.Keys(ctx, "*")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}

	if len(keys) != 3 {
		t.Errorf("expected 3 keys, got %d", len(keys))
	}

	if err := store.Delete(ctx, "b"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	exists, err := store.Exists(ctx, "b")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}

	if exists {
		t.Error("expected deleted key to not exist")
	}
}

// BenchmarkMemoryKV 基本的 Set/Get 基准测试.
func BenchmarkMemoryKV(b *testing.B) {
	store, err := kv.NewKVStore(context.Background(), kv.KVTypeMemory, nil)
	if err != nil {
		b.Fatalf("create memory kv: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	payload := []byte("member")

	b.ResetTimer()

	for b.Loop() {
		key := "bench-key"
		if err := store.Set(ctx, key, payload, 0); err != nil {
			b.Fatalf("set: %v", err)
		}

		if _, err := store.Get(ctx, key); err != nil {
			b.Fatalf("get: %v", err)
		}
	}
}
