package kv_test

import (
	"context"
	"testing"
	"time"

	"github.com/auditiq/auditiq-gateway/pkg/internal/storage/kv"
)

// TestMemoryKVBasic 测试内存 KV 的基本读写删.
func TestMemoryKVBasic(t *testing.T) {
	ctx := context.Background()

	store, err := kv.NewKVStore(ctx, kv.KVTypeMemory, nil)
	if err != nil {
		t.Fatalf("create memory kv: %v", err)
	}
	defer store.Close()

	if err := store.Set(ctx, "token:abc", []byte(`{"user_id":"u1"}`), 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	got, err := store.Get(ctx, "token:abc")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if string(got) != `{"user_id":"u1"}` {
		t.Errorf("unexpected value: %s", got)
	}

	exists, err := store.Exists(ctx, "token:abc")
	if err != nil || !exists {
		t.Errorf("expected key to exist, exists=%v err=%v", exists, err)
	}

	if err := store.Delete(ctx, "token:abc"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := store.Get(ctx, "token:abc"); err == nil {
		t.Error("expected error for deleted key, got nil")
	}
}

// TestMemoryKVTTL 测试 TTL 包装过期后键不可见.
func TestMemoryKVTTL(t *testing.T) {
	ctx := context.Background()

	store, err := kv.NewKVStore(ctx, kv.KVTypeMemory, nil)
	if err != nil {
		t.Fatalf("create memory kv: %v", err)
	}
	defer store.Close()

	// 1秒 TTL 是最小可表达的过期窗口（unix 秒精度）
	if err := store.Set(ctx, "short", []byte("v"), time.Second); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if _, err := store.Get(ctx, "short"); err != nil {
		t.Fatalf("get before expiry failed: %v", err)
	}

	time.Sleep(1100 * time.Millisecond)

	if _, err := store.Get(ctx, "short"); err == nil {
		t.Error("expected expired key to be gone, got value")
	}

	if exists, _ := store.Exists(ctx, "short"); exists {
		t.Error("expected expired key to not exist")
	}
}

// TestMemoryKVCopySemantics 测试返回值是副本，调用方修改不影响存储.
func TestMemoryKVCopySemantics(t *testing.T) {
	ctx := context.Background()

	store, err := kv.NewKVStore(ctx, kv.KVTypeMemory, nil)
	if err != nil {
		t.Fatalf("create memory kv: %v", err)
	}
	defer store.Close()

	original := []byte("dataset-detail")
	if err := store.Set(ctx, "d1", original, 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	original[0] = 'X'

	got, err := store.Get(ctx, "d1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if string(got) != "dataset-detail" {
		t.Errorf("stored value mutated: %s", got)
	}

	got[0] = 'Y'

	again, _ := store.Get(ctx, "d1")
	if string(again) != "dataset-detail" {
		t.Errorf("returned slice aliased storage: %s", again)
	}
}

// TestUnsupportedKVType 测试未注册类型报错.
func TestUnsupportedKVType(t *testing.T) {
	if _, err := kv.NewKVStore(context.Background(), kv.KVType("etcd"), nil); err == nil {
		t.Error("expected error for unsupported kv type, got nil")
	}
}
