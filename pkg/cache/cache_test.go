package cache_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/auditiq/auditiq-gateway/pkg/cache"
)

// datasetSummary 测试用的数据集摘要结构体.
type datasetSummary struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	RowCount int    `json:"row_count"`
}

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

// TestCacheRoundTrip 测试泛型 Set/Get 往返.
func TestCacheRoundTrip(t *testing.T) {
	c := cache.NewCache(newMockKVStore())
	ctx := context.Background()

	// 获取不存在的键
	if _, err := cache.Get[datasetSummary](ctx, c, "nonexistent"); err == nil {
		t.Error("Expected error for nonexistent key")
	}

	ds := datasetSummary{ID: "d1", Filename: "adult.csv", RowCount: 48842}
	if err := cache.Set(ctx, c, "dataset:d1", ds, 0); err != nil {
		t.Fatalf("Failed to set cache: %v", err)
	}

	got, err := cache.Get[datasetSummary](ctx, c, "dataset:d1")
	if err != nil {
		t.Fatalf("Failed to get cache: %v", err)
	}

	if got != ds {
		t.Errorf("Retrieved %+v does not match original %+v", got, ds)
	}
}

// TestCacheDeleteExists 测试 Delete 与 Exists.
func TestCacheDeleteExists(t *testing.T) {
	c := cache.NewCache(newMockKVStore())
	ctx := context.Background()

	ds := datasetSummary{ID: "d2", Filename: "compas.csv", RowCount: 7214}
	if err := cache.Set(ctx, c, "dataset:d2", ds, 0); err != nil {
		t.Fatalf("Failed to set cache: %v", err)
	}

	exists, err := c.Exists(ctx, "dataset:d2")
	if err != nil || !exists {
		t.Fatalf("Key should exist before deletion, exists=%v err=%v", exists, err)
	}

	if err := c.Delete(ctx, "dataset:d2"); err != nil {
		t.Fatalf("Failed to delete cache: %v", err)
	}

	if exists, _ := c.Exists(ctx, "dataset:d2"); exists {
		t.Error("Key should not exist after deletion")
	}
}

// TestGetOrSet 测试 GetOrSet 只在未命中时调用 getter.
func TestGetOrSet(t *testing.T) {
	c := cache.NewCache(newMockKVStore())
	ctx := context.Background()

	callCount := 0
	getter := func() (datasetSummary, error) {
		callCount++

		return datasetSummary{ID: "d3", Filename: "german.csv", RowCount: 1000}, nil
	}

	first, err := cache.GetOrSet(ctx, c, "dataset:d3", getter, 0)
	if err != nil {
		t.Fatalf("Failed to get or set: %v", err)
	}

	second, err := cache.GetOrSet(ctx, c, "dataset:d3", getter, 0)
	if err != nil {
		t.Fatalf("Failed to get or set: %v", err)
	}

	if callCount != 1 {
		t.Errorf("Expected getter to be called once, got %d", callCount)
	}

	if first != second {
		t.Errorf("Results don't match: %+v vs %+v", first, second)
	}
}

// TestGetOrSetGetterError 测试 getter 报错时错误被透传.
func TestGetOrSetGetterError(t *testing.T) {
	c := cache.NewCache(newMockKVStore())
	ctx := context.Background()

	getter := func() (datasetSummary, error) {
		return datasetSummary{}, errors.New("backend unreachable")
	}

	if _, err := cache.GetOrSet(ctx, c, "dataset:err", getter, 0); err == nil {
		t.Error("Expected error from getter")
	}
}

// TestCacheClear 测试 Clear 清空所有键.
func TestCacheClear(t *testing.T) {
	store := newMockKVStore()
	c := cache.NewCache(store)
	ctx := context.Background()

	for i := range 3 {
		key := fmt.Sprintf("dataset:%d", i)
		if err := cache.Set(ctx, c, key, datasetSummary{ID: key}, 0); err != nil {
			t.Fatalf("Failed to set cache: %v", err)
		}
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Failed to clear cache: %v", err)
	}

	if len(store.data) != 0 {
		t.Errorf("Expected 0 items after clear, got %d", len(store.data))
	}
}
