package service

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestSweepOrphanBlobs(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	// 有元数据行引用的对象
	ingestOne(t, env)

	// 孤儿对象，修改时间放到宽限期之前
	env.blob.objects["u1/12345_orphan.csv"] = []byte("a\n1\n")
	env.blob.modTimes["u1/12345_orphan.csv"] = time.Now().Add(-2 * time.Hour)

	// 新写入的孤儿，仍在宽限期内，不能动
	env.blob.objects["u1/99999_fresh.csv"] = []byte("a\n1\n")
	env.blob.modTimes["u1/99999_fresh.csv"] = time.Now()

	removed, err := env.svc.SweepOrphanBlobs(ctx, time.Hour, false)
	if err != nil {
		t.Fatalf("SweepOrphanBlobs: %v", err)
	}

	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	if _, ok := env.blob.objects["u1/12345_orphan.csv"]; ok {
		t.Error("orphan blob not removed")
	}

	if _, ok := env.blob.objects["u1/99999_fresh.csv"]; !ok {
		t.Error("fresh blob must survive the grace period")
	}

	if len(env.blob.objects) != 2 { // 引用对象 + 新孤儿
		t.Errorf("blob objects = %d, want 2", len(env.blob.objects))
	}
}

func TestSweepOrphanBlobsDryRun(t *testing.T) {
	env := newTestService(t)

	env.blob.objects["u1/1_orphan.csv"] = []byte("a\n1\n")
	env.blob.modTimes["u1/1_orphan.csv"] = time.Now().Add(-2 * time.Hour)

	removed, err := env.svc.SweepOrphanBlobs(context.Background(), time.Hour, true)
	if err != nil {
		t.Fatalf("SweepOrphanBlobs: %v", err)
	}

	if removed != 1 {
		t.Errorf("reported = %d, want 1", removed)
	}

	if !bytes.Equal(env.blob.objects["u1/1_orphan.csv"], []byte("a\n1\n")) {
		t.Error("dry run must not delete anything")
	}
}
