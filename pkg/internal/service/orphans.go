package service

import (
	"context"
	"fmt"
	"time"

	"github.com/auditiq/auditiq-gateway/pkg/internal/model"
	"github.com/auditiq/auditiq-gateway/pkg/log"
)

// SweepOrphanBlobs 清理对象存储里没有元数据行指向的对象.
//
// 孤儿来源：元数据写入失败的入库（对象已写成功）、删除时对象删除失败.
// grace 之内的新对象不动，避免扫到正在入库的文件；dryRun 只统计不删.
func (s *DatasetService) SweepOrphanBlobs(ctx context.Context, grace time.Duration, dryRun bool) (int, error) {
	l := log.Logger()

	blobs, err := s.blob.List(ctx, s.bucket, "")
	if err != nil {
		return 0, fmt.Errorf("list blobs: %w", err)
	}

	cutoff := time.Now().Add(-grace)
	removed := 0

	for _, blob := range blobs {
		if blob.LastModified.After(cutoff) {
			continue
		}

		var count int64
		if err := s.db.WithContext(ctx).Model(&model.Dataset{}).
			Where("object_key = ?", blob.Key).
			Count(&count).Error; err != nil {
			return removed, fmt.Errorf("check blob reference %s: %w", blob.Key, err)
		}

		if count > 0 {
			continue
		}

		if dryRun {
			l.Info().Str("object_key", blob.Key).Int64("size", blob.Size).Msg("orphan blob (dry run)")
			removed++

			continue
		}

		if err := s.blob.Remove(ctx, s.bucket, blob.Key); err != nil {
			l.Warn().Err(err).Str("object_key", blob.Key).Msg("orphan blob delete failed")

			continue
		}

		l.Info().Str("object_key", blob.Key).Int64("size", blob.Size).Msg("orphan blob removed")
		removed++
	}

	return removed, nil
}
