package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/auditiq/auditiq-gateway/pkg/internal/model"
	"github.com/auditiq/auditiq-gateway/pkg/log"
	"github.com/auditiq/auditiq-gateway/pkg/metrics"
	"github.com/auditiq/auditiq-gateway/pkg/queue"
)

// Heal 计算后端丢失数据集后的自动修复：
// 按持久 ID 或失效的临时 ID 找到记录，从对象存储取回原始文件，
// 同步重新镜像，并回写新的临时 ID.
//
// 返回新的 compute dataset ID；任何一步失败都返回错误，由调用方决定
// 是否吞掉（转发场景吞掉后把后端原始 404 还给客户端）.
// trigger 是触发修复的转发路径，没有就传空串，只用于事件载荷.
func (s *DatasetService) Heal(ctx context.Context, datasetID, trigger string) (string, error) {
	l := log.Logger()
	l.Info().Str("dataset_id", datasetID).Msg("auto-healing dataset")

	// 客户端手里可能是持久 ID，也可能是已失效的临时 ID，两个都试
	var dataset model.Dataset

	err := s.db.WithContext(ctx).
		Where("id = ? OR compute_dataset_id = ?", datasetID, datasetID).
		First(&dataset).Error
	if err != nil {
		metrics.HealAttempts.WithLabelValues("not_found").Inc()

		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("heal: dataset %s not found: %w", datasetID, ErrNotFound)
		}

		return "", fmt.Errorf("heal: find dataset: %w", err)
	}

	if dataset.ObjectKey == "" {
		metrics.HealAttempts.WithLabelValues("failed").Inc()

		return "", fmt.Errorf("heal: dataset %s has no stored blob", dataset.ID)
	}

	content, err := s.blob.Get(ctx, dataset.Bucket, dataset.ObjectKey)
	if err != nil {
		metrics.HealAttempts.WithLabelValues("failed").Inc()

		return "", fmt.Errorf("heal: fetch blob %s: %w", dataset.ObjectKey, err)
	}

	newComputeID, err := s.mirror.Mirror(ctx, dataset.Filename, content)
	if err != nil {
		metrics.HealAttempts.WithLabelValues("failed").Inc()

		return "", fmt.Errorf("heal: re-mirror: %w", err)
	}

	staleID := ""
	if dataset.ComputeDatasetID != nil {
		staleID = *dataset.ComputeDatasetID
	}

	if err := s.db.WithContext(ctx).Model(&dataset).
		Updates(map[string]any{
			"compute_dataset_id": newComputeID,
			"status":             model.DatasetStatusMirrored,
		}).Error; err != nil {
		// ID 回写失败不致命：后端已经持有数据，下次 404 会再修一遍
		l.Warn().Err(err).Str("dataset_id", dataset.ID).Msg("failed to persist healed compute id")
	}

	metrics.HealAttempts.WithLabelValues("healed").Inc()
	l.Info().
		Str("dataset_id", dataset.ID).
		Str("new_compute_id", newComputeID).
		Msg("dataset healed")

	s.publishHealed(&dataset, staleID, newComputeID, trigger)

	return newComputeID, nil
}

func (s *DatasetService) publishHealed(dataset *model.Dataset, staleID, newID, trigger string) {
	if s.mqClient == nil || !s.events.Enabled || !s.events.Dataset.Healed {
		return
	}

	if err := queue.PublishDatasetHealed(s.mqClient.Publisher(), queue.DatasetHealedPayload{
		Dataset:            datasetRef(dataset),
		StaleComputeID:     staleID,
		NewComputeID:       newID,
		TriggeredByRequest: trigger,
	}); err != nil {
		log.Logger().Warn().Err(err).Msg("publish dataset healed event failed")
	}
}
