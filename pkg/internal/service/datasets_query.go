package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/auditiq/auditiq-gateway/pkg/internal/model"
	"github.com/auditiq/auditiq-gateway/pkg/internal/types"
	"github.com/auditiq/auditiq-gateway/pkg/log"
	"github.com/auditiq/auditiq-gateway/pkg/queue"
)

const presignedURLExpiry = time.Hour

// List 当前用户的全部数据集，按创建时间倒序.
func (s *DatasetService) List(ctx context.Context, userID string) (*types.ListDatasetsResponse, error) {
	var datasets []model.Dataset

	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&datasets).Error; err != nil {
		return nil, fmt.Errorf("%w: list datasets: %s", ErrPersistence, err)
	}

	if datasets == nil {
		datasets = []model.Dataset{}
	}

	return &types.ListDatasetsResponse{Datasets: datasets}, nil
}

// Get 数据集详情，附带 1 小时有效的下载 URL（对象缺失时省略）.
func (s *DatasetService) Get(ctx context.Context, userID, datasetID string) (*types.DatasetDetailResponse, error) {
	dataset, err := s.findOwned(ctx, userID, datasetID)
	if err != nil {
		return nil, err
	}

	resp := &types.DatasetDetailResponse{Dataset: *dataset}

	if dataset.ObjectKey != "" {
		url, presignErr := s.blob.PresignedGet(ctx, dataset.Bucket, dataset.ObjectKey, presignedURLExpiry)
		if presignErr != nil {
			log.Logger().Warn().Err(presignErr).Str("dataset_id", datasetID).Msg("presign download url failed")
		} else {
			resp.FileURL = url
		}
	}

	return resp, nil
}

// Delete 删除数据集：先尽力清对象存储，再删元数据.
// 对象删除失败不阻断，由孤儿清理任务兜底.
func (s *DatasetService) Delete(ctx context.Context, userID, datasetID string) (*types.DeleteDatasetResponse, error) {
	dataset, err := s.findOwned(ctx, userID, datasetID)
	if err != nil {
		return nil, err
	}

	blobDeleted := false

	if dataset.ObjectKey != "" {
		if removeErr := s.blob.Remove(ctx, dataset.Bucket, dataset.ObjectKey); removeErr != nil {
			log.Logger().Warn().Err(removeErr).
				Str("dataset_id", datasetID).
				Str("object_key", dataset.ObjectKey).
				Msg("blob delete failed, orphan sweep will reclaim it")
		} else {
			blobDeleted = true
		}
	}

	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", datasetID, userID).
		Delete(&model.Dataset{}).Error; err != nil {
		return nil, fmt.Errorf("%w: delete dataset: %s", ErrPersistence, err)
	}

	s.publishDeleted(dataset, blobDeleted)

	return &types.DeleteDatasetResponse{
		Success: true,
		Message: "Dataset deleted successfully",
	}, nil
}

// findOwned 按 ID 查找且校验归属.
func (s *DatasetService) findOwned(ctx context.Context, userID, datasetID string) (*model.Dataset, error) {
	var dataset model.Dataset

	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", datasetID, userID).
		First(&dataset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("%w: find dataset: %s", ErrPersistence, err)
	}

	return &dataset, nil
}

func (s *DatasetService) publishDeleted(dataset *model.Dataset, blobDeleted bool) {
	if s.mqClient == nil || !s.events.Enabled || !s.events.Dataset.Deleted {
		return
	}

	if err := queue.PublishDatasetDeleted(s.mqClient.Publisher(), queue.DatasetDeletedPayload{
		Dataset:     datasetRef(dataset),
		BlobDeleted: blobDeleted,
	}); err != nil {
		log.Logger().Warn().Err(err).Msg("publish dataset deleted event failed")
	}
}
