package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/auditiq/auditiq-gateway/pkg/internal/clients/authn"
	"github.com/auditiq/auditiq-gateway/pkg/internal/model"
	"github.com/auditiq/auditiq-gateway/pkg/internal/types"
	"github.com/auditiq/auditiq-gateway/pkg/log"
	"github.com/auditiq/auditiq-gateway/pkg/metrics"
	"github.com/auditiq/auditiq-gateway/pkg/queue"
	"github.com/auditiq/auditiq-gateway/pkg/tabular"
)

const previewRows = 100

// Ingest 数据集入库：解析画像 → 写对象存储 → 写元数据 → 镜像到计算后端.
//
// 失败语义分层：解析失败与元数据写入失败使整个请求失败；
// 对象存储写入失败与镜像失败只记录，不阻断（镜像失败时 fastapi_dataset_id 为 null）.
func (s *DatasetService) Ingest(ctx context.Context, authUser *authn.AuthUser,
	filename string, content []byte,
) (*types.UploadDatasetResponse, error) {
	l := log.Logger()

	user, err := s.ensureUser(ctx, authUser)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve user: %s", ErrPersistence, err)
	}

	// 解析 + 画像
	table, err := tabular.Parse(bytes.NewReader(content))
	if err != nil {
		var pe *tabular.ParseError
		if errors.As(err, &pe) {
			metrics.DatasetIngestTotal.WithLabelValues("malformed").Inc()

			return nil, &MalformedInputError{Cells: pe.Errors}
		}

		return nil, err
	}

	columns, summary := tabular.Profile(table)

	// 写对象存储；失败不阻断入库，后续自愈会缺少原始文件，记 warn
	hash := sha256.Sum256(content)
	objectKey := fmt.Sprintf("%s/%d_%s", user.ID, time.Now().UnixMilli(), filename)
	blobStored := true

	if err := s.blob.Put(ctx, s.bucket, objectKey,
		bytes.NewReader(content), int64(len(content)), "text/csv"); err != nil {
		blobStored = false
		objectKey = ""

		l.Warn().Err(err).Str("filename", filename).Msg("blob write failed, continuing without stored file")
	}

	columnsJSON, err := sonic.MarshalString(columns)
	if err != nil {
		return nil, fmt.Errorf("marshal columns info: %w", err)
	}

	dataset := model.Dataset{
		UserID:        user.ID,
		Filename:      filename,
		ObjectKey:     objectKey,
		Bucket:        s.bucket,
		FileHash:      hex.EncodeToString(hash[:]),
		FileSize:      int64(len(content)),
		RowCount:      summary.Rows,
		ColumnCount:   summary.Columns,
		MissingValues: summary.MissingValues,
		ColumnsJSON:   columnsJSON,
		Status:        model.DatasetStatusReady,
	}

	// 元数据是系统的事实来源，写失败即整体失败
	if err := s.db.WithContext(ctx).Create(&dataset).Error; err != nil {
		metrics.DatasetIngestTotal.WithLabelValues("persistence_error").Inc()

		return nil, fmt.Errorf("%w: create dataset: %s", ErrPersistence, err)
	}

	// 镜像到计算后端；任何失败都归一为 fastapi_dataset_id = null
	computeID := s.mirrorDataset(ctx, &dataset, content)

	metrics.DatasetIngestTotal.WithLabelValues("ok").Inc()
	s.publishIngested(&dataset, blobStored)

	return &types.UploadDatasetResponse{
		ID:               dataset.ID,
		FastAPIDatasetID: computeID,
		Filename:         filename,
		Data:             table.Preview(previewRows),
		Columns:          columns,
		Stats: types.UploadDatasetStats{
			Rows:          summary.Rows,
			Columns:       summary.Columns,
			MissingValues: summary.MissingValues,
			FileSize:      int64(len(content)),
		},
	}, nil
}

// ResolveUser 按认证身份解析内部用户记录，供需要内部用户 ID 的调用方使用.
func (s *DatasetService) ResolveUser(ctx context.Context, authUser *authn.AuthUser) (*model.User, error) {
	return s.ensureUser(ctx, authUser)
}

// ensureUser 按 email 解析内部用户，不存在则创建影子记录.
// 并发首次上传可能撞 email 唯一键，冲突后重查一次.
func (s *DatasetService) ensureUser(ctx context.Context, authUser *authn.AuthUser) (*model.User, error) {
	var user model.User

	err := s.db.WithContext(ctx).Where("email = ?", authUser.Email).First(&user).Error
	if err == nil {
		return &user, nil
	}

	first, last := splitFullName(authUser.FullName)

	user = model.User{
		Email:          authUser.Email,
		FirstName:      first,
		LastName:       last,
		HashedPassword: "oauth_user",
		Role:           "user",
		Plan:           "freemium",
	}

	if createErr := s.db.WithContext(ctx).Create(&user).Error; createErr != nil {
		if retryErr := s.db.WithContext(ctx).Where("email = ?", authUser.Email).First(&user).Error; retryErr != nil {
			return nil, createErr
		}
	}

	return &user, nil
}

// mirrorDataset 尽力镜像，成功则回写 compute ID 并更新状态.
func (s *DatasetService) mirrorDataset(ctx context.Context, dataset *model.Dataset, content []byte) *string {
	l := log.Logger()

	computeID, err := s.mirror.Mirror(ctx, dataset.Filename, content)
	if err != nil {
		metrics.MirrorAttempts.WithLabelValues("error").Inc()
		l.Warn().Err(err).Str("dataset_id", dataset.ID).Msg("mirror to compute backend failed")
		s.publishMirrorFailed(dataset, err)

		return nil
	}

	metrics.MirrorAttempts.WithLabelValues("ok").Inc()

	dataset.ComputeDatasetID = &computeID
	dataset.Status = model.DatasetStatusMirrored

	if err := s.db.WithContext(ctx).Model(dataset).
		Updates(map[string]any{
			"compute_dataset_id": computeID,
			"status":             model.DatasetStatusMirrored,
		}).Error; err != nil {
		l.Warn().Err(err).Str("dataset_id", dataset.ID).Msg("failed to persist compute dataset id")
	}

	s.publishMirrored(dataset, computeID)

	return &computeID
}

func splitFullName(fullName string) (first, last string) {
	first = "User"

	fields := strings.Fields(fullName)
	if len(fields) > 0 {
		first = fields[0]
	}

	if len(fields) > 1 {
		last = strings.Join(fields[1:], " ")
	}

	return first, last
}

// publishIngested 事件发布都是尽力而为，不影响主流程.
func (s *DatasetService) publishIngested(dataset *model.Dataset, blobStored bool) {
	if s.mqClient == nil || !s.events.Enabled || !s.events.Dataset.Ingested {
		return
	}

	if err := queue.PublishDatasetIngested(s.mqClient.Publisher(), queue.DatasetIngestedPayload{
		Dataset:     datasetRef(dataset),
		RowCount:    dataset.RowCount,
		ColumnCount: dataset.ColumnCount,
		BlobStored:  blobStored,
	}); err != nil {
		log.Logger().Warn().Err(err).Msg("publish dataset ingested event failed")
	}
}

func (s *DatasetService) publishMirrored(dataset *model.Dataset, computeID string) {
	if s.mqClient == nil || !s.events.Enabled || !s.events.Dataset.Mirrored {
		return
	}

	if err := queue.PublishDatasetMirrored(s.mqClient.Publisher(), queue.DatasetMirroredPayload{
		Dataset:          datasetRef(dataset),
		ComputeDatasetID: computeID,
	}); err != nil {
		log.Logger().Warn().Err(err).Msg("publish dataset mirrored event failed")
	}
}

func (s *DatasetService) publishMirrorFailed(dataset *model.Dataset, mirrorErr error) {
	if s.mqClient == nil || !s.events.Enabled || !s.events.Dataset.MirrorFailed {
		return
	}

	if err := queue.PublishDatasetMirrorFailed(s.mqClient.Publisher(), queue.DatasetMirrorFailedPayload{
		Dataset: datasetRef(dataset),
		Error:   mirrorErr.Error(),
	}); err != nil {
		log.Logger().Warn().Err(err).Msg("publish dataset mirror failed event failed")
	}
}

func datasetRef(d *model.Dataset) queue.DatasetRef {
	return queue.DatasetRef{
		DatasetID: d.ID,
		UserID:    d.UserID,
		Bucket:    d.Bucket,
		ObjectKey: d.ObjectKey,
		Hash:      d.FileHash,
		Size:      d.FileSize,
		Filename:  d.Filename,
	}
}
