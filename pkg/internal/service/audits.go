package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"gorm.io/gorm"

	"github.com/auditiq/auditiq-gateway/pkg/configs"
	ctxPkg "github.com/auditiq/auditiq-gateway/pkg/context"
	"github.com/auditiq/auditiq-gateway/pkg/internal/model"
	"github.com/auditiq/auditiq-gateway/pkg/internal/storage/mq"
	"github.com/auditiq/auditiq-gateway/pkg/internal/types"
	"github.com/auditiq/auditiq-gateway/pkg/log"
	"github.com/auditiq/auditiq-gateway/pkg/queue"
)

// AuditService 公平性审计的 CRUD 与统计.
type AuditService struct {
	db       *gorm.DB
	mqClient *mq.Client
	events   *configs.EventsConfig
}

// NewAuditService 从请求上下文构建服务.
func NewAuditService(c context.Context) *AuditService {
	cfg := configs.GetConfig()

	svc := &AuditService{
		mqClient: ctxPkg.GetMQClient(c),
		events:   &cfg.Events,
	}

	if dbc := ctxPkg.GetDBClient(c); dbc != nil {
		svc.db = dbc.DB
	}

	return svc
}

// defaultFairnessMetrics 新审计默认评估的公平性指标.
var defaultFairnessMetrics = []string{"demographic_parity", "equalized_odds", "disparate_impact"}

// Create 建一条待执行的审计.
func (s *AuditService) Create(ctx context.Context, userID string, req *types.CreateAuditRequest) (*types.AuditResponse, error) {
	audit := model.Audit{
		UserID:    userID,
		DatasetID: req.DatasetID,
		Name:      orDefault(req.AuditName, "Nouvel Audit"),
		UseCase:   orDefault(req.UseCase, "general"),
		ModelType: req.ModelType,
		IAType:    req.IAType,
		AuditType: orDefault(req.AuditType, "single"),
		Status:    model.AuditStatusPending,
	}

	if req.Config != nil {
		audit.TargetColumn = req.Config.TargetColumn
		audit.SensitiveAttributesJSON = marshalOrEmpty(req.Config.ProtectedAttributes)
	} else {
		audit.SensitiveAttributesJSON = "[]"
	}

	audit.FairnessMetricsJSON = marshalOrEmpty(defaultFairnessMetrics)

	if err := s.db.WithContext(ctx).Create(&audit).Error; err != nil {
		return nil, fmt.Errorf("%w: create audit: %s", ErrPersistence, err)
	}

	s.publishCreated(&audit)

	return &types.AuditResponse{Audit: audit, Success: true}, nil
}

// List 当前用户的审计列表，附带数据集名，按创建时间倒序.
func (s *AuditService) List(ctx context.Context, userID string) (*types.ListAuditsResponse, error) {
	var audits []model.Audit

	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&audits).Error; err != nil {
		return nil, fmt.Errorf("%w: list audits: %s", ErrPersistence, err)
	}

	items := make([]types.AuditListItem, 0, len(audits))

	for _, audit := range audits {
		item := types.AuditListItem{Audit: audit}

		var dataset model.Dataset
		if err := s.db.WithContext(ctx).
			Select("filename").
			Where("id = ?", audit.DatasetID).
			First(&dataset).Error; err == nil {
			item.DatasetName = dataset.Filename
		}

		items = append(items, item)
	}

	return &types.ListAuditsResponse{Audits: items}, nil
}

// Get 审计详情.
func (s *AuditService) Get(ctx context.Context, userID, auditID string) (*types.AuditResponse, error) {
	audit, err := s.findOwned(ctx, userID, auditID)
	if err != nil {
		return nil, err
	}

	return &types.AuditResponse{Audit: *audit}, nil
}

// Update 按白名单字段更新审计.
func (s *AuditService) Update(ctx context.Context, userID, auditID string, req *types.UpdateAuditRequest) (*types.AuditResponse, error) {
	audit, err := s.findOwned(ctx, userID, auditID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}

	if req.AuditName != nil {
		updates["name"] = *req.AuditName
	}

	if req.UseCase != nil {
		updates["use_case"] = *req.UseCase
	}

	if req.Status != nil {
		updates["status"] = *req.Status
	}

	if req.TargetColumn != nil {
		updates["target_column"] = *req.TargetColumn
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(audit).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("%w: update audit: %s", ErrPersistence, err)
		}
	}

	return &types.AuditResponse{Audit: *audit, Success: true}, nil
}

// Delete 删除审计.
func (s *AuditService) Delete(ctx context.Context, userID, auditID string) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", auditID, userID).
		Delete(&model.Audit{})
	if result.Error != nil {
		return fmt.Errorf("%w: delete audit: %s", ErrPersistence, result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Stats 当前用户的审计总体统计.
func (s *AuditService) Stats(ctx context.Context, userID string) (*types.AuditStats, error) {
	var audits []model.Audit

	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&audits).Error; err != nil {
		return nil, fmt.Errorf("%w: audit stats: %s", ErrPersistence, err)
	}

	stats := &types.AuditStats{Total: len(audits)}
	datasets := map[string]struct{}{}

	var scoreSum float64

	var scored int

	for _, audit := range audits {
		switch audit.Status {
		case model.AuditStatusPending:
			stats.Pending++
		case model.AuditStatusCompleted:
			stats.Completed++
		case model.AuditStatusFailed:
			stats.Failed++
		}

		if audit.BiasDetected {
			stats.BiasDetected++
		}

		if audit.RiskLevel == "High" {
			stats.HighRiskCount++
		}

		if audit.OverallScore != nil {
			scoreSum += float64(*audit.OverallScore)
			scored++
		}

		datasets[audit.DatasetID] = struct{}{}
	}

	stats.AuditedDataset = len(datasets)

	if scored > 0 {
		avg := scoreSum / float64(scored)
		stats.AverageScore = &avg
	}

	return stats, nil
}

// CompleteWithResults 计算结束后回填审计结果.
func (s *AuditService) CompleteWithResults(ctx context.Context, auditID string,
	score int, riskLevel string, biasDetected bool, metricsResults, recommendations any,
) error {
	now := time.Now().UTC()

	updates := map[string]any{
		"status":               model.AuditStatusCompleted,
		"overall_score":        score,
		"risk_level":           riskLevel,
		"bias_detected":        biasDetected,
		"metrics_results_json": marshalOrEmpty(metricsResults),
		"recommendations_json": marshalOrEmpty(recommendations),
		"completed_at":         now,
	}

	if err := s.db.WithContext(ctx).Model(&model.Audit{}).
		Where("id = ?", auditID).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("%w: complete audit: %s", ErrPersistence, err)
	}

	s.publishCompleted(auditID, model.AuditStatusCompleted, score)

	return nil
}

func (s *AuditService) findOwned(ctx context.Context, userID, auditID string) (*model.Audit, error) {
	var audit model.Audit

	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", auditID, userID).
		First(&audit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("%w: find audit: %s", ErrPersistence, err)
	}

	return &audit, nil
}

func (s *AuditService) publishCreated(audit *model.Audit) {
	if s.mqClient == nil || !s.events.Enabled || !s.events.Audit.Created {
		return
	}

	if err := queue.PublishAuditCreated(s.mqClient.Publisher(), queue.AuditCreatedPayload{
		AuditID:   audit.ID,
		DatasetID: audit.DatasetID,
		UserID:    audit.UserID,
		Name:      audit.Name,
		Status:    audit.Status,
	}); err != nil {
		log.Logger().Warn().Err(err).Msg("publish audit created event failed")
	}
}

func (s *AuditService) publishCompleted(auditID, status string, score int) {
	if s.mqClient == nil || !s.events.Enabled || !s.events.Audit.Completed {
		return
	}

	if err := queue.PublishAuditCompleted(s.mqClient.Publisher(), queue.AuditCompletedPayload{
		AuditID: auditID,
		Status:  status,
		Score:   float64(score),
	}); err != nil {
		log.Logger().Warn().Err(err).Msg("publish audit completed event failed")
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}

	return v
}

func marshalOrEmpty(v any) string {
	if v == nil {
		return ""
	}

	s, err := sonic.MarshalString(v)
	if err != nil {
		return ""
	}

	return s
}
