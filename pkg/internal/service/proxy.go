package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bytedance/sonic"

	"github.com/auditiq/auditiq-gateway/pkg/internal/clients/compute"
	"github.com/auditiq/auditiq-gateway/pkg/log"
	"github.com/auditiq/auditiq-gateway/pkg/metrics"
)

// Forwarder 计算后端请求转发抽象，生产实现为 compute.Client.
type Forwarder interface {
	Forward(ctx context.Context, method, path string, query url.Values, body []byte, token string) (*compute.Response, error)
}

// maxForwardAttempts 原始请求 + 修复后重放一次，结构上不可能再多.
const maxForwardAttempts = 2

// ProxyWithHeal 把请求转发到计算后端，404 且能定位数据集时触发一次自愈.
//
// 修复成功后原始请求原样重放一次；修复失败则把后端的原始 404 返回给
// 调用方，绝不把修复错误暴露出去.
func (s *DatasetService) ProxyWithHeal(ctx context.Context, method, path string,
	query url.Values, body []byte, token string,
) (*compute.Response, error) {
	datasetID := extractDatasetID(query, body)

	var resp *compute.Response

	for attempt := range maxForwardAttempts {
		var err error

		resp, err = s.forwarder.Forward(ctx, method, path, query, body, token)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrBackendUnreachable, err)
		}

		metrics.ProxyRequests.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()

		if resp.StatusCode != http.StatusNotFound || datasetID == "" || attempt > 0 {
			break
		}

		if _, healErr := s.Heal(ctx, datasetID, path); healErr != nil {
			log.Logger().Warn().Err(healErr).
				Str("dataset_id", datasetID).
				Str("path", path).
				Msg("auto-heal failed, returning backend 404")

			break
		}
	}

	return resp, nil
}

// extractDatasetID 从查询串或 JSON 请求体里找 dataset_id.
func extractDatasetID(query url.Values, body []byte) string {
	if id := query.Get("dataset_id"); id != "" {
		return id
	}

	if len(body) == 0 {
		return ""
	}

	var probe struct {
		DatasetID string `json:"dataset_id"`
	}

	if err := sonic.Unmarshal(body, &probe); err != nil {
		return ""
	}

	return probe.DatasetID
}
