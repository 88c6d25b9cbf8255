// Package compute 封装对计算后端（fairness 引擎）的 HTTP 访问：
// 数据集镜像上传、请求转发与健康探测.
// 计算后端把数据集保存在内存里，重启即丢，调用方需要配合自愈流程使用.
package compute

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/auditiq/auditiq-gateway/pkg/configs"
)

// Client 计算后端客户端.
type Client struct {
	baseURL    string
	uploadPath string

	// httpClient 普通转发；longClient 用于训练等长耗时调用
	httpClient *http.Client
	longClient *http.Client
}

// Response 转发调用的原始应答，状态码与响应体原样带回.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// OK 2xx 判定.
func (r *Response) OK() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// New 按配置构建客户端.
func New(cfg *configs.ComputeConfig) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		uploadPath: cfg.UploadPath,
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSec) * time.Second},
		longClient: &http.Client{Timeout: time.Duration(cfg.LongTimeoutSec) * time.Second},
	}
}

// mirrorResponse 镜像上传的应答，只关心后端分配的临时 ID.
type mirrorResponse struct {
	DatasetID string `json:"dataset_id"`
}

// Mirror 把数据集文件镜像到计算后端，返回后端分配的临时 dataset ID.
// 该 ID 只在后端本次进程生命周期内有效.
func (c *Client) Mirror(ctx context.Context, filename string, content []byte) (string, error) {
	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("compute: build multipart: %w", err)
	}

	if _, err = part.Write(content); err != nil {
		return "", fmt.Errorf("compute: write multipart: %w", err)
	}

	if err = writer.WriteField("dataset_name", filename); err != nil {
		return "", fmt.Errorf("compute: write multipart field: %w", err)
	}

	if err = writer.Close(); err != nil {
		return "", fmt.Errorf("compute: close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.uploadPath, &buf)
	if err != nil {
		return "", fmt.Errorf("compute: build request: %w", err)
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.longClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("compute: mirror upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

		return "", fmt.Errorf("compute: mirror upload status %d: %s", resp.StatusCode, string(body))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("compute: read mirror response: %w", err)
	}

	var mr mirrorResponse
	if err := sonic.Unmarshal(raw, &mr); err != nil {
		return "", fmt.Errorf("compute: decode mirror response: %w", err)
	}

	if mr.DatasetID == "" {
		return "", fmt.Errorf("compute: mirror response missing dataset_id")
	}

	return mr.DatasetID, nil
}

// Forward 把一个请求原样转发到计算后端的 path（含查询串），
// 带上调用方的 bearer token，返回原始应答.
func (c *Client) Forward(ctx context.Context, method, path string, query url.Values, body []byte, token string) (*Response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("compute: build request: %w", err)
	}

	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := c.httpClient
	if isLongRunning(path) {
		client = c.longClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("compute: forward %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("compute: read response: %w", err)
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        raw,
	}, nil
}

// Health 探测后端存活.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("compute: build health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("compute: health check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("compute: health status %d", resp.StatusCode)
	}

	return nil
}

// isLongRunning 训练与公平性计算可能跑数分钟，用长超时客户端.
func isLongRunning(path string) bool {
	return strings.Contains(path, "/ml/train") || strings.Contains(path, "/fairness/")
}
