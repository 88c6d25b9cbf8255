// Package authn 对接外部身份服务做 bearer token 校验.
// 校验结果按 token 哈希短暂缓存，避免每个请求都打一次身份服务.
package authn

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/auditiq/auditiq-gateway/pkg/cache"
	"github.com/auditiq/auditiq-gateway/pkg/configs"
	"github.com/auditiq/auditiq-gateway/pkg/internal/storage/kv"
)

// AuthUser 身份服务返回的用户.
type AuthUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// 身份服务的原始应答结构.
type verifyResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		FullName string `json:"full_name"`
	} `json:"user_metadata"`
}

// ErrUnauthorized token 缺失、过期或被身份服务拒绝.
var ErrUnauthorized = fmt.Errorf("authn: unauthorized")

// Client 身份校验客户端.
type Client struct {
	cfg        *configs.AuthConfig
	httpClient *http.Client
	cache      *cache.Cache
	cacheTTL   time.Duration
}

// New 构建客户端；store 为 nil 时不启用缓存.
func New(cfg *configs.AuthConfig, store kv.KVStore) *Client {
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSec) * time.Second},
		cacheTTL:   time.Duration(cfg.CacheTTLSec) * time.Second,
	}

	if store != nil {
		c.cache = cache.NewCache(store)
	}

	return c
}

// Verify 校验 bearer token，返回外部身份用户.
// 任何身份服务侧的拒绝都归一为 ErrUnauthorized；网络错误原样返回.
func (c *Client) Verify(ctx context.Context, token string) (*AuthUser, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	key := tokenCacheKey(token)

	if c.cache != nil {
		if cached, err := cache.Get[AuthUser](ctx, c.cache, key); err == nil && cached.ID != "" {
			return &cached, nil
		}
	}

	user, err := c.verifyRemote(ctx, token)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		_ = cache.Set(ctx, c.cache, key, *user, c.cacheTTL)
	}

	return user, nil
}

func (c *Client) verifyRemote(ctx context.Context, token string) (*AuthUser, error) {
	url := strings.TrimRight(c.cfg.BaseURL, "/") + c.cfg.VerifyPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("authn: build request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)

	if c.cfg.APIKey != "" {
		req.Header.Set("apikey", c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("authn: verify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrUnauthorized
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("authn: verify status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("authn: read response: %w", err)
	}

	var vr verifyResponse
	if err := sonic.Unmarshal(raw, &vr); err != nil {
		return nil, fmt.Errorf("authn: decode response: %w", err)
	}

	if vr.ID == "" || vr.Email == "" {
		return nil, ErrUnauthorized
	}

	return &AuthUser{
		ID:       vr.ID,
		Email:    vr.Email,
		FullName: vr.UserMetadata.FullName,
	}, nil
}

// tokenCacheKey token 不落盘，缓存键用其 sha256.
func tokenCacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))

	return "authn:token:" + hex.EncodeToString(sum[:])
}
