package middleware

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"

	appcache "github.com/auditiq/auditiq-gateway/pkg/cache"
)

const (
	cacheMaxBodyBytes = 1 << 20 // 1MB
	cacheDefaultTTL   = 30 * time.Second
)

// CacheConfig 响应缓存中间件配置.
type CacheConfig struct {
	Cache *appcache.Cache // 必须: 业务注入的 Cache 实例
	TTL   time.Duration   // 默认 TTL

	// VaryHeaders 参与 Key 的 Header 列表；挂在认证路由上时务必包含
	// Authorization，否则不同用户会命中同一份缓存.
	VaryHeaders []string

	BypassHeader string // 请求头存在该 header(任意值) 则跳过缓存, 默认: X-Cache-Bypass
}

// DefaultCacheConfig 返回一份默认配置.
func DefaultCacheConfig(c *appcache.Cache) CacheConfig {
	return CacheConfig{
		Cache:        c,
		TTL:          cacheDefaultTTL,
		VaryHeaders:  []string{"Authorization"},
		BypassHeader: "X-Cache-Bypass",
	}
}

// CacheMiddleware 对 GET/HEAD 的 200 响应做短 TTL 缓存，
// 支持 ETag / If-None-Match 与 X-Cache 命中标记；缓存层任何失败都不影响主流程.
func CacheMiddleware(cfg CacheConfig) gin.HandlerFunc {
	if cfg.Cache == nil {
		panic("CacheMiddleware: Cache cannot be nil")
	}

	if cfg.TTL <= 0 {
		cfg.TTL = cacheDefaultTTL
	}

	if cfg.BypassHeader == "" {
		cfg.BypassHeader = "X-Cache-Bypass"
	}

	return func(c *gin.Context) {
		if !cacheableRequest(c, cfg) {
			c.Next()
			return
		}

		key := buildCacheKey(c, cfg.VaryHeaders)
		if serveFromCache(c, cfg, key) {
			return
		}

		bw := &bodyCaptureWriter{ResponseWriter: c.Writer, max: cacheMaxBodyBytes}
		c.Writer = bw
		c.Next()
		storeResponse(c, cfg, key, bw)
	}
}

// responseCacheEntry 序列化存储结构.
type responseCacheEntry struct {
	Status   int               `json:"s"`
	Header   map[string]string `json:"h,omitempty"`
	Body     []byte            `json:"b,omitempty"`
	ETag     string            `json:"e,omitempty"`
	StoredAt int64             `json:"t"` // unix nano, 用于 Age
}

func cacheableRequest(c *gin.Context, cfg CacheConfig) bool {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		return false
	}

	if c.GetHeader(cfg.BypassHeader) != "" {
		return false
	}

	return true
}

// buildCacheKey 方法 + 路径 + 排序 query + 排序 vary headers，再做 xxhash.
func buildCacheKey(c *gin.Context, vary []string) string {
	var b strings.Builder

	b.WriteString(c.Request.Method)
	b.WriteByte(':')

	full := c.FullPath()
	if full == "" { // 未匹配路由时使用原始路径
		full = c.Request.URL.Path
	}

	b.WriteString(full)

	if q := c.Request.URL.Query(); len(q) > 0 { // 排序 query 保证一致性
		keys := make([]string, 0, len(q))
		for k := range q {
			keys = append(keys, k)
		}

		sort.Strings(keys)
		b.WriteByte('?')

		for i, k := range keys {
			if i > 0 {
				b.WriteByte('&')
			}

			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(strings.Join(q[k], ","))
		}
	}

	if len(vary) > 0 {
		sorted := make([]string, len(vary))
		copy(sorted, vary)
		sort.Strings(sorted)
		b.WriteString("|hv=")

		for i, h := range sorted {
			if i > 0 {
				b.WriteByte('&')
			}

			b.WriteString(h)
			b.WriteByte('=')
			b.WriteString(c.GetHeader(h))
		}
	}

	return fmt.Sprintf("rc:%x", xxhash.Sum64String(b.String()))
}

// bodyCaptureWriter 包装响应写入用于捕获 body.
type bodyCaptureWriter struct {
	gin.ResponseWriter

	buf       bytes.Buffer
	max       int
	truncated bool
}

func (w *bodyCaptureWriter) Write(b []byte) (int, error) {
	if w.truncated {
		return w.ResponseWriter.Write(b)
	}

	remain := w.max - w.buf.Len()
	if remain <= 0 {
		w.truncated = true
		return w.ResponseWriter.Write(b)
	}

	if len(b) > remain {
		w.buf.Write(b[:remain])
		w.truncated = true
	} else {
		w.buf.Write(b)
	}

	return w.ResponseWriter.Write(b)
}

// serveFromCache 尝试从缓存提供响应; 成功返回 true.
func serveFromCache(c *gin.Context, cfg CacheConfig, key string) bool {
	entry, err := appcache.Get[responseCacheEntry](c.Request.Context(), cfg.Cache, key)
	if err != nil {
		return false
	}

	h := c.Writer.Header()

	inm := c.GetHeader("If-None-Match")
	if entry.ETag != "" && inm == entry.ETag { // 304 分支
		for k, v := range entry.Header {
			h.Set(k, v)
		}

		h.Set("ETag", entry.ETag)
		h.Set("Age", fmt.Sprintf("%.0f", time.Since(time.Unix(0, entry.StoredAt)).Seconds()))
		h.Set("X-Cache", "HIT")
		c.Status(http.StatusNotModified)
		c.Abort()

		return true
	}

	for k, v := range entry.Header {
		h.Set(k, v)
	}

	if entry.ETag != "" {
		h.Set("ETag", entry.ETag)
	}

	h.Set("Age", fmt.Sprintf("%.0f", time.Since(time.Unix(0, entry.StoredAt)).Seconds()))
	h.Set("X-Cache", "HIT")
	c.Status(entry.Status)

	if c.Request.Method != http.MethodHead {
		_, _ = c.Writer.Write(entry.Body)
	}

	c.Abort()

	return true
}

// storeResponse 处理响应并写入缓存.
func storeResponse(c *gin.Context, cfg CacheConfig, key string, bw *bodyCaptureWriter) {
	if c.Writer.Status() != http.StatusOK || bw.truncated {
		return
	}

	body := bw.buf.Bytes()
	hdr := make(map[string]string)

	for k, v := range c.Writer.Header() {
		if len(v) > 0 {
			hdr[k] = v[0]
		}
	}

	etag := c.Writer.Header().Get("ETag")
	if etag == "" {
		etag = fmt.Sprintf("\"%x\"", xxhash.Sum64(body))
		c.Writer.Header().Set("ETag", etag)
		hdr["ETag"] = etag
	}

	entry := responseCacheEntry{
		Status:   c.Writer.Status(),
		Header:   hdr,
		Body:     body,
		ETag:     etag,
		StoredAt: time.Now().UnixNano(),
	}

	_ = appcache.Set(c.Request.Context(), cfg.Cache, key, entry, cfg.TTL)
	c.Writer.Header().Set("X-Cache", "MISS")
}
