package configs

import "github.com/spf13/viper"

// AuthConfig 托管认证服务配置，请求携带的 Bearer 令牌统一交由该服务校验.
type AuthConfig struct {
	Enabled       bool     `mapstructure:"enabled"`         // 开启认证校验
	BaseURL       string   `mapstructure:"base_url"`        // 认证服务地址
	APIKey        string   `mapstructure:"api_key"`         // 认证服务公开 API Key（随校验请求附带）
	VerifyPath    string   `mapstructure:"verify_path"`     // 令牌校验端点路径
	TimeoutSec    int      `mapstructure:"timeout_sec"`     // 校验请求超时（秒）
	CacheTTLSec   int      `mapstructure:"cache_ttl_sec"`   // 校验结果缓存时长（秒），0 表示不缓存
	SkipPaths     []string `mapstructure:"skip_paths"`      // 跳过认证的路径前缀（如 /metrics、/api/v1/health）
	DevAllowQuery bool     `mapstructure:"dev_allow_query"` // 开发模式允许用 ?user= 便于本地调试
}

func (c *AuthConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("auth.enabled", true)
	v.SetDefault("auth.base_url", "http://localhost:9999")
	v.SetDefault("auth.api_key", "")
	v.SetDefault("auth.verify_path", "/auth/v1/user")
	v.SetDefault("auth.timeout_sec", 5)
	v.SetDefault("auth.cache_ttl_sec", 60)
	v.SetDefault("auth.dev_allow_query", false)
	v.SetDefault("auth.skip_paths", []string{
		"/metrics",
		"/debug/pprof",
		"/api/v1/health",
	})
}
