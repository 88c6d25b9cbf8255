package configs

import "github.com/spf13/viper"

// ServerConfig HTTP 服务器配置.
type ServerConfig struct {
	Name         string `mapstructure:"name"`          // Name 服务名称
	Host         string `mapstructure:"host"`          // Host 监听地址
	Port         int    `mapstructure:"port"`          // Port 监听端口
	Mode         string `mapstructure:"mode"`          // Mode gin 运行模式: debug, release, test
	ReloadConfig bool   `mapstructure:"reload_config"` // ReloadConfig 是否启用配置热重载
	CORS         bool   `mapstructure:"cors"`          // CORS 是否启用跨域中间件
	Gzip         bool   `mapstructure:"gzip"`          // Gzip 是否启用响应压缩
}

func (s *ServerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("server.name", "auditiq-gateway")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.reload_config", true)
	v.SetDefault("server.cors", true)
	v.SetDefault("server.gzip", true)
}
