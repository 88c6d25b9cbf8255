// Package configs 管理应用程序配置，包括数据库、对象存储、计算后端和认证的配置信息.
// configs 包支持多种配置格式（YAML、JSON、TOML、dotenv）并启用热重载.
//
// Example:
//
//	import "github.com/auditiq/auditiq-gateway/pkg/configs"
//
//	err := configs.InitConfig("./")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	config := configs.GetConfig()
//	fmt.Println(config.Server.Port)
//
// Example accessing Compute config:
//
//	config := configs.GetConfig()
//	computeConfig := config.Compute
//	fmt.Println("Compute backend:", computeConfig.BaseURL)
package configs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// AppVersion 应用版本号，构建时可通过 ldflags 覆盖.
var AppVersion = "1.0.0"

// AppConfig 全局应用程序配置.
type AppConfig struct {
	DB             DBConfig             `mapstructure:"db"`              // DBConfig 元数据库配置
	S3             S3Config             `mapstructure:"s3"`              // S3Config 对象存储配置
	MQ             MQConfig             `mapstructure:"mq"`              // MQConfig 消息队列配置
	KV             KVConfig             `mapstructure:"kv"`              // KVConfig 键值存储配置
	Server         ServerConfig         `mapstructure:"server"`          // ServerConfig 服务器配置
	Log            LogConfig            `mapstructure:"log"`             // LogConfig 日志相关配置
	Auth           AuthConfig           `mapstructure:"auth"`            // AuthConfig 托管认证服务配置
	Compute        ComputeConfig        `mapstructure:"compute"`         // ComputeConfig 外部计算后端配置
	Metrics        MetricsConfig        `mapstructure:"metrics"`         // MetricsConfig 监控指标配置
	Tracing        TracingConfig        `mapstructure:"tracing"`         // TracingConfig 分布式追踪配置
	Events         EventsConfig         `mapstructure:"events"`          // EventsConfig 领域事件发布配置
	RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`      // RateLimitConfig 速率限制配置
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"` // CircuitBreakerConfig 熔断器配置
	Scheduler      SchedulerConfig      `mapstructure:"scheduler"`       // SchedulerConfig 定时任务配置
}

var (
	// globalConfig 全局配置实例.
	globalConfig AppConfig
	// appViper 全局 Viper 实例.
	appViper *viper.Viper
)

// InitConfig 加载应用程序配置，支持多种格式(yaml、json、toml、dotenv)并启用热重载.
// path 可以是配置文件路径，也可以是包含 config.* 的目录.
func InitConfig(path string) error {
	appViper = viper.New()
	setAllDefaults(appViper)

	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		// 是文件，Viper 根据扩展名自动检测类型
		appViper.SetConfigFile(path)
	} else {
		appViper.SetConfigName("config")
		appViper.AddConfigPath(path)
		appViper.AddConfigPath(filepath.Join(path, "configs"))

		exts := []string{"yaml", "yml", "json", "toml", "env", "dotenv"}
		for _, ext := range exts {
			cfg := filepath.Join(path, "config."+ext)
			if _, err := os.Stat(cfg); err == nil {
				appViper.SetConfigFile(cfg)

				break
			}
		}
	}

	appViper.SetEnvPrefix("AUDITIQ")
	appViper.AutomaticEnv()

	// 配置文件缺失时退回默认值 + 环境变量
	if err := appViper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := appViper.Unmarshal(&globalConfig); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	reloadConfigs(appViper, globalConfig.Server.ReloadConfig)

	return nil
}

// setAllDefaults 设置所有配置节的默认值.
func setAllDefaults(v *viper.Viper) {
	var cfg AppConfig

	cfg.Server.setDefaults(v)
	cfg.DB.setDefaults(v)
	cfg.S3.setDefaults(v)
	cfg.MQ.setDefaults(v)
	cfg.KV.setDefaults(v)
	cfg.Log.setDefaults(v)
	cfg.Auth.setDefaults(v)
	cfg.Compute.setDefaults(v)
	cfg.Metrics.setDefaults(v)
	cfg.Tracing.setDefaults(v)
	cfg.Events.setDefaults(v)
	cfg.RateLimit.setDefaults(v)
	cfg.CircuitBreaker.setDefaults(v)
	cfg.Scheduler.setDefaults(v)
}

func reloadConfigs(v *viper.Viper, isHotReload bool) {
	if !isHotReload {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		fmt.Println("Config file changed:", e.Name)

		if err := v.Unmarshal(&globalConfig); err != nil {
			fmt.Printf("Error reloading config: %v\n", err)
		}
	})
	v.WatchConfig()
}

// GetConfig 返回全局配置实例.
func GetConfig() *AppConfig {
	return &globalConfig
}

// GetViper 返回全局 Viper 实例，供 CLI 子命令检查配置使用.
func GetViper() *viper.Viper {
	return appViper
}
