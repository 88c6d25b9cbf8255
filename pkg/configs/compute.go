package configs

import "github.com/spf13/viper"

const (
	DefaultComputeBaseURL        = "http://localhost:8000" // 默认计算后端地址
	DefaultComputeUploadPath     = "/api/datasets/upload"  // 默认数据集镜像端点
	DefaultComputeTimeoutSec     = 30                      // 默认请求超时（秒）
	DefaultComputeLongTimeoutSec = 300                     // 训练/公平性计算等长任务超时（秒）
)

// ComputeConfig 外部计算后端配置.
// 数据集在入库后会尽力镜像到该后端，统计与公平性计算请求原样转发过去.
type ComputeConfig struct {
	BaseURL        string `mapstructure:"base_url"         rule:"url"`
	UploadPath     string `mapstructure:"upload_path"`
	TimeoutSec     int    `mapstructure:"timeout_sec"      rule:"min=1,max=600"`
	LongTimeoutSec int    `mapstructure:"long_timeout_sec" rule:"min=1,max=3600"`
}

func (c *ComputeConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("compute.base_url", DefaultComputeBaseURL)
	v.SetDefault("compute.upload_path", DefaultComputeUploadPath)
	v.SetDefault("compute.timeout_sec", DefaultComputeTimeoutSec)
	v.SetDefault("compute.long_timeout_sec", DefaultComputeLongTimeoutSec)
}
