package configs

import "github.com/spf13/viper"

// EventsConfig 控制事件发布的开关（全局与分主题）。
type EventsConfig struct {
	Enabled bool                `mapstructure:"enabled"` // 总开关
	Dataset DatasetEventsConfig `mapstructure:"dataset"`
	Audit   AuditEventsConfig   `mapstructure:"audit"`
}

// DatasetEventsConfig 针对数据集领域的事件开关。
type DatasetEventsConfig struct {
	Ingested     bool `mapstructure:"ingested"`
	Mirrored     bool `mapstructure:"mirrored"`
	MirrorFailed bool `mapstructure:"mirror_failed"`
	Healed       bool `mapstructure:"healed"`
	Deleted      bool `mapstructure:"deleted"`
}

// AuditEventsConfig 针对审计任务领域的事件开关。
type AuditEventsConfig struct {
	Created   bool `mapstructure:"created"`
	Completed bool `mapstructure:"completed"`
}

func (c *EventsConfig) setDefaults(v *viper.Viper) {
	// 总开关：默认启用事件系统
	v.SetDefault("events.enabled", true)

	// 数据集领域事件：入库/修复/删除是审计溯源的最小必要集
	v.SetDefault("events.dataset.ingested", true)
	v.SetDefault("events.dataset.healed", true)
	v.SetDefault("events.dataset.deleted", true)

	// 镜像事件量大且多为重复信息，按需开启
	v.SetDefault("events.dataset.mirrored", false)
	v.SetDefault("events.dataset.mirror_failed", true)

	// 审计任务事件
	v.SetDefault("events.audit.created", true)
	v.SetDefault("events.audit.completed", true)
}
