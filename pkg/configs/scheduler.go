package configs

import "github.com/spf13/viper"

// SchedulerConfig 定时任务配置.
type SchedulerConfig struct {
	Enabled         bool   `mapstructure:"enabled"`           // 是否启用定时任务
	OrphanSweepCron string `mapstructure:"orphan_sweep_cron"` // 孤儿对象清理任务的 cron 表达式
	OrphanGraceMin  int    `mapstructure:"orphan_grace_min"`  // 对象入库宽限期（分钟），早于该窗口且无元数据的对象视为孤儿
	OrphanSweepDry  bool   `mapstructure:"orphan_sweep_dry"`  // 只记录不删除
}

func (c *SchedulerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.orphan_sweep_cron", "30 3 * * *")
	v.SetDefault("scheduler.orphan_grace_min", 60)
	v.SetDefault("scheduler.orphan_sweep_dry", false)
}
