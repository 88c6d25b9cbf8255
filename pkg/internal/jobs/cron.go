// Package jobs 负责注册与实现业务定时任务（基于 scheduler）。
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/auditiq/auditiq-gateway/pkg/configs"
	ctxPkg "github.com/auditiq/auditiq-gateway/pkg/context"
	"github.com/auditiq/auditiq-gateway/pkg/internal/service"
	"github.com/auditiq/auditiq-gateway/pkg/internal/storage"
	"github.com/auditiq/auditiq-gateway/pkg/log"
	"github.com/auditiq/auditiq-gateway/pkg/scheduler"
)

// RegisterCronJobs 配置业务定时任务：
//   - 每晚按配置的 cron 清理对象存储中的孤儿数据集文件
//     （元数据写入失败或删除中断会留下无人引用的对象）
func RegisterCronJobs(sched *scheduler.Scheduler, mgr *storage.Manager, cfg configs.SchedulerConfig) error {
	if sched == nil {
		return fmt.Errorf("scheduler is nil")
	}

	if mgr == nil {
		return fmt.Errorf("storage manager is nil")
	}

	// 将 storage manager 注入到 context，便于 service 使用
	baseCtx := ctxPkg.WithStorageManager(context.Background(), mgr)

	if err := sched.AddCron(JobOrphanBlobSweep, cfg.OrphanSweepCron, func(ctx context.Context) {
		runOrphanSweep(ctx, cfg)
	}, baseCtx); err != nil {
		return err
	}

	return nil
}

// runOrphanSweep 扫描对象存储，删除超过宽限期且没有数据集元数据引用的对象。
func runOrphanSweep(ctx context.Context, cfg configs.SchedulerConfig) {
	l := log.Logger().With().Str("job", JobOrphanBlobSweep).Logger()

	grace := time.Duration(cfg.OrphanGraceMin) * time.Minute

	svc := service.NewDatasetService(ctx)

	removed, err := svc.SweepOrphanBlobs(ctx, grace, cfg.OrphanSweepDry)
	if err != nil {
		l.Error().Err(err).Msg("orphan sweep failed")
		return
	}

	if removed > 0 || cfg.OrphanSweepDry {
		l.Info().Int("removed", removed).Bool("dry_run", cfg.OrphanSweepDry).Msg("orphan sweep done")
	}
}
