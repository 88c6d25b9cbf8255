// Package queue 定义消息主题常量与分组，供发布/订阅使用.
package queue

// 主题命名规范：aiq.<域>.<动作>[.<状态>]，尽量稳定且向后兼容.
// 域：dataset(数据集)、audit(审计任务)
// 动作/状态：ingested/mirrored/mirror.failed/healed/deleted、created/completed

const (
	// 数据集领域.
	TopicDatasetIngested     = "aiq.dataset.ingested"      // 数据集已写入对象存储且元数据已入库
	TopicDatasetMirrored     = "aiq.dataset.mirrored"      // 数据集已镜像到计算后端
	TopicDatasetMirrorFailed = "aiq.dataset.mirror.failed" // 镜像计算后端失败（稍后可自动修复）
	TopicDatasetHealed       = "aiq.dataset.healed"        // 计算后端缺失的数据集被自动重新上传
	TopicDatasetDeleted      = "aiq.dataset.deleted"       // 数据集对象与元数据已删除

	// 审计任务领域.
	TopicAuditCreated   = "aiq.audit.created"   // 审计任务已创建
	TopicAuditCompleted = "aiq.audit.completed" // 审计任务已出结果
)

// 主题分组，用于批量订阅或权限控制.
var (
	// 数据集相关主题集合.
	DatasetTopics = []string{
		TopicDatasetIngested, TopicDatasetMirrored, TopicDatasetMirrorFailed,
		TopicDatasetHealed, TopicDatasetDeleted,
	}

	// 审计任务相关主题集合.
	AuditTopics = []string{
		TopicAuditCreated, TopicAuditCompleted,
	}
)
