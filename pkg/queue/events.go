package queue

import "github.com/ThreeDotsLabs/watermill/message"

// -------------------------- 基于业务封装 events --------------------------

// PublishDatasetIngested 发布 aiq.dataset.ingested 事件。
// 数据集元数据入库成功后调用，通知下游（计算后端镜像监控、审计看板等）。
// 可通过可选项 opts 注入 TraceID、Producer 等头部信息。
func PublishDatasetIngested(pub message.Publisher, payload DatasetIngestedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicDatasetIngested, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicDatasetIngested, msg)
}

// ParseDatasetIngested 将 Watermill 消息解析为强类型 Envelope（DatasetIngestedPayload）。
func ParseDatasetIngested(msg *message.Message) (Message[DatasetIngestedPayload], error) {
	return ParseWatermillMessage[DatasetIngestedPayload](msg)
}

// PublishDatasetMirrored 发布 aiq.dataset.mirrored 事件。
func PublishDatasetMirrored(pub message.Publisher, payload DatasetMirroredPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicDatasetMirrored, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicDatasetMirrored, msg)
}

// PublishDatasetMirrorFailed 发布 aiq.dataset.mirror.failed 事件。
// 镜像失败不阻断入库，该事件是运维排查镜像缺口的主要信号。
func PublishDatasetMirrorFailed(pub message.Publisher, payload DatasetMirrorFailedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicDatasetMirrorFailed, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicDatasetMirrorFailed, msg)
}

// PublishDatasetHealed 发布 aiq.dataset.healed 事件。
func PublishDatasetHealed(pub message.Publisher, payload DatasetHealedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicDatasetHealed, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicDatasetHealed, msg)
}

// PublishDatasetDeleted 发布 aiq.dataset.deleted 事件。
func PublishDatasetDeleted(pub message.Publisher, payload DatasetDeletedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicDatasetDeleted, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicDatasetDeleted, msg)
}

// PublishAuditCreated 发布 aiq.audit.created 事件。
func PublishAuditCreated(pub message.Publisher, payload AuditCreatedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicAuditCreated, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicAuditCreated, msg)
}

// PublishAuditCompleted 发布 aiq.audit.completed 事件。
func PublishAuditCompleted(pub message.Publisher, payload AuditCompletedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicAuditCompleted, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicAuditCompleted, msg)
}

// ParseDatasetHealed 将 Watermill 消息解析为强类型 Envelope（DatasetHealedPayload）。
func ParseDatasetHealed(msg *message.Message) (Message[DatasetHealedPayload], error) {
	return ParseWatermillMessage[DatasetHealedPayload](msg)
}
