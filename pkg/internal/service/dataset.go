package service

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"gorm.io/gorm"

	"github.com/auditiq/auditiq-gateway/pkg/configs"
	ctxPkg "github.com/auditiq/auditiq-gateway/pkg/context"
	"github.com/auditiq/auditiq-gateway/pkg/internal/clients/compute"
	"github.com/auditiq/auditiq-gateway/pkg/internal/storage/mq"
	"github.com/auditiq/auditiq-gateway/pkg/internal/storage/s3"
)

// BlobStore 数据集原始文件的存取抽象，生产实现为 S3.
type BlobStore interface {
	Put(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Remove(ctx context.Context, bucket, key string) error
	PresignedGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
	List(ctx context.Context, bucket, prefix string) ([]BlobInfo, error)
}

// BlobInfo 对象存储里一个对象的概要.
type BlobInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// s3BlobStore BlobStore 的 MinIO 实现.
type s3BlobStore struct {
	client *s3.Client
}

func (b *s3BlobStore) Put(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error {
	_, err := b.client.PutObject(ctx, bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})

	return err
}

func (b *s3BlobStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	obj, err := b.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	return io.ReadAll(obj)
}

func (b *s3BlobStore) Remove(ctx context.Context, bucket, key string) error {
	return b.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{})
}

func (b *s3BlobStore) PresignedGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	u, err := b.client.PresignedGetObject(ctx, bucket, key, expiry, nil)
	if err != nil {
		return "", err
	}

	return u.String(), nil
}

func (b *s3BlobStore) List(ctx context.Context, bucket, prefix string) ([]BlobInfo, error) {
	var infos []BlobInfo

	for obj := range b.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}

		infos = append(infos, BlobInfo{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
	}

	return infos, nil
}

// Mirrorer 计算后端镜像上传的抽象，生产实现为 compute.Client.
type Mirrorer interface {
	Mirror(ctx context.Context, filename string, content []byte) (string, error)
}

// computeClient 进程级单例，按配置构建一次.
var computeClient = sync.OnceValue(func() *compute.Client {
	return compute.New(&configs.GetConfig().Compute)
})

// ComputeClient 返回进程级计算后端客户端.
func ComputeClient() *compute.Client {
	return computeClient()
}

// DatasetService 数据集领域服务：入库、查询、删除、镜像与自愈.
type DatasetService struct {
	db        *gorm.DB
	blob      BlobStore
	bucket    string
	mirror    Mirrorer
	forwarder Forwarder
	mqClient  *mq.Client
	events    *configs.EventsConfig
}

// NewDatasetService 从请求上下文取存储管理器构建服务.
func NewDatasetService(c context.Context) *DatasetService {
	cfg := configs.GetConfig()

	svc := &DatasetService{
		mirror:    ComputeClient(),
		forwarder: ComputeClient(),
		mqClient:  ctxPkg.GetMQClient(c),
		events:    &cfg.Events,
	}

	if dbc := ctxPkg.GetDBClient(c); dbc != nil {
		svc.db = dbc.DB
	}

	if s3c := ctxPkg.GetS3Client(c); s3c != nil {
		svc.blob = &s3BlobStore{client: s3c}
		svc.bucket = s3c.DefaultBucket()
	}

	return svc
}
