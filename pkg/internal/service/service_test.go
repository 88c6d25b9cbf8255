package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/auditiq/auditiq-gateway/pkg/configs"
	"github.com/auditiq/auditiq-gateway/pkg/internal/clients/authn"
	"github.com/auditiq/auditiq-gateway/pkg/internal/clients/compute"
	"github.com/auditiq/auditiq-gateway/pkg/internal/model"
)

// fakeBlob 内存对象存储.
type fakeBlob struct {
	objects  map[string][]byte
	modTimes map[string]time.Time
	putErr   error
	getErr   error
}

func newFakeBlob() *fakeBlob {
	return &fakeBlob{
		objects:  map[string][]byte{},
		modTimes: map[string]time.Time{},
	}
}

func (f *fakeBlob) Put(_ context.Context, _, key string, r io.Reader, _ int64, _ string) error {
	if f.putErr != nil {
		return f.putErr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	f.objects[key] = data
	f.modTimes[key] = time.Now()

	return nil
}

func (f *fakeBlob) Get(_ context.Context, _, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}

	data, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}

	return data, nil
}

func (f *fakeBlob) Remove(_ context.Context, _, key string) error {
	delete(f.objects, key)
	delete(f.modTimes, key)

	return nil
}

func (f *fakeBlob) PresignedGet(_ context.Context, _, key string, _ time.Duration) (string, error) {
	return "https://blob.test/" + key, nil
}

func (f *fakeBlob) List(_ context.Context, _, prefix string) ([]BlobInfo, error) {
	var infos []BlobInfo

	for key, data := range f.objects {
		if prefix != "" && !bytes.HasPrefix([]byte(key), []byte(prefix)) {
			continue
		}

		infos = append(infos, BlobInfo{Key: key, Size: int64(len(data)), LastModified: f.modTimes[key]})
	}

	return infos, nil
}

// fakeMirror 可编程的镜像上传桩.
type fakeMirror struct {
	calls  int
	err    error
	nextID string
}

func (f *fakeMirror) Mirror(_ context.Context, _ string, _ []byte) (string, error) {
	f.calls++

	if f.err != nil {
		return "", f.err
	}

	if f.nextID != "" {
		return f.nextID, nil
	}

	return fmt.Sprintf("compute_%d", f.calls), nil
}

// fakeForwarder 按调用序返回预置应答.
type fakeForwarder struct {
	calls     int
	responses []*compute.Response
	err       error
}

func (f *fakeForwarder) Forward(_ context.Context, _, _ string, _ url.Values, _ []byte, _ string) (*compute.Response, error) {
	if f.err != nil {
		return nil, f.err
	}

	idx := f.calls
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}

	f.calls++

	return f.responses[idx], nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := model.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}

type testEnv struct {
	svc     *DatasetService
	blob    *fakeBlob
	mirror  *fakeMirror
	forward *fakeForwarder
	db      *gorm.DB
}

func newTestService(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	blob := newFakeBlob()
	mirror := &fakeMirror{}
	forward := &fakeForwarder{}

	svc := &DatasetService{
		db:        db,
		blob:      blob,
		bucket:    "datasets",
		mirror:    mirror,
		forwarder: forward,
		events:    &configs.EventsConfig{},
	}

	return &testEnv{svc: svc, blob: blob, mirror: mirror, forward: forward, db: db}
}

func testAuthUser() *authn.AuthUser {
	return &authn.AuthUser{
		ID:       "auth_1",
		Email:    "ada@example.com",
		FullName: "Ada Lovelace",
	}
}

const sampleCSV = "age,income,approved\n34,52000,1\n29,48000,0\n41,61000,1\n38,,1\n"
