package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/auditiq/auditiq-gateway/pkg/internal/model"
)

func TestIngestHappyPath(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	resp, err := env.svc.Ingest(ctx, testAuthUser(), "credit.csv", []byte(sampleCSV))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if resp.ID == "" {
		t.Error("expected dataset id")
	}

	if resp.FastAPIDatasetID == nil || *resp.FastAPIDatasetID != "compute_1" {
		t.Errorf("fastapi_dataset_id = %v, want compute_1", resp.FastAPIDatasetID)
	}

	if resp.Stats.Rows != 4 || resp.Stats.Columns != 3 {
		t.Errorf("stats rows/columns = %d/%d, want 4/3", resp.Stats.Rows, resp.Stats.Columns)
	}

	if resp.Stats.MissingValues != 1 {
		t.Errorf("missingValues = %d, want 1", resp.Stats.MissingValues)
	}

	if len(resp.Data) != 4 {
		t.Errorf("preview rows = %d, want 4", len(resp.Data))
	}

	// 布尔优先于数值
	for _, col := range resp.Columns {
		if col.Name == "approved" && string(col.Type) != "boolean" {
			t.Errorf("approved type = %s, want boolean", col.Type)
		}
	}

	if len(env.blob.objects) != 1 {
		t.Errorf("blob objects = %d, want 1", len(env.blob.objects))
	}

	var dataset model.Dataset
	if err := env.db.First(&dataset, "id = ?", resp.ID).Error; err != nil {
		t.Fatalf("dataset row: %v", err)
	}

	if dataset.Status != model.DatasetStatusMirrored {
		t.Errorf("status = %s, want mirrored", dataset.Status)
	}

	if dataset.FileHash == "" || dataset.ObjectKey == "" {
		t.Errorf("hash/object_key not persisted: %+v", dataset)
	}
}

func TestIngestMalformedCSV(t *testing.T) {
	env := newTestService(t)

	_, err := env.svc.Ingest(context.Background(), testAuthUser(), "bad.csv",
		[]byte("a,b\n1,2\n3\n"))

	var malformed *MalformedInputError
	if !errors.As(err, &malformed) {
		t.Fatalf("err = %v, want MalformedInputError", err)
	}

	if len(malformed.Cells) == 0 || malformed.Cells[0].Row != 3 {
		t.Errorf("cells = %+v, want row 3", malformed.Cells)
	}

	// 解析失败必须不留痕
	var count int64

	env.db.Model(&model.Dataset{}).Count(&count)

	if count != 0 {
		t.Errorf("dataset rows = %d, want 0", count)
	}

	if len(env.blob.objects) != 0 {
		t.Errorf("blob objects = %d, want 0", len(env.blob.objects))
	}
}

// 镜像失败不阻断入库，fastapi_dataset_id 为 null.
func TestIngestMirrorFailure(t *testing.T) {
	env := newTestService(t)
	env.mirror.err = fmt.Errorf("connection refused")

	resp, err := env.svc.Ingest(context.Background(), testAuthUser(), "credit.csv", []byte(sampleCSV))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if resp.FastAPIDatasetID != nil {
		t.Errorf("fastapi_dataset_id = %v, want nil", resp.FastAPIDatasetID)
	}

	var dataset model.Dataset
	if err := env.db.First(&dataset, "id = ?", resp.ID).Error; err != nil {
		t.Fatalf("dataset row: %v", err)
	}

	if dataset.ComputeDatasetID != nil {
		t.Errorf("compute id = %v, want nil", dataset.ComputeDatasetID)
	}

	if dataset.Status != model.DatasetStatusReady {
		t.Errorf("status = %s, want ready", dataset.Status)
	}
}

// 对象存储写失败同样不阻断入库.
func TestIngestBlobFailure(t *testing.T) {
	env := newTestService(t)
	env.blob.putErr = fmt.Errorf("s3 down")

	resp, err := env.svc.Ingest(context.Background(), testAuthUser(), "credit.csv", []byte(sampleCSV))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	var dataset model.Dataset
	if err := env.db.First(&dataset, "id = ?", resp.ID).Error; err != nil {
		t.Fatalf("dataset row: %v", err)
	}

	if dataset.ObjectKey != "" {
		t.Errorf("object_key = %q, want empty", dataset.ObjectKey)
	}
}

// 同一 email 重复上传只建一个影子用户.
func TestEnsureUserShadowReuse(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	for range 3 {
		if _, err := env.svc.Ingest(ctx, testAuthUser(), "credit.csv", []byte(sampleCSV)); err != nil {
			t.Fatalf("Ingest: %v", err)
		}
	}

	var users int64

	env.db.Model(&model.User{}).Count(&users)

	if users != 1 {
		t.Errorf("users = %d, want 1", users)
	}

	var user model.User
	if err := env.db.First(&user, "email = ?", "ada@example.com").Error; err != nil {
		t.Fatalf("user row: %v", err)
	}

	if user.FirstName != "Ada" || user.LastName != "Lovelace" {
		t.Errorf("name = %s %s", user.FirstName, user.LastName)
	}

	if user.HashedPassword != "oauth_user" || user.Plan != "freemium" {
		t.Errorf("shadow defaults wrong: %+v", user)
	}
}

func TestDeleteDataset(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	resp, err := env.svc.Ingest(ctx, testAuthUser(), "credit.csv", []byte(sampleCSV))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	var dataset model.Dataset

	env.db.First(&dataset, "id = ?", resp.ID)

	del, err := env.svc.Delete(ctx, dataset.UserID, dataset.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if !del.Success {
		t.Error("expected success")
	}

	if len(env.blob.objects) != 0 {
		t.Errorf("blob objects = %d, want 0", len(env.blob.objects))
	}

	var count int64

	env.db.Model(&model.Dataset{}).Count(&count)

	if count != 0 {
		t.Errorf("dataset rows = %d, want 0", count)
	}
}

func TestDeleteDatasetWrongOwner(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	resp, err := env.svc.Ingest(ctx, testAuthUser(), "credit.csv", []byte(sampleCSV))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if _, err := env.svc.Delete(ctx, "someone-else", resp.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListDatasets(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	first, err := env.svc.Ingest(ctx, testAuthUser(), "a.csv", []byte(sampleCSV))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if _, err := env.svc.Ingest(ctx, testAuthUser(), "b.csv", []byte(sampleCSV)); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	var dataset model.Dataset

	env.db.First(&dataset, "id = ?", first.ID)

	list, err := env.svc.List(ctx, dataset.UserID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	if len(list.Datasets) != 2 {
		t.Errorf("datasets = %d, want 2", len(list.Datasets))
	}

	empty, err := env.svc.List(ctx, "nobody")
	if err != nil {
		t.Fatalf("List empty: %v", err)
	}

	if len(empty.Datasets) != 0 {
		t.Errorf("datasets for unknown user = %d, want 0", len(empty.Datasets))
	}
}
