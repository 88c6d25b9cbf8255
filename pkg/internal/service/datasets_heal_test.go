package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/auditiq/auditiq-gateway/pkg/internal/clients/compute"
	"github.com/auditiq/auditiq-gateway/pkg/internal/model"
)

// ingestOne 入一个数据集并返回持久记录.
func ingestOne(t *testing.T, env *testEnv) *model.Dataset {
	t.Helper()

	resp, err := env.svc.Ingest(context.Background(), testAuthUser(), "credit.csv", []byte(sampleCSV))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	var dataset model.Dataset
	if err := env.db.First(&dataset, "id = ?", resp.ID).Error; err != nil {
		t.Fatalf("dataset row: %v", err)
	}

	return &dataset
}

func TestHealByDurableID(t *testing.T) {
	env := newTestService(t)
	dataset := ingestOne(t, env)

	env.mirror.nextID = "compute_new"

	newID, err := env.svc.Heal(context.Background(), dataset.ID, "")
	if err != nil {
		t.Fatalf("Heal: %v", err)
	}

	if newID != "compute_new" {
		t.Errorf("new compute id = %q", newID)
	}

	var reloaded model.Dataset

	env.db.First(&reloaded, "id = ?", dataset.ID)

	if reloaded.ComputeDatasetID == nil || *reloaded.ComputeDatasetID != "compute_new" {
		t.Errorf("persisted compute id = %v", reloaded.ComputeDatasetID)
	}
}

// 客户端可能拿着失效的临时 ID 来，也要能修.
func TestHealByStaleComputeID(t *testing.T) {
	env := newTestService(t)
	dataset := ingestOne(t, env)

	stale := *dataset.ComputeDatasetID
	env.mirror.nextID = "compute_fresh"

	newID, err := env.svc.Heal(context.Background(), stale, "")
	if err != nil {
		t.Fatalf("Heal by stale id: %v", err)
	}

	if newID != "compute_fresh" {
		t.Errorf("new compute id = %q", newID)
	}
}

func TestHealUnknownDataset(t *testing.T) {
	env := newTestService(t)

	if _, err := env.svc.Heal(context.Background(), "no-such-id", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestHealWithoutStoredBlob(t *testing.T) {
	env := newTestService(t)
	env.blob.putErr = fmt.Errorf("s3 down")

	dataset := ingestOne(t, env)

	if _, err := env.svc.Heal(context.Background(), dataset.ID, ""); err == nil {
		t.Fatal("expected error healing dataset with no blob")
	}
}

func jsonResp(status int, body string) *compute.Response {
	return &compute.Response{StatusCode: status, ContentType: "application/json", Body: []byte(body)}
}

// 404 触发修复，修复成功后原始请求重放一次.
func TestProxyWithHealRetriesOnce(t *testing.T) {
	env := newTestService(t)
	dataset := ingestOne(t, env)

	env.forward.responses = []*compute.Response{
		jsonResp(http.StatusNotFound, `{"detail":"Dataset not found"}`),
		jsonResp(http.StatusOK, `{"result":"fine"}`),
	}

	resp, err := env.svc.ProxyWithHeal(context.Background(), http.MethodPost, "/api/ds/describe",
		nil, []byte(fmt.Sprintf(`{"dataset_id":%q}`, dataset.ID)), "tok")
	if err != nil {
		t.Fatalf("ProxyWithHeal: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	if env.forward.calls != 2 {
		t.Errorf("forward calls = %d, want 2", env.forward.calls)
	}

	if env.mirror.calls != 2 { // 一次入库镜像 + 一次修复
		t.Errorf("mirror calls = %d, want 2", env.mirror.calls)
	}
}

// 修复失败时把后端原始 404 还给调用方，不重放.
func TestProxyWithHealFailureKeeps404(t *testing.T) {
	env := newTestService(t)

	env.forward.responses = []*compute.Response{
		jsonResp(http.StatusNotFound, `{"detail":"Dataset not found"}`),
	}

	resp, err := env.svc.ProxyWithHeal(context.Background(), http.MethodPost, "/api/ds/describe",
		nil, []byte(`{"dataset_id":"ghost"}`), "tok")
	if err != nil {
		t.Fatalf("ProxyWithHeal: %v", err)
	}

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}

	if env.forward.calls != 1 {
		t.Errorf("forward calls = %d, want 1", env.forward.calls)
	}
}

// 重放后仍 404 也只修一次，绝不循环.
func TestProxyWithHealAtMostOneRetry(t *testing.T) {
	env := newTestService(t)
	dataset := ingestOne(t, env)

	env.forward.responses = []*compute.Response{
		jsonResp(http.StatusNotFound, `{"detail":"Dataset not found"}`),
		jsonResp(http.StatusNotFound, `{"detail":"still missing"}`),
	}

	resp, err := env.svc.ProxyWithHeal(context.Background(), http.MethodGet, "/api/ds/describe",
		url.Values{"dataset_id": {dataset.ID}}, nil, "tok")
	if err != nil {
		t.Fatalf("ProxyWithHeal: %v", err)
	}

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}

	if env.forward.calls != 2 {
		t.Errorf("forward calls = %d, want exactly 2", env.forward.calls)
	}
}

// 没有 dataset_id 的 404 原样返回，不触发修复.
func TestProxyNoDatasetIDNoHeal(t *testing.T) {
	env := newTestService(t)

	env.forward.responses = []*compute.Response{
		jsonResp(http.StatusNotFound, `{"detail":"route not found"}`),
	}

	resp, err := env.svc.ProxyWithHeal(context.Background(), http.MethodGet, "/api/ds/unknown", nil, nil, "tok")
	if err != nil {
		t.Fatalf("ProxyWithHeal: %v", err)
	}

	if resp.StatusCode != http.StatusNotFound || env.forward.calls != 1 {
		t.Errorf("status = %d, calls = %d", resp.StatusCode, env.forward.calls)
	}
}

// 非 404 错误原样透传.
func TestProxyPassesThroughErrors(t *testing.T) {
	env := newTestService(t)

	env.forward.responses = []*compute.Response{
		jsonResp(http.StatusBadGateway, `{"detail":"upstream broke"}`),
	}

	resp, err := env.svc.ProxyWithHeal(context.Background(), http.MethodGet, "/api/ds/describe", nil, nil, "tok")
	if err != nil {
		t.Fatalf("ProxyWithHeal: %v", err)
	}

	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.StatusCode)
	}
}

func TestProxyBackendUnreachable(t *testing.T) {
	env := newTestService(t)
	env.forward.err = fmt.Errorf("dial tcp: connection refused")

	_, err := env.svc.ProxyWithHeal(context.Background(), http.MethodGet, "/api/ds/describe", nil, nil, "tok")
	if !errors.Is(err, ErrBackendUnreachable) {
		t.Fatalf("err = %v, want ErrBackendUnreachable", err)
	}
}
