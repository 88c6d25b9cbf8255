package rule_test

import (
	"testing"

	"github.com/auditiq/auditiq-gateway/pkg/rule"
)

// uploadForm 用于测试 ValidateStruct.
type uploadForm struct {
	Filename string `rule:"required"`
	SizeMB   int    `rule:"gte=0,lte=100"`
}

// TestEngine 测试 Engine 函数返回非 nil 实例.
func TestEngine(t *testing.T) {
	if rule.Engine() == nil {
		t.Error("Engine() returned nil")
	}
}

// TestValidateStruct 测试 ValidateStruct 对有效和无效结构体的验证.
func TestValidateStruct(t *testing.T) {
	valid := uploadForm{Filename: "adult.csv", SizeMB: 12}
	if err := rule.ValidateStruct(valid); err != nil {
		t.Errorf("Expected no error for valid struct, got %v", err)
	}

	// 缺少文件名
	if err := rule.ValidateStruct(uploadForm{SizeMB: 12}); err == nil {
		t.Error("Expected error for missing filename, got nil")
	}

	// 超过大小上限
	if err := rule.ValidateStruct(uploadForm{Filename: "big.csv", SizeMB: 512}); err == nil {
		t.Error("Expected error for oversized upload, got nil")
	}
}

// TestValidateVar 测试 ValidateVar 对变量的验证.
func TestValidateVar(t *testing.T) {
	if err := rule.ValidateVar("a@b.io", "required,email"); err != nil {
		t.Errorf("Expected no error for valid email, got %v", err)
	}

	if err := rule.ValidateVar("not-an-email", "required,email"); err == nil {
		t.Error("Expected error for invalid email, got nil")
	}
}

// TestErrors 测试校验错误到字段消息映射的解析.
func TestErrors(t *testing.T) {
	err := rule.ValidateStruct(uploadForm{Filename: "", SizeMB: 999})
	if err == nil {
		t.Fatal("Expected validation error, got nil")
	}

	fields := rule.Errors(err)
	if fields == nil {
		t.Fatal("Errors() returned nil for validation error")
	}

	if _, ok := fields["filename"]; !ok {
		t.Errorf("Expected filename in parsed errors, got %v", fields)
	}

	if got := fields["sizemb"]; got != "lte=100" {
		t.Errorf("Expected sizemb error lte=100, got %q", got)
	}

	// 非校验错误返回 nil
	if fields := rule.Errors(nil); fields != nil {
		t.Errorf("Expected nil for nil error, got %v", fields)
	}
}

// TestRegisterAlias 测试注册别名.
func TestRegisterAlias(t *testing.T) {
	rule.RegisterAlias("dataset_name", "required,min=3")

	if err := rule.ValidateVar("abc", "dataset_name"); err != nil {
		t.Errorf("Expected no error for valid name, got %v", err)
	}

	if err := rule.ValidateVar("ab", "dataset_name"); err == nil {
		t.Error("Expected error for short name, got nil")
	}
}
