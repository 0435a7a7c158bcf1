package tutorial

import (
	"errors"
	"testing"
)

// TestNewCatalog_Validation 测试目录校验
func TestNewCatalog_Validation(t *testing.T) {
	tests := []struct {
		name    string
		steps   []StepDescriptor
		wantErr bool
	}{
		{
			name:    "空目录",
			steps:   nil,
			wantErr: true,
		},
		{
			name:    "缺少 ID",
			steps:   []StepDescriptor{{Action: ActionInfo, CompletionEvent: EventManualNext}},
			wantErr: true,
		},
		{
			name: "重复 ID",
			steps: []StepDescriptor{
				{ID: "a", Action: ActionInfo, CompletionEvent: EventManualNext},
				{ID: "a", Action: ActionInfo, CompletionEvent: EventManualNext},
			},
			wantErr: true,
		},
		{
			name:    "非法动作",
			steps:   []StepDescriptor{{ID: "a", Action: "drag", CompletionEvent: "X"}},
			wantErr: true,
		},
		{
			name:    "click 步骤缺少目标",
			steps:   []StepDescriptor{{ID: "a", Action: ActionClick, CompletionEvent: "X"}},
			wantErr: true,
		},
		{
			name:    "缺少完成事件",
			steps:   []StepDescriptor{{ID: "a", Action: ActionWait}},
			wantErr: true,
		},
		{
			name:    "条件表达式无法编译",
			steps:   []StepDescriptor{{ID: "a", Action: ActionWait, CompletionEvent: "X", SkipWhen: "flags.a +"}},
			wantErr: true,
		},
		{
			name:    "条件表达式不是布尔",
			steps:   []StepDescriptor{{ID: "a", Action: ActionWait, CompletionEvent: "X", SkipWhen: "1 + 2"}},
			wantErr: true,
		},
		{
			name:    "合法目录",
			steps:   testSteps(),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.steps)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewCatalog() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestCatalog_Immutable 测试目录不受调用方修改影响
func TestCatalog_Immutable(t *testing.T) {
	steps := testSteps()
	c := mustCatalog(steps)

	steps[0].ID = "mutated"
	steps[5].IgnoreCompletionOn[0] = "mutated"

	first, _ := c.At(0)
	if first.ID != "welcome" {
		t.Errorf("Expected catalog to keep its own copy, got ID %q", first.ID)
	}
	pay, _ := c.At(5)
	if pay.IgnoreCompletionOn[0] != "PRINTER_WARMED" {
		t.Errorf("Expected IgnoreCompletionOn to be copied, got %v", pay.IgnoreCompletionOn)
	}

	// 修改 At 的返回值也不影响目录
	first.Message = "changed"
	again, _ := c.At(0)
	if again.Message == "changed" {
		t.Error("At() should return a copy")
	}
}

// TestCatalog_Lookup 测试查询接口
func TestCatalog_Lookup(t *testing.T) {
	c := mustCatalog(testSteps())

	if c.Len() != 6 {
		t.Fatalf("Expected 6 steps, got %d", c.Len())
	}
	if i, err := c.IndexOf("pay"); err != nil || i != 5 {
		t.Errorf("IndexOf(pay) = %d, %v", i, err)
	}
	if _, err := c.IndexOf("missing"); !errors.Is(err, ErrUnknownStep) {
		t.Errorf("Expected ErrUnknownStep, got %v", err)
	}
	if _, ok := c.At(-1); ok {
		t.Error("At(-1) should fail")
	}
	if _, ok := c.At(6); ok {
		t.Error("At(6) should fail")
	}
	if c.PhaseCount() != 3 {
		t.Errorf("Expected 3 phases, got %d", c.PhaseCount())
	}

	// 默认提示位置
	s, _ := c.At(0)
	if s.MessagePosition != MessageAuto {
		t.Errorf("Expected default message position auto, got %q", s.MessagePosition)
	}
}

// TestCondition_Eval 测试 SkipWhen 表达式
func TestCondition_Eval(t *testing.T) {
	cond, err := CompileCondition("flags.reported && completed[\"S1\"]")
	if err != nil {
		t.Fatalf("CompileCondition() error: %v", err)
	}

	ok, err := cond.Eval(map[string]bool{"reported": true}, map[string]bool{"S1": true})
	if err != nil || !ok {
		t.Errorf("Eval() = %v, %v; want true", ok, err)
	}

	ok, err = cond.Eval(map[string]bool{}, map[string]bool{"S1": true})
	if err != nil || ok {
		t.Errorf("Eval() with unset flag = %v, %v; want false", ok, err)
	}

	empty, err := CompileCondition("  ")
	if err != nil || empty != nil {
		t.Fatalf("Expected nil condition for empty source, got %v, %v", empty, err)
	}
	if ok, _ := empty.Eval(nil, nil); ok {
		t.Error("nil condition should evaluate to false")
	}
}
