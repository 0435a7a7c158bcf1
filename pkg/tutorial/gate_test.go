package tutorial

import (
	"testing"
)

// gateSnapshot 固定的注册表快照
var gateSnapshot = []string{
	"confirm_btn", "field_name", "field_amount",
	"insurance_opt_a", "insurance_opt_b", "insurance_other",
	"nav_reception", "nav_check", "nav_payment", "nav_shelf",
	"help_btn", "lookup_btn",
	"pay_btn", "print_btn",
}

func enabledSet(decisions []GateDecision) map[string]bool {
	set := make(map[string]bool)
	for _, d := range decisions {
		if d.Enabled {
			set[d.Name] = true
		}
	}
	return set
}

// TestGateKeeper_TargetedSteps 对每个非自由操作步骤穷举检查：
// 恰好 {目标 ∪ 同组 ∪ 始终可用 ∪ 复合输入} 可用，其余全部禁用
func TestGateKeeper_TargetedSteps(t *testing.T) {
	cfg := testGates()
	g := NewGateKeeper(cfg)

	for _, step := range testSteps() {
		if step.AllowFreeOperation || step.TargetControl == "" {
			continue
		}
		step := step
		t.Run(step.ID, func(t *testing.T) {
			want := map[string]bool{step.TargetControl: true}
			for _, name := range cfg.AlwaysOn {
				want[name] = true
			}
			if group, ok := g.GroupOf(step.TargetControl); ok {
				for _, name := range gateSnapshot {
					if len(name) >= len(group) && name[:len(group)] == group {
						want[name] = true
					}
				}
			}
			for _, name := range cfg.Compound[step.TargetControl] {
				want[name] = true
			}

			got := enabledSet(g.Evaluate(&step, gateSnapshot))
			for _, name := range gateSnapshot {
				if got[name] != want[name] {
					t.Errorf("control %q: enabled=%v, want %v", name, got[name], want[name])
				}
			}
		})
	}
}

// TestGateKeeper_Group 目标属于组时同组控件一并启用
func TestGateKeeper_Group(t *testing.T) {
	g := NewGateKeeper(testGates())
	step := &StepDescriptor{ID: "choose", Action: ActionClick, TargetControl: "insurance_opt_a", CompletionEvent: "X"}

	tests := []struct {
		control string
		enabled bool
		rule    string
	}{
		{"insurance_opt_a", true, "target"},
		{"insurance_opt_b", true, "group"},
		{"insurance_other", false, "default"},
		{"help_btn", true, "always-on"},
		{"nav_check", false, "default"},
	}
	for _, tt := range tests {
		d := g.Decide(step, tt.control)
		if d.Enabled != tt.enabled || d.Rule != tt.rule {
			t.Errorf("Decide(%q) = {%v %s}, want {%v %s}", tt.control, d.Enabled, d.Rule, tt.enabled, tt.rule)
		}
	}
}

// TestGateKeeper_LongestPrefixWins 长前缀优先
func TestGateKeeper_LongestPrefixWins(t *testing.T) {
	g := NewGateKeeper(GateConfig{GroupPrefixes: []string{"opt_", "opt_drug_"}})

	group, ok := g.GroupOf("opt_drug_1")
	if !ok || group != "opt_drug_" {
		t.Errorf("GroupOf(opt_drug_1) = %q, %v; want opt_drug_", group, ok)
	}
	if _, ok := g.GroupOf("other"); ok {
		t.Error("GroupOf(other) should not match")
	}
	if _, ok := g.GroupOf(""); ok {
		t.Error("GroupOf(\"\") should not match")
	}
}

// TestGateKeeper_FreeOperation 自由操作：除其他切换控件外全部可用
func TestGateKeeper_FreeOperation(t *testing.T) {
	g := NewGateKeeper(testGates())

	tests := []struct {
		name   string
		target string
	}{
		{"目标为普通控件", "insurance_opt_a"},
		{"目标为切换控件", "nav_check"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			step := &StepDescriptor{
				ID: "free", Action: ActionClick, TargetControl: tt.target,
				CompletionEvent: "X", AllowFreeOperation: true,
			}
			got := enabledSet(g.Evaluate(step, gateSnapshot))
			for _, name := range gateSnapshot {
				want := !g.IsTransition(name) || name == tt.target
				if got[name] != want {
					t.Errorf("control %q: enabled=%v, want %v", name, got[name], want)
				}
			}
		})
	}
}

// TestGateKeeper_TransitionIsolation 目标是切换控件时，其他切换控件由隔离规则禁用
func TestGateKeeper_TransitionIsolation(t *testing.T) {
	g := NewGateKeeper(testGates())
	step := &StepDescriptor{ID: "nav", Action: ActionClick, TargetControl: "nav_payment", CompletionEvent: "NAV_PAYMENT"}

	for _, name := range []string{"nav_reception", "nav_check", "nav_shelf"} {
		d := g.Decide(step, name)
		if d.Enabled || d.Rule != "transition-isolation" {
			t.Errorf("Decide(%q) = {%v %s}, want disabled by transition-isolation", name, d.Enabled, d.Rule)
		}
	}
	if d := g.Decide(step, "nav_payment"); !d.Enabled {
		t.Error("target transition control should be enabled")
	}
}

// TestGateKeeper_Compound 确认按钮为目标时表单输入一并可用
func TestGateKeeper_Compound(t *testing.T) {
	g := NewGateKeeper(testGates())
	step := &StepDescriptor{ID: "S1", Action: ActionClick, TargetControl: "confirm_btn", CompletionEvent: "CONFIRMED"}

	for _, name := range []string{"field_name", "field_amount"} {
		if d := g.Decide(step, name); !d.Enabled || d.Rule != "compound" {
			t.Errorf("Decide(%q) = {%v %s}, want enabled by compound", name, d.Enabled, d.Rule)
		}
	}

	other := &StepDescriptor{ID: "pay", Action: ActionClick, TargetControl: "pay_btn", CompletionEvent: "PAID"}
	if d := g.Decide(other, "field_name"); d.Enabled {
		t.Error("compound inputs should stay disabled for other targets")
	}
}

// TestGateKeeper_InfoStepDisablesAll 无目标的提示步骤只保留公共控件
func TestGateKeeper_InfoStepDisablesAll(t *testing.T) {
	g := NewGateKeeper(testGates())
	step := &StepDescriptor{ID: "welcome", Action: ActionInfo, CompletionEvent: EventManualNext}

	got := enabledSet(g.Evaluate(step, gateSnapshot))
	if len(got) != 2 || !got["help_btn"] || !got["lookup_btn"] {
		t.Errorf("Expected only always-on controls enabled, got %v", got)
	}
}

// TestGateKeeper_Inactive 未激活时全部可用
func TestGateKeeper_Inactive(t *testing.T) {
	g := NewGateKeeper(testGates())
	for _, d := range g.Evaluate(nil, gateSnapshot) {
		if !d.Enabled || d.Rule != "inactive" {
			t.Errorf("Decide(nil, %q) = {%v %s}, want enabled", d.Name, d.Enabled, d.Rule)
		}
	}
}

// TestGateKeeper_Apply 推送到注册表中的控件
func TestGateKeeper_Apply(t *testing.T) {
	g := NewGateKeeper(testGates())
	r := NewControlRegistry()
	screen := newFakeScreen("Reception")

	confirm := newFakeControl(0, 0)
	nav := newFakeControl(0, 40)
	help := newFakeControl(0, 80)
	stale := newFakeControl(0, 120)
	gone := newFakeScreen("Shelf")

	r.Register("confirm_btn", confirm, screen)
	r.Register("nav_check", nav, screen)
	r.Register("help_btn", help, nil)
	r.Register("shelf_item", stale, gone)
	gone.live = false

	step := &StepDescriptor{ID: "S1", Action: ActionClick, TargetControl: "confirm_btn", CompletionEvent: "CONFIRMED"}
	decisions := g.Apply(step, r)

	if len(decisions) != 3 {
		t.Errorf("Expected 3 decisions for live controls, got %d", len(decisions))
	}
	if !confirm.enabled || nav.enabled || !help.enabled {
		t.Errorf("Unexpected enabled states: confirm=%v nav=%v help=%v", confirm.enabled, nav.enabled, help.enabled)
	}
	if stale.setCalls != 0 {
		t.Error("stale control must not be touched")
	}

	EnableAll(r)
	if !nav.enabled {
		t.Error("EnableAll should enable every live control")
	}
}

// TestGateKeeper_RuleOrder 规则顺序
func TestGateKeeper_RuleOrder(t *testing.T) {
	g := NewGateKeeper(GateConfig{})
	want := []string{"free-operation", "target", "group", "always-on", "compound", "transition-isolation"}
	got := g.RuleNames()
	if len(got) != len(want) {
		t.Fatalf("RuleNames() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("rule %d = %q, want %q", i, got[i], want[i])
		}
	}
}
