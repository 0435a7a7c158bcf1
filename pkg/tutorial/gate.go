package tutorial

import (
	"log"
	"sort"
	"strings"
)

// GateConfig 门控例外规则配置（来自 data/tutorial/gates.yaml）
type GateConfig struct {
	// TransitionControls 界面切换控件（自由操作时的黑名单）
	TransitionControls []string `yaml:"transitionControls"`

	// AlwaysOn 始终可用的公共控件（帮助、查阅等）
	AlwaysOn []string `yaml:"alwaysOn"`

	// GroupPrefixes 成组控件的名称前缀
	// 目标属于某组时，同组所有控件一起启用（如多选项选择器）
	GroupPrefixes []string `yaml:"groupPrefixes"`

	// Compound 复合步骤：确认按钮 → 一并启用的表单输入控件
	Compound map[string][]string `yaml:"compound"`

	// PassiveEvents 始终可用控件上报的事件（打开帮助、查阅等）
	// 这些事件可以完成以它为完成事件的步骤，但永远不算失误
	PassiveEvents []string `yaml:"passiveEvents"`
}

// Verdict 单条规则的判定结果
type Verdict int

const (
	// Abstain 规则不适用，交给下一条
	Abstain Verdict = iota
	// Allow 启用
	Allow
	// Deny 禁用
	Deny
)

// GateRule 门控规则：小而纯的判定函数
type GateRule struct {
	Name string
	Eval func(step *StepDescriptor, control string) Verdict
}

// GateDecision 单个控件的门控结果
type GateDecision struct {
	Name    string
	Enabled bool
	// Rule 作出判定的规则名；"default" 表示没有规则适用
	Rule string
}

// GateKeeper 根据当前步骤决定每个控件是否可用
//
// 规则按顺序求值，第一条非 Abstain 的规则决定结果，全部弃权时禁用。
// 新增例外只需追加规则，不需要改动已有分支。
type GateKeeper struct {
	transitions map[string]bool
	alwaysOn    map[string]bool
	groups      []string
	compound    map[string]map[string]bool
	passive     map[string]bool
	rules       []GateRule
}

// NewGateKeeper 创建门控器
func NewGateKeeper(cfg GateConfig) *GateKeeper {
	g := &GateKeeper{
		transitions: toSet(cfg.TransitionControls),
		alwaysOn:    toSet(cfg.AlwaysOn),
		groups:      append([]string(nil), cfg.GroupPrefixes...),
		compound:    make(map[string]map[string]bool, len(cfg.Compound)),
		passive:     toSet(cfg.PassiveEvents),
	}
	// 长前缀优先匹配
	sort.Slice(g.groups, func(i, j int) bool { return len(g.groups[i]) > len(g.groups[j]) })
	for confirm, inputs := range cfg.Compound {
		g.compound[confirm] = toSet(inputs)
	}

	g.rules = []GateRule{
		{Name: "free-operation", Eval: g.ruleFreeOperation},
		{Name: "target", Eval: ruleTarget},
		{Name: "group", Eval: g.ruleGroup},
		{Name: "always-on", Eval: g.ruleAlwaysOn},
		{Name: "compound", Eval: g.ruleCompound},
		{Name: "transition-isolation", Eval: g.ruleTransitionIsolation},
	}
	return g
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

// ruleFreeOperation 自由操作：除界面切换控件外全部启用，切换控件只启用目标
func (g *GateKeeper) ruleFreeOperation(step *StepDescriptor, control string) Verdict {
	if !step.AllowFreeOperation {
		return Abstain
	}
	if g.transitions[control] && control != step.TargetControl {
		return Deny
	}
	return Allow
}

func ruleTarget(step *StepDescriptor, control string) Verdict {
	if step.TargetControl != "" && control == step.TargetControl {
		return Allow
	}
	return Abstain
}

func (g *GateKeeper) ruleGroup(step *StepDescriptor, control string) Verdict {
	group, ok := g.GroupOf(step.TargetControl)
	if !ok {
		return Abstain
	}
	if strings.HasPrefix(control, group) {
		return Allow
	}
	return Abstain
}

func (g *GateKeeper) ruleAlwaysOn(_ *StepDescriptor, control string) Verdict {
	if g.alwaysOn[control] {
		return Allow
	}
	return Abstain
}

func (g *GateKeeper) ruleCompound(step *StepDescriptor, control string) Verdict {
	if inputs, ok := g.compound[step.TargetControl]; ok && inputs[control] {
		return Allow
	}
	return Abstain
}

// ruleTransitionIsolation 目标是切换控件时，其他切换控件一律禁用
func (g *GateKeeper) ruleTransitionIsolation(step *StepDescriptor, control string) Verdict {
	if g.transitions[step.TargetControl] && g.transitions[control] {
		return Deny
	}
	return Abstain
}

// GroupOf 返回控件所属的组前缀
func (g *GateKeeper) GroupOf(control string) (string, bool) {
	if control == "" {
		return "", false
	}
	for _, prefix := range g.groups {
		if strings.HasPrefix(control, prefix) {
			return prefix, true
		}
	}
	return "", false
}

// IsTransition 是否为界面切换控件
func (g *GateKeeper) IsTransition(control string) bool {
	return g.transitions[control]
}

// IsPassiveEvent 事件是否来自始终可用的公共控件
func (g *GateKeeper) IsPassiveEvent(event string) bool {
	return g.passive[event]
}

// RuleNames 返回规则名（按求值顺序）
func (g *GateKeeper) RuleNames() []string {
	names := make([]string, len(g.rules))
	for i, r := range g.rules {
		names[i] = r.Name
	}
	return names
}

// Decide 计算单个控件的门控结果
// step 为 nil 表示教学未激活，所有控件可用
func (g *GateKeeper) Decide(step *StepDescriptor, control string) GateDecision {
	if step == nil {
		return GateDecision{Name: control, Enabled: true, Rule: "inactive"}
	}
	for _, rule := range g.rules {
		switch rule.Eval(step, control) {
		case Allow:
			return GateDecision{Name: control, Enabled: true, Rule: rule.Name}
		case Deny:
			return GateDecision{Name: control, Enabled: false, Rule: rule.Name}
		}
	}
	return GateDecision{Name: control, Enabled: false, Rule: "default"}
}

// Evaluate 纯函数：(步骤, 控件名快照) → 门控结果
func (g *GateKeeper) Evaluate(step *StepDescriptor, names []string) []GateDecision {
	decisions := make([]GateDecision, 0, len(names))
	for _, name := range names {
		decisions = append(decisions, g.Decide(step, name))
	}
	return decisions
}

// Apply 对注册表中所有存活控件应用门控
func (g *GateKeeper) Apply(step *StepDescriptor, registry *ControlRegistry) []GateDecision {
	decisions := g.Evaluate(step, registry.Names())
	for _, d := range decisions {
		if ctrl, ok := registry.Resolve(d.Name); ok {
			ctrl.SetInputEnabled(d.Enabled)
		}
	}
	if step != nil {
		log.Printf("[GateKeeper] Applied gate for step %q to %d controls", step.ID, len(decisions))
	}
	return decisions
}

// ApplyOne 对单个控件应用门控（控件在步骤显示之后才注册时使用）
func (g *GateKeeper) ApplyOne(step *StepDescriptor, name string, ctrl Control) GateDecision {
	d := g.Decide(step, name)
	ctrl.SetInputEnabled(d.Enabled)
	return d
}

// EnableAll 启用注册表中所有存活控件
func EnableAll(registry *ControlRegistry) {
	registry.Each(func(_ string, ctrl Control) {
		ctrl.SetInputEnabled(true)
	})
}
