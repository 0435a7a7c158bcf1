package config

import (
	"fmt"

	"github.com/agnivade/levenshtein"

	"github.com/gonewx/clinicdesk/pkg/tutorial"
)

// Severity 一致性问题的严重程度
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue 一致性检查发现的问题
type Issue struct {
	Severity Severity
	// Where 问题位置，如 "steps[pay]" 或 "gates.alwaysOn"
	Where   string
	Message string
}

// String 单行格式
func (i Issue) String() string {
	return fmt.Sprintf("%s %s: %s", i.Severity, i.Where, i.Message)
}

// HasErrors 是否存在 error 级别的问题
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// CheckConsistency 交叉检查步骤、门控和界面清单
//
// 控件只通过字符串名称与步骤关联，拼写错误不会在编译期暴露，
// 这里逐项核对并给出“你是不是想写”的建议。
//
// 参数：
//   - steps: 步骤（已应用默认值）
//   - gates: 门控配置
//   - manifest: 界面清单
//
// 返回：
//   - []Issue: 按发现顺序排列的问题，空表示一致
func CheckConsistency(steps []tutorial.StepDescriptor, gates *tutorial.GateConfig, manifest *ScreenManifest) []Issue {
	var issues []Issue
	add := func(sev Severity, where, format string, args ...any) {
		issues = append(issues, Issue{Severity: sev, Where: where, Message: fmt.Sprintf(format, args...)})
	}

	screenNames := manifest.ScreenNames()
	controlNames := manifest.ControlNames()
	eventNames := manifest.EventNames()
	events := toSet(eventNames)

	// 每个控件上报的事件
	emits := make(map[string]string)
	for _, c := range manifest.Chrome {
		emits[c.Name] = c.Event
	}
	for _, s := range manifest.Screens {
		for _, c := range s.Controls {
			emits[c.Name] = c.Event
		}
	}

	for i, step := range steps {
		where := fmt.Sprintf("steps[%s]", step.ID)

		if step.Screen != "" {
			if _, ok := manifest.Screen(step.Screen); !ok {
				add(SeverityError, where, "unknown screen %q%s", step.Screen, suggest(step.Screen, screenNames))
			}
		}

		if step.TargetControl != "" {
			onScreen := controlNamesOn(manifest, step.Screen)
			if !onScreen[step.TargetControl] {
				add(SeverityError, where, "target control %q is not on screen %q%s",
					step.TargetControl, step.Screen, suggest(step.TargetControl, controlNames))
			} else if ev := emits[step.TargetControl]; step.Action == tutorial.ActionClick &&
				ev != step.CompletionEvent && !step.IgnoresEvent(ev) {
				add(SeverityWarning, where, "target %q emits %q but the step completes on %q",
					step.TargetControl, ev, step.CompletionEvent)
			}
		}

		if step.CompletionEvent != tutorial.EventManualNext && !events[step.CompletionEvent] {
			add(SeverityWarning, where, "no control or timer emits completion event %q%s",
				step.CompletionEvent, suggest(step.CompletionEvent, eventNames))
		}

		for _, ev := range step.IgnoreCompletionOn {
			if !events[ev] {
				add(SeverityWarning, where, "ignored event %q is never emitted%s", ev, suggest(ev, eventNames))
			}
		}

		// 相邻步骤共用完成事件时，重复触发会被当作上一步的重复事件吸收
		if i > 0 && step.CompletionEvent != tutorial.EventManualNext &&
			steps[i-1].CompletionEvent == step.CompletionEvent {
			add(SeverityWarning, where, "shares completion event %q with previous step %q",
				step.CompletionEvent, steps[i-1].ID)
		}
	}

	if gates != nil {
		known := toSet(controlNames)
		check := func(where string, names []string) {
			for _, name := range names {
				if !known[name] {
					add(SeverityError, where, "unknown control %q%s", name, suggest(name, controlNames))
				}
			}
		}
		check("gates.transitionControls", gates.TransitionControls)
		check("gates.alwaysOn", gates.AlwaysOn)
		for confirm, inputs := range gates.Compound {
			check("gates.compound", []string{confirm})
			check(fmt.Sprintf("gates.compound[%s]", confirm), inputs)
		}
		for _, prefix := range gates.GroupPrefixes {
			matched := false
			for _, name := range controlNames {
				if len(name) >= len(prefix) && name[:len(prefix)] == prefix {
					matched = true
					break
				}
			}
			if !matched {
				add(SeverityWarning, "gates.groupPrefixes", "prefix %q matches no control", prefix)
			}
		}
		// 始终可用控件的事件必须声明为被动事件，否则在 click 步骤中使用它们会被算作失误
		passive := toSet(gates.PassiveEvents)
		for _, name := range gates.AlwaysOn {
			if ev := emits[name]; ev != "" && !passive[ev] {
				add(SeverityWarning, "gates.passiveEvents", "always-on control %q emits %q, which counts as a mistake on click steps", name, ev)
			}
		}
		for _, ev := range gates.PassiveEvents {
			if !events[ev] {
				add(SeverityWarning, "gates.passiveEvents", "event %q is never emitted%s", ev, suggest(ev, eventNames))
			}
		}
		for _, c := range manifest.Chrome {
			if c.Kind == ControlNav && !toSet(gates.TransitionControls)[c.Name] {
				add(SeverityWarning, "gates.transitionControls", "nav control %q is not listed as a transition control", c.Name)
			}
		}
	}

	return issues
}

// controlNamesOn 界面上可见的控件名称集合
func controlNamesOn(manifest *ScreenManifest, screen string) map[string]bool {
	set := make(map[string]bool)
	if screen == "" {
		for _, name := range manifest.ControlNames() {
			set[name] = true
		}
		return set
	}
	for _, c := range manifest.ControlsOn(screen) {
		set[c.Name] = true
	}
	return set
}

// suggest 返回最接近的候选名称，格式为 ` (did you mean "x"?)`
// 距离超过名称长度的三分之一（至少 2）时不给建议
func suggest(name string, candidates []string) string {
	best := ""
	bestDist := -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(name, c)
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	limit := len(name) / 3
	if limit < 2 {
		limit = 2
	}
	if best == "" || bestDist > limit || bestDist == 0 {
		return ""
	}
	return fmt.Sprintf(" (did you mean %q?)", best)
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
