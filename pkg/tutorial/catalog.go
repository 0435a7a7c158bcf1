package tutorial

import (
	"errors"
	"fmt"
)

// ErrEmptyCatalog 步骤列表为空
var ErrEmptyCatalog = errors.New("tutorial catalog has no steps")

// ErrUnknownStep 找不到指定 ID 的步骤
var ErrUnknownStep = errors.New("unknown tutorial step")

// Catalog 只读的有序步骤列表
// 创建后不再修改；At 返回副本，调用方无法改动内部数据
type Catalog struct {
	steps      []StepDescriptor
	index      map[string]int
	conditions []*Condition
}

// NewCatalog 校验并构建步骤目录
//
// 校验规则：
//   - ID 非空且唯一
//   - Action 合法
//   - CompletionEvent 非空
//   - click 步骤必须有 TargetControl
//   - SkipWhen 能够编译
//
// 参数：
//   - steps: 按顺序排列的步骤
//
// 返回：
//   - *Catalog: 目录
//   - error: 校验失败
func NewCatalog(steps []StepDescriptor) (*Catalog, error) {
	if len(steps) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		steps:      make([]StepDescriptor, len(steps)),
		index:      make(map[string]int, len(steps)),
		conditions: make([]*Condition, len(steps)),
	}

	for i, step := range steps {
		if step.ID == "" {
			return nil, fmt.Errorf("step %d: id is required", i)
		}
		if _, dup := c.index[step.ID]; dup {
			return nil, fmt.Errorf("step %d: duplicate id %q", i, step.ID)
		}
		if !step.Action.Valid() {
			return nil, fmt.Errorf("step %q: action must be one of info, click, wait, got %q", step.ID, step.Action)
		}
		if step.CompletionEvent == "" {
			return nil, fmt.Errorf("step %q: completionEvent is required", step.ID)
		}
		if step.Action == ActionClick && step.TargetControl == "" {
			return nil, fmt.Errorf("step %q: click step requires targetControl", step.ID)
		}
		if step.MessagePosition == "" {
			step.MessagePosition = MessageAuto
		}

		cond, err := CompileCondition(step.SkipWhen)
		if err != nil {
			return nil, fmt.Errorf("step %q: %w", step.ID, err)
		}

		// IgnoreCompletionOn 复制一份，避免与调用方共享底层数组
		if step.IgnoreCompletionOn != nil {
			step.IgnoreCompletionOn = append([]string(nil), step.IgnoreCompletionOn...)
		}

		c.steps[i] = step
		c.index[step.ID] = i
		c.conditions[i] = cond
	}

	return c, nil
}

// Len 步骤数量
func (c *Catalog) Len() int {
	return len(c.steps)
}

// At 返回第 i 个步骤的副本
func (c *Catalog) At(i int) (StepDescriptor, bool) {
	if i < 0 || i >= len(c.steps) {
		return StepDescriptor{}, false
	}
	return c.steps[i], true
}

// IndexOf 按 ID 查找步骤索引
func (c *Catalog) IndexOf(id string) (int, error) {
	i, ok := c.index[id]
	if !ok {
		return -1, fmt.Errorf("%w: %q", ErrUnknownStep, id)
	}
	return i, nil
}

// Steps 返回全部步骤的副本
func (c *Catalog) Steps() []StepDescriptor {
	out := make([]StepDescriptor, len(c.steps))
	copy(out, c.steps)
	return out
}

// condition 返回第 i 个步骤的 SkipWhen 条件
func (c *Catalog) condition(i int) *Condition {
	if i < 0 || i >= len(c.conditions) {
		return nil
	}
	return c.conditions[i]
}

// PhaseCount 返回最大阶段号（进度显示用）
func (c *Catalog) PhaseCount() int {
	max := 0
	for _, s := range c.steps {
		if s.Phase > max {
			max = s.Phase
		}
	}
	return max
}
