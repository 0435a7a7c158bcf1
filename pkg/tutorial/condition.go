package tutorial

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Condition 已编译的步骤条件（SkipWhen）
//
// 表达式环境：
//   - flags: 宿主设置的布尔标记（Engine.SetFlag），如 flags.insuranceReported
//   - completed: 已完成步骤 ID 集合，如 completed["pay_confirm"]
//
// 未设置的标记读取为 false。
type Condition struct {
	source  string
	program *vm.Program
}

// conditionEnv 构造表达式求值环境
func conditionEnv(flags, completed map[string]bool) map[string]any {
	if flags == nil {
		flags = map[string]bool{}
	}
	if completed == nil {
		completed = map[string]bool{}
	}
	return map[string]any{
		"flags":     flags,
		"completed": completed,
	}
}

// CompileCondition 编译条件表达式
// 空表达式返回 nil（永不满足）
func CompileCondition(source string) (*Condition, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, nil
	}
	program, err := expr.Compile(source, expr.Env(conditionEnv(nil, nil)), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile condition %q: %w", source, err)
	}
	return &Condition{source: source, program: program}, nil
}

// Eval 求值；nil 条件视为 false
func (c *Condition) Eval(flags, completed map[string]bool) (bool, error) {
	if c == nil {
		return false, nil
	}
	output, err := expr.Run(c.program, conditionEnv(flags, completed))
	if err != nil {
		return false, fmt.Errorf("eval condition %q: %w", c.source, err)
	}
	result, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("condition %q did not return bool (got %T)", c.source, output)
	}
	return result, nil
}

// String 返回源表达式
func (c *Condition) String() string {
	if c == nil {
		return ""
	}
	return c.source
}
