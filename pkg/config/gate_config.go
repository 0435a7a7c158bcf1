package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/gonewx/clinicdesk/pkg/tutorial"
)

// DefaultGatesPath 门控配置默认路径
const DefaultGatesPath = "data/tutorial/gates.yaml"

// LoadGateConfig 从 YAML 文件加载门控例外规则
//
// 参数：
//   - path: 文件路径
//
// 返回：
//   - *tutorial.GateConfig: 门控配置
//   - error: 读取、解析或校验失败
func LoadGateConfig(path string) (*tutorial.GateConfig, error) {
	data, err := readDataFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read gate config %s: %w", path, err)
	}

	var cfg tutorial.GateConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse gate config YAML from %s: %w", path, err)
	}

	if err := validateGateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid gate config in %s: %w", path, err)
	}
	return &cfg, nil
}

// validateGateConfig 检查门控配置的内部一致性
func validateGateConfig(cfg *tutorial.GateConfig) error {
	transitions := make(map[string]bool, len(cfg.TransitionControls))
	for _, name := range cfg.TransitionControls {
		if name == "" {
			return fmt.Errorf("transitionControls: empty control name")
		}
		if transitions[name] {
			return fmt.Errorf("transitionControls: duplicate control %q", name)
		}
		transitions[name] = true
	}

	// 始终可用的控件不能是界面切换控件，否则过渡隔离规则形同虚设
	for _, name := range cfg.AlwaysOn {
		if name == "" {
			return fmt.Errorf("alwaysOn: empty control name")
		}
		if transitions[name] {
			return fmt.Errorf("alwaysOn: %q is also a transition control", name)
		}
	}

	for _, prefix := range cfg.GroupPrefixes {
		if prefix == "" {
			return fmt.Errorf("groupPrefixes: empty prefix")
		}
	}

	for _, ev := range cfg.PassiveEvents {
		if ev == "" {
			return fmt.Errorf("passiveEvents: empty event name")
		}
	}

	for confirm, inputs := range cfg.Compound {
		if confirm == "" {
			return fmt.Errorf("compound: empty confirm control name")
		}
		if len(inputs) == 0 {
			return fmt.Errorf("compound %q: at least one input is required", confirm)
		}
		for _, input := range inputs {
			if transitions[input] {
				return fmt.Errorf("compound %q: input %q is a transition control", confirm, input)
			}
		}
	}
	return nil
}
