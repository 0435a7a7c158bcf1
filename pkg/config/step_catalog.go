package config

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/gonewx/clinicdesk/pkg/tutorial"
)

// DefaultStepsPath 步骤目录默认路径
const DefaultStepsPath = "data/tutorial/steps.yaml"

// ErrMissingMessageKey 文本键在字符串表中不存在
var ErrMissingMessageKey = errors.New("message key not found")

// StepCatalogConfig 步骤目录文件（data/tutorial/steps.yaml）
type StepCatalogConfig struct {
	// Version 文件格式版本，目前只有 1
	Version int `yaml:"version" json:"version,omitempty" jsonschema:"enum=1"`

	// DefaultSpeaker 反馈面板的默认说话人
	DefaultSpeaker string `yaml:"defaultSpeaker" json:"defaultSpeaker,omitempty"`

	// Messages 失误升级的通用文本，缺省使用内置文本
	Messages tutorial.EscalationMessages `yaml:"messages" json:"messages,omitempty"`

	Steps []tutorial.StepDescriptor `yaml:"steps" json:"steps" jsonschema:"minItems=1"`
}

// MessageSource 文本键查询（由 game.ClinicStrings 实现）
type MessageSource interface {
	Lookup(key string) (string, bool)
}

// LoadStepCatalog 从 YAML 文件加载步骤目录
//
// 参数：
//   - path: 文件路径（"data/" 开头时优先读取嵌入资源）
//
// 返回：
//   - *StepCatalogConfig: 已应用默认值的配置
//   - error: 读取、结构校验或解析失败
func LoadStepCatalog(path string) (*StepCatalogConfig, error) {
	data, err := readDataFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read step catalog %s: %w", path, err)
	}
	cfg, err := ParseStepCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("invalid step catalog %s: %w", path, err)
	}
	return cfg, nil
}

// ParseStepCatalog 解析步骤目录
// 先做 JSON Schema 结构校验，再严格解码（拒绝未知字段），最后应用默认值
func ParseStepCatalog(data []byte) (*StepCatalogConfig, error) {
	if err := ValidateStepCatalogDocument(data); err != nil {
		return nil, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg StepCatalogConfig
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse step catalog YAML: %w", err)
	}

	applyStepDefaults(&cfg)
	return &cfg, nil
}

// applyStepDefaults 为缺省字段设置默认值
func applyStepDefaults(cfg *StepCatalogConfig) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	for i := range cfg.Steps {
		step := &cfg.Steps[i]
		// info 步骤默认由“下一步”推进
		if step.Action == tutorial.ActionInfo && step.CompletionEvent == "" {
			step.CompletionEvent = tutorial.EventManualNext
		}
		if step.MessagePosition == "" {
			step.MessagePosition = tutorial.MessageAuto
		}
	}
}

// ResolveMessages 用字符串表解析 MessageKey
// 已直接填写 Message 的步骤保持不变
//
// 参数：
//   - source: 文本键查询
//
// 返回：
//   - error: 任一键不存在时返回（包装 ErrMissingMessageKey）
func (c *StepCatalogConfig) ResolveMessages(source MessageSource) error {
	for i := range c.Steps {
		step := &c.Steps[i]
		if step.MessageKey == "" || step.Message != "" {
			continue
		}
		if source == nil {
			return fmt.Errorf("step %q: %w: %s (no string table)", step.ID, ErrMissingMessageKey, step.MessageKey)
		}
		text, ok := source.Lookup(step.MessageKey)
		if !ok {
			return fmt.Errorf("step %q: %w: %s", step.ID, ErrMissingMessageKey, step.MessageKey)
		}
		step.Message = text
	}
	return nil
}

// Build 构建不可变的步骤目录
func (c *StepCatalogConfig) Build() (*tutorial.Catalog, error) {
	catalog, err := tutorial.NewCatalog(c.Steps)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	return catalog, nil
}

// StepIDs 按顺序返回步骤 ID
func (c *StepCatalogConfig) StepIDs() []string {
	ids := make([]string, len(c.Steps))
	for i, s := range c.Steps {
		ids[i] = s.ID
	}
	return ids
}
