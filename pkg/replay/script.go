// Package replay 用脚本驱动教学引擎，供设计人员在没有图形界面时检查步骤流程
//
// 脚本是一组按顺序执行的入站调用（界面就绪、上报事件、“下一步”、确认反馈等），
// 与真实界面调用引擎的方式完全相同。
package replay

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Call 一次入站调用，每项只能设置一种动作
type Call struct {
	// Ready 通知界面就绪
	Ready string `yaml:"ready,omitempty"`
	// Closed 通知界面关闭
	Closed string `yaml:"closed,omitempty"`
	// Event 上报事件，ErrorCount 作为附带数据
	Event      string `yaml:"event,omitempty"`
	ErrorCount int    `yaml:"errorCount,omitempty"`
	// Next 点击“下一步”
	Next bool `yaml:"next,omitempty"`
	// AckFeedback 确认当前显示的反馈面板
	AckFeedback bool `yaml:"ackFeedback,omitempty"`
	// Pause / Resume 界面级弹窗打开和关闭
	Pause  bool `yaml:"pause,omitempty"`
	Resume bool `yaml:"resume,omitempty"`
	// Skip 跳过引导
	Skip bool `yaml:"skip,omitempty"`
	// Seek 相对跳转，SeekTo 按步骤 ID 跳转
	Seek   int    `yaml:"seek,omitempty"`
	SeekTo string `yaml:"seekTo,omitempty"`
	// ForceComplete 直接视为正常完成
	ForceComplete bool `yaml:"forceComplete,omitempty"`
	// Register 注册一个脚本控件，Unregister 按名称注销
	Register   *ControlDecl `yaml:"register,omitempty"`
	Unregister string       `yaml:"unregister,omitempty"`
}

// ControlDecl 脚本中声明的控件，位置用于计算指示箭头的包围盒
type ControlDecl struct {
	Name   string  `yaml:"name"`
	Screen string  `yaml:"screen"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	W      float64 `yaml:"w"`
	H      float64 `yaml:"h"`
}

// Script 回放脚本
type Script struct {
	// Start 起始步骤索引
	Start int `yaml:"start"`
	// Flags 开始前设置为 true 的宿主标记
	Flags []string `yaml:"flags,omitempty"`
	Calls []Call   `yaml:"calls"`
}

// Kind 返回调用的动作名；没有或有多个动作时返回错误
func (c Call) Kind() (string, error) {
	var kinds []string
	if c.Ready != "" {
		kinds = append(kinds, "ready")
	}
	if c.Closed != "" {
		kinds = append(kinds, "closed")
	}
	if c.Event != "" {
		kinds = append(kinds, "event")
	}
	if c.Next {
		kinds = append(kinds, "next")
	}
	if c.AckFeedback {
		kinds = append(kinds, "ackFeedback")
	}
	if c.Pause {
		kinds = append(kinds, "pause")
	}
	if c.Resume {
		kinds = append(kinds, "resume")
	}
	if c.Skip {
		kinds = append(kinds, "skip")
	}
	if c.Seek != 0 {
		kinds = append(kinds, "seek")
	}
	if c.SeekTo != "" {
		kinds = append(kinds, "seekTo")
	}
	if c.ForceComplete {
		kinds = append(kinds, "forceComplete")
	}
	if c.Register != nil {
		kinds = append(kinds, "register")
	}
	if c.Unregister != "" {
		kinds = append(kinds, "unregister")
	}

	switch len(kinds) {
	case 0:
		return "", fmt.Errorf("no action")
	case 1:
		if c.ErrorCount != 0 && kinds[0] != "event" {
			return "", fmt.Errorf("errorCount is only valid with event")
		}
		return kinds[0], nil
	default:
		return "", fmt.Errorf("multiple actions %v", kinds)
	}
}

// Parse 解析并校验脚本
func Parse(data []byte) (*Script, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse replay script: %w", err)
	}
	if s.Start < 0 {
		return nil, fmt.Errorf("start must not be negative, got %d", s.Start)
	}
	for i, c := range s.Calls {
		if _, err := c.Kind(); err != nil {
			return nil, fmt.Errorf("call %d: %w", i, err)
		}
		if c.ErrorCount < 0 {
			return nil, fmt.Errorf("call %d: errorCount must not be negative", i)
		}
		if r := c.Register; r != nil {
			if r.Name == "" || r.Screen == "" {
				return nil, fmt.Errorf("call %d: register needs name and screen", i)
			}
			if r.W <= 0 || r.H <= 0 {
				return nil, fmt.Errorf("call %d: register %q needs a positive size", i, r.Name)
			}
		}
	}
	return &s, nil
}

// Load 从文件加载脚本
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read replay script %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
