package config

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultScreensPath 界面清单默认路径
const DefaultScreensPath = "data/tutorial/screens.yaml"

// ControlKind 控件类型
type ControlKind string

const (
	ControlButton ControlKind = "button"
	ControlInput  ControlKind = "input"
	ControlOption ControlKind = "option"
	ControlNav    ControlKind = "nav"
)

// PayloadFormErrors 上报事件时附带本界面未填写输入框的数量
const PayloadFormErrors = "formErrors"

// ControlSpec 单个控件
type ControlSpec struct {
	Name  string      `yaml:"name"`
	Kind  ControlKind `yaml:"kind"`
	Label string      `yaml:"label"`
	X     float64     `yaml:"x"`
	Y     float64     `yaml:"y"`
	W     float64     `yaml:"w"`
	H     float64     `yaml:"h"`
	// Event 点击时上报的事件
	Event string `yaml:"event"`
	// Target nav 控件切换到的界面
	Target string `yaml:"target"`
	// Payload 事件附带数据的计算方式，目前只支持 formErrors
	Payload string `yaml:"payload"`
}

// TimedEvent 延迟事件：界面收到 On 事件后经过 After 秒上报 Event
type TimedEvent struct {
	On    string  `yaml:"on"`
	After float64 `yaml:"after"`
	Event string  `yaml:"event"`
}

// ScreenSpec 单个业务界面
type ScreenSpec struct {
	Name     string        `yaml:"name"`
	Title    string        `yaml:"title"`
	Controls []ControlSpec `yaml:"controls"`
	Timers   []TimedEvent  `yaml:"timers"`
}

// WindowSpec 窗口设置
type WindowSpec struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

// ScreenManifest 演示前台的界面清单（data/tutorial/screens.yaml）
type ScreenManifest struct {
	Window  WindowSpec    `yaml:"window"`
	Start   string        `yaml:"start"`
	Chrome  []ControlSpec `yaml:"chrome"`
	Screens []ScreenSpec  `yaml:"screens"`
}

// LoadScreenManifest 加载界面清单
//
// 参数：
//   - path: 文件路径
//
// 返回：
//   - *ScreenManifest: 已应用默认值并通过校验的清单
//   - error: 读取、解析或校验失败
func LoadScreenManifest(path string) (*ScreenManifest, error) {
	data, err := readDataFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read screen manifest %s: %w", path, err)
	}

	var m ScreenManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse screen manifest YAML from %s: %w", path, err)
	}

	applyManifestDefaults(&m)

	if err := validateScreenManifest(&m); err != nil {
		return nil, fmt.Errorf("invalid screen manifest in %s: %w", path, err)
	}
	return &m, nil
}

func applyManifestDefaults(m *ScreenManifest) {
	if m.Window.Width == 0 {
		m.Window.Width = 960
	}
	if m.Window.Height == 0 {
		m.Window.Height = 640
	}
	if m.Start == "" && len(m.Screens) > 0 {
		m.Start = m.Screens[0].Name
	}
	for i := range m.Chrome {
		defaultControl(&m.Chrome[i])
	}
	for i := range m.Screens {
		for j := range m.Screens[i].Controls {
			defaultControl(&m.Screens[i].Controls[j])
		}
	}
}

func defaultControl(c *ControlSpec) {
	if c.Kind == "" {
		c.Kind = ControlButton
	}
	if c.Label == "" {
		c.Label = c.Name
	}
}

func validateScreenManifest(m *ScreenManifest) error {
	if len(m.Screens) == 0 {
		return fmt.Errorf("at least one screen is required")
	}

	screens := make(map[string]bool, len(m.Screens))
	for _, s := range m.Screens {
		if s.Name == "" {
			return fmt.Errorf("screen name is required")
		}
		if screens[s.Name] {
			return fmt.Errorf("duplicate screen %q", s.Name)
		}
		screens[s.Name] = true
	}
	if !screens[m.Start] {
		return fmt.Errorf("start screen %q is not defined", m.Start)
	}

	chrome := make(map[string]bool, len(m.Chrome))
	for _, c := range m.Chrome {
		if err := validateControl(c, screens); err != nil {
			return fmt.Errorf("chrome: %w", err)
		}
		if chrome[c.Name] {
			return fmt.Errorf("chrome: duplicate control %q", c.Name)
		}
		chrome[c.Name] = true
	}

	for _, s := range m.Screens {
		seen := make(map[string]bool, len(s.Controls))
		for _, c := range s.Controls {
			if err := validateControl(c, screens); err != nil {
				return fmt.Errorf("screen %s: %w", s.Name, err)
			}
			if seen[c.Name] || chrome[c.Name] {
				return fmt.Errorf("screen %s: duplicate control %q", s.Name, c.Name)
			}
			seen[c.Name] = true
		}
		for i, t := range s.Timers {
			if t.On == "" || t.Event == "" {
				return fmt.Errorf("screen %s: timer %d requires on and event", s.Name, i)
			}
			if t.After < 0 {
				return fmt.Errorf("screen %s: timer %d has negative delay %.2f", s.Name, i, t.After)
			}
		}
	}
	return nil
}

func validateControl(c ControlSpec, screens map[string]bool) error {
	if c.Name == "" {
		return fmt.Errorf("control name is required")
	}
	switch c.Kind {
	case ControlButton, ControlInput, ControlOption, ControlNav:
	default:
		return fmt.Errorf("control %q: unknown kind %q", c.Name, c.Kind)
	}
	if c.W <= 0 || c.H <= 0 {
		return fmt.Errorf("control %q: size must be positive, got %.0fx%.0f", c.Name, c.W, c.H)
	}
	if c.Event == "" {
		return fmt.Errorf("control %q: event is required", c.Name)
	}
	if c.Kind == ControlNav && !screens[c.Target] {
		return fmt.Errorf("control %q: nav target %q is not a screen", c.Name, c.Target)
	}
	if c.Payload != "" && c.Payload != PayloadFormErrors {
		return fmt.Errorf("control %q: unknown payload %q", c.Name, c.Payload)
	}
	return nil
}

// Screen 按名称查找界面
func (m *ScreenManifest) Screen(name string) (ScreenSpec, bool) {
	for _, s := range m.Screens {
		if s.Name == name {
			return s, true
		}
	}
	return ScreenSpec{}, false
}

// ScreenNames 所有界面名称（按清单顺序）
func (m *ScreenManifest) ScreenNames() []string {
	names := make([]string, len(m.Screens))
	for i, s := range m.Screens {
		names[i] = s.Name
	}
	return names
}

// ControlsOn 界面上可见的全部控件（公共控件在前）
func (m *ScreenManifest) ControlsOn(screen string) []ControlSpec {
	s, ok := m.Screen(screen)
	if !ok {
		return nil
	}
	out := make([]ControlSpec, 0, len(m.Chrome)+len(s.Controls))
	out = append(out, m.Chrome...)
	out = append(out, s.Controls...)
	return out
}

// ControlNames 所有控件名称（去重、排序）
func (m *ScreenManifest) ControlNames() []string {
	set := make(map[string]bool)
	for _, c := range m.Chrome {
		set[c.Name] = true
	}
	for _, s := range m.Screens {
		for _, c := range s.Controls {
			set[c.Name] = true
		}
	}
	return sortedKeys(set)
}

// EventNames 所有可能上报的事件（控件与延迟事件，去重、排序）
func (m *ScreenManifest) EventNames() []string {
	set := make(map[string]bool)
	for _, c := range m.Chrome {
		set[c.Event] = true
	}
	for _, s := range m.Screens {
		for _, c := range s.Controls {
			set[c.Event] = true
		}
		for _, t := range s.Timers {
			set[t.Event] = true
		}
	}
	return sortedKeys(set)
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
