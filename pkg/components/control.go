package components

import (
	"github.com/gonewx/clinicdesk/pkg/config"
	"github.com/gonewx/clinicdesk/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
)

// Control 业务界面上的一个交互控件
//
// 实现 tutorial.Control：教学引擎通过 SetInputEnabled 开关输入，
// 通过 utils.WorldBounds 计算箭头位置。控件归所属界面管理。
type Control struct {
	Name  string
	Label string
	Kind  config.ControlKind
	Event string
	// Target 导航控件的目标界面
	Target string
	// Payload 点击时附带的数据类型（config.PayloadFormErrors 或空）
	Payload string

	X, Y, W, H float64
	State      UIState

	// Filled 输入框是否已填写；Selected 选项是否已选中
	Filled   bool
	Selected bool

	enabled bool
	parent  utils.Node
}

// NewControl 按清单描述创建控件，初始为可用状态
func NewControl(spec config.ControlSpec, parent *Panel) *Control {
	c := &Control{
		Name:    spec.Name,
		Label:   spec.Label,
		Kind:    spec.Kind,
		Event:   spec.Event,
		Target:  spec.Target,
		Payload: spec.Payload,
		X:       spec.X,
		Y:       spec.Y,
		W:       spec.W,
		H:       spec.H,
		enabled: true,
	}
	if parent != nil {
		c.parent = parent
	}
	return c
}

func (c *Control) LocalSize() (float64, float64) { return c.W, c.H }

func (c *Control) LocalGeoM() ebiten.GeoM {
	var g ebiten.GeoM
	g.Translate(c.X, c.Y)
	return g
}

func (c *Control) ParentNode() utils.Node { return c.parent }

// SetInputEnabled 启用/禁用输入
func (c *Control) SetInputEnabled(enabled bool) {
	c.enabled = enabled
	if !enabled {
		c.State = UIDisabled
	} else if c.State == UIDisabled {
		c.State = UINormal
	}
}

// InputEnabled 当前是否接受输入
func (c *Control) InputEnabled() bool {
	return c.enabled
}

// HitTest 判断屏幕坐标是否落在控件上（不考虑启用状态）
func (c *Control) HitTest(x, y float64) bool {
	return utils.PointInNode(c, x, y)
}

// UpdateHover 根据指针位置更新悬停状态，禁用的控件保持禁用外观
func (c *Control) UpdateHover(x, y float64) {
	if !c.enabled {
		return
	}
	if c.HitTest(x, y) {
		c.State = UIHovered
	} else {
		c.State = UINormal
	}
}

// Activate 处理一次点击，返回应上报的事件
//
// 禁用的控件不产生事件。输入框点击后视为已填写，选项点击后视为已选中。
func (c *Control) Activate() (string, bool) {
	if !c.enabled {
		return "", false
	}
	switch c.Kind {
	case config.ControlInput:
		c.Filled = true
	case config.ControlOption:
		c.Selected = true
	}
	return c.Event, true
}
