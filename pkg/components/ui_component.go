package components

import (
	"github.com/gonewx/clinicdesk/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
)

// UIState represents the current interaction state of a UI element.
type UIState int

const (
	// UINormal indicates the UI element is in its default state.
	UINormal UIState = iota
	// UIHovered indicates the pointer is hovering over the UI element.
	UIHovered
	// UIClicked indicates the UI element is being pressed.
	UIClicked
	// UIDisabled indicates the UI element does not accept input.
	UIDisabled
)

// Panel 布局容器节点
// 界面上的控件都挂在某个 Panel 下，Panel 的平移和缩放会影响控件的世界包围盒
type Panel struct {
	X, Y          float64
	Width, Height float64
	// Scale 内容缩放，0 视为 1
	Scale  float64
	parent utils.Node
}

// NewPanel 创建容器
//
// 参数：
//   - x, y: 相对父节点的位置
//   - w, h: 尺寸（本地坐标）
//   - parent: 父节点，根容器传 nil
func NewPanel(x, y, w, h float64, parent *Panel) *Panel {
	p := &Panel{X: x, Y: y, Width: w, Height: h, Scale: 1}
	if parent != nil {
		p.parent = parent
	}
	return p
}

func (p *Panel) LocalSize() (float64, float64) { return p.Width, p.Height }

func (p *Panel) LocalGeoM() ebiten.GeoM {
	var g ebiten.GeoM
	if p.Scale != 0 && p.Scale != 1 {
		g.Scale(p.Scale, p.Scale)
	}
	g.Translate(p.X, p.Y)
	return g
}

func (p *Panel) ParentNode() utils.Node { return p.parent }

// Button 覆盖层上的简单按钮（“下一步”“知道了”）
// 坐标为屏幕坐标，不参与教学门控
type Button struct {
	X, Y          float64
	Width, Height float64
	Label         string
	State         UIState
}

// Contains 判断屏幕坐标是否落在按钮内
func (b *Button) Contains(x, y float64) bool {
	return x >= b.X && y >= b.Y && x < b.X+b.Width && y < b.Y+b.Height
}

// UpdateHover 根据指针位置更新悬停状态
func (b *Button) UpdateHover(x, y float64) {
	if b.State == UIDisabled {
		return
	}
	if b.Contains(x, y) {
		b.State = UIHovered
	} else {
		b.State = UINormal
	}
}
