package game

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Scene 前台的一个界面（挂号处、检查室、结束页等）
type Scene interface {
	// Update 推进界面逻辑，deltaTime 单位为秒
	Update(deltaTime float64)
	Draw(screen *ebiten.Image)
}

// Enterable 可选接口：场景成为当前场景时调用
type Enterable interface {
	OnEnter()
}

// Leavable 可选接口：场景被替换前调用
//
// 场景在这里注销自己注册的控件并把自己标记为失效，
// 之后任何保留的引用都不应再被当作存活界面使用。
type Leavable interface {
	OnLeave()
}
