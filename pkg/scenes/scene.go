package scenes

import (
	"github.com/gonewx/clinicdesk/pkg/config"
	"github.com/gonewx/clinicdesk/pkg/game"
	"github.com/gonewx/clinicdesk/pkg/tutorial"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// Scene is a type alias for game.Scene.
type Scene = game.Scene

// Clickable 接收点击的场景（点击由宿主统一识别后分发）
type Clickable interface {
	// HandleClick 返回点击是否落在场景的某个元素上
	HandleClick(x, y float64) bool
}

// Hoverable 需要悬停效果的场景
type Hoverable interface {
	UpdateHover(x, y float64)
}

// OutcomeSceneName 教学结束界面的场景名（不在界面清单中）
const OutcomeSceneName = "__outcome__"

// DeskContext 所有前台界面共享的依赖
type DeskContext struct {
	Engine   *tutorial.Engine
	Manifest *config.ScreenManifest
	Scenes   *game.SceneManager
	Strings  *game.ClinicStrings
	Settings *game.SettingsManager
	Face     text.Face

	// OnRestart 结束界面点击“重新开始”时调用
	OnRestart func()
}

// str 取文本，文本表缺失时使用 fallback
func (c *DeskContext) str(key, fallback string) string {
	if c.Strings == nil {
		return fallback
	}
	if s, ok := c.Strings.Lookup(key); ok {
		return s
	}
	return fallback
}
