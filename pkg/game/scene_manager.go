package game

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

// SceneFactory 场景工厂函数类型
// 按名称创建界面场景，避免 game 包依赖具体场景实现
type SceneFactory func(name string) Scene

// SceneManager 管理当前活动的场景
// 同一时刻只有一个场景的 Update 和 Draw 被调用。
//
// 通过 Request 发起的切换延迟到下一次 Update 开头执行，
// 因此场景可以在自己的 Update 中安全地请求切换。
type SceneManager struct {
	currentScene Scene
	currentName  string
	sceneFactory SceneFactory

	pendingName string
	hasPending  bool
}

// NewSceneManager creates a manager with no active scene.
func NewSceneManager() *SceneManager {
	return &SceneManager{}
}

// SetSceneFactory 设置场景工厂函数
func (sm *SceneManager) SetSceneFactory(factory SceneFactory) {
	sm.sceneFactory = factory
}

// SwitchTo 立即切换到给定场景
//
// 参数：
//   - name: 场景名称（日志和 CurrentName 使用）
//   - scene: 新场景，nil 表示清空
func (sm *SceneManager) SwitchTo(name string, scene Scene) {
	if leaving, ok := sm.currentScene.(Leavable); ok {
		leaving.OnLeave()
	}
	sm.currentScene = scene
	sm.currentName = name
	if entering, ok := scene.(Enterable); ok {
		entering.OnEnter()
	}
	log.Printf("[SceneManager] Switched to %q", name)
}

// Request 请求在下一帧切换到指定名称的场景
// 同一帧内多次请求只保留最后一次
func (sm *SceneManager) Request(name string) {
	sm.pendingName = name
	sm.hasPending = true
}

// Load 立即用工厂函数创建并切换到指定场景
//
// 返回：
//   - bool: 工厂未设置或无法创建场景时返回 false，当前场景保持不变
func (sm *SceneManager) Load(name string) bool {
	if sm.sceneFactory == nil {
		log.Printf("[SceneManager] Error: SceneFactory not set")
		return false
	}
	scene := sm.sceneFactory(name)
	if scene == nil {
		log.Printf("[SceneManager] Error: cannot create scene %q", name)
		return false
	}
	sm.SwitchTo(name, scene)
	return true
}

// GetCurrentScene 返回当前活动的场景，没有时返回 nil
func (sm *SceneManager) GetCurrentScene() Scene {
	return sm.currentScene
}

// CurrentName 当前场景名称
func (sm *SceneManager) CurrentName() string {
	return sm.currentName
}

// Update 先执行挂起的切换，再更新当前场景
func (sm *SceneManager) Update(deltaTime float64) {
	if sm.hasPending {
		name := sm.pendingName
		sm.hasPending = false
		sm.pendingName = ""
		sm.Load(name)
	}
	if sm.currentScene != nil {
		sm.currentScene.Update(deltaTime)
	}
}

// Draw renders the currently active scene.
func (sm *SceneManager) Draw(screen *ebiten.Image) {
	if sm.currentScene != nil {
		sm.currentScene.Draw(screen)
	}
}
