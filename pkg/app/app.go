// Package app 提供前台演示程序的核心包装器
//
// 该包将初始化逻辑从 main 包提取出来，使其可以被桌面端和移动端共用。
// 桌面端通过 main.go 调用 NewApp()，移动端通过 mobile/mobile.go 调用。
package app

import (
	"fmt"
	"image/color"
	"io"
	"log"

	"github.com/gonewx/clinicdesk/pkg/config"
	"github.com/gonewx/clinicdesk/pkg/game"
	"github.com/gonewx/clinicdesk/pkg/modules"
	"github.com/gonewx/clinicdesk/pkg/scenes"
	"github.com/gonewx/clinicdesk/pkg/tutorial"
	"github.com/gonewx/clinicdesk/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/quasilyte/gdata/v2"
)

// AppName gdata 存档目录名
const AppName = "clinicdesk"

// fontSize 界面字体大小（仅对 TTF/OTF 字体生效）
const fontSize = 16

// App 前台演示程序，实现 ebiten.Game 接口
type App struct {
	cfg  config.AppConfig
	data *DeskData

	sceneManager *game.SceneManager
	engine       *tutorial.Engine
	overlay      *modules.TutorialOverlayModule
	settings     *game.SettingsManager
	progress     *game.ProgressStore
	tap          utils.TapDetector

	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建并初始化应用
//
// 调用此函数前，必须先调用 embedded.Init() 初始化嵌入数据。
func NewApp(cfg config.AppConfig) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	data, err := LoadDeskData(cfg.Data)
	if err != nil {
		return nil, err
	}
	startIndex, err := data.StartIndex(cfg.Tutorial.StartStep)
	if err != nil {
		return nil, fmt.Errorf("起始步骤无效: %w", err)
	}

	// 存档不可用时降级为仅内存
	var store *gdata.Manager
	if err := utils.EnsureStorageDir(); err != nil {
		log.Printf("[App] Warning: storage dir unavailable: %v", err)
	} else if path := utils.GetStoragePath(); path != "" {
		log.Printf("[App] Storage path: %s", path)
	}
	store, err = gdata.Open(gdata.Config{AppName: AppName})
	if err != nil {
		log.Printf("[App] Warning: gdata unavailable, progress will not persist: %v", err)
		store = nil
	}
	settings := game.NewSettingsManager(store)
	progress := game.NewProgressStore(store)

	face := loadFace(cfg.FontPath)

	a := &App{
		cfg:          cfg,
		data:         data,
		sceneManager: game.NewSceneManager(),
		settings:     settings,
		progress:     progress,
		tap:          utils.TapDetector{Slop: tapSlop(utils.IsMobile())},
	}

	w, h := data.Manifest.Window.Width, data.Manifest.Window.Height
	a.overlay = modules.NewTutorialOverlayModule(face, w, h, settings, modules.OverlayCallbacks{
		OnNext:        func(stepID string) { a.engine.AcknowledgeStep(stepID) },
		OnAcknowledge: func(token tutorial.FeedbackToken) { a.engine.AcknowledgeFeedback(token) },
	})

	a.engine = tutorial.NewEngine(data.Catalog, tutorial.Options{
		Gates:          *data.Gates,
		Presenter:      a.overlay,
		Store:          progress,
		OnExit:         a.onTutorialExit,
		Messages:       data.Steps.Messages,
		DefaultSpeaker: data.Steps.DefaultSpeaker,
	})
	for _, flag := range cfg.Tutorial.Flags {
		a.engine.SetFlag(flag, true)
	}

	ctx := &scenes.DeskContext{
		Engine:    a.engine,
		Manifest:  data.Manifest,
		Scenes:    a.sceneManager,
		Strings:   data.Strings,
		Settings:  settings,
		Face:      face,
		OnRestart: func() { a.restartTutorial(0) },
	}
	a.sceneManager.SetSceneFactory(func(name string) game.Scene {
		if name == scenes.OutcomeSceneName {
			return scenes.NewOutcomeScene(ctx)
		}
		if s := scenes.NewDeskScene(ctx, name); s != nil {
			return s
		}
		return nil
	})

	// 先开始教学再构建首个界面：控件注册时立即应用门控
	if cfg.Tutorial.AutoStart {
		if progress.IsTutorialCompleted() && !cfg.Tutorial.Force {
			log.Printf("[App] Tutorial already completed, not starting (use --force to replay)")
		} else if err := a.engine.Start(startIndex); err != nil {
			return nil, fmt.Errorf("引导启动失败: %w", err)
		}
	}
	if !a.sceneManager.Load(data.Manifest.Start) {
		return nil, fmt.Errorf("无法创建起始界面 %q", data.Manifest.Start)
	}

	if settings.GetSettings().Fullscreen {
		ebiten.SetFullscreen(true)
	}
	return a, nil
}

// loadFace 加载配置的字体，失败时使用内置位图字体
func loadFace(path string) text.Face {
	if path != "" {
		face, err := utils.LoadFace(path, fontSize)
		if err == nil {
			return face
		}
		log.Printf("[App] Warning: font %s unavailable, using fallback: %v", path, err)
	}
	return utils.FallbackFace()
}

// onTutorialExit 引导结束后切换到结束界面（下一帧执行）
func (a *App) onTutorialExit(outcome tutorial.Outcome) {
	log.Printf("[App] Tutorial exited: %s", outcome)
	a.sceneManager.Request(scenes.OutcomeSceneName)
}

// restartTutorial 重新开始引导并回到对应步骤的界面
func (a *App) restartTutorial(index int) {
	if a.engine.IsActive() {
		return
	}
	screen := a.data.Manifest.Start
	if step, ok := a.data.Catalog.At(index); ok && step.Screen != "" {
		screen = step.Screen
	}
	// 引擎先激活，界面在下一帧构建时注册的控件就会按当前步骤门控
	if err := a.engine.Start(index); err != nil {
		log.Printf("[App] Restart failed: %v", err)
		return
	}
	a.sceneManager.Request(screen)
}

// Update 更新逻辑，每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(a.data.Manifest.Window.Width, a.data.Manifest.Window.Height)
			a.pendingWindowSizeReset = false
		}
	}

	a.handleKeys()

	deltaTime := 1.0 / 60.0
	pressed, x, y := utils.GetPointerState()
	a.overlay.Update(deltaTime, x, y)

	current := a.sceneManager.GetCurrentScene()
	// 触屏没有悬停，手指按下时的位置不应点亮按钮
	if h, ok := current.(scenes.Hoverable); ok && !a.overlay.BlocksInput() && !utils.IsMobile() {
		h.UpdateHover(float64(x), float64(y))
	}

	if tap, tx, ty := a.tap.Feed(pressed, x, y); tap {
		a.dispatchTap(float64(tx), float64(ty))
	}

	a.sceneManager.Update(deltaTime)
	return nil
}

// tapSlop 触屏手指抖动比鼠标大，放宽点击位移阈值
func tapSlop(mobile bool) int {
	if mobile {
		return 2 * utils.DefaultTapSlop
	}
	return utils.DefaultTapSlop
}

// dispatchTap 覆盖层优先处理点击，未消费时交给当前界面
func (a *App) dispatchTap(x, y float64) {
	if a.overlay.HandleClick(x, y) {
		return
	}
	if c, ok := a.sceneManager.GetCurrentScene().(scenes.Clickable); ok {
		c.HandleClick(x, y)
	}
}

func (a *App) handleKeys() {
	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		if ebiten.IsFullscreen() {
			ebiten.SetFullscreen(false)
			if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
				ebiten.RestoreWindow()
			}
			a.pendingWindowSizeReset = true
			a.windowSizeResetCountdown = 3
			a.settings.SetFullscreen(false)
		} else {
			ebiten.SetFullscreen(true)
			a.settings.SetFullscreen(true)
		}
		if err := a.settings.Save(); err != nil {
			log.Printf("[App] Warning: failed to save settings: %v", err)
		}
	}

	// F1 跳过引导
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		a.engine.Skip()
	}

	if !a.cfg.Tutorial.DebugKeys {
		return
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyPageDown):
		a.seek(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyPageUp):
		a.seek(-1)
	case inpututil.IsKeyJustPressed(ebiten.KeyF2):
		a.engine.ForceComplete()
	}
}

// seek 调试跳转，目标步骤在其他界面时一并切换
func (a *App) seek(delta int) {
	if err := a.engine.Seek(delta); err != nil {
		log.Printf("[App] Seek ignored: %v", err)
		return
	}
	step, ok := a.engine.CurrentStep()
	if ok && step.Screen != "" && step.Screen != a.sceneManager.CurrentName() {
		a.sceneManager.Request(step.Screen)
	}
}

// Draw 先绘制业务界面，再绘制引导覆盖层
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)
	a.overlay.Draw(screen)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回逻辑屏幕尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return a.data.Manifest.Window.Width, a.data.Manifest.Window.Height
}

// Window 窗口尺寸与标题（来自界面清单）
func (a *App) Window() config.WindowSpec {
	return a.data.Manifest.Window
}
