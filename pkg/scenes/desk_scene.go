package scenes

import (
	"fmt"
	"image/color"
	"log"

	"github.com/gonewx/clinicdesk/pkg/components"
	"github.com/gonewx/clinicdesk/pkg/config"
	"github.com/gonewx/clinicdesk/pkg/tutorial"
	"github.com/gonewx/clinicdesk/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// 公共控件上报的事件，界面据此打开帮助和设置面板
const (
	EventHelpOpened     = "HELP_OPENED"
	EventSettingsOpened = "SETTINGS_OPENED"
)

// bannerDuration 操作提示条显示时间（秒）
const bannerDuration = 1.5

var (
	colorDeskBackground = color.RGBA{236, 242, 246, 255}
	colorNavBar         = color.RGBA{46, 84, 120, 255}
	colorControl        = color.RGBA{255, 255, 255, 255}
	colorControlHover   = color.RGBA{220, 236, 250, 255}
	colorControlOff     = color.RGBA{200, 200, 200, 255}
	colorControlEdge    = color.RGBA{90, 120, 150, 255}
	colorNavActive      = color.RGBA{250, 200, 60, 255}
	colorSelected       = color.RGBA{180, 225, 190, 255}
	colorLabel          = color.RGBA{30, 40, 50, 255}
	colorLabelOff       = color.RGBA{140, 140, 140, 255}
	colorPanelBg        = color.RGBA{255, 252, 240, 250}
)

// pendingTimer 已触发、等待到期的延迟事件
type pendingTimer struct {
	event     string
	remaining float64
}

// DeskScene 一个前台业务界面（挂号、检查、收费、药架）
//
// 生命周期：
//   - OnEnter 按界面清单构建控件并注册到教学引擎
//   - 第一次 Update 时通知引擎界面就绪（布局在进入后的第一帧才稳定）
//   - OnLeave 注销控件、通知引擎界面关闭，之后 IsLive 返回 false
//
// 实现 tutorial.Screen。
type DeskScene struct {
	ctx  *DeskContext
	spec config.ScreenSpec

	root     *components.Panel
	navBar   *components.Panel
	content  *components.Panel
	controls []*components.Control

	live      bool
	announced bool

	timers []pendingTimer

	helpOpen     bool
	settingsOpen bool
	motionToggle components.Button

	banner     string
	bannerTime float64
}

// NewDeskScene 创建界面场景
//
// 参数：
//   - ctx: 共享依赖
//   - name: 界面名（必须存在于界面清单）
//
// 返回：
//   - *DeskScene: 场景，界面名未知时返回 nil
func NewDeskScene(ctx *DeskContext, name string) *DeskScene {
	spec, ok := ctx.Manifest.Screen(name)
	if !ok {
		log.Printf("[DeskScene] Unknown screen %q", name)
		return nil
	}
	w, h := float64(ctx.Manifest.Window.Width), float64(ctx.Manifest.Window.Height)
	root := components.NewPanel(0, 0, w, h, nil)
	return &DeskScene{
		ctx:     ctx,
		spec:    spec,
		root:    root,
		navBar:  components.NewPanel(0, 0, w, 56, root),
		content: components.NewPanel(0, 0, w, h, root),
	}
}

// ScreenName 界面名称
func (s *DeskScene) ScreenName() string { return s.spec.Name }

// IsLive 界面是否仍然存在
func (s *DeskScene) IsLive() bool { return s.live }

// OnEnter 构建控件并注册
func (s *DeskScene) OnEnter() {
	s.live = true
	s.announced = false
	s.controls = s.controls[:0]

	for _, spec := range s.ctx.Manifest.Chrome {
		s.controls = append(s.controls, components.NewControl(spec, s.navBar))
	}
	for _, spec := range s.spec.Controls {
		s.controls = append(s.controls, components.NewControl(spec, s.content))
	}
	for _, c := range s.controls {
		s.ctx.Engine.RegisterControl(c.Name, c, s)
	}
	log.Printf("[DeskScene] %s built with %d controls", s.spec.Name, len(s.controls))
}

// OnLeave 注销控件并通知引擎
func (s *DeskScene) OnLeave() {
	if s.settingsOpen {
		s.closeSettings()
	}
	for _, c := range s.controls {
		s.ctx.Engine.UnregisterControl(c.Name)
	}
	s.live = false
	s.timers = nil
	s.ctx.Engine.NotifyScreenClosed(s.spec.Name)
	log.Printf("[DeskScene] %s closed", s.spec.Name)
}

// Update 通知就绪、推进延迟事件和提示条
func (s *DeskScene) Update(deltaTime float64) {
	if !s.live {
		return
	}
	if !s.announced {
		s.announced = true
		s.ctx.Engine.NotifyScreenReady(s.spec.Name)
	}

	if s.bannerTime > 0 {
		s.bannerTime -= deltaTime
	}

	if len(s.timers) == 0 {
		return
	}
	// 到期事件可能导致界面切换请求，先摘出再上报
	var due []string
	kept := s.timers[:0]
	for _, t := range s.timers {
		t.remaining -= deltaTime
		if t.remaining <= 0 {
			due = append(due, t.event)
			continue
		}
		kept = append(kept, t)
	}
	s.timers = kept
	for _, event := range due {
		log.Printf("[DeskScene] Timer fired: %s", event)
		s.report(event, nil)
	}
}

// UpdateHover 更新控件悬停状态
func (s *DeskScene) UpdateHover(x, y float64) {
	for _, c := range s.controls {
		c.UpdateHover(x, y)
	}
	if s.settingsOpen {
		s.motionToggle.UpdateHover(x, y)
	}
}

// HandleClick 处理点击
func (s *DeskScene) HandleClick(x, y float64) bool {
	if !s.live {
		return false
	}
	if s.settingsOpen && s.motionToggle.Contains(x, y) {
		s.toggleReducedMotion()
		return true
	}

	c := s.controlAt(x, y)
	if c == nil {
		return false
	}
	event, ok := c.Activate()
	if !ok {
		// 被门控禁用的控件吞掉点击，不上报
		return true
	}
	s.onActivated(c, event)
	return true
}

// controlAt 返回位于该点的最上层控件
func (s *DeskScene) controlAt(x, y float64) *components.Control {
	for i := len(s.controls) - 1; i >= 0; i-- {
		if s.controls[i].HitTest(x, y) {
			return s.controls[i]
		}
	}
	return nil
}

// Control 按名称查找本界面的控件
func (s *DeskScene) Control(name string) (*components.Control, bool) {
	for _, c := range s.controls {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

func (s *DeskScene) onActivated(c *components.Control, event string) {
	// 打开设置时先暂停，打开设置本身不算操作
	if event == EventSettingsOpened {
		if s.settingsOpen {
			s.closeSettings()
			return
		}
		s.openSettings()
	}

	var payload *tutorial.EventPayload
	if c.Payload == config.PayloadFormErrors {
		payload = &tutorial.EventPayload{
			ErrorCount: s.unfilledInputs(),
			Data:       map[string]any{"screen": s.spec.Name},
		}
	}
	s.report(event, payload)

	if event == EventHelpOpened {
		s.helpOpen = !s.helpOpen
	}
	for _, t := range s.spec.Timers {
		if t.On == event {
			s.timers = append(s.timers, pendingTimer{event: t.Event, remaining: t.After})
		}
	}
	if c.Kind == config.ControlNav && c.Target != "" && c.Target != s.spec.Name {
		s.ctx.Scenes.Request(c.Target)
	}
}

func (s *DeskScene) report(event string, payload *tutorial.EventPayload) {
	s.banner = event
	if payload != nil && payload.ErrorCount > 0 {
		s.banner = fmt.Sprintf("%s (%d 项未填写)", event, payload.ErrorCount)
	}
	s.bannerTime = bannerDuration
	s.ctx.Engine.ReportEvent(event, payload)
}

// unfilledInputs 本界面未填写的输入框数量
func (s *DeskScene) unfilledInputs() int {
	n := 0
	for _, c := range s.controls {
		if c.Kind == config.ControlInput && !c.Filled {
			n++
		}
	}
	return n
}

func (s *DeskScene) openSettings() {
	s.settingsOpen = true
	s.ctx.Engine.Pause()
	w := float64(s.ctx.Manifest.Window.Width)
	s.motionToggle = components.Button{X: w/2 - 120, Y: 300, Width: 240, Height: 34}
}

func (s *DeskScene) closeSettings() {
	s.settingsOpen = false
	if s.ctx.Settings != nil {
		if err := s.ctx.Settings.Save(); err != nil {
			log.Printf("[DeskScene] Warning: failed to save settings: %v", err)
		}
	}
	s.ctx.Engine.Resume()
}

func (s *DeskScene) toggleReducedMotion() {
	if s.ctx.Settings == nil {
		return
	}
	cur := s.ctx.Settings.GetSettings().ReducedMotion
	s.ctx.Settings.SetReducedMotion(!cur)
}

// ============================================================================
// 渲染
// ============================================================================

// Draw 渲染界面
func (s *DeskScene) Draw(screen *ebiten.Image) {
	screen.Fill(colorDeskBackground)
	w := float32(s.ctx.Manifest.Window.Width)
	vector.DrawFilledRect(screen, 0, 0, w, 56, colorNavBar, false)

	title := s.spec.Title
	if title == "" {
		title = s.spec.Name
	}
	s.drawText(screen, title, 24, 70, colorLabel)

	for _, c := range s.controls {
		s.drawControl(screen, c)
	}

	if s.helpOpen {
		s.drawPanel(screen, s.ctx.str("HELP_TEXT", "按提示操作即可。"), 460)
	}
	if s.settingsOpen {
		s.drawSettings(screen)
	}

	if s.bannerTime > 0 && s.banner != "" {
		h := float32(s.ctx.Manifest.Window.Height)
		vector.DrawFilledRect(screen, 0, h-28, w, 28, color.RGBA{0, 0, 0, 120}, false)
		s.drawText(screen, s.banner, 12, float64(h)-24, color.White)
	}
}

func (s *DeskScene) drawControl(screen *ebiten.Image, c *components.Control) {
	b, ok := utils.WorldBounds(c)
	if !ok {
		return
	}
	x, y := float32(b.Min.X), float32(b.Min.Y)
	cw, ch := float32(b.Dx()), float32(b.Dy())

	fill := colorControl
	switch {
	case !c.InputEnabled():
		fill = colorControlOff
	case c.Kind == config.ControlNav && c.Target == s.spec.Name:
		fill = colorNavActive
	case c.Selected || c.Filled:
		fill = colorSelected
	case c.State == components.UIHovered:
		fill = colorControlHover
	}
	vector.DrawFilledRect(screen, x, y, cw, ch, fill, true)
	vector.StrokeRect(screen, x, y, cw, ch, 1.5, colorControlEdge, true)

	label := c.Label
	if c.Kind == config.ControlInput && c.Filled {
		label += " ✓"
	}
	labelColor := colorLabel
	if !c.InputEnabled() {
		labelColor = colorLabelOff
	}
	if s.ctx.Face == nil {
		return
	}
	tw, th := text.Measure(label, s.ctx.Face, 0)
	s.drawText(screen, label, float64(x)+(float64(cw)-tw)/2, float64(y)+(float64(ch)-th)/2, labelColor)
}

func (s *DeskScene) drawPanel(screen *ebiten.Image, body string, y float64) {
	w := float64(s.ctx.Manifest.Window.Width)
	lines := utils.WrapText(body, s.ctx.Face, w-160)
	vector.DrawFilledRect(screen, 60, float32(y), float32(w-120), float32(24+20*len(lines)), colorPanelBg, true)
	for i, line := range lines {
		s.drawText(screen, line, 80, y+12+float64(20*i), colorLabel)
	}
}

func (s *DeskScene) drawSettings(screen *ebiten.Image) {
	w := float32(s.ctx.Manifest.Window.Width)
	vector.DrawFilledRect(screen, w/2-180, 200, 360, 160, colorPanelBg, true)
	vector.StrokeRect(screen, w/2-180, 200, 360, 160, 2, colorControlEdge, true)
	s.drawText(screen, s.ctx.str("SETTINGS_TEXT", "引导已暂停。"), float64(w/2-160), 220, colorLabel)

	motion := "箭头动画：开"
	if s.ctx.Settings != nil && s.ctx.Settings.GetSettings().ReducedMotion {
		motion = "箭头动画：关"
	}
	t := s.motionToggle
	fill := colorControl
	if t.State == components.UIHovered {
		fill = colorControlHover
	}
	vector.DrawFilledRect(screen, float32(t.X), float32(t.Y), float32(t.Width), float32(t.Height), fill, true)
	s.drawText(screen, motion, t.X+12, t.Y+8, colorLabel)
}

func (s *DeskScene) drawText(screen *ebiten.Image, str string, x, y float64, clr color.Color) {
	if s.ctx.Face == nil || str == "" {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(screen, str, s.ctx.Face, op)
}
