package modules

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/gonewx/clinicdesk/pkg/components"
	"github.com/gonewx/clinicdesk/pkg/game"
	"github.com/gonewx/clinicdesk/pkg/tutorial"
	"github.com/gonewx/clinicdesk/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// 布局常量（像素）
const (
	dialogWidth   = 420.0
	dialogPadding = 14.0
	dialogMargin  = 24.0
	buttonWidth   = 96.0
	buttonHeight  = 30.0

	feedbackWidth = 460.0

	arrowLength  = 48.0
	arrowGap     = 6.0
	arrowHead    = 16.0
	bobAmplitude = 6.0
	bobPeriod    = 0.9

	// fadeDuration 遮罩淡入时间（秒）
	fadeDuration = 0.25

	// failureHold 失败提示至少显示的时间（秒），之后点击才会关闭
	failureHold = 3.0
)

var (
	colorPanel     = color.RGBA{250, 246, 236, 245}
	colorPanelEdge = color.RGBA{120, 96, 64, 255}
	colorText      = color.RGBA{40, 32, 24, 255}
	colorSpeaker   = color.RGBA{150, 60, 40, 255}
	colorHighlight = color.RGBA{255, 200, 40, 255}
	colorButton    = color.RGBA{70, 130, 90, 255}
	colorButtonHot = color.RGBA{90, 160, 110, 255}
	colorFaint     = color.RGBA{120, 110, 100, 255}
)

// overlayMode 覆盖层当前显示的内容
type overlayMode int

const (
	overlayHidden overlayMode = iota
	overlayStep
	overlayFeedback
	overlayFailure
)

// rect 浮点矩形
type rect struct {
	X, Y, W, H float64
}

func (r rect) contains(x, y float64) bool {
	return x >= r.X && y >= r.Y && x < r.X+r.W && y < r.Y+r.H
}

// OverlayCallbacks 覆盖层上的按钮回调，由宿主接到引擎
type OverlayCallbacks struct {
	// OnNext “下一步”按钮，携带按钮所在的步骤 ID
	OnNext func(stepID string)
	// OnAcknowledge 反馈面板“知道了”按钮，携带面板显示时的令牌
	OnAcknowledge func(token tutorial.FeedbackToken)
}

// TutorialOverlayModule 教学覆盖层（tutorial.Presenter 的图形实现）
//
// 职责：
//   - 显示步骤对话框、指示箭头、背景遮罩和“下一步”按钮
//   - 显示失误/分支反馈面板
//   - 显示强制结束时的全屏失败提示
//   - 拦截被覆盖层占用的点击
//
// 覆盖层本身不持有引擎，按钮通过 OverlayCallbacks 回调。
type TutorialOverlayModule struct {
	face       text.Face
	lineHeight float64
	screenW    float64
	screenH    float64
	settings   *game.SettingsManager
	callbacks  OverlayCallbacks

	mode overlayMode

	step       tutorial.StepView
	stepLines  []string
	dialog     rect
	nextButton components.Button

	feedback      tutorial.FeedbackView
	feedbackLines []string
	feedbackPanel rect
	ackButton     components.Button

	failureMessage string
	failureLines   []string
	failureAge     float64

	elapsed float64
	// shownAge 当前步骤或反馈出现后经过的时间，驱动遮罩淡入
	shownAge float64
}

// NewTutorialOverlayModule 创建覆盖层
//
// 参数：
//   - face: 文本字体
//   - screenW, screenH: 逻辑屏幕尺寸
//   - settings: 显示设置（遮罩不透明度、箭头动画），可为 nil
//   - callbacks: 按钮回调
func NewTutorialOverlayModule(face text.Face, screenW, screenH int, settings *game.SettingsManager, callbacks OverlayCallbacks) *TutorialOverlayModule {
	m := &TutorialOverlayModule{
		face:      face,
		screenW:   float64(screenW),
		screenH:   float64(screenH),
		settings:  settings,
		callbacks: callbacks,
	}
	m.lineHeight = 20
	if face != nil {
		metrics := face.Metrics()
		m.lineHeight = math.Ceil(metrics.HAscent + metrics.HDescent + metrics.HLineGap + 4)
	}
	return m
}

// ============================================================================
// tutorial.Presenter
// ============================================================================

// ShowStep 显示（或刷新）步骤提示
func (m *TutorialOverlayModule) ShowStep(view tutorial.StepView) {
	// 同一步骤刷新（控件包围盒变化、对话框隐藏）不重新淡入
	if m.mode != overlayStep || m.step.StepID != view.StepID {
		m.shownAge = 0
	}
	m.mode = overlayStep
	m.step = view
	m.stepLines = nil
	m.dialog = rect{}
	m.nextButton = components.Button{}

	if !view.ShowDialog {
		return
	}

	innerW := dialogWidth - 2*dialogPadding
	m.stepLines = utils.WrapText(view.Message, m.face, innerW)

	h := 2*dialogPadding + float64(len(m.stepLines))*m.lineHeight
	if view.Speaker != "" {
		h += m.lineHeight
	}
	h += m.lineHeight // 进度行
	if view.ShowNextButton {
		h += buttonHeight + 8
	}

	m.dialog = dialogRect(view, dialogWidth, h, m.screenW, m.screenH)
	if view.ShowNextButton {
		m.nextButton = components.Button{
			X:      m.dialog.X + m.dialog.W - dialogPadding - buttonWidth,
			Y:      m.dialog.Y + m.dialog.H - dialogPadding - buttonHeight,
			Width:  buttonWidth,
			Height: buttonHeight,
			Label:  "下一步",
		}
	}
}

// ShowFeedback 显示反馈面板
func (m *TutorialOverlayModule) ShowFeedback(view tutorial.FeedbackView) {
	m.mode = overlayFeedback
	m.feedback = view
	m.shownAge = 0

	innerW := feedbackWidth - 2*dialogPadding
	m.feedbackLines = utils.WrapText(view.Message, m.face, innerW)
	h := 2*dialogPadding + m.lineHeight*float64(len(m.feedbackLines)+1) + buttonHeight + 8

	m.feedbackPanel = rect{
		X: (m.screenW - feedbackWidth) / 2,
		Y: (m.screenH - h) / 2,
		W: feedbackWidth,
		H: h,
	}
	m.ackButton = components.Button{
		X:      m.feedbackPanel.X + (feedbackWidth-buttonWidth)/2,
		Y:      m.feedbackPanel.Y + h - dialogPadding - buttonHeight,
		Width:  buttonWidth,
		Height: buttonHeight,
		Label:  "知道了",
	}
}

// ShowFailureNotice 全屏失败提示
func (m *TutorialOverlayModule) ShowFailureNotice(message string) {
	m.mode = overlayFailure
	m.failureMessage = message
	m.failureLines = utils.WrapText(message, m.face, m.screenW*0.6)
	m.failureAge = 0
}

// Hide 隐藏所有表现
func (m *TutorialOverlayModule) Hide() {
	m.mode = overlayHidden
}

// ============================================================================
// 输入与更新
// ============================================================================

// Visible 覆盖层是否显示任何内容
func (m *TutorialOverlayModule) Visible() bool {
	return m.mode != overlayHidden
}

// BlocksInput 覆盖层是否独占输入（业务界面不应处理点击和悬停）
func (m *TutorialOverlayModule) BlocksInput() bool {
	switch m.mode {
	case overlayFeedback, overlayFailure:
		return true
	case overlayStep:
		return m.step.BlockBackground
	default:
		return false
	}
}

// Update 推进动画并更新按钮悬停状态
func (m *TutorialOverlayModule) Update(deltaTime float64, cursorX, cursorY int) {
	m.elapsed += deltaTime
	m.shownAge += deltaTime
	if m.mode == overlayFailure {
		m.failureAge += deltaTime
	}
	x, y := float64(cursorX), float64(cursorY)
	m.nextButton.UpdateHover(x, y)
	m.ackButton.UpdateHover(x, y)
}

// HandleClick 处理一次点击
//
// 返回：
//   - bool: 点击是否被覆盖层消费（true 时业务界面不应再处理）
func (m *TutorialOverlayModule) HandleClick(x, y float64) bool {
	switch m.mode {
	case overlayFailure:
		if m.failureAge >= failureHold {
			m.mode = overlayHidden
		}
		return true

	case overlayFeedback:
		if m.ackButton.Contains(x, y) && m.callbacks.OnAcknowledge != nil {
			m.callbacks.OnAcknowledge(m.feedback.Token)
		}
		return true

	case overlayStep:
		if m.step.ShowNextButton && m.nextButton.Width > 0 && m.nextButton.Contains(x, y) {
			if m.callbacks.OnNext != nil {
				m.callbacks.OnNext(m.step.StepID)
			}
			return true
		}
		if m.step.BlockBackground {
			return true
		}
		// 对话框本身吃掉点击，避免误触下面的控件
		return m.step.ShowDialog && m.dialog.contains(x, y)
	}
	return false
}

// ============================================================================
// 布局
// ============================================================================

// dialogRect 计算对话框位置
// auto：有目标控件时放在与控件相反的半屏，否则居中
func dialogRect(view tutorial.StepView, w, h, screenW, screenH float64) rect {
	pos := view.Position
	if pos == "" || pos == tutorial.MessageAuto {
		switch {
		case !view.HasBounds:
			pos = tutorial.MessageCenter
		case float64(view.ControlBounds.Min.Y+view.ControlBounds.Max.Y)/2 > screenH/2:
			pos = tutorial.MessageTop
		default:
			pos = tutorial.MessageBottom
		}
	}

	r := rect{X: (screenW - w) / 2, Y: (screenH - h) / 2, W: w, H: h}
	switch pos {
	case tutorial.MessageTop:
		r.Y = dialogMargin
	case tutorial.MessageBottom:
		r.Y = screenH - h - dialogMargin
	case tutorial.MessageLeft:
		r.X = dialogMargin
	case tutorial.MessageRight:
		r.X = screenW - w - dialogMargin
	}
	return r
}

// arrowGeometry 计算箭头的尖端和尾端
// Direction 是箭头指向的方向，箭头放在控件的反方向一侧
func arrowGeometry(bounds image.Rectangle, hint tutorial.PointerHint, bob float64) (tipX, tipY, tailX, tailY float64, ok bool) {
	cx := float64(bounds.Min.X+bounds.Max.X) / 2
	cy := float64(bounds.Min.Y+bounds.Max.Y) / 2
	switch hint.Direction {
	case tutorial.PointerDown:
		tipX, tipY = cx, float64(bounds.Min.Y)-arrowGap-bob
		tailX, tailY = tipX, tipY-arrowLength
	case tutorial.PointerUp:
		tipX, tipY = cx, float64(bounds.Max.Y)+arrowGap+bob
		tailX, tailY = tipX, tipY+arrowLength
	case tutorial.PointerRight:
		tipX, tipY = float64(bounds.Min.X)-arrowGap-bob, cy
		tailX, tailY = tipX-arrowLength, tipY
	case tutorial.PointerLeft:
		tipX, tipY = float64(bounds.Max.X)+arrowGap+bob, cy
		tailX, tailY = tipX+arrowLength, tipY
	default:
		return 0, 0, 0, 0, false
	}
	tipX += hint.OffsetX
	tailX += hint.OffsetX
	tipY += hint.OffsetY
	tailY += hint.OffsetY
	return tipX, tipY, tailX, tailY, true
}

// bobOffset 箭头浮动偏移，三角波经缓动后在 [0, bobAmplitude] 之间往复
func bobOffset(elapsed float64, reducedMotion bool) float64 {
	if reducedMotion {
		return 0
	}
	t := math.Mod(elapsed, bobPeriod) / bobPeriod
	tri := 1 - math.Abs(2*t-1)
	return bobAmplitude * utils.EaseInOutCubic(tri)
}

// fadeIn 遮罩淡入系数，减少动画时直接为 1
func fadeIn(age float64, reducedMotion bool) float64 {
	if reducedMotion {
		return 1
	}
	return utils.EaseOutCubic(utils.Clamp01(age / fadeDuration))
}

func (m *TutorialOverlayModule) displaySettings() (dim float64, reducedMotion bool) {
	if m.settings == nil {
		return game.DefaultSettings().DimOpacity, false
	}
	s := m.settings.GetSettings()
	return s.DimOpacity, s.ReducedMotion
}

// ============================================================================
// 渲染
// ============================================================================

// Draw 渲染覆盖层
func (m *TutorialOverlayModule) Draw(screen *ebiten.Image) {
	dim, reducedMotion := m.displaySettings()
	fadedDim := utils.Lerp(0, dim, fadeIn(m.shownAge, reducedMotion))

	switch m.mode {
	case overlayStep:
		if m.step.BlockBackground {
			m.drawDim(screen, fadedDim)
		}
		if m.step.HasBounds {
			b := m.step.ControlBounds
			vector.StrokeRect(screen, float32(b.Min.X-3), float32(b.Min.Y-3),
				float32(b.Dx()+6), float32(b.Dy()+6), 3, colorHighlight, true)
			if tipX, tipY, tailX, tailY, ok := arrowGeometry(b, m.step.Pointer, bobOffset(m.elapsed, reducedMotion)); ok {
				drawArrow(screen, tipX, tipY, tailX, tailY)
			}
		}
		if m.step.ShowDialog {
			m.drawDialog(screen)
		}

	case overlayFeedback:
		m.drawDim(screen, fadedDim)
		m.drawFeedback(screen)

	case overlayFailure:
		m.drawDim(screen, 0.88)
		y := m.screenH/2 - float64(len(m.failureLines)+2)*m.lineHeight/2
		m.drawCentered(screen, "引导已结束", y, colorHighlight)
		for i, line := range m.failureLines {
			m.drawCentered(screen, line, y+float64(i+2)*m.lineHeight, color.White)
		}
		if m.failureAge >= failureHold {
			m.drawCentered(screen, "点击任意位置继续", y+float64(len(m.failureLines)+3)*m.lineHeight, colorFaint)
		}
	}
}

func (m *TutorialOverlayModule) drawDim(screen *ebiten.Image, opacity float64) {
	a := uint8(math.Round(255 * opacity))
	vector.DrawFilledRect(screen, 0, 0, float32(m.screenW), float32(m.screenH), color.RGBA{0, 0, 0, a}, false)
}

func (m *TutorialOverlayModule) drawDialog(screen *ebiten.Image) {
	d := m.dialog
	drawPanel(screen, d)

	x := d.X + dialogPadding
	y := d.Y + dialogPadding
	if m.step.Speaker != "" {
		m.drawText(screen, m.step.Speaker, x, y, colorSpeaker)
		y += m.lineHeight
	}
	for _, line := range m.stepLines {
		m.drawText(screen, line, x, y, colorText)
		y += m.lineHeight
	}
	progress := fmt.Sprintf("第 %d/%d 阶段 · %d/%d", m.step.Phase, m.step.PhaseCount, m.step.Index+1, m.step.Total)
	m.drawText(screen, progress, x, y, colorFaint)

	if m.step.ShowNextButton {
		m.drawButton(screen, &m.nextButton)
	}
}

func (m *TutorialOverlayModule) drawFeedback(screen *ebiten.Image) {
	p := m.feedbackPanel
	drawPanel(screen, p)

	title, titleColor := feedbackTitle(m.feedback)
	x := p.X + dialogPadding
	y := p.Y + dialogPadding
	if m.feedback.Speaker != "" {
		title = m.feedback.Speaker + " · " + title
	}
	m.drawText(screen, title, x, y, titleColor)
	y += m.lineHeight
	for _, line := range m.feedbackLines {
		m.drawText(screen, line, x, y, colorText)
		y += m.lineHeight
	}
	m.drawButton(screen, &m.ackButton)
}

// feedbackTitle 反馈面板标题，等级越高颜色越醒目
func feedbackTitle(view tutorial.FeedbackView) (string, color.Color) {
	if view.Kind == tutorial.FeedbackBranch {
		return "核对结果", colorButton
	}
	switch view.Tier {
	case tutorial.TierFirm:
		return "注意", color.RGBA{220, 130, 20, 255}
	case tutorial.TierSevere:
		return "警告", color.RGBA{200, 30, 30, 255}
	default:
		return "提示", colorSpeaker
	}
}

func drawPanel(screen *ebiten.Image, r rect) {
	vector.DrawFilledRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), colorPanel, true)
	vector.StrokeRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), 2, colorPanelEdge, true)
}

func (m *TutorialOverlayModule) drawButton(screen *ebiten.Image, b *components.Button) {
	fill := colorButton
	if b.State == components.UIHovered {
		fill = colorButtonHot
	}
	vector.DrawFilledRect(screen, float32(b.X), float32(b.Y), float32(b.Width), float32(b.Height), fill, true)
	if m.face == nil {
		return
	}

	w, h := text.Measure(b.Label, m.face, 0)
	m.drawText(screen, b.Label, b.X+(b.Width-w)/2, b.Y+(b.Height-h)/2, color.White)
}

// drawArrow 箭杆加两条箭头边
func drawArrow(screen *ebiten.Image, tipX, tipY, tailX, tailY float64) {
	vector.StrokeLine(screen, float32(tailX), float32(tailY), float32(tipX), float32(tipY), 6, colorHighlight, true)

	angle := math.Atan2(tailY-tipY, tailX-tipX)
	for _, side := range []float64{-0.5, 0.5} {
		hx := tipX + arrowHead*math.Cos(angle+side)
		hy := tipY + arrowHead*math.Sin(angle+side)
		vector.StrokeLine(screen, float32(tipX), float32(tipY), float32(hx), float32(hy), 6, colorHighlight, true)
	}
}

func (m *TutorialOverlayModule) drawText(screen *ebiten.Image, s string, x, y float64, clr color.Color) {
	if m.face == nil || s == "" {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(screen, s, m.face, op)
}

func (m *TutorialOverlayModule) drawCentered(screen *ebiten.Image, s string, y float64, clr color.Color) {
	if m.face == nil {
		return
	}
	w, _ := text.Measure(s, m.face, 0)
	m.drawText(screen, s, (m.screenW-w)/2, y, clr)
}
