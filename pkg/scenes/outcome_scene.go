package scenes

import (
	"image/color"
	"log"

	"github.com/gonewx/clinicdesk/pkg/components"
	"github.com/gonewx/clinicdesk/pkg/tutorial"
	"github.com/gonewx/clinicdesk/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var colorOutcomeBackground = color.RGBA{32, 48, 64, 255}

// OutcomeScene 教学结束后显示的界面
// 按结束方式显示不同文本，提供“重新开始”和“返回前台”两个按钮
type OutcomeScene struct {
	ctx     *DeskContext
	outcome tutorial.Outcome
	message string

	restartBtn components.Button
	returnBtn  components.Button
}

// NewOutcomeScene 创建结束界面
func NewOutcomeScene(ctx *DeskContext) *OutcomeScene {
	w := float64(ctx.Manifest.Window.Width)
	h := float64(ctx.Manifest.Window.Height)
	return &OutcomeScene{
		ctx:        ctx,
		restartBtn: components.Button{X: w/2 - 170, Y: h/2 + 60, Width: 160, Height: 44, Label: "重新开始引导"},
		returnBtn:  components.Button{X: w/2 + 10, Y: h/2 + 60, Width: 160, Height: 44, Label: "返回前台"},
	}
}

// OnEnter 读取引擎的结束方式
func (s *OutcomeScene) OnEnter() {
	s.outcome = s.ctx.Engine.State().Outcome
	s.message = s.messageFor(s.outcome)
	log.Printf("[OutcomeScene] Showing outcome %s", s.outcome)
}

// Outcome 显示中的结束方式
func (s *OutcomeScene) Outcome() tutorial.Outcome { return s.outcome }

// Message 显示中的文本
func (s *OutcomeScene) Message() string { return s.message }

func (s *OutcomeScene) messageFor(o tutorial.Outcome) string {
	switch o {
	case tutorial.OutcomeCompleted:
		return s.ctx.str("OUTCOME_COMPLETED", "恭喜，前台流程引导已完成！")
	case tutorial.OutcomeSkipped:
		return s.ctx.str("OUTCOME_SKIPPED", "已跳过新手引导。")
	case tutorial.OutcomeForcedTermination:
		return s.ctx.str("OUTCOME_FORCED", "引导因多次操作错误而结束。")
	default:
		return ""
	}
}

func (s *OutcomeScene) Update(deltaTime float64) {}

// UpdateHover 按钮悬停
func (s *OutcomeScene) UpdateHover(x, y float64) {
	s.restartBtn.UpdateHover(x, y)
	s.returnBtn.UpdateHover(x, y)
}

// HandleClick 处理按钮点击
func (s *OutcomeScene) HandleClick(x, y float64) bool {
	switch {
	case s.restartBtn.Contains(x, y):
		log.Printf("[OutcomeScene] Restart requested")
		if s.ctx.OnRestart != nil {
			s.ctx.OnRestart()
		}
		return true
	case s.returnBtn.Contains(x, y):
		s.ctx.Scenes.Request(s.ctx.Manifest.Start)
		return true
	}
	return false
}

func (s *OutcomeScene) Draw(screen *ebiten.Image) {
	screen.Fill(colorOutcomeBackground)
	if s.ctx.Face == nil {
		return
	}
	w := float64(s.ctx.Manifest.Window.Width)
	h := float64(s.ctx.Manifest.Window.Height)

	lines := utils.WrapText(s.message, s.ctx.Face, w-200)
	lines = append(lines, "", s.ctx.str("RESTART_HINT", "可以随时重新开始引导。"))
	y := h/2 - 80
	for _, line := range lines {
		tw, _ := text.Measure(line, s.ctx.Face, 0)
		op := &text.DrawOptions{}
		op.GeoM.Translate((w-tw)/2, y)
		op.ColorScale.ScaleWithColor(color.White)
		text.Draw(screen, line, s.ctx.Face, op)
		y += 26
	}

	for _, b := range []components.Button{s.restartBtn, s.returnBtn} {
		fill := colorControl
		if b.State == components.UIHovered {
			fill = colorControlHover
		}
		vector.DrawFilledRect(screen, float32(b.X), float32(b.Y), float32(b.Width), float32(b.Height), fill, true)
		tw, th := text.Measure(b.Label, s.ctx.Face, 0)
		op := &text.DrawOptions{}
		op.GeoM.Translate(b.X+(b.Width-tw)/2, b.Y+(b.Height-th)/2)
		op.ColorScale.ScaleWithColor(colorLabel)
		text.Draw(screen, b.Label, s.ctx.Face, op)
	}
}
