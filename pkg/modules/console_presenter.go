package modules

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gonewx/clinicdesk/pkg/tutorial"
)

// 步骤状态符号
const (
	glyphStep     = "▸"
	glyphHidden   = "·"
	glyphMistake  = "✗"
	glyphBranch   = "◆"
	glyphFailure  = "■"
	glyphNextHint = "⏎"
)

var (
	colorYellow = lipgloss.Color("214")
	colorRed    = lipgloss.Color("196")
	colorCyan   = lipgloss.Color("51")
	colorDim    = lipgloss.Color("240")
	colorGreen  = lipgloss.Color("42")
)

// ConsolePresenter 把教学表现输出为终端文本
//
// 用于 tutorialctl replay：不依赖图形界面即可走完整个流程。
// 同时记录最近一次显示的内容，供回放脚本确认反馈和断言。
type ConsolePresenter struct {
	out io.Writer

	header   lipgloss.Style
	dim      lipgloss.Style
	dialog   lipgloss.Style
	mistake  lipgloss.Style
	branch   lipgloss.Style
	failure  lipgloss.Style
	speaker  lipgloss.Style
	progress lipgloss.Style

	lastStep     *tutorial.StepView
	lastFeedback *tutorial.FeedbackView
	failureShown string
	visible      bool
}

// NewConsolePresenter 创建终端表现层
// 样式绑定到 out 的渲染器，输出到非终端时自动去掉颜色
func NewConsolePresenter(out io.Writer) *ConsolePresenter {
	r := lipgloss.NewRenderer(out)
	return &ConsolePresenter{
		out:      out,
		header:   r.NewStyle().Bold(true).Foreground(colorCyan),
		dim:      r.NewStyle().Foreground(colorDim),
		dialog:   r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1).Width(56),
		mistake:  r.NewStyle().Bold(true).Foreground(colorYellow),
		branch:   r.NewStyle().Bold(true).Foreground(colorGreen),
		failure:  r.NewStyle().Bold(true).Foreground(colorRed).Border(lipgloss.DoubleBorder()).BorderForeground(colorRed).Padding(0, 2),
		speaker:  r.NewStyle().Bold(true),
		progress: r.NewStyle().Foreground(colorDim),
	}
}

// ShowStep 输出步骤标题、对话框和箭头位置
func (p *ConsolePresenter) ShowStep(view tutorial.StepView) {
	p.lastStep = &view
	p.lastFeedback = nil
	p.visible = true

	title := fmt.Sprintf("%s %s", glyphStep, view.StepID)
	meta := fmt.Sprintf("[%d/%d] 阶段 %d/%d · %s", view.Index+1, view.Total, view.Phase, view.PhaseCount, view.Action)
	fmt.Fprintln(p.out, p.header.Render(title)+" "+p.progress.Render(meta))

	if view.Target != "" {
		if view.HasBounds {
			b := view.ControlBounds
			fmt.Fprintln(p.out, p.dim.Render(fmt.Sprintf("  → %s @ (%d,%d %dx%d) %s",
				view.Target, b.Min.X, b.Min.Y, b.Dx(), b.Dy(), pointerLabel(view.Pointer.Direction))))
		} else {
			fmt.Fprintln(p.out, p.dim.Render("  → "+view.Target+" (not on screen)"))
		}
	}

	if view.ShowDialog {
		body := view.Message
		if view.Speaker != "" {
			body = p.speaker.Render(view.Speaker+"：") + body
		}
		if view.ShowNextButton {
			body += "\n" + p.dim.Render(glyphNextHint+" 下一步")
		}
		fmt.Fprintln(p.out, p.dialog.Render(body))
	}
}

// ShowFeedback 输出反馈面板
func (p *ConsolePresenter) ShowFeedback(view tutorial.FeedbackView) {
	p.lastFeedback = &view
	p.visible = true

	var line string
	switch view.Kind {
	case tutorial.FeedbackBranch:
		line = p.branch.Render(fmt.Sprintf("%s %s 有 %d 处错误", glyphBranch, view.StepID, view.ErrorCount))
	default:
		line = p.mistake.Render(fmt.Sprintf("%s %s 失误 (%s)", glyphMistake, view.StepID, view.Tier))
	}
	fmt.Fprintln(p.out, line+" "+p.dim.Render(fmt.Sprintf("token=%d", view.Token)))
	fmt.Fprintln(p.out, "  "+speakerPrefix(view.Speaker)+view.Message)
}

// ShowFailureNotice 输出不可跳过的失败提示
func (p *ConsolePresenter) ShowFailureNotice(message string) {
	p.failureShown = message
	p.visible = true
	fmt.Fprintln(p.out, p.failure.Render(glyphFailure+" "+message))
}

// Hide 隐藏提示
func (p *ConsolePresenter) Hide() {
	if !p.visible {
		return
	}
	p.visible = false
	p.lastFeedback = nil
	fmt.Fprintln(p.out, p.dim.Render(glyphHidden+" (hidden)"))
}

// LastStep 最近一次显示的步骤
func (p *ConsolePresenter) LastStep() (tutorial.StepView, bool) {
	if p.lastStep == nil {
		return tutorial.StepView{}, false
	}
	return *p.lastStep, true
}

// PendingFeedback 当前显示中的反馈（隐藏或显示新步骤后清除）
func (p *ConsolePresenter) PendingFeedback() (tutorial.FeedbackView, bool) {
	if p.lastFeedback == nil {
		return tutorial.FeedbackView{}, false
	}
	return *p.lastFeedback, true
}

// FailureNotice 已显示的失败提示
func (p *ConsolePresenter) FailureNotice() string {
	return p.failureShown
}

// Visible 当前是否有提示显示
func (p *ConsolePresenter) Visible() bool {
	return p.visible
}

func pointerLabel(d tutorial.PointerDirection) string {
	switch d {
	case tutorial.PointerUp:
		return "↑"
	case tutorial.PointerDown:
		return "↓"
	case tutorial.PointerLeft:
		return "←"
	case tutorial.PointerRight:
		return "→"
	default:
		return ""
	}
}

func speakerPrefix(speaker string) string {
	if strings.TrimSpace(speaker) == "" {
		return ""
	}
	return speaker + "："
}
