package tutorial

import "image"

// StepView 渲染当前步骤所需的全部信息
type StepView struct {
	StepID     string
	Index      int
	Total      int
	Phase      int
	PhaseCount int
	Action     Action

	// ShowDialog 为 false 时只显示箭头（对话框被抑制或已在交互后隐藏）
	ShowDialog bool
	Message    string
	Speaker    string
	Position   MessagePosition

	// Target / ControlBounds 箭头指向的控件及其世界包围盒
	// HasBounds 为 false 时不显示箭头（控件尚未注册或已失效）
	Target        string
	Pointer       PointerHint
	ControlBounds image.Rectangle
	HasBounds     bool

	// BlockBackground 是否屏蔽背景输入（纯提示步骤需要先点“下一步”）
	BlockBackground bool
	// ShowNextButton 是否显示“下一步”按钮
	ShowNextButton bool
}

// FeedbackKind 反馈类型
type FeedbackKind int

const (
	// FeedbackMistake 失误反馈，确认后重新显示当前步骤
	FeedbackMistake FeedbackKind = iota
	// FeedbackBranch 完成事件携带错误数时的一次性说明，确认后推进
	FeedbackBranch
)

// FeedbackToken 反馈续延令牌
// 确认时必须携带显示时拿到的令牌；暂停或步骤变化后旧令牌失效
type FeedbackToken uint64

// FeedbackView 反馈面板
type FeedbackView struct {
	Token   FeedbackToken
	Kind    FeedbackKind
	Tier    Tier
	StepID  string
	Message string
	Speaker string
	// ErrorCount 分支反馈时子活动报告的错误数
	ErrorCount int
}

// Presenter 表现层（由宿主实现）
type Presenter interface {
	// ShowStep 显示（或刷新）步骤提示
	ShowStep(view StepView)
	// ShowFeedback 显示反馈面板；用户确认后宿主调用 Engine.AcknowledgeFeedback(view.Token)
	ShowFeedback(view FeedbackView)
	// ShowFailureNotice 全屏、不可跳过的失败提示
	ShowFailureNotice(message string)
	// Hide 隐藏所有教学表现（对话框、箭头、遮罩）
	Hide()
}

// Outcome 教学结束方式
type Outcome int

const (
	// OutcomeNone 尚未结束
	OutcomeNone Outcome = iota
	// OutcomeCompleted 正常完成
	OutcomeCompleted
	// OutcomeSkipped 跳过
	OutcomeSkipped
	// OutcomeForcedTermination 失误过多被强制结束
	OutcomeForcedTermination
)

// String 返回结束方式名称
func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeCompleted:
		return "completedNormally"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeForcedTermination:
		return "forcedTermination"
	default:
		return "unknown"
	}
}

// ExitFunc 教学结束通知（宿主据此切换到不同的后续界面）
type ExitFunc func(outcome Outcome)

// CompletionStore 持久化“教学已完成”标记
type CompletionStore interface {
	IsTutorialCompleted() bool
	MarkTutorialCompleted() error
}

// nopPresenter 未设置表现层时使用
type nopPresenter struct{}

func (nopPresenter) ShowStep(StepView)         {}
func (nopPresenter) ShowFeedback(FeedbackView) {}
func (nopPresenter) ShowFailureNotice(string)  {}
func (nopPresenter) Hide()                     {}
