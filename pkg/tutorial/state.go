package tutorial

// Phase 引擎所处阶段
type Phase int

const (
	// PhaseInactive 尚未开始
	PhaseInactive Phase = iota
	// PhaseShowingStep 激活，正在显示当前步骤
	PhaseShowingStep
	// PhasePaused 激活但暂停（界面级弹窗接管了输入）
	PhasePaused
	// PhaseFinished 已结束（完成、跳过或强制结束）
	PhaseFinished
)

// String 返回阶段名称
func (p Phase) String() string {
	switch p {
	case PhaseInactive:
		return "inactive"
	case PhaseShowingStep:
		return "active.showingStep"
	case PhasePaused:
		return "active.paused"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// EngineState 引擎的全部可变状态
//
// 原先散落各处的暂停标记、高亮名称、失误计数、重试标记都集中在这里，
// 只能通过 Engine 的状态转换方法修改，表现层不直接读写。
type EngineState struct {
	// SessionID 本次教学会话 ID（日志关联用）
	SessionID string

	Phase Phase

	CurrentStepIndex int

	// MistakeCount 当前步骤的失误次数，进入或完成步骤时清零
	MistakeCount int

	// CompletedStepIDs 已完成的步骤，用于幂等判断和调试，不参与流程控制
	CompletedStepIDs map[string]bool

	// ActiveHighlight 当前显示指示箭头的控件（最多一个）
	ActiveHighlight string

	// DialogDismissed HideDialogOnInteract 步骤的对话框是否已在交互后隐藏
	DialogDismissed bool

	// FeedbackToken 当前有效的反馈令牌，0 表示没有显示中的反馈
	FeedbackToken FeedbackToken
	FeedbackKind  FeedbackKind

	// PendingBranch 当前步骤已完成，等待确认分支反馈后再推进
	PendingBranch     bool
	PendingErrorCount int

	Outcome Outcome
}

// IsActive 是否处于激活状态（显示中或暂停）
func (s EngineState) IsActive() bool {
	return s.Phase == PhaseShowingStep || s.Phase == PhasePaused
}

// IsPaused 是否暂停
func (s EngineState) IsPaused() bool {
	return s.Phase == PhasePaused
}

// Snapshot 深拷贝
func (s EngineState) Snapshot() EngineState {
	out := s
	out.CompletedStepIDs = make(map[string]bool, len(s.CompletedStepIDs))
	for id, done := range s.CompletedStepIDs {
		out.CompletedStepIDs[id] = done
	}
	return out
}
