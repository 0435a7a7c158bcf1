package tutorial

// Tier 失误反馈等级
type Tier int

const (
	// TierNone 没有失误
	TierNone Tier = iota
	// TierHint 第 1 次：步骤专用提示或通用重试提示
	TierHint
	// TierFirm 第 2 次：语气更严厉的通用提示
	TierFirm
	// TierSevere 第 3~5 次：加重语气和视觉强调
	TierSevere
	// TierTerminate 第 6 次及以上：强制结束教学
	TierTerminate
)

// ForcedTerminationThreshold 同一步骤失误达到此次数即强制结束
const ForcedTerminationThreshold = 6

// String 返回等级名称
func (t Tier) String() string {
	switch t {
	case TierNone:
		return "None"
	case TierHint:
		return "Hint"
	case TierFirm:
		return "Firm"
	case TierSevere:
		return "Severe"
	case TierTerminate:
		return "Terminate"
	default:
		return "Unknown"
	}
}

// EscalationMessages 通用反馈文本
type EscalationMessages struct {
	Retry      string `yaml:"retry" json:"retry,omitempty"`
	Firm       string `yaml:"firm" json:"firm,omitempty"`
	Severe     string `yaml:"severe" json:"severe,omitempty"`
	ForcedExit string `yaml:"forcedExit" json:"forcedExit,omitempty"`
}

// DefaultEscalationMessages 默认反馈文本
func DefaultEscalationMessages() EscalationMessages {
	return EscalationMessages{
		Retry:      "操作不对哦，请按提示再试一次。",
		Firm:       "还是不对，请仔细看箭头指向的位置。",
		Severe:     "请务必只点击高亮的控件！",
		ForcedExit: "多次操作错误，本次引导已结束。请返回主界面重新开始。",
	}
}

// withDefaults 空文本使用默认值
func (m EscalationMessages) withDefaults() EscalationMessages {
	d := DefaultEscalationMessages()
	if m.Retry == "" {
		m.Retry = d.Retry
	}
	if m.Firm == "" {
		m.Firm = d.Firm
	}
	if m.Severe == "" {
		m.Severe = d.Severe
	}
	if m.ForcedExit == "" {
		m.ForcedExit = d.ForcedExit
	}
	return m
}

// Feedback 一次失误对应的反馈
type Feedback struct {
	Tier    Tier
	Message string
	// FromStepHint 是否使用了步骤专用提示（仅第一次失误可能为 true）
	FromStepHint bool
}

// Terminates 是否触发强制结束
func (f Feedback) Terminates() bool {
	return f.Tier == TierTerminate
}

// TierFor 根据失误次数计算等级
func TierFor(count int) Tier {
	switch {
	case count <= 0:
		return TierNone
	case count == 1:
		return TierHint
	case count == 2:
		return TierFirm
	case count < ForcedTerminationThreshold:
		return TierSevere
	default:
		return TierTerminate
	}
}

// Escalate 失误升级策略（纯函数，与状态机无关）
//
// 参数：
//   - count: 当前步骤的失误次数
//   - step: 当前步骤，可为 nil
//   - msgs: 通用反馈文本
//
// 返回：
//   - Feedback: 等级与文本
func Escalate(count int, step *StepDescriptor, msgs EscalationMessages) Feedback {
	msgs = msgs.withDefaults()
	tier := TierFor(count)

	switch tier {
	case TierNone:
		return Feedback{Tier: TierNone}
	case TierHint:
		if step != nil && step.WrongAnswerHint != "" {
			return Feedback{Tier: tier, Message: step.WrongAnswerHint, FromStepHint: true}
		}
		return Feedback{Tier: tier, Message: msgs.Retry}
	case TierFirm:
		return Feedback{Tier: tier, Message: msgs.Firm}
	case TierSevere:
		return Feedback{Tier: tier, Message: msgs.Severe}
	default:
		return Feedback{Tier: TierTerminate, Message: msgs.ForcedExit}
	}
}
