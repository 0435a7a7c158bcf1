// Package tutorial 实现诊所前台流程的强引导教学引擎
//
// 引擎本身不绘制任何内容，也不拥有任何界面。它只负责：
//   - 决定当前激活的是哪一个教学步骤
//   - 决定哪些已注册的控件可以接受输入（门控）
//   - 判断一次用户操作是进度还是失误，并给出逐级升级的反馈
//   - 与异步构建的各个界面（挂号、审方、收费、病历架）同步步骤切换
//
// 所有操作都在宿主程序的回调上下文中同步执行（单线程），不需要加锁。
package tutorial

// Action 步骤动作类型
type Action string

const (
	// ActionInfo 纯提示步骤，通过手动“下一步”推进
	ActionInfo Action = "info"
	// ActionClick 必须由用户操作产生指定完成事件才能推进
	ActionClick Action = "click"
	// ActionWait 等待后台事件，不显示提示
	ActionWait Action = "wait"
)

// Valid 检查动作类型是否合法
func (a Action) Valid() bool {
	switch a {
	case ActionInfo, ActionClick, ActionWait:
		return true
	}
	return false
}

// EventManualNext 手动推进哨兵事件
// 完成事件为该值的步骤由 AcknowledgeInfoStep 推进
const EventManualNext = "__next__"

// PointerDirection 指示箭头方向
type PointerDirection string

const (
	PointerNone  PointerDirection = ""
	PointerUp    PointerDirection = "up"
	PointerDown  PointerDirection = "down"
	PointerLeft  PointerDirection = "left"
	PointerRight PointerDirection = "right"
)

// PointerHint 指示箭头提示
// 箭头相对于目标控件包围盒放置，Offset 为额外偏移（像素）
type PointerHint struct {
	Direction PointerDirection `yaml:"direction" json:"direction,omitempty" jsonschema:"enum=up,enum=down,enum=left,enum=right"`
	OffsetX   float64          `yaml:"offsetX" json:"offsetX,omitempty"`
	OffsetY   float64          `yaml:"offsetY" json:"offsetY,omitempty"`
}

// MessagePosition 提示面板位置
type MessagePosition string

const (
	MessageAuto   MessagePosition = "auto"
	MessageTop    MessagePosition = "top"
	MessageBottom MessagePosition = "bottom"
	MessageLeft   MessagePosition = "left"
	MessageRight  MessagePosition = "right"
	MessageCenter MessagePosition = "center"
)

// StepDescriptor 教学步骤描述（创作数据，加载后不可变）
type StepDescriptor struct {
	// ID 唯一标识
	ID string `yaml:"id" json:"id" jsonschema:"minLength=1"`

	// Phase 阶段分组，仅用于进度显示
	Phase int `yaml:"phase" json:"phase,omitempty" jsonschema:"minimum=0"`

	// Screen 步骤所属界面，空字符串表示与界面无关的等待步骤
	Screen string `yaml:"screen" json:"screen,omitempty"`

	Action Action `yaml:"action" json:"action" jsonschema:"enum=info,enum=click,enum=wait"`

	// TargetControl 目标控件的逻辑名称，可为空
	TargetControl string `yaml:"targetControl" json:"targetControl,omitempty"`

	// CompletionEvent 满足该步骤的事件名
	// info 步骤省略时为 EventManualNext
	CompletionEvent string `yaml:"completionEvent" json:"completionEvent,omitempty" jsonschema:"minLength=1"`

	// Message / Speaker 展示文本，均为空时不显示对话框
	Message string `yaml:"message" json:"message,omitempty"`
	Speaker string `yaml:"speaker" json:"speaker,omitempty"`

	// MessageKey 文本键（ClinicStrings.txt），加载时解析为 Message
	MessageKey string `yaml:"messageKey" json:"messageKey,omitempty"`

	Pointer         PointerHint     `yaml:"pointer" json:"pointer,omitempty"`
	MessagePosition MessagePosition `yaml:"messagePosition" json:"messagePosition,omitempty" jsonschema:"enum=auto,enum=top,enum=bottom,enum=left,enum=right,enum=center"`

	// AllowFreeOperation 自由操作：暂停失误检测，仅锁定界面切换控件
	AllowFreeOperation bool `yaml:"allowFreeOperation" json:"allowFreeOperation,omitempty"`

	// HideDialogOnInteract 首次交互后隐藏对话框，保留箭头
	HideDialogOnInteract bool `yaml:"hideDialogOnInteract" json:"hideDialogOnInteract,omitempty"`

	// WrongAnswerHint 仅在第一次失误时显示的专用提示
	WrongAnswerHint string `yaml:"wrongAnswerHint" json:"wrongAnswerHint,omitempty"`

	// IgnoreCompletionOn 永远不算作失误的事件（良性后台事件）
	IgnoreCompletionOn []string `yaml:"ignoreCompletionOn" json:"ignoreCompletionOn,omitempty"`

	// ErrorFeedback 完成事件携带错误数时，先显示反馈再推进
	ErrorFeedback        bool   `yaml:"errorFeedback" json:"errorFeedback,omitempty"`
	ErrorFeedbackMessage string `yaml:"errorFeedbackMessage" json:"errorFeedbackMessage,omitempty"`

	// SkipWhen 进入步骤时求值的条件表达式，为真则直接视为完成
	// 示例: "flags.insuranceReported"
	SkipWhen string `yaml:"skipWhen" json:"skipWhen,omitempty"`
}

// HasDialog 是否显示对话框
func (s *StepDescriptor) HasDialog() bool {
	return s.Message != "" || s.Speaker != ""
}

// IgnoresEvent 事件是否在良性事件列表中
func (s *StepDescriptor) IgnoresEvent(event string) bool {
	for _, e := range s.IgnoreCompletionOn {
		if e == event {
			return true
		}
	}
	return false
}
