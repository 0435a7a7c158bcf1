package tutorial

import (
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
)

// ErrAlreadyActive 教学已在进行中
var ErrAlreadyActive = errors.New("tutorial already active")

// ErrNotActive 教学未激活
var ErrNotActive = errors.New("tutorial not active")

// EventPayload 事件附带数据
type EventPayload struct {
	// ErrorCount 子活动（如填写表单）中的错误数
	ErrorCount int
	// Data 其他业务数据，引擎不解释
	Data map[string]any
}

// Options 引擎配置
type Options struct {
	Gates     GateConfig
	Presenter Presenter
	Store     CompletionStore
	OnExit    ExitFunc
	Messages  EscalationMessages
	// DefaultSpeaker 反馈面板的说话人
	DefaultSpeaker string
}

// Engine 教学步骤状态机（每个教学会话一个实例）
//
// 由宿主程序显式创建并注入到每个界面，结束时显式拆除。
// 所有方法都必须在同一个线程（Ebitengine 的 Update 循环）中调用。
type Engine struct {
	catalog   *Catalog
	registry  *ControlRegistry
	gate      *GateKeeper
	presenter Presenter
	store     CompletionStore
	onExit    ExitFunc
	messages  EscalationMessages
	speaker   string

	state EngineState

	// readyScreens 已通知就绪且尚未关闭的界面
	readyScreens map[string]bool
	// completedEvents 已完成步骤的完成事件（重复事件幂等处理）
	completedEvents map[string]bool
	// flags 宿主设置的布尔标记，供 SkipWhen 表达式使用
	flags map[string]bool

	lastToken FeedbackToken
}

// NewEngine 创建教学引擎
//
// 参数：
//   - catalog: 步骤目录
//   - opts: 门控配置、表现层、持久化与结束回调
//
// 返回：
//   - *Engine: 处于 inactive 状态的引擎
func NewEngine(catalog *Catalog, opts Options) *Engine {
	presenter := opts.Presenter
	if presenter == nil {
		presenter = nopPresenter{}
	}
	e := &Engine{
		catalog:         catalog,
		registry:        NewControlRegistry(),
		gate:            NewGateKeeper(opts.Gates),
		presenter:       presenter,
		store:           opts.Store,
		onExit:          opts.OnExit,
		messages:        opts.Messages.withDefaults(),
		speaker:         opts.DefaultSpeaker,
		readyScreens:    make(map[string]bool),
		completedEvents: make(map[string]bool),
		flags:           make(map[string]bool),
	}
	e.state.CompletedStepIDs = make(map[string]bool)
	log.Printf("[TutorialEngine] Initialized with %d steps", catalog.Len())
	return e
}

// ============================================================================
// 查询
// ============================================================================

// State 返回状态快照
func (e *Engine) State() EngineState {
	return e.state.Snapshot()
}

// IsActive 教学是否激活
func (e *Engine) IsActive() bool {
	return e.state.IsActive()
}

// CurrentStep 返回当前步骤
func (e *Engine) CurrentStep() (StepDescriptor, bool) {
	if !e.state.IsActive() {
		return StepDescriptor{}, false
	}
	return e.catalog.At(e.state.CurrentStepIndex)
}

// Catalog 返回步骤目录
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// Registry 返回控件注册表
func (e *Engine) Registry() *ControlRegistry {
	return e.registry
}

// PreviouslyCompleted 持久化存储中是否记录过教学已完成
func (e *Engine) PreviouslyCompleted() bool {
	if e.store == nil {
		return false
	}
	return e.store.IsTutorialCompleted()
}

// SetFlag 设置宿主标记（如“已上报医保”），影响后续步骤的 SkipWhen
func (e *Engine) SetFlag(name string, value bool) {
	e.flags[name] = value
}

// ============================================================================
// 宿主程序入口
// ============================================================================

// Start 从指定步骤开始教学
//
// 参数：
//   - fromIndex: 起始步骤索引（通常为 0）
//
// 返回：
//   - error: 已激活或索引越界
func (e *Engine) Start(fromIndex int) error {
	if e.state.IsActive() {
		return ErrAlreadyActive
	}
	if fromIndex < 0 || fromIndex >= e.catalog.Len() {
		return fmt.Errorf("start index %d out of range [0, %d)", fromIndex, e.catalog.Len())
	}

	e.state = EngineState{
		SessionID:        uuid.NewString(),
		Phase:            PhaseShowingStep,
		CompletedStepIDs: make(map[string]bool),
	}
	e.completedEvents = make(map[string]bool)

	log.Printf("[TutorialEngine] Session %s started at step %d", e.state.SessionID, fromIndex)
	e.enterStep(fromIndex, true)
	return nil
}

// Pause 暂停：隐藏表现，不改变索引和注册表
// 显示中的反馈令牌随之失效
func (e *Engine) Pause() {
	if e.state.Phase != PhaseShowingStep {
		return
	}
	e.state.Phase = PhasePaused
	e.invalidateFeedback()
	e.presenter.Hide()
	log.Printf("[TutorialEngine] Paused at step %d", e.state.CurrentStepIndex)
}

// Resume 恢复并重新显示当前步骤
func (e *Engine) Resume() {
	if e.state.Phase != PhasePaused {
		return
	}
	e.state.Phase = PhaseShowingStep
	log.Printf("[TutorialEngine] Resumed at step %d", e.state.CurrentStepIndex)

	if e.state.PendingBranch {
		// 暂停前的分支反馈令牌已失效，重新发放
		step, _ := e.catalog.At(e.state.CurrentStepIndex)
		e.showBranchFeedback(step, e.state.PendingErrorCount)
		return
	}
	e.applyGate()
	e.render()
}

// Skip 跳过教学
func (e *Engine) Skip() {
	if !e.state.IsActive() {
		return
	}
	log.Printf("[TutorialEngine] Skipped at step %d", e.state.CurrentStepIndex)
	e.finish(OutcomeSkipped)
}

// ForceComplete 直接视为正常完成（调试用）
func (e *Engine) ForceComplete() {
	if !e.state.IsActive() {
		return
	}
	for _, step := range e.catalog.Steps() {
		e.state.CompletedStepIDs[step.ID] = true
	}
	log.Printf("[TutorialEngine] Force completed from step %d", e.state.CurrentStepIndex)
	e.finish(OutcomeCompleted)
}

// Seek 相对跳转（运维/调试导航，不属于正常流程）
// 结果被限制在 [0, Len-1]
func (e *Engine) Seek(delta int) error {
	if !e.state.IsActive() {
		return ErrNotActive
	}
	target := e.state.CurrentStepIndex + delta
	if target < 0 {
		target = 0
	}
	if target >= e.catalog.Len() {
		target = e.catalog.Len() - 1
	}
	e.seekTo(target)
	return nil
}

// SeekTo 跳转到指定 ID 的步骤
func (e *Engine) SeekTo(stepID string) error {
	if !e.state.IsActive() {
		return ErrNotActive
	}
	index, err := e.catalog.IndexOf(stepID)
	if err != nil {
		return err
	}
	e.seekTo(index)
	return nil
}

func (e *Engine) seekTo(index int) {
	log.Printf("[TutorialEngine] Seek %d -> %d", e.state.CurrentStepIndex, index)
	e.clearHighlight()
	e.invalidateFeedback()
	e.state.PendingBranch = false
	e.state.PendingErrorCount = 0

	if e.state.Phase == PhasePaused {
		e.state.CurrentStepIndex = index
		e.state.MistakeCount = 0
		e.state.DialogDismissed = false
		e.applyGate()
		return
	}
	e.enterStep(index, false)
}

// ============================================================================
// 界面入口
// ============================================================================

// RegisterControl 界面构建控件后注册
//
// 教学激活时立即对该控件应用门控：控件可能在步骤显示之后才构建完成。
// 如果它正是当前高亮或目标控件，同时刷新提示（布局稳定后位置可能变化）。
func (e *Engine) RegisterControl(name string, ctrl Control, owner Screen) {
	e.registry.Register(name, ctrl, owner)
	if !e.state.IsActive() || ctrl == nil {
		return
	}

	step, _ := e.catalog.At(e.state.CurrentStepIndex)
	d := e.gate.ApplyOne(&step, name, ctrl)
	log.Printf("[TutorialEngine] Control %q registered, enabled=%v (rule %s)", name, d.Enabled, d.Rule)

	if e.state.Phase == PhaseShowingStep && e.state.FeedbackToken == 0 && !e.state.PendingBranch &&
		(name == e.state.ActiveHighlight || name == step.TargetControl) {
		e.render()
	}
}

// UnregisterControl 界面销毁控件前注销
func (e *Engine) UnregisterControl(name string) {
	if !e.registry.Unregister(name) {
		return
	}
	if name == e.state.ActiveHighlight && e.state.Phase == PhaseShowingStep && e.state.FeedbackToken == 0 {
		e.render()
	}
}

// NotifyScreenReady 界面构建完成
// 当前步骤属于该界面时重新应用门控并显示提示
func (e *Engine) NotifyScreenReady(screen string) {
	e.readyScreens[screen] = true
	if e.state.Phase != PhaseShowingStep {
		return
	}
	step, _ := e.catalog.At(e.state.CurrentStepIndex)
	if step.Screen != screen {
		return
	}
	log.Printf("[TutorialEngine] Screen %q ready, rendering step %q", screen, step.ID)
	e.applyGate()
	if e.state.FeedbackToken == 0 && !e.state.PendingBranch {
		e.render()
	}
}

// NotifyScreenClosed 界面被销毁
func (e *Engine) NotifyScreenClosed(screen string) {
	delete(e.readyScreens, screen)
	if e.state.Phase != PhaseShowingStep {
		return
	}
	step, _ := e.catalog.At(e.state.CurrentStepIndex)
	if step.Screen == screen && e.state.FeedbackToken == 0 && !e.state.PendingBranch {
		e.clearHighlight()
		e.presenter.Hide()
	}
}

// IsScreenReady 界面是否已就绪
func (e *Engine) IsScreenReady(screen string) bool {
	return e.readyScreens[screen]
}

// ReportEvent 业务界面上报事件（主要驱动）
//
// 参数：
//   - event: 事件名
//   - payload: 可选附带数据
func (e *Engine) ReportEvent(event string, payload *EventPayload) {
	if e.state.Phase != PhaseShowingStep {
		return
	}
	// 分支反馈等待确认期间，当前步骤已完成，任何事件都不再处理
	if e.state.PendingBranch {
		return
	}

	step, _ := e.catalog.At(e.state.CurrentStepIndex)

	if event == step.CompletionEvent {
		e.completeCurrent(step, payload)
		return
	}

	// 已完成步骤的完成事件重复触发（点击回调可能多次触发），静默吸收
	if e.completedEvents[event] {
		return
	}
	// 帮助、查阅等公共控件随时可用，使用它们不是操作错误
	if e.gate.IsPassiveEvent(event) {
		return
	}

	if step.HideDialogOnInteract && step.HasDialog() && !e.state.DialogDismissed {
		e.state.DialogDismissed = true
		if e.state.FeedbackToken == 0 {
			e.render()
		}
	}

	// 只有 click 步骤会产生失误
	if step.Action != ActionClick {
		return
	}
	if step.IgnoresEvent(event) || step.AllowFreeOperation {
		return
	}
	e.registerMistake(step, event)
}

// AcknowledgeInfoStep 手动“下一步”
// 只有完成事件为 EventManualNext 的步骤会被推进
func (e *Engine) AcknowledgeInfoStep() {
	if e.state.Phase != PhaseShowingStep || e.state.PendingBranch {
		return
	}
	step, _ := e.catalog.At(e.state.CurrentStepIndex)
	if step.CompletionEvent != EventManualNext {
		log.Printf("[TutorialEngine] Acknowledge ignored: step %q waits for %q", step.ID, step.CompletionEvent)
		return
	}
	e.completeCurrent(step, nil)
}

// AcknowledgeStep 带步骤 ID 的“下一步”
//
// 按钮回调携带按下时显示的步骤 ID；同一次点击重复触发时，
// 第一次已推进到下一步，后续调用因 ID 不符被忽略，不会连跳两个说明步骤。
func (e *Engine) AcknowledgeStep(stepID string) {
	step, ok := e.catalog.At(e.state.CurrentStepIndex)
	if !ok || !e.state.IsActive() || step.ID != stepID {
		log.Printf("[TutorialEngine] Ignoring stale acknowledgement for step %q", stepID)
		return
	}
	e.AcknowledgeInfoStep()
}

// AcknowledgeFeedback 用户确认了反馈面板
// 令牌不是当前有效令牌时（暂停或步骤已变化）直接忽略
func (e *Engine) AcknowledgeFeedback(token FeedbackToken) {
	if token == 0 || token != e.state.FeedbackToken || e.state.Phase != PhaseShowingStep {
		log.Printf("[TutorialEngine] Ignoring stale feedback acknowledgement (token %d)", token)
		return
	}
	kind := e.state.FeedbackKind
	e.invalidateFeedback()

	switch kind {
	case FeedbackBranch:
		e.state.PendingBranch = false
		e.state.PendingErrorCount = 0
		e.enterStep(e.state.CurrentStepIndex+1, true)
	default:
		e.render()
	}
}

// ============================================================================
// 内部状态转换
// ============================================================================

// enterStep 进入步骤；checkSkip 为 true 时按 SkipWhen 连续跳过
func (e *Engine) enterStep(index int, checkSkip bool) {
	for {
		if index >= e.catalog.Len() {
			e.finish(OutcomeCompleted)
			return
		}
		e.state.CurrentStepIndex = index
		e.state.MistakeCount = 0
		e.state.DialogDismissed = false
		e.invalidateFeedback()

		if !checkSkip || !e.shouldSkip(index) {
			break
		}
		step, _ := e.catalog.At(index)
		e.markCompleted(step)
		log.Printf("[TutorialEngine] Step %q skipped by condition %q", step.ID, e.catalog.condition(index))
		index++
	}

	step, _ := e.catalog.At(index)
	log.Printf("[TutorialEngine] Entered step %d/%d %q (screen=%q, action=%s, target=%q)",
		index+1, e.catalog.Len(), step.ID, step.Screen, step.Action, step.TargetControl)
	e.applyGate()
	e.render()
}

func (e *Engine) shouldSkip(index int) bool {
	cond := e.catalog.condition(index)
	if cond == nil {
		return false
	}
	ok, err := cond.Eval(e.flags, e.state.CompletedStepIDs)
	if err != nil {
		log.Printf("[TutorialEngine] Warning: %v (step not skipped)", err)
		return false
	}
	return ok
}

func (e *Engine) markCompleted(step StepDescriptor) {
	e.state.CompletedStepIDs[step.ID] = true
	e.completedEvents[step.CompletionEvent] = true
}

// completeCurrent 当前步骤完成
func (e *Engine) completeCurrent(step StepDescriptor, payload *EventPayload) {
	e.markCompleted(step)
	e.state.MistakeCount = 0
	e.clearHighlight()
	e.invalidateFeedback()
	log.Printf("[TutorialEngine] Step %q completed by %q", step.ID, step.CompletionEvent)

	if payload != nil && payload.ErrorCount > 0 && step.ErrorFeedback {
		e.state.PendingBranch = true
		e.state.PendingErrorCount = payload.ErrorCount
		e.showBranchFeedback(step, payload.ErrorCount)
		return
	}
	e.enterStep(e.state.CurrentStepIndex+1, true)
}

func (e *Engine) showBranchFeedback(step StepDescriptor, errorCount int) {
	message := step.ErrorFeedbackMessage
	if message == "" {
		message = fmt.Sprintf("本次操作有 %d 处错误，请注意核对。", errorCount)
	}
	token := e.issueToken(FeedbackBranch)
	log.Printf("[TutorialEngine] Step %q feedback branch (errors=%d, token=%d)", step.ID, errorCount, token)
	e.presenter.ShowFeedback(FeedbackView{
		Token:      token,
		Kind:       FeedbackBranch,
		StepID:     step.ID,
		Message:    message,
		Speaker:    e.speakerFor(step),
		ErrorCount: errorCount,
	})
}

// registerMistake 失误计数并按等级反馈
func (e *Engine) registerMistake(step StepDescriptor, event string) {
	e.state.MistakeCount++
	fb := Escalate(e.state.MistakeCount, &step, e.messages)
	log.Printf("[TutorialEngine] Mistake %d on step %q (event %q, tier %s)",
		e.state.MistakeCount, step.ID, event, fb.Tier)

	if fb.Terminates() {
		e.forceTerminate(fb.Message)
		return
	}

	token := e.issueToken(FeedbackMistake)
	e.presenter.ShowFeedback(FeedbackView{
		Token:   token,
		Kind:    FeedbackMistake,
		Tier:    fb.Tier,
		StepID:  step.ID,
		Message: fb.Message,
		Speaker: e.speakerFor(step),
	})
}

// forceTerminate 失误过多：隐藏表现，显示不可跳过的失败提示，异常结束
func (e *Engine) forceTerminate(message string) {
	log.Printf("[TutorialEngine] Forced termination at step %d", e.state.CurrentStepIndex)
	e.presenter.Hide()
	e.presenter.ShowFailureNotice(message)
	e.finish(OutcomeForcedTermination)
}

// finish 结束会话并拆除：清除高亮、恢复所有控件、清空注册表
func (e *Engine) finish(outcome Outcome) {
	e.state.Phase = PhaseFinished
	e.state.Outcome = outcome
	e.state.PendingBranch = false
	e.invalidateFeedback()
	e.clearHighlight()

	if outcome != OutcomeForcedTermination {
		e.presenter.Hide()
	}

	EnableAll(e.registry)
	e.registry.Clear()

	if outcome == OutcomeCompleted && e.store != nil {
		if err := e.store.MarkTutorialCompleted(); err != nil {
			log.Printf("[TutorialEngine] Warning: failed to persist completion: %v", err)
		}
	}

	log.Printf("[TutorialEngine] Session %s finished: %s", e.state.SessionID, outcome)
	if e.onExit != nil {
		e.onExit(outcome)
	}
}

func (e *Engine) applyGate() {
	step, ok := e.catalog.At(e.state.CurrentStepIndex)
	if !ok {
		return
	}
	e.gate.Apply(&step, e.registry)
}

// render 显示当前步骤的提示
func (e *Engine) render() {
	if e.state.Phase != PhaseShowingStep || e.state.FeedbackToken != 0 {
		return
	}
	step, ok := e.catalog.At(e.state.CurrentStepIndex)
	if !ok {
		return
	}

	// 界面尚未就绪：不显示，等待 NotifyScreenReady
	if step.Screen != "" && !e.readyScreens[step.Screen] {
		e.clearHighlight()
		e.presenter.Hide()
		return
	}

	if step.Action == ActionWait && !step.HasDialog() {
		e.clearHighlight()
		e.presenter.Hide()
		return
	}

	view := StepView{
		StepID:          step.ID,
		Index:           e.state.CurrentStepIndex,
		Total:           e.catalog.Len(),
		Phase:           step.Phase,
		PhaseCount:      e.catalog.PhaseCount(),
		Action:          step.Action,
		ShowDialog:      step.HasDialog() && !e.state.DialogDismissed,
		Message:         step.Message,
		Speaker:         step.Speaker,
		Position:        step.MessagePosition,
		Target:          step.TargetControl,
		Pointer:         step.Pointer,
		BlockBackground: step.Action == ActionInfo,
		ShowNextButton:  step.CompletionEvent == EventManualNext,
	}

	e.state.ActiveHighlight = ""
	if step.TargetControl != "" {
		bounds, ok := e.registry.BoundsOf(step.TargetControl)
		if ok {
			view.ControlBounds = bounds
			view.HasBounds = true
			if step.Pointer.Direction != PointerNone {
				e.state.ActiveHighlight = step.TargetControl
			}
		} else {
			log.Printf("[TutorialEngine] Target control %q not available, showing step %q without pointer",
				step.TargetControl, step.ID)
		}
	}

	e.presenter.ShowStep(view)
}

func (e *Engine) clearHighlight() {
	e.state.ActiveHighlight = ""
}

func (e *Engine) issueToken(kind FeedbackKind) FeedbackToken {
	e.lastToken++
	e.state.FeedbackToken = e.lastToken
	e.state.FeedbackKind = kind
	return e.lastToken
}

func (e *Engine) invalidateFeedback() {
	e.state.FeedbackToken = 0
}

func (e *Engine) speakerFor(step StepDescriptor) string {
	if step.Speaker != "" {
		return step.Speaker
	}
	return e.speaker
}
