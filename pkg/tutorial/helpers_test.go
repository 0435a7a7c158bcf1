package tutorial

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/gonewx/clinicdesk/pkg/utils"
)

// fakeScreen 测试用界面
type fakeScreen struct {
	name string
	live bool
}

func newFakeScreen(name string) *fakeScreen {
	return &fakeScreen{name: name, live: true}
}

func (s *fakeScreen) ScreenName() string { return s.name }
func (s *fakeScreen) IsLive() bool       { return s.live }

// fakeControl 测试用控件，默认可用（与真实控件初始状态一致）
type fakeControl struct {
	x, y, w, h float64
	enabled    bool
	setCalls   int
}

func newFakeControl(x, y float64) *fakeControl {
	return &fakeControl{x: x, y: y, w: 80, h: 30, enabled: true}
}

func (c *fakeControl) LocalSize() (float64, float64) { return c.w, c.h }

func (c *fakeControl) LocalGeoM() ebiten.GeoM {
	var g ebiten.GeoM
	g.Translate(c.x, c.y)
	return g
}

func (c *fakeControl) ParentNode() utils.Node { return nil }

func (c *fakeControl) SetInputEnabled(enabled bool) {
	c.enabled = enabled
	c.setCalls++
}

// recordingPresenter 记录所有表现层调用
type recordingPresenter struct {
	steps     []StepView
	feedbacks []FeedbackView
	failures  []string
	hides     int
	calls     []string
}

func (p *recordingPresenter) ShowStep(v StepView) {
	p.steps = append(p.steps, v)
	p.calls = append(p.calls, "step:"+v.StepID)
}

func (p *recordingPresenter) ShowFeedback(v FeedbackView) {
	p.feedbacks = append(p.feedbacks, v)
	p.calls = append(p.calls, "feedback:"+v.StepID)
}

func (p *recordingPresenter) ShowFailureNotice(msg string) {
	p.failures = append(p.failures, msg)
	p.calls = append(p.calls, "failure")
}

func (p *recordingPresenter) Hide() {
	p.hides++
	p.calls = append(p.calls, "hide")
}

func (p *recordingPresenter) lastStep() (StepView, bool) {
	if len(p.steps) == 0 {
		return StepView{}, false
	}
	return p.steps[len(p.steps)-1], true
}

func (p *recordingPresenter) lastFeedback() (FeedbackView, bool) {
	if len(p.feedbacks) == 0 {
		return FeedbackView{}, false
	}
	return p.feedbacks[len(p.feedbacks)-1], true
}

// memStore 内存完成标记
type memStore struct {
	completed bool
	writes    int
}

func (s *memStore) IsTutorialCompleted() bool { return s.completed }

func (s *memStore) MarkTutorialCompleted() error {
	s.completed = true
	s.writes++
	return nil
}

// testGates 测试用门控配置
func testGates() GateConfig {
	return GateConfig{
		TransitionControls: []string{"nav_reception", "nav_check", "nav_payment", "nav_shelf"},
		AlwaysOn:           []string{"help_btn", "lookup_btn"},
		GroupPrefixes:      []string{"insurance_opt_"},
		Compound: map[string][]string{
			"confirm_btn": {"field_name", "field_amount"},
		},
		PassiveEvents: []string{"HELP_OPENED", "LOOKUP_OPENED"},
	}
}

// testSteps 测试用步骤（示例场景中的 S1、S2 等）
func testSteps() []StepDescriptor {
	return []StepDescriptor{
		{
			ID: "welcome", Phase: 1, Screen: "Reception", Action: ActionInfo,
			CompletionEvent: EventManualNext, Message: "欢迎来到诊所前台", Speaker: "护士长",
		},
		{
			ID: "S1", Phase: 1, Screen: "Reception", Action: ActionClick,
			TargetControl: "confirm_btn", CompletionEvent: "CONFIRMED",
			Message: "点击确认", Pointer: PointerHint{Direction: PointerDown},
			WrongAnswerHint: "请点确认按钮",
		},
		{
			ID: "S2", Phase: 2, Screen: "Reception", Action: ActionClick,
			TargetControl: "insurance_opt_a", CompletionEvent: "INSURANCE_CHOSEN",
			AllowFreeOperation: true, Message: "随便看看，然后选择医保类型",
		},
		{
			ID: "wait_sync", Phase: 2, Action: ActionWait, CompletionEvent: "RECORD_SYNCED",
		},
		{
			ID: "go_checkout", Phase: 3, Screen: "Reception", Action: ActionClick,
			TargetControl: "nav_payment", CompletionEvent: "NAV_PAYMENT",
			Pointer: PointerHint{Direction: PointerUp}, Message: "去收费台",
		},
		{
			ID: "pay", Phase: 3, Screen: "Checkout", Action: ActionClick,
			TargetControl: "pay_btn", CompletionEvent: "PAID",
			Pointer: PointerHint{Direction: PointerLeft}, Message: "点击收费",
			ErrorFeedback: true, ErrorFeedbackMessage: "表单有错误，下次注意核对",
			IgnoreCompletionOn: []string{"PRINTER_WARMED"},
		},
	}
}

func mustCatalog(steps []StepDescriptor) *Catalog {
	c, err := NewCatalog(steps)
	if err != nil {
		panic(err)
	}
	return c
}

// createTestEngine 创建测试用引擎
func createTestEngine(steps []StepDescriptor) (*Engine, *recordingPresenter, *memStore, *[]Outcome) {
	presenter := &recordingPresenter{}
	store := &memStore{}
	outcomes := &[]Outcome{}
	e := NewEngine(mustCatalog(steps), Options{
		Gates:     testGates(),
		Presenter: presenter,
		Store:     store,
		OnExit:    func(o Outcome) { *outcomes = append(*outcomes, o) },
	})
	return e, presenter, store, outcomes
}
