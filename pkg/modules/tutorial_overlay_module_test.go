package modules

import (
	"image"
	"math"
	"testing"

	"github.com/gonewx/clinicdesk/pkg/tutorial"
	"github.com/gonewx/clinicdesk/pkg/utils"
)

const testW, testH = 960, 640

type overlayRecorder struct {
	nexts []string
	acks  []tutorial.FeedbackToken
}

func newTestOverlay() (*TutorialOverlayModule, *overlayRecorder) {
	rec := &overlayRecorder{}
	m := NewTutorialOverlayModule(utils.FallbackFace(), testW, testH, nil, OverlayCallbacks{
		OnNext:        func(stepID string) { rec.nexts = append(rec.nexts, stepID) },
		OnAcknowledge: func(token tutorial.FeedbackToken) { rec.acks = append(rec.acks, token) },
	})
	return m, rec
}

func TestDialogRect(t *testing.T) {
	tests := []struct {
		name  string
		view  tutorial.StepView
		wantX float64
		wantY float64
	}{
		{"无目标居中", tutorial.StepView{Position: tutorial.MessageAuto}, 380, 270},
		{"目标在下半屏放顶部", tutorial.StepView{HasBounds: true, ControlBounds: image.Rect(100, 500, 200, 530)}, 380, dialogMargin},
		{"目标在上半屏放底部", tutorial.StepView{HasBounds: true, ControlBounds: image.Rect(100, 20, 200, 50)}, 380, testH - 100 - dialogMargin},
		{"显式左侧", tutorial.StepView{Position: tutorial.MessageLeft}, dialogMargin, 270},
		{"显式右侧", tutorial.StepView{Position: tutorial.MessageRight}, testW - 200 - dialogMargin, 270},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := dialogRect(tt.view, 200, 100, testW, testH)
			if r.X != tt.wantX || r.Y != tt.wantY {
				t.Errorf("dialogRect() = (%v,%v), want (%v,%v)", r.X, r.Y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestArrowGeometry(t *testing.T) {
	b := image.Rect(100, 100, 200, 140) // 中心 (150,120)
	tests := []struct {
		dir                      tutorial.PointerDirection
		tipX, tipY, tailX, tailY float64
	}{
		{tutorial.PointerDown, 150, 100 - arrowGap, 150, 100 - arrowGap - arrowLength},
		{tutorial.PointerUp, 150, 140 + arrowGap, 150, 140 + arrowGap + arrowLength},
		{tutorial.PointerRight, 100 - arrowGap, 120, 100 - arrowGap - arrowLength, 120},
		{tutorial.PointerLeft, 200 + arrowGap, 120, 200 + arrowGap + arrowLength, 120},
	}
	for _, tt := range tests {
		tipX, tipY, tailX, tailY, ok := arrowGeometry(b, tutorial.PointerHint{Direction: tt.dir}, 0)
		if !ok {
			t.Fatalf("%s: expected arrow", tt.dir)
		}
		if tipX != tt.tipX || tipY != tt.tipY || tailX != tt.tailX || tailY != tt.tailY {
			t.Errorf("%s: got tip (%v,%v) tail (%v,%v)", tt.dir, tipX, tipY, tailX, tailY)
		}
	}

	tipX, tipY, _, _, _ := arrowGeometry(b, tutorial.PointerHint{Direction: tutorial.PointerDown, OffsetX: 10, OffsetY: -5}, 0)
	if tipX != 160 || tipY != 100-arrowGap-5 {
		t.Errorf("offset not applied: (%v,%v)", tipX, tipY)
	}
	if _, _, _, _, ok := arrowGeometry(b, tutorial.PointerHint{}, 0); ok {
		t.Error("no direction should mean no arrow")
	}
}

func TestBobOffset(t *testing.T) {
	if bobOffset(0.3, true) != 0 {
		t.Error("reduced motion should disable bobbing")
	}
	for _, e := range []float64{0, 0.1, 0.45, 0.7, 5.3} {
		if v := bobOffset(e, false); v < 0 || v > bobAmplitude {
			t.Errorf("bobOffset(%v) = %v out of range", e, v)
		}
	}
	if v := bobOffset(bobPeriod/2, false); math.Abs(v-bobAmplitude) > 1e-6 {
		t.Errorf("peak should be amplitude, got %v", v)
	}
}

func TestFadeIn(t *testing.T) {
	if fadeIn(0, true) != 1 {
		t.Error("reduced motion should skip the fade")
	}
	if fadeIn(0, false) != 0 {
		t.Error("fade should start transparent")
	}
	if v := fadeIn(fadeDuration/2, false); v <= 0.5 || v >= 1 {
		t.Errorf("fadeIn(half) = %v, want in (0.5, 1)", v)
	}
	if fadeIn(fadeDuration*3, false) != 1 {
		t.Error("fade should settle at 1")
	}
}

func TestOverlay_RefreshKeepsFade(t *testing.T) {
	m, _ := newTestOverlay()
	m.ShowStep(tutorial.StepView{StepID: "welcome", Total: 2})
	m.Update(0.2, 0, 0)
	m.ShowStep(tutorial.StepView{StepID: "welcome", Total: 2, HasBounds: true})
	if math.Abs(m.shownAge-0.2) > 1e-9 {
		t.Errorf("refreshing the same step reset fade age to %v", m.shownAge)
	}
	m.ShowStep(tutorial.StepView{StepID: "register", Index: 1, Total: 2})
	if m.shownAge != 0 {
		t.Error("a new step should restart the fade")
	}
}

func TestOverlay_NextButton(t *testing.T) {
	m, rec := newTestOverlay()
	m.ShowStep(tutorial.StepView{
		StepID: "welcome", Total: 3, ShowDialog: true, Message: "欢迎", Speaker: "护士长",
		BlockBackground: true, ShowNextButton: true,
	})

	if !m.Visible() || !m.BlocksInput() {
		t.Fatal("info step should be visible and block input")
	}
	b := m.nextButton
	if !m.HandleClick(b.X+1, b.Y+1) || len(rec.nexts) != 1 || rec.nexts[0] != "welcome" {
		t.Errorf("next button click not forwarded with step ID, nexts=%v", rec.nexts)
	}
	if !m.HandleClick(5, 5) {
		t.Error("blocked background should consume clicks")
	}
	if len(rec.nexts) != 1 {
		t.Error("background click must not advance")
	}
}

func TestOverlay_ClickStepPassesThrough(t *testing.T) {
	m, _ := newTestOverlay()
	m.ShowStep(tutorial.StepView{
		StepID: "register", Total: 3, ShowDialog: true, Message: "点击确认",
		HasBounds: true, ControlBounds: image.Rect(100, 500, 200, 530),
		Pointer: tutorial.PointerHint{Direction: tutorial.PointerDown},
	})
	if m.BlocksInput() {
		t.Fatal("click step should not block input")
	}
	if m.HandleClick(150, 515) {
		t.Error("click on the target should pass through")
	}
	if !m.HandleClick(m.dialog.X+2, m.dialog.Y+2) {
		t.Error("click on the dialog itself should be consumed")
	}
}

func TestOverlay_Feedback(t *testing.T) {
	m, rec := newTestOverlay()
	m.ShowFeedback(tutorial.FeedbackView{Token: 42, Kind: tutorial.FeedbackMistake, Tier: tutorial.TierFirm, Message: "请点确认按钮"})

	if !m.BlocksInput() {
		t.Fatal("feedback should block input")
	}
	if !m.HandleClick(1, 1) || len(rec.acks) != 0 {
		t.Error("click outside the button should be swallowed without acknowledging")
	}
	b := m.ackButton
	m.HandleClick(b.X+1, b.Y+1)
	if len(rec.acks) != 1 || rec.acks[0] != 42 {
		t.Errorf("acks = %v, want [42]", rec.acks)
	}

	m.Hide()
	if m.Visible() || m.HandleClick(b.X+1, b.Y+1) {
		t.Error("hidden overlay should not consume clicks")
	}
}

func TestOverlay_FailureHold(t *testing.T) {
	m, _ := newTestOverlay()
	m.ShowFailureNotice("失误次数过多")

	m.Update(1.0, 0, 0)
	if !m.HandleClick(10, 10) || !m.Visible() {
		t.Fatal("failure notice must not be dismissed during the hold time")
	}

	m.Update(failureHold, 0, 0)
	if !m.HandleClick(10, 10) {
		t.Error("dismiss click should be consumed")
	}
	if m.Visible() {
		t.Error("failure notice should close after the hold time")
	}
}

func TestFeedbackTitle(t *testing.T) {
	tests := []struct {
		view tutorial.FeedbackView
		want string
	}{
		{tutorial.FeedbackView{Kind: tutorial.FeedbackBranch}, "核对结果"},
		{tutorial.FeedbackView{Tier: tutorial.TierHint}, "提示"},
		{tutorial.FeedbackView{Tier: tutorial.TierFirm}, "注意"},
		{tutorial.FeedbackView{Tier: tutorial.TierSevere}, "警告"},
	}
	for _, tt := range tests {
		if got, _ := feedbackTitle(tt.view); got != tt.want {
			t.Errorf("feedbackTitle(%+v) = %q, want %q", tt.view, got, tt.want)
		}
	}
}
