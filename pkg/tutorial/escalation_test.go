package tutorial

import "testing"

func TestTierFor(t *testing.T) {
	tests := []struct {
		count int
		want  Tier
	}{
		{0, TierNone},
		{1, TierHint},
		{2, TierFirm},
		{3, TierSevere},
		{4, TierSevere},
		{5, TierSevere},
		{6, TierTerminate},
		{9, TierTerminate},
	}
	for _, tt := range tests {
		if got := TierFor(tt.count); got != tt.want {
			t.Errorf("TierFor(%d) = %s, want %s", tt.count, got, tt.want)
		}
	}
}

func TestEscalate(t *testing.T) {
	msgs := DefaultEscalationMessages()
	withHint := &StepDescriptor{ID: "S1", WrongAnswerHint: "请点确认按钮"}
	noHint := &StepDescriptor{ID: "S2"}

	tests := []struct {
		name     string
		count    int
		step     *StepDescriptor
		wantMsg  string
		wantHint bool
	}{
		{"第一次使用步骤提示", 1, withHint, "请点确认按钮", true},
		{"第一次无步骤提示", 1, noHint, msgs.Retry, false},
		{"第一次步骤为空", 1, nil, msgs.Retry, false},
		{"第二次", 2, withHint, msgs.Firm, false},
		{"第五次", 5, withHint, msgs.Severe, false},
		{"第六次", 6, withHint, msgs.ForcedExit, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := Escalate(tt.count, tt.step, EscalationMessages{})
			if fb.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", fb.Message, tt.wantMsg)
			}
			if fb.FromStepHint != tt.wantHint {
				t.Errorf("FromStepHint = %v, want %v", fb.FromStepHint, tt.wantHint)
			}
			if fb.Terminates() != (tt.count >= ForcedTerminationThreshold) {
				t.Errorf("Terminates() = %v for count %d", fb.Terminates(), tt.count)
			}
		})
	}
}

func TestEscalate_CustomMessages(t *testing.T) {
	fb := Escalate(2, nil, EscalationMessages{Firm: "再仔细看看"})
	if fb.Message != "再仔细看看" {
		t.Errorf("Expected custom firm message, got %q", fb.Message)
	}
	fb = Escalate(3, nil, EscalationMessages{Firm: "再仔细看看"})
	if fb.Message != DefaultEscalationMessages().Severe {
		t.Errorf("Expected default severe message, got %q", fb.Message)
	}
}
