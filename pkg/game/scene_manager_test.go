package game

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// MockScene 记录调用的场景
type MockScene struct {
	name      string
	updates   int
	drawCalls int
	deltaTime float64
	log       *[]string
}

func (m *MockScene) Update(deltaTime float64) {
	m.updates++
	m.deltaTime = deltaTime
}

func (m *MockScene) Draw(screen *ebiten.Image) {
	m.drawCalls++
}

func (m *MockScene) OnEnter() {
	if m.log != nil {
		*m.log = append(*m.log, "enter:"+m.name)
	}
}

func (m *MockScene) OnLeave() {
	if m.log != nil {
		*m.log = append(*m.log, "leave:"+m.name)
	}
}

// plainScene 不实现可选接口
type plainScene struct{ updated bool }

func (p *plainScene) Update(float64)     { p.updated = true }
func (p *plainScene) Draw(*ebiten.Image) {}

// TestSceneManagerNoScene 没有场景时 Update/Draw 不会 panic
func TestSceneManagerNoScene(t *testing.T) {
	sm := NewSceneManager()
	if sm.GetCurrentScene() != nil {
		t.Error("Expected no scene initially")
	}
	sm.Update(0.016)
	sm.Draw(nil)
}

// TestSceneManagerSwitchTo 切换时依次调用 OnLeave / OnEnter
func TestSceneManagerSwitchTo(t *testing.T) {
	var calls []string
	sm := NewSceneManager()
	a := &MockScene{name: "A", log: &calls}
	b := &MockScene{name: "B", log: &calls}

	sm.SwitchTo("A", a)
	sm.Update(0.016)
	sm.Draw(nil)
	if a.updates != 1 || a.drawCalls != 1 || a.deltaTime != 0.016 {
		t.Errorf("Scene A not driven correctly: %+v", a)
	}

	sm.SwitchTo("B", b)
	if sm.CurrentName() != "B" || sm.GetCurrentScene() != b {
		t.Errorf("Expected B to be current, got %q", sm.CurrentName())
	}

	want := []string{"enter:A", "leave:A", "enter:B"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("calls[%d] = %q, want %q", i, calls[i], want[i])
		}
	}

	// 不实现可选接口的场景也能正常切换
	p := &plainScene{}
	sm.SwitchTo("plain", p)
	sm.Update(0.016)
	if !p.updated {
		t.Error("plain scene should be updated")
	}
}

// TestSceneManagerRequest 请求的切换在下一次 Update 开头执行
func TestSceneManagerRequest(t *testing.T) {
	var calls []string
	created := map[string]*MockScene{}
	sm := NewSceneManager()
	sm.SetSceneFactory(func(name string) Scene {
		if name == "Nowhere" {
			return nil
		}
		s := &MockScene{name: name, log: &calls}
		created[name] = s
		return s
	})

	if !sm.Load("Reception") {
		t.Fatal("Load(Reception) failed")
	}

	sm.Request("Check")
	sm.Request("Checkout")
	if sm.CurrentName() != "Reception" {
		t.Error("Request should not switch immediately")
	}

	sm.Update(0.016)
	if sm.CurrentName() != "Checkout" {
		t.Errorf("Expected Checkout after Update, got %q", sm.CurrentName())
	}
	if _, ok := created["Check"]; ok {
		t.Error("superseded request should not create a scene")
	}
	if created["Checkout"].updates != 1 {
		t.Error("new scene should be updated in the same frame")
	}

	if sm.Load("Nowhere") {
		t.Error("Load should fail when the factory returns nil")
	}
	if sm.CurrentName() != "Checkout" {
		t.Error("failed Load should keep the current scene")
	}
}

// TestSceneManagerLoadWithoutFactory 未设置工厂
func TestSceneManagerLoadWithoutFactory(t *testing.T) {
	sm := NewSceneManager()
	if sm.Load("Reception") {
		t.Error("Load without factory should fail")
	}
}
