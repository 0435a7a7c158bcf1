package tutorial

import (
	"image"
	"testing"
)

func TestControlRegistry_RegisterResolve(t *testing.T) {
	r := NewControlRegistry()
	screen := newFakeScreen("Reception")
	ctrl := newFakeControl(10, 20)

	r.Register("confirm_btn", ctrl, screen)
	got, ok := r.Resolve("confirm_btn")
	if !ok || got != ctrl {
		t.Fatalf("Resolve() = %v, %v", got, ok)
	}

	bounds, ok := r.BoundsOf("confirm_btn")
	if !ok || bounds != image.Rect(10, 20, 90, 50) {
		t.Errorf("BoundsOf() = %v, %v", bounds, ok)
	}

	owner, ok := r.OwnerOf("confirm_btn")
	if !ok || owner.ScreenName() != "Reception" {
		t.Errorf("OwnerOf() = %v, %v", owner, ok)
	}

	// 覆盖注册
	replacement := newFakeControl(0, 0)
	r.Register("confirm_btn", replacement, screen)
	if got, _ := r.Resolve("confirm_btn"); got != replacement {
		t.Error("re-registration should replace the entry")
	}
}

func TestControlRegistry_InvalidRegistration(t *testing.T) {
	r := NewControlRegistry()
	r.Register("", newFakeControl(0, 0), nil)
	r.Register("nil_ctrl", nil, nil)
	if r.Len() != 0 {
		t.Errorf("Expected invalid registrations to be ignored, got %d entries", r.Len())
	}
}

// TestControlRegistry_StaleEntries 界面销毁后条目在访问时失效
func TestControlRegistry_StaleEntries(t *testing.T) {
	r := NewControlRegistry()
	screen := newFakeScreen("Checkout")
	r.Register("pay_btn", newFakeControl(0, 0), screen)
	r.Register("help_btn", newFakeControl(0, 0), nil)

	screen.live = false

	if _, ok := r.Resolve("pay_btn"); ok {
		t.Error("stale control should not resolve")
	}
	if _, ok := r.BoundsOf("pay_btn"); ok {
		t.Error("stale control should have no bounds")
	}
	names := r.Names()
	if len(names) != 1 || names[0] != "help_btn" {
		t.Errorf("Names() = %v, want [help_btn]", names)
	}
}

func TestControlRegistry_NamesSorted(t *testing.T) {
	r := NewControlRegistry()
	for _, name := range []string{"nav_shelf", "confirm_btn", "help_btn"} {
		r.Register(name, newFakeControl(0, 0), nil)
	}

	var visited []string
	r.Each(func(name string, _ Control) { visited = append(visited, name) })

	want := []string{"confirm_btn", "help_btn", "nav_shelf"}
	for i := range want {
		if visited[i] != want[i] {
			t.Errorf("Each() order = %v, want %v", visited, want)
			break
		}
	}

	if !r.Unregister("help_btn") {
		t.Error("Unregister() should report removal")
	}
	if r.Unregister("help_btn") {
		t.Error("second Unregister() should report nothing removed")
	}

	r.Clear()
	if r.Len() != 0 {
		t.Errorf("Expected empty registry after Clear, got %d", r.Len())
	}
}
